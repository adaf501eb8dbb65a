package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder receives processing events.
type Recorder interface {
	ChartParsed(sourceKind string, confidence float64, took time.Duration)
	ChartValidated(valid bool, failedFields []string)
	RPC(method, code string)
}

type nop struct{}

func (nop) ChartParsed(string, float64, time.Duration) {}
func (nop) ChartValidated(bool, []string)              {}
func (nop) RPC(string, string)                         {}

// Nop returns a Recorder that drops everything.
func Nop() Recorder { return nop{} }

// Prometheus is a Recorder backed by prometheus collectors.
type Prometheus struct {
	chartsParsed     *prometheus.CounterVec
	validations      *prometheus.CounterVec
	validationErrors *prometheus.CounterVec
	rpcRequests      *prometheus.CounterVec
	confidence       prometheus.Histogram
	duration         prometheus.Histogram
}

// NewPrometheus builds the collectors and registers them on reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		chartsParsed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nursechart_charts_parsed_total",
				Help: "Total number of charts parsed",
			},
			[]string{"source_kind"},
		),
		validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nursechart_validation_total",
				Help: "Total number of chart validations by outcome",
			},
			[]string{"outcome"},
		),
		validationErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nursechart_validation_errors_total",
				Help: "Total number of failed field checks",
			},
			[]string{"field"},
		),
		rpcRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nursechart_rpc_requests_total",
				Help: "Total number of gRPC requests",
			},
			[]string{"method", "code"},
		),
		confidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nursechart_parse_confidence",
			Help:    "Parsing confidence score of extracted charts",
			Buckets: []float64{0, 0.2, 0.4, 0.6, 0.8, 1.0},
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nursechart_processing_duration_seconds",
			Help:    "Duration of chart processing in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0},
		}),
	}
	reg.MustRegister(p.chartsParsed, p.validations, p.validationErrors, p.rpcRequests, p.confidence, p.duration)
	return p
}

func (p *Prometheus) ChartParsed(sourceKind string, confidence float64, took time.Duration) {
	p.chartsParsed.WithLabelValues(sourceKind).Inc()
	p.confidence.Observe(confidence)
	p.duration.Observe(took.Seconds())
}

func (p *Prometheus) ChartValidated(valid bool, failedFields []string) {
	outcome := "valid"
	if !valid {
		outcome = "invalid"
	}
	p.validations.WithLabelValues(outcome).Inc()
	for _, f := range failedFields {
		p.validationErrors.WithLabelValues(f).Inc()
	}
}

func (p *Prometheus) RPC(method, code string) {
	p.rpcRequests.WithLabelValues(method, code).Inc()
}

// Handler exposes the gatherer in the prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
