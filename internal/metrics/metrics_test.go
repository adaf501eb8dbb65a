package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)

	p.ChartParsed("TEXT", 1.0, 20*time.Millisecond)
	p.ChartParsed("IMAGE", 0.4, time.Second)
	p.ChartValidated(true, nil)
	p.ChartValidated(false, []string{"temperature", "pulse"})
	p.ChartValidated(false, []string{"temperature"})
	p.RPC("ParseText", "OK")

	assert.Equal(t, 1.0, testutil.ToFloat64(p.chartsParsed.WithLabelValues("TEXT")))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.validations.WithLabelValues("invalid")))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.validationErrors.WithLabelValues("temperature")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.rpcRequests.WithLabelValues("ParseText", "OK")))
	assert.Equal(t, 2, testutil.CollectAndCount(p.chartsParsed))

	err := testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP nursechart_validation_total Total number of chart validations by outcome
# TYPE nursechart_validation_total counter
nursechart_validation_total{outcome="invalid"} 2
nursechart_validation_total{outcome="valid"} 1
`), "nursechart_validation_total")
	require.NoError(t, err)
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPrometheus(reg).RPC("GetResult", "NotFound")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `nursechart_rpc_requests_total{code="NotFound",method="GetResult"} 1`)
}

func TestNop(t *testing.T) {
	r := Nop()
	r.ChartParsed("TEXT", 0, 0)
	r.ChartValidated(false, []string{"pulse"})
	r.RPC("x", "OK")
}
