package fields

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joseph-ayodele/nursechart/constants"
	"github.com/joseph-ayodele/nursechart/internal/chart"
)

// Extractor turns raw chart text into a structured chart. It holds no
// per-call state and is safe for concurrent use.
type Extractor struct {
	logger    *slog.Logger
	now       func() time.Time
	looseTemp bool
}

type Option func(*Extractor)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock sets the source of extraction timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLooseTemperatureScan takes the first number-like token anywhere in the
// text as the temperature reading instead of the labelled one. Stray numbers
// such as a blood pressure can then be read as a temperature.
func WithLooseTemperatureScan(loose bool) Option {
	return func(e *Extractor) { e.looseTemp = loose }
}

func New(opts ...Option) *Extractor {
	e := &Extractor{logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Parse never fails: fields that cannot be extracted are simply absent.
func (e *Extractor) Parse(text string) *chart.Chart {
	c := chart.New()

	for _, p := range fieldPatterns {
		matches := e.findAll(p, text)
		switch len(matches) {
		case 0:
		case 1:
			c.Set(p.field, chart.Text(matches[0]))
		default:
			c.Set(p.field, chart.List(matches...))
		}
	}

	e.guard("vitals", func() { e.applyVitals(text, c) })
	e.guard("notes", func() { applyNotes(text, c) })
	applyDerived(c)

	c.Metadata = &chart.ParsingMetadata{
		ExtractionTimestamp: e.now(),
		TextLength:          utf8.RuneCountInString(text),
		FieldsExtracted:     c.TruthyCount(),
		ConfidenceScore:     Confidence(c),
	}
	e.logger.Debug("fields.parse.done",
		"text_length", c.Metadata.TextLength,
		"fields_extracted", c.Metadata.FieldsExtracted,
		"confidence", c.Metadata.ConfidenceScore,
	)
	return c
}

func (e *Extractor) findAll(p fieldPattern, text string) (out []string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("fields.pattern.failed", "field", p.field, "error", fmt.Sprint(r))
			out = nil
		}
	}()
	for _, m := range p.re.FindAllStringSubmatch(text, -1) {
		if s := strings.TrimSpace(m[1]); s != "" {
			out = append(out, s)
		}
	}
	if len(out) > 0 {
		e.logger.Debug("fields.pattern.matched", "field", p.field, "matches", len(out))
	}
	return out
}

// guard runs one enhancement step; a failure drops that step only.
func (e *Extractor) guard(step string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("fields.enhance.failed", "step", step, "error", fmt.Sprint(r))
		}
	}()
	fn()
}

func (e *Extractor) applyVitals(text string, c *chart.Chart) {
	if raw, ok := c.Get(constants.FieldBloodPressure); ok {
		if bp, ok := parseBloodPressure(text); ok {
			c.Set(constants.FieldBloodPressure, chart.BP(bp))
		} else {
			// implausible readings never reach validation
			e.logger.Debug("fields.bp.rejected", "raw", raw.String())
			c.Delete(constants.FieldBloodPressure)
		}
	}
	if t, ok := parseTemperature(text, e.looseTemp); ok {
		c.Set(constants.FieldTemperatureCelsius, chart.Float(t.Celsius))
		c.Set(constants.FieldTemperatureInterpretation, chart.Text(string(t.Interpretation)))
	}
}

func applyNotes(text string, c *chart.Chart) {
	n, ok := parseClinicalNotes(text)
	if !ok {
		return
	}
	c.Set(constants.FieldRawNotes, chart.Text(n.Raw))
	c.Set(constants.FieldWordCount, chart.Int(n.WordCount))
	c.Set(constants.FieldUrgencyLevel, chart.Text(n.Urgency))
}

func applyDerived(c *chart.Chart) {
	v, ok := c.Get(constants.FieldBloodPressure)
	if !ok || v.Kind() != chart.KindBloodPressure {
		return
	}
	c.Set(constants.FieldMeanArterialPressure, chart.Float(MeanArterialPressure(v.BloodPressure())))
}
