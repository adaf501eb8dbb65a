package validate

import (
	"bytes"
	"encoding/json"
	"log/slog"

	"github.com/joseph-ayodele/nursechart/internal/chart"
)

// Verdict is the outcome of one field rule.
type Verdict struct {
	Field   string      `json:"-"`
	Value   chart.Value `json:"value"`
	Valid   bool        `json:"valid"`
	Message string      `json:"message"`
}

// Report summarises the validation of one chart. IsValid is true iff
// Errors is empty.
type Report struct {
	IsValid         bool
	Errors          []string
	Warnings        []string
	ValidatedFields []Verdict
}

// Verdict looks up the verdict recorded for field.
func (r *Report) Verdict(field string) (Verdict, bool) {
	for _, v := range r.ValidatedFields {
		if v.Field == field {
			return v, true
		}
	}
	return Verdict{}, false
}

// ToMap flattens the report into plain maps, lists and scalars.
func (r *Report) ToMap() map[string]any {
	fields := make(map[string]any, len(r.ValidatedFields))
	for _, v := range r.ValidatedFields {
		fields[v.Field] = map[string]any{
			"value":   v.Value.Interface(),
			"valid":   v.Valid,
			"message": v.Message,
		}
	}
	return map[string]any{
		"is_valid":         r.IsValid,
		"errors":           toAny(r.Errors),
		"warnings":         toAny(r.Warnings),
		"validated_fields": fields,
	}
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func (r *Report) MarshalJSON() ([]byte, error) {
	var fields bytes.Buffer
	fields.WriteByte('{')
	for i, v := range r.ValidatedFields {
		if i > 0 {
			fields.WriteByte(',')
		}
		k, err := json.Marshal(v.Field)
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		fields.Write(k)
		fields.WriteByte(':')
		fields.Write(b)
	}
	fields.WriteByte('}')

	errs, warns := r.Errors, r.Warnings
	if errs == nil {
		errs = []string{}
	}
	if warns == nil {
		warns = []string{}
	}
	return json.Marshal(struct {
		IsValid         bool            `json:"is_valid"`
		Errors          []string        `json:"errors"`
		Warnings        []string        `json:"warnings"`
		ValidatedFields json.RawMessage `json:"validated_fields"`
	}{r.IsValid, errs, warns, fields.Bytes()})
}

// Validator applies the per-field rule table to a chart.
type Validator struct {
	rules  map[string]Rule
	logger *slog.Logger
}

type Option func(*Validator)

func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

func New(opts ...Option) *Validator {
	v := &Validator{rules: defaultRules, logger: slog.Default()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks every truthy field that has a rule. Fields without a rule
// are accepted and not recorded.
func (v *Validator) Validate(c *chart.Chart) *Report {
	r := &Report{IsValid: true, Errors: []string{}, Warnings: []string{}, ValidatedFields: []Verdict{}}
	if c == nil {
		return r
	}
	for _, f := range c.Fields() {
		rule, ok := v.rules[f.Name]
		if !ok || !f.Value.Truthy() {
			continue
		}
		valid, msg := rule(f.Value)
		switch {
		case !valid:
			r.IsValid = false
			r.Errors = append(r.Errors, f.Name+": "+msg)
		case msg != "":
			r.Warnings = append(r.Warnings, f.Name+": "+msg)
		}
		r.ValidatedFields = append(r.ValidatedFields, Verdict{Field: f.Name, Value: f.Value, Valid: valid, Message: msg})
	}
	v.logger.Debug("validate.done",
		"is_valid", r.IsValid,
		"errors", len(r.Errors),
		"warnings", len(r.Warnings),
		"checked", len(r.ValidatedFields),
	)
	return r
}
