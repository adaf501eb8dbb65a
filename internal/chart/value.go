package chart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/nursechart/constants"
)

// Kind tags the concrete shape held by a Value.
type Kind int

const (
	KindInvalid Kind = iota
	KindText
	KindInt
	KindFloat
	KindList
	KindBloodPressure
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindList:
		return "list"
	case KindBloodPressure:
		return "blood_pressure"
	default:
		return "invalid"
	}
}

// BloodPressure is the structured reading produced by enhanced parsing.
type BloodPressure struct {
	Systolic       int                      `json:"systolic"`
	Diastolic      int                      `json:"diastolic"`
	Interpretation constants.Interpretation `json:"interpretation,omitempty"`
}

func (bp BloodPressure) String() string {
	return fmt.Sprintf("%d/%d", bp.Systolic, bp.Diastolic)
}

// Value is a single extracted field value. The zero Value is invalid and is
// never stored in a Chart.
type Value struct {
	kind Kind
	s    string
	i    int
	f    float64
	list []string
	bp   BloodPressure
}

func Text(s string) Value { return Value{kind: KindText, s: s} }
func Int(i int) Value { return Value{kind: KindInt, i: i} }
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }
func BP(bp BloodPressure) Value { return Value{kind: KindBloodPressure, bp: bp} }

// List copies items so the Value stays immutable.
func List(items ...string) Value {
	return Value{kind: KindList, list: append([]string(nil), items...)}
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsValid() bool { return v.kind != KindInvalid }
func (v Value) Text() string { return v.s }
func (v Value) Int() int { return v.i }
func (v Value) Float() float64 { return v.f }
func (v Value) BloodPressure() BloodPressure { return v.bp }

func (v Value) List() []string {
	return append([]string(nil), v.list...)
}

// Truthy reports whether the value counts as present: empty strings, zero
// numbers and empty lists do not.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindText:
		return v.s != ""
	case KindInt:
		return v.i != 0
	case KindFloat:
		return v.f != 0
	case KindList:
		return len(v.list) > 0
	case KindBloodPressure:
		return true
	default:
		return false
	}
}

// Interface returns a plain Go representation made only of strings, ints,
// float64s, []any and map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case KindText:
		return v.s
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindList:
		out := make([]any, len(v.list))
		for i, s := range v.list {
			out[i] = s
		}
		return out
	case KindBloodPressure:
		m := map[string]any{
			"systolic":  v.bp.Systolic,
			"diastolic": v.bp.Diastolic,
		}
		if v.bp.Interpretation != "" {
			m["interpretation"] = string(v.bp.Interpretation)
		}
		return m
	default:
		return nil
	}
}

// String renders the value for display and messages.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.s
	case KindInt:
		return strconv.Itoa(v.i)
	case KindFloat:
		return FormatFloat(v.f)
	case KindList:
		return strings.Join(v.list, ", ")
	case KindBloodPressure:
		return v.bp.String()
	default:
		return ""
	}
}

// Equal compares kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.s == o.s
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if v.list[i] != o.list[i] {
				return false
			}
		}
		return true
	case KindBloodPressure:
		return v.bp == o.bp
	default:
		return true
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindText:
		return json.Marshal(v.s)
	case KindInt:
		return []byte(strconv.Itoa(v.i)), nil
	case KindFloat:
		return marshalFloat(v.f)
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	case KindBloodPressure:
		return json.Marshal(v.bp)
	default:
		return nil, errors.New("chart: marshal invalid value")
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errors.New("chart: empty value")
	}
	switch c := data[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
	case c == '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		items := make([]string, 0, len(raw))
		for _, r := range raw {
			var item Value
			if err := item.UnmarshalJSON(r); err != nil {
				return err
			}
			switch item.kind {
			case KindText, KindInt, KindFloat:
				items = append(items, item.String())
			default:
				return fmt.Errorf("chart: unsupported list element %s", item.kind)
			}
		}
		*v = List(items...)
	case c == '{':
		var bp struct {
			Systolic       *json.Number `json:"systolic"`
			Diastolic      *json.Number `json:"diastolic"`
			Interpretation string       `json:"interpretation"`
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&bp); err != nil {
			return err
		}
		if bp.Systolic == nil || bp.Diastolic == nil {
			return errors.New("chart: blood pressure object needs systolic and diastolic")
		}
		s, err := numberToInt(*bp.Systolic)
		if err != nil {
			return fmt.Errorf("chart: systolic: %w", err)
		}
		d, err := numberToInt(*bp.Diastolic)
		if err != nil {
			return fmt.Errorf("chart: diastolic: %w", err)
		}
		*v = BP(BloodPressure{Systolic: s, Diastolic: d, Interpretation: constants.Interpretation(bp.Interpretation)})
	case c == '-' || (c >= '0' && c <= '9'):
		n := json.Number(data)
		if bytes.ContainsAny(data, ".eE") {
			f, err := n.Float64()
			if err != nil {
				return err
			}
			*v = Float(f)
			return nil
		}
		i, err := n.Int64()
		if err != nil {
			return err
		}
		*v = Int(int(i))
	default:
		return fmt.Errorf("chart: unsupported value %s", truncate(string(data), 32))
	}
	return nil
}

func numberToInt(n json.Number) (int, error) {
	if i, err := n.Int64(); err == nil {
		return int(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
