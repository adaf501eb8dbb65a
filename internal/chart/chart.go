package chart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/joseph-ayodele/nursechart/constants"
)

// ParsingMetadata describes one extraction run.
type ParsingMetadata struct {
	ExtractionTimestamp time.Time
	TextLength          int
	FieldsExtracted     int
	ConfidenceScore     float64
}

type metadataJSON struct {
	ExtractionTimestamp string    `json:"extraction_timestamp"`
	TextLength          int       `json:"text_length"`
	FieldsExtracted     int       `json:"fields_extracted"`
	ConfidenceScore     jsonFloat `json:"confidence_score"`
}

type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) { return marshalFloat(float64(f)) }

func (m ParsingMetadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(metadataJSON{
		ExtractionTimestamp: m.ExtractionTimestamp.Format(time.RFC3339Nano),
		TextLength:          m.TextLength,
		FieldsExtracted:     m.FieldsExtracted,
		ConfidenceScore:     jsonFloat(m.ConfidenceScore),
	})
}

func (m *ParsingMetadata) UnmarshalJSON(data []byte) error {
	var raw struct {
		ExtractionTimestamp string  `json:"extraction_timestamp"`
		TextLength          int     `json:"text_length"`
		FieldsExtracted     int     `json:"fields_extracted"`
		ConfidenceScore     float64 `json:"confidence_score"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var ts time.Time
	if raw.ExtractionTimestamp != "" {
		t, err := time.Parse(time.RFC3339Nano, raw.ExtractionTimestamp)
		if err != nil {
			return fmt.Errorf("chart: extraction_timestamp: %w", err)
		}
		ts = t
	}
	*m = ParsingMetadata{
		ExtractionTimestamp: ts,
		TextLength:          raw.TextLength,
		FieldsExtracted:     raw.FieldsExtracted,
		ConfidenceScore:     raw.ConfidenceScore,
	}
	return nil
}

func (m ParsingMetadata) toMap() map[string]any {
	return map[string]any{
		"extraction_timestamp": m.ExtractionTimestamp.Format(time.RFC3339Nano),
		"text_length":          m.TextLength,
		"fields_extracted":     m.FieldsExtracted,
		"confidence_score":     m.ConfidenceScore,
	}
}

// Field is one named entry of a Chart.
type Field struct {
	Name  string
	Value Value
}

// Chart is the structured result of parsing one nurse chart. Keys keep
// insertion order; replacing an existing key keeps its position.
type Chart struct {
	keys     []string
	values   map[string]Value
	Metadata *ParsingMetadata
}

func New() *Chart {
	return &Chart{values: make(map[string]Value)}
}

// Set stores v under name. Invalid values are ignored.
func (c *Chart) Set(name string, v Value) {
	if !v.IsValid() || name == constants.FieldParsingMetadata {
		return
	}
	if c.values == nil {
		c.values = make(map[string]Value)
	}
	if _, ok := c.values[name]; !ok {
		c.keys = append(c.keys, name)
	}
	c.values[name] = v
}

func (c *Chart) Get(name string) (Value, bool) {
	v, ok := c.values[name]
	return v, ok
}

func (c *Chart) Has(name string) bool {
	_, ok := c.values[name]
	return ok
}

func (c *Chart) Delete(name string) {
	if _, ok := c.values[name]; !ok {
		return
	}
	delete(c.values, name)
	for i, k := range c.keys {
		if k == name {
			c.keys = append(c.keys[:i], c.keys[i+1:]...)
			break
		}
	}
}

func (c *Chart) Len() int { return len(c.keys) }

func (c *Chart) Keys() []string {
	return append([]string(nil), c.keys...)
}

// Fields returns the entries in insertion order.
func (c *Chart) Fields() []Field {
	out := make([]Field, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, Field{Name: k, Value: c.values[k]})
	}
	return out
}

// TruthyCount counts entries whose value is Truthy.
func (c *Chart) TruthyCount() int {
	n := 0
	for _, v := range c.values {
		if v.Truthy() {
			n++
		}
	}
	return n
}

// Confidence returns the metadata confidence score, or 0 without metadata.
func (c *Chart) Confidence() float64 {
	if c.Metadata == nil {
		return 0
	}
	return c.Metadata.ConfidenceScore
}

// ToMap flattens the chart into plain maps, lists and scalars.
func (c *Chart) ToMap() map[string]any {
	out := make(map[string]any, len(c.keys)+1)
	for _, k := range c.keys {
		out[k] = c.values[k].Interface()
	}
	if c.Metadata != nil {
		out[constants.FieldParsingMetadata] = c.Metadata.toMap()
	}
	return out
}

// MarshalJSON writes fields in insertion order followed by parsing_metadata.
func (c *Chart) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	writeKey := func(k string) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		kb, err := json.Marshal(k)
		if err != nil {
			return err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		return nil
	}
	for _, k := range c.keys {
		vb, err := c.values[k].MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("chart: field %s: %w", k, err)
		}
		if err := writeKey(k); err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	if c.Metadata != nil {
		mb, err := c.Metadata.MarshalJSON()
		if err != nil {
			return nil, err
		}
		if err := writeKey(constants.FieldParsingMetadata); err != nil {
			return nil, err
		}
		buf.Write(mb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping key order.
func (c *Chart) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("chart: expected JSON object")
	}
	fresh := New()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return errors.New("chart: expected object key")
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if key == constants.FieldParsingMetadata {
			var m ParsingMetadata
			if err := m.UnmarshalJSON(raw); err != nil {
				return err
			}
			fresh.Metadata = &m
			continue
		}
		var v Value
		if err := v.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("chart: field %s: %w", key, err)
		}
		fresh.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*c = *fresh
	return nil
}
