package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/nursechart/constants"
)

// synonyms maps shorthand keys seen in hand-built payloads onto chart fields.
var synonyms = []struct{ from, to string }{
	{"bp", constants.FieldBloodPressure},
	{"hr", constants.FieldPulse},
	{"heart_rate", constants.FieldPulse},
	{"temp", constants.FieldTemperature},
	{"spo2", constants.FieldOxygenSaturation},
	{"rr", constants.FieldRespiratoryRate},
	{"name", constants.FieldPatientName},
	{"mrn", constants.FieldPatientID},
}

var integerFields = map[string]struct{}{
	constants.FieldPulse:            {},
	constants.FieldRespiratoryRate:  {},
	constants.FieldOxygenSaturation: {},
	constants.FieldPainLevel:        {},
	constants.FieldWordCount:        {},
}

type member struct {
	key string
	val any
}

// NormalizeAndSanitizeJSON
// - Renames known synonyms (bp -> blood_pressure, hr -> pulse, ...)
// - Drops null values and empty strings
// - Trims strings
// - Coerces numbers for integer fields to integers
//
// Key order is preserved so the validation report follows the payload.
func NormalizeAndSanitizeJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	members, err := decodeMembers(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 4)
	index := func(k string) int {
		for i, m := range members {
			if m.key == k {
				return i
			}
		}
		return -1
	}

	// 1) rename synonyms in place; an existing canonical key wins
	for _, s := range synonyms {
		i := index(s.from)
		if i < 0 {
			continue
		}
		if index(s.to) >= 0 {
			members = append(members[:i], members[i+1:]...)
			dropped = append(dropped, s.from+"(duplicate)")
			continue
		}
		members[i].key = s.to
		dropped = append(dropped, s.from+"->"+s.to)
	}

	// 2) nulls, empty strings, integer coercion
	out := members[:0]
	for _, m := range members {
		switch t := m.val.(type) {
		case nil:
			dropped = append(dropped, m.key+"(null)")
			continue
		case string:
			s := strings.TrimSpace(t)
			if s == "" {
				dropped = append(dropped, m.key+"(empty)")
				continue
			}
			m.val = s
		case json.Number:
			if _, ok := integerFields[m.key]; ok {
				n, truncated, err := coerceInt(t)
				if err != nil {
					return nil, dropped, fmt.Errorf("sanitize: %s: %w", m.key, err)
				}
				if truncated {
					dropped = append(dropped, m.key+"(truncated)")
				}
				m.val = n
			}
		}
		out = append(out, m)
	}

	b, err := encodeMembers(out)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("schema.normalize_sanitize", "dropped", dropped)
	}
	return b, dropped, nil
}

func coerceInt(n json.Number) (json.Number, bool, error) {
	if _, err := n.Int64(); err == nil {
		return n, false, nil
	}
	f, err := n.Float64()
	if err != nil {
		return "", false, err
	}
	t := math.Trunc(f)
	return json.Number(strconv.FormatInt(int64(t), 10)), t != f, nil
}

func decodeMembers(raw []byte) ([]member, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("expected JSON object")
	}
	var members []member
	seen := map[string]int{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key := tok.(string)
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		if i, ok := seen[key]; ok {
			members[i].val = v
			continue
		}
		seen[key] = len(members)
		members = append(members, member{key: key, val: v})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after object")
	}
	return members, nil
}

func encodeMembers(members []member) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range members {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(m.key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(m.val)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
