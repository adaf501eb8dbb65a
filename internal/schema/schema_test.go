package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/nursechart/internal/chart"
	"github.com/joseph-ayodele/nursechart/constants"
	"github.com/joseph-ayodele/nursechart/internal/common"
	"github.com/joseph-ayodele/nursechart/internal/core/fields"
)

func TestNormalizeAndSanitizeJSON(t *testing.T) {
	raw := []byte(`{
		"name": "  Jane Doe ",
		"bp": "120/80",
		"hr": 72.9,
		"heart_rate": 80,
		"temp": 37.0,
		"spo2": 98,
		"time": null,
		"general_notes": "   ",
		"ward": "B2"
	}`)

	out, dropped, err := NormalizeAndSanitizeJSON(raw, nil)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"patient_name": "Jane Doe",
		"blood_pressure": "120/80",
		"pulse": 72,
		"temperature": 37.0,
		"oxygen_saturation": 98,
		"ward": "B2"
	}`, string(out))
	assert.Equal(t, `{"patient_name":"Jane Doe","blood_pressure":"120/80","pulse":72,"temperature":37.0,"oxygen_saturation":98,"ward":"B2"}`, string(out))
	assert.ElementsMatch(t, []string{
		"name->patient_name", "bp->blood_pressure", "hr->pulse", "heart_rate(duplicate)",
		"temp->temperature", "spo2->oxygen_saturation", "time(null)", "general_notes(empty)", "pulse(truncated)",
	}, dropped)
}

func TestNormalizeAndSanitizeJSON_CanonicalKeyWins(t *testing.T) {
	out, dropped, err := NormalizeAndSanitizeJSON([]byte(`{"pulse":"64","hr":90}`), nil)
	require.NoError(t, err)
	assert.Equal(t, `{"pulse":"64"}`, string(out))
	assert.Equal(t, []string{"hr(duplicate)"}, dropped)
}

func TestNormalizeAndSanitizeJSON_Rejects(t *testing.T) {
	for _, raw := range []string{``, `[]`, `"text"`, `{"a":1} {"b":2}`, `{"a":`} {
		_, _, err := NormalizeAndSanitizeJSON([]byte(raw), nil)
		assert.Error(t, err, raw)
	}
}

func TestValidateJSONAgainstSchema(t *testing.T) {
	sch := BuildChartJSONSchema()
	tests := []struct {
		name string
		data string
		ok   bool
	}{
		{"parsed chart", `{"patient_name":"John Smith","blood_pressure":{"systolic":120,"diastolic":80,"interpretation":"elevated"},"pulse":"72","temperature":"98.6F","temperature_celsius":37.0}`, true},
		{"list of matches", `{"blood_pressure":["120/80","118/76"],"pulse":["72","80"]}`, true},
		{"unknown scalar", `{"ward":"B2","bed":4}`, true},
		{"empty", `{}`, true},
		{"bp missing diastolic", `{"blood_pressure":{"systolic":120}}`, false},
		{"bp extra key", `{"blood_pressure":{"systolic":120,"diastolic":80,"mean":93}}`, false},
		{"boolean field", `{"pulse":true}`, false},
		{"nested object unknown", `{"ward":{"name":"B2"}}`, false},
		{"bad urgency", `{"urgency_level":"medium"}`, false},
		{"confidence above one", `{"parsing_metadata":{"confidence_score":1.5}}`, false},
		{"name as number", `{"patient_name":42}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJSONAgainstSchema(sch, []byte(tt.data))
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestDecodeChart(t *testing.T) {
	c, dropped, err := DecodeChart([]byte(`{"name":"John Smith","bp":{"systolic":140,"diastolic":90},"pulse":72,"temperature":"36.8","ward":"B2"}`), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"patient_name", "blood_pressure", "pulse", "temperature", "ward"}, c.Keys())
	bp, _ := c.Get("blood_pressure")
	assert.Equal(t, chart.KindBloodPressure, bp.Kind())
	assert.Equal(t, chart.BloodPressure{Systolic: 140, Diastolic: 90}, bp.BloodPressure())
	pulse, _ := c.Get("pulse")
	assert.Equal(t, chart.Int(72), pulse)
	assert.Equal(t, []string{"bp->blood_pressure", "name->patient_name"}, dropped)
	assert.Nil(t, c.Metadata)
}

func TestDecodeChart_Invalid(t *testing.T) {
	for _, raw := range []string{`not json`, `{"pulse":false}`, `{"blood_pressure":{"systolic":"high","diastolic":80}}`} {
		_, _, err := DecodeChart([]byte(raw), nil)
		assert.ErrorIs(t, err, common.ErrInvalidInput, raw)
	}
}

func TestDecodeChart_AcceptsParsedCharts(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantTemp constants.Interpretation
		wantBP   constants.Interpretation
	}{
		{"elevated temperature", "Name: John Smith\nBP: 120/80\nPulse: 72\nTemp: 37.8\nDate: 01/15/2024", constants.Elevated, constants.Elevated},
		{"febrile hypertensive", "Name: John Smith\nBP: 150/95\nTemp: 38.6", constants.Febrile, constants.Hypertensive},
		{"hypothermic hypotensive", "BP: 85/55\nTemp: 35.2", constants.Hypothermic, constants.Hypotensive},
		{"normal", "BP: 110/70\nTemp: 36.8", constants.Normal, constants.Normal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := fields.New().Parse(tt.text)
			raw, err := json.Marshal(parsed)
			require.NoError(t, err)

			c, _, err := DecodeChart(raw, nil)
			require.NoError(t, err)
			assert.Equal(t, parsed.Keys(), c.Keys())

			interp, ok := c.Get(constants.FieldTemperatureInterpretation)
			require.True(t, ok)
			assert.Equal(t, string(tt.wantTemp), interp.Text())

			bp, ok := c.Get(constants.FieldBloodPressure)
			require.True(t, ok)
			assert.Equal(t, tt.wantBP, bp.BloodPressure().Interpretation)
		})
	}
}
