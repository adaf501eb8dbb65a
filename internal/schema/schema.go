package schema

import "github.com/joseph-ayodele/nursechart/constants"

// BuildChartJSONSchema returns the JSON-Schema (draft 2020-12 subset) for an
// inbound chart payload as a generic map. Unknown fields are allowed as long
// as they hold scalars or lists of scalars.
func BuildChartJSONSchema() map[string]any {
	props := map[string]any{
		constants.FieldPatientName:      textProp(),
		constants.FieldPatientID:        numericProp(),
		constants.FieldDate:             textProp(),
		constants.FieldTime:             textProp(),
		constants.FieldBloodPressure:    bloodPressureProp(),
		constants.FieldPulse:            numericProp(),
		constants.FieldTemperature:      numericProp(),
		constants.FieldRespiratoryRate:  numericProp(),
		constants.FieldOxygenSaturation: numericProp(),
		constants.FieldPainLevel:        numericProp(),
		constants.FieldConsciousness:    textProp(),
		constants.FieldAssessmentNote:   textProp(),
		constants.FieldInterventionNote: textProp(),
		constants.FieldGeneralNotes:     textProp(),

		constants.FieldTemperatureCelsius: map[string]any{"type": "number"},
		constants.FieldTemperatureInterpretation: map[string]any{
			"type": "string",
			"enum": interpretations(constants.Hypothermic, constants.Normal, constants.Elevated, constants.Febrile),
		},
		constants.FieldMeanArterialPressure: map[string]any{"type": "number", "minimum": 0},
		constants.FieldRawNotes:             map[string]any{"type": "string"},
		constants.FieldWordCount:            map[string]any{"type": "integer", "minimum": 0},
		constants.FieldUrgencyLevel: map[string]any{
			"type": "string",
			"enum": []string{constants.UrgencyHigh, constants.UrgencyNormal},
		},
		constants.FieldParsingMetadata: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"extraction_timestamp": map[string]any{"type": "string"},
				"text_length":          map[string]any{"type": "integer", "minimum": 0},
				"fields_extracted":     map[string]any{"type": "integer", "minimum": 0},
				"confidence_score":     map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
			},
		},
	}

	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": numericProp(),
	}
}

func textProp() map[string]any {
	return map[string]any{
		"type":  []string{"string", "array"},
		"items": map[string]any{"type": "string"},
	}
}

// numericProp admits the raw captured text, a typed number, or a list of
// either when a label matched more than once.
func numericProp() map[string]any {
	return map[string]any{
		"type":  []string{"string", "number", "array"},
		"items": map[string]any{"type": []string{"string", "number"}},
	}
}

func bloodPressureProp() map[string]any {
	return map[string]any{
		"anyOf": []any{
			textProp(),
			map[string]any{
				"type":     "object",
				"required": []string{"systolic", "diastolic"},
				"properties": map[string]any{
					"systolic":       map[string]any{"type": "integer"},
					"diastolic":      map[string]any{"type": "integer"},
					"interpretation": map[string]any{
						"type": "string",
						"enum": interpretations(constants.Hypotensive, constants.Normal, constants.Elevated, constants.Hypertensive),
					},
				},
				"additionalProperties": false,
			},
		},
	}
}

func interpretations(values ...constants.Interpretation) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
