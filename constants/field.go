package constants

// Chart field names. These are the exact keys emitted in structured chart output.
const (
	FieldPatientName      = "patient_name"
	FieldPatientID        = "patient_id"
	FieldDate             = "date"
	FieldTime             = "time"
	FieldBloodPressure    = "blood_pressure"
	FieldPulse            = "pulse"
	FieldTemperature      = "temperature"
	FieldRespiratoryRate  = "respiratory_rate"
	FieldOxygenSaturation = "oxygen_saturation"
	FieldPainLevel        = "pain_level"
	FieldConsciousness    = "consciousness"
	FieldAssessmentNote   = "assessment_note"
	FieldInterventionNote = "intervention_note"
	FieldGeneralNotes     = "general_notes"

	// derived
	FieldTemperatureCelsius        = "temperature_celsius"
	FieldTemperatureInterpretation = "temperature_interpretation"
	FieldMeanArterialPressure      = "mean_arterial_pressure"
	FieldRawNotes                  = "raw_notes"
	FieldWordCount                 = "word_count"
	FieldUrgencyLevel              = "urgency_level"

	FieldParsingMetadata = "parsing_metadata"
)

// EssentialFields drive the parsing confidence score.
var EssentialFields = []string{
	FieldPatientName,
	FieldDate,
	FieldBloodPressure,
	FieldPulse,
	FieldTemperature,
}

// Interpretation is a qualitative reading attached to a vital sign.
type Interpretation string

const (
	Hypotensive  Interpretation = "hypotensive"
	Hypertensive Interpretation = "hypertensive"
	Elevated     Interpretation = "elevated"
	Normal       Interpretation = "normal"
	Hypothermic  Interpretation = "hypothermic"
	Febrile      Interpretation = "febrile"
)

// Urgency levels derived from clinical notes.
const (
	UrgencyHigh   = "high"
	UrgencyNormal = "normal"
)

// UrgencyKeywords flag a note as high urgency when any appears (case-insensitive).
var UrgencyKeywords = []string{"stat", "urgent", "immediate", "critical", "emergent"}
