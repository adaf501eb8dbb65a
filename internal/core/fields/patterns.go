package fields

import (
	"regexp"

	"github.com/joseph-ayodele/nursechart/constants"
)

// fieldPattern pairs a chart field with the expression that captures its
// value in group 1.
type fieldPattern struct {
	field string
	re    *regexp.Regexp
}

// fieldPatterns is matched in order. All expressions are case-insensitive
// and multiline; a trailing $ ends a value at the end of its line.
var fieldPatterns = []fieldPattern{
	// demographics
	{constants.FieldPatientName, regexp.MustCompile(`(?im)(?:Name|Patient|Pt\.?)[\s:\-]*([A-Za-z\s,]+)$`)},
	{constants.FieldPatientID, regexp.MustCompile(`(?im)(?:ID|MRN|Medical Record)[\s:\-]*([A-Za-z0-9\-]+)`)},
	{constants.FieldDate, regexp.MustCompile(`(?im)(?:Date|Dated?)[\s:\-]*([0-9]{1,2}[/\-][0-9]{1,2}[/\-][0-9]{2,4})`)},
	{constants.FieldTime, regexp.MustCompile(`(?im)(?:Time)[\s:\-]*([0-9]{1,2}:[0-9]{2}\s*(?:AM|PM)?)`)},

	// vitals
	{constants.FieldBloodPressure, bpPattern},
	{constants.FieldPulse, regexp.MustCompile(`(?im)(?:Pulse|HR|Heart Rate)[\s:\-]*([0-9]{2,3})\s*(?:bpm)?`)},
	{constants.FieldTemperature, regexp.MustCompile(`(?im)(?:Temp|Temperature)[\s:\-]*([0-9]{2,3}\.?[0-9]?)\s*°?[CF]?`)},
	{constants.FieldRespiratoryRate, regexp.MustCompile(`(?im)(?:RR|Respiratory Rate|Respiration)[\s:\-]*([0-9]{1,2})\s*(?:/min|bpm)?`)},
	{constants.FieldOxygenSaturation, regexp.MustCompile(`(?im)(?:SpO2|O2 Sat|Oxygen)[\s:\-]*([0-9]{2,3})\s*%?`)},

	// observations
	{constants.FieldPainLevel, regexp.MustCompile(`(?im)(?:Pain|Pain Level)[\s:\-]*([0-9]|10)\s*(?:/10)?`)},
	{constants.FieldConsciousness, regexp.MustCompile(`(?im)(?:Consciousness|Alertness)[\s:\-]*(Alert|Verbal|Pain|Unresponsive|AVPU)`)},

	// free-text notes, one line each
	{constants.FieldAssessmentNote, regexp.MustCompile(`(?im)(?:Assessment|Findings)[\s:\-]*(.+?)$`)},
	{constants.FieldInterventionNote, regexp.MustCompile(`(?im)(?:Intervention|Action|Nursing)[\s:\-]*(.+?)$`)},
	{constants.FieldGeneralNotes, regexp.MustCompile(`(?im)(?:Notes|Comments|Remarks)[\s:\-]*(.+?)$`)},
}

var (
	bpPattern = regexp.MustCompile(`(?im)(?:BP|Blood Pressure)[\s:\-]*([0-9]{2,3}\s*/\s*[0-9]{2,3})`)
	bpSplit   = regexp.MustCompile(`\s*/\s*`)

	// labelled reading with its unit; the unit must stand alone so "37 Fever"
	// stays Celsius.
	tempReading = regexp.MustCompile(`(?i)(?:Temp|Temperature)[\s:\-]*([0-9]{2,3}\.?[0-9]?)[ \t]*°?[ \t]*([CF]\b)?`)
	// first number-like token anywhere in the text, labelled or not.
	tempLoose = regexp.MustCompile(`(?i)([0-9]{2,3}\.?[0-9]?)\s*°?([CF])?`)

	// notes run until the next line that starts with a letter, or the end.
	notesSection = regexp.MustCompile(`(?is)(?:Notes|Comments|Nursing Notes)[\s:\-]*\n?(.+?)(?:\n[A-Za-z]|\n?\z)`)
)
