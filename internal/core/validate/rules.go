package validate

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/nursechart/constants"
	"github.com/joseph-ayodele/nursechart/internal/chart"
)

// Rule checks one field value. A true result with a message is a warning.
type Rule func(v chart.Value) (bool, string)

// Clinical plausibility bounds.
const (
	MinSystolic  = 50
	MaxSystolic  = 250
	MinDiastolic = 30
	MaxDiastolic = 150
	MinPulse     = 30
	MaxPulse     = 200
	MinTempC     = 35.0
	MaxTempC     = 42.0
	MinRespRate  = 8
	MaxRespRate  = 40
	MinOxygenSat = 70
	MaxOxygenSat = 100
)

var (
	reName      = regexp.MustCompile(`^[A-Za-z\s,\-\.']{2,50}$`)
	rePatientID = regexp.MustCompile(`^[A-Za-z0-9\-]{4,20}$`)
)

// dateLayouts are tried in order: M/D/Y, M-D-Y, D/M/Y, Y-M-D.
var dateLayouts = []string{"1/2/2006", "1-2-2006", "2/1/2006", "2006-1-2"}

// defaultRules is the dispatch table keyed by field name.
var defaultRules = map[string]Rule{
	constants.FieldPatientName:      validateName,
	constants.FieldPatientID:        validatePatientID,
	constants.FieldDate:             validateDate,
	constants.FieldBloodPressure:    validateBloodPressure,
	constants.FieldPulse:            validatePulse,
	constants.FieldTemperature:      validateTemperature,
	constants.FieldRespiratoryRate:  validateRespiratoryRate,
	constants.FieldOxygenSaturation: validateOxygenSaturation,
}

func validateName(v chart.Value) (bool, string) {
	if v.Kind() != chart.KindText || !reName.MatchString(strings.TrimSpace(v.Text())) {
		return false, "Invalid name format"
	}
	return true, ""
}

func validatePatientID(v chart.Value) (bool, string) {
	switch v.Kind() {
	case chart.KindText, chart.KindInt, chart.KindFloat:
		if rePatientID.MatchString(v.String()) {
			return true, ""
		}
	}
	return false, "Invalid patient ID format"
}

func validateDate(v chart.Value) (bool, string) {
	if v.Kind() != chart.KindText {
		return false, "Date parsing error"
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, v.Text()); err == nil {
			return true, ""
		}
	}
	return false, "Invalid date format"
}

func validateBloodPressure(v chart.Value) (bool, string) {
	var sys, dia int
	switch v.Kind() {
	case chart.KindBloodPressure:
		bp := v.BloodPressure()
		sys, dia = bp.Systolic, bp.Diastolic
	case chart.KindText:
		parts := strings.Split(v.Text(), "/")
		if len(parts) != 2 {
			return false, "Invalid blood pressure format"
		}
		var err1, err2 error
		sys, err1 = parseInt(parts[0])
		dia, err2 = parseInt(parts[1])
		if err1 != nil || err2 != nil {
			return false, "Blood pressure values must be numeric"
		}
	default:
		return false, "Invalid blood pressure data type"
	}

	if sys < MinSystolic || sys > MaxSystolic {
		return false, fmt.Sprintf("Systolic BP %d outside valid range (%d-%d)", sys, MinSystolic, MaxSystolic)
	}
	if dia < MinDiastolic || dia > MaxDiastolic {
		return false, fmt.Sprintf("Diastolic BP %d outside valid range (%d-%d)", dia, MinDiastolic, MaxDiastolic)
	}
	if sys <= dia {
		return false, "Systolic BP must be greater than diastolic BP"
	}
	return true, ""
}

func validatePulse(v chart.Value) (bool, string) {
	n, ok := toInt(v)
	if !ok {
		return false, "Pulse must be a numeric value"
	}
	if n < MinPulse || n > MaxPulse {
		return false, fmt.Sprintf("Pulse %d outside valid range (%d-%d)", n, MinPulse, MaxPulse)
	}
	return true, ""
}

func validateTemperature(v chart.Value) (bool, string) {
	f, ok := toFloat(v)
	if !ok {
		return false, "Temperature must be a numeric value"
	}
	// NaN fails both comparisons and is reported as out of range
	if !(f >= MinTempC && f <= MaxTempC) {
		return false, fmt.Sprintf("Temperature %s°C outside valid range (%s-%s)",
			chart.FormatFloat(f), chart.FormatFloat(MinTempC), chart.FormatFloat(MaxTempC))
	}
	return true, ""
}

func validateRespiratoryRate(v chart.Value) (bool, string) {
	n, ok := toInt(v)
	if !ok {
		return false, "Respiratory rate must be a numeric value"
	}
	if n < MinRespRate || n > MaxRespRate {
		return false, fmt.Sprintf("Respiratory rate %d outside valid range (%d-%d)", n, MinRespRate, MaxRespRate)
	}
	return true, ""
}

func validateOxygenSaturation(v chart.Value) (bool, string) {
	n, ok := toInt(v)
	if !ok {
		return false, "Oxygen saturation must be a numeric value"
	}
	if n < MinOxygenSat || n > MaxOxygenSat {
		return false, fmt.Sprintf("Oxygen saturation %d%% outside valid range (%d-%d)", n, MinOxygenSat, MaxOxygenSat)
	}
	return true, ""
}

// parseInt accepts an optionally signed decimal integer with surrounding
// whitespace.
func parseInt(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

// toInt converts text holding an integer, an int, or a float truncated
// toward zero.
func toInt(v chart.Value) (int, bool) {
	switch v.Kind() {
	case chart.KindInt:
		return v.Int(), true
	case chart.KindFloat:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return int(math.Trunc(f)), true
	case chart.KindText:
		n, err := parseInt(v.Text())
		return n, err == nil
	default:
		return 0, false
	}
}

func toFloat(v chart.Value) (float64, bool) {
	switch v.Kind() {
	case chart.KindInt:
		return float64(v.Int()), true
	case chart.KindFloat:
		return v.Float(), true
	case chart.KindText:
		s := strings.TrimSpace(v.Text())
		if strings.HasPrefix(strings.ToLower(strings.TrimLeft(s, "+-")), "0x") {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
