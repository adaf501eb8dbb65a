package fields

import (
	"strconv"
	"strings"

	"github.com/joseph-ayodele/nursechart/constants"
	"github.com/joseph-ayodele/nursechart/internal/chart"
)

// Plausibility bounds applied before a reading becomes structured.
const (
	minSystolic  = 50
	maxSystolic  = 250
	minDiastolic = 30
	maxDiastolic = 150
)

// parseBloodPressure reads the first labelled "systolic/diastolic" pair.
func parseBloodPressure(text string) (chart.BloodPressure, bool) {
	m := bpPattern.FindStringSubmatch(text)
	if m == nil {
		return chart.BloodPressure{}, false
	}
	parts := bpSplit.Split(strings.TrimSpace(m[1]), 2)
	if len(parts) != 2 {
		return chart.BloodPressure{}, false
	}
	sys, err := strconv.Atoi(parts[0])
	if err != nil {
		return chart.BloodPressure{}, false
	}
	dia, err := strconv.Atoi(parts[1])
	if err != nil {
		return chart.BloodPressure{}, false
	}
	if sys < minSystolic || sys > maxSystolic || dia < minDiastolic || dia > maxDiastolic {
		return chart.BloodPressure{}, false
	}
	return chart.BloodPressure{
		Systolic:       sys,
		Diastolic:      dia,
		Interpretation: InterpretBloodPressure(sys, dia),
	}, true
}

// InterpretBloodPressure classifies a reading. Hypotension is checked first
// and hypertension wins over elevated.
func InterpretBloodPressure(systolic, diastolic int) constants.Interpretation {
	switch {
	case systolic < 90 || diastolic < 60:
		return constants.Hypotensive
	case systolic >= 140 || diastolic >= 90:
		return constants.Hypertensive
	case systolic >= 120 || diastolic >= 80:
		return constants.Elevated
	default:
		return constants.Normal
	}
}

type temperatureReading struct {
	Celsius        float64
	Interpretation constants.Interpretation
}

// parseTemperature finds a reading and converts it to Celsius. With loose
// set, any number in the text is taken as the reading.
func parseTemperature(text string, loose bool) (temperatureReading, bool) {
	re := tempReading
	if loose {
		re = tempLoose
	}
	m := re.FindStringSubmatch(text)
	if m == nil {
		return temperatureReading{}, false
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(m[1], "."), 64)
	if err != nil {
		return temperatureReading{}, false
	}
	if strings.EqualFold(m[2], "F") {
		v = FahrenheitToCelsius(v)
	}
	return temperatureReading{
		Celsius:        chart.Round(v, 1),
		Interpretation: InterpretTemperature(v),
	}, true
}

func FahrenheitToCelsius(f float64) float64 {
	return (f - 32) * 5 / 9
}

// InterpretTemperature classifies a Celsius reading.
func InterpretTemperature(c float64) constants.Interpretation {
	switch {
	case c < 36.0:
		return constants.Hypothermic
	case c > 38.0:
		return constants.Febrile
	case c > 37.5:
		return constants.Elevated
	default:
		return constants.Normal
	}
}

// MeanArterialPressure is (2*diastolic + systolic)/3 rounded to one decimal.
func MeanArterialPressure(bp chart.BloodPressure) float64 {
	return chart.Round(float64(2*bp.Diastolic+bp.Systolic)/3, 1)
}
