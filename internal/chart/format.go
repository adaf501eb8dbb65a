package chart

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatFloat prints f in its shortest form but always with a fractional
// part, so 45 renders as "45.0" and 37.25 as "37.25".
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Round rounds f to the given number of decimal places.
func Round(f float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(f*p) / p
}

func marshalFloat(f float64) ([]byte, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("chart: unsupported float %v", f)
	}
	return []byte(FormatFloat(f)), nil
}
