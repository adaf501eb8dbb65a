package ocr

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reVitalsLabel = regexp.MustCompile(`(?i)\b(bp|blood pressure|pulse|hr|temp|temperature|resp|rr|spo2|o2 sat)\b`)
	reSlashPair   = regexp.MustCompile(`\b\d{2,3}\s*/\s*\d{2,3}\b`)
	reDateLike    = regexp.MustCompile(`\b\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4}\b`)
	rePatientTag  = regexp.MustCompile(`(?i)\b(name|patient|pt\.?|mrn|id)\s*[:\-]`)
)

// heuristicConfidence scores how much the text looks like a nursing chart.
func heuristicConfidence(txt string) float64 {
	score := 0.2
	if labels := reVitalsLabel.FindAllString(txt, -1); len(labels) > 0 {
		score += 0.1 * float64(min(len(labels), 3))
	}
	if reSlashPair.MatchString(txt) {
		score += 0.15
	}
	if reDateLike.MatchString(txt) {
		score += 0.15
	}
	if rePatientTag.MatchString(txt) {
		score += 0.1
	}
	return min(score, 1.0)
}

// meanTSVConfidence averages the word confidences of tesseract TSV output
// and scales them to 0..1. The second result is false when no word carried
// a confidence.
func meanTSVConfidence(tsv string) (float64, bool) {
	var sum, n float64
	for i, ln := range strings.Split(tsv, "\n") {
		if i == 0 || ln == "" {
			continue
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		c := cols[10]
		if c == "" || strings.HasPrefix(c, "-1") {
			continue
		}
		if v, err := strconv.ParseFloat(c, 64); err == nil {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / n / 100, true
}
