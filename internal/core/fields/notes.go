package fields

import (
	"strings"

	"github.com/joseph-ayodele/nursechart/constants"
)

type clinicalNotes struct {
	Raw       string
	WordCount int
	Urgency   string
}

func parseClinicalNotes(text string) (clinicalNotes, bool) {
	m := notesSection.FindStringSubmatch(text)
	if m == nil {
		return clinicalNotes{}, false
	}
	raw := strings.TrimSpace(m[1])
	return clinicalNotes{
		Raw:       raw,
		WordCount: len(strings.Fields(raw)),
		Urgency:   Urgency(raw),
	}, true
}

// Urgency returns "high" when any urgency keyword appears in s.
func Urgency(s string) string {
	lower := strings.ToLower(s)
	for _, kw := range constants.UrgencyKeywords {
		if strings.Contains(lower, kw) {
			return constants.UrgencyHigh
		}
	}
	return constants.UrgencyNormal
}
