package fields

import (
	"github.com/joseph-ayodele/nursechart/constants"
	"github.com/joseph-ayodele/nursechart/internal/chart"
)

// Confidence is the share of essential fields present with a truthy value,
// rounded to two decimals.
func Confidence(c *chart.Chart) float64 {
	present := 0
	for _, name := range constants.EssentialFields {
		if v, ok := c.Get(name); ok && v.Truthy() {
			present++
		}
	}
	return chart.Round(float64(present)/float64(len(constants.EssentialFields)), 2)
}
