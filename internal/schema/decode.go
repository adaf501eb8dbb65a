package schema

import (
	"log/slog"

	"github.com/joseph-ayodele/nursechart/internal/chart"
	"github.com/joseph-ayodele/nursechart/internal/common"
)

// DecodeChart sanitizes an inbound JSON chart, checks it against
// BuildChartJSONSchema and decodes it. The second result lists the keys
// that were renamed or dropped.
func DecodeChart(raw []byte, logger *slog.Logger) (*chart.Chart, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	clean, dropped, err := NormalizeAndSanitizeJSON(raw, logger)
	if err != nil {
		return nil, dropped, common.NewAppError("SCHEMA_ERROR", err.Error(), common.ErrInvalidInput)
	}
	if err := ValidateJSONAgainstSchema(BuildChartJSONSchema(), clean); err != nil {
		logger.Debug("schema.validate.failed", "error", err)
		return nil, dropped, common.NewAppError("SCHEMA_ERROR", err.Error(), common.ErrInvalidInput)
	}
	c := chart.New()
	if err := c.UnmarshalJSON(clean); err != nil {
		return nil, dropped, common.NewAppError("SCHEMA_ERROR", err.Error(), common.ErrInvalidInput)
	}
	return c, dropped, nil
}
