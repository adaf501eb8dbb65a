package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/nursechart/constants"
)

// ChartRecord is one processed chart as stored in chart_records.
type ChartRecord struct {
	ID            uuid.UUID              `json:"id"`
	Source        string                 `json:"source"`
	ExtractedText string                 `json:"extracted_text"`
	ChartJSON     json.RawMessage        `json:"chart_json"`
	ReportJSON    json.RawMessage        `json:"report_json"`
	Confidence    float64                `json:"confidence"`
	IsValid       bool                   `json:"is_valid"`
	ErrorCount    int                    `json:"error_count"`
	Status        constants.RecordStatus `json:"status"`
	CreatedAt     time.Time              `json:"created_at"`
}
