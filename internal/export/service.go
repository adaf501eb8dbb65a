package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/nursechart/constants"
	"github.com/joseph-ayodele/nursechart/internal/chart"
	"github.com/joseph-ayodele/nursechart/internal/entity"
	"github.com/joseph-ayodele/nursechart/internal/repository"
)

const SheetName = "Charts"

var headers = []string{
	"Recorded At",
	"Source",
	"Patient",
	"Patient ID",
	"Date",
	"BP",
	"MAP",
	"Pulse",
	"Temp (°C)",
	"Resp Rate",
	"SpO2",
	"Urgency",
	"Confidence",
	"Valid",
	"Errors",
}

// Service is a tiny façade over the result repository that produces XLSX bytes for exports.
type Service struct {
	repo   repository.ResultRepository
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(repo repository.ResultRepository, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{repo: repo, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExportResultsXLSX returns an XLSX workbook (as bytes) of the charts recorded
// in the given date window. Both bounds are whole UTC days, inclusive.
// If only from is provided -> from..today.
// If only to is provided   -> beginning..to.
// If neither is provided   -> all charts.
func (s *Service) ExportResultsXLSX(ctx context.Context, from, to *time.Time) ([]byte, error) {
	start := time.Now()

	var filter repository.ListFilter
	if from != nil {
		f := startOfDay(*from)
		filter.From = &f
		if to == nil {
			today := s.now()
			to = &today
		}
	}
	if to != nil {
		t := startOfDay(*to).AddDate(0, 0, 1).Add(-time.Microsecond)
		filter.To = &t
	}

	recs, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query chart records: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, err
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(SheetName, cell, h)
	}

	for i, rec := range recs {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(SheetName, cell, v)
		}
		for col, v := range s.rowValues(rec) {
			write(col+1, v)
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 22) // recorded at
	_ = f.SetColWidth(SheetName, "B", "B", 28) // source
	_ = f.SetColWidth(SheetName, "C", "C", 24) // patient
	_ = f.SetColWidth(SheetName, "O", "O", 60) // errors

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func (s *Service) rowValues(rec *entity.ChartRecord) []any {
	c := chart.New()
	if err := c.UnmarshalJSON(rec.ChartJSON); err != nil {
		s.logger.Warn("export.chart.decode_failed", "id", rec.ID, "error", err)
	}
	var report struct {
		Errors []string `json:"errors"`
	}
	if err := json.NewDecoder(bytes.NewReader(rec.ReportJSON)).Decode(&report); err != nil {
		s.logger.Warn("export.report.decode_failed", "id", rec.ID, "error", err)
	}

	valid := "no"
	if rec.IsValid {
		valid = "yes"
	}
	return []any{
		rec.CreatedAt.UTC().Format(time.RFC3339),
		rec.Source,
		cellValue(c, constants.FieldPatientName),
		cellValue(c, constants.FieldPatientID),
		cellValue(c, constants.FieldDate),
		cellValue(c, constants.FieldBloodPressure),
		cellValue(c, constants.FieldMeanArterialPressure),
		cellValue(c, constants.FieldPulse),
		cellValue(c, constants.FieldTemperatureCelsius),
		cellValue(c, constants.FieldRespiratoryRate),
		cellValue(c, constants.FieldOxygenSaturation),
		cellValue(c, constants.FieldUrgencyLevel),
		rec.Confidence,
		valid,
		strings.Join(report.Errors, "; "),
	}
}

func cellValue(c *chart.Chart, field string) any {
	v, ok := c.Get(field)
	if !ok {
		return ""
	}
	switch v.Kind() {
	case chart.KindInt:
		return v.Int()
	case chart.KindFloat:
		return v.Float()
	default:
		return v.String()
	}
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
