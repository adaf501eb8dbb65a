package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/nursechart/constants"
	"github.com/joseph-ayodele/nursechart/internal/entity"
	"github.com/joseph-ayodele/nursechart/internal/repository"
)

type fakeRepo struct {
	recs   []*entity.ChartRecord
	err    error
	filter repository.ListFilter
}

func (f *fakeRepo) Save(context.Context, *entity.ChartRecord) error { return nil }

func (f *fakeRepo) Get(context.Context, uuid.UUID) (*entity.ChartRecord, error) {
	return nil, errors.New("not used")
}

func (f *fakeRepo) List(_ context.Context, filter repository.ListFilter) ([]*entity.ChartRecord, error) {
	f.filter = filter
	return f.recs, f.err
}

func TestExportResultsXLSX(t *testing.T) {
	repo := &fakeRepo{recs: []*entity.ChartRecord{
		{
			ID:     uuid.New(),
			Source: "ward3/chart.png",
			ChartJSON: json.RawMessage(`{"patient_name":"John Smith","patient_id":"12345","date":"01/15/2024",` +
				`"blood_pressure":{"systolic":120,"diastolic":80,"interpretation":"elevated"},"pulse":"72",` +
				`"temperature":"98.6F","respiratory_rate":"16","oxygen_saturation":"98",` +
				`"temperature_celsius":37.0,"temperature_interpretation":"normal","mean_arterial_pressure":93.3,"urgency_level":"normal"}`),
			ReportJSON: json.RawMessage(`{"is_valid":true,"errors":[],"warnings":[],"validated_fields":{}}`),
			Confidence: 1.0,
			IsValid:    true,
			Status:     constants.RecordStatusValidated,
			CreatedAt:  time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC),
		},
		{
			ID:         uuid.New(),
			Source:     "stdin",
			ChartJSON:  json.RawMessage(`{"temperature":"45.0","temperature_celsius":45.0,"pulse":["72","80"]}`),
			ReportJSON: json.RawMessage(`{"is_valid":false,"errors":["pulse: Pulse must be a numeric value","temperature: Temperature 45.0°C outside valid range (35.0-42.0)"]}`),
			Confidence: 0.2,
			IsValid:    false,
			ErrorCount: 2,
			Status:     constants.RecordStatusInvalid,
			CreatedAt:  time.Date(2024, 1, 16, 9, 30, 0, 0, time.UTC),
		},
	}}
	svc := NewService(repo, nil)

	b, err := svc.ExportResultsXLSX(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Nil(t, repo.filter.From)
	assert.Nil(t, repo.filter.To)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, headers, rows[0])
	assert.Equal(t, []string{
		"2024-01-15T08:00:00Z", "ward3/chart.png", "John Smith", "12345", "01/15/2024",
		"120/80", "93.3", "72", "37", "16", "98", "normal", "1", "yes",
	}, rows[1])
	assert.Equal(t, []string{
		"2024-01-16T09:30:00Z", "stdin", "", "", "",
		"", "", "72, 80", "45", "", "", "", "0.2", "no",
		"pulse: Pulse must be a numeric value; temperature: Temperature 45.0°C outside valid range (35.0-42.0)",
	}, rows[2])
}

func TestExportResultsXLSX_Window(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }
	now := time.Date(2024, 3, 10, 15, 4, 5, 0, time.UTC)
	endOf := func(t time.Time) time.Time { return t.AddDate(0, 0, 1).Add(-time.Microsecond) }

	tests := []struct {
		name     string
		from, to *time.Time
		wantFrom *time.Time
		wantTo   *time.Time
	}{
		{"from only runs to today", ptr(day(2024, 3, 1)), nil, ptr(day(2024, 3, 1)), ptr(endOf(day(2024, 3, 10)))},
		{"to only", nil, ptr(day(2024, 3, 5)), nil, ptr(endOf(day(2024, 3, 5)))},
		{"both", ptr(time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)), ptr(day(2024, 3, 2)), ptr(day(2024, 3, 1)), ptr(endOf(day(2024, 3, 2)))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{}
			svc := NewService(repo, nil, WithClock(func() time.Time { return now }))
			_, err := svc.ExportResultsXLSX(context.Background(), tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFrom, repo.filter.From)
			assert.Equal(t, tt.wantTo, repo.filter.To)
		})
	}
}

func TestExportResultsXLSX_RepoError(t *testing.T) {
	boom := errors.New("db down")
	_, err := NewService(&fakeRepo{err: boom}, nil).ExportResultsXLSX(context.Background(), nil, nil)
	assert.ErrorIs(t, err, boom)
}

func ptr[T any](v T) *T { return &v }
