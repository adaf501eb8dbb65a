package core

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/nursechart/constants"
	"github.com/joseph-ayodele/nursechart/internal/common"
	"github.com/joseph-ayodele/nursechart/internal/core/ocr"
	"github.com/joseph-ayodele/nursechart/internal/repository"
)

const johnSmith = "Name: John Smith\nBP: 120/80\nPulse: 72\nTemp: 37.2\nDate: 01/15/2024"

var fixedNow = func() time.Time { return time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC) }

type stubRunner struct{ out string }

func (s stubRunner) Run(context.Context, string, ...string) ([]byte, []byte, error) {
	return []byte(s.out), nil, nil
}

type recorder struct {
	parsed    []string
	validated []bool
	failed    []string
}

func (r *recorder) ChartParsed(kind string, _ float64, _ time.Duration) { r.parsed = append(r.parsed, kind) }
func (r *recorder) ChartValidated(valid bool, fields []string) {
	r.validated = append(r.validated, valid)
	r.failed = append(r.failed, fields...)
}
func (r *recorder) RPC(string, string) {}

func newRepo(t *testing.T) repository.ResultRepository {
	t.Helper()
	db, err := repository.Open(context.Background(), repository.Config{DSN: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(context.Background()))
	return repository.NewResultRepository(db, nil)
}

func image(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte("img"), 0o600))
	return p
}

func TestProcessText_Persists(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	rec := &recorder{}
	p := NewProcessor(nil, nil, nil, WithRepository(repo), WithRecorder(rec), WithClock(fixedNow))

	res, err := p.ProcessText(ctx, "chart.txt", johnSmith)
	require.NoError(t, err)

	assert.True(t, res.ValidationResults.IsValid)
	assert.Empty(t, res.ValidationResults.Errors)
	assert.GreaterOrEqual(t, res.StructuredData.Confidence(), 0.8)
	assert.Equal(t, "none", res.ProcessingMetadata.OCREngine)
	assert.Equal(t, fixedNow(), res.ProcessingMetadata.Timestamp)
	assert.Equal(t, []string{constants.SourceText}, rec.parsed)
	assert.Equal(t, []bool{true}, rec.validated)

	stored, err := repo.Get(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.RecordStatusValidated, stored.Status)
	assert.Equal(t, "chart.txt", stored.Source)
	assert.Equal(t, johnSmith, stored.ExtractedText)
	assert.Equal(t, 1.0, stored.Confidence)

	var chartMap map[string]any
	require.NoError(t, json.Unmarshal(stored.ChartJSON, &chartMap))
	assert.Equal(t, "John Smith", chartMap["patient_name"])
	assert.Contains(t, string(stored.ReportJSON), `"is_valid":true`)
}

func TestProcessText_Invalid(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	rec := &recorder{}
	p := NewProcessor(nil, nil, nil, WithRepository(repo), WithRecorder(rec))

	res, err := p.ProcessText(ctx, "stdin", "Temp: 45.0")
	require.NoError(t, err)
	assert.False(t, res.ValidationResults.IsValid)
	assert.Equal(t, []string{"temperature: Temperature 45.0°C outside valid range (35.0-42.0)"}, res.ValidationResults.Errors)
	assert.Equal(t, []string{constants.FieldTemperature}, rec.failed)

	stored, err := repo.Get(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.RecordStatusInvalid, stored.Status)
	assert.Equal(t, 1, stored.ErrorCount)
	assert.False(t, stored.IsValid)
}

func TestProcessText_Empty(t *testing.T) {
	p := NewProcessor(nil, nil, nil)
	res, err := p.ProcessText(context.Background(), "stdin", "")
	require.NoError(t, err)

	assert.Equal(t, 0, res.StructuredData.Len())
	require.NotNil(t, res.StructuredData.Metadata)
	assert.Equal(t, 0.0, res.StructuredData.Confidence())
	assert.True(t, res.ValidationResults.IsValid)
	assert.False(t, p.HasRepository())

	m := res.ToMap()
	assert.Equal(t, res.ID.String(), m["id"])
	assert.Contains(t, m["structured_data"], constants.FieldParsingMetadata)
}

func TestAnalyze_DoesNotPersist(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	p := NewProcessor(nil, nil, nil, WithRepository(repo))

	res, err := p.Analyze(ctx, "rpc", johnSmith)
	require.NoError(t, err)
	_, err = repo.Get(ctx, res.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestProcessImage(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	rec := &recorder{}
	extractor := ocr.NewExtractor(ocr.Config{}, nil, ocr.WithRunner(stubRunner{out: johnSmith + "\r\n"}))
	p := NewProcessor(nil, nil, nil, WithOCR(extractor), WithRepository(repo), WithRecorder(rec))

	path := image(t, "chart.jpg")
	res, err := p.ProcessImage(ctx, path)
	require.NoError(t, err)

	assert.Equal(t, path, res.Source)
	assert.Equal(t, johnSmith, res.ExtractedText)
	assert.Equal(t, "tesseract", res.ProcessingMetadata.OCREngine)
	assert.Greater(t, res.ProcessingMetadata.OCRConfidence, 0.0)
	assert.True(t, res.ValidationResults.IsValid)
	assert.Equal(t, []string{constants.SourceImage}, rec.parsed)

	stored, err := repo.Get(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, path, stored.Source)
}

func TestProcessImage_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("unsupported extension", func(t *testing.T) {
		p := NewProcessor(nil, nil, nil)
		_, err := p.ProcessImage(ctx, "chart.pdf")
		assert.ErrorIs(t, err, common.ErrUnsupportedSource)
	})

	t.Run("ocr not configured", func(t *testing.T) {
		p := NewProcessor(nil, nil, nil)
		_, err := p.ProcessImage(ctx, "chart.png")
		assert.ErrorIs(t, err, common.ErrUnavailable)
	})

	t.Run("blank image records failure", func(t *testing.T) {
		repo := newRepo(t)
		extractor := ocr.NewExtractor(ocr.Config{}, nil, ocr.WithRunner(stubRunner{out: "\n \n"}))
		p := NewProcessor(nil, nil, nil, WithOCR(extractor), WithRepository(repo))

		_, err := p.ProcessImage(ctx, image(t, "blank.png"))
		assert.ErrorIs(t, err, common.ErrNoText)

		recs, err := repo.List(ctx, repository.ListFilter{OnlyInvalid: true})
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, constants.RecordStatusFailed, recs[0].Status)
	})
}

func TestProcess_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewProcessor(nil, nil, nil)
	_, err := p.ProcessText(ctx, "stdin", johnSmith)
	assert.ErrorIs(t, err, context.Canceled)
}
