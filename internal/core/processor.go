package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/nursechart/constants"
	"github.com/joseph-ayodele/nursechart/internal/chart"
	"github.com/joseph-ayodele/nursechart/internal/common"
	"github.com/joseph-ayodele/nursechart/internal/core/fields"
	"github.com/joseph-ayodele/nursechart/internal/core/ocr"
	"github.com/joseph-ayodele/nursechart/internal/core/validate"
	"github.com/joseph-ayodele/nursechart/internal/entity"
	"github.com/joseph-ayodele/nursechart/internal/metrics"
	"github.com/joseph-ayodele/nursechart/internal/repository"
)

// ProcessingMetadata describes how a Result was produced.
type ProcessingMetadata struct {
	OCREngine     string    `json:"ocr_engine"`
	OCRConfidence float64   `json:"ocr_confidence,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	DurationMS    int64     `json:"duration_ms"`
	Warnings      []string  `json:"warnings,omitempty"`
}

// Result is the outcome of processing one chart.
type Result struct {
	ID                 uuid.UUID          `json:"id"`
	Source             string             `json:"source"`
	ExtractedText      string             `json:"extracted_text"`
	StructuredData     *chart.Chart       `json:"structured_data"`
	ValidationResults  *validate.Report   `json:"validation_results"`
	ProcessingMetadata ProcessingMetadata `json:"processing_metadata"`
}

// ToMap flattens the result into plain maps, lists and scalars.
func (r *Result) ToMap() map[string]any {
	meta := map[string]any{
		"ocr_engine":  r.ProcessingMetadata.OCREngine,
		"timestamp":   r.ProcessingMetadata.Timestamp.Format(time.RFC3339Nano),
		"duration_ms": r.ProcessingMetadata.DurationMS,
	}
	if r.ProcessingMetadata.OCRConfidence > 0 {
		meta["ocr_confidence"] = r.ProcessingMetadata.OCRConfidence
	}
	return map[string]any{
		"id":                  r.ID.String(),
		"source":              r.Source,
		"extracted_text":      r.ExtractedText,
		"structured_data":     r.StructuredData.ToMap(),
		"validation_results":  r.ValidationResults.ToMap(),
		"processing_metadata": meta,
	}
}

// Record converts the result into its stored form.
func (r *Result) Record() (*entity.ChartRecord, error) {
	chartJSON, err := json.Marshal(r.StructuredData)
	if err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}
	reportJSON, err := json.Marshal(r.ValidationResults)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	status := constants.RecordStatusValidated
	if !r.ValidationResults.IsValid {
		status = constants.RecordStatusInvalid
	}
	return &entity.ChartRecord{
		ID:            r.ID,
		Source:        r.Source,
		ExtractedText: r.ExtractedText,
		ChartJSON:     chartJSON,
		ReportJSON:    reportJSON,
		Confidence:    r.StructuredData.Confidence(),
		IsValid:       r.ValidationResults.IsValid,
		ErrorCount:    len(r.ValidationResults.Errors),
		Status:        status,
		CreatedAt:     r.ProcessingMetadata.Timestamp,
	}, nil
}

// Processor coordinates text acquisition, field extraction, validation and storage.
type Processor struct {
	logger       *slog.Logger
	extractor    *fields.Extractor
	validator    *validate.Validator
	ocrExtractor *ocr.Extractor
	repo         repository.ResultRepository
	recorder     metrics.Recorder
	now          func() time.Time
}

type Option func(*Processor)

// WithOCR enables ProcessImage.
func WithOCR(e *ocr.Extractor) Option {
	return func(p *Processor) { p.ocrExtractor = e }
}

// WithRepository persists every processed chart.
func WithRepository(r repository.ResultRepository) Option {
	return func(p *Processor) { p.repo = r }
}

func WithRecorder(r metrics.Recorder) Option {
	return func(p *Processor) {
		if r != nil {
			p.recorder = r
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		if now != nil {
			p.now = now
		}
	}
}

func NewProcessor(logger *slog.Logger, extractor *fields.Extractor, validator *validate.Validator, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if extractor == nil {
		extractor = fields.New(fields.WithLogger(logger))
	}
	if validator == nil {
		validator = validate.New(validate.WithLogger(logger))
	}
	p := &Processor{
		logger:    logger,
		extractor: extractor,
		validator: validator,
		recorder:  metrics.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// HasRepository reports whether results are persisted.
func (p *Processor) HasRepository() bool { return p.repo != nil }

// ProcessText parses and validates raw chart text and, when a repository is
// configured, stores the result. Empty text is not an error.
func (p *Processor) ProcessText(ctx context.Context, source, text string) (*Result, error) {
	res, err := p.analyze(ctx, source, text, constants.SourceText, ProcessingMetadata{})
	if err != nil {
		return nil, err
	}
	if err := p.save(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Analyze parses and validates text without storing anything.
func (p *Processor) Analyze(ctx context.Context, source, text string) (*Result, error) {
	return p.analyze(ctx, source, text, constants.SourceText, ProcessingMetadata{})
}

// ProcessImage runs OCR on an image and processes the recognised text.
func (p *Processor) ProcessImage(ctx context.Context, path string) (*Result, error) {
	if !constants.IsImageExt(filepath.Ext(path)) {
		return nil, common.NewAppError("PROCESS_ERROR", fmt.Sprintf("unsupported file %s", filepath.Base(path)), common.ErrUnsupportedSource)
	}
	if p.ocrExtractor == nil {
		return nil, common.NewAppError("PROCESS_ERROR", "ocr is not configured", common.ErrUnavailable)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ocrRes, err := p.ocrExtractor.Extract(ctx, path)
	if err != nil {
		p.logger.Error("processor.ocr.failed", "path", path, "error", err)
		if errors.Is(err, common.ErrNoText) {
			p.saveFailed(ctx, path)
		}
		return nil, err
	}
	p.logger.Debug("processor.ocr.ok",
		"path", path,
		"chars", len(ocrRes.Text),
		"confidence", ocrRes.Confidence,
	)

	res, err := p.analyze(ctx, path, ocrRes.Text, constants.SourceImage, ProcessingMetadata{
		OCREngine:     ocrRes.Engine,
		OCRConfidence: ocrRes.Confidence,
		Warnings:      ocrRes.Warnings,
	})
	if err != nil {
		return nil, err
	}
	if err := p.save(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (p *Processor) analyze(ctx context.Context, source, text, kind string, meta ProcessingMetadata) (*Result, error) {
	start := p.now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := p.extractor.Parse(text)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	report := p.validator.Validate(c)

	if meta.OCREngine == "" {
		meta.OCREngine = "none"
	}
	meta.Timestamp = start.UTC()
	took := p.now().Sub(start)
	meta.DurationMS = took.Milliseconds()

	failed := make([]string, 0, len(report.Errors))
	for _, v := range report.ValidatedFields {
		if !v.Valid {
			failed = append(failed, v.Field)
		}
	}
	p.recorder.ChartParsed(kind, c.Confidence(), took)
	p.recorder.ChartValidated(report.IsValid, failed)

	p.logger.Info("processor.chart.done",
		"source", source,
		"fields", c.Len(),
		"confidence", c.Confidence(),
		"is_valid", report.IsValid,
		"errors", len(report.Errors),
	)
	return &Result{
		ID:                 uuid.New(),
		Source:             source,
		ExtractedText:      text,
		StructuredData:     c,
		ValidationResults:  report,
		ProcessingMetadata: meta,
	}, nil
}

func (p *Processor) save(ctx context.Context, res *Result) error {
	if p.repo == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	rec, err := res.Record()
	if err != nil {
		return common.NewAppError("PROCESS_ERROR", "encode result", err)
	}
	if err := p.repo.Save(ctx, rec); err != nil {
		p.logger.Error("processor.save.failed", "id", res.ID, "error", err)
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

// saveFailed records a chart whose text could not be obtained.
func (p *Processor) saveFailed(ctx context.Context, source string) {
	if p.repo == nil {
		return
	}
	rec := &entity.ChartRecord{
		ID:         uuid.New(),
		Source:     source,
		ChartJSON:  json.RawMessage(`{}`),
		ReportJSON: json.RawMessage(`{"is_valid":false,"errors":["no text extracted"],"warnings":[],"validated_fields":{}}`),
		ErrorCount: 1,
		Status:     constants.RecordStatusFailed,
		CreatedAt:  p.now().UTC(),
	}
	if err := p.repo.Save(ctx, rec); err != nil {
		p.logger.Error("processor.save.failed", "id", rec.ID, "error", err)
	}
}
