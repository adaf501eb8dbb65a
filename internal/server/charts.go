package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/joseph-ayodele/nursechart/internal/common"
	"github.com/joseph-ayodele/nursechart/internal/core"
	"github.com/joseph-ayodele/nursechart/internal/core/validate"
	"github.com/joseph-ayodele/nursechart/internal/entity"
	"github.com/joseph-ayodele/nursechart/internal/export"
	"github.com/joseph-ayodele/nursechart/internal/repository"
	"github.com/joseph-ayodele/nursechart/internal/schema"
)

const (
	maxTextBytes   = 1 << 20
	maxSourceBytes = 512
	defaultSource  = "rpc"
)

// ChartServer implements ChartServiceServer. The repository and exporter
// are optional; RPCs that need them return Unavailable when absent.
type ChartServer struct {
	processor *core.Processor
	validator *validate.Validator
	repo      repository.ResultRepository
	exporter  *export.Service
	logger    *slog.Logger
}

func NewChartServer(processor *core.Processor, validator *validate.Validator, repo repository.ResultRepository, exporter *export.Service, logger *slog.Logger) *ChartServer {
	if logger == nil {
		logger = slog.Default()
	}
	if validator == nil {
		validator = validate.New(validate.WithLogger(logger))
	}
	return &ChartServer{
		processor: processor,
		validator: validator,
		repo:      repo,
		exporter:  exporter,
		logger:    logger,
	}
}

func (s *ChartServer) ParseText(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	text := fields["text"].GetStringValue()
	source := strings.TrimSpace(fields["source"].GetStringValue())
	persist := fields["persist"].GetBoolValue()

	v := common.NewValidator().
		Field("text", text, common.MaxLengthRule(maxTextBytes)).
		Field("source", source, common.MaxLengthRule(maxSourceBytes))
	if err := common.ValidateAndReturnError(v); err != nil {
		s.logger.Error("parse text request invalid", "error", v.ErrorMessage())
		return nil, err
	}
	if source == "" {
		source = defaultSource
	}
	ctx = common.WithSource(ctx, source)

	var (
		res *core.Result
		err error
	)
	if persist {
		if !s.processor.HasRepository() {
			return nil, common.UnavailableError("persistence is not configured")
		}
		res, err = s.processor.ProcessText(ctx, source, text)
	} else {
		res, err = s.processor.Analyze(ctx, source, text)
	}
	if err != nil {
		s.logger.Error("parse text failed", "source", source, "request_id", common.RequestIDFromContext(ctx), "error", err)
		return nil, common.ToStatus(err)
	}

	full := res.ToMap()
	out, err := structpb.NewStruct(map[string]any{
		"id":                 full["id"],
		"structured_data":    full["structured_data"],
		"validation_results": full["validation_results"],
	})
	if err != nil {
		return nil, common.InternalErrorf("encode result: %v", err)
	}
	return out, nil
}

func (s *ChartServer) ValidateChart(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	chartVal, ok := req.GetFields()["chart"]
	if !ok || chartVal.GetStructValue() == nil {
		return nil, common.InvalidArgumentError("chart is required and must be an object")
	}
	raw, err := json.Marshal(chartVal.GetStructValue().AsMap())
	if err != nil {
		return nil, common.InvalidArgumentErrorf("chart: %v", err)
	}

	c, dropped, err := schema.DecodeChart(raw, s.logger)
	if err != nil {
		s.logger.Error("validate chart decode failed", "request_id", common.RequestIDFromContext(ctx), "error", err)
		return nil, common.ToStatus(err)
	}
	report := s.validator.Validate(c)

	droppedAny := make([]any, len(dropped))
	for i, d := range dropped {
		droppedAny[i] = d
	}
	out, err := structpb.NewStruct(map[string]any{
		"validation_results": report.ToMap(),
		"dropped":            droppedAny,
	})
	if err != nil {
		return nil, common.InternalErrorf("encode report: %v", err)
	}
	return out, nil
}

func (s *ChartServer) GetResult(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	raw := strings.TrimSpace(req.GetValue())
	v := common.NewValidator().Field("id", raw, common.Required, common.UUID)
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}
	if s.repo == nil {
		return nil, common.UnavailableError("persistence is not configured")
	}

	rec, err := s.repo.Get(ctx, uuid.MustParse(raw))
	if err != nil {
		s.logger.Error("get result failed", "id", raw, "error", err)
		return nil, common.ToStatus(err)
	}
	m, err := recordToMap(rec)
	if err != nil {
		return nil, common.InternalErrorf("decode stored result: %v", err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, common.InternalErrorf("encode result: %v", err)
	}
	return out, nil
}

// ExportResults parses optional dates (YYYY-MM-DD):
// - only from -> from..today (inclusive)
// - only to   -> beginning..to (inclusive)
// - none      -> all.
func (s *ChartServer) ExportResults(ctx context.Context, req *structpb.Struct) (*wrapperspb.BytesValue, error) {
	fd := strings.TrimSpace(req.GetFields()["from_date"].GetStringValue())
	td := strings.TrimSpace(req.GetFields()["to_date"].GetStringValue())
	v := common.NewValidator().
		Field("from_date", fd, common.DateString).
		Field("to_date", td, common.DateString)
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}
	if s.exporter == nil {
		return nil, common.UnavailableError("persistence is not configured")
	}

	var fromPtr, toPtr *time.Time
	if fd != "" {
		t, _ := time.Parse(time.DateOnly, fd)
		fromPtr = &t
	}
	if td != "" {
		t, _ := time.Parse(time.DateOnly, td)
		toPtr = &t
	}
	if fromPtr != nil && toPtr != nil && toPtr.Before(*fromPtr) {
		return nil, common.InvalidArgumentError("to_date must not be before from_date")
	}

	xlsx, err := s.exporter.ExportResultsXLSX(ctx, fromPtr, toPtr)
	if err != nil {
		s.logger.Error("export.xlsx.failed", "error", err)
		return nil, common.ToStatus(err)
	}
	return wrapperspb.Bytes(xlsx), nil
}

func recordToMap(rec *entity.ChartRecord) (map[string]any, error) {
	var chartMap, reportMap map[string]any
	if err := json.Unmarshal(rec.ChartJSON, &chartMap); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(rec.ReportJSON, &reportMap); err != nil {
		return nil, err
	}
	return map[string]any{
		"id":                 rec.ID.String(),
		"source":             rec.Source,
		"extracted_text":     rec.ExtractedText,
		"structured_data":    chartMap,
		"validation_results": reportMap,
		"confidence":         rec.Confidence,
		"is_valid":           rec.IsValid,
		"error_count":        rec.ErrorCount,
		"status":             string(rec.Status),
		"created_at":         rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	}, nil
}
