package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/nursechart/constants"
	"github.com/joseph-ayodele/nursechart/internal/common"
	"github.com/joseph-ayodele/nursechart/internal/entity"
)

const tableChartRecords = "chart_records"

var chartColumns = []string{
	"id", "source", "extracted_text", "chart_json", "report_json",
	"confidence", "is_valid", "error_count", "status", "created_at",
}

// ListFilter narrows List. From and To bound created_at inclusively.
type ListFilter struct {
	From        *time.Time
	To          *time.Time
	OnlyInvalid bool
	Limit       int
}

type ResultRepository interface {
	Save(ctx context.Context, rec *entity.ChartRecord) error
	Get(ctx context.Context, id uuid.UUID) (*entity.ChartRecord, error)
	List(ctx context.Context, filter ListFilter) ([]*entity.ChartRecord, error)
}

type resultRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewResultRepository(db *DB, logger *slog.Logger) ResultRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &resultRepository{db: db, logger: logger}
}

// chartRow mirrors a chart_records row. created_at is unix microseconds.
type chartRow struct {
	ID            string  `sql:"id"`
	Source        string  `sql:"source"`
	ExtractedText string  `sql:"extracted_text"`
	ChartJSON     string  `sql:"chart_json"`
	ReportJSON    string  `sql:"report_json"`
	Confidence    float64 `sql:"confidence"`
	IsValid       bool    `sql:"is_valid"`
	ErrorCount    int64   `sql:"error_count"`
	Status        string  `sql:"status"`
	CreatedAt     int64   `sql:"created_at"`
}

func (r chartRow) toEntity() (*entity.ChartRecord, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("chart record id %q: %w", r.ID, err)
	}
	return &entity.ChartRecord{
		ID:            id,
		Source:        r.Source,
		ExtractedText: r.ExtractedText,
		ChartJSON:     json.RawMessage(r.ChartJSON),
		ReportJSON:    json.RawMessage(r.ReportJSON),
		Confidence:    r.Confidence,
		IsValid:       r.IsValid,
		ErrorCount:    int(r.ErrorCount),
		Status:        constants.RecordStatus(r.Status),
		CreatedAt:     time.UnixMicro(r.CreatedAt).UTC(),
	}, nil
}

// Save inserts the record, replacing any row with the same id.
func (r *resultRepository) Save(ctx context.Context, rec *entity.ChartRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	query, args := entsql.Dialect(r.db.Dialect()).
		Insert(tableChartRecords).
		Columns(chartColumns...).
		Values(
			rec.ID.String(), rec.Source, rec.ExtractedText, string(rec.ChartJSON), string(rec.ReportJSON),
			rec.Confidence, rec.IsValid, rec.ErrorCount, string(rec.Status), rec.CreatedAt.UnixMicro(),
		).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues()).
		Query()
	if err := r.db.Driver.Exec(ctx, query, args, nil); err != nil {
		r.logger.Error("failed to save chart record", "id", rec.ID, "error", err)
		return common.NewAppError("DB_ERROR", "save chart record", err)
	}
	r.logger.Debug("chart record saved", "id", rec.ID, "status", rec.Status)
	return nil
}

func (r *resultRepository) Get(ctx context.Context, id uuid.UUID) (*entity.ChartRecord, error) {
	sel := entsql.Dialect(r.db.Dialect()).
		Select(chartColumns...).
		From(entsql.Table(tableChartRecords)).
		Where(entsql.EQ("id", id.String())).
		Limit(1)
	recs, err := r.query(ctx, sel)
	if err != nil {
		r.logger.Error("failed to get chart record", "id", id, "error", err)
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("chart record %s: %w", id, common.ErrNotFound)
	}
	return recs[0], nil
}

// List returns matching records, newest first.
func (r *resultRepository) List(ctx context.Context, filter ListFilter) ([]*entity.ChartRecord, error) {
	sel := entsql.Dialect(r.db.Dialect()).
		Select(chartColumns...).
		From(entsql.Table(tableChartRecords))

	var preds []*entsql.Predicate
	if filter.From != nil {
		preds = append(preds, entsql.GTE("created_at", filter.From.UnixMicro()))
	}
	if filter.To != nil {
		preds = append(preds, entsql.LTE("created_at", filter.To.UnixMicro()))
	}
	if filter.OnlyInvalid {
		preds = append(preds, entsql.EQ("is_valid", false))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	sel.OrderBy(entsql.Desc("created_at"), entsql.Desc("id"))
	if filter.Limit > 0 {
		sel.Limit(filter.Limit)
	}

	recs, err := r.query(ctx, sel)
	if err != nil {
		r.logger.Error("failed to list chart records", "error", err)
		return nil, err
	}
	return recs, nil
}

func (r *resultRepository) query(ctx context.Context, sel *entsql.Selector) ([]*entity.ChartRecord, error) {
	query, args := sel.Query()
	var rows entsql.Rows
	if err := r.db.Driver.Query(ctx, query, args, &rows); err != nil {
		return nil, common.NewAppError("DB_ERROR", "query chart records", err)
	}
	defer rows.Close()

	var raw []chartRow
	if err := entsql.ScanSlice(&rows, &raw); err != nil {
		return nil, common.NewAppError("DB_ERROR", "scan chart records", err)
	}
	out := make([]*entity.ChartRecord, 0, len(raw))
	for _, row := range raw {
		rec, err := row.toEntity()
		if err != nil {
			return nil, common.NewAppError("DB_ERROR", "decode chart record", err)
		}
		out = append(out, rec)
	}
	return out, nil
}
