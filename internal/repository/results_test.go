package repository

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"entgo.io/ent/dialect"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/nursechart/constants"
	"github.com/joseph-ayodele/nursechart/internal/common"
	"github.com/joseph-ayodele/nursechart/internal/entity"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), Config{DSN: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(context.Background()))
	return db
}

func record(source string, valid bool, at time.Time) *entity.ChartRecord {
	status, errs := constants.RecordStatusValidated, 0
	if !valid {
		status, errs = constants.RecordStatusInvalid, 1
	}
	return &entity.ChartRecord{
		ID:            uuid.New(),
		Source:        source,
		ExtractedText: "Pulse: 72",
		ChartJSON:     json.RawMessage(`{"pulse":"72"}`),
		ReportJSON:    json.RawMessage(`{"is_valid":true,"errors":[],"warnings":[],"validated_fields":{}}`),
		Confidence:    0.2,
		IsValid:       valid,
		ErrorCount:    errs,
		Status:        status,
		CreatedAt:     at,
	}
}

func TestResultRepository_SaveGet(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewResultRepository(db, nil)
	assert.Equal(t, dialect.SQLite, db.Dialect())

	at := time.Date(2024, 3, 1, 9, 30, 0, 123456000, time.UTC)
	rec := record("chart.png", false, at)
	require.NoError(t, repo.Save(ctx, rec))

	got, err := repo.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, at.Equal(got.CreatedAt))
	got.CreatedAt = rec.CreatedAt
	assert.Equal(t, rec, got)

	// same id replaces the row
	rec.Status = constants.RecordStatusValidated
	rec.IsValid = true
	rec.ErrorCount = 0
	require.NoError(t, repo.Save(ctx, rec))
	got, err = repo.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.RecordStatusValidated, got.Status)
	assert.True(t, got.IsValid)

	_, err = repo.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestResultRepository_SaveDefaults(t *testing.T) {
	ctx := context.Background()
	repo := NewResultRepository(openTestDB(t), nil)

	rec := record("stdin", true, time.Time{})
	rec.ID = uuid.Nil
	require.NoError(t, repo.Save(ctx, rec))
	assert.NotEqual(t, uuid.Nil, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())

	got, err := repo.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.CreatedAt.UnixMicro(), got.CreatedAt.UnixMicro())
}

func TestResultRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := NewResultRepository(openTestDB(t), nil)

	day := func(d int) time.Time { return time.Date(2024, 3, d, 12, 0, 0, 0, time.UTC) }
	recs := []*entity.ChartRecord{
		record("a.txt", true, day(1)),
		record("b.txt", false, day(2)),
		record("c.txt", true, day(3)),
		record("d.txt", false, day(4)),
	}
	for _, r := range recs {
		require.NoError(t, repo.Save(ctx, r))
	}

	sources := func(rs []*entity.ChartRecord) []string {
		out := make([]string, len(rs))
		for i, r := range rs {
			out[i] = r.Source
		}
		return out
	}
	from, to := day(2), day(3)

	tests := []struct {
		name   string
		filter ListFilter
		want   []string
	}{
		{"all newest first", ListFilter{}, []string{"d.txt", "c.txt", "b.txt", "a.txt"}},
		{"window", ListFilter{From: &from, To: &to}, []string{"c.txt", "b.txt"}},
		{"from only", ListFilter{From: &to}, []string{"d.txt", "c.txt"}},
		{"only invalid", ListFilter{OnlyInvalid: true}, []string{"d.txt", "b.txt"}},
		{"limit", ListFilter{Limit: 1}, []string{"d.txt"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sources(got))
		})
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, Config{DSN: "mysql://localhost/charts"}, nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	db, err := Open(ctx, Config{DSN: "sqlite:" + filepath.Join(t.TempDir(), "charts.db")}, nil)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Migrate(ctx))
	assert.NoError(t, HealthCheck(ctx, db, time.Second, nil))
}

func TestConfigFromCommon(t *testing.T) {
	cfg := ConfigFromCommon(common.DatabaseConfig{DSN: ":memory:", MaxConns: 3, DialTimeout: time.Second})
	assert.Equal(t, Config{DSN: ":memory:", MaxConns: 3, DialTimeout: time.Second}, cfg)
}
