package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, ":8080", cfg.Server.GRPCAddr)
	assert.Equal(t, ":9090", cfg.Server.MetricsAddr)
	assert.Equal(t, "tesseract", cfg.OCR.Engine)
	assert.Equal(t, "eng", cfg.OCR.Lang)
	assert.Equal(t, 6, cfg.OCR.PSM)
	assert.Equal(t, int64(10<<20), cfg.OCR.MaxFileSizeBytes())
	assert.False(t, cfg.Extract.LooseTemperatureScan)
	assert.Equal(t, "info", cfg.Log.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("GRPC_ADDR", ":7000")
	t.Setenv("TESSERACT_PSM", "4")
	t.Setenv("LOOSE_TEMPERATURE_SCAN", "true")
	t.Setenv("DB_MAX_CONN_LIFETIME", "1h")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("MAX_FILE_SIZE_MB", "not-a-number")

	cfg := LoadConfig()

	assert.Equal(t, ":7000", cfg.Server.GRPCAddr)
	assert.Equal(t, 4, cfg.OCR.PSM)
	assert.True(t, cfg.Extract.LooseTemperatureScan)
	assert.Equal(t, time.Hour, cfg.Database.MaxConnLifetime)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 10, cfg.OCR.MaxFileSizeMB)
}

func TestLoadConfigFile_EnvWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nursechart.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  grpc_addr: ":6000"
  metrics_addr: ":6001"
ocr:
  lang: deu
  psm: 3
database:
  dsn: "file:charts.db"
  max_conn_idle_time: 90s
log:
  format: json
`), 0o600))
	t.Setenv("METRICS_ADDR", ":6500")

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":6000", cfg.Server.GRPCAddr)
	assert.Equal(t, ":6500", cfg.Server.MetricsAddr)
	assert.Equal(t, "deu", cfg.OCR.Lang)
	assert.Equal(t, 3, cfg.OCR.PSM)
	assert.Equal(t, "file:charts.db", cfg.Database.DSN)
	assert.Equal(t, 90*time.Second, cfg.Database.MaxConnIdleTime)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "tesseract", cfg.OCR.Tesseract)
}

func TestLoadConfigFile_Errors(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("server: [unterminated"), 0o600))
	_, err = LoadConfigFile(bad)
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFIG_ERROR", appErr.Code)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty grpc addr", func(c *Config) { c.Server.GRPCAddr = "" }},
		{"unknown engine", func(c *Config) { c.OCR.Engine = "paddle" }},
		{"psm out of range", func(c *Config) { c.OCR.PSM = 14 }},
		{"zero file size", func(c *Config) { c.OCR.MaxFileSizeMB = 0 }},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
