package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/nursechart/internal/common"
	"github.com/joseph-ayodele/nursechart/internal/core"
)

// isDirTarget reports whether output names a directory: an existing one or a
// path ending in a separator.
func isDirTarget(output string) bool {
	if strings.HasSuffix(output, "/") || strings.HasSuffix(output, string(filepath.Separator)) {
		return true
	}
	st, err := os.Stat(output)
	return err == nil && st.IsDir()
}

func checkOutput(output string, inputs int) error {
	if output == "" || inputs <= 1 || isDirTarget(output) {
		return nil
	}
	return common.NewAppError("USAGE_ERROR", "--output must be a directory when several inputs are given", common.ErrInvalidInput)
}

// resultPath maps an input to the file its result is written to.
func resultPath(output, input string) string {
	if !isDirTarget(output) {
		return output
	}
	stem := "stdin"
	if input != "-" {
		base := filepath.Base(input)
		stem = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return filepath.Join(output, stem+"_results.json")
}

func emit(logger *slog.Logger, stdout io.Writer, output, input string, res *core.Result) error {
	if output == "" {
		return writeJSON(stdout, res)
	}
	path := resultPath(output, input)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := writeJSON(f, res); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	logger.Info("results saved", "path", path, "id", res.ID)
	return nil
}

// writeJSON writes v indented, without HTML escaping.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
