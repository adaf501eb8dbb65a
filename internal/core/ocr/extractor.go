package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/nursechart/constants"
	"github.com/joseph-ayodele/nursechart/internal/common"
)

type Config struct {
	Tesseract   string // binary name or absolute path; if empty -> "tesseract"
	Lang        string // default "eng"
	PSM         int    // 6 assumes a uniform block of text
	TessdataDir string
	MaxFileSize int64 // bytes; 0 = no limit

	// TSVConfidence runs a second tesseract pass in TSV mode and blends the
	// mean word confidence into the result.
	TSVConfidence bool
}

// ConfigFromCommon maps the application OCR settings.
func ConfigFromCommon(c common.OCRConfig) Config {
	return Config{
		Tesseract:   c.Tesseract,
		Lang:        c.Lang,
		PSM:         c.PSM,
		TessdataDir: c.TessdataDir,
		MaxFileSize: c.MaxFileSizeBytes(),
	}
}

type ExtractionResult struct {
	Text       string
	Engine     string
	Duration   time.Duration
	Confidence float64
	Warnings   []string
}

// Extractor turns a chart image into normalized text.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

type Option func(*Extractor)

// WithRunner replaces the os/exec runner.
func WithRunner(r Runner) Option {
	return func(e *Extractor) {
		if r != nil {
			e.runner = r
		}
	}
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	e := &Extractor{cfg: cfg, runner: ExecRunner{Logger: logger}, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract runs OCR on an image file. An image that yields no text is
// reported as common.ErrNoText.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	res := ExtractionResult{Engine: constants.OCREngineTesseract}

	ext := filepath.Ext(path)
	if !constants.IsImageExt(ext) {
		e.logger.Error("ocr.unsupported_extension", "path", path, "ext", ext)
		return res, common.NewAppError("OCR_ERROR", fmt.Sprintf("unsupported extension %q", ext), common.ErrUnsupportedSource)
	}
	info, err := os.Stat(path)
	if err != nil {
		return res, common.NewAppError("OCR_ERROR", "stat image", err)
	}
	if e.cfg.MaxFileSize > 0 && info.Size() > e.cfg.MaxFileSize {
		return res, common.NewAppError("OCR_ERROR",
			fmt.Sprintf("file is %d bytes, limit is %d", info.Size(), e.cfg.MaxFileSize), common.ErrInvalidInput)
	}

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, e.args(path)...)
	if err != nil {
		res.Warnings = append(res.Warnings, strings.TrimSpace(string(errb)))
		return res, common.NewAppError("OCR_ERROR", "tesseract", err)
	}
	res.Text = Normalize(string(out))
	res.Duration = time.Since(start)
	if res.Text == "" {
		return res, common.NewAppError("OCR_ERROR", path, common.ErrNoText)
	}

	res.Confidence = heuristicConfidence(res.Text)
	if e.cfg.TSVConfidence {
		if tsv, _, err := e.runner.Run(ctx, e.cfg.Tesseract, append(e.args(path), "tsv")...); err != nil {
			res.Warnings = append(res.Warnings, "tsv confidence: "+err.Error())
		} else if c, ok := meanTSVConfidence(string(tsv)); ok {
			res.Confidence = min(0.7*c+0.3*res.Confidence, 1.0)
		}
		res.Duration = time.Since(start)
	}

	e.logger.Debug("ocr.extract.done",
		"path", path,
		"chars", len(res.Text),
		"confidence", res.Confidence,
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// args builds: tesseract <file> stdout -l <lang> [--psm n] [--tessdata-dir d]
func (e *Extractor) args(path string) []string {
	args := []string{path, "stdout", "-l", e.cfg.Lang}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	return args
}
