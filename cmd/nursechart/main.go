package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/nursechart/internal/common"
	"github.com/joseph-ayodele/nursechart/internal/core"
	"github.com/joseph-ayodele/nursechart/internal/core/fields"
	"github.com/joseph-ayodele/nursechart/internal/core/ocr"
	"github.com/joseph-ayodele/nursechart/internal/core/validate"
	"github.com/joseph-ayodele/nursechart/internal/repository"
)

// errInvalidChart makes the process exit with status 2 after the report has
// been printed.
var errInvalidChart = errors.New("chart failed validation")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	switch {
	case err == nil:
	case errors.Is(err, errInvalidChart):
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	logLevel   string
	logFormat  string
	dsn        string

	cfg    *common.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:           "nursechart",
		Short:         "Extract and validate vitals from nurse chart text",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", os.Getenv("CONFIG_FILE"), "YAML config file")
	pf.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&a.logFormat, "log-format", "", "log format (text, json)")
	pf.StringVar(&a.dsn, "db", "", "database DSN (postgres://..., sqlite:..., :memory:)")

	cmd.AddCommand(
		newParseCmd(a),
		newOCRCmd(a),
		newValidateCmd(a),
		newExportCmd(a),
		newDBCmd(a),
	)
	return cmd
}

func (a *app) init() error {
	cfg, err := common.LoadConfigFile(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if a.dsn != "" {
		cfg.Database.DSN = a.dsn
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = common.NewLogger(cfg.Log, os.Stderr)
	slog.SetDefault(a.logger)
	return nil
}

// openDB opens and migrates the configured database. The caller closes it.
func (a *app) openDB(ctx context.Context) (*repository.DB, error) {
	if a.cfg.Database.DSN == "" {
		return nil, common.NewAppError("CONFIG_ERROR", "no database configured (set DB_URL or --db)", common.ErrInvalidInput)
	}
	db, err := repository.Open(ctx, repository.ConfigFromCommon(a.cfg.Database), a.logger)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func (a *app) extractor(loose bool) *fields.Extractor {
	return fields.New(
		fields.WithLogger(a.logger),
		fields.WithLooseTemperatureScan(loose || a.cfg.Extract.LooseTemperatureScan),
	)
}

func (a *app) validator() *validate.Validator {
	return validate.New(validate.WithLogger(a.logger))
}

// processor builds a Processor. db may be nil, in which case nothing is
// stored.
func (a *app) processor(db *repository.DB, loose bool) *core.Processor {
	opts := []core.Option{
		core.WithOCR(ocr.NewExtractor(ocr.ConfigFromCommon(a.cfg.OCR), a.logger)),
	}
	if db != nil {
		opts = append(opts, core.WithRepository(repository.NewResultRepository(db, a.logger)))
	}
	return core.NewProcessor(a.logger, a.extractor(loose), a.validator(), opts...)
}
