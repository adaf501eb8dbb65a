package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/joseph-ayodele/nursechart/internal/common"
	"github.com/joseph-ayodele/nursechart/internal/core"
	"github.com/joseph-ayodele/nursechart/internal/core/fields"
	"github.com/joseph-ayodele/nursechart/internal/core/ocr"
	"github.com/joseph-ayodele/nursechart/internal/core/validate"
	"github.com/joseph-ayodele/nursechart/internal/export"
	"github.com/joseph-ayodele/nursechart/internal/metrics"
	"github.com/joseph-ayodele/nursechart/internal/repository"
	"github.com/joseph-ayodele/nursechart/internal/server"
)

func main() {
	cfg, err := common.LoadConfigFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(2)
	}
	logger := common.NewLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("nursechartd stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *common.Config, logger *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewPrometheus(reg)

	procOpts := []core.Option{
		core.WithOCR(ocr.NewExtractor(ocr.ConfigFromCommon(cfg.OCR), logger)),
		core.WithRecorder(recorder),
	}
	var (
		repo     repository.ResultRepository
		exporter *export.Service
	)
	if cfg.Database.DSN != "" {
		db, err := repository.Open(ctx, repository.ConfigFromCommon(cfg.Database), logger)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := repository.HealthCheck(ctx, db, cfg.Database.DialTimeout, logger); err != nil {
			return err
		}
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		repo = repository.NewResultRepository(db, logger)
		exporter = export.NewService(repo, logger)
		procOpts = append(procOpts, core.WithRepository(repo))
	} else {
		logger.Warn("DB_URL not set, results will not be stored")
	}

	validator := validate.New(validate.WithLogger(logger))
	extractor := fields.New(
		fields.WithLogger(logger),
		fields.WithLooseTemperatureScan(cfg.Extract.LooseTemperatureScan),
	)
	processor := core.NewProcessor(logger, extractor, validator, procOpts...)

	charts := server.NewChartServer(processor, validator, repo, exporter, logger)
	grpcServer, hs := server.NewGRPCServer(charts, logger, recorder)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		return err
	}
	metricsServer := &http.Server{
		Addr:              cfg.Server.MetricsAddr,
		Handler:           metricsMux(reg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("gRPC serving", "addr", lis.Addr().String())
		errCh <- grpcServer.Serve(lis)
	}()
	go func() {
		logger.Info("metrics serving", "addr", cfg.Server.MetricsAddr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err = <-errCh:
		logger.Error("server failed", "error", err)
	}

	logger.Info("shutting down")
	hs.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if serr := metricsServer.Shutdown(shutdownCtx); serr != nil {
		logger.Error("metrics shutdown", "error", serr)
	}
	grpcServer.GracefulStop()
	logger.Info("stopped")
	return err
}

func metricsMux(reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
