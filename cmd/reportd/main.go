package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/odyssey-erp/marketplace-reports/internal/app"
	documenthttp "github.com/odyssey-erp/marketplace-reports/internal/document/http"
	"github.com/odyssey-erp/marketplace-reports/internal/exports"
	exportshttp "github.com/odyssey-erp/marketplace-reports/internal/exports/http"
	"github.com/odyssey-erp/marketplace-reports/internal/observability"
	"github.com/odyssey-erp/marketplace-reports/internal/platform/cache"
	"github.com/odyssey-erp/marketplace-reports/jobs"
	"github.com/odyssey-erp/marketplace-reports/report"
)

func main() {
	if app.SkipStartup("reportd") {
		return
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Default().Warn("load .env", slog.Any("error", err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient, err := cache.New(ctx, cfg.Redis())
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	ledger, closeLedger, err := app.OpenLedger(ctx, cfg, logger)
	if err != nil {
		logger.Error("open export ledger", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeLedger()

	assembler, err := app.NewAssembler(cfg, logger)
	if err != nil {
		logger.Error("init assembler", slog.Any("error", err))
		os.Exit(1)
	}

	backend, err := app.NewPDFBackend(cfg, logger)
	if err != nil {
		logger.Error("init pdf backend", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Warn("pdf backend close", slog.Any("error", err))
		}
	}()
	logger.Info("pdf backend ready", slog.String("backend", backend.Name()))

	metrics := observability.NewMetrics()
	documentHandler := documenthttp.NewHandler(logger, assembler, backend.Factory(), metrics)

	redisOpts := cfg.Redis().AsynqOpt()
	jobClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	exportStore := exports.NewStore(redisClient, cfg.ExportRetention)
	exportService := exports.NewService(exportStore, ledger, logger)
	exportHandler := exportshttp.NewHandler(logger, exportService, jobClient)

	reportClient := report.NewClient(cfg.GotenbergURL)
	reportHandler := report.NewHandler(reportClient, app.SampleSource(assembler), logger)

	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		Metrics:         metrics,
		DocumentHandler: documentHandler,
		ExportHandler:   exportHandler,
		ReportHandler:   reportHandler,
		JobHandler:      jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
