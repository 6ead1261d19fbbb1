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
	"github.com/odyssey-erp/marketplace-reports/internal/exports"
	"github.com/odyssey-erp/marketplace-reports/internal/observability"
	"github.com/odyssey-erp/marketplace-reports/internal/platform/cache"
	"github.com/odyssey-erp/marketplace-reports/internal/sink"
	"github.com/odyssey-erp/marketplace-reports/jobs"
)

func main() {
	if app.SkipStartup("worker") {
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

	storage, err := sink.NewDirEnvironment(cfg.ExportStorageDir, logger)
	if err != nil {
		logger.Error("init export storage", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	exportService := exports.NewService(exports.NewStore(redisClient, cfg.ExportRetention), ledger, logger)
	exportJob := exports.NewJob(exports.JobConfig{
		Service:   exportService,
		Assembler: assembler,
		Sink:      backend.Sink(storage),
		Metrics:   metrics.Jobs(),
		Logger:    logger,
	})
	sweeper := exports.NewSweeper(cfg.ExportStorageDir, logger)

	sweepTask, err := jobs.NewSweepTask(cfg.ExportRetention)
	if err != nil {
		logger.Error("build sweep task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   cfg.Redis().AsynqOpt(),
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskExportGenerate, Handler: exportJob.Handle},
			{Type: jobs.TaskExportSweep, Handler: sweeper.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 * * * *", Task: sweepTask, Options: []asynq.Option{asynq.MaxRetry(1)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if cfg.WorkerMetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		metricsServer := &http.Server{Addr: cfg.WorkerMetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("serving worker metrics", slog.String("addr", cfg.WorkerMetricsAddr))
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn("metrics server", slog.Any("error", err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsServer.Shutdown(shutdownCtx)
		}()
	}

	logger.Info("starting worker", slog.String("backend", backend.Name()), slog.Int("concurrency", cfg.WorkerConcurrency))
	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
