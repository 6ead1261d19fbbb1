package exports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/marketplace-reports/internal/document"
	jobmetrics "github.com/odyssey-erp/marketplace-reports/internal/jobs"
	"github.com/odyssey-erp/marketplace-reports/internal/sink"
	"github.com/odyssey-erp/marketplace-reports/jobs"
)

// JobConfig wires dependencies required by the worker job.
type JobConfig struct {
	Service   *Service
	Assembler *document.Assembler
	Sink      sink.Sink
	Metrics   *jobmetrics.Metrics
	Logger    *slog.Logger
}

// Job processes export requests coming from the queue.
type Job struct {
	service   *Service
	assembler *document.Assembler
	sink      sink.Sink
	metrics   *jobmetrics.Metrics
	logger    *slog.Logger
}

// NewJob constructs a Job handler.
func NewJob(cfg JobConfig) *Job {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Job{service: cfg.Service, assembler: cfg.Assembler, sink: cfg.Sink, metrics: cfg.Metrics, logger: logger}
}

// Handle fulfils the asynq.HandlerFunc contract.
func (j *Job) Handle(ctx context.Context, task *asynq.Task) error {
	if j == nil || j.service == nil || j.assembler == nil || j.sink == nil {
		return fmt.Errorf("export job not configured")
	}
	var payload jobs.ExportPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.ExportID == "" {
		return asynq.SkipRetry
	}
	tracker := j.metrics.Track("export")
	return tracker.End(j.run(ctx, payload.ExportID))
}

func (j *Job) run(ctx context.Context, id string) error {
	exp, err := j.service.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return asynq.SkipRetry
		}
		return err
	}
	if exp.Status == StatusReady {
		return nil
	}
	if err := j.service.MarkInProgress(ctx, id); err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			current, loadErr := j.service.Get(ctx, id)
			if loadErr == nil && current.Status == StatusReady {
				return nil
			}
		}
		// ErrClaimed is retried so a crashed claim is picked up once its lease expires.
		return err
	}
	list, err := j.service.Input(ctx, id)
	if err != nil {
		_ = j.service.MarkFailed(ctx, id, err.Error())
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
		}
		return err
	}
	doc, err := j.assembler.AssembleBatch(list, exp.Role, exp.Options)
	if err != nil {
		_ = j.service.MarkFailed(ctx, id, err.Error())
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	res, err := j.sink.Deliver(ctx, doc)
	if err != nil {
		_ = j.service.MarkFailed(ctx, id, err.Error())
		return err
	}
	if _, err := j.service.MarkReady(ctx, id, Outcome{
		Filename: doc.Filename,
		Path:     res.Location,
		Size:     int64(res.Bytes),
		Pages:    res.Pages,
		Sink:     res.Sink,
	}); err != nil {
		if failErr := j.service.MarkFailed(ctx, id, err.Error()); failErr != nil {
			j.logger.Warn("mark export failed", slog.String("export_id", id), slog.Any("error", failErr))
		}
		return err
	}
	j.metrics.AddPages(res.Sink, res.Pages)
	j.logger.Info("export ready",
		slog.String("export_id", id),
		slog.Int("appointments", len(list)),
		slog.String("file", res.Location),
		slog.Int("pages", res.Pages),
	)
	return nil
}
