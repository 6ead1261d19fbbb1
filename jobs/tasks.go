package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// QueueExports carries report generation, which is slower than the rest.
	QueueExports = "exports"
	// TaskExportGenerate renders a queued batch export.
	TaskExportGenerate = "reports:export"
	// TaskExportSweep removes generated files past their retention.
	TaskExportSweep = "reports:export-sweep"
)

// ExportPayload identifies the export to render.
type ExportPayload struct {
	ExportID string `json:"export_id"`
}

// NewExportTask constructs an Asynq task for a batch export.
func NewExportTask(exportID string) (*asynq.Task, error) {
	data, err := json.Marshal(ExportPayload{ExportID: exportID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskExportGenerate, data,
		asynq.Queue(QueueExports),
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute),
	), nil
}

// SweepPayload carries the retention applied by a sweep run.
type SweepPayload struct {
	OlderThan time.Duration `json:"older_than"`
}

// NewSweepTask constructs the periodic cleanup task.
func NewSweepTask(olderThan time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(SweepPayload{OlderThan: olderThan})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskExportSweep, data, asynq.Queue(QueueDefault)), nil
}
