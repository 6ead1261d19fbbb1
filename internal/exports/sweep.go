package exports

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/marketplace-reports/jobs"
)

// Sweeper deletes generated PDFs older than the retention window.
type Sweeper struct {
	dir    string
	logger *slog.Logger
	now    func() time.Time
}

// NewSweeper constructs a Sweeper over the export storage directory.
func NewSweeper(dir string, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{dir: dir, logger: logger, now: time.Now}
}

// WithNow overrides the clock for deterministic tests.
func (s *Sweeper) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Handle fulfils the asynq.HandlerFunc contract.
func (s *Sweeper) Handle(ctx context.Context, task *asynq.Task) error {
	payload := jobs.SweepPayload{OlderThan: DefaultRetention}
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	removed, err := s.Sweep(ctx, payload.OlderThan)
	if err != nil {
		return err
	}
	if removed > 0 {
		s.logger.Info("export files swept", slog.Int("removed", removed))
	}
	return nil
}

// Sweep removes PDFs whose modification time is older than olderThan and reports how many were removed.
func (s *Sweeper) Sweep(ctx context.Context, olderThan time.Duration) (int, error) {
	if olderThan <= 0 {
		olderThan = DefaultRetention
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	cutoff := s.now().Add(-olderThan)
	removed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			s.logger.Warn("remove export file", slog.String("file", entry.Name()), slog.Any("error", err))
			continue
		}
		removed++
	}
	return removed, nil
}
