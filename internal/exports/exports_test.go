package exports

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/marketplace-reports/internal/document"
	"github.com/odyssey-erp/marketplace-reports/internal/sink"
	"github.com/odyssey-erp/marketplace-reports/jobs"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

type fakeLedger struct {
	mu      sync.Mutex
	records []Export
	err     error
}

func (l *fakeLedger) Record(_ context.Context, exp Export) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, exp)
	return l.err
}

type fakeSink struct {
	docs   []document.Document
	result sink.Result
	err    error
}

func (s *fakeSink) Deliver(_ context.Context, doc document.Document) (sink.Result, error) {
	s.docs = append(s.docs, doc)
	if s.err != nil {
		return sink.Result{}, s.err
	}
	return s.result, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T) (*Service, *fakeLedger, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	ledger := &fakeLedger{}
	svc := NewService(NewStore(client, time.Hour), ledger, quietLogger())
	svc.WithNow(func() time.Time { return fixedNow })
	return svc, ledger, mr
}

func appointments(ids ...int64) []document.Appointment {
	out := make([]document.Appointment, 0, len(ids))
	for _, id := range ids {
		out = append(out, document.Appointment{
			ID:            id,
			Status:        document.StatusConfirmed,
			ScheduledDate: "2025-03-20",
			ScheduledTime: "14:30",
			BasePrice:     decimal.RequireFromString("80"),
			TotalAmount:   decimal.RequireFromString("80"),
			Service:       &document.Service{Name: "Window Cleaning"},
		})
	}
	return out
}

func TestCreateValidates(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateRequest{Role: "guest", Appointments: appointments(1)})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.Create(ctx, CreateRequest{Appointments: appointments(1)})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	bad := "teal"
	_, err = svc.Create(ctx, CreateRequest{Role: document.RoleAdmin, Options: document.Options{PrimaryColor: &bad}})
	assert.ErrorIs(t, err, document.ErrInvalidConfig)

	full, err := svc.Create(ctx, CreateRequest{Role: document.RoleAdmin, Appointments: make([]document.Appointment, MaxBatch)})
	require.NoError(t, err, "the validator tag matches MaxBatch")
	assert.Equal(t, MaxBatch, full.Count)

	tooMany := make([]document.Appointment, MaxBatch+1)
	_, err = svc.Create(ctx, CreateRequest{Role: document.RoleAdmin, Appointments: tooMany})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestCreateAndGet(t *testing.T) {
	svc, _, mr := newTestService(t)
	ctx := context.Background()

	exp, err := svc.Create(ctx, CreateRequest{Role: document.RoleStaff, Appointments: appointments(4, 2), RequestedBy: " ops@example.com "})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, exp.Status)
	assert.Equal(t, 2, exp.Count)
	assert.Equal(t, "ops@example.com", exp.RequestedBy)
	assert.Equal(t, fixedNow, exp.CreatedAt)
	assert.True(t, mr.Exists(recordKey(exp.ID)))
	assert.Equal(t, time.Hour, mr.TTL(recordKey(exp.ID)))

	loaded, err := svc.Get(ctx, exp.ID)
	require.NoError(t, err)
	assert.Equal(t, exp.ID, loaded.ID)
	assert.Equal(t, document.RoleStaff, loaded.Role)

	input, err := svc.Input(ctx, exp.ID)
	require.NoError(t, err)
	require.Len(t, input, 2)
	assert.Equal(t, int64(4), input[0].ID)

	_, err = svc.Get(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Get(ctx, "8d3f0a8e-1b2c-4d5e-8f90-1a2b3c4d5e6f")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStatusTransitions(t *testing.T) {
	svc, ledger, mr := newTestService(t)
	ctx := context.Background()

	exp, err := svc.Create(ctx, CreateRequest{Role: document.RoleAdmin, Appointments: appointments(1)})
	require.NoError(t, err)

	_, err = svc.MarkReady(ctx, exp.ID, Outcome{})
	assert.ErrorIs(t, err, ErrInvalidStatus, "ready requires in-progress")

	require.NoError(t, svc.MarkInProgress(ctx, exp.ID))
	assert.ErrorIs(t, svc.MarkInProgress(ctx, exp.ID), ErrClaimed)

	ready, err := svc.MarkReady(ctx, exp.ID, Outcome{Filename: "appointments.pdf", Path: "/tmp/a.pdf", Size: 2048, Pages: 2, Sink: "file"})
	require.NoError(t, err)
	assert.Equal(t, StatusReady, ready.Status)
	assert.Equal(t, 2, ready.PageCount)
	require.NotNil(t, ready.GeneratedAt)
	assert.False(t, mr.Exists(inputKey(exp.ID)), "input dropped once ready")

	got, err := svc.File(ctx, exp.ID)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/a.pdf", got.FilePath)

	require.Len(t, ledger.records, 1)
	assert.Equal(t, StatusReady, ledger.records[0].Status)
}

func TestMarkFailedAllowsRetry(t *testing.T) {
	svc, ledger, _ := newTestService(t)
	ctx := context.Background()

	exp, err := svc.Create(ctx, CreateRequest{Role: document.RoleAdmin, Appointments: appointments(1)})
	require.NoError(t, err)
	require.NoError(t, svc.MarkInProgress(ctx, exp.ID))
	require.NoError(t, svc.MarkFailed(ctx, exp.ID, "  "))

	failed, err := svc.Get(ctx, exp.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, failed.Status)
	assert.Equal(t, "unknown error", failed.Error)

	_, err = svc.File(ctx, exp.ID)
	assert.ErrorIs(t, err, ErrNotReady)

	require.NoError(t, svc.MarkInProgress(ctx, exp.ID))
	retried, err := svc.Get(ctx, exp.ID)
	require.NoError(t, err)
	assert.Empty(t, retried.Error)
	assert.Len(t, ledger.records, 1)
}

func TestLedgerFailureDoesNotFailExport(t *testing.T) {
	svc, ledger, _ := newTestService(t)
	ledger.err = errors.New("ledger offline")
	ctx := context.Background()

	exp, err := svc.Create(ctx, CreateRequest{Role: document.RoleAdmin, Appointments: appointments(1)})
	require.NoError(t, err)
	require.NoError(t, svc.MarkInProgress(ctx, exp.ID))
	_, err = svc.MarkReady(ctx, exp.ID, Outcome{Path: "/tmp/x.pdf"})
	assert.NoError(t, err)
}

func exportTask(t *testing.T, id string) *asynq.Task {
	t.Helper()
	data, err := json.Marshal(jobs.ExportPayload{ExportID: id})
	require.NoError(t, err)
	return asynq.NewTask(jobs.TaskExportGenerate, data)
}

func newTestJob(svc *Service, out sink.Sink) *Job {
	assembler := document.NewAssembler(quietLogger(), document.Profile{})
	assembler.WithNow(func() time.Time { return fixedNow })
	return NewJob(JobConfig{Service: svc, Assembler: assembler, Sink: out, Logger: quietLogger()})
}

func TestJobRendersBatch(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	exp, err := svc.Create(ctx, CreateRequest{Role: document.RoleStaff, Appointments: appointments(5, 3, 9)})
	require.NoError(t, err)

	out := &fakeSink{result: sink.Result{Sink: "file", Location: "/exports/appointments.pdf", Pages: 3, Bytes: 4096}}
	require.NoError(t, newTestJob(svc, out).Handle(ctx, exportTask(t, exp.ID)))

	require.Len(t, out.docs, 1)
	assert.Equal(t, 3, out.docs[0].Entities)
	assert.Equal(t, document.KindBatch, out.docs[0].Kind)

	ready, err := svc.Get(ctx, exp.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReady, ready.Status)
	assert.Equal(t, "/exports/appointments.pdf", ready.FilePath)
	assert.Equal(t, int64(4096), ready.FileSize)
	assert.Equal(t, out.docs[0].Filename, ready.Filename)

	require.NoError(t, newTestJob(svc, out).Handle(ctx, exportTask(t, exp.ID)), "ready exports are not rendered twice")
	assert.Len(t, out.docs, 1)
}

func TestJobReclaimsExpiredClaim(t *testing.T) {
	svc, _, mr := newTestService(t)
	ctx := context.Background()
	now := fixedNow
	svc.WithNow(func() time.Time { return now })
	svc.WithLease(5 * time.Minute)

	exp, err := svc.Create(ctx, CreateRequest{Role: document.RoleAdmin, Appointments: appointments(7)})
	require.NoError(t, err)
	// a worker claims the export and dies before finishing
	require.NoError(t, svc.MarkInProgress(ctx, exp.ID))

	out := &fakeSink{result: sink.Result{Sink: "file", Location: "/exports/a.pdf", Pages: 1, Bytes: 512}}
	job := newTestJob(svc, out)

	now = fixedNow.Add(time.Minute)
	err = job.Handle(ctx, exportTask(t, exp.ID))
	require.ErrorIs(t, err, ErrClaimed, "live claims are retried later")
	assert.False(t, errors.Is(err, asynq.SkipRetry))
	assert.Empty(t, out.docs)

	now = fixedNow.Add(6 * time.Minute)
	require.NoError(t, job.Handle(ctx, exportTask(t, exp.ID)))
	require.Len(t, out.docs, 1)

	ready, err := svc.Get(ctx, exp.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReady, ready.Status)
	require.NotNil(t, ready.StartedAt)
	assert.True(t, now.Equal(*ready.StartedAt))
	assert.False(t, mr.Exists(inputKey(exp.ID)))
}

func TestJobRecordsSinkFailure(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	exp, err := svc.Create(ctx, CreateRequest{Role: document.RoleAdmin, Appointments: appointments(1)})
	require.NoError(t, err)

	out := &fakeSink{err: &sink.EncodingError{Err: errors.New("gotenberg: 503")}}
	err = newTestJob(svc, out).Handle(ctx, exportTask(t, exp.ID))
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry), "sink failures are retried")

	failed, err := svc.Get(ctx, exp.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, failed.Status)
	assert.Contains(t, failed.Error, "gotenberg: 503")
}

func TestJobSkipsBadPayloads(t *testing.T) {
	svc, _, _ := newTestService(t)
	job := newTestJob(svc, &fakeSink{})
	ctx := context.Background()

	assert.ErrorIs(t, job.Handle(ctx, asynq.NewTask(jobs.TaskExportGenerate, []byte("{"))), asynq.SkipRetry)
	assert.ErrorIs(t, job.Handle(ctx, exportTask(t, "")), asynq.SkipRetry)
	assert.ErrorIs(t, job.Handle(ctx, exportTask(t, "8d3f0a8e-1b2c-4d5e-8f90-1a2b3c4d5e6f")), asynq.SkipRetry)
}

func TestJobNotConfigured(t *testing.T) {
	var job *Job
	assert.Error(t, job.Handle(context.Background(), exportTask(t, "x")))
}

func TestSweepRemovesExpiredPDFs(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.pdf")
	fresh := filepath.Join(dir, "fresh.pdf")
	other := filepath.Join(dir, "notes.txt")
	for _, p := range []string{old, fresh, other} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}
	require.NoError(t, os.Chtimes(old, fixedNow.Add(-96*time.Hour), fixedNow.Add(-96*time.Hour)))
	require.NoError(t, os.Chtimes(fresh, fixedNow.Add(-time.Hour), fixedNow.Add(-time.Hour)))
	require.NoError(t, os.Chtimes(other, fixedNow.Add(-96*time.Hour), fixedNow.Add(-96*time.Hour)))

	sweeper := NewSweeper(dir, quietLogger())
	sweeper.WithNow(func() time.Time { return fixedNow })

	task, err := jobs.NewSweepTask(72 * time.Hour)
	require.NoError(t, err)
	require.NoError(t, sweeper.Handle(context.Background(), task))

	assert.NoFileExists(t, old)
	assert.FileExists(t, fresh)
	assert.FileExists(t, other)
}

func TestSweepMissingDir(t *testing.T) {
	removed, err := NewSweeper(filepath.Join(t.TempDir(), "missing"), nil).Sweep(context.Background(), time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestNormaliseStatus(t *testing.T) {
	assert.Equal(t, StatusReady, NormaliseStatus(" ready "))
	assert.Equal(t, StatusInProgress, NormaliseStatus("in-progress"))
	assert.Equal(t, StatusFailed, NormaliseStatus("error"))
	assert.Equal(t, StatusPending, NormaliseStatus("whatever"))
	assert.True(t, StatusFailed.Terminal())
	assert.False(t, StatusInProgress.Terminal())
}
