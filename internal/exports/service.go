package exports

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/marketplace-reports/internal/document"
)

// Service orchestrates export creation and status transitions.
type Service struct {
	store  *Store
	ledger Ledger
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
	lease  time.Duration
}

// NewService constructs a Service instance. ledger may be nil.
func NewService(store *Store, ledger Ledger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, ledger: ledger, logger: logger, now: time.Now, newID: uuid.NewString, lease: DefaultLease}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// WithLease overrides how long an in-progress claim is honoured.
func (s *Service) WithLease(d time.Duration) {
	if d > 0 {
		s.lease = d
	}
}

// Create stores a new pending export after validating inputs.
func (s *Service) Create(ctx context.Context, req CreateRequest) (Export, error) {
	if err := req.Validate(); err != nil {
		return Export{}, err
	}
	if _, err := document.ResolveConfig(req.Role, req.Options); err != nil {
		return Export{}, err
	}
	now := s.now().UTC()
	exp := Export{
		ID:          s.newID(),
		Role:        req.Role,
		Options:     req.Options,
		Count:       len(req.Appointments),
		Status:      StatusPending,
		RequestedBy: strings.TrimSpace(req.RequestedBy),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Insert(ctx, exp, req.Appointments); err != nil {
		return Export{}, err
	}
	return exp, nil
}

// Get loads a single export.
func (s *Service) Get(ctx context.Context, id string) (Export, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Export{}, ErrNotFound
	}
	return s.store.Get(ctx, id)
}

// Input returns the appointments queued for an export.
func (s *Service) Input(ctx context.Context, id string) ([]document.Appointment, error) {
	return s.store.Input(ctx, id)
}

// MarkInProgress claims a pending or failed export. An in-progress export whose lease has
// expired is reclaimed; one with a live lease returns ErrClaimed.
func (s *Service) MarkInProgress(ctx context.Context, id string) error {
	_, err := s.store.Update(ctx, id, func(exp Export) (Export, error) {
		now := s.now().UTC()
		switch exp.Status {
		case StatusPending, StatusFailed:
		case StatusInProgress:
			if exp.StartedAt != nil && now.Sub(*exp.StartedAt) < s.lease {
				return Export{}, ErrClaimed
			}
			s.logger.Warn("reclaiming stale export", slog.String("export_id", exp.ID))
		default:
			return Export{}, fmt.Errorf("%w: %s -> %s", ErrInvalidStatus, exp.Status, StatusInProgress)
		}
		exp.Status = StatusInProgress
		exp.Error = ""
		exp.UpdatedAt = now
		exp.StartedAt = &now
		return exp, nil
	})
	return err
}

// MarkReady persists the generated artefact.
func (s *Service) MarkReady(ctx context.Context, id string, out Outcome) (Export, error) {
	exp, err := s.store.Update(ctx, id, func(exp Export) (Export, error) {
		if exp.Status != StatusInProgress {
			return Export{}, fmt.Errorf("%w: %s -> %s", ErrInvalidStatus, exp.Status, StatusReady)
		}
		now := s.now().UTC()
		exp.Status = StatusReady
		exp.Filename = out.Filename
		exp.FilePath = out.Path
		exp.FileSize = out.Size
		exp.PageCount = out.Pages
		exp.Sink = out.Sink
		exp.UpdatedAt = now
		exp.GeneratedAt = &now
		return exp, nil
	})
	if err != nil {
		return Export{}, err
	}
	if err := s.store.DropInput(ctx, id); err != nil {
		s.logger.Warn("drop export input", slog.String("export_id", id), slog.Any("error", err))
	}
	s.record(ctx, exp)
	return exp, nil
}

// MarkFailed updates the record when generation fails.
func (s *Service) MarkFailed(ctx context.Context, id string, errMessage string) error {
	errMessage = strings.TrimSpace(errMessage)
	if errMessage == "" {
		errMessage = "unknown error"
	}
	exp, err := s.store.Update(ctx, id, func(exp Export) (Export, error) {
		exp.Status = StatusFailed
		exp.Error = errMessage
		exp.UpdatedAt = s.now().UTC()
		return exp, nil
	})
	if err != nil {
		return err
	}
	s.record(ctx, exp)
	return nil
}

// File returns the location of a ready export.
func (s *Service) File(ctx context.Context, id string) (Export, error) {
	exp, err := s.Get(ctx, id)
	if err != nil {
		return Export{}, err
	}
	if exp.Status != StatusReady || exp.FilePath == "" {
		return exp, ErrNotReady
	}
	return exp, nil
}

func (s *Service) record(ctx context.Context, exp Export) {
	if s.ledger == nil {
		return
	}
	if err := s.ledger.Record(ctx, exp); err != nil {
		s.logger.Warn("record export in ledger", slog.String("export_id", exp.ID), slog.Any("error", err))
	}
}
