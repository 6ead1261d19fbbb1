// Package exports runs batch appointment reports in the background and keeps track of
// the generated files.
package exports

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/marketplace-reports/internal/document"
)

// Status captures the state of an export record.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusReady      Status = "READY"
	StatusFailed     Status = "FAILED"
)

// MaxBatch bounds the number of appointments accepted by one export. It is larger than the
// synchronous HTTP limit because exports render on the worker.
const MaxBatch = 500

// DefaultLease is how long an in-progress claim blocks other workers.
const DefaultLease = 10 * time.Minute

// Export represents a persisted generation request and its result.
type Export struct {
	ID          string           `json:"id"`
	Role        document.Role    `json:"role"`
	Options     document.Options `json:"options"`
	Count       int              `json:"count"`
	Status      Status           `json:"status"`
	Filename    string           `json:"filename,omitempty"`
	FilePath    string           `json:"file_path,omitempty"`
	FileSize    int64            `json:"file_size,omitempty"`
	PageCount   int              `json:"page_count,omitempty"`
	Sink        string           `json:"sink,omitempty"`
	Error       string           `json:"error,omitempty"`
	RequestedBy string           `json:"requested_by,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	StartedAt   *time.Time       `json:"started_at,omitempty"`
	GeneratedAt *time.Time       `json:"generated_at,omitempty"`
}

// CreateRequest defines the payload accepted by the service when creating an export.
type CreateRequest struct {
	Role         document.Role          `json:"role" validate:"required,oneof=client provider admin staff"`
	Options      document.Options       `json:"options"`
	Appointments []document.Appointment `json:"appointments" validate:"max=500"` // MaxBatch
	RequestedBy  string                 `json:"requested_by" validate:"max=120"`
}

var requestValidator = validator.New()

// Validate ensures the creation request can be processed.
func (r CreateRequest) Validate() error {
	if err := requestValidator.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

// Outcome is what a finished delivery reports back to the service.
type Outcome struct {
	Filename string
	Path     string
	Size     int64
	Pages    int
	Sink     string
}

var (
	ErrNotFound       = errors.New("exports: export not found")
	ErrNotReady       = errors.New("exports: file not ready")
	ErrInvalidStatus  = errors.New("exports: invalid status transition")
	ErrInvalidRequest = errors.New("exports: invalid request")
	ErrClaimed        = errors.New("exports: export claimed by another worker")
)

// NormaliseStatus maps user supplied strings to a Status.
func NormaliseStatus(value string) Status {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case string(StatusInProgress), "IN-PROGRESS", "RUNNING":
		return StatusInProgress
	case string(StatusReady), "DONE":
		return StatusReady
	case string(StatusFailed), "ERROR":
		return StatusFailed
	default:
		return StatusPending
	}
}

// Terminal reports whether no further transitions are expected.
func (s Status) Terminal() bool {
	return s == StatusReady || s == StatusFailed
}
