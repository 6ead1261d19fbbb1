package exportshttp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/marketplace-reports/internal/document"
	"github.com/odyssey-erp/marketplace-reports/internal/exports"
	"github.com/odyssey-erp/marketplace-reports/internal/platform/httpx"
)

// Enqueuer submits export tasks.
type Enqueuer interface {
	EnqueueExport(ctx context.Context, exportID string) (*asynq.TaskInfo, error)
}

// Handler wires HTTP endpoints for managing batch exports.
type Handler struct {
	logger  *slog.Logger
	service *exports.Service
	jobs    Enqueuer
}

// NewHandler constructs a Handler value.
func NewHandler(logger *slog.Logger, service *exports.Service, jobs Enqueuer) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, jobs: jobs}
}

// MountRoutes registers HTTP routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/exports", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/{id}", h.detail)
		r.Get("/{id}/file", h.download)
	})
}

type exportView struct {
	ID          string            `json:"id"`
	Role        document.Role     `json:"role"`
	Status      exports.Status    `json:"status"`
	Count       int               `json:"count"`
	Filename    string            `json:"filename,omitempty"`
	FileSize    int64             `json:"file_size,omitempty"`
	PageCount   int               `json:"page_count,omitempty"`
	Error       string            `json:"error,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	GeneratedAt *time.Time        `json:"generated_at,omitempty"`
	Links       map[string]string `json:"links"`
}

func present(exp exports.Export) exportView {
	links := map[string]string{"self": "/exports/" + exp.ID}
	if exp.Status == exports.StatusReady {
		links["file"] = "/exports/" + exp.ID + "/file"
	}
	return exportView{
		ID:          exp.ID,
		Role:        exp.Role,
		Status:      exp.Status,
		Count:       exp.Count,
		Filename:    exp.Filename,
		FileSize:    exp.FileSize,
		PageCount:   exp.PageCount,
		Error:       exp.Error,
		CreatedAt:   exp.CreatedAt,
		UpdatedAt:   exp.UpdatedAt,
		GeneratedAt: exp.GeneratedAt,
		Links:       links,
	}
}

// create accepts a batch and queues it for rendering.
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req exports.CreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	exp, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.respondError(w, "create export", err)
		return
	}
	if h.jobs != nil {
		if _, err := h.jobs.EnqueueExport(r.Context(), exp.ID); err != nil {
			h.logger.Error("enqueue export", slog.String("export_id", exp.ID), slog.Any("error", err))
			_ = h.service.MarkFailed(r.Context(), exp.ID, "enqueue: "+err.Error())
			httpx.Problem(w, http.StatusServiceUnavailable, "Queue Unavailable", "export could not be queued")
			return
		}
	}
	w.Header().Set("Location", "/exports/"+exp.ID)
	httpx.JSON(w, http.StatusAccepted, present(exp))
}

// detail reports the current state of an export.
func (h *Handler) detail(w http.ResponseWriter, r *http.Request) {
	exp, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "get export", err)
		return
	}
	httpx.JSON(w, http.StatusOK, present(exp))
}

// download streams the generated PDF.
func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	exp, err := h.service.File(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "download export", err)
		return
	}
	file, err := os.Open(exp.FilePath)
	if err != nil {
		h.logger.Error("open export", slog.Any("error", err), slog.String("path", exp.FilePath))
		httpx.RespondError(w, fmt.Errorf("%w: the generated file for export %s was removed", httpx.ErrGone, exp.ID))
		return
	}
	defer file.Close()
	name := exp.Filename
	if name == "" {
		name = "export-" + exp.ID + ".pdf"
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(name))
	if _, err := io.Copy(w, file); err != nil {
		h.logger.Warn("stream export", slog.Any("error", err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, exports.ErrNotFound):
		httpx.RespondError(w, fmt.Errorf("%w: %w", httpx.ErrNotFound, err))
	case errors.Is(err, exports.ErrNotReady):
		httpx.RespondError(w, fmt.Errorf("%w: %w", httpx.ErrConflict, err))
	case errors.Is(err, exports.ErrInvalidRequest),
		errors.Is(err, document.ErrInvalidConfig),
		errors.Is(err, document.ErrUnknownRole):
		httpx.RespondError(w, fmt.Errorf("%w: %w", httpx.ErrValidation, err))
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
