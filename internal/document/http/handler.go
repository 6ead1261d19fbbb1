// Package documenthttp serves assembled reports over HTTP, either as a printable page or
// as a PDF attachment.
package documenthttp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/marketplace-reports/internal/document"
	"github.com/odyssey-erp/marketplace-reports/internal/observability"
	"github.com/odyssey-erp/marketplace-reports/internal/platform/httpx"
	"github.com/odyssey-erp/marketplace-reports/internal/sink"
)

// MaxBatch bounds the number of appointments rendered synchronously.
const MaxBatch = 200

// SinkFactory builds the PDF sink acting on a per-request environment.
type SinkFactory func(env sink.Environment) sink.Sink

// Handler wires the report endpoints.
type Handler struct {
	logger    *slog.Logger
	assembler *document.Assembler
	pdf       SinkFactory
	metrics   *observability.Metrics
}

// NewHandler constructs a Handler. pdf may be nil, in which case PDF routes answer 503.
func NewHandler(logger *slog.Logger, assembler *document.Assembler, pdf SinkFactory, metrics *observability.Metrics) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, assembler: assembler, pdf: pdf, metrics: metrics}
}

// MountRoutes registers HTTP routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Get("/config/{role}", h.config)
		r.Post("/appointments/print", h.render(document.KindAppointment, modePrint))
		r.Post("/appointments/pdf", h.render(document.KindAppointment, modePDF))
		r.Post("/appointments/batch/print", h.render(document.KindBatch, modePrint))
		r.Post("/appointments/batch/pdf", h.render(document.KindBatch, modePDF))
		r.Post("/analytics/print", h.render(document.KindAnalytics, modePrint))
		r.Post("/analytics/pdf", h.render(document.KindAnalytics, modePDF))
	})
}

type mode int

const (
	modePrint mode = iota
	modePDF
)

type renderRequest struct {
	Role         string                     `json:"role"`
	Options      document.Options           `json:"options"`
	Appointment  *document.Appointment      `json:"appointment"`
	Appointments []document.Appointment     `json:"appointments"`
	Analytics    *document.AnalyticsDataset `json:"analytics"`
}

func (req renderRequest) subject(kind document.SubjectKind) (document.Subject, error) {
	switch kind {
	case document.KindAppointment:
		if req.Appointment == nil {
			return document.Subject{}, fmt.Errorf("%w: appointment is required", document.ErrEmptySubject)
		}
		return document.SingleAppointment(*req.Appointment), nil
	case document.KindBatch:
		if len(req.Appointments) > MaxBatch {
			return document.Subject{}, fmt.Errorf("%w: at most %d appointments per request, use /exports for larger batches", httpx.ErrValidation, MaxBatch)
		}
		return document.AppointmentBatch(req.Appointments), nil
	case document.KindAnalytics:
		if req.Analytics == nil {
			return document.Subject{}, fmt.Errorf("%w: analytics is required", document.ErrEmptySubject)
		}
		return document.AnalyticsReport(*req.Analytics), nil
	default:
		return document.Subject{}, document.ErrEmptySubject
	}
}

func (h *Handler) render(kind document.SubjectKind, m mode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req renderRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
			return
		}
		role, err := document.ParseRole(req.Role)
		if err != nil {
			h.respondError(w, err, "")
			return
		}
		subject, err := req.subject(kind)
		if err != nil {
			h.respondError(w, err, "")
			return
		}
		if m == modePDF && h.pdf == nil {
			httpx.Problem(w, http.StatusServiceUnavailable, "PDF Unavailable", "no PDF backend is configured")
			return
		}

		start := time.Now()
		doc, err := h.assembler.Assemble(subject, role, req.Options)
		if err != nil {
			h.respondError(w, err, "")
			return
		}

		env := newResponseEnv(h.logger)
		var out sink.Sink
		if m == modePDF {
			out = h.pdf(env)
		} else {
			out = sink.NewPrintWindowSink(env, h.logger)
		}
		res, err := out.Deliver(r.Context(), doc)
		h.metrics.ObserveDelivery(string(kind), sinkLabel(res, m), res.Bytes, time.Since(start), err)
		if err != nil {
			h.respondError(w, err, env.lastNotice())
			return
		}

		w.Header().Set("X-Report-Title", doc.Title)
		if m == modePrint {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Header().Set("Cache-Control", "no-store")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(env.markup))
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(env.filename))
		if res.Pages > 0 {
			w.Header().Set("X-Report-Pages", strconv.Itoa(res.Pages))
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(env.data)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(env.data)
	}
}

// config reports the resolved configuration for a role, including profile defaults.
func (h *Handler) config(w http.ResponseWriter, r *http.Request) {
	role, err := document.ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		h.respondError(w, err, "")
		return
	}
	cfg, err := h.assembler.Resolve(role, document.Options{})
	if err != nil {
		h.respondError(w, err, "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"role":              role,
		"primaryColor":      cfg.PrimaryColor,
		"companyName":       cfg.CompanyName,
		"compact":           cfg.Compact,
		"pageSize":          cfg.PageSize,
		"margins":           cfg.Margins,
		"showPrintControls": cfg.ShowPrintControls,
		"sections":          cfg.Sections,
	})
}

func sinkLabel(res sink.Result, m mode) string {
	if res.Sink != "" {
		return res.Sink
	}
	if m == modePrint {
		return "print"
	}
	return "pdf"
}

func (h *Handler) respondError(w http.ResponseWriter, err error, notice string) {
	var captureErr *sink.CaptureError
	var encodingErr *sink.EncodingError
	detail := notice
	if detail == "" {
		detail = err.Error()
	}
	switch {
	case errors.Is(err, document.ErrUnknownRole),
		errors.Is(err, document.ErrInvalidConfig),
		errors.Is(err, document.ErrEmptySubject),
		errors.Is(err, httpx.ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, sink.ErrPopupBlocked):
		httpx.Problem(w, http.StatusBadGateway, "Window Unavailable", detail)
	case errors.As(err, &captureErr):
		if errors.Is(err, context.DeadlineExceeded) {
			httpx.Problem(w, http.StatusGatewayTimeout, "Capture Timed Out", detail)
			return
		}
		h.logger.Error("capture document", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Capture Failed", detail)
	case errors.As(err, &encodingErr):
		h.logger.Error("encode document", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "PDF Generation Failed", detail)
	default:
		h.logger.Error("deliver document", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", notice)
	}
}
