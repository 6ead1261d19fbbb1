package report

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SampleSource produces a document used to smoke-test the conversion path.
type SampleSource func(ctx context.Context) (html string, page PageOptions, err error)

// Handler manages conversion service diagnostics.
type Handler struct {
	client *Client
	sample SampleSource
	logger *slog.Logger
}

// NewHandler creates a report handler.
func NewHandler(client *Client, sample SampleSource, logger *slog.Logger) *Handler {
	return &Handler{client: client, sample: sample, logger: logger}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ping", h.ping)
	if h.sample != nil {
		r.Post("/sample", h.renderSample)
	}
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	if err := h.client.Ping(r.Context()); err != nil {
		h.logger.Warn("gotenberg ping failed", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) renderSample(w http.ResponseWriter, r *http.Request) {
	html, page, err := h.sample(r.Context())
	if err != nil {
		h.logger.Error("build sample document", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	pdf, err := h.client.RenderHTML(r.Context(), html, page)
	if err != nil {
		h.logger.Error("render sample pdf", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename=sample.pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
