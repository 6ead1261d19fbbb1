package sink

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/odyssey-erp/marketplace-reports/internal/document"
)

// PrintWindowSink writes the document into a new window and focuses it so the user can print.
type PrintWindowSink struct {
	env    Environment
	logger *slog.Logger
}

// NewPrintWindowSink constructs a PrintWindowSink.
func NewPrintWindowSink(env Environment, logger *slog.Logger) *PrintWindowSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &PrintWindowSink{env: env, logger: logger}
}

// Deliver opens the window. A window that cannot be opened yields ErrPopupBlocked and nothing is written.
func (s *PrintWindowSink) Deliver(ctx context.Context, doc document.Document) (Result, error) {
	win, err := s.env.OpenWindow(ctx, doc.Title)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrPopupBlocked, err)
	}
	if err := win.Write(ctx, doc.Markup); err != nil {
		_ = win.Close()
		return Result{}, fmt.Errorf("write print window: %w", err)
	}
	if err := win.Focus(ctx); err != nil {
		s.logger.Warn("focus print window", slog.String("title", doc.Title), slog.Any("error", err))
	}
	return Result{Sink: "print", Filename: doc.Filename, Bytes: len(doc.Markup)}, nil
}
