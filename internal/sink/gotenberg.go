package sink

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/odyssey-erp/marketplace-reports/internal/document"
	"github.com/odyssey-erp/marketplace-reports/report"
)

// Converter renders HTML to PDF server-side.
type Converter interface {
	RenderHTML(ctx context.Context, html string, page report.PageOptions) ([]byte, error)
}

// GotenbergSink converts the document markup through Gotenberg and saves the PDF.
type GotenbergSink struct {
	converter Converter
	env       Environment
	logger    *slog.Logger
}

// NewGotenbergSink constructs a GotenbergSink.
func NewGotenbergSink(converter Converter, env Environment, logger *slog.Logger) *GotenbergSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &GotenbergSink{converter: converter, env: env, logger: logger}
}

// PageOptionsFor maps a document configuration onto Gotenberg paper settings.
func PageOptionsFor(cfg document.Config) report.PageOptions {
	spec := PageSpecFor(cfg)
	return report.PageOptions{WidthMM: spec.WidthMM, HeightMM: spec.HeightMM, MarginMM: spec.MarginMM, PreferCSSPageSize: true}
}

// Deliver converts and saves the document. Conversion failures are EncodingErrors.
func (s *GotenbergSink) Deliver(ctx context.Context, doc document.Document) (Result, error) {
	indicator, err := s.env.ShowLoading(ctx, "Generating PDF...")
	if err != nil {
		return Result{}, fmt.Errorf("show loading indicator: %w", err)
	}
	defer func() {
		if err := indicator.Remove(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("remove loading indicator", slog.Any("error", err))
		}
	}()

	pdf, err := s.converter.RenderHTML(ctx, doc.Markup, PageOptionsFor(doc.Config))
	if err != nil {
		return Result{}, s.fail(ctx, &EncodingError{Err: err})
	}
	location, err := s.env.Save(ctx, doc.Filename, pdf)
	if err != nil {
		return Result{}, s.fail(ctx, fmt.Errorf("%w: %v", ErrSave, err))
	}
	return Result{Sink: "gotenberg", Filename: doc.Filename, Location: location, Bytes: len(pdf)}, nil
}

func (s *GotenbergSink) fail(ctx context.Context, cause error) error {
	s.logger.Error("gotenberg export failed", slog.Any("error", cause))
	notice := Notice{Level: NoticeError, Title: "Export failed", Message: failureMessage(cause), Dismissible: true}
	if err := s.env.Notify(context.WithoutCancel(ctx), notice); err != nil {
		s.logger.Warn("notify export failure", slog.Any("error", err))
	}
	return cause
}
