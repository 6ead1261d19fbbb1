package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/odyssey-erp/marketplace-reports/internal/document"
)

// Export defaults.
const (
	DefaultCaptureScale   = 2.0
	DefaultCaptureTimeout = 60 * time.Second
)

// FileExportSink rasterises the rendered document and saves it as a paginated PDF.
type FileExportSink struct {
	env      Environment
	capturer Capturer
	logger   *slog.Logger
	selector string
	scale    float64
	timeout  time.Duration
	observe  TransitionFunc
}

// ExportOption customises a FileExportSink.
type ExportOption func(*FileExportSink)

// WithSelector sets the element to capture.
func WithSelector(selector string) ExportOption {
	return func(s *FileExportSink) {
		if selector != "" {
			s.selector = selector
		}
	}
}

// WithScale sets the capture pixel density.
func WithScale(scale float64) ExportOption {
	return func(s *FileExportSink) {
		if scale > 0 {
			s.scale = scale
		}
	}
}

// WithCaptureTimeout bounds the capture step.
func WithCaptureTimeout(d time.Duration) ExportOption {
	return func(s *FileExportSink) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithTransitionHook observes state changes of every delivery.
func WithTransitionHook(fn TransitionFunc) ExportOption {
	return func(s *FileExportSink) {
		s.observe = fn
	}
}

// NewFileExportSink constructs a FileExportSink.
func NewFileExportSink(env Environment, capturer Capturer, logger *slog.Logger, opts ...ExportOption) *FileExportSink {
	if logger == nil {
		logger = slog.Default()
	}
	s := &FileExportSink{
		env:      env,
		capturer: capturer,
		logger:   logger,
		selector: DefaultSelector,
		scale:    DefaultCaptureScale,
		timeout:  DefaultCaptureTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Deliver runs idle -> capturing -> saving -> done. Any failure goes through notifying back to idle,
// and the loading indicator is removed on every path.
func (s *FileExportSink) Deliver(ctx context.Context, doc document.Document) (Result, error) {
	m := newMachine(s.observe, s.logger)
	indicator, err := s.env.ShowLoading(ctx, "Generating PDF...")
	if err != nil {
		return Result{}, fmt.Errorf("show loading indicator: %w", err)
	}
	defer func() {
		if err := indicator.Remove(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("remove loading indicator", slog.Any("error", err))
		}
	}()

	m.advance(StateCapturing)
	captureCtx, cancel := context.WithTimeout(ctx, s.timeout)
	img, err := s.capturer.Capture(captureCtx, doc.Markup, s.selector, s.scale)
	cancel()
	if err != nil {
		return Result{}, s.fail(ctx, m, doc, &CaptureError{Err: err})
	}

	m.advance(StateSaving)
	pdf, pages, err := Paginate(img, PageSpecFor(doc.Config))
	if err != nil {
		return Result{}, s.fail(ctx, m, doc, &EncodingError{Err: err})
	}
	location, err := s.env.Save(ctx, doc.Filename, pdf)
	if err != nil {
		return Result{}, s.fail(ctx, m, doc, fmt.Errorf("%w: %v", ErrSave, err))
	}
	m.advance(StateDone)

	s.logger.Info("document exported",
		slog.String("filename", doc.Filename),
		slog.String("location", location),
		slog.Int("pages", pages),
		slog.Int("bytes", len(pdf)),
	)
	return Result{Sink: "file", Filename: doc.Filename, Location: location, Pages: pages, Bytes: len(pdf)}, nil
}

func (s *FileExportSink) fail(ctx context.Context, m *machine, doc document.Document, cause error) error {
	m.advance(StateNotifying)
	s.logger.Error("document export failed", slog.String("filename", doc.Filename), slog.Any("error", cause))
	notice := Notice{Level: NoticeError, Title: "Export failed", Message: failureMessage(cause), Dismissible: true}
	if err := s.env.Notify(context.WithoutCancel(ctx), notice); err != nil {
		s.logger.Warn("notify export failure", slog.Any("error", err))
	}
	m.advance(StateIdle)
	return cause
}

func failureMessage(err error) string {
	var captureErr *CaptureError
	var encodingErr *EncodingError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "Capturing the report took too long. Please try again."
	case errors.As(err, &captureErr):
		return "The report could not be captured. Please try again."
	case errors.As(err, &encodingErr):
		return "The PDF could not be generated. Please try again."
	default:
		return "The PDF could not be saved. Please try again."
	}
}
