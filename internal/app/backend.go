package app

import (
	"errors"
	"fmt"
	"log/slog"

	documenthttp "github.com/odyssey-erp/marketplace-reports/internal/document/http"
	"github.com/odyssey-erp/marketplace-reports/internal/sink"
	"github.com/odyssey-erp/marketplace-reports/internal/sink/browser"
	"github.com/odyssey-erp/marketplace-reports/internal/sink/chromecap"
	"github.com/odyssey-erp/marketplace-reports/report"
)

// PDFBackend builds PDF sinks for the backend selected by PDF_BACKEND.
type PDFBackend struct {
	name    string
	logger  *slog.Logger
	client  *report.Client
	capture sink.Capturer
	opts    []sink.ExportOption
	closers []func() error
}

// NewPDFBackend prepares the configured backend. Browsers start lazily on first capture.
func NewPDFBackend(cfg *Config, logger *slog.Logger) (*PDFBackend, error) {
	if cfg == nil {
		return nil, errors.New("app: pdf backend requires config")
	}
	if logger == nil {
		logger = slog.Default()
	}
	b := &PDFBackend{
		name:   cfg.PDFBackend,
		logger: logger,
		opts: []sink.ExportOption{
			sink.WithCaptureTimeout(cfg.CaptureTimeout),
			sink.WithScale(cfg.CaptureScale),
		},
	}
	switch cfg.PDFBackend {
	case BackendGotenberg:
		b.client = report.NewClient(cfg.GotenbergURL)
	case BackendRod:
		host, err := browser.NewHost(browser.Config{
			ControlURL:  cfg.ChromeURL,
			Bin:         cfg.ChromeBin,
			Headless:    true,
			DownloadDir: cfg.ExportStorageDir,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("app: browser host: %w", err)
		}
		b.capture = host
		b.closers = append(b.closers, host.Close)
	case BackendChromedp:
		capturer := chromecap.New(cfg.ChromeBin, logger)
		b.capture = capturer
		b.closers = append(b.closers, func() error {
			capturer.Close()
			return nil
		})
	default:
		return nil, fmt.Errorf("app: unknown pdf backend %q", cfg.PDFBackend)
	}
	return b, nil
}

// Name reports the selected backend.
func (b *PDFBackend) Name() string { return b.name }

// Sink builds a PDF sink delivering into env.
func (b *PDFBackend) Sink(env sink.Environment) sink.Sink {
	if b.client != nil {
		return sink.NewGotenbergSink(b.client, env, b.logger)
	}
	return sink.NewFileExportSink(env, b.capture, b.logger, b.opts...)
}

// Factory adapts the backend for the document HTTP handler.
func (b *PDFBackend) Factory() documenthttp.SinkFactory {
	return b.Sink
}

// Client returns the Gotenberg client, or nil for capture backends.
func (b *PDFBackend) Client() *report.Client { return b.client }

// Close releases browsers started by the backend.
func (b *PDFBackend) Close() error {
	var errs []error
	for _, closeFn := range b.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
