// Package sink delivers assembled documents to the user: a print window, a downloaded PDF
// rasterised from the rendered page, or a PDF converted by Gotenberg.
package sink

import (
	"context"
	"errors"
	"fmt"

	"github.com/odyssey-erp/marketplace-reports/internal/document"
)

var (
	// ErrPopupBlocked is returned when no new window could be opened.
	ErrPopupBlocked = errors.New("sink: popup blocked")
	// ErrSave is returned when the environment refused to store the file.
	ErrSave = errors.New("sink: save failed")
	// ErrEmptyCapture is returned when the capturer produced no pixels.
	ErrEmptyCapture = errors.New("sink: empty capture")
)

// CaptureError wraps a failure while rasterising the document.
type CaptureError struct {
	Err error
}

func (e *CaptureError) Error() string { return fmt.Sprintf("sink: capture failed: %v", e.Err) }

func (e *CaptureError) Unwrap() error { return e.Err }

// EncodingError wraps a failure while assembling the PDF.
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string { return fmt.Sprintf("sink: encoding failed: %v", e.Err) }

func (e *EncodingError) Unwrap() error { return e.Err }

// Result describes a completed delivery.
type Result struct {
	Sink     string `json:"sink"`
	Filename string `json:"filename,omitempty"`
	Location string `json:"location,omitempty"`
	Pages    int    `json:"pages,omitempty"`
	Bytes    int    `json:"bytes"`
}

// Sink delivers a finished document.
type Sink interface {
	Deliver(ctx context.Context, doc document.Document) (Result, error)
}

// NoticeLevel grades a user-visible notice.
type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeError NoticeLevel = "error"
)

// Notice is a message surfaced to the user.
type Notice struct {
	Level       NoticeLevel
	Title       string
	Message     string
	Dismissible bool
}

// Window is a browsing context holding a document.
type Window interface {
	Write(ctx context.Context, markup string) error
	Focus(ctx context.Context) error
	Close() error
}

// Indicator is a transient loading element owned by one delivery.
type Indicator interface {
	Remove(ctx context.Context) error
}

// Environment is the host the sinks act on: a browser, a directory or an HTTP response.
type Environment interface {
	OpenWindow(ctx context.Context, title string) (Window, error)
	ShowLoading(ctx context.Context, message string) (Indicator, error)
	Notify(ctx context.Context, notice Notice) error
	Save(ctx context.Context, filename string, data []byte) (string, error)
}

// Capturer rasterises the element matched by selector to a PNG at the given pixel density.
type Capturer interface {
	Capture(ctx context.Context, markup, selector string, scale float64) ([]byte, error)
}

// DefaultSelector matches the root element of assembled documents.
const DefaultSelector = "#report-root"
