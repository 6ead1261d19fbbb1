package documenthttp

import (
	"context"
	"log/slog"
	"sync"

	"github.com/odyssey-erp/marketplace-reports/internal/sink"
)

// responseEnv is the delivery environment of one HTTP request. The "window" is the
// response body and saved files become the attachment.
type responseEnv struct {
	logger *slog.Logger

	mu       sync.Mutex
	title    string
	markup   string
	filename string
	data     []byte
	notices  []sink.Notice
	loading  int
}

func newResponseEnv(logger *slog.Logger) *responseEnv {
	return &responseEnv{logger: logger}
}

func (e *responseEnv) OpenWindow(_ context.Context, title string) (sink.Window, error) {
	e.mu.Lock()
	e.title = title
	e.mu.Unlock()
	return &responseWindow{env: e}, nil
}

func (e *responseEnv) ShowLoading(_ context.Context, message string) (sink.Indicator, error) {
	e.mu.Lock()
	e.loading++
	e.mu.Unlock()
	e.logger.Debug("loading", slog.String("message", message))
	return responseIndicator{env: e}, nil
}

func (e *responseEnv) Notify(_ context.Context, n sink.Notice) error {
	e.mu.Lock()
	e.notices = append(e.notices, n)
	e.mu.Unlock()
	return nil
}

func (e *responseEnv) Save(_ context.Context, filename string, data []byte) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filename = filename
	e.data = data
	return "attachment:" + filename, nil
}

// lastNotice returns the message of the most recent notice, if any.
func (e *responseEnv) lastNotice() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.notices) == 0 {
		return ""
	}
	return e.notices[len(e.notices)-1].Message
}

type responseWindow struct {
	env *responseEnv
}

func (w *responseWindow) Write(_ context.Context, markup string) error {
	w.env.mu.Lock()
	w.env.markup = markup
	w.env.mu.Unlock()
	return nil
}

func (w *responseWindow) Focus(context.Context) error { return nil }

func (w *responseWindow) Close() error {
	w.env.mu.Lock()
	w.env.markup = ""
	w.env.mu.Unlock()
	return nil
}

type responseIndicator struct {
	env *responseEnv
}

func (i responseIndicator) Remove(context.Context) error {
	i.env.mu.Lock()
	i.env.loading--
	i.env.mu.Unlock()
	return nil
}
