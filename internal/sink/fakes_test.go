package sink

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/marketplace-reports/internal/document"
)

type fakeWindow struct {
	written string
	focused bool
	closed  bool
	failW   error
}

func (w *fakeWindow) Write(_ context.Context, markup string) error {
	if w.failW != nil {
		return w.failW
	}
	w.written = markup
	return nil
}

func (w *fakeWindow) Focus(context.Context) error {
	w.focused = true
	return nil
}

func (w *fakeWindow) Close() error {
	w.closed = true
	return nil
}

type fakeIndicator struct {
	env *fakeEnv
	id  int
}

func (i *fakeIndicator) Remove(context.Context) error {
	i.env.mu.Lock()
	defer i.env.mu.Unlock()
	delete(i.env.indicators, i.id)
	return nil
}

type fakeEnv struct {
	mu         sync.Mutex
	openErr    error
	saveErr    error
	window     *fakeWindow
	indicators map[int]string
	nextID     int
	notices    []Notice
	saved      map[string][]byte
}

func newFakeEnv() *fakeEnv {
	return &fakeEnv{indicators: map[int]string{}, saved: map[string][]byte{}, window: &fakeWindow{}}
}

func (e *fakeEnv) OpenWindow(context.Context, string) (Window, error) {
	if e.openErr != nil {
		return nil, e.openErr
	}
	return e.window, nil
}

func (e *fakeEnv) ShowLoading(_ context.Context, message string) (Indicator, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	e.indicators[e.nextID] = message
	return &fakeIndicator{env: e, id: e.nextID}, nil
}

func (e *fakeEnv) Notify(_ context.Context, n Notice) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notices = append(e.notices, n)
	return nil
}

func (e *fakeEnv) Save(_ context.Context, filename string, data []byte) (string, error) {
	if e.saveErr != nil {
		return "", e.saveErr
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.saved[filename] = data
	return "/downloads/" + filename, nil
}

func (e *fakeEnv) activeIndicators() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.indicators)
}

type fakeCapturer struct {
	img   []byte
	err   error
	block bool
	calls int
}

func (c *fakeCapturer) Capture(ctx context.Context, _, _ string, _ float64) ([]byte, error) {
	c.calls++
	if c.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return c.img, c.err
}

var errCaptureBroken = errors.New("canvas tainted")

func makePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(y % 256), G: 120, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testDocument() document.Document {
	return document.Document{
		Title:    "Appointment #1",
		Filename: "appointment-1.pdf",
		Markup:   `<!DOCTYPE html><html><body><main id="report-root">hello</main></body></html>`,
		Kind:     document.KindAppointment,
		Role:     document.RoleClient,
		Config:   document.DefaultConfig(document.RoleClient),
		Entities: 1,
	}
}

func countPages(pdf []byte) int {
	return bytes.Count(pdf, []byte("/Type /Page\n"))
}
