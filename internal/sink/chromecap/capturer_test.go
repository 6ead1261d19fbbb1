package chromecap

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chromeBin(t *testing.T) string {
	t.Helper()
	for _, name := range []string{"chromium", "chromium-browser", "google-chrome", "google-chrome-stable"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	t.Skip("chrome not installed")
	return ""
}

func TestCaptureProducesPNG(t *testing.T) {
	c := New(chromeBin(t), nil)
	defer c.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	img, err := c.Capture(ctx, `<html><body><main id="report-root" style="width:300px;height:120px;background:#0f766e">x</main></body></html>`, "#report-root", 2)
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(bytes.NewReader(img))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, cfg.Width, 300)
}

func TestCaptureHonoursDeadline(t *testing.T) {
	c := New(chromeBin(t), nil)
	defer c.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err := c.Capture(ctx, `<html><body></body></html>`, "#missing", 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
