package sink

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// DirEnvironment is a headless host: windows and downloads become files in a directory and
// notices go to the log.
type DirEnvironment struct {
	dir    string
	logger *slog.Logger
}

// NewDirEnvironment creates the directory if needed.
func NewDirEnvironment(dir string, logger *slog.Logger) (*DirEnvironment, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &DirEnvironment{dir: dir, logger: logger}, nil
}

// OpenWindow returns a window backed by an HTML file named after title.
func (e *DirEnvironment) OpenWindow(_ context.Context, title string) (Window, error) {
	name := SafeFilename(title, "report") + ".html"
	return &fileWindow{path: filepath.Join(e.dir, name), logger: e.logger}, nil
}

// ShowLoading logs the start of a long operation.
func (e *DirEnvironment) ShowLoading(_ context.Context, message string) (Indicator, error) {
	e.logger.Info(message)
	return logIndicator{logger: e.logger, message: message}, nil
}

// Notify logs the notice at a matching level.
func (e *DirEnvironment) Notify(ctx context.Context, n Notice) error {
	level := slog.LevelInfo
	if n.Level == NoticeError {
		level = slog.LevelError
	}
	e.logger.Log(ctx, level, n.Title, slog.String("message", n.Message))
	return nil
}

// Save writes data atomically so a failed save never leaves a partial file behind.
func (e *DirEnvironment) Save(_ context.Context, filename string, data []byte) (string, error) {
	target := filepath.Join(e.dir, SafeFilename(filename, "report.pdf"))
	tmp, err := os.CreateTemp(e.dir, ".download-*")
	if err != nil {
		return "", err
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", err
	}
	return target, nil
}

// SafeFilename reduces name to a portable file name.
func SafeFilename(name, fallback string) string {
	cleaned := strings.Trim(unsafeName.ReplaceAllString(strings.TrimSpace(name), "-"), "-.")
	if cleaned == "" {
		return fallback
	}
	return cleaned
}

type fileWindow struct {
	path   string
	logger *slog.Logger
}

func (w *fileWindow) Write(_ context.Context, markup string) error {
	return os.WriteFile(w.path, []byte(markup), 0o644)
}

func (w *fileWindow) Focus(_ context.Context) error {
	w.logger.Info("print document ready", slog.String("path", w.path))
	return nil
}

func (w *fileWindow) Close() error { return nil }

type logIndicator struct {
	logger  *slog.Logger
	message string
}

func (i logIndicator) Remove(_ context.Context) error {
	i.logger.Debug("loading finished", slog.String("operation", i.message))
	return nil
}
