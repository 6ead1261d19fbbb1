// Package browser hosts report delivery in a real Chromium instance driven by go-rod.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/marketplace-reports/internal/sink"
)

// ErrClosed is returned after Close.
var ErrClosed = errors.New("browser: host closed")

// Config selects how the browser is obtained.
type Config struct {
	// ControlURL attaches to a running browser instead of launching one.
	ControlURL     string
	Bin            string
	Headless       bool
	ViewportWidth  int
	ViewportHeight int
	DownloadDir    string
}

func (c Config) viewport() (int, int) {
	w, h := c.ViewportWidth, c.ViewportHeight
	if w <= 0 {
		w = 1024
	}
	if h <= 0 {
		h = 768
	}
	return w, h
}

// Host is a sink.Environment and sink.Capturer backed by one lazily launched browser.
// The host page carries loading indicators and notices; windows are new targets.
type Host struct {
	cfg       Config
	logger    *slog.Logger
	downloads *sink.DirEnvironment
	launch    singleflight.Group

	mu      sync.RWMutex
	browser *rod.Browser
	page    *rod.Page
	closed  bool
}

// NewHost prepares a host; the browser starts on first use.
func NewHost(cfg Config, logger *slog.Logger) (*Host, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dir := cfg.DownloadDir
	if dir == "" {
		dir = "downloads"
	}
	downloads, err := sink.NewDirEnvironment(dir, logger)
	if err != nil {
		return nil, err
	}
	return &Host{cfg: cfg, logger: logger, downloads: downloads}, nil
}

type session struct {
	browser *rod.Browser
	page    *rod.Page
}

func (h *Host) connect() (session, error) {
	h.mu.RLock()
	s, closed := session{browser: h.browser, page: h.page}, h.closed
	h.mu.RUnlock()
	if closed {
		return session{}, ErrClosed
	}
	if s.browser != nil {
		return s, nil
	}
	v, err, _ := h.launch.Do("browser", func() (any, error) {
		controlURL := h.cfg.ControlURL
		if controlURL == "" {
			l := launcher.New().Headless(h.cfg.Headless)
			if h.cfg.Bin != "" {
				l = l.Bin(h.cfg.Bin)
			}
			u, err := l.Launch()
			if err != nil {
				return nil, fmt.Errorf("launch chrome: %w", err)
			}
			controlURL = u
		}
		b := rod.New().ControlURL(controlURL)
		if err := b.Connect(); err != nil {
			return nil, fmt.Errorf("connect to chrome: %w", err)
		}
		p, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
		if err != nil {
			_ = b.Close()
			return nil, fmt.Errorf("create host page: %w", err)
		}
		h.mu.Lock()
		h.browser, h.page = b, p
		h.mu.Unlock()
		h.logger.Info("browser connected", slog.String("control_url", controlURL))
		return session{browser: b, page: p}, nil
	})
	if err != nil {
		return session{}, err
	}
	return v.(session), nil
}

// Close shuts the browser down.
func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	if h.browser == nil {
		return nil
	}
	err := h.browser.Close()
	h.browser, h.page = nil, nil
	return err
}

// OpenWindow opens a new browser target.
func (h *Host) OpenWindow(ctx context.Context, title string) (sink.Window, error) {
	s, err := h.connect()
	if err != nil {
		return nil, err
	}
	p, err := s.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("open window %q: %w", title, err)
	}
	return &window{page: p}, nil
}

// ShowLoading overlays a spinner on the host page.
func (h *Host) ShowLoading(ctx context.Context, message string) (sink.Indicator, error) {
	s, err := h.connect()
	if err != nil {
		return nil, err
	}
	res, err := s.page.Context(ctx).Eval(showLoadingJS, message)
	if err != nil {
		return nil, fmt.Errorf("show loading: %w", err)
	}
	return &indicator{page: s.page, id: res.Value.Str()}, nil
}

// Notify renders a dismissible notice on the host page.
func (h *Host) Notify(ctx context.Context, n sink.Notice) error {
	s, err := h.connect()
	if err != nil {
		return err
	}
	if _, err := s.page.Context(ctx).Eval(notifyJS, string(n.Level), n.Title, n.Message, n.Dismissible); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}

// Save stores the file in the download directory.
func (h *Host) Save(ctx context.Context, filename string, data []byte) (string, error) {
	return h.downloads.Save(ctx, filename, data)
}

// IndicatorCount reports how many loading overlays exist on the host page.
func (h *Host) IndicatorCount(ctx context.Context) (int, error) {
	s, err := h.connect()
	if err != nil {
		return 0, err
	}
	res, err := s.page.Context(ctx).Eval(`() => document.querySelectorAll('[data-report-loading]').length`)
	if err != nil {
		return 0, err
	}
	return res.Value.Int(), nil
}

type window struct {
	page *rod.Page
}

func (w *window) Write(ctx context.Context, markup string) error {
	return w.page.Context(ctx).SetDocumentContent(markup)
}

func (w *window) Focus(ctx context.Context) error {
	_, err := w.page.Context(ctx).Activate()
	return err
}

func (w *window) Close() error {
	return w.page.Close()
}

type indicator struct {
	page *rod.Page
	id   string
}

func (i *indicator) Remove(ctx context.Context) error {
	_, err := i.page.Context(ctx).Eval(`(id) => { const el = document.getElementById(id); if (el) el.remove(); }`, i.id)
	return err
}

const showLoadingJS = `(message) => {
	const el = document.createElement('div');
	el.id = 'report-loading-' + Date.now() + '-' + Math.floor(Math.random() * 1e6);
	el.setAttribute('data-report-loading', '');
	el.setAttribute('role', 'status');
	el.style.cssText = 'position:fixed;inset:0;display:flex;align-items:center;justify-content:center;background:rgba(255,255,255,0.8);z-index:9999;font-family:sans-serif;';
	el.textContent = message;
	document.body.appendChild(el);
	return el.id;
}`

const notifyJS = `(level, title, message, dismissible) => {
	const el = document.createElement('div');
	el.setAttribute('data-report-notice', level);
	el.setAttribute('role', level === 'error' ? 'alert' : 'status');
	el.style.cssText = 'position:fixed;top:16px;right:16px;max-width:360px;padding:12px 16px;border-radius:6px;z-index:10000;font-family:sans-serif;color:#fff;background:' + (level === 'error' ? '#b91c1c' : '#1d4ed8') + ';';
	const heading = document.createElement('strong');
	heading.textContent = title;
	const body = document.createElement('div');
	body.textContent = message;
	el.append(heading, body);
	if (dismissible) {
		const close = document.createElement('button');
		close.type = 'button';
		close.textContent = 'Dismiss';
		close.addEventListener('click', () => el.remove());
		el.append(close);
	}
	document.body.appendChild(el);
}`
