// Package chromecap captures rendered documents with chromedp.
package chromecap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Viewport used before the element screenshot crops to the document root.
const (
	viewportWidth  = 1024
	viewportHeight = 768
)

// Capturer owns a Chrome allocator; every capture runs in a fresh tab.
type Capturer struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	logger   *slog.Logger
}

// New starts an allocator. bin overrides the Chrome executable.
func New(bin string, logger *slog.Logger) *Capturer {
	if logger == nil {
		logger = slog.Default()
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("headless", true),
	)
	if bin != "" {
		opts = append(opts, chromedp.ExecPath(bin))
	}
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &Capturer{allocCtx: allocCtx, cancel: cancel, logger: logger}
}

// Close stops the allocator and any running browser.
func (c *Capturer) Close() {
	c.cancel()
}

// Capture loads markup into a blank tab and screenshots the element matched by selector.
func (c *Capturer) Capture(ctx context.Context, markup, selector string, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	tabCtx, cancel := chromedp.NewContext(c.allocCtx, chromedp.WithLogf(func(format string, args ...any) {
		c.logger.Debug(fmt.Sprintf("chromedp: "+format, args...))
	}))
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var img []byte
	err := chromedp.Run(tabCtx,
		chromedp.EmulateViewport(viewportWidth, viewportHeight, chromedp.EmulateScale(scale)),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, markup).Do(ctx)
		}),
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Screenshot(selector, &img, chromedp.NodeVisible, chromedp.ByQuery),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("chromedp capture: %w", ctxErr)
		}
		return nil, fmt.Errorf("chromedp capture: %w", err)
	}
	return img, nil
}
