package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod/lib/proto"
)

// Capture renders markup in a scratch target and screenshots the element matched by selector.
func (h *Host) Capture(ctx context.Context, markup, selector string, scale float64) ([]byte, error) {
	s, err := h.connect()
	if err != nil {
		return nil, err
	}
	p, err := s.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("create capture page: %w", err)
	}
	defer func() {
		_ = p.Close()
	}()
	page := p.Context(ctx)

	width, height := h.cfg.viewport()
	if scale <= 0 {
		scale = 1
	}
	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: scale,
		Mobile:            false,
	}).Call(page); err != nil {
		return nil, fmt.Errorf("set device metrics: %w", err)
	}
	if err := page.SetDocumentContent(markup); err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait for document: %w", err)
	}
	el, err := page.Element(selector)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", selector, err)
	}
	img, err := el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return nil, fmt.Errorf("screenshot %s: %w", selector, err)
	}
	return img, nil
}
