// Package report talks to the Gotenberg HTML to PDF conversion service.
package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrConversion is returned when Gotenberg rejects a conversion.
var ErrConversion = errors.New("report: conversion failed")

const mmPerInch = 25.4

// PageOptions maps a physical page layout onto Gotenberg's chromium form fields.
type PageOptions struct {
	WidthMM  float64
	HeightMM float64
	MarginMM float64
	// PreferCSSPageSize lets an @page rule in the document win over the paper size.
	PreferCSSPageSize bool
}

// A4 is the default page layout.
var A4 = PageOptions{WidthMM: 210, HeightMM: 297, MarginMM: 15}

func (o PageOptions) fields() map[string]string {
	if o.WidthMM <= 0 || o.HeightMM <= 0 {
		o.WidthMM, o.HeightMM = A4.WidthMM, A4.HeightMM
	}
	margin := inches(o.MarginMM)
	return map[string]string{
		"paperWidth":        inches(o.WidthMM),
		"paperHeight":       inches(o.HeightMM),
		"marginTop":         margin,
		"marginBottom":      margin,
		"marginLeft":        margin,
		"marginRight":       margin,
		"printBackground":   "true",
		"preferCssPageSize": strconv.FormatBool(o.PreferCSSPageSize),
	}
}

func inches(mm float64) string {
	return strconv.FormatFloat(mm/mmPerInch, 'f', 3, 64)
}

// Client wraps interactions with the Gotenberg API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a new client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithHTTPClient swaps the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// Ping checks if the remote Gotenberg service is available.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("gotenberg returned status %d", resp.StatusCode)
	}
	return nil
}

// RenderHTML converts a self-contained HTML document into a PDF.
func (c *Client) RenderHTML(ctx context.Context, html string, page PageOptions) ([]byte, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, strings.NewReader(html)); err != nil {
		return nil, err
	}
	for key, value := range page.fields() {
		if err := writer.WriteField(key, value); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/forms/chromium/convert/html", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrConversion, resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return io.ReadAll(resp.Body)
}
