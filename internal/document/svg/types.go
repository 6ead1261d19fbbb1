// Package svg renders the inline charts embedded in analytics reports.
package svg

import "errors"

var (
	// ErrNoSeries is returned when a chart has nothing to plot.
	ErrNoSeries = errors.New("svg: series required")
	// ErrLabelMismatch is returned when labels and values differ in length.
	ErrLabelMismatch = errors.New("svg: labels length must match series")
	// ErrViewport is returned when padding leaves no drawable area.
	ErrViewport = errors.New("svg: viewport too small")
)

// LineOpts customises the line chart renderer.
type LineOpts struct {
	Title       string
	Description string
	StrokeColor string
	FillColor   string
	AxisColor   string
	GridColor   string
	Padding     float64
	ShowDots    bool
	TickCount   int
	// Tick formats y-axis values; defaults to a compact numeric form.
	Tick func(float64) string
}

// BarOpts customises the bar chart renderer.
type BarOpts struct {
	Title        string
	Description  string
	SeriesALabel string
	SeriesBLabel string
	ColorA       string
	ColorB       string
	AxisColor    string
	GridColor    string
	Padding      float64
	TickCount    int
	Tick         func(float64) string
}

// Chart defaults sized for an A4 content column.
const (
	DefaultWidth   = 640
	DefaultHeight  = 220
	DefaultPadding = 28.0
	DefaultTicks   = 4
)
