package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// Bars renders a grouped bar chart comparing up to two series.
func Bars(width, height int, seriesA, seriesB []float64, labels []string, opts BarOpts) (template.HTML, error) {
	if len(seriesA) == 0 && len(seriesB) == 0 {
		return "", ErrNoSeries
	}
	if len(labels) == 0 {
		return "", fmt.Errorf("%w: labels required", ErrLabelMismatch)
	}
	if len(seriesA) > 0 && len(seriesA) != len(labels) {
		return "", fmt.Errorf("%w: series A", ErrLabelMismatch)
	}
	if len(seriesB) > 0 && len(seriesB) != len(labels) {
		return "", fmt.Errorf("%w: series B", ErrLabelMismatch)
	}
	minVal, maxVal := barBounds(seriesA, seriesB)
	f, err := newFrame(width, height, opts.Padding, minVal, maxVal)
	if err != nil {
		return "", err
	}

	axisColor := fallback(opts.AxisColor, "#475569")
	gridColor := fallback(opts.GridColor, "#e2e8f0")
	colorA := fallback(opts.ColorA, "#2563eb")
	colorB := fallback(opts.ColorB, "#f97316")
	labelA := fallback(opts.SeriesALabel, "Series A")
	labelB := fallback(opts.SeriesBLabel, "Series B")

	groupWidth := f.chartW / float64(len(labels))
	barWidth := groupWidth / 3
	zeroY := f.y(0)

	var b strings.Builder
	f.open(&b, opts.Title, opts.Description, "bar", "Bar chart", "Grouped bar comparison")
	f.grid(&b, opts.TickCount, gridColor, axisColor, opts.Tick)
	f.axes(&b, axisColor)

	for i, label := range labels {
		baseX := f.padding + float64(i)*groupWidth
		if len(seriesA) > 0 {
			y, h := barPosition(seriesA[i], f.scale, zeroY, f.padding, f.bottom())
			fmt.Fprintf(&b, "<rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" fill=\"%s\" aria-label=\"%s %s\"></rect>", baseX+barWidth*0.3, y, barWidth, h, colorA, template.HTMLEscapeString(labelA), template.HTMLEscapeString(label))
		}
		if len(seriesB) > 0 {
			y, h := barPosition(seriesB[i], f.scale, zeroY, f.padding, f.bottom())
			fmt.Fprintf(&b, "<rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" fill=\"%s\" aria-label=\"%s %s\"></rect>", baseX+barWidth*1.4, y, barWidth, h, colorB, template.HTMLEscapeString(labelB), template.HTMLEscapeString(label))
		}
		f.label(&b, baseX+groupWidth/2, axisColor, label)
	}

	legendY := math.Max(f.padding-12, 12)
	legendX := f.padding
	if len(seriesA) > 0 {
		legend(&b, legendX, legendY, colorA, axisColor, labelA)
		legendX += 110
	}
	if len(seriesB) > 0 {
		legend(&b, legendX, legendY, colorB, axisColor, labelB)
	}
	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

func legend(b *strings.Builder, x, y float64, color, axisColor, text string) {
	fmt.Fprintf(b, "<rect x=\"%.2f\" y=\"%.2f\" width=\"10\" height=\"10\" fill=\"%s\"></rect>", x, y-8, color)
	fmt.Fprintf(b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"start\">%s</text>", x+14, y, axisColor, template.HTMLEscapeString(text))
}

func barBounds(a, b []float64) (float64, float64) {
	switch {
	case len(a) == 0:
		return bounds(b)
	case len(b) == 0:
		return bounds(a)
	}
	minA, maxA := bounds(a)
	minB, maxB := bounds(b)
	return math.Min(minA, minB), math.Max(maxA, maxB)
}

func barPosition(value, scale, zeroY, top, bottom float64) (float64, float64) {
	if value >= 0 {
		height := value * scale
		y := zeroY - height
		if y < top {
			height -= top - y
			y = top
		}
		return y, math.Max(height, 0)
	}
	height := math.Abs(value * scale)
	if zeroY+height > bottom {
		height = bottom - zeroY
	}
	return zeroY, math.Max(height, 0)
}
