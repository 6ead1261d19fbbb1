package svg

import (
	"fmt"
	"html/template"
	"strings"
)

// Line renders a line chart of series against labels.
func Line(width, height int, series []float64, labels []string, opts LineOpts) (template.HTML, error) {
	if len(series) == 0 {
		return "", ErrNoSeries
	}
	if len(series) != len(labels) {
		return "", ErrLabelMismatch
	}
	minVal, maxVal := bounds(series)
	f, err := newFrame(width, height, opts.Padding, minVal, maxVal)
	if err != nil {
		return "", err
	}
	strokeColor := fallback(opts.StrokeColor, "#2563eb")
	fillColor := fallback(opts.FillColor, "rgba(37,99,235,0.12)")
	axisColor := fallback(opts.AxisColor, "#475569")
	gridColor := fallback(opts.GridColor, "#e2e8f0")

	xs := make([]float64, len(series))
	for i := range series {
		if len(series) > 1 {
			xs[i] = f.padding + float64(i)*f.chartW/float64(len(series)-1)
		} else {
			xs[i] = f.padding + f.chartW/2
		}
	}

	var path strings.Builder
	for i, value := range series {
		cmd := " L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&path, "%s%.2f %.2f", cmd, xs[i], f.y(value))
	}

	var b strings.Builder
	f.open(&b, opts.Title, opts.Description, "line", "Line chart", "Trend data")
	f.grid(&b, opts.TickCount, gridColor, axisColor, opts.Tick)
	f.axes(&b, axisColor)

	base := f.y(0)
	fmt.Fprintf(&b, "<path d=\"%s L%.2f %.2f L%.2f %.2f Z\" fill=\"%s\" stroke=\"none\" aria-hidden=\"true\"></path>", path.String(), xs[len(xs)-1], base, xs[0], base, fillColor)
	fmt.Fprintf(&b, "<path d=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"2\" stroke-linejoin=\"round\" stroke-linecap=\"round\"></path>", path.String(), strokeColor)

	if opts.ShowDots {
		for i, value := range series {
			fmt.Fprintf(&b, "<circle cx=\"%.2f\" cy=\"%.2f\" r=\"3\" fill=\"%s\"></circle>", xs[i], f.y(value), strokeColor)
		}
	}
	for i, label := range labels {
		f.label(&b, xs[i], axisColor, label)
	}
	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
