package svg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineProducesSVG(t *testing.T) {
	html, err := Line(400, 200, []float64{12, 20, 15}, []string{"Jan", "Feb", "Mar"}, LineOpts{
		Title:       "Appointments",
		Description: "Monthly appointments",
		ShowDots:    true,
	})
	require.NoError(t, err)
	out := string(html)
	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.Contains(t, out, "<path")
	assert.Contains(t, out, `aria-labelledby="appointments-line-title appointments-line-desc"`)
	assert.Equal(t, 3, strings.Count(out, "<circle"))
}

func TestLineRejectsBadInput(t *testing.T) {
	_, err := Line(400, 200, nil, nil, LineOpts{})
	assert.ErrorIs(t, err, ErrNoSeries)

	_, err = Line(400, 200, []float64{1, 2}, []string{"a"}, LineOpts{})
	assert.ErrorIs(t, err, ErrLabelMismatch)

	_, err = Line(40, 40, []float64{1}, []string{"a"}, LineOpts{Padding: 30})
	assert.ErrorIs(t, err, ErrViewport)
}

func TestLineEscapesLabels(t *testing.T) {
	html, err := Line(0, 0, []float64{1}, []string{"<b>Q1</b>"}, LineOpts{Title: "x"})
	require.NoError(t, err)
	assert.NotContains(t, string(html), "<b>")
	assert.Contains(t, string(html), "&lt;b&gt;Q1&lt;/b&gt;")
}

func TestBarsProducesSVG(t *testing.T) {
	html, err := Bars(420, 220, []float64{500, 600}, []float64{50, 60}, []string{"Jan", "Feb"}, BarOpts{
		Title:        "Revenue",
		SeriesALabel: "Gross",
		SeriesBLabel: "Platform fees",
		Tick:         func(v float64) string { return "$" + formatTick(v) },
	})
	require.NoError(t, err)
	out := string(html)
	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.Equal(t, 6, strings.Count(out, "<rect"), "four bars and two legend swatches")
	assert.Contains(t, out, "Platform fees")
	assert.Contains(t, out, "$600")
}

func TestBarsRejectsMismatch(t *testing.T) {
	_, err := Bars(0, 0, []float64{1, 2}, nil, []string{"a"}, BarOpts{})
	assert.ErrorIs(t, err, ErrLabelMismatch)

	_, err = Bars(0, 0, nil, nil, []string{"a"}, BarOpts{})
	assert.ErrorIs(t, err, ErrNoSeries)
}

func TestBarPositionClampsToChart(t *testing.T) {
	y, h := barPosition(10, 100, 150, 20, 150)
	assert.Equal(t, 20.0, y)
	assert.Equal(t, 130.0, h)

	y, h = barPosition(-5, 10, 100, 20, 120)
	assert.Equal(t, 100.0, y)
	assert.Equal(t, 20.0, h)
}

func TestFormatTick(t *testing.T) {
	assert.Equal(t, "1.5k", formatTick(1500))
	assert.Equal(t, "2.0M", formatTick(2_000_000))
	assert.Equal(t, "7", formatTick(7))
	assert.Equal(t, "2.5", formatTick(2.5))
}
