package sink

import (
	"bytes"
	"fmt"
	"image/png"
	"math"

	"github.com/jung-kurt/gofpdf"

	"github.com/odyssey-erp/marketplace-reports/internal/document"
)

// pageEpsilon absorbs float error so an image of exactly N page heights yields N pages.
const pageEpsilon = 0.01

// PageSpec is the physical page in millimetres.
type PageSpec struct {
	WidthMM  float64
	HeightMM float64
	MarginMM float64
}

// PageSpecFor derives the page from a resolved document configuration.
func PageSpecFor(cfg document.Config) PageSpec {
	w, h := cfg.PageSize.Dimensions()
	return PageSpec{WidthMM: w, HeightMM: h, MarginMM: cfg.MarginMM()}
}

func (s PageSpec) content() (float64, float64) {
	return s.WidthMM - 2*s.MarginMM, s.HeightMM - 2*s.MarginMM
}

// Placement positions the full capture on one page. Continuation pages shift it up by whole content heights.
type Placement struct {
	Page int
	X    float64
	Y    float64
	W    float64
	H    float64
}

// PageLayout scales a capture of imgW x imgH pixels to the content width and slices it across pages.
func PageLayout(imgW, imgH int, spec PageSpec) []Placement {
	cw, ch := spec.content()
	if imgW <= 0 || imgH <= 0 || cw <= 0 || ch <= 0 {
		return nil
	}
	drawnH := float64(imgH) * cw / float64(imgW)
	pages := int(math.Ceil((drawnH - pageEpsilon) / ch))
	if pages < 1 {
		pages = 1
	}
	out := make([]Placement, pages)
	for i := range out {
		out[i] = Placement{
			Page: i + 1,
			X:    spec.MarginMM,
			Y:    spec.MarginMM - float64(i)*ch,
			W:    cw,
			H:    drawnH,
		}
	}
	return out
}

// Paginate turns a PNG capture into a multi-page PDF and reports the page count.
func Paginate(img []byte, spec PageSpec) ([]byte, int, error) {
	cfg, err := png.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return nil, 0, fmt.Errorf("decode capture: %w", err)
	}
	layout := PageLayout(cfg.Width, cfg.Height, spec)
	if len(layout) == 0 {
		return nil, 0, ErrEmptyCapture
	}
	cw, ch := spec.content()

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: spec.WidthMM, Ht: spec.HeightMM},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("capture", opts, bytes.NewReader(img))
	for _, p := range layout {
		pdf.AddPage()
		pdf.ClipRect(spec.MarginMM, spec.MarginMM, cw, ch, false)
		pdf.ImageOptions("capture", p.X, p.Y, p.W, p.H, false, opts, 0, "")
		pdf.ClipEnd()
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, 0, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), len(layout), nil
}
