package document

import (
	"fmt"
	"html/template"
	"strings"
)

// styleMetrics groups every size constant of the stylesheet so compact mode scales them together.
type styleMetrics struct {
	baseFont      int
	titleFont     int
	sectionFont   int
	smallFont     int
	pagePadding   int
	sectionGap    int
	sectionPad    int
	cellPadY      int
	cellPadX      int
	badgePadY     int
	badgePadX     int
	metricFont    int
	chartMaxWidth int
	lineHeight    float64
}

func metricsFor(compact bool) styleMetrics {
	if compact {
		return styleMetrics{
			baseFont:      11,
			titleFont:     18,
			sectionFont:   13,
			smallFont:     9,
			pagePadding:   12,
			sectionGap:    10,
			sectionPad:    8,
			cellPadY:      3,
			cellPadX:      6,
			badgePadY:     1,
			badgePadX:     6,
			metricFont:    16,
			chartMaxWidth: 560,
			lineHeight:    1.3,
		}
	}
	return styleMetrics{
		baseFont:      14,
		titleFont:     24,
		sectionFont:   16,
		smallFont:     12,
		pagePadding:   32,
		sectionGap:    20,
		sectionPad:    16,
		cellPadY:      8,
		cellPadX:      12,
		badgePadY:     3,
		badgePadX:     10,
		metricFont:    22,
		chartMaxWidth: 720,
		lineHeight:    1.5,
	}
}

var statusPalette = []struct {
	class, fg, bg string
}{
	{"status-pending", "#92400e", "#fef3c7"},
	{"status-confirmed", "#1e40af", "#dbeafe"},
	{"status-in-progress", "#6b21a8", "#f3e8ff"},
	{"status-completed", "#166534", "#dcfce7"},
	{"status-cancelled", "#991b1b", "#fee2e2"},
	{"status-no-show", "#7f1d1d", "#fecaca"},
	{"status-rescheduled", "#155e75", "#cffafe"},
	{"status-default", "#374151", "#e5e7eb"},
}

// Styles renders the stylesheet for a document. It depends on the configuration only.
func Styles(cfg Config) template.CSS {
	m := metricsFor(cfg.Compact)
	color := cfg.PrimaryColor
	if color == "" {
		color = DefaultPrimaryColor
	}
	margins := cfg.Margins
	if margins == "" {
		margins = DefaultMargins
	}
	pageSize := cfg.PageSize
	if pageSize == "" {
		pageSize = PageA4
	}

	var b strings.Builder
	fmt.Fprintf(&b, "@page{size:%s;margin:%s;}", pageSize, margins)
	b.WriteString("*{box-sizing:border-box;}")
	fmt.Fprintf(&b, "body{margin:0;font-family:'Helvetica Neue',Arial,sans-serif;font-size:%dpx;line-height:%.1f;color:#1f2937;background:#f3f4f6;}", m.baseFont, m.lineHeight)
	fmt.Fprintf(&b, ".document{max-width:900px;margin:0 auto;background:#ffffff;padding:%dpx;}", m.pagePadding)
	fmt.Fprintf(&b, ".doc-header{border-bottom:3px solid %s;padding-bottom:%dpx;margin-bottom:%dpx;}", color, m.sectionPad, m.sectionGap)
	fmt.Fprintf(&b, ".company-name{color:%s;font-weight:700;font-size:%dpx;text-transform:uppercase;letter-spacing:0.05em;}", color, m.smallFont)
	fmt.Fprintf(&b, ".doc-title{margin:4px 0;font-size:%dpx;color:#111827;}", m.titleFont)
	fmt.Fprintf(&b, ".doc-meta{display:flex;flex-wrap:wrap;gap:%dpx;align-items:center;font-size:%dpx;color:#6b7280;}", m.cellPadX, m.smallFont)
	fmt.Fprintf(&b, ".role-badge,.status-badge{display:inline-block;border-radius:999px;padding:%dpx %dpx;font-size:%dpx;font-weight:600;}", m.badgePadY, m.badgePadX, m.smallFont)
	fmt.Fprintf(&b, ".role-badge{background:%s;color:#ffffff;}", color)
	for _, s := range statusPalette {
		fmt.Fprintf(&b, ".%s{background:%s;color:%s;}", s.class, s.bg, s.fg)
	}
	fmt.Fprintf(&b, ".section{margin-bottom:%dpx;padding:%dpx;border:1px solid #e5e7eb;border-radius:6px;page-break-inside:avoid;break-inside:avoid;}", m.sectionGap, m.sectionPad)
	fmt.Fprintf(&b, ".section-title{margin:0 0 %dpx 0;font-size:%dpx;color:%s;border-bottom:1px solid #e5e7eb;padding-bottom:%dpx;}", m.cellPadY*2, m.sectionFont, color, m.cellPadY)
	b.WriteString(".detail-table,.data-table{width:100%;border-collapse:collapse;}")
	fmt.Fprintf(&b, ".detail-table th,.detail-table td,.data-table th,.data-table td{padding:%dpx %dpx;text-align:left;vertical-align:top;border-bottom:1px solid #f3f4f6;}", m.cellPadY, m.cellPadX)
	b.WriteString(".detail-table th{width:38%;color:#6b7280;font-weight:500;}")
	b.WriteString(".data-table th{background:#f9fafb;color:#374151;font-weight:600;}")
	b.WriteString(".data-table td.num,.data-table th.num,.detail-table td.amount{text-align:right;font-variant-numeric:tabular-nums;}")
	fmt.Fprintf(&b, ".detail-table tr.total-row th,.detail-table tr.total-row td{font-weight:700;color:#111827;border-top:2px solid %s;}", color)
	b.WriteString(".detail-table td.discount{color:#166534;}")
	fmt.Fprintf(&b, ".note{margin-bottom:%dpx;}", m.cellPadY*2)
	fmt.Fprintf(&b, ".note-label{font-weight:600;color:#374151;font-size:%dpx;}", m.smallFont)
	b.WriteString(".note-text{margin:2px 0 0 0;white-space:pre-wrap;}")
	fmt.Fprintf(&b, ".summary-grid{display:grid;grid-template-columns:repeat(4,1fr);gap:%dpx;}", m.cellPadX)
	fmt.Fprintf(&b, ".metric-card{border:1px solid #e5e7eb;border-radius:6px;padding:%dpx;}", m.sectionPad/2)
	fmt.Fprintf(&b, ".metric-label{font-size:%dpx;color:#6b7280;}", m.smallFont)
	fmt.Fprintf(&b, ".metric-value{font-size:%dpx;font-weight:700;color:%s;}", m.metricFont, color)
	fmt.Fprintf(&b, ".chart{max-width:%dpx;margin:%dpx auto;}.chart svg{width:100%%;height:auto;}", m.chartMaxWidth, m.cellPadY*2)
	fmt.Fprintf(&b, ".batch-header{border-bottom:3px solid %s;margin-bottom:%dpx;padding-bottom:%dpx;}", color, m.sectionGap, m.sectionPad)
	fmt.Fprintf(&b, ".entity-block{margin-bottom:%dpx;}", m.sectionGap)
	b.WriteString(".page-break{page-break-after:always;break-after:page;height:0;}")
	fmt.Fprintf(&b, ".doc-footer{margin-top:%dpx;padding-top:%dpx;border-top:1px solid #e5e7eb;font-size:%dpx;color:#9ca3af;text-align:center;}", m.sectionGap, m.sectionPad, m.smallFont)
	fmt.Fprintf(&b, ".print-controls{display:flex;gap:%dpx;justify-content:center;margin-top:%dpx;}", m.cellPadX, m.sectionPad)
	fmt.Fprintf(&b, ".print-controls button{background:%s;color:#ffffff;border:0;border-radius:4px;padding:%dpx %dpx;font-size:%dpx;cursor:pointer;}", color, m.cellPadY*2, m.cellPadX*2, m.baseFont)
	b.WriteString(".print-controls button.secondary{background:#6b7280;}")

	b.WriteString("@media print{")
	b.WriteString("body{background:#ffffff;}")
	fmt.Fprintf(&b, ".document{max-width:none;margin:0;padding:0;}.section{padding:%dpx;margin-bottom:%dpx;border-color:#d1d5db;}", m.sectionPad/2, m.sectionGap/2)
	b.WriteString(".no-print{display:none !important;}")
	b.WriteString(".role-badge,.status-badge{-webkit-print-color-adjust:exact;print-color-adjust:exact;}")
	b.WriteString(".entity-block{margin-bottom:0;}")
	b.WriteString("}")
	return template.CSS(b.String())
}
