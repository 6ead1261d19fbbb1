package document

import (
	"fmt"
	"html/template"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/marketplace-reports/internal/document/format"
	"github.com/odyssey-erp/marketplace-reports/internal/document/svg"
)

const (
	chartWidth  = 640
	chartHeight = 220
)

// AnalyticsHeader renders the header of an analytics report.
func AnalyticsHeader(d *AnalyticsDataset, role Role, company string, generated time.Time) template.HTML {
	if d == nil {
		return ""
	}
	return execute("header", headerView{
		Company:   company,
		Title:     analyticsTitle(d),
		RoleLabel: role.Label(),
		Period:    periodLabel(d.Period),
		Generated: format.Timestamp(generated),
	})
}

// SummarySection renders the headline metric grid.
func SummarySection(d *AnalyticsDataset, _ Config) template.HTML {
	if d == nil {
		return ""
	}
	s := d.Summary
	metrics := []Metric{
		{Label: "Total Appointments", Value: format.Count(s.TotalAppointments)},
		{Label: "Completed", Value: format.Count(s.CompletedAppointments)},
		{Label: "Cancelled", Value: format.Count(s.CancelledAppointments)},
		{Label: "Completion Rate", Value: format.Percent(s.CompletionRate())},
		{Label: "Total Revenue", Value: format.Currency(s.TotalRevenue)},
		{Label: "Platform Fees", Value: format.Currency(s.PlatformFees)},
		{Label: "Active Providers", Value: format.Count(s.ActiveProviders)},
		{Label: "New Clients", Value: format.Count(s.NewClients)},
	}
	if s.AverageRating > 0 {
		metrics = append(metrics, Metric{Label: "Average Rating", Value: fmt.Sprintf("%.1f / 5", s.AverageRating)})
	}
	return renderSection(Section{Key: SectionSummary, Title: "Summary", Metrics: metrics})
}

// GrowthSection renders appointment volume over time as a line chart.
func GrowthSection(d *AnalyticsDataset, cfg Config) template.HTML {
	if d == nil || len(d.Growth) == 0 {
		return ""
	}
	labels := make([]string, len(d.Growth))
	values := make([]float64, len(d.Growth))
	clients := 0
	for i, bucket := range d.Growth {
		labels[i] = bucket.Label
		values[i] = float64(bucket.Appointments)
		clients += bucket.NewClients
	}
	chart, err := svg.Line(chartWidth, chartHeight, values, labels, svg.LineOpts{
		Title:       "Appointment growth",
		Description: "Appointments booked per period",
		StrokeColor: cfg.PrimaryColor,
		ShowDots:    true,
	})
	if err != nil {
		return ""
	}
	return renderSection(Section{
		Key:   SectionGrowth,
		Title: "Appointment Growth",
		Chart: chart,
		Rows:  []Row{{Label: "New Clients in Period", Value: format.Count(clients)}},
	})
}

// RevenueSection renders gross revenue against platform fees.
func RevenueSection(d *AnalyticsDataset, cfg Config) template.HTML {
	if d == nil || len(d.Revenue) == 0 {
		return ""
	}
	labels := make([]string, len(d.Revenue))
	gross := make([]float64, len(d.Revenue))
	fees := make([]float64, len(d.Revenue))
	for i, bucket := range d.Revenue {
		labels[i] = bucket.Label
		gross[i] = bucket.Gross.InexactFloat64()
		fees[i] = bucket.PlatformFees.InexactFloat64()
	}
	chart, err := svg.Bars(chartWidth, chartHeight, gross, fees, labels, svg.BarOpts{
		Title:        "Revenue",
		Description:  "Gross revenue and platform fees per period",
		SeriesALabel: "Gross revenue",
		SeriesBLabel: "Platform fees",
		ColorA:       cfg.PrimaryColor,
		Tick: func(v float64) string {
			return format.Currency(decimal.NewFromFloat(v).Round(0))
		},
	})
	if err != nil {
		return ""
	}
	return renderSection(Section{Key: SectionRevenue, Title: "Revenue", Chart: chart})
}

// CategorySection renders appointments and revenue per service category.
func CategorySection(d *AnalyticsDataset, _ Config) template.HTML {
	if d == nil || len(d.Categories) == 0 {
		return ""
	}
	total := decimal.Zero
	for _, c := range d.Categories {
		total = total.Add(c.Revenue)
	}
	table := &Table{Columns: []Column{
		{Label: "Category"},
		{Label: "Appointments", Numeric: true},
		{Label: "Revenue", Numeric: true},
		{Label: "Share", Numeric: true},
	}}
	for _, c := range d.Categories {
		share := 0.0
		if !total.IsZero() {
			share = c.Revenue.Div(total).Mul(decimal.NewFromInt(100)).InexactFloat64()
		}
		table.Rows = append(table.Rows, []Cell{
			{Value: format.Truncate(c.Name, DescriptionLimit)},
			{Value: format.Count(c.Appointments), Numeric: true},
			{Value: format.Currency(c.Revenue), Numeric: true},
			{Value: format.Percent(share), Numeric: true},
		})
	}
	return renderSection(Section{Key: SectionCategories, Title: "Category Breakdown", Table: table})
}

// TopProvidersSection renders the provider ranking in input order.
func TopProvidersSection(d *AnalyticsDataset, _ Config) template.HTML {
	if d == nil || len(d.TopProviders) == 0 {
		return ""
	}
	table := &Table{Columns: []Column{
		{Label: "#", Numeric: true},
		{Label: "Provider"},
		{Label: "Appointments", Numeric: true},
		{Label: "Revenue", Numeric: true},
		{Label: "Rating", Numeric: true},
	}}
	for i, p := range d.TopProviders {
		rating := format.NotSpecified
		if p.Rating > 0 {
			rating = fmt.Sprintf("%.1f", p.Rating)
		}
		table.Rows = append(table.Rows, []Cell{
			{Value: strconv.Itoa(i + 1), Numeric: true},
			{Value: format.Truncate(p.Name, BusinessNameLimit)},
			{Value: format.Count(p.Appointments), Numeric: true},
			{Value: format.Currency(p.Revenue), Numeric: true},
			{Value: rating, Numeric: true},
		})
	}
	return renderSection(Section{Key: SectionTopProviders, Title: "Top Providers", Table: table})
}

func analyticsTitle(d *AnalyticsDataset) string {
	return format.ValueOr(d.Title, "Marketplace Analytics Report")
}

func periodLabel(p AnalyticsPeriod) string {
	if p.Start == "" && p.End == "" {
		return ""
	}
	return format.Date(p.Start) + " to " + format.Date(p.End)
}
