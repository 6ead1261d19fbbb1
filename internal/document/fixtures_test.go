package document

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func decPtr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

func sampleAppointment(id int64) Appointment {
	created := time.Date(2025, 3, 1, 15, 4, 0, 0, time.UTC)
	return Appointment{
		ID:              id,
		Status:          StatusConfirmed,
		ScheduledDate:   "2025-03-20",
		ScheduledTime:   "14:30",
		DurationMinutes: 90,
		BasePrice:       dec("120.00"),
		TravelFee:       decPtr("15.50"),
		AdditionalCharges: []Charge{
			{Description: "Materials", Amount: dec("22.25")},
		},
		TaxAmount:      decPtr("12.60"),
		DiscountAmount: decPtr("10.00"),
		TotalAmount:    dec("160.35"),
		PaymentStatus:  "paid",
		PaymentMethod:  "credit_card",
		Service: &Service{
			ID:              7,
			Name:            "Deep House Cleaning",
			Category:        "Cleaning",
			Description:     "Full interior clean including kitchen and bathrooms",
			DurationMinutes: 90,
			Price:           dec("120.00"),
		},
		Provider: &Provider{
			ID:              3,
			BusinessName:    "Sparkle & Shine Co.",
			FullName:        "Dana Reyes",
			Email:           "dana@sparkle.example",
			Phone:           "+1 555 0100",
			Rating:          4.8,
			YearsExperience: 6,
			Verified:        true,
		},
		Client: &Client{
			ID:       11,
			FullName: "Jordan Blake",
			Email:    "jordan@example.com",
			Phone:    "+1 555 0199",
			Address:  "42 Elm Street",
		},
		ClientNotes:   "Please use the side door.",
		ProviderNotes: "Bring ladder.",
		AdminNotes:    "VIP customer",
		LocationType:  "client_location",
		Address:       "42 Elm Street",
		City:          "Springfield",
		State:         "IL",
		PostalCode:    "62704",
		CreatedAt:     &created,
	}
}

func sampleAnalytics() AnalyticsDataset {
	return AnalyticsDataset{
		Title:  "Q1 Marketplace Report",
		Period: AnalyticsPeriod{Start: "2025-01-01", End: "2025-03-31"},
		Summary: AnalyticsSummary{
			TotalAppointments:     1200,
			CompletedAppointments: 1050,
			CancelledAppointments: 80,
			TotalRevenue:          dec("98765.40"),
			PlatformFees:          dec("9876.54"),
			ActiveProviders:       85,
			NewClients:            240,
			AverageRating:         4.6,
		},
		Growth: []GrowthBucket{
			{Label: "Jan", Appointments: 350, NewClients: 70},
			{Label: "Feb", Appointments: 400, NewClients: 80},
			{Label: "Mar", Appointments: 450, NewClients: 90},
		},
		Revenue: []RevenueBucket{
			{Label: "Jan", Gross: dec("30000"), PlatformFees: dec("3000")},
			{Label: "Feb", Gross: dec("32000"), PlatformFees: dec("3200")},
			{Label: "Mar", Gross: dec("36765.40"), PlatformFees: dec("3676.54")},
		},
		Categories: []CategoryBreakdown{
			{Name: "Cleaning", Appointments: 700, Revenue: dec("60000")},
			{Name: "Plumbing", Appointments: 500, Revenue: dec("40000")},
		},
		TopProviders: []ProviderPerformance{
			{Name: "Sparkle & Shine Co.", Appointments: 120, Revenue: dec("9800"), Rating: 4.9},
			{Name: "Pipe Pros", Appointments: 95, Revenue: dec("8700"), Rating: 4.7},
		},
	}
}

func newTestAssembler() *Assembler {
	a := NewAssembler(nil, Profile{})
	a.WithNow(func() time.Time { return fixedNow })
	return a
}

func countOf(s, sub string) int {
	return strings.Count(s, sub)
}
