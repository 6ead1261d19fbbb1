package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/marketplace-reports/internal/document"
)

type input struct {
	Role         string                     `json:"role"`
	Appointment  *document.Appointment      `json:"appointment,omitempty"`
	Appointments []document.Appointment     `json:"appointments,omitempty"`
	Analytics    *document.AnalyticsDataset `json:"analytics,omitempty"`
}

var (
	services = []document.Service{
		{ID: 1, Name: "Deep House Cleaning", Category: "Cleaning", DurationMinutes: 120, Price: decimal.RequireFromString("140.00")},
		{ID: 2, Name: "Lawn Mowing", Category: "Garden", DurationMinutes: 60, Price: decimal.RequireFromString("55.00")},
		{ID: 3, Name: "Leaky Faucet Repair", Category: "Plumbing", DurationMinutes: 45, Price: decimal.RequireFromString("85.00")},
		{ID: 4, Name: "Dog Walking", Category: "Pets", DurationMinutes: 30, Price: decimal.RequireFromString("20.00")},
	}
	providers = []document.Provider{
		{ID: 1, BusinessName: "Sparkle & Shine Co.", FullName: "Dana Reyes", Email: "dana@sparkle.example", Rating: 4.8, YearsExperience: 6, Verified: true},
		{ID: 2, BusinessName: "Green Thumb", FullName: "Omar Haddad", Email: "omar@greenthumb.example", Rating: 4.5, YearsExperience: 3},
		{ID: 3, FullName: "Priya Natarajan", Email: "priya@example.com", Rating: 4.9, YearsExperience: 11, Verified: true},
	}
	clients = []document.Client{
		{ID: 1, FullName: "Jordan Blake", Email: "jordan@example.com", Phone: "+1 555 0199", Address: "42 Elm Street"},
		{ID: 2, FullName: "Sam Okafor", Email: "sam@example.com"},
		{ID: 3, FullName: "Lee Min-jun", Email: "lee@example.com", Phone: "+1 555 0142"},
	}
	statuses = []document.Status{
		document.StatusPending, document.StatusConfirmed, document.StatusInProgress,
		document.StatusCompleted, document.StatusCancelledByClient,
	}
)

func main() {
	out := flag.String("out", "var/seed", "directory receiving the generated input files")
	count := flag.Int("count", 25, "appointments in the batch input")
	seed := flag.Int64("seed", 7, "random seed")
	flag.Parse()

	if err := os.MkdirAll(*out, 0o755); err != nil {
		log.Fatalf("create output dir: %v", err)
	}
	rng := rand.New(rand.NewSource(*seed))
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

	batch := make([]document.Appointment, 0, *count)
	for i := 0; i < *count; i++ {
		batch = append(batch, appointment(rng, int64(1000+i), start))
	}

	fmt.Println("→ Writing single appointment...")
	single := batch[0]
	write(*out, "appointment.json", input{Role: "client", Appointment: &single})
	fmt.Println("→ Writing batch...")
	write(*out, "batch.json", input{Role: "admin", Appointments: batch})
	fmt.Println("→ Writing analytics...")
	data := analytics(batch)
	write(*out, "analytics.json", input{Role: "staff", Analytics: &data})
	fmt.Println("✓ Seed inputs ready in", *out)
}

func appointment(rng *rand.Rand, id int64, start time.Time) document.Appointment {
	svc := services[rng.Intn(len(services))]
	prov := providers[rng.Intn(len(providers))]
	cli := clients[rng.Intn(len(clients))]
	status := statuses[rng.Intn(len(statuses))]
	day := start.AddDate(0, 0, rng.Intn(84))
	created := day.AddDate(0, 0, -3)

	total := svc.Price
	a := document.Appointment{
		ID:              id,
		Status:          status,
		ScheduledDate:   day.Format("2006-01-02"),
		ScheduledTime:   fmt.Sprintf("%02d:%02d", 8+rng.Intn(10), 15*rng.Intn(4)),
		DurationMinutes: svc.DurationMinutes,
		BasePrice:       svc.Price,
		PaymentStatus:   "pending",
		Service:         &svc,
		Provider:        &prov,
		Client:          &cli,
		LocationType:    "client_location",
		Address:         cli.Address,
		City:            "Springfield",
		State:           "IL",
		CreatedAt:       &created,
	}
	if rng.Intn(2) == 0 {
		fee := decimal.NewFromInt(int64(5 + rng.Intn(20)))
		a.TravelFee = &fee
		total = total.Add(fee)
	}
	tax := total.Mul(decimal.RequireFromString("0.08")).Round(2)
	a.TaxAmount = &tax
	a.TotalAmount = total.Add(tax)
	switch status {
	case document.StatusCompleted:
		a.PaymentStatus = "paid"
		a.PaymentMethod = "credit_card"
	case document.StatusCancelledByClient:
		cancelled := day.AddDate(0, 0, -1)
		a.CancelledAt = &cancelled
		a.CancellationReason = "Schedule conflict"
		a.PaymentStatus = "refunded"
	}
	return a
}

func analytics(batch []document.Appointment) document.AnalyticsDataset {
	data := document.AnalyticsDataset{
		Title:  "Marketplace Overview",
		Period: document.AnalyticsPeriod{Start: "2025-01-06", End: "2025-03-30"},
	}
	categories := map[string]*document.CategoryBreakdown{}
	months := map[string]*document.RevenueBucket{}
	growth := map[string]*document.GrowthBucket{}
	var order []string
	for _, a := range batch {
		data.Summary.TotalAppointments++
		month := a.ScheduledDate[:7]
		if _, ok := months[month]; !ok {
			months[month] = &document.RevenueBucket{Label: month}
			growth[month] = &document.GrowthBucket{Label: month}
			order = append(order, month)
		}
		growth[month].Appointments++
		switch {
		case a.Status == document.StatusCompleted:
			data.Summary.CompletedAppointments++
			fee := a.TotalAmount.Mul(decimal.RequireFromString("0.1")).Round(2)
			data.Summary.TotalRevenue = data.Summary.TotalRevenue.Add(a.TotalAmount)
			data.Summary.PlatformFees = data.Summary.PlatformFees.Add(fee)
			months[month].Gross = months[month].Gross.Add(a.TotalAmount)
			months[month].PlatformFees = months[month].PlatformFees.Add(fee)
		case a.Status.IsCancelled():
			data.Summary.CancelledAppointments++
		}
		c, ok := categories[a.Service.Category]
		if !ok {
			c = &document.CategoryBreakdown{Name: a.Service.Category}
			categories[a.Service.Category] = c
		}
		c.Appointments++
		c.Revenue = c.Revenue.Add(a.TotalAmount)
	}
	for _, m := range order {
		data.Revenue = append(data.Revenue, *months[m])
		data.Growth = append(data.Growth, *growth[m])
	}
	for _, s := range services {
		if c, ok := categories[s.Category]; ok {
			data.Categories = append(data.Categories, *c)
		}
	}
	for _, p := range providers {
		name := p.BusinessName
		if name == "" {
			name = p.FullName
		}
		data.TopProviders = append(data.TopProviders, document.ProviderPerformance{Name: name, Rating: p.Rating})
	}
	data.Summary.ActiveProviders = len(providers)
	data.Summary.NewClients = len(clients)
	data.Summary.AverageRating = 4.7
	return data
}

func write(dir, name string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("encode %s: %v", name, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		log.Fatalf("write %s: %v", name, err)
	}
}
