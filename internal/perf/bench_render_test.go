package perf

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/marketplace-reports/internal/document"
	"github.com/odyssey-erp/marketplace-reports/internal/sink"
)

func newAssembler() *document.Assembler {
	return document.NewAssembler(slog.New(slog.NewTextHandler(io.Discard, nil)), document.Profile{})
}

func batch(n int) []document.Appointment {
	out := make([]document.Appointment, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, document.Appointment{
			ID:            int64(i + 1),
			Status:        document.StatusCompleted,
			ScheduledDate: "2025-02-11",
			ScheduledTime: "09:45",
			BasePrice:     decimal.RequireFromString("64.00"),
			TotalAmount:   decimal.RequireFromString("69.12"),
			PaymentStatus: "paid",
			Service:       &document.Service{Name: "Gutter Cleaning", Category: "Exterior"},
			Provider:      &document.Provider{BusinessName: "Clear Flow", Rating: 4.6},
			Client:        &document.Client{FullName: "Riley Chen", Email: "riley@example.com"},
			ClientNotes:   "Gate code 4411.",
		})
	}
	return out
}

func TestRenderLatencyTargets(t *testing.T) {
	if testing.Short() {
		t.Skip("latency targets skipped in short mode")
	}
	assembler := newAssembler()
	single := batch(1)[0]
	large := batch(200)

	scenarios := []struct {
		name      string
		run       func() error
		threshold time.Duration
	}{
		{
			name: "single",
			run: func() error {
				_, err := assembler.AssembleAppointment(single, document.RoleClient, document.Options{})
				return err
			},
			threshold: 250 * time.Millisecond,
		},
		{
			name: "batch-200",
			run: func() error {
				_, err := assembler.AssembleBatch(large, document.RoleAdmin, document.Options{})
				return err
			},
			threshold: 2 * time.Second,
		},
	}

	for _, scenario := range scenarios {
		samples := make([]time.Duration, 0, 10)
		for i := 0; i < 10; i++ {
			start := time.Now()
			if err := scenario.run(); err != nil {
				t.Fatalf("%s: assemble: %v", scenario.name, err)
			}
			samples = append(samples, time.Since(start))
		}
		p95 := percentile95(samples)
		if p95 > scenario.threshold {
			t.Fatalf("%s latency regression: p95=%s threshold=%s", scenario.name, p95, scenario.threshold)
		}
	}
}

func BenchmarkAssembleAppointment(b *testing.B) {
	assembler := newAssembler()
	appt := batch(1)[0]
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := assembler.AssembleAppointment(appt, document.RoleProvider, document.Options{}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAssembleBatch(b *testing.B) {
	assembler := newAssembler()
	list := batch(200)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := assembler.AssembleBatch(list, document.RoleAdmin, document.Options{}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkPaginate(b *testing.B) {
	img := image.NewRGBA(image.Rect(0, 0, 1200, 6000))
	for y := 0; y < 6000; y += 40 {
		for x := 0; x < 1200; x++ {
			img.Set(x, y, color.Black)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		b.Fatal(err)
	}
	spec := sink.PageSpec{WidthMM: 210, HeightMM: 297, MarginMM: 15}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := sink.Paginate(buf.Bytes(), spec); err != nil {
			b.Fatal(err)
		}
	}
}

func percentile95(samples []time.Duration) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	index := int(float64(len(sorted)-1) * 0.95)
	if index < 0 {
		index = 0
	}
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}
