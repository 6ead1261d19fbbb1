package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/marketplace-reports/internal/document"
	"github.com/odyssey-erp/marketplace-reports/internal/exports"
	"github.com/odyssey-erp/marketplace-reports/internal/platform/db"
	"github.com/odyssey-erp/marketplace-reports/internal/sink"
	"github.com/odyssey-erp/marketplace-reports/report"
)

// NewAssembler loads the optional report profile and builds the document assembler.
func NewAssembler(cfg *Config, logger *slog.Logger) (*document.Assembler, error) {
	var profile document.Profile
	if cfg != nil && strings.TrimSpace(cfg.ReportProfilePath) != "" {
		loaded, err := document.LoadProfile(cfg.ReportProfilePath)
		if err != nil {
			return nil, fmt.Errorf("app: report profile: %w", err)
		}
		profile = loaded
		logger.Info("report profile loaded", slog.String("path", cfg.ReportProfilePath))
	}
	return document.NewAssembler(logger, profile), nil
}

// OpenLedger connects the export ledger when PG_DSN is set. The returned close func is never nil.
func OpenLedger(ctx context.Context, cfg *Config, logger *slog.Logger) (exports.Ledger, func(), error) {
	if cfg == nil || strings.TrimSpace(cfg.PGDSN) == "" {
		logger.Info("export ledger disabled")
		return nil, func() {}, nil
	}
	pool, err := db.New(ctx, cfg.PGDSN, db.WithMaxConns(4))
	if err != nil {
		return nil, func() {}, err
	}
	ledger := exports.NewPGLedger(pool)
	if err := ledger.Migrate(ctx); err != nil {
		pool.Close()
		return nil, func() {}, err
	}
	return ledger, pool.Close, nil
}

// SampleSource renders a fixed appointment for smoke-testing the conversion service.
func SampleSource(assembler *document.Assembler) report.SampleSource {
	return func(ctx context.Context) (string, report.PageOptions, error) {
		doc, err := assembler.AssembleAppointment(sampleAppointment(), document.RoleAdmin, document.Options{})
		if err != nil {
			return "", report.PageOptions{}, err
		}
		return doc.Markup, sink.PageOptionsFor(doc.Config), nil
	}
}

func sampleAppointment() document.Appointment {
	created := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	travel := decimal.RequireFromString("12.50")
	return document.Appointment{
		ID:              1001,
		Status:          document.StatusConfirmed,
		ScheduledDate:   "2025-01-15",
		ScheduledTime:   "10:00",
		DurationMinutes: 60,
		BasePrice:       decimal.RequireFromString("80.00"),
		TravelFee:       &travel,
		TotalAmount:     decimal.RequireFromString("92.50"),
		PaymentStatus:   "pending",
		Service: &document.Service{
			ID:       1,
			Name:     "Sample Service",
			Category: "General",
		},
		Provider:  &document.Provider{ID: 1, BusinessName: "Sample Provider", Verified: true},
		Client:    &document.Client{ID: 1, FullName: "Sample Client", Email: "client@example.com"},
		CreatedAt: &created,
	}
}
