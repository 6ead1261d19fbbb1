package document

import (
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/marketplace-reports/internal/document/format"
)

// Truncation limits per field family.
const (
	NotesLimit        = 150
	DescriptionLimit  = 100
	AddressLimit      = 80
	BusinessNameLimit = 50
)

type headerView struct {
	Company   string
	Title     string
	Reference string
	RoleLabel string
	Status    *Badge
	Period    string
	Generated string
}

// HeaderSection renders the per-appointment header: title, reference, role badge, status and generation time.
func HeaderSection(a *Appointment, role Role, company string, generated time.Time) template.HTML {
	if a == nil {
		return ""
	}
	badge := StatusBadge(a.Status)
	return execute("header", headerView{
		Company:   company,
		Title:     appointmentTitle(a),
		Reference: reference(a.ID),
		RoleLabel: role.Label(),
		Status:    &badge,
		Generated: format.Timestamp(generated),
	})
}

// AppointmentInfoSection renders scheduling and status details.
func AppointmentInfoSection(a *Appointment, _ Role) template.HTML {
	if a == nil {
		return ""
	}
	when := format.DateTime(a.ScheduledDate, a.ScheduledTime)
	badge := StatusBadge(a.Status)
	rows := []Row{
		{Label: "Appointment ID", Value: reference(a.ID)},
		{Label: "Status", Badge: &badge},
		{Label: "Date", Value: when.FullDate},
		{Label: "Time", Value: when.Time},
	}
	duration := a.DurationMinutes
	if duration <= 0 && a.Service != nil {
		duration = a.Service.DurationMinutes
	}
	if duration > 0 {
		rows = append(rows, Row{Label: "Duration", Value: format.Duration(duration)})
	}
	if a.CreatedAt != nil {
		rows = append(rows, Row{Label: "Booked On", Value: format.Timestamp(*a.CreatedAt)})
	}
	return renderSection(Section{Key: SectionAppointmentInfo, Title: "Appointment Information", Rows: rows})
}

// ServiceDetailsSection renders the booked service.
func ServiceDetailsSection(a *Appointment, _ Role) template.HTML {
	if a == nil || a.Service == nil {
		return ""
	}
	svc := a.Service
	rows := []Row{{Label: "Service", Value: format.ValueOr(svc.Name, format.NotSpecified)}}
	if svc.Category != "" {
		rows = append(rows, Row{Label: "Category", Value: svc.Category})
	}
	if svc.Description != "" {
		rows = append(rows, Row{Label: "Description", Value: format.Truncate(svc.Description, DescriptionLimit)})
	}
	if svc.DurationMinutes > 0 {
		rows = append(rows, Row{Label: "Standard Duration", Value: format.Duration(svc.DurationMinutes)})
	}
	if !svc.Price.IsZero() {
		rows = append(rows, Row{Label: "Listed Price", Value: format.Currency(svc.Price), ValueClass: "amount"})
	}
	return renderSection(Section{Key: SectionServiceDetails, Title: "Service Details", Rows: rows})
}

// ProviderDetailsSection renders the provider's public profile.
func ProviderDetailsSection(a *Appointment, _ Role) template.HTML {
	if a == nil || a.Provider == nil {
		return ""
	}
	p := a.Provider
	var rows []Row
	if p.BusinessName != "" {
		rows = append(rows, Row{Label: "Business", Value: format.Truncate(p.BusinessName, BusinessNameLimit)})
	}
	if p.FullName != "" {
		rows = append(rows, Row{Label: "Provider", Value: p.FullName})
	}
	if p.Email != "" {
		rows = append(rows, Row{Label: "Email", Value: p.Email})
	}
	if p.Phone != "" {
		rows = append(rows, Row{Label: "Phone", Value: p.Phone})
	}
	if p.Rating > 0 {
		rows = append(rows, Row{Label: "Rating", Value: fmt.Sprintf("%.1f / 5", p.Rating)})
	}
	if p.YearsExperience > 0 {
		rows = append(rows, Row{Label: "Experience", Value: pluralize(p.YearsExperience, "year", "years")})
	}
	if len(rows) == 0 {
		return ""
	}
	verified := "Not verified"
	if p.Verified {
		verified = "Verified"
	}
	rows = append(rows, Row{Label: "Verification", Value: verified})
	return renderSection(Section{Key: SectionProviderDetails, Title: "Provider Details", Rows: rows})
}

// ClientDetailsSection renders client-identifying details. Clients never see it.
func ClientDetailsSection(a *Appointment, role Role) template.HTML {
	if role == RoleClient || a == nil || a.Client == nil {
		return ""
	}
	rows := append([]Row{{Label: "Client ID", Value: reference(a.Client.ID)}}, personRows(a.Client)...)
	return renderSection(Section{Key: SectionClientDetails, Title: "Client Details", Rows: rows})
}

// ContactSection renders the viewer's own contact details. Only clients see it.
func ContactSection(a *Appointment, role Role) template.HTML {
	if role != RoleClient || a == nil || a.Client == nil {
		return ""
	}
	rows := personRows(a.Client)
	return renderSection(Section{Key: SectionContact, Title: "Your Contact Information", Rows: rows})
}

func personRows(c *Client) []Row {
	var rows []Row
	if c.FullName != "" {
		rows = append(rows, Row{Label: "Name", Value: c.FullName})
	}
	if c.Email != "" {
		rows = append(rows, Row{Label: "Email", Value: c.Email})
	}
	if c.Phone != "" {
		rows = append(rows, Row{Label: "Phone", Value: c.Phone})
	}
	if c.Address != "" {
		rows = append(rows, Row{Label: "Address", Value: format.Truncate(c.Address, AddressLimit)})
	}
	return rows
}

// LocationSection renders where the service takes place.
func LocationSection(a *Appointment, _ Role) template.HTML {
	if a == nil {
		return ""
	}
	var rows []Row
	if a.LocationType != "" {
		rows = append(rows, Row{Label: "Location Type", Value: format.StatusLabel(a.LocationType)})
	}
	if a.Address != "" {
		rows = append(rows, Row{Label: "Address", Value: format.Truncate(a.Address, AddressLimit)})
	}
	if locality := joinNonEmpty(", ", a.City, joinNonEmpty(" ", a.State, a.PostalCode)); locality != "" {
		rows = append(rows, Row{Label: "City", Value: locality})
	}
	var notes []Note
	if a.LocationNotes != "" {
		notes = append(notes, Note{Label: "Access Notes", Text: format.Truncate(a.LocationNotes, NotesLimit)})
	}
	return renderSection(Section{Key: SectionLocation, Title: "Location", Rows: rows, Notes: notes})
}

// PaymentSection renders the bill. The level of detail depends on the viewing role.
func PaymentSection(a *Appointment, role Role) template.HTML {
	if a == nil {
		return ""
	}
	var rows []Row
	if detailedPayment(role) {
		rows = paymentBreakdown(a)
	} else {
		rows = []Row{totalRow(a.TotalAmount)}
	}
	if detailedPayment(role) && a.PaymentStatus != "" {
		rows = append(rows, Row{Label: "Payment Status", Value: format.StatusLabel(a.PaymentStatus)})
	}
	if detailedPayment(role) && a.PaymentMethod != "" {
		rows = append(rows, Row{Label: "Payment Method", Value: format.StatusLabel(a.PaymentMethod)})
	}
	return renderSection(Section{Key: SectionPayment, Title: "Payment Information", Rows: rows})
}

// detailedPayment decides who sees the fee breakdown. Providers get the total only.
func detailedPayment(role Role) bool {
	return role != RoleProvider
}

func paymentBreakdown(a *Appointment) []Row {
	rows := []Row{amountRow("Base Price", a.BasePrice)}
	if a.TravelFee != nil {
		rows = append(rows, amountRow("Travel Fee", *a.TravelFee))
	}
	for _, charge := range a.AdditionalCharges {
		rows = append(rows, amountRow(format.ValueOr(charge.Description, "Additional Charge"), charge.Amount))
	}
	if a.TaxAmount != nil {
		rows = append(rows, amountRow("Tax", *a.TaxAmount))
	}
	if a.DiscountAmount != nil {
		rows = append(rows, Row{Label: "Discount", Value: format.Currency(a.DiscountAmount.Abs().Neg()), ValueClass: "amount discount"})
	}
	return append(rows, totalRow(a.TotalAmount))
}

func amountRow(label string, amount decimal.Decimal) Row {
	return Row{Label: label, Value: format.Currency(amount), ValueClass: "amount"}
}

func totalRow(amount decimal.Decimal) Row {
	return Row{Label: "Total", Value: format.Currency(amount), RowClass: "total-row", ValueClass: "amount"}
}

// NotesSection renders free-text notes. Admin notes are internal.
func NotesSection(a *Appointment, role Role) template.HTML {
	if a == nil {
		return ""
	}
	var notes []Note
	if a.ClientNotes != "" {
		notes = append(notes, Note{Label: "Client Notes", Text: format.Truncate(a.ClientNotes, NotesLimit)})
	}
	if a.ProviderNotes != "" {
		notes = append(notes, Note{Label: "Provider Notes", Text: format.Truncate(a.ProviderNotes, NotesLimit)})
	}
	if a.AdminNotes != "" && role.isInternal() {
		notes = append(notes, Note{Label: "Internal Notes", Text: format.Truncate(a.AdminNotes, NotesLimit)})
	}
	return renderSection(Section{Key: SectionNotes, Title: "Notes", Notes: notes})
}

// CancellationSection renders cancellation details for cancelled appointments.
func CancellationSection(a *Appointment, _ Role) template.HTML {
	if a == nil || (!a.Status.IsCancelled() && a.CancellationReason == "" && a.CancelledAt == nil) {
		return ""
	}
	var rows []Row
	switch a.Status {
	case StatusCancelledByClient:
		rows = append(rows, Row{Label: "Cancelled By", Value: "Client"})
	case StatusCancelledByProvider:
		rows = append(rows, Row{Label: "Cancelled By", Value: "Service Provider"})
	}
	if a.CancelledAt != nil {
		rows = append(rows, Row{Label: "Cancelled On", Value: format.Timestamp(*a.CancelledAt)})
	}
	var notes []Note
	if a.CancellationReason != "" {
		notes = append(notes, Note{Label: "Reason", Text: format.Truncate(a.CancellationReason, NotesLimit)})
	}
	return renderSection(Section{Key: SectionCancellation, Title: "Cancellation", Rows: rows, Notes: notes})
}

func appointmentTitle(a *Appointment) string {
	if a.Service != nil && a.Service.Name != "" {
		return a.Service.Name
	}
	return "Appointment Report"
}

func reference(id int64) string {
	return "#" + strconv.FormatInt(id, 10)
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
