package document

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Role identifies who is viewing a document.
type Role string

const (
	RoleClient   Role = "client"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
	RoleStaff    Role = "staff"
)

// Roles lists the supported viewing roles.
var Roles = []Role{RoleClient, RoleProvider, RoleAdmin, RoleStaff}

// ParseRole normalises a role string.
func ParseRole(v string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(v)))
	switch role {
	case RoleClient, RoleProvider, RoleAdmin, RoleStaff:
		return role, nil
	default:
		return "", ErrUnknownRole
	}
}

// Label returns the badge text for the role.
func (r Role) Label() string {
	switch r {
	case RoleClient:
		return "Client"
	case RoleProvider:
		return "Service Provider"
	case RoleAdmin:
		return "Administrator"
	case RoleStaff:
		return "Staff"
	default:
		return string(r)
	}
}

func (r Role) isInternal() bool {
	return r == RoleAdmin || r == RoleStaff
}

// Status captures the appointment lifecycle state as reported by the marketplace API.
type Status string

const (
	StatusPending             Status = "pending"
	StatusConfirmed           Status = "confirmed"
	StatusInProgress          Status = "in_progress"
	StatusCompleted           Status = "completed"
	StatusCancelled           Status = "cancelled"
	StatusCancelledByClient   Status = "cancelled_by_client"
	StatusCancelledByProvider Status = "cancelled_by_provider"
	StatusNoShow              Status = "no_show"
	StatusRescheduled         Status = "rescheduled"
)

// IsCancelled reports whether the status is one of the cancellation variants.
func (s Status) IsCancelled() bool {
	switch s {
	case StatusCancelled, StatusCancelledByClient, StatusCancelledByProvider:
		return true
	}
	return false
}

// Charge is an additional line on the appointment bill.
type Charge struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// Service describes the booked service.
type Service struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	Description     string          `json:"description"`
	DurationMinutes int             `json:"duration_minutes"`
	Price           decimal.Decimal `json:"price"`
}

// Provider describes the service provider on the appointment.
type Provider struct {
	ID              int64   `json:"id"`
	BusinessName    string  `json:"business_name"`
	FullName        string  `json:"full_name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	Rating          float64 `json:"rating"`
	YearsExperience int     `json:"years_experience"`
	Verified        bool    `json:"verified"`
}

// Client describes the customer who booked the appointment.
type Client struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// Appointment is a booking as returned by the marketplace API.
type Appointment struct {
	ID                 int64            `json:"id"`
	Status             Status           `json:"status"`
	ScheduledDate      string           `json:"scheduled_date"`
	ScheduledTime      string           `json:"scheduled_time"`
	DurationMinutes    int              `json:"duration_minutes"`
	BasePrice          decimal.Decimal  `json:"base_price"`
	TravelFee          *decimal.Decimal `json:"travel_fee,omitempty"`
	AdditionalCharges  []Charge         `json:"additional_charges,omitempty"`
	TaxAmount          *decimal.Decimal `json:"tax_amount,omitempty"`
	DiscountAmount     *decimal.Decimal `json:"discount_amount,omitempty"`
	TotalAmount        decimal.Decimal  `json:"total_amount"`
	PaymentStatus      string           `json:"payment_status,omitempty"`
	PaymentMethod      string           `json:"payment_method,omitempty"`
	Service            *Service         `json:"service,omitempty"`
	Provider           *Provider        `json:"provider,omitempty"`
	Client             *Client          `json:"client,omitempty"`
	ClientNotes        string           `json:"client_notes,omitempty"`
	ProviderNotes      string           `json:"provider_notes,omitempty"`
	AdminNotes         string           `json:"admin_notes,omitempty"`
	LocationType       string           `json:"location_type,omitempty"`
	Address            string           `json:"address,omitempty"`
	City               string           `json:"city,omitempty"`
	State              string           `json:"state,omitempty"`
	PostalCode         string           `json:"postal_code,omitempty"`
	LocationNotes      string           `json:"location_notes,omitempty"`
	CancellationReason string           `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time       `json:"cancelled_at,omitempty"`
	CreatedAt          *time.Time       `json:"created_at,omitempty"`
}

// AnalyticsPeriod bounds the analytics report.
type AnalyticsPeriod struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// AnalyticsSummary holds pre-aggregated headline counts.
type AnalyticsSummary struct {
	TotalAppointments     int             `json:"total_appointments"`
	CompletedAppointments int             `json:"completed_appointments"`
	CancelledAppointments int             `json:"cancelled_appointments"`
	TotalRevenue          decimal.Decimal `json:"total_revenue"`
	PlatformFees          decimal.Decimal `json:"platform_fees"`
	ActiveProviders       int             `json:"active_providers"`
	NewClients            int             `json:"new_clients"`
	AverageRating         float64         `json:"average_rating"`
}

// CompletionRate returns completed appointments as a percentage of the total.
func (s AnalyticsSummary) CompletionRate() float64 {
	if s.TotalAppointments <= 0 {
		return 0
	}
	return float64(s.CompletedAppointments) / float64(s.TotalAppointments) * 100
}

// GrowthBucket is one time-series bucket of marketplace growth.
type GrowthBucket struct {
	Label        string `json:"label"`
	Appointments int    `json:"appointments"`
	NewClients   int    `json:"new_clients"`
}

// RevenueBucket is one time-series bucket of revenue.
type RevenueBucket struct {
	Label        string          `json:"label"`
	Gross        decimal.Decimal `json:"gross"`
	PlatformFees decimal.Decimal `json:"platform_fees"`
}

// CategoryBreakdown aggregates appointments per service category.
type CategoryBreakdown struct {
	Name         string          `json:"name"`
	Appointments int             `json:"appointments"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// ProviderPerformance ranks providers in the analytics report.
type ProviderPerformance struct {
	Name         string          `json:"name"`
	Appointments int             `json:"appointments"`
	Revenue      decimal.Decimal `json:"revenue"`
	Rating       float64         `json:"rating"`
}

// AnalyticsDataset is the pre-aggregated staff analytics payload.
type AnalyticsDataset struct {
	Title        string                `json:"title"`
	Period       AnalyticsPeriod       `json:"period"`
	Summary      AnalyticsSummary      `json:"summary"`
	Growth       []GrowthBucket        `json:"growth,omitempty"`
	Revenue      []RevenueBucket       `json:"revenue,omitempty"`
	Categories   []CategoryBreakdown   `json:"categories,omitempty"`
	TopProviders []ProviderPerformance `json:"top_providers,omitempty"`
}

// SubjectKind distinguishes what a Subject carries.
type SubjectKind string

const (
	KindAppointment SubjectKind = "appointment"
	KindBatch       SubjectKind = "batch"
	KindAnalytics   SubjectKind = "analytics"
)

// Subject is the input of one assembly run: a single appointment, a batch or an analytics dataset.
type Subject struct {
	Kind        SubjectKind
	Appointment *Appointment
	Batch       []Appointment
	Analytics   *AnalyticsDataset
}

// SingleAppointment wraps one appointment.
func SingleAppointment(a Appointment) Subject {
	return Subject{Kind: KindAppointment, Appointment: &a}
}

// AppointmentBatch wraps a list of appointments; an empty list is valid.
func AppointmentBatch(list []Appointment) Subject {
	return Subject{Kind: KindBatch, Batch: list}
}

// AnalyticsReport wraps an analytics dataset.
func AnalyticsReport(d AnalyticsDataset) Subject {
	return Subject{Kind: KindAnalytics, Analytics: &d}
}

// Document is the output of the assembler.
type Document struct {
	Title       string
	Filename    string
	Markup      string
	Kind        SubjectKind
	Role        Role
	Config      Config
	Entities    int
	GeneratedAt time.Time
}
