package document

import (
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"time"

	"github.com/odyssey-erp/marketplace-reports/internal/document/format"
)

type appointmentGenerator struct {
	name   SectionName
	render func(*Appointment, Role) template.HTML
}

type analyticsGenerator struct {
	name   SectionName
	render func(*AnalyticsDataset, Config) template.HTML
}

// Section order is fixed so identical input yields identical output.
var (
	appointmentSections = []appointmentGenerator{
		{SectionAppointmentInfo, AppointmentInfoSection},
		{SectionServiceDetails, ServiceDetailsSection},
		{SectionProviderDetails, ProviderDetailsSection},
		{SectionClientDetails, ClientDetailsSection},
		{SectionContact, ContactSection},
		{SectionLocation, LocationSection},
		{SectionPayment, PaymentSection},
		{SectionNotes, NotesSection},
		{SectionCancellation, CancellationSection},
	}
	analyticsSectionOrder = []analyticsGenerator{
		{SectionSummary, SummarySection},
		{SectionGrowth, GrowthSection},
		{SectionRevenue, RevenueSection},
		{SectionCategories, CategorySection},
		{SectionTopProviders, TopProvidersSection},
	}
)

type shellView struct {
	Title         string
	CSS           template.CSS
	Body          template.HTML
	Company       string
	Generated     string
	PrintControls bool
}

type entityView struct {
	ID       int64
	Header   template.HTML
	Sections []template.HTML
}

type batchHeaderView struct {
	Company   string
	Title     string
	Count     string
	RoleLabel string
	Generated string
}

// Assembler composes headers, sections, styles and footer into complete documents.
type Assembler struct {
	logger  *slog.Logger
	profile Profile
	now     func() time.Time
}

// NewAssembler constructs an Assembler. The profile supplies deployment defaults under caller options.
func NewAssembler(logger *slog.Logger, profile Profile) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{logger: logger, profile: profile, now: time.Now}
}

// WithNow overrides the clock used for generation timestamps.
func (a *Assembler) WithNow(now func() time.Time) {
	if now != nil {
		a.now = now
	}
}

// Resolve resolves the render configuration for role: role defaults, then profile, then opts.
func (a *Assembler) Resolve(role Role, opts Options) (Config, error) {
	return ResolveConfig(role, a.profile.For(role), opts)
}

// Assemble dispatches on the subject kind.
func (a *Assembler) Assemble(subject Subject, role Role, opts Options) (Document, error) {
	switch subject.Kind {
	case KindAppointment:
		if subject.Appointment == nil {
			return Document{}, ErrEmptySubject
		}
		return a.AssembleAppointment(*subject.Appointment, role, opts)
	case KindBatch:
		return a.AssembleBatch(subject.Batch, role, opts)
	case KindAnalytics:
		if subject.Analytics == nil {
			return Document{}, ErrEmptySubject
		}
		return a.AssembleAnalytics(*subject.Analytics, role, opts)
	default:
		return Document{}, fmt.Errorf("%w: kind %q", ErrEmptySubject, subject.Kind)
	}
}

// AssembleAppointment renders a single appointment report.
func (a *Assembler) AssembleAppointment(appt Appointment, role Role, opts Options) (Document, error) {
	cfg, err := a.Resolve(role, opts)
	if err != nil {
		return Document{}, err
	}
	generated := a.now()
	body := execute("entity", a.entity(&appt, role, cfg, generated))
	title := fmt.Sprintf("Appointment %s - %s", reference(appt.ID), appointmentTitle(&appt))
	return a.finish(Document{
		Title:       title,
		Filename:    fmt.Sprintf("appointment-%d.pdf", appt.ID),
		Kind:        KindAppointment,
		Role:        role,
		Config:      cfg,
		Entities:    1,
		GeneratedAt: generated,
	}, body), nil
}

// AssembleBatch renders every appointment as its own block, in input order, separated by page breaks.
func (a *Assembler) AssembleBatch(list []Appointment, role Role, opts Options) (Document, error) {
	cfg, err := a.Resolve(role, opts)
	if err != nil {
		return Document{}, err
	}
	generated := a.now()
	var body strings.Builder
	body.WriteString(string(execute("batchHeader", batchHeaderView{
		Company:   cfg.CompanyName,
		Title:     "Appointments Report",
		Count:     pluralize(len(list), "item", "items"),
		RoleLabel: role.Label(),
		Generated: format.Timestamp(generated),
	})))
	for i := range list {
		if i > 0 {
			body.WriteString(string(execute("pageBreak", nil)))
		}
		appt := list[i]
		body.WriteString(string(execute("entity", a.entity(&appt, role, cfg, generated))))
	}
	return a.finish(Document{
		Title:       fmt.Sprintf("Appointments Report (%s)", pluralize(len(list), "item", "items")),
		Filename:    fmt.Sprintf("appointments-%s.pdf", generated.Format("20060102-150405")),
		Kind:        KindBatch,
		Role:        role,
		Config:      cfg,
		Entities:    len(list),
		GeneratedAt: generated,
	}, template.HTML(body.String())), nil
}

// AssembleAnalytics renders a staff analytics report.
func (a *Assembler) AssembleAnalytics(data AnalyticsDataset, role Role, opts Options) (Document, error) {
	cfg, err := a.Resolve(role, opts)
	if err != nil {
		return Document{}, err
	}
	generated := a.now()
	var body strings.Builder
	body.WriteString(string(AnalyticsHeader(&data, role, cfg.CompanyName, generated)))
	for _, gen := range analyticsSectionOrder {
		if !cfg.Enabled(gen.name) {
			continue
		}
		fragment := gen.render(&data, cfg)
		if fragment == "" {
			a.skipped(gen.name, slog.String("report", analyticsTitle(&data)))
			continue
		}
		body.WriteString(string(fragment))
	}
	return a.finish(Document{
		Title:       analyticsTitle(&data),
		Filename:    fmt.Sprintf("analytics-%s.pdf", generated.Format("20060102")),
		Kind:        KindAnalytics,
		Role:        role,
		Config:      cfg,
		Entities:    1,
		GeneratedAt: generated,
	}, template.HTML(body.String())), nil
}

// entity builds one appointment block from scratch; nothing is shared between siblings.
func (a *Assembler) entity(appt *Appointment, role Role, cfg Config, generated time.Time) entityView {
	view := entityView{ID: appt.ID, Header: HeaderSection(appt, role, cfg.CompanyName, generated)}
	for _, gen := range appointmentSections {
		if !cfg.Enabled(gen.name) {
			continue
		}
		fragment := gen.render(appt, role)
		if fragment == "" {
			a.skipped(gen.name, slog.Int64("appointment_id", appt.ID))
			continue
		}
		view.Sections = append(view.Sections, fragment)
	}
	return view
}

func (a *Assembler) finish(doc Document, body template.HTML) Document {
	doc.Markup = string(execute("shell", shellView{
		Title:         doc.Title,
		CSS:           Styles(doc.Config),
		Body:          body,
		Company:       doc.Config.CompanyName,
		Generated:     format.Timestamp(doc.GeneratedAt),
		PrintControls: doc.Config.ShowPrintControls,
	}))
	a.logger.Debug("document assembled",
		slog.String("kind", string(doc.Kind)),
		slog.String("role", string(doc.Role)),
		slog.Int("entities", doc.Entities),
		slog.Int("bytes", len(doc.Markup)),
	)
	return doc
}

func (a *Assembler) skipped(name SectionName, attr slog.Attr) {
	a.logger.Debug("section skipped", slog.String("section", string(name)), attr, slog.Any("error", ErrMissingData))
}
