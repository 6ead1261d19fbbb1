package document

import (
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleDeterministic(t *testing.T) {
	a := newTestAssembler()
	subjects := []Subject{
		SingleAppointment(sampleAppointment(42)),
		AppointmentBatch([]Appointment{sampleAppointment(1), sampleAppointment(2)}),
		AnalyticsReport(sampleAnalytics()),
	}
	for _, subject := range subjects {
		first, err := a.Assemble(subject, RoleAdmin, Options{})
		require.NoError(t, err)
		second, err := a.Assemble(subject, RoleAdmin, Options{})
		require.NoError(t, err)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Fatalf("%s output drifted (-first +second):\n%s", subject.Kind, diff)
		}
	}
}

func TestAssembleAppointmentLayout(t *testing.T) {
	doc, err := newTestAssembler().AssembleAppointment(sampleAppointment(42), RoleProvider, Options{})
	require.NoError(t, err)

	assert.Equal(t, "appointment-42.pdf", doc.Filename)
	assert.Equal(t, 1, doc.Entities)
	assert.Equal(t, fixedNow, doc.GeneratedAt)
	assert.True(t, strings.HasPrefix(doc.Markup, "<!DOCTYPE html>"))
	assert.Contains(t, doc.Markup, "#42")
	assert.Contains(t, doc.Markup, "Service Provider")
	assert.Contains(t, doc.Markup, "March 14, 2025 at 9:30 AM")
	assert.Contains(t, doc.Markup, "@media print")

	order := sectionOrder(doc.Markup)
	assert.Equal(t, []string{"appointmentInfo", "serviceDetails", "clientDetails", "location", "payment", "notes"}, order)
}

func TestAssembleRespectsSectionToggles(t *testing.T) {
	opts := Options{Sections: map[SectionName]bool{SectionPayment: false, SectionContact: true}}
	doc, err := newTestAssembler().AssembleAppointment(sampleAppointment(5), RoleAdmin, opts)
	require.NoError(t, err)

	order := sectionOrder(doc.Markup)
	assert.NotContains(t, order, "payment")
	assert.NotContains(t, order, "contact", "contact details stay gated to clients even when enabled")
	assert.Contains(t, order, "clientDetails")
}

func TestAssembleBatchOrdering(t *testing.T) {
	list := []Appointment{sampleAppointment(5), sampleAppointment(3), sampleAppointment(9)}
	doc, err := newTestAssembler().AssembleBatch(list, RoleStaff, Options{})
	require.NoError(t, err)

	ids := regexp.MustCompile(`data-appointment-id="(\d+)"`).FindAllStringSubmatch(doc.Markup, -1)
	require.Len(t, ids, 3)
	assert.Equal(t, []string{"5", "3", "9"}, []string{ids[0][1], ids[1][1], ids[2][1]})
	assert.Equal(t, 2, countOf(doc.Markup, `<div class="page-break"></div>`))
	assert.Contains(t, doc.Markup, "3 items")
	assert.Equal(t, 3, doc.Entities)
}

func TestAssembleBatchIsolatesEntities(t *testing.T) {
	withNotes := sampleAppointment(1)
	withoutNotes := sampleAppointment(2)
	withoutNotes.ClientNotes, withoutNotes.ProviderNotes, withoutNotes.AdminNotes = "", "", ""
	withoutNotes.Client = nil

	doc, err := newTestAssembler().AssembleBatch([]Appointment{withNotes, withoutNotes}, RoleAdmin, Options{})
	require.NoError(t, err)

	blocks := strings.Split(doc.Markup, `<article class="entity-block"`)
	require.Len(t, blocks, 3)
	assert.Contains(t, blocks[1], "section-notes")
	assert.NotContains(t, blocks[2], "section-notes")
	assert.NotContains(t, blocks[2], "Jordan Blake")
}

func TestAssembleEmptyBatch(t *testing.T) {
	doc, err := newTestAssembler().AssembleBatch(nil, RoleAdmin, Options{})
	require.NoError(t, err)

	assert.Contains(t, doc.Markup, "0 items")
	assert.NotContains(t, doc.Markup, "entity-block\"")
	assert.NotContains(t, doc.Markup, `class="page-break"`)
	assert.Contains(t, doc.Markup, "</html>")
	assert.Zero(t, doc.Entities)
}

func TestAssembleAnalytics(t *testing.T) {
	doc, err := newTestAssembler().AssembleAnalytics(sampleAnalytics(), RoleStaff, Options{
		Sections: map[SectionName]bool{SectionRevenue: false},
	})
	require.NoError(t, err)

	assert.Equal(t, "Q1 Marketplace Report", doc.Title)
	assert.Equal(t, []string{"summary", "growthChart", "categoryBreakdown", "topProviders"}, sectionOrder(doc.Markup))
	assert.Contains(t, doc.Markup, "Jan 1, 2025 to Mar 31, 2025")
}

func TestAssemblePrintControls(t *testing.T) {
	a := newTestAssembler()
	doc, err := a.AssembleAppointment(sampleAppointment(1), RoleClient, Options{})
	require.NoError(t, err)
	assert.Contains(t, doc.Markup, `class="print-controls no-print"`)

	off := false
	doc, err = a.AssembleAppointment(sampleAppointment(1), RoleClient, Options{ShowPrintControls: &off})
	require.NoError(t, err)
	assert.NotContains(t, doc.Markup, "print-controls no-print")
}

func TestAssembleErrors(t *testing.T) {
	a := newTestAssembler()

	_, err := a.Assemble(Subject{Kind: KindAppointment}, RoleAdmin, Options{})
	assert.ErrorIs(t, err, ErrEmptySubject)

	_, err = a.Assemble(Subject{Kind: "invoice"}, RoleAdmin, Options{})
	assert.ErrorIs(t, err, ErrEmptySubject)

	_, err = a.Assemble(SingleAppointment(sampleAppointment(1)), Role("guest"), Options{})
	assert.ErrorIs(t, err, ErrUnknownRole)

	bad := "blue"
	_, err = a.Assemble(SingleAppointment(sampleAppointment(1)), RoleAdmin, Options{PrimaryColor: &bad})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestAssembleUsesProfile(t *testing.T) {
	profile, err := ParseProfile([]byte("defaults:\n  company_name: Acme Home Services\nroles:\n  provider:\n    sections:\n      payment: false\n"))
	require.NoError(t, err)
	a := NewAssembler(nil, profile)

	doc, err := a.AssembleAppointment(sampleAppointment(1), RoleProvider, Options{})
	require.NoError(t, err)
	assert.Contains(t, doc.Markup, "Acme Home Services")
	assert.NotContains(t, sectionOrder(doc.Markup), "payment")

	name := "Override Inc"
	doc, err = a.AssembleAppointment(sampleAppointment(1), RoleClient, Options{CompanyName: &name})
	require.NoError(t, err)
	assert.Contains(t, doc.Markup, "Override Inc")
	assert.Contains(t, sectionOrder(doc.Markup), "payment")
}

func sectionOrder(markup string) []string {
	matches := regexp.MustCompile(`data-section="([A-Za-z]+)"`).FindAllStringSubmatch(markup, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}
