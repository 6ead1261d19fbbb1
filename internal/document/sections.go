package document

import (
	"bytes"
	"html/template"
	"log/slog"

	"github.com/odyssey-erp/marketplace-reports/internal/document/format"
	"github.com/odyssey-erp/marketplace-reports/web"
)

// Badge is a styled status pill.
type Badge struct {
	Label string
	Class string
}

// Row is one label/value line of a detail table.
type Row struct {
	Label      string
	Value      string
	RowClass   string
	ValueClass string
	Badge      *Badge
}

// Note is a free-text paragraph with a caption.
type Note struct {
	Label string
	Text  string
}

// Metric is a headline number in the analytics summary grid.
type Metric struct {
	Label string
	Value string
}

// Column describes a data table column.
type Column struct {
	Label   string
	Numeric bool
}

// Cell is one data table value.
type Cell struct {
	Value   string
	Numeric bool
}

// Table is a tabular block inside a section.
type Table struct {
	Columns []Column
	Rows    [][]Cell
}

// Section is the view model every generator renders through the shared template.
type Section struct {
	Key     SectionName
	Title   string
	Rows    []Row
	Notes   []Note
	Metrics []Metric
	Table   *Table
	Chart   template.HTML
}

// Empty reports whether the section has nothing to show.
func (s Section) Empty() bool {
	return len(s.Rows) == 0 && len(s.Notes) == 0 && len(s.Metrics) == 0 && s.Table == nil && s.Chart == ""
}

var templates = template.Must(template.New("reports").ParseFS(web.Templates, "templates/reports/*.html"))

// renderSection executes the section template; empty sections render as nothing.
func renderSection(s Section) template.HTML {
	if s.Empty() {
		return ""
	}
	return execute("section", s)
}

func execute(name string, data any) template.HTML {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Default().Error("render template", slog.String("template", name), slog.Any("error", err))
		return ""
	}
	return template.HTML(buf.String())
}

// StatusBadge maps an appointment status to its badge. Unknown statuses keep their label with neutral styling.
func StatusBadge(s Status) Badge {
	label := format.StatusLabel(string(s))
	switch s {
	case StatusPending:
		return Badge{Label: label, Class: "status-pending"}
	case StatusConfirmed:
		return Badge{Label: label, Class: "status-confirmed"}
	case StatusInProgress:
		return Badge{Label: label, Class: "status-in-progress"}
	case StatusCompleted:
		return Badge{Label: label, Class: "status-completed"}
	case StatusCancelled, StatusCancelledByClient, StatusCancelledByProvider:
		return Badge{Label: label, Class: "status-cancelled"}
	case StatusNoShow:
		return Badge{Label: label, Class: "status-no-show"}
	case StatusRescheduled:
		return Badge{Label: label, Class: "status-rescheduled"}
	default:
		return Badge{Label: label, Class: "status-default"}
	}
}
