package document

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// SectionName identifies a configurable document section.
type SectionName string

// Appointment sections.
const (
	SectionAppointmentInfo SectionName = "appointmentInfo"
	SectionServiceDetails  SectionName = "serviceDetails"
	SectionProviderDetails SectionName = "providerDetails"
	SectionClientDetails   SectionName = "clientDetails"
	SectionContact         SectionName = "contact"
	SectionLocation        SectionName = "location"
	SectionPayment         SectionName = "payment"
	SectionNotes           SectionName = "notes"
	SectionCancellation    SectionName = "cancellation"
)

// Analytics sections.
const (
	SectionSummary      SectionName = "summary"
	SectionGrowth       SectionName = "growthChart"
	SectionRevenue      SectionName = "revenueChart"
	SectionCategories   SectionName = "categoryBreakdown"
	SectionTopProviders SectionName = "topProviders"
)

// PageSize is a physical page format.
type PageSize string

const (
	PageA3     PageSize = "A3"
	PageA4     PageSize = "A4"
	PageA5     PageSize = "A5"
	PageLetter PageSize = "Letter"
	PageLegal  PageSize = "Legal"
)

// Dimensions returns portrait width and height in millimetres.
func (p PageSize) Dimensions() (float64, float64) {
	switch p {
	case PageA3:
		return 297, 420
	case PageA5:
		return 148, 210
	case PageLetter:
		return 215.9, 279.4
	case PageLegal:
		return 215.9, 355.6
	default:
		return 210, 297
	}
}

// Defaults shared by every role.
const (
	DefaultPrimaryColor = "#2563eb"
	DefaultCompanyName  = "ServiceHub Marketplace"
	DefaultMargins      = "15mm"
)

// Config is the resolved render configuration used for one assembly run.
type Config struct {
	PrimaryColor      string `validate:"required,hexcolor"`
	CompanyName       string `validate:"required,max=120"`
	Compact           bool
	PageSize          PageSize `validate:"required,oneof=A3 A4 A5 Letter Legal"`
	Margins           string   `validate:"required,csslength"`
	ShowPrintControls bool
	Sections          map[SectionName]bool
}

// Enabled reports whether a section is switched on.
func (c Config) Enabled(name SectionName) bool {
	return c.Sections[name]
}

// MarginMM converts the configured margin to millimetres.
func (c Config) MarginMM() float64 {
	m := lengthPattern.FindStringSubmatch(c.Margins)
	if m == nil {
		return 15
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 15
	}
	switch m[2] {
	case "cm":
		return v * 10
	case "in":
		return v * 25.4
	case "pt":
		return v * 25.4 / 72
	case "px":
		return v * 25.4 / 96
	default:
		return v
	}
}

// Options carries caller overrides; nil fields keep the underlying value.
type Options struct {
	PrimaryColor      *string              `json:"primaryColor,omitempty" yaml:"primary_color"`
	CompanyName       *string              `json:"companyName,omitempty" yaml:"company_name"`
	Compact           *bool                `json:"compact,omitempty" yaml:"compact"`
	PageSize          *PageSize            `json:"pageSize,omitempty" yaml:"page_size"`
	Margins           *string              `json:"margins,omitempty" yaml:"margins"`
	ShowPrintControls *bool                `json:"showPrintControls,omitempty" yaml:"show_print_controls"`
	Sections          map[SectionName]bool `json:"sections,omitempty" yaml:"sections"`
}

// Merge returns o overlaid with over.
func (o Options) Merge(over Options) Options {
	out := o
	if over.PrimaryColor != nil {
		out.PrimaryColor = over.PrimaryColor
	}
	if over.CompanyName != nil {
		out.CompanyName = over.CompanyName
	}
	if over.Compact != nil {
		out.Compact = over.Compact
	}
	if over.PageSize != nil {
		out.PageSize = over.PageSize
	}
	if over.Margins != nil {
		out.Margins = over.Margins
	}
	if over.ShowPrintControls != nil {
		out.ShowPrintControls = over.ShowPrintControls
	}
	if len(over.Sections) > 0 {
		sections := make(map[SectionName]bool, len(o.Sections)+len(over.Sections))
		maps.Copy(sections, o.Sections)
		maps.Copy(sections, over.Sections)
		out.Sections = sections
	}
	return out
}

var roleSectionDefaults = map[Role]map[SectionName]bool{
	RoleClient: {
		SectionAppointmentInfo: true,
		SectionServiceDetails:  true,
		SectionProviderDetails: true,
		SectionClientDetails:   false,
		SectionContact:         true,
		SectionLocation:        true,
		SectionPayment:         true,
		SectionNotes:           true,
		SectionCancellation:    true,
	},
	RoleProvider: {
		SectionAppointmentInfo: true,
		SectionServiceDetails:  true,
		SectionProviderDetails: false,
		SectionClientDetails:   true,
		SectionContact:         false,
		SectionLocation:        true,
		SectionPayment:         true,
		SectionNotes:           true,
		SectionCancellation:    true,
	},
	RoleAdmin: {
		SectionAppointmentInfo: true,
		SectionServiceDetails:  true,
		SectionProviderDetails: true,
		SectionClientDetails:   true,
		SectionContact:         false,
		SectionLocation:        true,
		SectionPayment:         true,
		SectionNotes:           true,
		SectionCancellation:    true,
	},
	RoleStaff: {
		SectionAppointmentInfo: true,
		SectionServiceDetails:  true,
		SectionProviderDetails: true,
		SectionClientDetails:   true,
		SectionContact:         false,
		SectionLocation:        true,
		SectionPayment:         true,
		SectionNotes:           true,
		SectionCancellation:    true,
	},
}

var analyticsSections = []SectionName{SectionSummary, SectionGrowth, SectionRevenue, SectionCategories, SectionTopProviders}

// DefaultConfig returns the role-dependent defaults before any override.
func DefaultConfig(role Role) Config {
	sections := make(map[SectionName]bool, len(roleSectionDefaults[RoleAdmin])+len(analyticsSections))
	maps.Copy(sections, roleSectionDefaults[role])
	for _, name := range analyticsSections {
		sections[name] = true
	}
	return Config{
		PrimaryColor:      DefaultPrimaryColor,
		CompanyName:       DefaultCompanyName,
		PageSize:          PageA4,
		Margins:           DefaultMargins,
		ShowPrintControls: true,
		Sections:          sections,
	}
}

// ResolveConfig applies option layers, in order, over the role defaults and validates the result.
func ResolveConfig(role Role, layers ...Options) (Config, error) {
	if _, ok := roleSectionDefaults[role]; !ok {
		return Config{}, ErrUnknownRole
	}
	cfg := DefaultConfig(role)
	for _, layer := range layers {
		if layer.PrimaryColor != nil {
			cfg.PrimaryColor = *layer.PrimaryColor
		}
		if layer.CompanyName != nil {
			cfg.CompanyName = *layer.CompanyName
		}
		if layer.Compact != nil {
			cfg.Compact = *layer.Compact
		}
		if layer.PageSize != nil {
			cfg.PageSize = *layer.PageSize
		}
		if layer.Margins != nil {
			cfg.Margins = *layer.Margins
		}
		if layer.ShowPrintControls != nil {
			cfg.ShowPrintControls = *layer.ShowPrintControls
		}
		for name, on := range layer.Sections {
			if _, known := cfg.Sections[name]; !known {
				return Config{}, fmt.Errorf("%w: unknown section %q", ErrInvalidConfig, name)
			}
			cfg.Sections[name] = on
		}
	}
	if err := configValidator.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// KnownSections returns every section name in a stable order.
func KnownSections() []SectionName {
	names := slices.Collect(maps.Keys(DefaultConfig(RoleAdmin).Sections))
	slices.Sort(names)
	return names
}

var lengthPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)(mm|cm|in|pt|px)$`)

var configValidator = newConfigValidator()

func newConfigValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("csslength", func(fl validator.FieldLevel) bool {
		return lengthPattern.MatchString(fl.Field().String())
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		cfg := sl.Current().Interface().(Config)
		if !lengthPattern.MatchString(cfg.Margins) {
			return
		}
		w, h := cfg.PageSize.Dimensions()
		if 2*cfg.MarginMM() >= min(w, h) {
			sl.ReportError(cfg.Margins, "Margins", "Margins", "printablearea", "")
		}
	}, Config{})
	return v
}
