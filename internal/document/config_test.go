package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigPerRole(t *testing.T) {
	assert.False(t, DefaultConfig(RoleClient).Enabled(SectionClientDetails))
	assert.True(t, DefaultConfig(RoleClient).Enabled(SectionContact))
	for _, role := range []Role{RoleProvider, RoleAdmin, RoleStaff} {
		cfg := DefaultConfig(role)
		assert.True(t, cfg.Enabled(SectionClientDetails), role)
		assert.False(t, cfg.Enabled(SectionContact), role)
		assert.True(t, cfg.Enabled(SectionSummary), role)
	}
	assert.False(t, DefaultConfig(RoleProvider).Enabled(SectionProviderDetails))
}

func TestResolveConfigLayers(t *testing.T) {
	compact := true
	color := "#111111"
	company := "Layered"
	size := PageLetter

	cfg, err := ResolveConfig(RoleClient,
		Options{PrimaryColor: &color, Compact: &compact},
		Options{CompanyName: &company, PageSize: &size, Sections: map[SectionName]bool{SectionNotes: false}},
	)
	require.NoError(t, err)
	assert.Equal(t, "#111111", cfg.PrimaryColor)
	assert.Equal(t, "Layered", cfg.CompanyName)
	assert.True(t, cfg.Compact)
	assert.Equal(t, PageLetter, cfg.PageSize)
	assert.False(t, cfg.Enabled(SectionNotes))
	assert.True(t, cfg.Enabled(SectionPayment))
}

func TestResolveConfigRejects(t *testing.T) {
	_, err := ResolveConfig(Role("guest"))
	assert.ErrorIs(t, err, ErrUnknownRole)

	_, err = ResolveConfig(RoleAdmin, Options{Sections: map[SectionName]bool{"footerArt": true}})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	margins := "wide"
	_, err = ResolveConfig(RoleAdmin, Options{Margins: &margins})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	size := PageSize("B5")
	_, err = ResolveConfig(RoleAdmin, Options{PageSize: &size})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	for _, m := range []string{"200mm", "105mm", "11cm", "5in"} {
		_, err = ResolveConfig(RoleAdmin, Options{Margins: &m})
		assert.ErrorIs(t, err, ErrInvalidConfig, m)
	}
	a5, narrow := PageA5, "70mm"
	_, err = ResolveConfig(RoleAdmin, Options{PageSize: &a5, Margins: &narrow})
	assert.NoError(t, err)
	a5, wide := PageA5, "74mm"
	_, err = ResolveConfig(RoleAdmin, Options{PageSize: &a5, Margins: &wide})
	assert.ErrorIs(t, err, ErrInvalidConfig, "no printable width left on A5")

	empty := ""
	_, err = ResolveConfig(RoleAdmin, Options{CompanyName: &empty})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestResolveConfigDoesNotShareDefaults(t *testing.T) {
	_, err := ResolveConfig(RoleClient, Options{Sections: map[SectionName]bool{SectionPayment: false}})
	require.NoError(t, err)
	assert.True(t, DefaultConfig(RoleClient).Enabled(SectionPayment))
}

func TestMarginMM(t *testing.T) {
	cases := map[string]float64{"15mm": 15, "2cm": 20, "1in": 25.4, "72pt": 25.4, "96px": 25.4, "junk": 15}
	for in, want := range cases {
		cfg := Config{Margins: in}
		assert.InDelta(t, want, cfg.MarginMM(), 0.001, in)
	}
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole(" Provider ")
	require.NoError(t, err)
	assert.Equal(t, RoleProvider, role)

	_, err = ParseRole("owner")
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestOptionsMerge(t *testing.T) {
	a, b := "A", "B"
	base := Options{CompanyName: &a, Sections: map[SectionName]bool{SectionNotes: false}}
	merged := base.Merge(Options{CompanyName: &b, Sections: map[SectionName]bool{SectionPayment: false}})

	assert.Equal(t, "B", *merged.CompanyName)
	assert.Equal(t, map[SectionName]bool{SectionNotes: false, SectionPayment: false}, merged.Sections)
	assert.Len(t, base.Sections, 1)
}

func TestProfileParsing(t *testing.T) {
	p, err := ParseProfile(nil)
	require.NoError(t, err)
	assert.Nil(t, p.Roles)

	_, err = ParseProfile([]byte("roles:\n  owner:\n    compact: true\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = ParseProfile([]byte("defaults:\n  colour: red\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = ParseProfile([]byte("defaults:\n  primary_color: red\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	p, err = LoadProfile("")
	require.NoError(t, err)
	assert.Empty(t, p.Defaults.Sections)
}
