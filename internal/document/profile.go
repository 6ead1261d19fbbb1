package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile holds deployment-level branding and per-role overrides loaded from YAML.
//
//	defaults:
//	  company_name: Acme Home Services
//	  primary_color: "#0f766e"
//	roles:
//	  provider:
//	    compact: true
//	    sections:
//	      payment: false
type Profile struct {
	Defaults Options          `yaml:"defaults"`
	Roles    map[Role]Options `yaml:"roles"`
}

// LoadProfile reads a profile file. An empty path yields the zero profile.
func LoadProfile(path string) (Profile, error) {
	if strings.TrimSpace(path) == "" {
		return Profile{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read report profile: %w", err)
	}
	return ParseProfile(data)
}

// ParseProfile decodes and validates a YAML profile.
func ParseProfile(data []byte) (Profile, error) {
	var p Profile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return Profile{}, nil
		}
		return Profile{}, fmt.Errorf("%w: decode profile: %v", ErrInvalidConfig, err)
	}
	for role := range p.Roles {
		if _, err := ParseRole(string(role)); err != nil {
			return Profile{}, fmt.Errorf("%w: profile role %q", ErrInvalidConfig, role)
		}
	}
	for _, role := range Roles {
		if _, err := ResolveConfig(role, p.For(role)); err != nil {
			return Profile{}, fmt.Errorf("profile for %s: %w", role, err)
		}
	}
	return p, nil
}

// For returns the profile overrides that apply to role.
func (p Profile) For(role Role) Options {
	return p.Defaults.Merge(p.Roles[role])
}
