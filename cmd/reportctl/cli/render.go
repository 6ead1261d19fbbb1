// Package cli holds the reportctl subcommand implementations.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/odyssey-erp/marketplace-reports/internal/document"
	"github.com/odyssey-erp/marketplace-reports/internal/sink"
)

// ErrAmbiguousInput reports an input file naming zero or several subjects.
var ErrAmbiguousInput = errors.New("input must carry exactly one of appointment, appointments or analytics")

// Input is the JSON document accepted by `reportctl render`, shaped like the HTTP request body.
type Input struct {
	Role         string                     `json:"role"`
	Options      document.Options           `json:"options"`
	Appointment  *document.Appointment      `json:"appointment"`
	Appointments *[]document.Appointment    `json:"appointments"`
	Analytics    *document.AnalyticsDataset `json:"analytics"`
}

// ReadInput decodes an input document, rejecting unknown fields.
func ReadInput(r io.Reader) (Input, error) {
	var in Input
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return Input{}, fmt.Errorf("decode input: %w", err)
	}
	return in, nil
}

// Subject picks the single subject present in the input. An explicit empty batch is valid.
func (in Input) Subject() (document.Subject, error) {
	var present []document.Subject
	if in.Appointment != nil {
		present = append(present, document.SingleAppointment(*in.Appointment))
	}
	if in.Appointments != nil {
		present = append(present, document.AppointmentBatch(*in.Appointments))
	}
	if in.Analytics != nil {
		present = append(present, document.AnalyticsReport(*in.Analytics))
	}
	if len(present) != 1 {
		return document.Subject{}, ErrAmbiguousInput
	}
	return present[0], nil
}

// Format selects the sink used by Render.
type Format string

const (
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
)

// ParseFormat accepts html or pdf in any case.
func ParseFormat(v string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(v))); f {
	case FormatHTML, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q, want html or pdf", v)
	}
}

// Render assembles the input and hands the document to out.
func Render(ctx context.Context, assembler *document.Assembler, in Input, out sink.Sink) (sink.Result, error) {
	role, err := document.ParseRole(in.Role)
	if err != nil {
		return sink.Result{}, err
	}
	subject, err := in.Subject()
	if err != nil {
		return sink.Result{}, err
	}
	doc, err := assembler.Assemble(subject, role, in.Options)
	if err != nil {
		return sink.Result{}, err
	}
	return out.Deliver(ctx, doc)
}
