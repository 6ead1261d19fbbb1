package document

import "errors"

var (
	// ErrMissingData marks a section skipped because the entity lacks its data. It is logged, never returned.
	ErrMissingData = errors.New("document: missing data")
	// ErrUnknownRole is returned when a viewing role cannot be parsed.
	ErrUnknownRole = errors.New("document: unknown role")
	// ErrInvalidConfig wraps render configuration validation failures.
	ErrInvalidConfig = errors.New("document: invalid configuration")
	// ErrEmptySubject is returned when a subject carries nothing to assemble.
	ErrEmptySubject = errors.New("document: empty subject")
)
