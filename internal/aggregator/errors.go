package aggregator

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyDataset is returned when either input table has no rows at all.
	ErrEmptyDataset = errors.New("dataset is empty")

	// ErrNoData marks a state selection that matched no accidents.
	ErrNoData = errors.New("no accidents for the selected state")

	// ErrJoinMismatch describes accident codes without a metadata row.
	// Those rows are dropped and counted, never fatal.
	ErrJoinMismatch = errors.New("municipality code has no metadata")
)

// SchemaError reports a missing or non-numeric column.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("schema error: field %q", e.Field)
	}
	return fmt.Sprintf("schema error: field %q: %s", e.Field, e.Reason)
}

// ParseError reports a date or time-of-day value that could not be parsed.
type ParseError struct {
	Kind  string // "date" or "hour"
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to parse %s %q: %v", e.Kind, e.Value, e.Err)
	}
	return fmt.Sprintf("failed to parse %s %q", e.Kind, e.Value)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
