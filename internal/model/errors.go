package model

import (
	"fmt"
	"strings"
)

// MissingFieldsError reports required body fields that were absent or empty.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "Missing required fields: " + strings.Join(e.Fields, ", ")
}

// FieldError reports a body field whose value cannot be stored in its column.
type FieldError struct {
	Field string
	Kind  FieldKind
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("Invalid value for %s: expected %s", e.Field, e.Kind)
}

func (e *FieldError) Unwrap() error { return e.Err }
