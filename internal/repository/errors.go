// Package repository defines error types that are reused across the data
// gateway. Handlers use them to tell a missing row apart from a failure
// raised by the database driver.
package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a delete matched no row. Handlers should
// translate this into an HTTP 404 response naming the entity.
var ErrNotFound = errors.New("not found")

// DBError wraps any failure raised while talking to the database: acquiring
// a connection, preparing, executing or scanning. Its message is the driver's
// own text so callers can surface it unchanged.
type DBError struct {
	Op    string // gateway operation (get, list, insert, update, delete)
	Table string
	Err   error
}

func (e *DBError) Error() string { return e.Err.Error() }

func (e *DBError) Unwrap() error { return e.Err }

// Describe renders the operation context for logs.
func (e *DBError) Describe() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
}
