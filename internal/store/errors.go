package store

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnavailable wraps transport failures reaching the store
	ErrUnavailable = errors.New("task store unavailable")

	// ErrNoTasks means the fetch succeeded but returned zero data rows.
	// An empty sheet is indistinguishable from a misconfigured one, so it
	// fails the whole fetch.
	ErrNoTasks = errors.New("no task rows in store")

	// ErrNotFound means a named task has no row in the store
	ErrNotFound = errors.New("task row not found")

	// ErrWrite wraps failures writing a cell or appending a row
	ErrWrite = errors.New("store write failed")
)

// SchemaError reports required columns missing from the task sheet header
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required column(s): %s", strings.Join(e.Missing, ", "))
}
