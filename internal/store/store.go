// Package store adapts external tabular task stores (a Google Sheets
// worksheet or a local SQLite table) to the row contract the board
// reconciles against.
package store

import "context"

// Row is one normalized task row: lowercase keys, trimmed values
type Row map[string]string

// LogEntry is one audit row appended to the log worksheet/table
type LogEntry struct {
	Timestamp string
	TaskName  string
	Actor     string
	Action    string
}

// Store is the task store contract consumed by the board.
//
// FetchAll returns every task row in sheet order, already normalized and
// schema-checked. UpdateLastCompleted writes a single task's completion
// stamp. AppendLog appends an audit row. Implementations block on network
// or disk I/O; callers keep them off time-sensitive paths.
type Store interface {
	FetchAll(ctx context.Context) ([]Row, error)
	UpdateLastCompleted(ctx context.Context, taskName, stamp string) error
	AppendLog(ctx context.Context, entry LogEntry) error
}
