package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite is a local task store with the same row contract as the sheets
// backend. It keeps the board usable without Google credentials and gives
// tests a real store to run against. Unrecognized columns live in a JSON
// extras column so they round-trip like extra sheet columns do.
type SQLite struct {
	conn *sql.DB
}

// knownColumns are stored as real columns; everything else goes to extras
var knownColumns = map[string]bool{
	"task":           true,
	"assigned_to":    true,
	"cron_frequency": true,
	"last_completed": true,
}

// NewSQLite opens (creating if needed) the task database at dbPath
func NewSQLite(dbPath string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLite{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection
func (s *SQLite) Close() error {
	return s.conn.Close()
}

func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tasks (
		task TEXT PRIMARY KEY,
		assigned_to TEXT NOT NULL DEFAULT 'unknown',
		cron_frequency TEXT NOT NULL DEFAULT '',
		last_completed TEXT NOT NULL DEFAULT '',
		extras TEXT NOT NULL DEFAULT '{}'
	);

	CREATE TABLE IF NOT EXISTS log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		logged_at TEXT NOT NULL,
		task TEXT NOT NULL,
		actor TEXT NOT NULL,
		action TEXT NOT NULL
	);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// FetchAll returns every task row in insertion order
func (s *SQLite) FetchAll(ctx context.Context) ([]Row, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT task, assigned_to, cron_frequency, last_completed, extras
		FROM tasks ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var name, assignedTo, cronExpr, lastCompleted, extras string
		if err := rows.Scan(&name, &assignedTo, &cronExpr, &lastCompleted, &extras); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}

		row := Row{
			"task":           name,
			"assigned_to":    assignedTo,
			"cron_frequency": cronExpr,
			"last_completed": lastCompleted,
		}
		var extra map[string]string
		if err := json.Unmarshal([]byte(extras), &extra); err == nil {
			for k, v := range extra {
				if !knownColumns[k] {
					row[k] = v
				}
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := CheckSchema(out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateLastCompleted writes the completion stamp for one task
func (s *SQLite) UpdateLastCompleted(ctx context.Context, taskName, stamp string) error {
	res, err := s.conn.ExecContext(ctx,
		"UPDATE tasks SET last_completed = ? WHERE task = ?", stamp, taskName)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, taskName)
	}
	return nil
}

// AppendLog appends one audit row to the log table
func (s *SQLite) AppendLog(ctx context.Context, entry LogEntry) error {
	_, err := s.conn.ExecContext(ctx,
		"INSERT INTO log (logged_at, task, actor, action) VALUES (?, ?, ?, ?)",
		entry.Timestamp, entry.TaskName, entry.Actor, entry.Action)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

// UpsertTask inserts or replaces a task row. Keys outside the fixed schema
// are packed into the extras column.
func (s *SQLite) UpsertTask(ctx context.Context, row Row) error {
	name := row["task"]
	if name == "" {
		return fmt.Errorf("%w: task name required", ErrWrite)
	}

	assignedTo := row["assigned_to"]
	if assignedTo == "" {
		assignedTo = "unknown"
	}

	extra := map[string]string{}
	for k, v := range row {
		if !knownColumns[k] {
			extra[k] = v
		}
	}
	extras, err := json.Marshal(extra)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO tasks (task, assigned_to, cron_frequency, last_completed, extras)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(task) DO UPDATE SET
			assigned_to = excluded.assigned_to,
			cron_frequency = excluded.cron_frequency,
			last_completed = excluded.last_completed,
			extras = excluded.extras
	`, name, assignedTo, row["cron_frequency"], row["last_completed"], string(extras))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}
