package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Sheets reads and writes task rows in a Google Sheets spreadsheet: one
// worksheet of task rows with a header, and one append-only log worksheet.
type Sheets struct {
	srv           *sheets.Service
	spreadsheetID string
	taskSheet     string
	logSheet      string
}

// NewSheets authenticates with a service-account credentials file and
// returns a store backed by the given spreadsheet
func NewSheets(ctx context.Context, credsPath, spreadsheetID, taskSheet, logSheet string) (*Sheets, error) {
	b, err := os.ReadFile(credsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file %s: %w", credsPath, err)
	}

	conf, err := google.JWTConfigFromJSON(b, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return &Sheets{
		srv:           srv,
		spreadsheetID: spreadsheetID,
		taskSheet:     taskSheet,
		logSheet:      logSheet,
	}, nil
}

// FetchAll reads the task worksheet and returns its rows in sheet order
func (s *Sheets) FetchAll(ctx context.Context) ([]Row, error) {
	grid, err := s.readGrid(ctx)
	if err != nil {
		return nil, err
	}

	rows := NormalizeRows(grid[0], grid[1:])
	if err := CheckSchema(rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateLastCompleted writes the completion stamp into the task's
// last_completed cell. An empty stamp clears the cell.
func (s *Sheets) UpdateLastCompleted(ctx context.Context, taskName, stamp string) error {
	grid, err := s.readGrid(ctx)
	if err != nil {
		return err
	}

	colIdx := -1
	for i, h := range grid[0] {
		if strings.ToLower(strings.TrimSpace(h)) == "last_completed" {
			colIdx = i
			break
		}
	}
	if colIdx < 0 {
		return &SchemaError{Missing: []string{"last_completed"}}
	}

	taskCol := -1
	for i, h := range grid[0] {
		if strings.ToLower(strings.TrimSpace(h)) == "task" {
			taskCol = i
			break
		}
	}
	if taskCol < 0 {
		return &SchemaError{Missing: []string{"task"}}
	}

	rowIdx := -1
	for i, rec := range grid[1:] {
		if taskCol < len(rec) && strings.TrimSpace(rec[taskCol]) == taskName {
			rowIdx = i + 2 // 1-based, plus the header row
			break
		}
	}
	if rowIdx < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, taskName)
	}

	cell := fmt.Sprintf("%s!%s%d", s.taskSheet, columnLetter(colIdx), rowIdx)
	vr := &sheets.ValueRange{Values: [][]interface{}{{stamp}}}
	_, err = s.srv.Spreadsheets.Values.Update(s.spreadsheetID, cell, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: updating %s: %v", ErrWrite, cell, err)
	}

	slog.Debug("updated task completion stamp", "task", taskName, "cell", cell)
	return nil
}

// AppendLog appends one audit row to the log worksheet
func (s *Sheets) AppendLog(ctx context.Context, entry LogEntry) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{
		{entry.Timestamp, entry.TaskName, entry.Actor, entry.Action},
	}}
	_, err := s.srv.Spreadsheets.Values.Append(s.spreadsheetID, s.logSheet, vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: appending log row for %q: %v", ErrWrite, entry.TaskName, err)
	}
	return nil
}

// readGrid fetches the whole task worksheet as strings, header included
func (s *Sheets) readGrid(ctx context.Context) ([][]string, error) {
	resp, err := s.srv.Spreadsheets.Values.Get(s.spreadsheetID, s.taskSheet).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(resp.Values) == 0 {
		return nil, ErrNoTasks
	}

	grid := make([][]string, len(resp.Values))
	for i, rec := range resp.Values {
		row := make([]string, len(rec))
		for j, v := range rec {
			row[j] = fmt.Sprint(v)
		}
		grid[i] = row
	}
	return grid, nil
}

// columnLetter converts a zero-based column index to A1 notation
func columnLetter(idx int) string {
	letters := ""
	for idx >= 0 {
		letters = string(rune('A'+idx%26)) + letters
		idx = idx/26 - 1
	}
	return letters
}
