package board

import (
	"log/slog"
	"time"

	"github.com/tallgrasslabs/choresheet/internal/store"
	"github.com/tallgrasslabs/choresheet/internal/task"
)

// coreColumns map onto Task fields; anything else rides along in Extra.
// "state" and "visible" are board state, never sheet content, so a sheet
// column with either name is ignored rather than carried.
var coreColumns = map[string]bool{
	"task":           true,
	"assigned_to":    true,
	"cron_frequency": true,
	"last_completed": true,
	"state":          true,
	"visible":        true,
}

// merge builds the next snapshot from fresh rows and the previous list.
//
// Content fields always come from the fresh row; State and Visible carry
// over from the previous record of the same name so operational state
// survives a full refresh. A completed recurring task that has come due
// flips back to not_completed here; this is the only place reactivation
// happens.
// Tasks absent from the fresh rows simply drop out.
func merge(prev task.List, rows []store.Row, now time.Time) task.List {
	prevByName := make(map[string]*task.Task, len(prev))
	for _, t := range prev {
		// last writer wins on duplicate names; duplicates are a
		// data-quality defect, not a contract violation
		prevByName[t.Name] = t
	}

	next := make(task.List, 0, len(rows))
	for _, row := range rows {
		t := taskFromRow(row)
		if p, ok := prevByName[t.Name]; ok {
			t.State = p.State
			t.Visible = p.Visible
		}

		if t.State == task.StateCompleted && t.CronExpr != "" &&
			task.IsDue(t.CronExpr, t.LastCompleted, now) {
			t.State = task.StateNotCompleted
			t.Visible = true
			slog.Debug("task reactivated by recurrence", "task", t.Name, "expr", t.CronExpr)
		}

		next = append(next, t)
	}
	return next
}

// taskFromRow builds a fresh record with default board state
func taskFromRow(row store.Row) *task.Task {
	t := &task.Task{
		Name:          row["task"],
		AssignedTo:    row["assigned_to"],
		CronExpr:      row["cron_frequency"],
		LastCompleted: row["last_completed"],
		State:         task.StateNotCompleted,
		Visible:       true,
	}
	if t.AssignedTo == "" {
		t.AssignedTo = "unknown"
	}

	for k, v := range row {
		if coreColumns[k] {
			continue
		}
		if t.Extra == nil {
			t.Extra = make(map[string]string)
		}
		t.Extra[k] = v
	}
	return t
}
