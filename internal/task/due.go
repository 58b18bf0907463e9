package task

import (
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser accepts standard five-field expressions, an optional leading
// seconds field, and @-descriptors like @daily
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// IsDue reports whether a task must be active at now.
//
// A task with no recurrence expression is a one-time task: due only while it
// has never been completed. A recurring task is due when its next scheduled
// occurrence after the anchor (the last completion, or a far-past sentinel
// when there is none) is at or before now.
//
// Malformed expressions and unparsable timestamps fail closed: the condition
// is logged and the task is treated as not due, so one bad row can never
// flood the board.
func IsDue(expr, lastCompleted string, now time.Time) bool {
	if expr == "" {
		return lastCompleted == ""
	}

	sched, err := cronParser.Parse(expr)
	if err != nil {
		slog.Warn("invalid cron expression", "expr", expr, "error", err)
		return false
	}

	anchor, ok := parseAnchor(lastCompleted, now)
	if !ok {
		slog.Warn("invalid last_completed timestamp", "value", lastCompleted)
		return false
	}

	next := sched.Next(anchor)
	if next.IsZero() {
		// No satisfiable occurrence within the parser's search window
		return false
	}
	return !next.After(now)
}

// parseAnchor converts a stored completion timestamp into the time the next
// occurrence is computed from, in now's zone. An empty value yields a year-1
// sentinel so the very first occurrence of a recurring task always fires.
func parseAnchor(lastCompleted string, now time.Time) (time.Time, bool) {
	if lastCompleted == "" {
		return time.Date(1, time.January, 1, 0, 0, 0, 0, now.Location()), true
	}
	if t, err := time.Parse(time.RFC3339, lastCompleted); err == nil {
		return t.In(now.Location()), true
	}
	// Sheets edited by hand often hold offset-less timestamps; read those
	// in the reference zone.
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", lastCompleted, now.Location()); err == nil {
		return t, true
	}
	return time.Time{}, false
}
