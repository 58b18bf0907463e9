// Package board owns the authoritative task list: the reconciliation
// engine that merges fresh store rows with in-memory state, and the state
// machine for press/complete/reopen transitions.
package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tallgrasslabs/choresheet/internal/store"
	"github.com/tallgrasslabs/choresheet/internal/task"
	"github.com/tallgrasslabs/choresheet/internal/webhook"
)

var (
	// ErrRefreshInFlight means a reconcile tick fired while another was
	// still running; the caller should skip, not queue
	ErrRefreshInFlight = errors.New("refresh already in flight")

	// ErrTaskNotFound means a state operation named a task that is not
	// on the board
	ErrTaskNotFound = errors.New("task not found")
)

// stampLayout is ISO-8601 with offset at second precision, matching what
// the sheet holds in last_completed
const stampLayout = "2006-01-02T15:04:05-07:00"

// Coordinator holds the single authoritative task list. All mutation entry
// points funnel through it; every mutation replaces the list wholesale, so
// a reader holding a snapshot never observes a half-updated record.
type Coordinator struct {
	store    store.Store
	notifier webhook.Notifier
	loc      *time.Location
	category string
	logger   *slog.Logger
	now      func() time.Time

	// refreshing coalesces overlapping reconcile ticks
	refreshing atomic.Bool

	mu        sync.RWMutex
	tasks     task.List
	listeners []func(task.List)
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithNotifier sets the press-notification transport
func WithNotifier(n webhook.Notifier) Option {
	return func(c *Coordinator) { c.notifier = n }
}

// WithCategory sets the category label carried on press events
func WithCategory(category string) Option {
	return func(c *Coordinator) { c.category = category }
}

// WithLocation sets the reference zone used for recurrence anchoring and
// completion stamps, regardless of the offsets stored in the sheet
func WithLocation(loc *time.Location) Option {
	return func(c *Coordinator) { c.loc = loc }
}

// WithClock overrides the wall clock, for tests
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// New creates a coordinator over the given store
func New(st store.Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:    st,
		loc:      time.Local,
		category: "Unknown",
		logger:   slog.With("component", "board"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns the currently published task list. The list is
// copy-on-write: it is never mutated after publication, so callers may
// read it without holding any lock.
func (c *Coordinator) Snapshot() task.List {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tasks
}

// Subscribe registers a listener invoked with every newly published
// snapshot. Listeners run outside the coordinator's lock.
func (c *Coordinator) Subscribe(fn func(task.List)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Refresh runs one reconcile tick: fetch all rows, merge against the held
// list, publish the result. Only one refresh runs at a time; a concurrent
// call returns ErrRefreshInFlight and does nothing. On fetch failure the
// published list is left untouched.
func (c *Coordinator) Refresh(ctx context.Context) error {
	if !c.refreshing.CompareAndSwap(false, true) {
		return ErrRefreshInFlight
	}
	defer c.refreshing.Store(false)

	rows, err := c.store.FetchAll(ctx)
	if err != nil {
		c.logger.Warn("task fetch failed, keeping published list", "error", err)
		return fmt.Errorf("fetching tasks: %w", err)
	}

	now := c.now().In(c.loc)

	c.mu.Lock()
	// Merge against the list as it stands now, not as it stood when the
	// fetch started: a completion that landed mid-fetch carries over.
	next := merge(c.tasks, rows, now)
	c.tasks = next
	listeners := append([]func(task.List){}, c.listeners...)
	c.mu.Unlock()

	c.logger.Debug("reconcile published", "tasks", len(next))
	for _, fn := range listeners {
		fn(next)
	}
	return nil
}

// RequestPending marks a task pending in response to a button press and
// emits a press notification. Pressing a task that is already pending or
// already completed is a warned no-op. Pending lives only in the published
// list; the next reconcile resets it.
func (c *Coordinator) RequestPending(ctx context.Context, name string) error {
	c.mu.Lock()
	cur := c.tasks.Find(name)
	if cur == nil {
		c.mu.Unlock()
		c.logger.Warn("press for unknown task", "task", name)
		return fmt.Errorf("%w: %q", ErrTaskNotFound, name)
	}
	if cur.State == task.StatePending {
		c.mu.Unlock()
		c.logger.Warn("task already pending, press ignored", "task", name)
		return nil
	}
	if cur.State == task.StateCompleted {
		c.mu.Unlock()
		c.logger.Warn("task already completed, press ignored", "task", name)
		return nil
	}

	next := c.tasks.Clone()
	t := next.Find(name)
	t.State = task.StatePending
	t.Visible = true
	assignedTo := t.AssignedTo
	c.tasks = next
	listeners := append([]func(task.List){}, c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}

	if c.notifier != nil {
		ev := webhook.PressEvent{
			TaskName:       name,
			AssignedTo:     assignedTo,
			Category:       c.category,
			ConfirmationID: ConfirmationID(name),
		}
		if err := c.notifier.TaskPressed(ctx, ev); err != nil {
			c.logger.Warn("press notification failed", "task", name, "error", err)
		}
	}
	return nil
}

// CompleteTask marks a task completed, stamps last_completed with the
// reference-zone time, publishes the new snapshot, then persists the stamp
// and appends an audit log row.
//
// The publish is optimistic: it happens before the store writes, and a
// failed write is reported without rolling the published state back. The
// next reconcile re-reads the sheet either way.
func (c *Coordinator) CompleteTask(ctx context.Context, name, actor string) error {
	if actor == "" {
		actor = "unknown"
	}
	stamp := c.now().In(c.loc).Format(stampLayout)

	c.mu.Lock()
	if c.tasks.Find(name) == nil {
		c.mu.Unlock()
		c.logger.Warn("complete for unknown task", "task", name)
		return fmt.Errorf("%w: %q", ErrTaskNotFound, name)
	}

	next := c.tasks.Clone()
	t := next.Find(name)
	t.State = task.StateCompleted
	t.Visible = false
	t.LastCompleted = stamp
	c.tasks = next
	listeners := append([]func(task.List){}, c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}

	if err := c.store.UpdateLastCompleted(ctx, name, stamp); err != nil {
		c.logger.Error("failed to persist completion", "task", name, "error", err)
		return fmt.Errorf("persisting completion of %q: %w", name, err)
	}
	if err := c.store.AppendLog(ctx, store.LogEntry{
		Timestamp: stamp,
		TaskName:  name,
		Actor:     actor,
		Action:    "completed",
	}); err != nil {
		c.logger.Error("failed to append audit log", "task", name, "error", err)
		return fmt.Errorf("logging completion of %q: %w", name, err)
	}

	c.logger.Info("task completed", "task", name, "actor", actor)
	return nil
}

// ReopenPendingTask returns a pending task to not_completed. Only the
// published list changes; the store is untouched, and the next reconcile
// would overwrite this anyway.
func (c *Coordinator) ReopenPendingTask(name string) error {
	c.mu.Lock()
	if c.tasks.Find(name) == nil {
		c.mu.Unlock()
		c.logger.Warn("reopen for unknown task", "task", name)
		return fmt.Errorf("%w: %q", ErrTaskNotFound, name)
	}

	next := c.tasks.Clone()
	t := next.Find(name)
	t.State = task.StateNotCompleted
	t.Visible = true
	c.tasks = next
	listeners := append([]func(task.List){}, c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}

	c.logger.Debug("task reopened", "task", name)
	return nil
}

// ConfirmationID synthesizes the confirmation identifier carried on press
// notifications, e.g. "Feed the dog" -> "CONFIRM_FEED_THE_DOG"
func ConfirmationID(name string) string {
	return "CONFIRM_" + strings.ToUpper(strings.ReplaceAll(name, " ", "_"))
}
