// Package scheduler drives the periodic reconcile loop.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/tallgrasslabs/choresheet/internal/board"
)

// defaultSpec fires on wall-clock 5-minute boundaries, seconds zeroed
const defaultSpec = "*/5 * * * *"

// Refresher runs one reconcile tick
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Driver fires the board's reconcile loop on a fixed wall-clock cadence.
// The cron runner reschedules after every tick regardless of outcome, so a
// failed fetch never stalls the loop; the board's single-flight guard turns
// an overlapping tick into a skip.
type Driver struct {
	cron   *cron.Cron
	board  Refresher
	spec   string
	logger *slog.Logger

	mu      sync.Mutex
	running bool
}

// Option configures a Driver
type Option func(*Driver)

// WithSchedule overrides the refresh cadence, for tests
func WithSchedule(spec string) Option {
	return func(d *Driver) { d.spec = spec }
}

// New creates a driver ticking in UTC on the default 5-minute cadence
func New(b Refresher, opts ...Option) *Driver {
	d := &Driver{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		board:  b,
		spec:   defaultSpec,
		logger: slog.With("component", "scheduler"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start begins the periodic loop. Calling Start on a running driver is a
// no-op.
func (d *Driver) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return nil
	}

	if _, err := d.cron.AddFunc(d.spec, d.tick); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", d.spec, err)
	}
	d.cron.Start()
	d.running = true

	d.logger.Info("refresh loop started", "schedule", d.spec)
	return nil
}

// Stop halts the loop. No tick fires after Stop returns; a tick already in
// flight completes first. Idempotent.
func (d *Driver) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	d.mu.Unlock()

	ctx := d.cron.Stop()
	<-ctx.Done()
	d.logger.Info("refresh loop stopped")
}

// RefreshNow triggers an on-demand reconcile outside the fixed cadence,
// sharing the board's single-flight discipline
func (d *Driver) RefreshNow(ctx context.Context) error {
	return d.board.Refresh(ctx)
}

func (d *Driver) tick() {
	err := d.board.Refresh(context.Background())
	switch {
	case errors.Is(err, board.ErrRefreshInFlight):
		d.logger.Debug("tick skipped, previous refresh still running")
	case err != nil:
		d.logger.Warn("scheduled refresh failed", "error", err)
	default:
		d.logger.Debug("scheduled refresh complete")
	}
}
