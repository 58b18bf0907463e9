package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/tallgrasslabs/choresheet/internal/api"
	"github.com/tallgrasslabs/choresheet/internal/board"
	"github.com/tallgrasslabs/choresheet/internal/config"
	"github.com/tallgrasslabs/choresheet/internal/scheduler"
	"github.com/tallgrasslabs/choresheet/internal/store"
	"github.com/tallgrasslabs/choresheet/internal/tui"
	"github.com/tallgrasslabs/choresheet/internal/version"
	"github.com/tallgrasslabs/choresheet/internal/webhook"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version", "--version", "-v":
			fmt.Println(version.Info())
			return
		case "help", "--help", "-h":
			printHelp()
			return
		case "serve":
			if err := runServer(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		case "daemon":
			if err := runDaemon(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		case "add":
			if err := runAdd(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
			printHelp()
			os.Exit(1)
		}
	}

	if err := runTUI(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildBoard wires the store, notifiers, and coordinator from config
func buildBoard(ctx context.Context, cfg *config.Config) (*board.Coordinator, func(), error) {
	var (
		st     store.Store
		closer = func() {}
	)

	switch cfg.Backend {
	case config.BackendSheets:
		s, err := store.NewSheets(ctx, cfg.CredentialsPath, cfg.SpreadsheetID, cfg.TaskWorksheet, cfg.LogWorksheet)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sheets store: %w", err)
		}
		st = s
	case config.BackendSQLite:
		s, err := store.NewSQLite(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		st = s
		closer = func() { _ = s.Close() }
	}

	loc, err := cfg.Location()
	if err != nil {
		closer()
		return nil, nil, err
	}

	opts := []board.Option{
		board.WithLocation(loc),
		board.WithCategory(cfg.Category),
	}

	var notifiers webhook.Multi
	if cfg.SlackWebhook != "" {
		notifiers = append(notifiers, webhook.NewSlack(cfg.SlackWebhook))
	}
	if cfg.DiscordWebhook != "" {
		notifiers = append(notifiers, webhook.NewDiscord(cfg.DiscordWebhook))
	}
	if len(notifiers) > 0 {
		opts = append(opts, board.WithNotifier(notifiers))
	}

	return board.New(st, opts...), closer, nil
}

func runServer() error {
	serveCmd := flag.NewFlagSet("serve", flag.ExitOnError)
	port := serveCmd.Int("port", 8080, "HTTP server port")
	_ = serveCmd.Parse(os.Args[2:])

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()
	b, closeStore, err := buildBoard(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// First reconcile before serving; a failure is survivable, the
	// driver retries on the next boundary.
	if err := b.Refresh(ctx); err != nil {
		slog.Warn("initial refresh failed", "error", err)
	}

	drv := scheduler.New(b)
	if err := drv.Start(); err != nil {
		return fmt.Errorf("starting refresh loop: %w", err)
	}
	defer drv.Stop()

	server := api.NewServer(b)
	addr := fmt.Sprintf(":%d", *port)
	fmt.Printf("choresheet API server starting on %s\n", addr)
	fmt.Printf("Backend: %s\n", cfg.Backend)

	srv := &http.Server{
		Addr:    addr,
		Handler: server.Router(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nShutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func runDaemon() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()
	b, closeStore, err := buildBoard(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := b.Refresh(ctx); err != nil {
		slog.Warn("initial refresh failed", "error", err)
	}

	drv := scheduler.New(b)
	if err := drv.Start(); err != nil {
		return fmt.Errorf("starting refresh loop: %w", err)
	}
	defer drv.Stop()

	fmt.Println("choresheet daemon started")
	fmt.Printf("Backend: %s\n", cfg.Backend)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nShutting down...")
	return nil
}

func runTUI() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Keep the terminal clean: log to a file while the TUI owns the screen
	if dir, err := config.Dir(); err == nil {
		if f, err := os.OpenFile(filepath.Join(dir, "choresheet.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
			defer f.Close()
			slog.SetDefault(slog.New(slog.NewTextHandler(f, nil)))
		} else {
			slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		}
	}

	ctx := context.Background()
	b, closeStore, err := buildBoard(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := b.Refresh(ctx); err != nil {
		slog.Warn("initial refresh failed", "error", err)
	}

	drv := scheduler.New(b)
	if err := drv.Start(); err != nil {
		return fmt.Errorf("starting refresh loop: %w", err)
	}
	defer drv.Stop()

	actor := os.Getenv("USER")
	if actor == "" {
		actor = "unknown"
	}
	return tui.Run(b, actor)
}

// runAdd inserts a task row into the local sqlite store
func runAdd() error {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	name := addCmd.String("name", "", "task name (required)")
	assignee := addCmd.String("assignee", "unknown", "who the task is assigned to")
	cronExpr := addCmd.String("cron", "", "cron recurrence (empty = one-time task)")
	_ = addCmd.Parse(os.Args[2:])

	if *name == "" {
		return fmt.Errorf("add requires -name")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Backend != config.BackendSQLite {
		return fmt.Errorf("add only works with the sqlite backend; edit the sheet directly instead")
	}

	s, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.UpsertTask(context.Background(), store.Row{
		"task":           *name,
		"assigned_to":    *assignee,
		"cron_frequency": *cronExpr,
	}); err != nil {
		return err
	}

	fmt.Printf("Added task %q\n", *name)
	return nil
}

func printHelp() {
	fmt.Println(`choresheet - recurring chore board backed by a Google Sheet or local db

Usage:
  choresheet                Launch the interactive board TUI
  choresheet serve          Run the refresh loop and HTTP API
  choresheet daemon         Run the refresh loop in the foreground
  choresheet add            Add a task to the local sqlite store
  choresheet version        Show version information
  choresheet help           Show this help message

Serve Options:
  --port                    HTTP server port (default: 8080)

Add Options:
  --name                    Task name (required)
  --assignee                Assignee (default: unknown)
  --cron                    Cron recurrence, empty for a one-time task

Environment Variables:
  CHORESHEET_CONFIG         Override config directory (default: ~/.config/choresheet)`)
}
