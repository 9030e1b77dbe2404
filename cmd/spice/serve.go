package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-health/internal/api"
	"github.com/Veraticus/spice-health/internal/config"
	"github.com/Veraticus/spice-health/internal/engine"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve scores over HTTP",
		Long: `Start the score API and the nightly scoring job.

Routes:
  GET  /users/{id}/score          compute without recording
  POST /users/{id}/score          compute and record today's score
  GET  /users/{id}/score/history  recorded scores, newest first
  GET  /healthz

Every user is scored on the server.schedule cron expression
(default "0 3 * * *"). Set it to "off" to disable.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "Listen address (default: server.addr or :8080)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.LoadServerConfig()
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Addr = addr
	}

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	eng, err := newEngine(store)
	if err != nil {
		return err
	}

	scheduler, err := startScheduler(ctx, eng, cfg.Schedule)
	if err != nil {
		return err
	}
	if scheduler != nil {
		defer func() { <-scheduler.Stop().Done() }()
	}

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      api.NewRouter(api.NewHandler(eng, cfg.HistoryLimit)),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting score server", "addr", cfg.Addr, "schedule", cfg.Schedule)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down score server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// startScheduler runs ScoreAll on schedule until ctx is done. An empty or
// "off" schedule disables it and returns a nil scheduler.
func startScheduler(ctx context.Context, eng *engine.ScoreEngine, schedule string) (*cron.Cron, error) {
	if schedule == "" || schedule == "off" {
		return nil, nil
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		report, err := eng.ScoreAll(ctx, nil)
		if err != nil {
			slog.Error("Scheduled scoring aborted", "error", err)
			return
		}
		slog.Info("Scheduled scoring finished",
			"scored", report.Scored,
			"failed", len(report.Failed))
	})
	if err != nil {
		return nil, fmt.Errorf("invalid server.schedule %q: %w", schedule, err)
	}
	c.Start()
	return c, nil
}
