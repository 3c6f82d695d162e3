package cli

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"preflight/internal/daemon"
)

func newWatchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Sweep fleet airworthiness on a schedule and serve Prometheus metrics",
		Long: `Run as a daemon. Every watch.interval seconds the airworthiness of each
aircraft is checked and published on watch.metrics_addr under /metrics.
/healthz reports the scheduler state and the aircraft grounded by the last sweep.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := daemon.New(daemon.Config{
				Interval:    a.cfg.Watch.Interval,
				Workers:     a.cfg.Watch.Workers,
				MetricsAddr: a.cfg.Watch.MetricsAddr,
			}, a.db, a.checker)
			if err != nil {
				return fmt.Errorf("failed to create daemon: %w", err)
			}

			if err := d.Start(); err != nil {
				return fmt.Errorf("failed to start daemon: %w", err)
			}

			// Setup signal handling for graceful shutdown
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			select {
			case <-sigChan:
				slog.Info("Received interrupt signal, shutting down...")
			case <-cmd.Context().Done():
			case <-d.Done():
				slog.Error("Metrics server exited, shutting down")
			}

			return d.Stop()
		},
	}
}
