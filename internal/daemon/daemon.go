package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"preflight/internal/database"
	"preflight/internal/readiness"
	"preflight/internal/scheduler"
	"preflight/internal/tasks"
)

// Daemon sweeps the fleet on a schedule and serves the results as metrics
type Daemon struct {
	ctx       context.Context
	cancel    context.CancelFunc
	scheduler *scheduler.Scheduler
	sweep     *tasks.ReadinessSweep
	server    *http.Server
	done      chan struct{}
	serveErr  error // set before done is closed
}

// Config holds daemon configuration
type Config struct {
	Interval    int    // seconds between sweeps
	Workers     int    // concurrent airworthiness checks
	MetricsAddr string // listen address for /metrics, e.g. ":9109"
}

// New creates a daemon sweeping the aircraft in db with checker
func New(cfg Config, db *database.DB, checker *readiness.Service) (*Daemon, error) {
	if cfg.MetricsAddr == "" {
		return nil, fmt.Errorf("MetricsAddr is required")
	}

	interval := 5 * time.Minute
	if cfg.Interval > 0 {
		interval = time.Duration(cfg.Interval) * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	sched := scheduler.New(ctx)
	sweep := tasks.NewReadinessSweepWithConfig(db.AircraftRepository(), checker, interval, cfg.Workers)
	sched.AddTask(sweep)

	d := &Daemon{
		ctx:       ctx,
		cancel:    cancel,
		scheduler: sched,
		sweep:     sweep,
		done:      make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", d.handleHealth)
	d.server = &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return d, nil
}

func (d *Daemon) Start() error {
	slog.Info("Starting daemon")

	d.scheduler.Start()

	go func() {
		defer close(d.done)
		slog.Info("Serving metrics", "addr", d.server.Addr)
		if err := d.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server stopped", "error", err)
			d.serveErr = err
			d.cancel()
		}
	}()

	slog.Info("Daemon started successfully")
	return nil
}

// Done is closed once the metrics server has stopped
func (d *Daemon) Done() <-chan struct{} {
	return d.done
}

// Stop gracefully stops the daemon and returns the error that ended the
// metrics server, if any. The database stays open for its owner to close.
func (d *Daemon) Stop() error {
	slog.Info("Stopping daemon")
	d.cancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Error shutting down metrics server", "error", err)
	}
	<-d.done

	d.scheduler.Stop()

	slog.Info("Daemon stopped")
	if d.serveErr != nil {
		return fmt.Errorf("metrics server failed: %w", d.serveErr)
	}
	return nil
}

type healthResponse struct {
	Status   string                 `json:"status"`
	Tasks    []scheduler.TaskStatus `json:"tasks"`
	Aircraft int                    `json:"aircraft"`
	Grounded []string               `json:"grounded"`
}

func (d *Daemon) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Tasks: d.scheduler.Status(), Grounded: []string{}}
	for _, res := range d.sweep.LastResults() {
		resp.Aircraft++
		if !res.Report.IsReady {
			resp.Grounded = append(resp.Grounded, res.Registration)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}
