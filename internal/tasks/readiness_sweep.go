package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"preflight/internal/metrics"
	"preflight/internal/models"
)

// AircraftLister lists the fleet to sweep
type AircraftLister interface {
	List() ([]*models.Aircraft, error)
}

// AirworthinessChecker evaluates one aircraft
type AirworthinessChecker interface {
	CheckAirworthiness(aircraftID uuid.UUID) models.ReadinessReport
}

// SweepResult is the outcome for one aircraft in a sweep
type SweepResult struct {
	Registration string
	Report       models.ReadinessReport
}

// ReadinessSweep periodically checks the airworthiness of every aircraft and
// publishes the outcomes as metrics
type ReadinessSweep struct {
	lister   AircraftLister
	checker  AirworthinessChecker
	interval time.Duration
	workers  int

	mu    sync.Mutex
	known map[string]struct{} // Registrations seen in the previous sweep
	last  []SweepResult
}

// Default interval is 5 minutes with 4 concurrent checks
func NewReadinessSweep(lister AircraftLister, checker AirworthinessChecker) *ReadinessSweep {
	return NewReadinessSweepWithConfig(lister, checker, 5*time.Minute, 4)
}

// NewReadinessSweepWithConfig creates a sweep with a custom interval and worker count
func NewReadinessSweepWithConfig(lister AircraftLister, checker AirworthinessChecker, interval time.Duration, workers int) *ReadinessSweep {
	if workers <= 0 {
		workers = 1
	}
	return &ReadinessSweep{
		lister:   lister,
		checker:  checker,
		interval: interval,
		workers:  workers,
		known:    make(map[string]struct{}),
	}
}

func (s *ReadinessSweep) Name() string {
	return "readiness_sweep"
}

func (s *ReadinessSweep) Interval() time.Duration {
	return s.interval
}

// Run checks every aircraft once. Checks are independent, so a failing
// aircraft never stops the others from being evaluated.
func (s *ReadinessSweep) Run(ctx context.Context) error {
	start := time.Now()

	fleet, err := s.lister.List()
	if err != nil {
		return fmt.Errorf("failed to list aircraft: %w", err)
	}

	results := make([]SweepResult, len(fleet))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, ac := range fleet {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			report := s.checker.CheckAirworthiness(ac.ID)
			metrics.Record(report, ac.Registration)
			results[i] = SweepResult{Registration: ac.Registration, Report: report}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("sweep interrupted: %w", err)
	}

	s.forgetRemoved(results)
	metrics.SweepDuration.Observe(time.Since(start).Seconds())

	var grounded int
	for _, r := range results {
		if !r.Report.IsReady {
			grounded++
			slog.Debug("Aircraft not airworthy",
				"registration", r.Registration,
				"errors", r.Report.ErrorMessages(),
			)
		}
	}
	slog.Info("Readiness sweep completed",
		"aircraft", len(results),
		"airworthy", len(results)-grounded,
		"grounded", grounded,
		"duration", time.Since(start),
	)
	return nil
}

// LastResults returns the outcomes of the most recent completed sweep
func (s *ReadinessSweep) LastResults() []SweepResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SweepResult(nil), s.last...)
}

// forgetRemoved drops gauges of aircraft that are no longer in the fleet
func (s *ReadinessSweep) forgetRemoved(results []SweepResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := make(map[string]struct{}, len(results))
	for _, r := range results {
		current[r.Registration] = struct{}{}
	}
	for reg := range s.known {
		if _, ok := current[reg]; !ok {
			metrics.Forget(reg)
		}
	}
	s.known = current
	s.last = results
}
