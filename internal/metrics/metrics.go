// Package metrics exposes fleet readiness as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"preflight/internal/models"
)

var (
	// ReadinessChecksTotal counts evaluations by outcome (go/no_go)
	ReadinessChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "preflight_readiness_checks_total",
			Help: "Total number of readiness evaluations by result.",
		},
		[]string{"result"},
	)

	FindingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "preflight_findings_total",
			Help: "Total number of findings raised by category and level.",
		},
		[]string{"category", "level"},
	)

	// AircraftAirworthy is 1 when the aircraft passed its last sweep, 0 otherwise
	AircraftAirworthy = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "preflight_aircraft_airworthy",
			Help: "Airworthiness of each aircraft at the last sweep (1=GO, 0=NO-GO).",
		},
		[]string{"registration"},
	)

	SweepDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "preflight_sweep_duration_seconds",
			Help:    "Duration of fleet readiness sweeps.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

const (
	ResultGo   = "go"
	ResultNoGo = "no_go"
)

func init() {
	prometheus.MustRegister(ReadinessChecksTotal)
	prometheus.MustRegister(FindingsTotal)
	prometheus.MustRegister(AircraftAirworthy)
	prometheus.MustRegister(SweepDuration)
}

// Record counts one evaluation and its findings. When registration is not
// empty the aircraft's airworthiness gauge is updated too.
func Record(report models.ReadinessReport, registration string) {
	result := ResultGo
	if !report.IsReady {
		result = ResultNoGo
	}
	ReadinessChecksTotal.WithLabelValues(result).Inc()

	for _, f := range report.Errors {
		FindingsTotal.WithLabelValues(string(f.Category), "error").Inc()
	}
	for _, f := range report.Warnings {
		FindingsTotal.WithLabelValues(string(f.Category), "warning").Inc()
	}

	if registration == "" {
		return
	}
	if report.IsReady {
		AircraftAirworthy.WithLabelValues(registration).Set(1)
	} else {
		AircraftAirworthy.WithLabelValues(registration).Set(0)
	}
}

// Forget drops the gauge of an aircraft that left the fleet
func Forget(registration string) {
	AircraftAirworthy.DeleteLabelValues(registration)
}
