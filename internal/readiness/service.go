// Package readiness decides whether an aircraft and pilot are fit for a
// planned flight.
package readiness

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"preflight/internal/balance"
	"preflight/internal/models"
)

const (
	// ServiceWarningHours is the remaining engine time below which a warning is raised
	ServiceWarningHours = 10.0

	// MinorDefectLimit is the number of open minor defects that grounds an aircraft
	MinorDefectLimit = 3

	// LicenseWarningDays is the window before license expiry that raises a warning
	LicenseWarningDays = 30

	displayDateLayout = "02.01.2006"
)

// Fleet status labels, highest precedence first
const (
	StatusCriticalDefect  = "CRITICAL DEFECT"
	StatusServiceRequired = "SERVICE REQ"
	StatusTooManyDefects  = "TOO MANY DEFECTS"
	StatusServiceSoon     = "SERVICE SOON"
	StatusReady           = "READY"
)

// Store provides read-only lookups of the records a readiness check needs.
// Missing records are reported with models.ErrNotFound.
type Store interface {
	FindAircraftByID(id uuid.UUID) (*models.Aircraft, error)
	FindPilotByID(id uuid.UUID) (*models.Pilot, error)
	FindModelByID(id uuid.UUID) (*models.AircraftModel, error)
	ListActiveDefectsForAircraft(aircraftID uuid.UUID) ([]models.ActiveDefect, error)
}

// Service runs the pre-flight checklist. It keeps no state between calls;
// concurrent checks are independent.
type Service struct {
	store      Store
	calculator *balance.Calculator
	now        func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides the source of the current date
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a readiness service over the given store
func NewService(store Store, calculator *balance.Calculator, opts ...Option) *Service {
	if calculator == nil {
		calculator = balance.NewCalculator(nil)
	}
	s := &Service{
		store:      store,
		calculator: calculator,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckReadiness evaluates airworthiness, crew currency and weight-and-balance
// for the flight. Every check contributes its findings; only a missing
// aircraft ends the evaluation early.
func (s *Service) CheckReadiness(aircraftID, pilotID uuid.UUID, params models.FlightParams) models.ReadinessReport {
	report := newReport()

	aircraft, ok := s.loadAircraft(aircraftID, &report)
	if !ok {
		return report
	}

	s.checkEngineHours(aircraft, &report)
	s.checkDefects(aircraft, &report)
	s.checkPilot(aircraft, pilotID, &report)
	s.checkBalance(aircraft, params, &report)

	report.IsReady = len(report.Errors) == 0
	slog.Debug("Readiness evaluated",
		"registration", aircraft.Registration,
		"pilot_id", pilotID,
		"ready", report.IsReady,
		"errors", len(report.Errors),
		"warnings", len(report.Warnings),
	)
	return report
}

// CheckAirworthiness runs the aircraft checks only: engine hours and open defects
func (s *Service) CheckAirworthiness(aircraftID uuid.UUID) models.ReadinessReport {
	report := newReport()

	aircraft, ok := s.loadAircraft(aircraftID, &report)
	if !ok {
		return report
	}

	s.checkEngineHours(aircraft, &report)
	s.checkDefects(aircraft, &report)

	report.IsReady = len(report.Errors) == 0
	return report
}

// AircraftStatus condenses the airworthiness of a listed aircraft into one
// label. A defect of unrecognized severity counts as critical. Open minor
// defects below the limit yield "WARNINGS (n)".
func (s *Service) AircraftStatus(aircraft *models.Aircraft) (string, error) {
	defects, err := s.store.ListActiveDefectsForAircraft(aircraft.ID)
	if err != nil {
		return "", err
	}

	var critical, minor int
	for _, d := range defects {
		if d.Severity == models.SeverityMinor {
			minor++
		} else {
			critical++
		}
	}

	remaining := aircraft.HoursRemaining()
	switch {
	case critical > 0:
		return StatusCriticalDefect, nil
	case remaining <= 0:
		return StatusServiceRequired, nil
	case minor >= MinorDefectLimit:
		return StatusTooManyDefects, nil
	case remaining < ServiceWarningHours:
		return StatusServiceSoon, nil
	case minor > 0:
		return fmt.Sprintf("WARNINGS (%d)", minor), nil
	}
	return StatusReady, nil
}

func newReport() models.ReadinessReport {
	return models.ReadinessReport{
		IsReady:  true,
		Errors:   []models.Finding{},
		Warnings: []models.Finding{},
	}
}

func (s *Service) loadAircraft(id uuid.UUID, report *models.ReadinessReport) (*models.Aircraft, bool) {
	aircraft, err := s.store.FindAircraftByID(id)
	switch {
	case errors.Is(err, models.ErrNotFound):
		report.AddError(models.CategoryNotFound, "Aircraft %s not found", id)
		return nil, false
	case err != nil:
		slog.Warn("Failed to load aircraft", "aircraft_id", id, "error", err)
		report.AddError(models.CategoryLookup, "Aircraft record unavailable: %v", err)
		return nil, false
	}
	return aircraft, true
}

func (s *Service) checkEngineHours(aircraft *models.Aircraft, report *models.ReadinessReport) {
	remaining := aircraft.HoursRemaining()
	switch {
	case remaining <= 0:
		report.AddError(models.CategoryResource, "Engine hours exhausted: service overrun by %.2f h", math.Abs(remaining))
	case remaining < ServiceWarningHours:
		report.AddWarning(models.CategoryResource, "Engine service due soon: %.2f h remaining", remaining)
	}
}

func (s *Service) checkDefects(aircraft *models.Aircraft, report *models.ReadinessReport) {
	defects, err := s.store.ListActiveDefectsForAircraft(aircraft.ID)
	if err != nil {
		slog.Warn("Failed to load active defects", "aircraft_id", aircraft.ID, "error", err)
		report.AddError(models.CategoryLookup, "Defect records unavailable: %v", err)
		return
	}

	var critical, minor []string
	var unclassified []models.ActiveDefect
	for _, d := range defects {
		switch d.Severity {
		case models.SeverityCritical:
			critical = append(critical, d.Description)
		case models.SeverityMinor:
			minor = append(minor, d.Description)
		default:
			unclassified = append(unclassified, d)
		}
	}

	if len(critical) > 0 {
		report.AddError(models.CategorySafety, "Departure prohibited: %d critical defect(s) open%s",
			len(critical), defectNames(critical))
	}

	switch {
	case len(minor) >= MinorDefectLimit:
		report.AddError(models.CategorySafety, "Departure prohibited: minor defect limit exceeded (%d of %d allowed)%s",
			len(minor), MinorDefectLimit, defectNames(minor))
	case len(minor) > 0:
		report.AddWarning(models.CategorySafety, "Minor defects open: %d%s", len(minor), defectNames(minor))
	}

	// Unknown severities are treated as grounding until reclassified
	for _, d := range unclassified {
		report.AddError(models.CategorySafety, "Defect %q has unrecognized severity %q", d.Description, string(d.Severity))
	}
}

func (s *Service) checkPilot(aircraft *models.Aircraft, pilotID uuid.UUID, report *models.ReadinessReport) {
	pilot, err := s.store.FindPilotByID(pilotID)
	switch {
	case errors.Is(err, models.ErrNotFound):
		report.AddError(models.CategoryNotFound, "Pilot not selected or not found")
		return
	case err != nil:
		slog.Warn("Failed to load pilot", "pilot_id", pilotID, "error", err)
		report.AddError(models.CategoryLookup, "Pilot record unavailable: %v", err)
		return
	}

	today := models.CivilDate(s.now())

	license := models.CivilDate(pilot.LicenseExpiry)
	switch {
	case license.Before(today):
		report.AddError(models.CategoryResource, "Pilot license expired on %s", license.Format(displayDateLayout))
	case license.Before(today.AddDate(0, 0, LicenseWarningDays)):
		report.AddWarning(models.CategoryResource, "Pilot license expires on %s, less than %d days from now",
			license.Format(displayDateLayout), LicenseWarningDays)
	}

	medical := models.CivilDate(pilot.MedicalExpiry)
	if medical.Before(today) {
		report.AddError(models.CategoryResource, "Pilot medical certificate expired on %s", medical.Format(displayDateLayout))
	}

	if !pilot.IsRatedFor(aircraft.ModelID) {
		report.AddError(models.CategorySafety, "Pilot %s holds no type rating for '%s'", pilot.FullName, modelLabel(aircraft))
	}
}

func (s *Service) checkBalance(aircraft *models.Aircraft, params models.FlightParams, report *models.ReadinessReport) {
	model, err := s.store.FindModelByID(aircraft.ModelID)
	switch {
	case errors.Is(err, models.ErrNotFound):
		report.AddError(models.CategoryNotFound, "Aircraft model %s not found: performance data missing", aircraft.ModelID)
		return
	case err != nil:
		slog.Warn("Failed to load aircraft model", "model_id", aircraft.ModelID, "error", err)
		report.AddError(models.CategoryLookup, "Aircraft model record unavailable: %v", err)
		return
	}

	result := s.calculator.Calculate(model, aircraft, params)

	var failed []string
	if !result.IsWeightOk {
		failed = append(failed, "Mass")
	}
	if !result.IsCGOk {
		failed = append(failed, "CG")
	}
	if !result.IsFuelOk {
		failed = append(failed, "Fuel")
	}
	if len(failed) == 0 {
		return
	}

	report.AddError(models.CategoryBalance, "Limits violated: %s", strings.Join(failed, ", "))
	if result.Message != "" {
		report.AddError(models.CategoryBalance, "%s", result.Message)
	}
}

// defectNames renders descriptions as a parenthesised suffix, or nothing when
// none are known
func defectNames(descriptions []string) string {
	named := make([]string, 0, len(descriptions))
	for _, d := range descriptions {
		if d != "" {
			named = append(named, d)
		}
	}
	if len(named) == 0 {
		return ""
	}
	return " (" + strings.Join(named, ", ") + ")"
}

func modelLabel(aircraft *models.Aircraft) string {
	if aircraft.ModelName != "" {
		return aircraft.ModelName
	}
	return aircraft.ModelID.String()
}
