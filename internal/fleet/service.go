// Package fleet implements the write-side workflows that change fleet state:
// registrations, defect reports, flight logging and engine maintenance.
package fleet

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"preflight/internal/database"
	"preflight/internal/models"
)

// ServiceInterval is the engine hours granted by an engine maintenance
const ServiceInterval = 100.0

var (
	ErrEmptyRegistration = errors.New("registration must not be empty")
	ErrModelRequired     = errors.New("aircraft model must be selected")
	ErrEmptyPilotName    = errors.New("pilot name must not be empty")
	ErrInvalidDates      = errors.New("license and medical expiry dates are required")
	ErrAircraftRequired  = errors.New("aircraft must be selected")
	ErrDefectRequired    = errors.New("defect must be selected")
	ErrInvalidDuration   = errors.New("flight duration must be greater than 0")
)

// Service applies fleet workflows to the database
type Service struct {
	db  *database.DB
	now func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides the clock used to date demo records
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(db *database.DB, opts ...Option) *Service {
	s := &Service{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterAircraft validates and stores a new aircraft
func (s *Service) RegisterAircraft(aircraft *models.Aircraft) error {
	if err := normalizeAircraft(aircraft); err != nil {
		return err
	}

	if err := s.db.AircraftRepository().Create(aircraft); err != nil {
		return fmt.Errorf("failed to register aircraft %s: %w", aircraft.Registration, err)
	}
	slog.Info("Aircraft registered", "registration", aircraft.Registration, "id", aircraft.ID)
	return nil
}

// RegisterPilot validates and stores a new pilot with their type ratings
func (s *Service) RegisterPilot(pilot *models.Pilot) error {
	if err := normalizePilot(pilot); err != nil {
		return err
	}

	if err := s.db.PilotRepository().Create(pilot); err != nil {
		return fmt.Errorf("failed to register pilot %s: %w", pilot.FullName, err)
	}
	slog.Info("Pilot registered", "pilot", pilot.FullName, "id", pilot.ID, "ratings", len(pilot.RatedModels))
	return nil
}

// ReportDefect opens a defect of the given catalog type on an aircraft
func (s *Service) ReportDefect(aircraftID, defectTypeID uuid.UUID) (*models.ActiveDefect, error) {
	if aircraftID == uuid.Nil {
		return nil, ErrAircraftRequired
	}
	if defectTypeID == uuid.Nil {
		return nil, ErrDefectRequired
	}

	d, err := s.db.DefectRepository().AddActive(aircraftID, defectTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to report defect: %w", err)
	}
	slog.Info("Defect reported", "aircraft_id", aircraftID, "defect_id", d.ID)
	return d, nil
}

// ResolveDefect closes an open defect
func (s *Service) ResolveDefect(defectID uuid.UUID) error {
	if defectID == uuid.Nil {
		return ErrDefectRequired
	}
	if err := s.db.DefectRepository().RemoveActive(defectID); err != nil {
		return fmt.Errorf("failed to resolve defect %s: %w", defectID, err)
	}
	slog.Info("Defect resolved", "defect_id", defectID)
	return nil
}

// CommitFlight adds the flown time to the aircraft's engine hours
func (s *Service) CommitFlight(aircraftID uuid.UUID, minutes int) error {
	if minutes <= 0 {
		return ErrInvalidDuration
	}

	hours := float64(minutes) / 60.0
	if err := s.db.AircraftRepository().AddEngineHours(aircraftID, hours); err != nil {
		return fmt.Errorf("failed to commit flight for aircraft %s: %w", aircraftID, err)
	}
	slog.Info("Flight committed", "aircraft_id", aircraftID, "hours", hours)
	return nil
}

// PerformEngineMaintenance moves the next engine service to ServiceInterval
// hours past the current total
func (s *Service) PerformEngineMaintenance(aircraftID uuid.UUID) error {
	ac, err := s.db.AircraftRepository().FindByID(aircraftID)
	if err != nil {
		return fmt.Errorf("failed to load aircraft %s: %w", aircraftID, err)
	}

	next := ac.EngineHoursTotal + ServiceInterval
	if err := s.db.AircraftRepository().SetNextService(aircraftID, next); err != nil {
		return fmt.Errorf("failed to update service limit: %w", err)
	}
	slog.Info("Engine maintenance recorded", "registration", ac.Registration, "next_service", next)
	return nil
}

// DeleteAircraft removes an aircraft and its open defects
func (s *Service) DeleteAircraft(aircraftID uuid.UUID) error {
	if err := s.db.AircraftRepository().Delete(aircraftID); err != nil {
		return fmt.Errorf("failed to delete aircraft %s: %w", aircraftID, err)
	}
	return nil
}

func (s *Service) DeletePilot(pilotID uuid.UUID) error {
	if err := s.db.PilotRepository().Delete(pilotID); err != nil {
		return fmt.Errorf("failed to delete pilot %s: %w", pilotID, err)
	}
	return nil
}

// ClearFleetData removes aircraft, pilots and open defects
func (s *Service) ClearFleetData() error {
	if err := s.db.ClearFleetData(); err != nil {
		return err
	}
	slog.Info("Operational data cleared")
	return nil
}

func normalizeAircraft(aircraft *models.Aircraft) error {
	aircraft.Registration = strings.TrimSpace(aircraft.Registration)
	if aircraft.Registration == "" {
		return ErrEmptyRegistration
	}
	if aircraft.ModelID == uuid.Nil {
		return ErrModelRequired
	}
	return nil
}

func normalizePilot(pilot *models.Pilot) error {
	pilot.FullName = strings.TrimSpace(pilot.FullName)
	if pilot.FullName == "" {
		return ErrEmptyPilotName
	}
	if pilot.LicenseExpiry.IsZero() || pilot.MedicalExpiry.IsZero() {
		return ErrInvalidDates
	}
	return nil
}
