package fleet

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"preflight/internal/database"
	"preflight/internal/models"
)

// SeedSummary reports what SeedDemoData created
type SeedSummary struct {
	Models   int `json:"models"`
	Aircraft int `json:"aircraft"`
	Pilots   int `json:"pilots"`
	Defects  int `json:"defects"`
}

// SeedDemoData replaces all fleet records with a demonstration fleet covering
// each readiness outcome: healthy, service due soon, hours exhausted and
// grounded by a critical defect. The replacement is atomic; on error the
// previous records are left in place.
func (s *Service) SeedDemoData() (*SeedSummary, error) {
	types, err := s.db.DefectRepository().ListTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to load defect catalog: %w", err)
	}

	snapshot, err := s.demoFleet(types)
	if err != nil {
		return nil, err
	}
	if err := s.db.ReplaceFleet(snapshot); err != nil {
		return nil, fmt.Errorf("failed to seed demo data: %w", err)
	}

	summary := &SeedSummary{
		Models:   len(snapshot.Models),
		Aircraft: len(snapshot.Aircraft),
		Pilots:   len(snapshot.Pilots),
		Defects:  len(snapshot.Defects),
	}
	slog.Info("Demo data seeded",
		"models", summary.Models,
		"aircraft", summary.Aircraft,
		"pilots", summary.Pilots,
		"defects", summary.Defects)
	return summary, nil
}

func (s *Service) demoFleet(catalog []models.DefectType) (*database.FleetSnapshot, error) {
	cessna := &models.AircraftModel{
		ID:               uuid.New(),
		Name:             "Cessna 172N",
		MaxTakeoffWeight: 1043,
		EmptyWeight:      767,
		FuelCapacity:     212,
		FuelConsumption:  35,
	}
	piper := &models.AircraftModel{
		ID:               uuid.New(),
		Name:             "Piper PA-28",
		MaxTakeoffWeight: 1155,
		EmptyWeight:      710,
		FuelCapacity:     180,
		FuelConsumption:  32,
	}

	fleet := []*models.Aircraft{
		{ID: uuid.New(), ModelID: cessna.ID, Registration: "RA-01772", EngineHoursTotal: 1450, EngineHoursService: 1500},
		{ID: uuid.New(), ModelID: cessna.ID, Registration: "RA-02772", EngineHoursTotal: 1995, EngineHoursService: 2000},
		{ID: uuid.New(), ModelID: piper.ID, Registration: "RA-33028", EngineHoursTotal: 2005, EngineHoursService: 2000},
		{ID: uuid.New(), ModelID: piper.ID, Registration: "RA-44028", EngineHoursTotal: 500, EngineHoursService: 2000},
	}
	for _, ac := range fleet {
		if err := normalizeAircraft(ac); err != nil {
			return nil, err
		}
	}

	now := s.now()
	pilots := []*models.Pilot{
		{
			FullName:      "Ivan Ivanov",
			LicenseExpiry: models.CivilDate(now.AddDate(1, 0, 0)),
			MedicalExpiry: models.CivilDate(now.AddDate(0, 6, 0)),
			RatedModels:   []uuid.UUID{cessna.ID, piper.ID},
		},
		{
			FullName:      "Petr Petrov",
			LicenseExpiry: models.CivilDate(now.AddDate(1, 0, 0)),
			MedicalExpiry: models.CivilDate(now.AddDate(0, 6, 0)),
			RatedModels:   []uuid.UUID{cessna.ID},
		},
	}
	for _, p := range pilots {
		if err := normalizePilot(p); err != nil {
			return nil, err
		}
	}

	var criticalID, minorID uuid.UUID
	for _, dt := range catalog {
		if dt.Severity == models.SeverityCritical && criticalID == uuid.Nil {
			criticalID = dt.ID
		}
		if dt.Severity == models.SeverityMinor && minorID == uuid.Nil {
			minorID = dt.ID
		}
	}

	var defects []*models.ActiveDefect
	for _, d := range []struct {
		aircraft *models.Aircraft
		typeID   uuid.UUID
	}{
		{fleet[3], criticalID},
		{fleet[1], minorID},
	} {
		if d.typeID == uuid.Nil {
			continue
		}
		defects = append(defects, &models.ActiveDefect{AircraftID: d.aircraft.ID, DefectTypeID: d.typeID})
	}

	return &database.FleetSnapshot{
		Models:   []*models.AircraftModel{cessna, piper},
		Aircraft: fleet,
		Pilots:   pilots,
		Defects:  defects,
	}, nil
}
