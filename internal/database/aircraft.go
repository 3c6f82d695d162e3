package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"preflight/internal/models"
)

type AircraftRepository interface {
	Create(aircraft *models.Aircraft) error
	FindByID(id uuid.UUID) (*models.Aircraft, error)
	FindByRegistration(registration string) (*models.Aircraft, error)
	List() ([]*models.Aircraft, error)
	AddEngineHours(id uuid.UUID, hours float64) error
	SetNextService(id uuid.UUID, nextServiceHours float64) error
	Delete(id uuid.UUID) error
}

type aircraftRepository struct {
	db *sql.DB
}

func NewAircraftRepository(db *sql.DB) AircraftRepository {
	return &aircraftRepository{db: db}
}

const selectAircraft = `SELECT a.id, a.model_id, a.registration, a.engine_hours_total,
	a.engine_hours_next_service, m.name, m.fuel_capacity
	FROM aircraft a
	JOIN aircraft_models m ON m.id = a.model_id`

// Create inserts an aircraft, assigning an ID if it has none
func (r *aircraftRepository) Create(aircraft *models.Aircraft) error {
	return insertAircraft(r.db, aircraft)
}

func insertAircraft(ex execer, aircraft *models.Aircraft) error {
	if aircraft.ID == uuid.Nil {
		aircraft.ID = uuid.New()
	}

	_, err := ex.Exec(`INSERT INTO aircraft (
		id, model_id, registration, engine_hours_total, engine_hours_next_service
	) VALUES (?, ?, ?, ?, ?)`,
		aircraft.ID, aircraft.ModelID, aircraft.Registration,
		aircraft.EngineHoursTotal, aircraft.EngineHoursService,
	)
	if err != nil {
		return fmt.Errorf("failed to insert aircraft: %w", err)
	}
	return nil
}

func (r *aircraftRepository) FindByID(id uuid.UUID) (*models.Aircraft, error) {
	return r.findOne(selectAircraft+" WHERE a.id = ?", id)
}

func (r *aircraftRepository) FindByRegistration(registration string) (*models.Aircraft, error) {
	return r.findOne(selectAircraft+" WHERE a.registration = ?", registration)
}

func (r *aircraftRepository) findOne(query string, arg any) (*models.Aircraft, error) {
	ac, err := scanAircraft(r.db.QueryRow(query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query aircraft: %w", err)
	}
	return ac, nil
}

// List returns all aircraft ordered by registration
func (r *aircraftRepository) List() ([]*models.Aircraft, error) {
	rows, err := r.db.Query(selectAircraft + " ORDER BY a.registration")
	if err != nil {
		return nil, fmt.Errorf("failed to query aircraft: %w", err)
	}
	defer rows.Close()

	var list []*models.Aircraft
	for rows.Next() {
		ac, err := scanAircraft(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan aircraft: %w", err)
		}
		list = append(list, ac)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate aircraft: %w", err)
	}
	return list, nil
}

// AddEngineHours adds flown hours to the aircraft's engine total
func (r *aircraftRepository) AddEngineHours(id uuid.UUID, hours float64) error {
	return r.update("UPDATE aircraft SET engine_hours_total = engine_hours_total + ? WHERE id = ?", hours, id)
}

// SetNextService sets the engine hours at which the next service is due
func (r *aircraftRepository) SetNextService(id uuid.UUID, nextServiceHours float64) error {
	return r.update("UPDATE aircraft SET engine_hours_next_service = ? WHERE id = ?", nextServiceHours, id)
}

// Delete removes an aircraft. Its open defects go with it.
func (r *aircraftRepository) Delete(id uuid.UUID) error {
	return r.update("DELETE FROM aircraft WHERE id = ?", id)
}

func (r *aircraftRepository) update(query string, args ...any) error {
	res, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update aircraft: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAircraft(row rowScanner) (*models.Aircraft, error) {
	ac := &models.Aircraft{}
	err := row.Scan(
		&ac.ID, &ac.ModelID, &ac.Registration, &ac.EngineHoursTotal,
		&ac.EngineHoursService, &ac.ModelName, &ac.FuelCapacity,
	)
	if err != nil {
		return nil, err
	}
	return ac, nil
}
