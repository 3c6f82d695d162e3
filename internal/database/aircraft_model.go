package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"preflight/internal/models"
)

type ModelRepository interface {
	Create(model *models.AircraftModel) error
	FindByID(id uuid.UUID) (*models.AircraftModel, error)
	List() ([]*models.AircraftModel, error)
}

type modelRepository struct {
	db *sql.DB
}

func NewModelRepository(db *sql.DB) ModelRepository {
	return &modelRepository{db: db}
}

// Create inserts an aircraft model, assigning an ID if it has none
func (r *modelRepository) Create(model *models.AircraftModel) error {
	return insertModel(r.db, model)
}

func insertModel(ex execer, model *models.AircraftModel) error {
	if model.ID == uuid.Nil {
		model.ID = uuid.New()
	}

	_, err := ex.Exec(`INSERT INTO aircraft_models (
		id, name, max_takeoff_weight, empty_weight, fuel_capacity, fuel_consumption
	) VALUES (?, ?, ?, ?, ?, ?)`,
		model.ID, model.Name, model.MaxTakeoffWeight, model.EmptyWeight,
		model.FuelCapacity, model.FuelConsumption,
	)
	if err != nil {
		return fmt.Errorf("failed to insert aircraft model: %w", err)
	}
	return nil
}

func (r *modelRepository) FindByID(id uuid.UUID) (*models.AircraftModel, error) {
	m := &models.AircraftModel{}
	err := r.db.QueryRow(`SELECT id, name, max_takeoff_weight, empty_weight, fuel_capacity, fuel_consumption
		FROM aircraft_models WHERE id = ?`, id,
	).Scan(&m.ID, &m.Name, &m.MaxTakeoffWeight, &m.EmptyWeight, &m.FuelCapacity, &m.FuelConsumption)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query aircraft model: %w", err)
	}
	return m, nil
}

func (r *modelRepository) List() ([]*models.AircraftModel, error) {
	rows, err := r.db.Query(`SELECT id, name, max_takeoff_weight, empty_weight, fuel_capacity, fuel_consumption
		FROM aircraft_models ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query aircraft models: %w", err)
	}
	defer rows.Close()

	var list []*models.AircraftModel
	for rows.Next() {
		m := &models.AircraftModel{}
		if err := rows.Scan(&m.ID, &m.Name, &m.MaxTakeoffWeight, &m.EmptyWeight, &m.FuelCapacity, &m.FuelConsumption); err != nil {
			return nil, fmt.Errorf("failed to scan aircraft model: %w", err)
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate aircraft models: %w", err)
	}
	return list, nil
}
