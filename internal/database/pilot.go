package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"preflight/internal/models"
)

type PilotRepository interface {
	Create(pilot *models.Pilot) error
	FindByID(id uuid.UUID) (*models.Pilot, error)
	List() ([]*models.Pilot, error)
	Delete(id uuid.UUID) error
}

type pilotRepository struct {
	db *sql.DB
}

func NewPilotRepository(db *sql.DB) PilotRepository {
	return &pilotRepository{db: db}
}

// Create inserts a pilot and their type ratings in a single transaction
func (r *pilotRepository) Create(pilot *models.Pilot) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertPilot(tx, pilot); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// insertPilot writes the pilot row and one row per type rating. Callers own
// the transaction.
func insertPilot(ex execer, pilot *models.Pilot) error {
	if pilot.ID == uuid.Nil {
		pilot.ID = uuid.New()
	}

	if _, err := ex.Exec(`INSERT INTO pilots (
		id, full_name, license_expiry_date, medical_expiry_date
	) VALUES (?, ?, ?, ?)`,
		pilot.ID, pilot.FullName,
		pilot.LicenseExpiry.Format(models.DateLayout),
		pilot.MedicalExpiry.Format(models.DateLayout),
	); err != nil {
		return fmt.Errorf("failed to insert pilot: %w", err)
	}

	for _, modelID := range pilot.RatedModels {
		if _, err := ex.Exec("INSERT OR IGNORE INTO pilot_ratings (pilot_id, model_id) VALUES (?, ?)", pilot.ID, modelID); err != nil {
			return fmt.Errorf("failed to insert type rating: %w", err)
		}
	}
	return nil
}

func (r *pilotRepository) FindByID(id uuid.UUID) (*models.Pilot, error) {
	p, err := scanPilot(r.db.QueryRow(`SELECT id, full_name, license_expiry_date, medical_expiry_date
		FROM pilots WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query pilot: %w", err)
	}

	ratings, err := r.ratings("SELECT pilot_id, model_id FROM pilot_ratings WHERE pilot_id = ?", id)
	if err != nil {
		return nil, err
	}
	p.RatedModels = ratings[p.ID]
	return p, nil
}

// List returns all pilots ordered by name
func (r *pilotRepository) List() ([]*models.Pilot, error) {
	rows, err := r.db.Query(`SELECT id, full_name, license_expiry_date, medical_expiry_date
		FROM pilots ORDER BY full_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query pilots: %w", err)
	}
	defer rows.Close()

	var list []*models.Pilot
	for rows.Next() {
		p, err := scanPilot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pilot: %w", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pilots: %w", err)
	}

	ratings, err := r.ratings("SELECT pilot_id, model_id FROM pilot_ratings")
	if err != nil {
		return nil, err
	}
	for _, p := range list {
		p.RatedModels = ratings[p.ID]
	}
	return list, nil
}

// Delete removes a pilot and their type ratings
func (r *pilotRepository) Delete(id uuid.UUID) error {
	res, err := r.db.Exec("DELETE FROM pilots WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete pilot: %w", err)
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

func (r *pilotRepository) ratings(query string, args ...any) (map[uuid.UUID][]uuid.UUID, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query type ratings: %w", err)
	}
	defer rows.Close()

	ratings := make(map[uuid.UUID][]uuid.UUID)
	for rows.Next() {
		var pilotID, modelID uuid.UUID
		if err := rows.Scan(&pilotID, &modelID); err != nil {
			return nil, fmt.Errorf("failed to scan type rating: %w", err)
		}
		ratings[pilotID] = append(ratings[pilotID], modelID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate type ratings: %w", err)
	}
	return ratings, nil
}

func scanPilot(row rowScanner) (*models.Pilot, error) {
	p := &models.Pilot{}
	var license, medical string
	if err := row.Scan(&p.ID, &p.FullName, &license, &medical); err != nil {
		return nil, err
	}

	var err error
	if p.LicenseExpiry, err = time.Parse(models.DateLayout, license); err != nil {
		return nil, fmt.Errorf("invalid license expiry date %q: %w", license, err)
	}
	if p.MedicalExpiry, err = time.Parse(models.DateLayout, medical); err != nil {
		return nil, fmt.Errorf("invalid medical expiry date %q: %w", medical, err)
	}
	return p, nil
}
