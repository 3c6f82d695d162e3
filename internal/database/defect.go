package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"preflight/internal/models"
)

// timestampLayout is fixed-width so stored timestamps sort lexically
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

type DefectRepository interface {
	ListTypes() ([]models.DefectType, error)
	EnsureDefaultTypes() (int, error)
	AddActive(aircraftID, defectTypeID uuid.UUID) (*models.ActiveDefect, error)
	RemoveActive(defectID uuid.UUID) error
	ListActiveForAircraft(aircraftID uuid.UUID) ([]models.ActiveDefect, error)
}

type defectRepository struct {
	db *sql.DB
}

func NewDefectRepository(db *sql.DB) DefectRepository {
	return &defectRepository{db: db}
}

// defaultDefectTypes is the catalog installed into an empty database
var defaultDefectTypes = []struct {
	description string
	severity    models.Severity
}{
	{"Landing light burnt out", models.SeverityMinor},
	{"Seat upholstery worn", models.SeverityMinor},
	{"Instrument backlight inoperative (day)", models.SeverityMinor},
	{"Paint chip on fuselage", models.SeverityMinor},
	{"Cigarette lighter socket inoperative", models.SeverityMinor},
	{"Armrest play", models.SeverityMinor},
	{"Noise in copilot headset", models.SeverityMinor},
	{"Backup navigation light burnt out", models.SeverityMinor},
	{"Chart holder broken", models.SeverityMinor},
	{"Baggage door lock sticking", models.SeverityMinor},
	{"Oil pressure drop", models.SeverityCritical},
	{"Metal particles in oil", models.SeverityCritical},
	{"Windshield crack", models.SeverityCritical},
	{"Asymmetric flap extension", models.SeverityCritical},
	{"Alternator failure", models.SeverityCritical},
	{"Fuel leak", models.SeverityCritical},
	{"Aileron play beyond limits", models.SeverityCritical},
	{"Radio failure", models.SeverityCritical},
	{"Engine vibration", models.SeverityCritical},
	{"Landing gear tire cut", models.SeverityCritical},
	{"Other (requires inspection)", models.SeverityCritical},
}

// ListTypes returns the defect catalog ordered by description
func (r *defectRepository) ListTypes() ([]models.DefectType, error) {
	rows, err := r.db.Query("SELECT id, description, severity FROM defect_types ORDER BY description")
	if err != nil {
		return nil, fmt.Errorf("failed to query defect types: %w", err)
	}
	defer rows.Close()

	var list []models.DefectType
	for rows.Next() {
		var dt models.DefectType
		var severity string
		if err := rows.Scan(&dt.ID, &dt.Description, &severity); err != nil {
			return nil, fmt.Errorf("failed to scan defect type: %w", err)
		}
		dt.Severity = models.Severity(severity)
		list = append(list, dt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate defect types: %w", err)
	}
	return list, nil
}

// EnsureDefaultTypes installs the default catalog when no defect types exist.
// It returns the number of types inserted.
func (r *defectRepository) EnsureDefaultTypes() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM defect_types").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count defect types: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT INTO defect_types (id, description, severity) VALUES (?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, dt := range defaultDefectTypes {
		if _, err := stmt.Exec(uuid.New(), dt.description, string(dt.severity)); err != nil {
			return 0, fmt.Errorf("failed to insert defect type: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return len(defaultDefectTypes), nil
}

// AddActive opens a defect of the given type on an aircraft
func (r *defectRepository) AddActive(aircraftID, defectTypeID uuid.UUID) (*models.ActiveDefect, error) {
	d := &models.ActiveDefect{
		AircraftID:   aircraftID,
		DefectTypeID: defectTypeID,
	}
	if err := insertActiveDefect(r.db, d); err != nil {
		return nil, err
	}
	return d, nil
}

func insertActiveDefect(ex execer, d *models.ActiveDefect) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	_, err := ex.Exec(`INSERT INTO active_defects (id, aircraft_id, defect_type_id, created_at)
		VALUES (?, ?, ?, ?)`,
		d.ID, d.AircraftID, d.DefectTypeID, d.CreatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert active defect: %w", err)
	}
	return nil
}

// RemoveActive closes an open defect
func (r *defectRepository) RemoveActive(defectID uuid.UUID) error {
	res, err := r.db.Exec("DELETE FROM active_defects WHERE id = ?", defectID)
	if err != nil {
		return fmt.Errorf("failed to delete active defect: %w", err)
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

// ListActiveForAircraft returns the open defects of an aircraft joined with
// their catalog entry, newest first
func (r *defectRepository) ListActiveForAircraft(aircraftID uuid.UUID) ([]models.ActiveDefect, error) {
	rows, err := r.db.Query(`SELECT ad.id, ad.aircraft_id, ad.defect_type_id, ad.created_at,
		dt.description, dt.severity
		FROM active_defects ad
		JOIN defect_types dt ON ad.defect_type_id = dt.id
		WHERE ad.aircraft_id = ?
		ORDER BY ad.created_at DESC, ad.rowid DESC`, aircraftID)
	if err != nil {
		return nil, fmt.Errorf("failed to query active defects: %w", err)
	}
	defer rows.Close()

	var list []models.ActiveDefect
	for rows.Next() {
		var d models.ActiveDefect
		var createdAt, severity string
		if err := rows.Scan(&d.ID, &d.AircraftID, &d.DefectTypeID, &createdAt, &d.Description, &severity); err != nil {
			return nil, fmt.Errorf("failed to scan active defect: %w", err)
		}
		if d.CreatedAt, err = time.Parse(timestampLayout, createdAt); err != nil {
			return nil, fmt.Errorf("invalid defect timestamp %q: %w", createdAt, err)
		}
		// Left unparsed so the readiness check can flag unknown values
		d.Severity = models.Severity(severity)
		list = append(list, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate active defects: %w", err)
	}
	return list, nil
}
