// Package database stores fleet records in SQLite and serves the lookups of
// the readiness checks.
package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"preflight/internal/models"
)

// DB is the SQLite-backed fleet store. It implements readiness.Store.
type DB struct {
	db *sql.DB

	aircraft AircraftRepository
	models   ModelRepository
	pilots   PilotRepository
	defects  DefectRepository
}

// New opens the database at dbPath, applies migrations and seeds the defect catalog
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on", dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := optimizeSQLite(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to optimize database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	database := &DB{
		db:       db,
		aircraft: NewAircraftRepository(db),
		models:   NewModelRepository(db),
		pilots:   NewPilotRepository(db),
		defects:  NewDefectRepository(db),
	}

	seeded, err := database.defects.EnsureDefaultTypes()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed defect catalog: %w", err)
	}
	if seeded > 0 {
		slog.Info("Seeded default defect catalog", "defect_types", seeded)
	}

	return database, nil
}

// optimizeSQLite applies connection settings for a small local database
func optimizeSQLite(db *sql.DB) error {
	// WAL allows readers during a write
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}

// AircraftRepository returns the aircraft repository
func (d *DB) AircraftRepository() AircraftRepository {
	return d.aircraft
}

// ModelRepository returns the aircraft model repository
func (d *DB) ModelRepository() ModelRepository {
	return d.models
}

// PilotRepository returns the pilot repository
func (d *DB) PilotRepository() PilotRepository {
	return d.pilots
}

// DefectRepository returns the defect repository
func (d *DB) DefectRepository() DefectRepository {
	return d.defects
}

// FindAircraftByID looks up an aircraft with its model projections
func (d *DB) FindAircraftByID(id uuid.UUID) (*models.Aircraft, error) {
	return d.aircraft.FindByID(id)
}

// FindPilotByID looks up a pilot with their type ratings
func (d *DB) FindPilotByID(id uuid.UUID) (*models.Pilot, error) {
	return d.pilots.FindByID(id)
}

// FindModelByID looks up an aircraft model
func (d *DB) FindModelByID(id uuid.UUID) (*models.AircraftModel, error) {
	return d.models.FindByID(id)
}

// ListActiveDefectsForAircraft lists the open defects of an aircraft, newest first
func (d *DB) ListActiveDefectsForAircraft(aircraftID uuid.UUID) ([]models.ActiveDefect, error) {
	return d.defects.ListActiveForAircraft(aircraftID)
}

// execer is satisfied by *sql.DB and *sql.Tx
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// FleetSnapshot is a complete set of fleet records
type FleetSnapshot struct {
	Models   []*models.AircraftModel
	Aircraft []*models.Aircraft
	Pilots   []*models.Pilot
	Defects  []*models.ActiveDefect
}

// ReplaceFleet swaps every fleet record, aircraft models included, for the
// snapshot in one transaction. The defect catalog is kept. Records without
// an ID get one assigned.
func (d *DB) ReplaceFleet(snapshot *FleetSnapshot) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := deleteTables(tx, allFleetTables()); err != nil {
		return err
	}
	for _, m := range snapshot.Models {
		if err := insertModel(tx, m); err != nil {
			return err
		}
	}
	for _, ac := range snapshot.Aircraft {
		if err := insertAircraft(tx, ac); err != nil {
			return err
		}
	}
	for _, p := range snapshot.Pilots {
		if err := insertPilot(tx, p); err != nil {
			return err
		}
	}
	for _, def := range snapshot.Defects {
		if err := insertActiveDefect(tx, def); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// fleetTables lists operational tables in delete order
var fleetTables = []string{"active_defects", "pilot_ratings", "pilots", "aircraft"}

// ClearFleetData removes aircraft, pilots and open defects in one transaction.
// Aircraft models and the defect catalog are kept.
func (d *DB) ClearFleetData() error {
	return d.clearTables(fleetTables)
}

// ClearAll removes every record including aircraft models, keeping the defect catalog
func (d *DB) ClearAll() error {
	return d.clearTables(allFleetTables())
}

func allFleetTables() []string {
	return slices.Concat(fleetTables, []string{"aircraft_models"})
}

func (d *DB) clearTables(tables []string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := deleteTables(tx, tables); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func deleteTables(ex execer, tables []string) error {
	for _, table := range tables {
		if _, err := ex.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}
