package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"preflight/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "preflight.db"))
	require.NoError(t, err)
	require.NotNil(t, db)

	t.Cleanup(func() {
		assert.NoError(t, db.Close())
	})
	return db
}

func createCessna(t *testing.T, db *DB) (*models.AircraftModel, *models.Aircraft) {
	t.Helper()

	model := &models.AircraftModel{
		Name:             "Cessna 172N",
		MaxTakeoffWeight: 1043,
		EmptyWeight:      767,
		FuelCapacity:     212,
		FuelConsumption:  35,
	}
	require.NoError(t, db.ModelRepository().Create(model))

	aircraft := &models.Aircraft{
		ModelID:            model.ID,
		Registration:       "RA-01772",
		EngineHoursTotal:   1450,
		EngineHoursService: 1500,
	}
	require.NoError(t, db.AircraftRepository().Create(aircraft))
	return model, aircraft
}

func findDefectType(t *testing.T, db *DB, sev models.Severity) models.DefectType {
	t.Helper()

	types, err := db.DefectRepository().ListTypes()
	require.NoError(t, err)
	for _, dt := range types {
		if dt.Severity == sev {
			return dt
		}
	}
	t.Fatalf("no %s defect type in catalog", sev)
	return models.DefectType{}
}

func TestNew(t *testing.T) {
	db := setupTestDB(t)

	version, err := db.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	types, err := db.DefectRepository().ListTypes()
	require.NoError(t, err)
	assert.Len(t, types, len(defaultDefectTypes))
}

func TestNew_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preflight.db")

	db, err := New(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Catalog is not seeded twice
	db, err = New(path)
	require.NoError(t, err)
	defer db.Close()

	types, err := db.DefectRepository().ListTypes()
	require.NoError(t, err)
	assert.Len(t, types, len(defaultDefectTypes))
}

func TestAircraft_FindByID(t *testing.T) {
	db := setupTestDB(t)
	model, aircraft := createCessna(t, db)

	found, err := db.FindAircraftByID(aircraft.ID)
	require.NoError(t, err)
	assert.Equal(t, aircraft.ID, found.ID)
	assert.Equal(t, model.ID, found.ModelID)
	assert.Equal(t, "RA-01772", found.Registration)
	assert.Equal(t, "Cessna 172N", found.ModelName)
	assert.Equal(t, 212.0, found.FuelCapacity)
	assert.InDelta(t, 50.0, found.HoursRemaining(), 1e-9)

	byReg, err := db.AircraftRepository().FindByRegistration("RA-01772")
	require.NoError(t, err)
	assert.Equal(t, aircraft.ID, byReg.ID)

	_, err = db.FindAircraftByID(uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAircraft_DuplicateRegistration(t *testing.T) {
	db := setupTestDB(t)
	model, _ := createCessna(t, db)

	err := db.AircraftRepository().Create(&models.Aircraft{ModelID: model.ID, Registration: "RA-01772", EngineHoursService: 100})
	assert.Error(t, err)
}

func TestAircraft_EngineHours(t *testing.T) {
	db := setupTestDB(t)
	_, aircraft := createCessna(t, db)
	repo := db.AircraftRepository()

	require.NoError(t, repo.AddEngineHours(aircraft.ID, 1.5))
	require.NoError(t, repo.SetNextService(aircraft.ID, 1551.5))

	found, err := repo.FindByID(aircraft.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1451.5, found.EngineHoursTotal, 1e-9)
	assert.InDelta(t, 1551.5, found.EngineHoursService, 1e-9)

	assert.ErrorIs(t, repo.AddEngineHours(uuid.New(), 1), models.ErrNotFound)
}

func TestAircraft_List(t *testing.T) {
	db := setupTestDB(t)
	model, _ := createCessna(t, db)
	require.NoError(t, db.AircraftRepository().Create(&models.Aircraft{ModelID: model.ID, Registration: "RA-00001", EngineHoursService: 100}))

	list, err := db.AircraftRepository().List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "RA-00001", list[0].Registration)
	assert.Equal(t, "RA-01772", list[1].Registration)
}

func TestAircraft_DeleteCascadesDefects(t *testing.T) {
	db := setupTestDB(t)
	_, aircraft := createCessna(t, db)
	minor := findDefectType(t, db, models.SeverityMinor)

	_, err := db.DefectRepository().AddActive(aircraft.ID, minor.ID)
	require.NoError(t, err)

	require.NoError(t, db.AircraftRepository().Delete(aircraft.ID))

	defects, err := db.ListActiveDefectsForAircraft(aircraft.ID)
	require.NoError(t, err)
	assert.Empty(t, defects)
	assert.ErrorIs(t, db.AircraftRepository().Delete(aircraft.ID), models.ErrNotFound)
}

func TestModel_FindByID(t *testing.T) {
	db := setupTestDB(t)
	model, _ := createCessna(t, db)

	found, err := db.FindModelByID(model.ID)
	require.NoError(t, err)
	assert.Equal(t, *model, *found)

	_, err = db.FindModelByID(uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)

	list, err := db.ModelRepository().List()
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestPilot_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	model, _ := createCessna(t, db)

	pilot := &models.Pilot{
		FullName:      "Ivan Ivanov",
		LicenseExpiry: time.Date(2027, 5, 1, 0, 0, 0, 0, time.UTC),
		MedicalExpiry: time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		RatedModels:   []uuid.UUID{model.ID},
	}
	require.NoError(t, db.PilotRepository().Create(pilot))

	found, err := db.FindPilotByID(pilot.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ivan Ivanov", found.FullName)
	assert.True(t, pilot.LicenseExpiry.Equal(found.LicenseExpiry))
	assert.True(t, pilot.MedicalExpiry.Equal(found.MedicalExpiry))
	assert.True(t, found.IsRatedFor(model.ID))

	_, err = db.FindPilotByID(uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPilot_ListAndDelete(t *testing.T) {
	db := setupTestDB(t)
	model, _ := createCessna(t, db)
	repo := db.PilotRepository()

	unrated := &models.Pilot{FullName: "Petr Petrov", LicenseExpiry: time.Now(), MedicalExpiry: time.Now()}
	rated := &models.Pilot{FullName: "Anna Smirnova", LicenseExpiry: time.Now(), MedicalExpiry: time.Now(), RatedModels: []uuid.UUID{model.ID}}
	require.NoError(t, repo.Create(unrated))
	require.NoError(t, repo.Create(rated))

	list, err := repo.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Anna Smirnova", list[0].FullName)
	assert.Equal(t, []uuid.UUID{model.ID}, list[0].RatedModels)
	assert.Empty(t, list[1].RatedModels)

	require.NoError(t, repo.Delete(rated.ID))
	assert.ErrorIs(t, repo.Delete(rated.ID), models.ErrNotFound)
}

func TestDefects_ActiveLifecycle(t *testing.T) {
	db := setupTestDB(t)
	_, aircraft := createCessna(t, db)
	repo := db.DefectRepository()

	minor := findDefectType(t, db, models.SeverityMinor)
	critical := findDefectType(t, db, models.SeverityCritical)

	first, err := repo.AddActive(aircraft.ID, minor.ID)
	require.NoError(t, err)
	second, err := repo.AddActive(aircraft.ID, critical.ID)
	require.NoError(t, err)

	defects, err := db.ListActiveDefectsForAircraft(aircraft.ID)
	require.NoError(t, err)
	require.Len(t, defects, 2)
	assert.Equal(t, second.ID, defects[0].ID, "newest first")
	assert.Equal(t, models.SeverityCritical, defects[0].Severity)
	assert.Equal(t, critical.Description, defects[0].Description)
	assert.Equal(t, models.SeverityMinor, defects[1].Severity)

	require.NoError(t, repo.RemoveActive(first.ID))
	assert.ErrorIs(t, repo.RemoveActive(first.ID), models.ErrNotFound)

	defects, err = db.ListActiveDefectsForAircraft(aircraft.ID)
	require.NoError(t, err)
	assert.Len(t, defects, 1)
}

func TestDefects_UnknownAircraft(t *testing.T) {
	db := setupTestDB(t)
	minor := findDefectType(t, db, models.SeverityMinor)

	_, err := db.DefectRepository().AddActive(uuid.New(), minor.ID)
	assert.Error(t, err, "foreign keys are enforced")
}

func TestClearFleetData(t *testing.T) {
	db := setupTestDB(t)
	model, aircraft := createCessna(t, db)
	minor := findDefectType(t, db, models.SeverityMinor)
	_, err := db.DefectRepository().AddActive(aircraft.ID, minor.ID)
	require.NoError(t, err)
	require.NoError(t, db.PilotRepository().Create(&models.Pilot{
		FullName: "Ivan Ivanov", LicenseExpiry: time.Now(), MedicalExpiry: time.Now(), RatedModels: []uuid.UUID{model.ID},
	}))

	require.NoError(t, db.ClearFleetData())

	aircraftList, err := db.AircraftRepository().List()
	require.NoError(t, err)
	assert.Empty(t, aircraftList)

	pilots, err := db.PilotRepository().List()
	require.NoError(t, err)
	assert.Empty(t, pilots)

	// Reference data survives
	_, err = db.FindModelByID(model.ID)
	assert.NoError(t, err)
	types, err := db.DefectRepository().ListTypes()
	require.NoError(t, err)
	assert.NotEmpty(t, types)

	require.NoError(t, db.ClearAll())
	_, err = db.FindModelByID(model.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestReplaceFleet(t *testing.T) {
	db := setupTestDB(t)
	createCessna(t, db)
	minor := findDefectType(t, db, models.SeverityMinor)

	piper := &models.AircraftModel{Name: "Piper PA-28", MaxTakeoffWeight: 1155, EmptyWeight: 710, FuelCapacity: 180, FuelConsumption: 32}
	piper.ID = uuid.New()
	aircraft := &models.Aircraft{ModelID: piper.ID, Registration: "RA-33028", EngineHoursTotal: 10, EngineHoursService: 100}
	aircraft.ID = uuid.New()
	pilot := &models.Pilot{
		FullName:      "Petr Petrov",
		LicenseExpiry: time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		MedicalExpiry: time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		RatedModels:   []uuid.UUID{piper.ID},
	}

	require.NoError(t, db.ReplaceFleet(&FleetSnapshot{
		Models:   []*models.AircraftModel{piper},
		Aircraft: []*models.Aircraft{aircraft},
		Pilots:   []*models.Pilot{pilot},
		Defects:  []*models.ActiveDefect{{AircraftID: aircraft.ID, DefectTypeID: minor.ID}},
	}))

	list, err := db.AircraftRepository().List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "RA-33028", list[0].Registration)
	assert.Equal(t, "Piper PA-28", list[0].ModelName)

	stored, err := db.FindPilotByID(pilot.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{piper.ID}, stored.RatedModels)

	defects, err := db.ListActiveDefectsForAircraft(aircraft.ID)
	require.NoError(t, err)
	assert.Len(t, defects, 1)
}

func TestReplaceFleet_RollsBackOnFailure(t *testing.T) {
	db := setupTestDB(t)
	_, existing := createCessna(t, db)

	piper := &models.AircraftModel{ID: uuid.New(), Name: "Piper PA-28", MaxTakeoffWeight: 1155, EmptyWeight: 710, FuelCapacity: 180, FuelConsumption: 32}
	err := db.ReplaceFleet(&FleetSnapshot{
		Models: []*models.AircraftModel{piper},
		Aircraft: []*models.Aircraft{
			{ModelID: piper.ID, Registration: "RA-33028", EngineHoursService: 100},
			{ModelID: uuid.New(), Registration: "RA-44028", EngineHoursService: 100},
		},
	})
	require.Error(t, err)

	list, err := db.AircraftRepository().List()
	require.NoError(t, err)
	require.Len(t, list, 1, "the previous fleet survives a failed replacement")
	assert.Equal(t, existing.ID, list[0].ID)

	all, err := db.ModelRepository().List()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Cessna 172N", all[0].Name)
}
