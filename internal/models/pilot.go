package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the storage layout for calendar dates
const DateLayout = "2006-01-02"

// Pilot represents a crew member and their currency records
type Pilot struct {
	ID            uuid.UUID   `json:"id"`
	FullName      string      `json:"full_name"`
	LicenseExpiry time.Time   `json:"license_expiry"`
	MedicalExpiry time.Time   `json:"medical_expiry"`
	RatedModels   []uuid.UUID `json:"rated_models"` // Aircraft models the pilot holds a type rating for
}

// IsRatedFor reports whether the pilot holds a type rating for the model
func (p *Pilot) IsRatedFor(modelID uuid.UUID) bool {
	return slices.Contains(p.RatedModels, modelID)
}

// CivilDate strips the clock from t, keeping its calendar date
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
