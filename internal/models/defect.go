package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Severity classifies a defect type
type Severity string

const (
	// SeverityCritical grounds the aircraft
	SeverityCritical Severity = "CRITICAL"
	// SeverityMinor is tolerated up to a count limit
	SeverityMinor Severity = "MINOR"
)

// ParseSeverity converts a stored severity into a Severity.
// Only CRITICAL and MINOR are accepted.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(s) {
	case SeverityCritical:
		return SeverityCritical, nil
	case SeverityMinor:
		return SeverityMinor, nil
	default:
		return "", fmt.Errorf("unknown defect severity: %q", s)
	}
}

// Valid reports whether s is one of the two known severities
func (s Severity) Valid() bool {
	return s == SeverityCritical || s == SeverityMinor
}

func (s Severity) String() string {
	return string(s)
}

// DefectType is an entry of the defect catalog
type DefectType struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Severity    Severity  `json:"severity"`
}

// ActiveDefect is an open defect on an aircraft, joined with its catalog entry
type ActiveDefect struct {
	ID           uuid.UUID `json:"id"`
	AircraftID   uuid.UUID `json:"aircraft_id"`
	DefectTypeID uuid.UUID `json:"defect_type_id"`
	CreatedAt    time.Time `json:"created_at"`
	Description  string    `json:"description"`
	Severity     Severity  `json:"severity"`
}
