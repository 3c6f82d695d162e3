package models

import "github.com/google/uuid"

// AircraftModel represents an aircraft type from the model catalog
type AircraftModel struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`               // Type name (e.g., Cessna 172N)
	MaxTakeoffWeight float64   `json:"max_takeoff_weight"` // kg
	EmptyWeight      float64   `json:"empty_weight"`       // kg
	FuelCapacity     float64   `json:"fuel_capacity"`      // L
	FuelConsumption  float64   `json:"fuel_consumption"`   // L/h at cruise
}

// Aircraft represents a single airframe in the fleet
type Aircraft struct {
	ID                 uuid.UUID `json:"id"`
	ModelID            uuid.UUID `json:"model_id"`
	Registration       string    `json:"registration"`              // Unique registration mark (e.g., RA-01772)
	EngineHoursTotal   float64   `json:"engine_hours_total"`        // Cumulative engine hours
	EngineHoursService float64   `json:"engine_hours_next_service"` // Engine hours at which the next service is due

	// Projections of the model record, for display only
	ModelName    string  `json:"model_name"`
	FuelCapacity float64 `json:"fuel_capacity"`
}

// HoursRemaining returns the engine hours left before the next service.
// A negative value means the service is overdue.
func (a *Aircraft) HoursRemaining() float64 {
	return a.EngineHoursService - a.EngineHoursTotal
}
