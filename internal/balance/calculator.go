// Package balance computes weight, center of gravity and fuel sufficiency
// for a planned flight.
package balance

import (
	"fmt"
	"strings"

	"preflight/internal/models"
)

const (
	// FuelDensity of AvGas 100LL in kg/L
	FuelDensity = 0.72

	// FuelReserveFactor adds a 10% reserve to the trip fuel
	FuelReserveFactor = 1.10
)

// Calculator performs weight-and-balance calculations. It holds no mutable
// state and is safe for concurrent use.
type Calculator struct {
	profiles *ProfileTable
}

// NewCalculator creates a calculator resolving profiles from the given table.
// A nil table uses the standard profiles only.
func NewCalculator(profiles *ProfileTable) *Calculator {
	if profiles == nil {
		profiles = NewProfileTable(nil)
	}
	return &Calculator{profiles: profiles}
}

// Calculate computes total weight and CG for the flight and checks them,
// together with the fuel load, against the model limits
func (c *Calculator) Calculate(model *models.AircraftModel, aircraft *models.Aircraft, params models.FlightParams) models.BalanceResult {
	profile := c.profiles.Lookup(aircraft)

	var result models.BalanceResult
	var msg []string

	fuelWeight := params.FuelAmount * FuelDensity
	payloadWeight := params.PayloadWeight
	emptyWeight := model.EmptyWeight

	result.TotalWeight = emptyWeight + fuelWeight + payloadWeight
	result.IsWeightOk = result.TotalWeight <= model.MaxTakeoffWeight
	if !result.IsWeightOk {
		msg = append(msg, fmt.Sprintf("Overweight: total %.1f kg exceeds MTOW %.1f kg",
			result.TotalWeight, model.MaxTakeoffWeight))
	}

	totalMoment := emptyWeight*profile.ArmEmpty + fuelWeight*profile.ArmFuel + payloadWeight*profile.ArmPayload
	if result.TotalWeight > 0 {
		result.CGPosition = totalMoment / result.TotalWeight
	}

	required := RequiredFuel(model, params.DurationMinutes)
	switch {
	case params.FuelAmount < required:
		msg = append(msg, fmt.Sprintf("Insufficient fuel: %.1f L required including reserve, %.1f L loaded",
			required, params.FuelAmount))
	case params.FuelAmount > model.FuelCapacity:
		msg = append(msg, fmt.Sprintf("Fuel exceeds tank capacity: %.1f L loaded, capacity %.1f L",
			params.FuelAmount, model.FuelCapacity))
	default:
		result.IsFuelOk = true
	}

	envelope := profile.EnvelopeFor(model.MaxTakeoffWeight)
	result.IsCGOk = Contains(envelope, Point{CG: result.CGPosition, Weight: result.TotalWeight})
	if !result.IsCGOk {
		lo, hi := profile.Bounds()
		msg = append(msg, fmt.Sprintf("CG out of envelope: %.1f (limits %.1f-%.1f)", result.CGPosition, lo, hi))
	}

	result.Message = strings.Join(msg, "\n")
	return result
}

// RequiredFuel returns the litres needed for the planned duration at cruise
// consumption, including the reserve
func RequiredFuel(model *models.AircraftModel, durationMinutes int) float64 {
	hours := float64(durationMinutes) / 60.0
	return hours * model.FuelConsumption * FuelReserveFactor
}
