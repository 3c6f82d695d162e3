package balance

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"preflight/internal/models"
)

func cessna() (*models.AircraftModel, *models.Aircraft) {
	model := &models.AircraftModel{
		ID:               uuid.New(),
		Name:             "Cessna 172N",
		MaxTakeoffWeight: 1043,
		EmptyWeight:      767,
		FuelCapacity:     212,
		FuelConsumption:  35,
	}
	aircraft := &models.Aircraft{
		ID:           uuid.New(),
		ModelID:      model.ID,
		Registration: "RA-01772",
		ModelName:    model.Name,
		FuelCapacity: model.FuelCapacity,
	}
	return model, aircraft
}

func TestCalculate_NormalFlight(t *testing.T) {
	model, aircraft := cessna()
	calc := NewCalculator(nil)

	result := calc.Calculate(model, aircraft, models.FlightParams{FuelAmount: 100, PayloadWeight: 80, DurationMinutes: 60})

	assert.InDelta(t, 919.0, result.TotalWeight, 1e-6)
	assert.InDelta(t, 38.5, RequiredFuel(model, 60), 1e-9)
	assert.True(t, result.IsWeightOk)
	assert.True(t, result.IsFuelOk)
	assert.True(t, result.IsCGOk)
	assert.True(t, result.OK())
	assert.Empty(t, result.Message)

	// (767*39 + 72*48 + 80*37) / 919
	assert.InDelta(t, 36329.0/919.0, result.CGPosition, 1e-6)
}

func TestCalculate_Deterministic(t *testing.T) {
	model, aircraft := cessna()
	calc := NewCalculator(nil)
	params := models.FlightParams{FuelAmount: 150, PayloadWeight: 170, DurationMinutes: 90}

	assert.Equal(t, calc.Calculate(model, aircraft, params), calc.Calculate(model, aircraft, params))
}

func TestCalculate_WeightAtMTOWPasses(t *testing.T) {
	model, aircraft := cessna()
	calc := NewCalculator(nil)

	result := calc.Calculate(model, aircraft, models.FlightParams{FuelAmount: 0, PayloadWeight: 276, DurationMinutes: 60})

	assert.InDelta(t, 1043.0, result.TotalWeight, 1e-9)
	assert.True(t, result.IsWeightOk)
	assert.True(t, result.IsCGOk)
	assert.False(t, result.IsFuelOk)
}

func TestCalculate_Overweight(t *testing.T) {
	model, aircraft := cessna()
	calc := NewCalculator(nil)

	result := calc.Calculate(model, aircraft, models.FlightParams{FuelAmount: 150, PayloadWeight: 300, DurationMinutes: 60})

	assert.False(t, result.IsWeightOk)
	assert.False(t, result.IsCGOk, "point above MTOW lies outside the envelope")
	assert.True(t, result.IsFuelOk)
	assert.Contains(t, result.Message, "Overweight")
	assert.Contains(t, result.Message, "1043.0")
}

func TestCalculate_Fuel(t *testing.T) {
	tests := []struct {
		name     string
		fuel     float64
		duration int
		ok       bool
		contains string
	}{
		{name: "exactly capacity", fuel: 212, duration: 60, ok: true},
		{name: "below required", fuel: 30, duration: 60, ok: false, contains: "Insufficient fuel"},
		{name: "above capacity", fuel: 213, duration: 60, ok: false, contains: "exceeds tank capacity"},
		{name: "long flight", fuel: 200, duration: 360, ok: false, contains: "231.0 L required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, aircraft := cessna()
			model.MaxTakeoffWeight = 5000
			calc := NewCalculator(nil)

			result := calc.Calculate(model, aircraft, models.FlightParams{FuelAmount: tt.fuel, PayloadWeight: 80, DurationMinutes: tt.duration})

			assert.Equal(t, tt.ok, result.IsFuelOk)
			if tt.contains != "" {
				assert.Contains(t, result.Message, tt.contains)
			}
		})
	}
}

func TestCalculate_CGOutsideEnvelope(t *testing.T) {
	model, aircraft := cessna()

	// Baggage station far aft of the seats
	tailHeavy := TrainerProfile
	tailHeavy.ArmPayload = 95.0
	calc := NewCalculator(NewProfileTable(map[uuid.UUID]Profile{model.ID: tailHeavy}))

	result := calc.Calculate(model, aircraft, models.FlightParams{FuelAmount: 50, PayloadWeight: 200, DurationMinutes: 60})

	require.True(t, result.IsWeightOk)
	assert.False(t, result.IsCGOk)
	assert.Greater(t, result.CGPosition, tailHeavy.CGMax)
	assert.Contains(t, result.Message, "CG out of envelope")
	assert.Contains(t, result.Message, "35.0-47.5")
}

func TestCalculate_MessageOrder(t *testing.T) {
	model, aircraft := cessna()
	tailHeavy := TrainerProfile
	tailHeavy.ArmPayload = 95.0
	calc := NewCalculator(NewProfileTable(map[uuid.UUID]Profile{model.ID: tailHeavy}))

	result := calc.Calculate(model, aircraft, models.FlightParams{FuelAmount: 10, PayloadWeight: 400, DurationMinutes: 120})

	require.False(t, result.IsWeightOk)
	require.False(t, result.IsFuelOk)
	require.False(t, result.IsCGOk)

	overweight := strings.Index(result.Message, "Overweight")
	fuel := strings.Index(result.Message, "Insufficient fuel")
	cg := strings.Index(result.Message, "CG out of envelope")
	assert.True(t, overweight < fuel && fuel < cg, "message order: %q", result.Message)
}

func TestCalculate_ZeroWeight(t *testing.T) {
	calc := NewCalculator(nil)
	model := &models.AircraftModel{FuelConsumption: 0}
	aircraft := &models.Aircraft{}

	result := calc.Calculate(model, aircraft, models.FlightParams{DurationMinutes: 60})

	assert.Zero(t, result.TotalWeight)
	assert.Zero(t, result.CGPosition)
	assert.False(t, result.IsCGOk)
}

func TestCalculate_CustomEnvelope(t *testing.T) {
	model, aircraft := cessna()

	// Forward limit moves aft above 900 kg
	profile := TrainerProfile
	profile.Envelope = []Point{{35, 0}, {35, 900}, {42, 1043}, {47.5, 1043}, {47.5, 0}}
	calc := NewCalculator(NewProfileTable(map[uuid.UUID]Profile{model.ID: profile}))

	light := calc.Calculate(model, aircraft, models.FlightParams{FuelAmount: 60, PayloadWeight: 80, DurationMinutes: 60})
	assert.True(t, light.IsCGOk)

	heavyForward := calc.Calculate(model, aircraft, models.FlightParams{FuelAmount: 40, PayloadWeight: 240, DurationMinutes: 30})
	require.True(t, heavyForward.IsWeightOk)
	assert.False(t, heavyForward.IsCGOk)
	assert.Contains(t, heavyForward.Message, "35.0-47.5")
}
