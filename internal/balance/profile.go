package balance

import (
	"maps"
	"math"
	"strings"

	"github.com/google/uuid"

	"preflight/internal/models"
)

// Profile describes where masses sit on an airframe and the CG limits.
// Arms are measured from the reference datum.
type Profile struct {
	Name       string
	ArmEmpty   float64 // Empty airframe
	ArmFuel    float64 // Fuel tanks
	ArmPayload float64 // Seats and baggage station
	CGMin      float64
	CGMax      float64

	// Envelope overrides the CGMin/CGMax rectangle when set
	Envelope []Point
}

// Standard profiles
var (
	// TrainerProfile applies to any model without a more specific profile
	TrainerProfile = Profile{
		Name:       "single-engine trainer",
		ArmEmpty:   39.0,
		ArmFuel:    48.0,
		ArmPayload: 37.0,
		CGMin:      35.0,
		CGMax:      47.5,
	}

	// PiperProfile applies to models whose name contains "Piper"
	PiperProfile = Profile{
		Name:       "Piper",
		ArmEmpty:   85.0,
		ArmFuel:    95.0,
		ArmPayload: 85.5,
		CGMin:      82.0,
		CGMax:      93.0,
	}
)

// EnvelopeFor returns the envelope polygon for a model with the given MTOW.
// Without an explicit envelope this is the rectangle
// (CGMin,0) (CGMin,MTOW) (CGMax,MTOW) (CGMax,0).
func (p Profile) EnvelopeFor(maxTakeoffWeight float64) []Point {
	if len(p.Envelope) > 0 {
		return p.Envelope
	}
	return []Point{
		{CG: p.CGMin, Weight: 0},
		{CG: p.CGMin, Weight: maxTakeoffWeight},
		{CG: p.CGMax, Weight: maxTakeoffWeight},
		{CG: p.CGMax, Weight: 0},
	}
}

// Bounds returns the forward and aft CG limits of the profile
func (p Profile) Bounds() (float64, float64) {
	if len(p.Envelope) == 0 {
		return p.CGMin, p.CGMax
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, pt := range p.Envelope {
		lo = math.Min(lo, pt.CG)
		hi = math.Max(hi, pt.CG)
	}
	return lo, hi
}

// ProfileTable resolves the balance profile for an aircraft.
// It is read-only after construction and safe for concurrent use.
type ProfileTable struct {
	byModel map[uuid.UUID]Profile
}

// NewProfileTable creates a table with per-model overrides
func NewProfileTable(overrides map[uuid.UUID]Profile) *ProfileTable {
	byModel := make(map[uuid.UUID]Profile, len(overrides))
	maps.Copy(byModel, overrides)
	return &ProfileTable{byModel: byModel}
}

// Lookup returns the profile registered for the aircraft's model.
// Without one, models named like "Piper" get PiperProfile and everything
// else gets TrainerProfile.
func (t *ProfileTable) Lookup(aircraft *models.Aircraft) Profile {
	if t != nil {
		if p, ok := t.byModel[aircraft.ModelID]; ok {
			return p
		}
	}
	if strings.Contains(aircraft.ModelName, "Piper") {
		return PiperProfile
	}
	return TrainerProfile
}
