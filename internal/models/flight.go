package models

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by lookups when the requested record does not exist
var ErrNotFound = errors.New("record not found")

// FlightParams holds the planned load and duration for a single flight
type FlightParams struct {
	FuelAmount      float64 // L of fuel to load
	PayloadWeight   float64 // kg of crew, passengers and cargo
	DurationMinutes int     // Planned flight time
}

// Validate checks the parameters are physically meaningful
func (p FlightParams) Validate() error {
	if p.FuelAmount < 0 {
		return fmt.Errorf("fuel amount must not be negative: %g", p.FuelAmount)
	}
	if p.PayloadWeight < 0 {
		return fmt.Errorf("payload weight must not be negative: %g", p.PayloadWeight)
	}
	if p.DurationMinutes <= 0 {
		return fmt.Errorf("duration must be greater than 0: %d", p.DurationMinutes)
	}
	return nil
}

// BalanceResult is the outcome of a weight-and-balance calculation
type BalanceResult struct {
	TotalWeight float64 `json:"total_weight"`
	CGPosition  float64 `json:"cg_position"`
	IsWeightOk  bool    `json:"weight_ok"`
	IsCGOk      bool    `json:"cg_ok"`
	IsFuelOk    bool    `json:"fuel_ok"`
	Message     string  `json:"message,omitempty"`
}

// OK reports whether all three balance checks passed
func (r BalanceResult) OK() bool {
	return r.IsWeightOk && r.IsCGOk && r.IsFuelOk
}

// Category groups findings by the kind of constraint they report
type Category string

const (
	CategoryNotFound Category = "not_found"
	CategoryResource Category = "resource"
	CategorySafety   Category = "safety"
	CategoryBalance  Category = "balance"
	CategoryLookup   Category = "lookup"
)

// Finding is a single error or warning of a readiness report
type Finding struct {
	Category Category `json:"category"`
	Message  string   `json:"message"`
}

// ReadinessReport is the GO/NO-GO decision with its supporting findings.
// Errors each block departure on their own; warnings never do.
type ReadinessReport struct {
	IsReady  bool      `json:"ready"`
	Errors   []Finding `json:"errors"`
	Warnings []Finding `json:"warnings"`
}

// AddError appends a blocking finding and clears IsReady
func (r *ReadinessReport) AddError(category Category, format string, args ...any) {
	r.Errors = append(r.Errors, Finding{Category: category, Message: fmt.Sprintf(format, args...)})
	r.IsReady = false
}

// AddWarning appends an advisory finding
func (r *ReadinessReport) AddWarning(category Category, format string, args ...any) {
	r.Warnings = append(r.Warnings, Finding{Category: category, Message: fmt.Sprintf(format, args...)})
}

// ErrorMessages returns the error texts in report order
func (r *ReadinessReport) ErrorMessages() []string {
	return messages(r.Errors)
}

// WarningMessages returns the warning texts in report order
func (r *ReadinessReport) WarningMessages() []string {
	return messages(r.Warnings)
}

func messages(findings []Finding) []string {
	out := make([]string, len(findings))
	for i, f := range findings {
		out[i] = f.Message
	}
	return out
}
