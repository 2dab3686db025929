package simulation

import (
	"errors"
	"fmt"
)

// Error kinds returned by the engine. Callers distinguish them with errors.Is.
var (
	// ErrInvalidParameter indicates a malformed smoothing factor, a negative time
	// step, an unknown profile key, or a non-physical temperature.
	ErrInvalidParameter = errors.New("simulation: invalid parameter")

	// ErrInsufficientData indicates fewer than two temperature samples.
	ErrInsufficientData = errors.New("simulation: insufficient data")

	// ErrNonMonotonicTime indicates timestamps that go backwards.
	ErrNonMonotonicTime = errors.New("simulation: timestamps are not non-decreasing")

	// ErrModelViolation indicates the potency of a step exceeded the previous one.
	// It is a defect or configuration error, never a data condition.
	ErrModelViolation = errors.New("simulation: model violation")

	// ErrEmptyInput indicates an empty record sequence.
	ErrEmptyInput = errors.New("simulation: empty input")
)

// ModelViolationError carries the step that broke potency monotonicity.
type ModelViolationError struct {
	Step             int
	Phase            string // "history" or "forecast"
	PreviousPotency  float64
	Potency          float64
	ProductTempC     float64
	ActivationEnergy float64
	FrequencyFactor  float64
	ThermalK         float64
}

func (e *ModelViolationError) Error() string {
	return fmt.Sprintf("%v: potency increased at %s step %d (%.9f%% -> %.9f%%, Ea=%g, A=%g, k=%g)",
		ErrModelViolation, e.Phase, e.Step, e.PreviousPotency, e.Potency,
		e.ActivationEnergy, e.FrequencyFactor, e.ThermalK)
}

func (e *ModelViolationError) Unwrap() error {
	return ErrModelViolation
}

// LogAttrs returns the violation as alternating key/value pairs for slog.
func (e *ModelViolationError) LogAttrs() []any {
	return []any{
		"step", e.Step,
		"phase", e.Phase,
		"previous_potency", e.PreviousPotency,
		"potency", e.Potency,
		"product_temp_c", e.ProductTempC,
		"Ea", e.ActivationEnergy,
		"A", e.FrequencyFactor,
		"k", e.ThermalK,
	}
}
