package simulation

import (
	"fmt"
	"math"

	"github.com/nvandessel/potency/internal/constants"
	"github.com/nvandessel/potency/internal/models"
)

// Kinetics evaluates the Arrhenius rate law for one profile.
// The parameters are fixed for the lifetime of a run.
type Kinetics struct {
	// ActivationEnergy is Ea in J/mol.
	ActivationEnergy float64

	// FrequencyFactor is A in 1/hour.
	FrequencyFactor float64

	// GasConstant is R in J/(mol*K). Zero means constants.GasConstant.
	GasConstant float64

	// MaxRatePerHour clamps the rate. Zero disables the ceiling.
	MaxRatePerHour float64
}

// NewKinetics builds the rate law for a profile.
func NewKinetics(p models.StabilityProfile, maxRatePerHour float64) Kinetics {
	return Kinetics{
		ActivationEnergy: p.ActivationEnergy,
		FrequencyFactor:  p.FrequencyFactor,
		GasConstant:      constants.GasConstant,
		MaxRatePerHour:   maxRatePerHour,
	}
}

// Rate returns the instantaneous degradation rate (1/hour) at tempC.
//
// Model boundary: non-finite temperatures and temperatures at or below
// absolute zero are rejected with ErrInvalidParameter. A rate above
// MaxRatePerHour is clamped to the ceiling and reported as saturated.
// Underflow to zero at very low temperatures is physical and passes through.
func (k Kinetics) Rate(tempC float64) (rate float64, saturated bool, err error) {
	if math.IsNaN(tempC) || math.IsInf(tempC, 0) {
		return 0, false, fmt.Errorf("%w: product temperature is not finite: %v", ErrInvalidParameter, tempC)
	}
	kelvin := tempC + constants.KelvinOffset
	if kelvin <= 0 {
		return 0, false, fmt.Errorf("%w: product temperature %v C is at or below absolute zero", ErrInvalidParameter, tempC)
	}

	r := k.GasConstant
	if r == 0 {
		r = constants.GasConstant
	}

	rate = k.FrequencyFactor * math.Exp(-k.ActivationEnergy/(r*kelvin))
	if k.MaxRatePerHour > 0 && rate > k.MaxRatePerHour {
		return k.MaxRatePerHour, true, nil
	}
	return rate, false, nil
}

// DegradationRate is the plain Arrhenius law, A*exp(-Ea/(R*T)), with
// R = 8.314 and no ceiling. It does not validate its inputs.
func DegradationRate(tempC, activationEnergy, frequencyFactor float64) float64 {
	kelvin := tempC + constants.KelvinOffset
	return frequencyFactor * math.Exp(-activationEnergy/(constants.GasConstant*kelvin))
}
