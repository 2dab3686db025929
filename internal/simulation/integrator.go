package simulation

import (
	"fmt"
	"math"

	"github.com/nvandessel/potency/internal/constants"
	"github.com/nvandessel/potency/internal/models"
)

// State is the fold accumulator threaded through every step of a run.
// Step never mutates its input; it returns the next State.
type State struct {
	ProductTempC     float64 `json:"product_temp_c"`
	CumulativeDamage float64 `json:"cumulative_damage"`

	// PotencyPercent is the potency emitted by the previous step.
	PotencyPercent float64 `json:"potency_percent"`
}

// InitialState starts a run with the product at productTempC and full potency.
func InitialState(productTempC float64) State {
	return State{
		ProductTempC:   productTempC,
		PotencyPercent: constants.InitialPotencyPercent,
	}
}

// StepInput is the ambient condition applied over one step.
type StepInput struct {
	Index       int
	Phase       models.RecordKind
	SensorTempC float64
	DeltaHours  float64
}

// StepOutcome reports how the rate law behaved during a step.
type StepOutcome struct {
	Rate      float64
	Saturated bool
}

// Model couples the thermal response with the kinetics of one profile.
type Model struct {
	Kinetics Kinetics
	ThermalK float64
}

// Segment is a contiguous run of records and the state after the last one.
type Segment struct {
	Records        []models.SimulationRecord
	Final          State
	SaturatedSteps int
}

// Step applies one thermal update and one Euler increment of damage.
//
// Potency must not exceed the previous potency by more than PotencyEpsilon;
// otherwise Step returns a *ModelViolationError and the run must abort.
func (m Model) Step(s State, in StepInput) (State, StepOutcome, error) {
	product, err := UpdateProductTemp(s.ProductTempC, in.SensorTempC, in.DeltaHours, m.ThermalK)
	if err != nil {
		return s, StepOutcome{}, fmt.Errorf("%s step %d: %w", in.Phase, in.Index, err)
	}

	rate, saturated, err := m.Kinetics.Rate(product)
	if err != nil {
		return s, StepOutcome{}, fmt.Errorf("%s step %d: %w", in.Phase, in.Index, err)
	}

	damage := s.CumulativeDamage + rate*in.DeltaHours
	potency := constants.InitialPotencyPercent * math.Exp(-damage)

	if potency > s.PotencyPercent+constants.PotencyEpsilon || damage < 0 || math.IsNaN(potency) {
		return s, StepOutcome{}, &ModelViolationError{
			Step:             in.Index,
			Phase:            string(in.Phase),
			PreviousPotency:  s.PotencyPercent,
			Potency:          potency,
			ProductTempC:     product,
			ActivationEnergy: m.Kinetics.ActivationEnergy,
			FrequencyFactor:  m.Kinetics.FrequencyFactor,
			ThermalK:         m.ThermalK,
		}
	}

	next := State{
		ProductTempC:     product,
		CumulativeDamage: damage,
		PotencyPercent:   potency,
	}
	return next, StepOutcome{Rate: rate, Saturated: saturated}, nil
}

// Integrate folds Step over the smoothed history. The first step has a zero
// time delta, so the product starts at the first smoothed reading.
func (m Model) Integrate(samples []models.SmoothedSample) (Segment, error) {
	if len(samples) < 2 {
		return Segment{}, fmt.Errorf("%w: at least two temperature samples are required, got %d",
			ErrInsufficientData, len(samples))
	}

	seg := Segment{Records: make([]models.SimulationRecord, 0, len(samples))}
	state := InitialState(samples[0].SmoothedTempC)

	for i, sample := range samples {
		delta := 0.0
		if i > 0 {
			delta = sample.Timestamp.Sub(samples[i-1].Timestamp).Hours()
			if delta < 0 {
				return Segment{}, fmt.Errorf("%w: sample %d at %s precedes sample %d at %s",
					ErrNonMonotonicTime, i, sample.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
					i-1, samples[i-1].Timestamp.Format("2006-01-02T15:04:05Z07:00"))
			}
		}

		next, outcome, err := m.Step(state, StepInput{
			Index:       i,
			Phase:       models.RecordKindHistory,
			SensorTempC: sample.SmoothedTempC,
			DeltaHours:  delta,
		})
		if err != nil {
			return Segment{}, err
		}
		state = next
		if outcome.Saturated {
			seg.SaturatedSteps++
		}

		smoothed := sample.SmoothedTempC
		seg.Records = append(seg.Records, models.SimulationRecord{
			Timestamp:        sample.Timestamp,
			SensorTempC:      sample.SensorTempC,
			SmoothedTempC:    &smoothed,
			ProductTempC:     state.ProductTempC,
			PotencyPercent:   state.PotencyPercent,
			CumulativeDamage: state.CumulativeDamage,
			Kind:             models.RecordKindHistory,
		})
	}

	seg.Final = state
	return seg, nil
}
