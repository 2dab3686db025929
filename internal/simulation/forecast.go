package simulation

import (
	"fmt"
	"time"

	"github.com/nvandessel/potency/internal/constants"
	"github.com/nvandessel/potency/internal/models"
)

// TrendSlope returns the ordinary least squares slope of values against their
// index (0, 1, 2, ...). Timestamp spacing is ignored. Fewer than two values
// have no trend and return 0.
func TrendSlope(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}

	meanX := float64(n-1) / 2
	var meanY float64
	for _, v := range values {
		meanY += v
	}
	meanY /= float64(n)

	var sxy, sxx float64
	for i, v := range values {
		dx := float64(i) - meanX
		sxy += dx * (v - meanY)
		sxx += dx * dx
	}
	return sxy / sxx
}

// Forecast extends a run by hours hourly steps driven by a linear projection
// of the smoothed history. window limits the trend fit to the trailing window
// points; zero uses the whole history.
//
// The projection for step h is last + slope*h. Every step goes through the
// same Step function as history, seeded from seed, so there is no potency
// discontinuity at the boundary.
func (m Model) Forecast(seed State, history []models.SmoothedSample, hours, window int) (Segment, error) {
	if hours < 0 {
		return Segment{}, fmt.Errorf("%w: forecast horizon must be non-negative, got %d", ErrInvalidParameter, hours)
	}
	if window < 0 {
		return Segment{}, fmt.Errorf("%w: forecast window must be non-negative, got %d", ErrInvalidParameter, window)
	}

	seg := Segment{Records: make([]models.SimulationRecord, 0, hours), Final: seed}
	if hours == 0 {
		return seg, nil
	}
	if len(history) == 0 {
		return Segment{}, fmt.Errorf("%w: forecast needs at least one historical sample", ErrInsufficientData)
	}

	fit := history
	if window > 0 && window < len(fit) {
		fit = fit[len(fit)-window:]
	}
	smoothed := make([]float64, len(fit))
	for i, s := range fit {
		smoothed[i] = s.SmoothedTempC
	}

	slope := TrendSlope(smoothed)
	last := history[len(history)-1]
	state := seed

	for h := 1; h <= hours; h++ {
		projected := last.SmoothedTempC + slope*float64(h)

		next, outcome, err := m.Step(state, StepInput{
			Index:       len(history) + h - 1,
			Phase:       models.RecordKindForecast,
			SensorTempC: projected,
			DeltaHours:  constants.ForecastStepHours,
		})
		if err != nil {
			return Segment{}, err
		}
		state = next
		if outcome.Saturated {
			seg.SaturatedSteps++
		}

		seg.Records = append(seg.Records, models.SimulationRecord{
			Timestamp:        last.Timestamp.Add(time.Duration(h) * time.Hour),
			SensorTempC:      projected,
			ProductTempC:     state.ProductTempC,
			PotencyPercent:   state.PotencyPercent,
			CumulativeDamage: state.CumulativeDamage,
			Kind:             models.RecordKindForecast,
		})
	}

	seg.Final = state
	return seg, nil
}
