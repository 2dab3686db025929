package simulation

import (
	"fmt"
	"math"

	"github.com/nvandessel/potency/internal/models"
)

// Aggregate reduces a record sequence to summary metrics. Sensor extremes are
// taken over history records only, product extremes over every record.
func Aggregate(records []models.SimulationRecord) (models.Metrics, error) {
	if len(records) == 0 {
		return models.Metrics{}, fmt.Errorf("%w: no records to aggregate", ErrEmptyInput)
	}

	m := models.Metrics{
		PeakSensorTempC:  math.Inf(-1),
		MinSensorTempC:   math.Inf(1),
		PeakProductTempC: math.Inf(-1),
		MinProductTempC:  math.Inf(1),
	}

	history := 0
	for _, r := range records {
		m.PeakProductTempC = math.Max(m.PeakProductTempC, r.ProductTempC)
		m.MinProductTempC = math.Min(m.MinProductTempC, r.ProductTempC)

		if r.Kind != models.RecordKindHistory {
			continue
		}
		history++
		m.PeakSensorTempC = math.Max(m.PeakSensorTempC, r.SensorTempC)
		m.MinSensorTempC = math.Min(m.MinSensorTempC, r.SensorTempC)
	}
	if history == 0 {
		return models.Metrics{}, fmt.Errorf("%w: no history records to aggregate", ErrInsufficientData)
	}

	m.FinalPotencyPercent = records[len(records)-1].PotencyPercent
	m.PotencyLossPercent = 100 - m.FinalPotencyPercent
	return m, nil
}

// MinutesOutsideStorage sums the history time during which the product
// temperature lay outside the profile's storage range. A step is attributed
// to the state at its end, matching the rectangular damage integration.
func MinutesOutsideStorage(records []models.SimulationRecord, p models.StabilityProfile) float64 {
	var minutes float64
	for i := 1; i < len(records); i++ {
		r := records[i]
		if r.Kind != models.RecordKindHistory {
			break
		}
		if !p.InRange(r.ProductTempC) {
			minutes += r.Timestamp.Sub(records[i-1].Timestamp).Minutes()
		}
	}
	return minutes
}
