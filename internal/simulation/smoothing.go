package simulation

import (
	"fmt"

	"github.com/nvandessel/potency/internal/models"
)

// Smooth applies causal exponential smoothing to values.
//
// The first output equals the first input; each later output is
// alpha*raw + (1-alpha)*previous. alpha must lie in (0, 1]; alpha == 1 is the
// identity transform.
//
// An empty input returns an empty slice and no error so that composition
// stays total. Callers that need data enforce their own minimum length.
func Smooth(values []float64, alpha float64) ([]float64, error) {
	if !(alpha > 0 && alpha <= 1) {
		return nil, fmt.Errorf("%w: smoothing alpha must be in (0, 1], got %v", ErrInvalidParameter, alpha)
	}

	smoothed := make([]float64, len(values))
	if len(values) == 0 {
		return smoothed, nil
	}

	smoothed[0] = values[0]
	for i := 1; i < len(values); i++ {
		smoothed[i] = alpha*values[i] + (1-alpha)*smoothed[i-1]
	}
	return smoothed, nil
}

// SmoothSamples smooths the sensor column of samples and pairs each reading
// with its smoothed value.
func SmoothSamples(samples []models.TemperatureSample, alpha float64) ([]models.SmoothedSample, error) {
	smoothed, err := Smooth(models.SensorTemps(samples), alpha)
	if err != nil {
		return nil, err
	}

	out := make([]models.SmoothedSample, len(samples))
	for i, s := range samples {
		out[i] = models.SmoothedSample{
			Timestamp:     s.Timestamp,
			SensorTempC:   s.SensorTempC,
			SmoothedTempC: smoothed[i],
		}
	}
	return out, nil
}
