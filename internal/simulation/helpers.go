package simulation

import (
	"time"

	"github.com/nvandessel/potency/internal/models"
)

// HourlySeries builds a series with one reading per hour starting at start.
func HourlySeries(start time.Time, temps ...float64) []models.TemperatureSample {
	return SpacedSeries(start, time.Hour, temps...)
}

// SpacedSeries builds a series with readings step apart starting at start.
func SpacedSeries(start time.Time, step time.Duration, temps ...float64) []models.TemperatureSample {
	out := make([]models.TemperatureSample, len(temps))
	for i, t := range temps {
		out[i] = models.TemperatureSample{
			Timestamp:   start.Add(time.Duration(i) * step),
			SensorTempC: t,
		}
	}
	return out
}

// ConstantSeries builds n readings of tempC, step apart.
func ConstantSeries(start time.Time, step time.Duration, tempC float64, n int) []models.TemperatureSample {
	temps := make([]float64, n)
	for i := range temps {
		temps[i] = tempC
	}
	return SpacedSeries(start, step, temps...)
}
