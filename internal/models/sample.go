// Package models defines the data types shared by the engine, the store,
// and the command line.
package models

import (
	"time"
)

// TemperatureSample is one validated sensor reading in degrees Celsius.
type TemperatureSample struct {
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp"`
	SensorTempC float64   `json:"sensor_temp_c" yaml:"sensor_temp_c"`
}

// SmoothedSample pairs a reading with its exponentially smoothed value.
type SmoothedSample struct {
	Timestamp     time.Time `json:"timestamp"`
	SensorTempC   float64   `json:"sensor_temp_c"`
	SmoothedTempC float64   `json:"smoothed_temp_c"`
}

// SensorTemps extracts the temperature column from samples.
func SensorTemps(samples []TemperatureSample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.SensorTempC
	}
	return out
}
