package models

import (
	"time"
)

// RecordKind tags a simulation record as measured or projected.
type RecordKind string

const (
	RecordKindHistory  RecordKind = "history"  // Driven by a measured reading
	RecordKindForecast RecordKind = "forecast" // Driven by a projected ambient temperature
)

// SimulationRecord is one step of the simulated trajectory.
type SimulationRecord struct {
	Timestamp   time.Time `json:"timestamp"`
	SensorTempC float64   `json:"sensor_temp_c"`

	// SmoothedTempC is only set on history records.
	SmoothedTempC *float64 `json:"smoothed_temp_c,omitempty"`

	ProductTempC     float64    `json:"product_temp_c"`
	PotencyPercent   float64    `json:"potency_percent"`
	CumulativeDamage float64    `json:"cumulative_damage"`
	Kind             RecordKind `json:"kind"`
}

// Metrics summarizes a full record sequence for QA review.
type Metrics struct {
	PeakSensorTempC     float64 `json:"peak_sensor_temp_c"`
	PeakProductTempC    float64 `json:"peak_product_temp_c"`
	MinSensorTempC      float64 `json:"min_sensor_temp_c"`
	MinProductTempC     float64 `json:"min_product_temp_c"`
	FinalPotencyPercent float64 `json:"final_potency_percent"`

	// PotencyLossPercent is 100 - FinalPotencyPercent.
	PotencyLossPercent float64 `json:"potency_loss_percent"`

	// SaturatedSteps counts steps whose degradation rate hit the configured ceiling.
	SaturatedSteps int `json:"saturated_steps"`

	// MinutesOutsideStorage is the time the product temperature spent outside the
	// profile's labeled storage range, history only. Contextual, never used in kinetics.
	MinutesOutsideStorage float64 `json:"minutes_outside_storage"`
}
