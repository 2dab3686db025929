package models

import (
	"time"
)

// InvestigationSource indicates where the readings of an investigation came from.
type InvestigationSource string

const (
	SourceCSVUpload InvestigationSource = "csv_upload" // Loaded from a CSV file
	SourceImported  InvestigationSource = "imported"   // Copied from another ledger
)

// InvestigationStatus tracks how far an investigation has progressed.
type InvestigationStatus string

const (
	StatusIngested InvestigationStatus = "INGESTED" // Readings stored, nothing computed yet
	StatusComputed InvestigationStatus = "COMPUTED" // At least one calculation stored
)

// Investigation groups the readings of one temperature deviation.
type Investigation struct {
	ID            string              `json:"investigation_id"`
	Label         string              `json:"label,omitempty"`
	Source        InvestigationSource `json:"source"`
	Status        InvestigationStatus `json:"status"`
	SchemaVersion string              `json:"schema_version"`
	CreatedAt     time.Time           `json:"created_at"`
}

// CalculationInputs captures every parameter a calculation was run with.
type CalculationInputs struct {
	ProfileKey       string  `json:"stability_profile"`
	ActivationEnergy float64 `json:"Ea"`
	FrequencyFactor  float64 `json:"A"`
	SmoothingAlpha   float64 `json:"smoothing_alpha"`
	ThermalK         float64 `json:"thermal_k"`
	ForecastHours    int     `json:"forecast_hours"`
	ForecastWindow   int     `json:"forecast_window"`
	MaxRatePerHour   float64 `json:"max_rate_per_hour"`
}

// Calculation is one stored simulation result. Calculations are never updated;
// a recalculation stores a new one whose Supersedes points at the previous.
type Calculation struct {
	ID              string             `json:"calculation_id"`
	InvestigationID string             `json:"investigation_id"`
	SchemaVersion   string             `json:"schema_version"`
	ThermalModel    string             `json:"thermal_model"`
	ChemistryModel  string             `json:"chemistry_model"`
	Inputs          CalculationInputs  `json:"inputs"`
	Metrics         Metrics            `json:"results"`
	Records         []SimulationRecord `json:"records,omitempty"`
	ComputedAt      time.Time          `json:"computed_at"`
	Supersedes      string             `json:"supersedes,omitempty"`
}
