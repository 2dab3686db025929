package main

import (
	"fmt"
	"io"

	"github.com/nvandessel/potency/internal/models"
)

const displayTime = "2006-01-02 15:04"

// runSummary is the JSON shape of one simulate or recalc result.
type runSummary struct {
	Name            string                    `json:"name"`
	InvestigationID string                    `json:"investigation_id,omitempty"`
	CalculationID   string                    `json:"calculation_id,omitempty"`
	Supersedes      string                    `json:"supersedes,omitempty"`
	Profile         string                    `json:"profile"`
	Metrics         *models.Metrics           `json:"metrics,omitempty"`
	Records         []models.SimulationRecord `json:"records,omitempty"`
	Error           string                    `json:"error,omitempty"`
}

func printMetrics(w io.Writer, m models.Metrics) {
	fmt.Fprintf(w, "  Final potency:         %.4f %%\n", m.FinalPotencyPercent)
	fmt.Fprintf(w, "  Potency loss:          %.4f %%\n", m.PotencyLossPercent)
	fmt.Fprintf(w, "  Peak air temp:         %.2f °C\n", m.PeakSensorTempC)
	fmt.Fprintf(w, "  Peak product temp:     %.2f °C\n", m.PeakProductTempC)
	fmt.Fprintf(w, "  Min air temp:          %.2f °C\n", m.MinSensorTempC)
	fmt.Fprintf(w, "  Min product temp:      %.2f °C\n", m.MinProductTempC)
	fmt.Fprintf(w, "  Outside storage range: %.0f min\n", m.MinutesOutsideStorage)
	if m.SaturatedSteps > 0 {
		fmt.Fprintf(w, "  Saturated steps:       %d\n", m.SaturatedSteps)
	}
}

func printInputs(w io.Writer, in models.CalculationInputs) {
	fmt.Fprintf(w, "  Profile:               %s (Ea %g J/mol, A %g)\n", in.ProfileKey, in.ActivationEnergy, in.FrequencyFactor)
	fmt.Fprintf(w, "  Smoothing alpha:       %g\n", in.SmoothingAlpha)
	fmt.Fprintf(w, "  Thermal k:             %g /h\n", in.ThermalK)
	fmt.Fprintf(w, "  Forecast:              %d h (window %d)\n", in.ForecastHours, in.ForecastWindow)
	if in.MaxRatePerHour > 0 {
		fmt.Fprintf(w, "  Rate ceiling:          %g /h\n", in.MaxRatePerHour)
	}
}

func printRecords(w io.Writer, records []models.SimulationRecord) {
	fmt.Fprintf(w, "  %-16s  %-8s  %8s  %8s  %8s  %10s  %12s\n",
		"time", "kind", "air", "smoothed", "product", "potency", "damage")
	for _, r := range records {
		smoothed := "-"
		if r.SmoothedTempC != nil {
			smoothed = fmt.Sprintf("%.2f", *r.SmoothedTempC)
		}
		fmt.Fprintf(w, "  %-16s  %-8s  %8.2f  %8s  %8.2f  %10.4f  %12.6g\n",
			r.Timestamp.UTC().Format(displayTime), r.Kind, r.SensorTempC, smoothed,
			r.ProductTempC, r.PotencyPercent, r.CumulativeDamage)
	}
}
