package main

import (
	"context"
	"fmt"
	"time"

	"github.com/nvandessel/potency/internal/constants"
	"github.com/nvandessel/potency/internal/ids"
	"github.com/nvandessel/potency/internal/models"
	"github.com/nvandessel/potency/internal/simulation"
	"github.com/nvandessel/potency/internal/store"
)

// newCalculation builds the ledger entry for a completed run.
func newCalculation(investigationID string, res simulation.Result, now time.Time) *models.Calculation {
	return &models.Calculation{
		ID:              ids.NewCalculationID(),
		InvestigationID: investigationID,
		SchemaVersion:   constants.RecordSchemaVersion,
		ThermalModel:    constants.ThermalModelID,
		ChemistryModel:  constants.ChemistryModelID,
		Inputs: models.CalculationInputs{
			ProfileKey:       res.Profile.Key,
			ActivationEnergy: res.Profile.ActivationEnergy,
			FrequencyFactor:  res.Profile.FrequencyFactor,
			SmoothingAlpha:   res.Options.SmoothingAlpha,
			ThermalK:         res.Options.ThermalK,
			ForecastHours:    res.Options.ForecastHours,
			ForecastWindow:   res.Options.ForecastWindow,
			MaxRatePerHour:   res.Options.MaxRatePerHour,
		},
		Metrics:    res.Metrics,
		Records:    res.Records,
		ComputedAt: now.UTC(),
	}
}

// saveInvestigation stores series as a new investigation with res as its
// first calculation, all in one write.
func saveInvestigation(ctx context.Context, s store.Store, label string, series []models.TemperatureSample, res simulation.Result, now time.Time) (*models.Investigation, *models.Calculation, error) {
	inv := models.Investigation{
		ID:            ids.NewInvestigationID(now),
		Label:         label,
		Source:        models.SourceCSVUpload,
		Status:        models.StatusIngested,
		SchemaVersion: constants.RecordSchemaVersion,
		CreatedAt:     now.UTC(),
	}
	calc := newCalculation(inv.ID, res, now)
	if err := s.SaveInvestigation(ctx, inv, series, calc); err != nil {
		return nil, nil, fmt.Errorf("failed to save investigation: %w", err)
	}
	inv.Status = models.StatusComputed
	return &inv, calc, nil
}
