// Package store defines the Store interface for persisting investigations,
// their temperature readings, and the calculations run over them.
package store

import (
	"context"
	"errors"

	"github.com/nvandessel/potency/internal/models"
)

// ErrNotFound is returned when an investigation or calculation does not exist.
var ErrNotFound = errors.New("store: not found")

// Store is the calculation ledger.
//
// Calculations are append-only. SaveCalculation links each new calculation to
// the previous latest one of the same investigation through Supersedes, so
// the history of an investigation is a single chain.
type Store interface {
	// Investigation operations
	CreateInvestigation(ctx context.Context, inv models.Investigation) error
	GetInvestigation(ctx context.Context, id string) (*models.Investigation, error)

	// ListInvestigations returns all investigations, newest first.
	ListInvestigations(ctx context.Context) ([]models.Investigation, error)

	// Reading operations. SaveReadings replaces any readings already stored
	// for the investigation; GetReadings returns them in saved order.
	SaveReadings(ctx context.Context, investigationID string, readings []models.TemperatureSample) error
	GetReadings(ctx context.Context, investigationID string) ([]models.TemperatureSample, error)

	// SaveCalculation stores calc, setting calc.Supersedes to the previous
	// latest calculation of its investigation and marking the investigation
	// computed.
	SaveCalculation(ctx context.Context, calc *models.Calculation) error

	// SaveInvestigation creates inv together with its readings and first
	// calculation. Either all three are stored or none is.
	SaveInvestigation(ctx context.Context, inv models.Investigation, readings []models.TemperatureSample, calc *models.Calculation) error

	// GetCalculation returns a calculation including its records.
	GetCalculation(ctx context.Context, id string) (*models.Calculation, error)

	// LatestCalculation returns the newest calculation of an investigation.
	LatestCalculation(ctx context.Context, investigationID string) (*models.Calculation, error)

	// ListCalculations returns the calculations of an investigation, newest
	// first, without records.
	ListCalculations(ctx context.Context, investigationID string) ([]models.Calculation, error)

	Close() error
}
