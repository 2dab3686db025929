package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/nvandessel/potency/internal/models"
)

// InMemoryStore implements Store for testing and development.
type InMemoryStore struct {
	mu             sync.RWMutex
	investigations map[string]models.Investigation
	order          []string // investigation IDs in insertion order
	readings       map[string][]models.TemperatureSample
	calculations   map[string]models.Calculation
	chains         map[string][]string // investigation ID -> calculation IDs, oldest first
}

// NewInMemoryStore creates a new in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		investigations: make(map[string]models.Investigation),
		readings:       make(map[string][]models.TemperatureSample),
		calculations:   make(map[string]models.Calculation),
		chains:         make(map[string][]string),
	}
}

// CreateInvestigation inserts a new investigation.
func (s *InMemoryStore) CreateInvestigation(ctx context.Context, inv models.Investigation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if inv.ID == "" {
		return fmt.Errorf("investigation ID is required")
	}
	if _, exists := s.investigations[inv.ID]; exists {
		return fmt.Errorf("investigation already exists: %s", inv.ID)
	}

	s.investigations[inv.ID] = inv
	s.order = append(s.order, inv.ID)
	return nil
}

// GetInvestigation retrieves an investigation by ID.
func (s *InMemoryStore) GetInvestigation(ctx context.Context, id string) (*models.Investigation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, exists := s.investigations[id]
	if !exists {
		return nil, fmt.Errorf("investigation %s: %w", id, ErrNotFound)
	}
	return &inv, nil
}

// ListInvestigations returns all investigations, newest first.
func (s *InMemoryStore) ListInvestigations(ctx context.Context) ([]models.Investigation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Investigation, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, s.investigations[s.order[i]])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// SaveReadings replaces the readings of an investigation.
func (s *InMemoryStore) SaveReadings(ctx context.Context, investigationID string, readings []models.TemperatureSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.investigations[investigationID]; !exists {
		return fmt.Errorf("investigation %s: %w", investigationID, ErrNotFound)
	}

	s.readings[investigationID] = append([]models.TemperatureSample(nil), readings...)
	return nil
}

// GetReadings returns the readings of an investigation in saved order.
func (s *InMemoryStore) GetReadings(ctx context.Context, investigationID string) ([]models.TemperatureSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]models.TemperatureSample(nil), s.readings[investigationID]...), nil
}

// SaveCalculation appends calc to the ledger and links it to the previous
// latest calculation of its investigation.
func (s *InMemoryStore) SaveCalculation(ctx context.Context, calc *models.Calculation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if calc.ID == "" {
		return fmt.Errorf("calculation ID is required")
	}
	inv, exists := s.investigations[calc.InvestigationID]
	if !exists {
		return fmt.Errorf("investigation %s: %w", calc.InvestigationID, ErrNotFound)
	}
	if _, dup := s.calculations[calc.ID]; dup {
		return fmt.Errorf("calculation already exists: %s", calc.ID)
	}

	calc.Supersedes = ""
	if latest, ok := s.latestLocked(calc.InvestigationID); ok {
		calc.Supersedes = latest.ID
	}

	stored := *calc
	stored.Records = append([]models.SimulationRecord(nil), calc.Records...)
	s.calculations[calc.ID] = stored
	s.chains[calc.InvestigationID] = append(s.chains[calc.InvestigationID], calc.ID)

	inv.Status = models.StatusComputed
	s.investigations[inv.ID] = inv
	return nil
}

// SaveInvestigation creates inv with its readings and first calculation.
// Nothing is stored if any part is rejected.
func (s *InMemoryStore) SaveInvestigation(ctx context.Context, inv models.Investigation, readings []models.TemperatureSample, calc *models.Calculation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case inv.ID == "":
		return fmt.Errorf("investigation ID is required")
	case calc.ID == "":
		return fmt.Errorf("calculation ID is required")
	case calc.InvestigationID != inv.ID:
		return fmt.Errorf("calculation %s belongs to investigation %q, not %s", calc.ID, calc.InvestigationID, inv.ID)
	}
	if _, exists := s.investigations[inv.ID]; exists {
		return fmt.Errorf("investigation already exists: %s", inv.ID)
	}
	if _, dup := s.calculations[calc.ID]; dup {
		return fmt.Errorf("calculation already exists: %s", calc.ID)
	}

	inv.Status = models.StatusComputed
	s.investigations[inv.ID] = inv
	s.order = append(s.order, inv.ID)
	s.readings[inv.ID] = append([]models.TemperatureSample(nil), readings...)

	calc.Supersedes = ""
	stored := *calc
	stored.Records = append([]models.SimulationRecord(nil), calc.Records...)
	s.calculations[calc.ID] = stored
	s.chains[inv.ID] = []string{calc.ID}
	return nil
}

// GetCalculation retrieves a calculation by ID.
func (s *InMemoryStore) GetCalculation(ctx context.Context, id string) (*models.Calculation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	calc, exists := s.calculations[id]
	if !exists {
		return nil, fmt.Errorf("calculation %s: %w", id, ErrNotFound)
	}
	return &calc, nil
}

// LatestCalculation returns the newest calculation of an investigation.
func (s *InMemoryStore) LatestCalculation(ctx context.Context, investigationID string) (*models.Calculation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	calc, ok := s.latestLocked(investigationID)
	if !ok {
		return nil, fmt.Errorf("no calculation for investigation %s: %w", investigationID, ErrNotFound)
	}
	return &calc, nil
}

// ListCalculations returns the calculations of an investigation, newest
// first, without records.
func (s *InMemoryStore) ListCalculations(ctx context.Context, investigationID string) ([]models.Calculation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Calculation, 0, len(s.chains[investigationID]))
	for _, id := range s.chains[investigationID] {
		calc := s.calculations[id]
		calc.Records = nil
		out = append(out, calc)
	}
	sortNewestFirst(out)
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}

// latestLocked returns the newest calculation by ComputedAt, breaking ties
// by insertion order. Caller must hold s.mu.
func (s *InMemoryStore) latestLocked(investigationID string) (models.Calculation, bool) {
	chain := s.chains[investigationID]
	if len(chain) == 0 {
		return models.Calculation{}, false
	}
	best := s.calculations[chain[0]]
	for _, id := range chain[1:] {
		c := s.calculations[id]
		if !c.ComputedAt.Before(best.ComputedAt) {
			best = c
		}
	}
	return best, true
}

// sortNewestFirst orders calculations by ComputedAt descending. Input is in
// insertion order, so reversing first keeps later inserts ahead on ties.
func sortNewestFirst(calcs []models.Calculation) {
	for i, j := 0, len(calcs)-1; i < j; i, j = i+1, j-1 {
		calcs[i], calcs[j] = calcs[j], calcs[i]
	}
	sort.SliceStable(calcs, func(i, j int) bool {
		return calcs[i].ComputedAt.After(calcs[j].ComputedAt)
	})
}

var (
	_ Store = (*InMemoryStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)
