package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/nvandessel/potency/internal/models"
)

// Bundle is one investigation with everything needed to rebuild it in
// another ledger. It is the unit of the JSONL export format.
type Bundle struct {
	Investigation models.Investigation       `json:"investigation"`
	Readings      []models.TemperatureSample `json:"readings"`

	// Calculations are ordered oldest first and include their records.
	Calculations []models.Calculation `json:"calculations"`
}

// ExportJSONL writes one Bundle per line for each of ids, or for every
// investigation when ids is empty. Returns the number of bundles written.
func ExportJSONL(ctx context.Context, s Store, w io.Writer, ids ...string) (int, error) {
	if len(ids) == 0 {
		invs, err := s.ListInvestigations(ctx)
		if err != nil {
			return 0, err
		}
		// Oldest first so an import recreates the same listing order.
		for i := len(invs) - 1; i >= 0; i-- {
			ids = append(ids, invs[i].ID)
		}
	}

	encoder := json.NewEncoder(w)
	for n, id := range ids {
		bundle, err := loadBundle(ctx, s, id)
		if err != nil {
			return n, err
		}
		if err := encoder.Encode(bundle); err != nil {
			return n, fmt.Errorf("failed to encode investigation %s: %w", id, err)
		}
	}
	return len(ids), nil
}

func loadBundle(ctx context.Context, s Store, id string) (*Bundle, error) {
	inv, err := s.GetInvestigation(ctx, id)
	if err != nil {
		return nil, err
	}
	readings, err := s.GetReadings(ctx, id)
	if err != nil {
		return nil, err
	}
	summaries, err := s.ListCalculations(ctx, id)
	if err != nil {
		return nil, err
	}

	bundle := &Bundle{Investigation: *inv, Readings: readings}
	for i := len(summaries) - 1; i >= 0; i-- {
		calc, err := s.GetCalculation(ctx, summaries[i].ID)
		if err != nil {
			return nil, err
		}
		bundle.Calculations = append(bundle.Calculations, *calc)
	}
	return bundle, nil
}

// ImportJSONL reads bundles written by ExportJSONL into s. Imported
// investigations are marked with SourceImported and their calculations are
// re-chained in order, so Supersedes links are rebuilt by the target store.
// Blank lines are skipped; any malformed line aborts the import.
// Returns the number of investigations imported.
func ImportJSONL(ctx context.Context, s Store, r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	// Records make for long lines
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 64*1024*1024)

	lineNum := 0
	imported := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var bundle Bundle
		if err := json.Unmarshal(line, &bundle); err != nil {
			return imported, fmt.Errorf("failed to parse line %d: %w", lineNum, err)
		}

		if err := importBundle(ctx, s, bundle); err != nil {
			return imported, fmt.Errorf("line %d: %w", lineNum, err)
		}
		imported++
	}

	if err := scanner.Err(); err != nil {
		return imported, fmt.Errorf("scanner error: %w", err)
	}
	return imported, nil
}

func importBundle(ctx context.Context, s Store, b Bundle) error {
	inv := b.Investigation
	if inv.ID == "" {
		return fmt.Errorf("investigation ID is required")
	}
	inv.Source = models.SourceImported
	inv.Status = models.StatusIngested

	if err := s.CreateInvestigation(ctx, inv); err != nil {
		return err
	}
	if err := s.SaveReadings(ctx, inv.ID, b.Readings); err != nil {
		return err
	}
	for i := range b.Calculations {
		calc := b.Calculations[i]
		calc.InvestigationID = inv.ID
		if err := s.SaveCalculation(ctx, &calc); err != nil {
			return err
		}
	}
	return nil
}
