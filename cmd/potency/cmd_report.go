package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nvandessel/potency/internal/ids"
	"github.com/nvandessel/potency/internal/models"
	"github.com/nvandessel/potency/internal/report"
	"github.com/nvandessel/potency/internal/store"
	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report <calculation-id | investigation-id>",
		Short: "Print the QA report prompt for a calculation",
		Long: `Render the Temperature Deviation Investigation Report prompt for a stored
calculation. The prompt carries only values from the calculation and is
meant to be handed to a reviewer or a language model unchanged.

Given an investigation ID, the latest calculation of that investigation is
used.

Examples:
  potency report CALC-9b41d2
  potency report INV-20251229-3fa2c1 > prompt.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			ledger, err := sess.openExistingStore()
			if err != nil {
				return err
			}
			defer ledger.Close()

			calc, err := resolveCalculation(ctx, ledger, args[0])
			if err != nil {
				return err
			}

			in := report.Input{InvestigationID: calc.InvestigationID, Calculation: calc}
			if inv, err := ledger.GetInvestigation(ctx, calc.InvestigationID); err == nil {
				in.Label = inv.Label
			}

			prompt, err := report.Render(in)
			if err != nil {
				return err
			}

			if sess.jsonOut {
				return json.NewEncoder(out).Encode(map[string]string{
					"investigation_id": calc.InvestigationID,
					"calculation_id":   calc.ID,
					"prompt":           prompt,
				})
			}
			fmt.Fprint(out, prompt)
			return nil
		},
	}
}

// resolveCalculation accepts a calculation ID or an investigation ID, in
// which case the latest calculation is returned.
func resolveCalculation(ctx context.Context, s store.Store, id string) (*models.Calculation, error) {
	if strings.HasPrefix(id, ids.InvestigationPrefix+"-") {
		calc, err := s.LatestCalculation(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load latest calculation: %w", err)
		}
		return calc, nil
	}

	calc, err := s.GetCalculation(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		// Imported ledgers may carry investigation IDs in another format.
		if latest, latestErr := s.LatestCalculation(ctx, id); latestErr == nil {
			return latest, nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load calculation: %w", err)
	}
	return calc, nil
}
