package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nvandessel/potency/internal/simulation"
	"github.com/nvandessel/potency/internal/store"
	"github.com/spf13/cobra"
)

func newRecalcCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recalc <investigation-id>",
		Short: "Re-run a stored investigation with new parameters",
		Long: `Re-run the stored readings of an investigation and save the result as a
new calculation that supersedes the previous one.

Parameters start from the latest calculation of the investigation (or the
configuration when there is none); flags override them.

Examples:
  potency recalc INV-20251229-3fa2c1 --alpha 0.3
  potency recalc INV-20251229-3fa2c1 --profile "Room Temperature" --horizon 0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			id := args[0]
			showRecords, _ := cmd.Flags().GetBool("records")

			ledger, err := sess.openExistingStore()
			if err != nil {
				return err
			}
			defer ledger.Close()

			inv, err := ledger.GetInvestigation(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to load investigation: %w", err)
			}
			readings, err := ledger.GetReadings(ctx, inv.ID)
			if err != nil {
				return fmt.Errorf("failed to load readings: %w", err)
			}

			profile, opts := optionsFromConfig(sess.cfg)
			prev, err := ledger.LatestCalculation(ctx, inv.ID)
			switch {
			case err == nil:
				profile, opts = optionsFromInputs(prev.Inputs)
			case !errors.Is(err, store.ErrNotFound):
				return fmt.Errorf("failed to load previous calculation: %w", err)
			}
			profile, opts = applyModelFlags(cmd, profile, opts)

			audit := sess.auditLogger()
			defer audit.Close()

			outcome := sess.newRunner(audit).Run(ctx, simulation.Scenario{
				Name:       inv.ID,
				Series:     readings,
				ProfileKey: profile,
				Options:    opts,
			})
			if !outcome.OK() {
				return fmt.Errorf("recalculation of %s failed: %w", inv.ID, outcome.Err)
			}

			calc := newCalculation(inv.ID, outcome.Result, time.Now())
			if err := ledger.SaveCalculation(ctx, calc); err != nil {
				return fmt.Errorf("failed to save calculation: %w", err)
			}

			if sess.jsonOut {
				sum := runSummary{
					Name:            inv.Label,
					InvestigationID: inv.ID,
					CalculationID:   calc.ID,
					Supersedes:      calc.Supersedes,
					Profile:         profile,
					Metrics:         &calc.Metrics,
				}
				if showRecords {
					sum.Records = calc.Records
				}
				return json.NewEncoder(out).Encode(sum)
			}

			fmt.Fprintf(out, "%s [%s]\n", inv.ID, profile)
			fmt.Fprintf(out, "  Calculation:           %s\n", calc.ID)
			if calc.Supersedes != "" {
				fmt.Fprintf(out, "  Supersedes:            %s\n", calc.Supersedes)
			}
			printMetrics(out, calc.Metrics)
			if showRecords {
				fmt.Fprintln(out)
				printRecords(out, calc.Records)
			}
			return nil
		},
	}

	addModelFlags(cmd)
	cmd.Flags().Bool("records", false, "Include every simulated step in the output")

	return cmd
}
