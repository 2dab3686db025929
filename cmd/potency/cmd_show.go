package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <calculation-id>",
		Short: "Show a stored calculation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			showRecords, _ := cmd.Flags().GetBool("records")

			ledger, err := sess.openExistingStore()
			if err != nil {
				return err
			}
			defer ledger.Close()

			calc, err := ledger.GetCalculation(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to load calculation: %w", err)
			}

			if sess.jsonOut {
				if !showRecords {
					calc.Records = nil
				}
				return json.NewEncoder(out).Encode(calc)
			}

			fmt.Fprintf(out, "%s (investigation %s)\n", calc.ID, calc.InvestigationID)
			fmt.Fprintf(out, "  Computed:              %s\n", calc.ComputedAt.UTC().Format(displayTime))
			if calc.Supersedes != "" {
				fmt.Fprintf(out, "  Supersedes:            %s\n", calc.Supersedes)
			}
			fmt.Fprintf(out, "  Models:                %s, %s\n", calc.ThermalModel, calc.ChemistryModel)
			printInputs(out, calc.Inputs)
			fmt.Fprintln(out)
			printMetrics(out, calc.Metrics)
			if showRecords {
				fmt.Fprintln(out)
				printRecords(out, calc.Records)
			}
			return nil
		},
	}

	cmd.Flags().Bool("records", false, "Include every simulated step")

	return cmd
}
