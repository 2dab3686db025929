package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history [investigation-id]",
		Short: "List investigations or the calculations of one",
		Long: `Without arguments, list every investigation in the ledger, newest first.
With an investigation ID, list its calculations newest first, each showing
the calculation it supersedes.

Examples:
  potency history
  potency history INV-20251229-3fa2c1 --json`,
		Args: cobra.MaximumNArgs(1),
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

			if len(args) == 0 {
				invs, err := ledger.ListInvestigations(ctx)
				if err != nil {
					return fmt.Errorf("failed to list investigations: %w", err)
				}
				if sess.jsonOut {
					return json.NewEncoder(out).Encode(map[string]interface{}{
						"investigations": invs,
						"count":          len(invs),
					})
				}
				if len(invs) == 0 {
					fmt.Fprintln(out, "No investigations yet.")
					return nil
				}
				fmt.Fprintf(out, "Investigations (%d):\n\n", len(invs))
				for _, inv := range invs {
					fmt.Fprintf(out, "%-22s  %s  %-9s  %s\n",
						inv.ID, inv.CreatedAt.UTC().Format(displayTime), inv.Status, inv.Label)
				}
				return nil
			}

			inv, err := ledger.GetInvestigation(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to load investigation: %w", err)
			}
			calcs, err := ledger.ListCalculations(ctx, inv.ID)
			if err != nil {
				return fmt.Errorf("failed to list calculations: %w", err)
			}

			if sess.jsonOut {
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"investigation": inv,
					"calculations":  calcs,
					"count":         len(calcs),
				})
			}

			fmt.Fprintf(out, "%s  %s  (%s, %s)\n\n", inv.ID, inv.Label, inv.Source, inv.Status)
			if len(calcs) == 0 {
				fmt.Fprintln(out, "No calculations yet.")
				return nil
			}
			for i, c := range calcs {
				fmt.Fprintf(out, "%d. %s  %s  %-16s  potency %.4f %%\n",
					i+1, c.ID, c.ComputedAt.UTC().Format(displayTime), c.Inputs.ProfileKey, c.Metrics.FinalPotencyPercent)
				if c.Supersedes != "" {
					fmt.Fprintf(out, "   supersedes %s\n", c.Supersedes)
				}
			}
			return nil
		},
	}
}
