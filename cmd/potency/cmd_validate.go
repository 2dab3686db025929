package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/nvandessel/potency/internal/store"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the ledger for consistency issues",
		Long: `Validate the project ledger for consistency issues.

This command checks for:
  - Database integrity and foreign key violations
  - Supersedes links that point at themselves or outside their investigation
  - Calculation chains that fork or have more than one root
  - Investigation status that disagrees with its calculations
  - Investigations without readings`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			ledger, err := sess.openExistingStore()
			if err != nil {
				return err
			}
			defer ledger.Close()

			if err := ledger.Verify(ctx); err != nil {
				return fmt.Errorf("integrity check failed: %w", err)
			}

			validationErrors, err := store.ValidateLedger(ctx, ledger)
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}

			return outputValidationResults(cmd.OutOrStdout(), validationErrors, sess.jsonOut)
		},
	}
}

// outputValidationResults formats and outputs validation results.
func outputValidationResults(w io.Writer, validationErrors []store.ValidationError, jsonOut bool) error {
	valid := len(validationErrors) == 0

	if jsonOut {
		output := map[string]interface{}{
			"valid":       valid,
			"error_count": len(validationErrors),
		}
		if !valid {
			output["errors"] = validationErrors
			output["message"] = fmt.Sprintf("Found %d validation error(s)", len(validationErrors))
		} else {
			output["message"] = "Ledger is valid"
		}
		return json.NewEncoder(w).Encode(output)
	}

	if valid {
		fmt.Fprintln(w, "✓ Ledger is valid - no issues found.")
		return nil
	}

	fmt.Fprintf(w, "✗ Found %d validation error(s):\n\n", len(validationErrors))
	for i, ve := range validationErrors {
		fmt.Fprintf(w, "%d. %s\n", i+1, ve.String())
	}
	return nil
}
