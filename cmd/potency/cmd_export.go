package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/nvandessel/potency/internal/store"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [investigation-id]...",
		Short: "Export investigations as JSONL",
		Long: `Write investigations with their readings and every calculation as one JSON
object per line. Without IDs the whole ledger is exported.

Examples:
  potency export > ledger.jsonl
  potency export INV-20251229-3fa2c1 --output freezer3.jsonl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd)
			if err != nil {
				return err
			}
			output, _ := cmd.Flags().GetString("output")

			ledger, err := sess.openExistingStore()
			if err != nil {
				return err
			}
			defer ledger.Close()

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			n, err := store.ExportJSONL(cmd.Context(), ledger, w, args...)
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			// With no output file the JSONL itself is on stdout.
			if output == "" {
				return nil
			}
			if sess.jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"exported": n,
					"path":     output,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d investigation(s) to %s\n", n, output)
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout")

	return cmd
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import investigations from a JSONL export",
		Long: `Import investigations written by 'potency export'. Imported investigations
are marked as imported and their calculations are re-chained in order.
An investigation whose ID already exists aborts the import.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()

			ledger, err := sess.openStore()
			if err != nil {
				return err
			}
			defer ledger.Close()

			n, err := store.ImportJSONL(cmd.Context(), ledger, f)
			if err != nil {
				return fmt.Errorf("import failed after %d investigation(s): %w", n, err)
			}

			if sess.jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"imported": n,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d investigation(s)\n", n)
			return nil
		},
	}
}
