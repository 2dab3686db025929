package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/nvandessel/potency/internal/constants"
	"github.com/nvandessel/potency/internal/ingest"
	"github.com/nvandessel/potency/internal/sanitize"
	"github.com/nvandessel/potency/internal/simulation"
	"github.com/nvandessel/potency/internal/store"
	"github.com/spf13/cobra"
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate <csv>...",
		Short: "Estimate potency loss for one or more temperature logs",
		Long: `Read temperature logs from CSV files and estimate potency loss for each.

Each file is an independent investigation. Several files are simulated in
parallel. Parameters default to the values in ~/.potency/config.yaml.

Examples:
  potency simulate excursion.csv
  potency simulate excursion.csv --profile Frozen --horizon 12
  potency simulate a.csv b.csv --unit F --temp-column probe_f
  potency simulate excursion.csv --save --label "Freezer 3, 2025-12-29"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			timeColumn, _ := cmd.Flags().GetString("time-column")
			tempColumn, _ := cmd.Flags().GetString("temp-column")
			unit, _ := cmd.Flags().GetString("unit")
			showRecords, _ := cmd.Flags().GetBool("records")
			save, _ := cmd.Flags().GetBool("save")
			label, _ := cmd.Flags().GetString("label")

			mapping := ingest.Mapping{
				TimeColumn: timeColumn,
				TempColumn: tempColumn,
				Unit:       constants.ParseUnit(unit),
			}
			profile, opts := optionsFromConfig(sess.cfg)
			profile, opts = applyModelFlags(cmd, profile, opts)

			if !mapping.Unit.Valid() {
				return fmt.Errorf("unsupported temperature unit %q (valid: C, F, K)", unit)
			}

			// A file that cannot be read fails on its own; the rest still run.
			summaries := make([]runSummary, len(args))
			failed := 0
			var scenarios []simulation.Scenario
			var slots []int
			for i, path := range args {
				series, err := ingest.ReadCSVFile(path, mapping)
				if err != nil {
					summaries[i] = runSummary{Name: path, Profile: profile, Error: err.Error()}
					failed++
					continue
				}
				scenarios = append(scenarios, simulation.Scenario{
					Name:       path,
					Series:     series,
					ProfileKey: profile,
					Options:    opts,
				})
				slots = append(slots, i)
			}

			audit := sess.auditLogger()
			defer audit.Close()

			outcomes, err := sess.newRunner(audit).RunAll(ctx, scenarios)
			if err != nil {
				return fmt.Errorf("simulation interrupted: %w", err)
			}

			var ledger *store.SQLiteStore
			if save {
				ledger, err = sess.openStore()
				if err != nil {
					return err
				}
				defer ledger.Close()
			}

			for j, o := range outcomes {
				sum := runSummary{Name: o.Name, Profile: profile}
				if !o.OK() {
					sum.Error = o.Err.Error()
					summaries[slots[j]] = sum
					failed++
					continue
				}

				m := o.Result.Metrics
				sum.Metrics = &m
				if showRecords {
					sum.Records = o.Result.Records
				}

				if save {
					invLabel := label
					if invLabel == "" {
						invLabel = filepath.Base(o.Name)
					} else if len(args) > 1 {
						invLabel = fmt.Sprintf("%s (%s)", label, filepath.Base(o.Name))
					}
					inv, calc, err := saveInvestigation(ctx, ledger, sanitize.Label(invLabel), scenarios[j].Series, o.Result, time.Now())
					if err != nil {
						return fmt.Errorf("failed to save %s: %w", o.Name, err)
					}
					sum.InvestigationID = inv.ID
					sum.CalculationID = calc.ID
				}
				summaries[slots[j]] = sum
			}

			if sess.jsonOut {
				json.NewEncoder(out).Encode(map[string]interface{}{
					"results": summaries,
					"count":   len(summaries),
					"failed":  failed,
				})
			} else {
				for i, sum := range summaries {
					if i > 0 {
						fmt.Fprintln(out)
					}
					if sum.Error != "" {
						fmt.Fprintf(out, "✗ %s: %s\n", sum.Name, sum.Error)
						continue
					}
					fmt.Fprintf(out, "%s [%s]\n", sum.Name, sum.Profile)
					if sum.InvestigationID != "" {
						fmt.Fprintf(out, "  Saved as:              %s / %s\n", sum.InvestigationID, sum.CalculationID)
					}
					printMetrics(out, *sum.Metrics)
					if showRecords {
						fmt.Fprintln(out)
						printRecords(out, sum.Records)
					}
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d simulations failed", failed, len(args))
			}
			return nil
		},
	}

	addModelFlags(cmd)
	cmd.Flags().String("time-column", constants.DefaultTimeColumn, "CSV column holding timestamps")
	cmd.Flags().String("temp-column", constants.DefaultTempColumn, "CSV column holding air temperatures")
	cmd.Flags().String("unit", string(constants.DefaultUnit), "Temperature unit of the CSV: C, F or K")
	cmd.Flags().Bool("records", false, "Include every simulated step in the output")
	cmd.Flags().Bool("save", false, "Store readings and results in the project ledger")
	cmd.Flags().String("label", "", "Investigation label when saving (default: file name)")

	return cmd
}
