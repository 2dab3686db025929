package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	notifySignals(sigCh)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "potency",
		Short: "Estimate product potency loss from temperature excursions",
		Long: `potency estimates how much potency a temperature-sensitive product lost
during a storage excursion.

It smooths the recorded air temperature, models the product temperature
lagging behind it, integrates Arrhenius degradation over time and projects
a short forecast. Results support QA review; potency never decides
disposition.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("root", ".", "Project root directory (holds .potency/)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newProfilesCmd(),
		newSimulateCmd(),
		newRecalcCmd(),
		newHistoryCmd(),
		newShowCmd(),
		newReportCmd(),
		newConfigCmd(),
		// Ledger maintenance
		newExportCmd(),
		newImportCmd(),
		newValidateCmd(),
	)

	return rootCmd
}
