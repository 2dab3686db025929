package main

import (
	"encoding/json"
	"fmt"

	"github.com/nvandessel/potency/internal/simulation"
	"github.com/spf13/cobra"
)

func newProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List stability profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()
			profiles := simulation.Profiles()

			if jsonOut {
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"profiles": profiles,
					"count":    len(profiles),
				})
			}

			fmt.Fprintf(out, "%-18s  %12s  %8s  %s\n", "profile", "Ea (J/mol)", "A", "storage range")
			for _, p := range profiles {
				fmt.Fprintf(out, "%-18s  %12.0f  %8.0e  %g to %g °C\n",
					p.Key, p.ActivationEnergy, p.FrequencyFactor, p.StorageMinC, p.StorageMaxC)
			}
			return nil
		},
	}
}
