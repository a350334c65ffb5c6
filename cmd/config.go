package cmd

import (
	"fmt"

	"github.com/datajonas82/fergetid-sub000/pkg/config"
	"github.com/datajonas82/fergetid-sub000/pkg/tui"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage ferjectl configuration",
	Long:  "View or edit your local configuration settings (ferry filters, search radius, theme).",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		changed := false

		if cmd.Flags().Changed("radius") {
			radius, _ := cmd.Flags().GetInt("radius")
			if radius <= 0 {
				return fmt.Errorf("radius must be a positive number of meters")
			}
			cfg.SearchRadiusMeters = radius
			changed = true
		}
		if cmd.Flags().Changed("max-results") {
			max, _ := cmd.Flags().GetInt("max-results")
			if max <= 0 {
				return fmt.Errorf("max-results must be positive")
			}
			cfg.MaxResults = max
			changed = true
		}
		if cmd.Flags().Changed("car-ferry") {
			v, _ := cmd.Flags().GetBool("car-ferry")
			cfg.CarFerry = &v
			changed = true
		}
		if cmd.Flags().Changed("passenger-ferry") {
			v, _ := cmd.Flags().GetBool("passenger-ferry")
			cfg.PassengerFerry = &v
			changed = true
		}
		if cmd.Flags().Changed("driving-times") {
			v, _ := cmd.Flags().GetBool("driving-times")
			cfg.ShowDrivingTimes = &v
			changed = true
		}
		if cmd.Flags().Changed("curated-data") {
			path, _ := cmd.Flags().GetString("curated-data")
			if path != "" {
				// Fail fast on unparseable curated files
				if _, err := config.LoadCuratedData(path); err != nil {
					return err
				}
			}
			cfg.CuratedDataPath = path
			changed = true
		}

		if changed {
			if err := config.Save(cfg); err != nil {
				return err
			}
			fmt.Println("✅ Configuration saved.")
			return nil
		}

		// If no flags are given, launch the interactive TUI flow
		return tui.RunConfigTUI()
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().Int("radius", 0, "Search radius in meters for nearby quays")
	configCmd.Flags().Int("max-results", 0, "Maximum number of ranked quays")
	configCmd.Flags().Bool("car-ferry", true, "Include car ferry departures")
	configCmd.Flags().Bool("passenger-ferry", true, "Include passenger ferry and express boat departures")
	configCmd.Flags().Bool("driving-times", true, "Enrich results with road driving times")
	configCmd.Flags().String("curated-data", "", "Path to a curated data YAML file (overrides, ferry groups)")
}
