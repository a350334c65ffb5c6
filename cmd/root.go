package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ferjectl",
	Short: "A CLI and TUI for Norwegian ferry departures",
	Long: `ferjectl finds the ferry quays nearest to you along the Norwegian coast,
shows their upcoming departures and return crossings, and tells you
whether you can still make the next boat by road.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
