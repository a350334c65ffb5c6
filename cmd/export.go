package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/datajonas82/fergetid-sub000/pkg/app"
	"github.com/datajonas82/fergetid-sub000/pkg/exporter"
	"github.com/datajonas82/fergetid-sub000/pkg/ferry"

	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a quay's departure board to an ICS file",
	Long:  `Export the upcoming departures of a ferry quay to an ICS calendar file without using the interactive TUI.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		quayName, _ := cmd.Flags().GetString("quay")
		output, _ := cmd.Flags().GetString("output")

		a, err := app.New()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
		defer cancel()

		var rows []ferry.BoardRow
		var resolved ferry.Quay
		var fetchErr error

		_ = spinner.New().
			Title(fmt.Sprintf("Exporting departures for %s to %s...", quayName, output)).
			Action(func() {
				if err := a.Catalog.Load(ctx); err != nil {
					fetchErr = err
					return
				}
				quay, ok := a.Catalog.FindByName(quayName)
				if !ok {
					fetchErr = fmt.Errorf("no ferry quay matching '%s'", quayName)
					return
				}
				resolved = quay
				calls := a.Fetcher.Fetch(ctx, quay.ID, 0)
				rows = ferry.SummarizeBoard(calls, 10)
			}).
			Run()

		if fetchErr != nil {
			return fetchErr
		}

		file, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()

		if err := exporter.GenerateICS(resolved.Name, rows, file); err != nil {
			return fmt.Errorf("failed to generate ICS: %w", err)
		}

		fmt.Printf("Successfully exported departures for %s to %s\n", resolved.Name, output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("quay", "q", "", "Ferry quay name (e.g. lavik)")
	exportCmd.Flags().StringP("output", "o", "departures.ics", "Output file path")
	exportCmd.MarkFlagRequired("quay")
}
