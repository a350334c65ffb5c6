package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/datajonas82/fergetid-sub000/pkg/app"
	"github.com/datajonas82/fergetid-sub000/pkg/ferry"
	"github.com/datajonas82/fergetid-sub000/pkg/location"

	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <name>",
	Short: "Search ferry quays by name prefix",
	Long: `Lists ferry quays whose name starts with the given fragment, in
alphabetical order, each with upcoming departures and the auto-resolved
return crossing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := args[0]

		a, err := app.New()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
		defer cancel()
		a.WarmCatalog(ctx)

		waiter := ferry.NewSnapshotWaiter()
		orch := a.Orchestrator(location.StaticProvider{}, waiter.Observe)

		var snap ferry.Snapshot
		var waitErr error

		_ = spinner.New().
			Title(fmt.Sprintf("Searching quays matching '%s'...", query)).
			Action(func() {
				orch.SetQuery(ctx, query)
				snap, waitErr = waiter.Await(ctx, ferry.ModeSearch)
			}).
			Run()

		if waitErr != nil {
			return waitErr
		}
		if snap.ErrText != "" {
			return fmt.Errorf("%s", snap.ErrText)
		}
		if len(snap.Results) == 0 {
			fmt.Printf("No ferry quays match '%s'.\n", query)
			return nil
		}

		now := time.Now()
		fmt.Printf("\n--- ⛴ Quays matching '%s' ---\n", query)
		for _, result := range snap.Results {
			printResult(result, now, false)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
