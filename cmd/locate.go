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

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Rank the ferry quays nearest to a position",
	Long: `Finds ferry quays within the search radius of the given coordinates,
ranked by road driving distance, each with upcoming departures, the
return crossing, and a verdict on whether you make the next boat.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		lat, _ := cmd.Flags().GetFloat64("lat")
		lon, _ := cmd.Flags().GetFloat64("lon")

		a, err := app.New()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
		defer cancel()
		a.WarmCatalog(ctx)

		provider := location.StaticProvider{Position: location.Position{
			Latitude:  lat,
			Longitude: lon,
			Timestamp: time.Now(),
		}}

		waiter := ferry.NewSnapshotWaiter()
		orch := a.Orchestrator(provider, waiter.Observe)

		var snap ferry.Snapshot
		var waitErr error

		_ = spinner.New().
			Title("Finding ferry quays near you...").
			Action(func() {
				orch.Locate(ctx)
				snap, waitErr = waiter.Await(ctx, ferry.ModeLocation)
			}).
			Run()

		if waitErr != nil {
			return waitErr
		}
		if snap.ErrText != "" {
			return fmt.Errorf("%s", snap.ErrText)
		}

		printLocationSnapshot(snap)
		return nil
	},
}

func printLocationSnapshot(snap ferry.Snapshot) {
	now := time.Now()

	if snap.PlaceName != "" {
		fmt.Printf("\n--- ⛴ Ferries near %s ---\n", snap.PlaceName)
	}
	if snap.Verdict.Kind != ferry.VerdictNone {
		fmt.Printf("%s\n", snap.Verdict.Text)
	}

	for _, result := range snap.Results {
		printResult(result, now, true)
	}
	fmt.Println()
}

func printResult(result ferry.Result, now time.Time, locationMode bool) {
	driveStr := ""
	if result.DriveMinutes > 0 {
		how := "drive"
		if result.RouteSource == "walk" {
			how = "walk"
		}
		driveStr = fmt.Sprintf("  (%d min %s, %s)", result.DriveMinutes, how, ferry.FormatDistance(result.DriveMeters))
	}
	fmt.Printf("\n\033[1m%s\033[0m%s\n", result.Quay.Name, driveStr)

	next, ok := result.NextDeparture(now)
	if !ok {
		fmt.Println("  No upcoming departures.")
		return
	}

	missedMark := ""
	if locationMode && ferry.DepartureColor(now, next.AimedDepartureTime, result.DriveMinutes, result.DriveMinutes > 0) == ferry.DepartureMissed {
		missedMark = " \033[31m(missed)\033[0m"
	}
	fmt.Printf("  • [%s] %s (in %d min)%s\n",
		ferry.FormatClock(next.AimedDepartureTime),
		ferry.CleanDestinationText(next.DestinationText),
		ferry.MinutesUntil(now, next.AimedDepartureTime),
		missedMark)

	for _, later := range result.LaterDepartures(now, 4) {
		fmt.Printf("    then %s\n", ferry.FormatClock(later.AimedDepartureTime))
	}

	for _, card := range result.Returns {
		printed := 0
		line := ""
		for _, dep := range card.Departures {
			if !dep.AimedDepartureTime.After(now) {
				continue
			}
			if printed > 0 {
				line += ", "
			}
			line += ferry.FormatClock(dep.AimedDepartureTime)
			printed++
			if printed == 5 {
				break
			}
		}
		if printed == 0 {
			line = "no departures today"
		}
		fmt.Printf("  ↩ Return from %s: %s\n", card.DestinationName, line)
	}
}

func init() {
	rootCmd.AddCommand(locateCmd)
	locateCmd.Flags().Float64("lat", 0, "Latitude of your position")
	locateCmd.Flags().Float64("lon", 0, "Longitude of your position")
	locateCmd.MarkFlagRequired("lat")
	locateCmd.MarkFlagRequired("lon")
}
