package tui

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/datajonas82/fergetid-sub000/pkg/app"
	"github.com/datajonas82/fergetid-sub000/pkg/exporter"
	"github.com/datajonas82/fergetid-sub000/pkg/ferry"
	"github.com/datajonas82/fergetid-sub000/pkg/location"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/lipgloss"
)

const pipelineTimeout = 45 * time.Second

// RunLocateTUI asks for coordinates and renders the nearest ferry
// quays ranked by road distance.
func RunLocateTUI() error {
	a, err := app.New()
	if err != nil {
		return err
	}

	latStr, lonStr := "", ""
	if cached, ok := a.Store.Load(); ok {
		latStr = strconv.FormatFloat(cached.Latitude, 'f', 4, 64)
		lonStr = strconv.FormatFloat(cached.Longitude, 'f', 4, 64)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Latitude").
				Placeholder("e.g. 61.1080").
				Value(&latStr).
				Validate(validateCoordinate),
			huh.NewInput().
				Title("Longitude").
				Placeholder("e.g. 5.5340").
				Value(&lonStr).
				Validate(validateCoordinate),
		),
	).WithTheme(GetTheme())

	if err := form.Run(); err != nil {
		return err
	}

	lat, _ := strconv.ParseFloat(latStr, 64)
	lon, _ := strconv.ParseFloat(lonStr, 64)

	ctx, cancel := context.WithTimeout(context.Background(), pipelineTimeout)
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
	renderSnapshot(snap, true)
	return nil
}

// RunSearchTUI prompts for a name fragment and renders the matching
// quays with departures and return cards.
func RunSearchTUI() error {
	a, err := app.New()
	if err != nil {
		return err
	}

	var query string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Ferry quay name").
				Placeholder("e.g. lavik, dragsvik, oppedal...").
				Value(&query),
		),
	).WithTheme(GetTheme())

	if err := form.Run(); err != nil {
		return err
	}
	if query == "" {
		fmt.Println("Operation cancelled: no query provided.")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pipelineTimeout)
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
	renderSnapshot(snap, false)
	return nil
}

// RunExportTUI exports a quay's departure board to an ICS file.
func RunExportTUI() error {
	a, err := app.New()
	if err != nil {
		return err
	}

	var quayName string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Which quay's departures do you want on your calendar?").
				Placeholder("e.g. Lavik").
				Value(&quayName),
		),
	).WithTheme(GetTheme())

	if err := form.Run(); err != nil {
		return err
	}
	if quayName == "" {
		fmt.Println("Operation cancelled: no quay provided.")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pipelineTimeout)
	defer cancel()

	var rows []ferry.BoardRow
	var resolved ferry.Quay
	var exportErr error

	_ = spinner.New().
		Title(fmt.Sprintf("Fetching departures for %s...", quayName)).
		Action(func() {
			if err := a.Catalog.Load(ctx); err != nil {
				exportErr = err
				return
			}
			quay, ok := a.Catalog.FindByName(quayName)
			if !ok {
				exportErr = fmt.Errorf("no ferry quay matching '%s'", quayName)
				return
			}
			resolved = quay
			calls := a.Fetcher.Fetch(ctx, quay.ID, 0)
			rows = ferry.SummarizeBoard(calls, 10)
		}).
		Run()

	if exportErr != nil {
		return exportErr
	}

	filename := fmt.Sprintf("ferry_%s.ics", ferry.NormalizeQuayName(resolved.Name))
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := exporter.GenerateICS(resolved.Name, rows, file); err != nil {
		return err
	}

	fmt.Println(accentStyle.Render(fmt.Sprintf("\n✨ Exported departure board to: %s\n", filename)))
	return nil
}

func validateCoordinate(s string) error {
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return fmt.Errorf("must be a decimal coordinate")
	}
	return nil
}

// renderSnapshot prints an enriched result list. Location mode adds
// the place header, the verdict and missed-departure coloring.
func renderSnapshot(snap ferry.Snapshot, locationMode bool) {
	now := time.Now()

	if snap.ErrText != "" {
		fmt.Println(errorStyle.Render("\n" + snap.ErrText))
		return
	}
	if len(snap.Results) == 0 {
		fmt.Println(errorStyle.Render("\nNo ferry quays found."))
		return
	}

	if locationMode && snap.PlaceName != "" {
		fmt.Println(accentStyle.Render(fmt.Sprintf("\n--- ⛴ Ferries near %s ---", snap.PlaceName)))
	} else {
		fmt.Println(accentStyle.Render("\n--- ⛴ Ferry Quays ---"))
	}

	if locationMode && snap.Verdict.Kind != ferry.VerdictNone {
		fmt.Println(lipgloss.NewStyle().Bold(true).Render(snap.Verdict.Text))
	}

	for _, result := range snap.Results {
		printResult(result, now, locationMode)
	}
	fmt.Println()
}

func printResult(result ferry.Result, now time.Time, locationMode bool) {
	nameStr := accentStyle.Bold(true).Render(result.Quay.Name)
	driveStr := ""
	if result.DriveMinutes > 0 {
		icon := "🚗"
		if result.RouteSource == "walk" {
			icon = "🚶"
		}
		driveStr = fmt.Sprintf("  %s %d min, %s", icon, result.DriveMinutes, ferry.FormatDistance(result.DriveMeters))
	}
	fmt.Printf("\n%s%s\n", nameStr, driveStr)

	next, ok := result.NextDeparture(now)
	if !ok {
		fmt.Println("  No upcoming departures.")
		return
	}

	timeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	hasDrive := locationMode && result.DriveMinutes > 0
	if ferry.DepartureColor(now, next.AimedDepartureTime, result.DriveMinutes, hasDrive) == ferry.DepartureMissed {
		timeStyle = errorStyle
	}

	fmt.Printf("  • [%s] %s (in %d min)\n",
		timeStyle.Render(ferry.FormatClock(next.AimedDepartureTime)),
		ferry.CleanDestinationText(next.DestinationText),
		ferry.MinutesUntil(now, next.AimedDepartureTime))

	for _, later := range result.LaterDepartures(now, 4) {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
		if ferry.DepartureColor(now, later.AimedDepartureTime, result.DriveMinutes, hasDrive) == ferry.DepartureMissed {
			style = errorStyle
		}
		fmt.Printf("    then %s\n", style.Render(ferry.FormatClock(later.AimedDepartureTime)))
	}

	for _, card := range result.Returns {
		printReturnCard(card, now)
	}
}

func printReturnCard(card ferry.ReturnCard, now time.Time) {
	times := ""
	shown := 0
	for _, dep := range card.Departures {
		if !dep.AimedDepartureTime.After(now) {
			continue
		}
		if shown > 0 {
			times += ", "
		}
		times += ferry.FormatClock(dep.AimedDepartureTime)
		shown++
		if shown == 5 {
			break
		}
	}
	if shown == 0 {
		times = "no departures today"
	}
	fmt.Printf("  ↩ Return from %s: %s\n", card.DestinationName, times)
}
