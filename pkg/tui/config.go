package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/datajonas82/fergetid-sub000/pkg/config"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// RunConfigTUI launches the interactive experience for managing configurations
func RunConfigTUI() error {
	for {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		var action string

		initialForm := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Configuration Settings").
					Options(
						huh.NewOption("Set Accent Color (Theme)", "theme"),
						huh.NewOption("Set Ferry Filters", "filters"),
						huh.NewOption("Set Search Radius & Result Limit", "limits"),
						huh.NewOption("View Current Config", "view"),
						huh.NewOption("Back to Main Menu", "back"),
					).
					Value(&action),
			),
		).WithTheme(GetTheme())

		if err := initialForm.Run(); err != nil {
			return err
		}

		if action == "back" {
			return nil
		}

		if action == "theme" {
			err = runSetThemeTUI(cfg)
		} else if action == "filters" {
			err = runSetFiltersTUI(cfg)
		} else if action == "limits" {
			err = runSetLimitsTUI(cfg)
		} else if action == "view" {
			opts := cfg.Resolve()
			fmt.Println(accentStyle.Render("\n--- Current Configuration (~/.ferjectl.json) ---"))
			fmt.Printf("Car ferries: %v\n", opts.CarFerry)
			fmt.Printf("Passenger ferries: %v\n", opts.PassengerFerry)
			fmt.Printf("Driving times: %v\n", opts.ShowDrivingTimes)
			fmt.Printf("Search radius: %d m\n", opts.SearchRadiusMeters)
			fmt.Printf("Max results: %d\n", opts.MaxResults)
			if cfg.CuratedDataPath != "" {
				fmt.Printf("Curated data: %s\n", cfg.CuratedDataPath)
			}
			fmt.Printf("Accent Color: %s\n", cfg.AccentColor)
			fmt.Println()
		}

		if err != nil {
			return err
		}
	}
}

func runSetFiltersTUI(cfg *config.AppConfig) error {
	opts := cfg.Resolve()

	var active []string
	var preselected []huh.Option[string]
	carOpt := huh.NewOption("Car ferries", "car").Selected(opts.CarFerry)
	passengerOpt := huh.NewOption("Passenger ferries & express boats", "passenger").Selected(opts.PassengerFerry)
	driveOpt := huh.NewOption("Driving time enrichment", "drive").Selected(opts.ShowDrivingTimes)
	preselected = append(preselected, carOpt, passengerOpt, driveOpt)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Which ferry types and enrichments are active?").
				Description("Space = toggle, Enter = confirm.").
				Options(preselected...).
				Value(&active),
		),
	).WithTheme(GetTheme())

	if err := form.Run(); err != nil {
		return err
	}

	enabled := make(map[string]bool, len(active))
	for _, key := range active {
		enabled[key] = true
	}

	car, passenger, drive := enabled["car"], enabled["passenger"], enabled["drive"]
	cfg.CarFerry = &car
	cfg.PassengerFerry = &passenger
	cfg.ShowDrivingTimes = &drive

	if err := config.Save(cfg); err != nil {
		return err
	}

	fmt.Println(accentStyle.Render("\n✅ Ferry filters saved.\n"))
	return nil
}

func runSetLimitsTUI(cfg *config.AppConfig) error {
	opts := cfg.Resolve()
	radiusStr := strconv.Itoa(opts.SearchRadiusMeters)
	maxStr := strconv.Itoa(opts.MaxResults)

	validatePositiveInt := func(s string) error {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return fmt.Errorf("must be a positive whole number")
		}
		return nil
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Search radius in meters").
				Description("How far away a quay may be and still show up near you.").
				Value(&radiusStr).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Maximum results").
				Description("Cap on the ranked quay list.").
				Value(&maxStr).
				Validate(validatePositiveInt),
		),
	).WithTheme(GetTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.SearchRadiusMeters, _ = strconv.Atoi(radiusStr)
	cfg.MaxResults, _ = strconv.Atoi(maxStr)

	if err := config.Save(cfg); err != nil {
		return err
	}

	fmt.Println(accentStyle.Render("\n✅ Search limits saved.\n"))
	return nil
}

func colorBlock(color string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("██")
}

func runSetThemeTUI(cfg *config.AppConfig) error {
	var input string

	inputForm := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Choose an Accent Color for ferjectl").
				Description("Select a curated style or choose Custom to enter your own Hex.").
				Options(
					huh.NewOption(fmt.Sprintf("%s Fjord Blue", colorBlock("32")), "32"),
					huh.NewOption(fmt.Sprintf("%s Sunset Orange", colorBlock("208")), "208"),
					huh.NewOption(fmt.Sprintf("%s Seafoam Green", colorBlock("42")), "42"),
					huh.NewOption(fmt.Sprintf("%s Midnight Purple", colorBlock("99")), "99"),
					huh.NewOption("✨ Custom Hex Code", "custom"),
				).
				Value(&input),
		),
	).WithTheme(GetTheme())

	if err := inputForm.Run(); err != nil {
		return err
	}

	if input == "custom" {
		var hexInput string
		hexForm := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Enter a Hex Color Code").
					Description("Include the `#` symbol. Example: #FF00FF").
					Placeholder("#").
					Value(&hexInput).
					Validate(func(str string) error {
						if len(str) != 7 || !strings.HasPrefix(str, "#") {
							return fmt.Errorf("must be a valid 6-character hex code starting with #")
						}
						return nil
					}),
			),
		).WithTheme(GetTheme())

		if err := hexForm.Run(); err != nil {
			return err
		}
		cfg.AccentColor = hexInput
	} else {
		cfg.AccentColor = input
	}

	if err := config.Save(cfg); err != nil {
		return err
	}

	fmt.Println(accentStyle.Render("\n✅ Beautiful! The theme color is now saved.\n"))
	return nil
}
