package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// AppConfig holds all user-defined persistent settings
type AppConfig struct {
	CarFerry           *bool  `json:"car_ferry,omitempty"`
	PassengerFerry     *bool  `json:"passenger_ferry,omitempty"`
	ShowDrivingTimes   *bool  `json:"show_driving_times,omitempty"`
	SearchRadiusMeters int    `json:"search_radius_meters,omitempty"`
	MaxResults         int    `json:"max_results,omitempty"`
	CuratedDataPath    string `json:"curated_data_path,omitempty"`
	AccentColor        string `json:"accent_color,omitempty"`
}

// Options is the resolved runtime configuration the pipelines consume.
type Options struct {
	CarFerry           bool
	PassengerFerry     bool
	ShowDrivingTimes   bool
	SearchRadiusMeters int
	MaxResults         int
}

const (
	DefaultSearchRadiusMeters = 60000
	DefaultMaxResults         = 8
)

// getConfigPath returns the absolute path to ~/.ferjectl.json
func getConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".ferjectl.json"), nil
}

// Load reads the application configuration from disk.
// Returns an empty struct if the file does not exist.
func Load() (*AppConfig, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, just return an empty default configuration
		if os.IsNotExist(err) {
			return &AppConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Save writes the application configuration back to disk.
func Save(cfg *AppConfig) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Resolve merges the saved configuration with built-in defaults.
// Ferry filters and driving-time enrichment are on unless explicitly
// disabled.
func (c *AppConfig) Resolve() Options {
	opts := Options{
		CarFerry:           true,
		PassengerFerry:     true,
		ShowDrivingTimes:   true,
		SearchRadiusMeters: DefaultSearchRadiusMeters,
		MaxResults:         DefaultMaxResults,
	}
	if c.CarFerry != nil {
		opts.CarFerry = *c.CarFerry
	}
	if c.PassengerFerry != nil {
		opts.PassengerFerry = *c.PassengerFerry
	}
	if c.ShowDrivingTimes != nil {
		opts.ShowDrivingTimes = *c.ShowDrivingTimes
	}
	if c.SearchRadiusMeters > 0 {
		opts.SearchRadiusMeters = c.SearchRadiusMeters
	}
	if c.MaxResults > 0 {
		opts.MaxResults = c.MaxResults
	}
	return opts
}
