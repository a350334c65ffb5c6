package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// CuratedData carries hand-maintained corrections that the upstream
// catalog cannot provide: coordinate fixes for known bad stop entries
// and multi-quay ferry groups (triangles and quads) whose members are
// all mutually paired for return cards.
type CuratedData struct {
	CoordinateOverrides []CoordinateOverride `yaml:"coordinate_overrides" validate:"dive"`
	FerryGroups         [][]string           `yaml:"ferry_groups" validate:"dive,min=2"`
}

// CoordinateOverride replaces the catalog coordinates for a stop,
// matched either by its identifier or by its normalized display name.
type CoordinateOverride struct {
	StopID    string  `yaml:"stop_id"`
	Name      string  `yaml:"name"`
	Latitude  float64 `yaml:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude float64 `yaml:"longitude" validate:"required,gte=-180,lte=180"`
}

// DefaultCuratedData is the compiled-in dataset used when no curated
// data file is configured. The ferry groups are real Norwegian car
// ferry triangles where line topology alone would pair only two quays.
func DefaultCuratedData() CuratedData {
	return CuratedData{
		CoordinateOverrides: []CoordinateOverride{
			// The NSR entry for Kvanndal points at the village center,
			// a few hundred meters from the actual quay.
			{StopID: "NSR:StopPlace:58477", Latitude: 60.4264, Longitude: 6.5895},
			{Name: "utne", Latitude: 60.4213, Longitude: 6.6244},
		},
		FerryGroups: [][]string{
			{"dragsvik", "hella", "vangsnes"},
			{"krakhella", "rutledal", "rysjedalsvika"},
		},
	}
}

// LoadCuratedData reads and validates a curated data YAML file. An
// empty path yields the built-in defaults.
func LoadCuratedData(path string) (CuratedData, error) {
	if path == "" {
		return DefaultCuratedData(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return CuratedData{}, fmt.Errorf("failed to read curated data file: %w", err)
	}

	var curated CuratedData
	if err := yaml.Unmarshal(data, &curated); err != nil {
		return CuratedData{}, fmt.Errorf("failed to parse curated data YAML: %w", err)
	}

	v := validator.New()
	if err := v.Struct(curated); err != nil {
		return CuratedData{}, fmt.Errorf("curated data failed validation: %w", err)
	}

	for _, o := range curated.CoordinateOverrides {
		if o.StopID == "" && o.Name == "" {
			return CuratedData{}, fmt.Errorf("coordinate override needs a stop_id or a name")
		}
	}

	return curated, nil
}
