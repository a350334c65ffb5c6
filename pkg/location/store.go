package location

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// storedPosition is the disk data format
type storedPosition struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp_ms"`
}

// Store persists the last-known position between runs. A missing or
// malformed record is treated as absent, never as an error.
type Store struct {
	dir string
}

// NewStore uses the default cache directory under the user's home.
func NewStore() *Store {
	return &Store{}
}

// NewStoreAt pins the cache directory, used by tests.
func NewStoreAt(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path() (string, error) {
	dir := s.dir
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not find user home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".ferjectl_cache")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("could not create cache directory: %w", err)
	}
	return filepath.Join(dir, "position.json"), nil
}

// Load returns the persisted position, if one exists.
func (s *Store) Load() (Position, bool) {
	path, err := s.path()
	if err != nil {
		return Position{}, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Position{}, false
	}

	var stored storedPosition
	if err := json.Unmarshal(data, &stored); err != nil {
		return Position{}, false
	}
	if stored.Latitude == 0 && stored.Longitude == 0 {
		return Position{}, false
	}

	return Position{
		Latitude:  stored.Latitude,
		Longitude: stored.Longitude,
		Timestamp: time.UnixMilli(stored.Timestamp),
	}, true
}

// Save writes the position to disk. Failures are silent; a missing
// cache only costs the next run its warm start.
func (s *Store) Save(p Position) {
	path, err := s.path()
	if err != nil {
		return
	}

	stored := storedPosition{
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		Timestamp: p.Timestamp.UnixMilli(),
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return
	}

	_ = os.WriteFile(path, data, 0644)
}
