package entur

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// cacheDuration determines how long the stop place catalog is kept
// before refreshing. Quay topology changes rarely; departures are
// never cached.
const cacheDuration = 12 * time.Hour

// CacheEntry represents the disk data format
type CacheEntry struct {
	Timestamp time.Time   `json:"timestamp"`
	Stops     []StopPlace `json:"stops"`
}

// CachedClient wraps Client with a disk cache for the stop place
// catalog. EstimatedCalls passes straight through.
type CachedClient struct {
	*Client
	cacheDir string
}

// NewCachedClient caches stop places under ~/.ferjectl_cache. An
// empty dir selects the default location.
func NewCachedClient(dir string) *CachedClient {
	return &CachedClient{Client: NewClient(), cacheDir: dir}
}

func (c *CachedClient) StopPlaces(ctx context.Context) ([]StopPlace, error) {
	if stops, ok := c.readCache(); ok {
		return stops, nil
	}

	stops, err := c.Client.StopPlaces(ctx)
	if err != nil {
		return nil, err
	}
	c.writeCache(stops)
	return stops, nil
}

func (c *CachedClient) cachePath() (string, error) {
	dir := c.cacheDir
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
	return filepath.Join(dir, "stop_places.json"), nil
}

// readCache checks if a valid, unexpired catalog snapshot exists
func (c *CachedClient) readCache() ([]StopPlace, bool) {
	path, err := c.cachePath()
	if err != nil {
		return nil, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false // File doesn't exist or can't be read
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}

	if time.Since(entry.Timestamp) > cacheDuration {
		return nil, false // Expired
	}

	return entry.Stops, true
}

// writeCache saves the catalog snapshot to disk
func (c *CachedClient) writeCache(stops []StopPlace) {
	path, err := c.cachePath()
	if err != nil {
		return
	}

	entry := CacheEntry{
		Timestamp: time.Now(),
		Stops:     stops,
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return
	}

	_ = os.WriteFile(path, data, 0644)
}
