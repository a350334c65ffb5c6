package location

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStore_SaveAndLoad(t *testing.T) {
	store := NewStoreAt(t.TempDir())

	original := Position{
		Latitude:  60.4,
		Longitude: 5.25,
		Timestamp: time.Now().Truncate(time.Millisecond),
	}
	store.Save(original)

	loaded, ok := store.Load()
	if !ok {
		t.Fatalf("expected a persisted position")
	}
	if loaded.Latitude != original.Latitude || loaded.Longitude != original.Longitude {
		t.Errorf("coordinates not preserved: %+v", loaded)
	}
	if !loaded.Timestamp.Equal(original.Timestamp) {
		t.Errorf("timestamp not preserved: got %v want %v", loaded.Timestamp, original.Timestamp)
	}
}

func TestStore_MissingRecordIsAbsent(t *testing.T) {
	store := NewStoreAt(t.TempDir())
	if _, ok := store.Load(); ok {
		t.Fatalf("expected no position in empty store")
	}
}

func TestStore_MalformedRecordIsAbsent(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "position.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	store := NewStoreAt(dir)
	if _, ok := store.Load(); ok {
		t.Fatalf("expected malformed record to be treated as absent")
	}
}

func TestPosition_Fresh(t *testing.T) {
	now := time.Now()

	fresh := Position{Latitude: 60, Longitude: 5, Timestamp: now.Add(-5 * time.Minute)}
	if !fresh.Fresh(now) {
		t.Errorf("5 minute old fix should be fresh")
	}

	stale := Position{Latitude: 60, Longitude: 5, Timestamp: now.Add(-31 * time.Minute)}
	if stale.Fresh(now) {
		t.Errorf("31 minute old fix should be stale")
	}

	zero := Position{Latitude: 60, Longitude: 5}
	if zero.Fresh(now) {
		t.Errorf("fix without timestamp should be stale")
	}
}
