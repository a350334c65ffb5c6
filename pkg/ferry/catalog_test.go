package ferry

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/datajonas82/fergetid-sub000/pkg/config"
	"github.com/datajonas82/fergetid-sub000/pkg/entur"
)

// fakePlanner is a PlannerAPI stub shared by the core tests.
type fakePlanner struct {
	mu        sync.Mutex
	stops     []entur.StopPlace
	stopsErr  error
	calls     map[string][]entur.EstimatedCall
	callsErr  map[string]error
	loadCount atomic.Int64
	// failures[stopID] counts down transient EstimatedCalls errors
	failures map[string]int
	// fetchCount tracks per-stop call fetches
	fetchCount map[string]int
}

func newFakePlanner() *fakePlanner {
	return &fakePlanner{
		calls:      make(map[string][]entur.EstimatedCall),
		callsErr:   make(map[string]error),
		failures:   make(map[string]int),
		fetchCount: make(map[string]int),
	}
}

func (f *fakePlanner) StopPlaces(_ context.Context) ([]entur.StopPlace, error) {
	f.loadCount.Add(1)
	return f.stops, f.stopsErr
}

func (f *fakePlanner) EstimatedCalls(_ context.Context, stopID string, _ time.Duration, count int) ([]entur.EstimatedCall, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCount[stopID]++
	if f.failures[stopID] > 0 {
		f.failures[stopID]--
		return nil, errors.New("transient upstream error")
	}
	if err := f.callsErr[stopID]; err != nil {
		return nil, err
	}
	calls := f.calls[stopID]
	if len(calls) > count {
		calls = calls[:count]
	}
	return calls, nil
}

func allFiltersOn() config.Options {
	return config.Options{
		CarFerry:           true,
		PassengerFerry:     true,
		ShowDrivingTimes:   true,
		SearchRadiusMeters: config.DefaultSearchRadiusMeters,
		MaxResults:         config.DefaultMaxResults,
	}
}

func TestCatalog_FiltersToEligibleQuays(t *testing.T) {
	planner := newFakePlanner()
	planner.stops = []entur.StopPlace{
		{ID: "NSR:StopPlace:1", Name: "Lavik ferjekai", Latitude: 61.1, Longitude: 5.53, TransportModes: []string{"water"}, TransportSubmode: "localCarFerry"},
		{ID: "NSR:StopPlace:2", Name: "Bergen busstasjon", Latitude: 60.39, Longitude: 5.33, TransportModes: []string{"bus"}, TransportSubmode: "localBus"},
		{ID: "NSR:StopPlace:3", Name: "Kiel terminal", Latitude: 60.0, Longitude: 5.0, TransportModes: []string{"water"}, TransportSubmode: "internationalCarFerry"},
		{ID: "NSR:StopPlace:4", Name: "Kleppestø hurtigbåtkai", Latitude: 60.41, Longitude: 5.22, TransportModes: []string{"water"}, TransportSubmode: "highSpeedPassengerService"},
	}

	cat := NewCatalog(planner, allFiltersOn(), config.CuratedData{})
	if err := cat.Load(context.Background()); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	if len(cat.All()) != 2 {
		t.Fatalf("expected 2 eligible quays, got %d", len(cat.All()))
	}
	if _, ok := cat.Get("NSR:StopPlace:2"); ok {
		t.Errorf("bus station must not be in the catalog")
	}
	if _, ok := cat.Get("NSR:StopPlace:3"); ok {
		t.Errorf("excluded submode must not be in the catalog")
	}
}

func TestCatalog_PassengerFilterOff(t *testing.T) {
	planner := newFakePlanner()
	planner.stops = []entur.StopPlace{
		{ID: "NSR:StopPlace:1", Name: "Lavik", TransportModes: []string{"water"}, TransportSubmode: "localCarFerry"},
		{ID: "NSR:StopPlace:4", Name: "Kleppestø", TransportModes: []string{"water"}, TransportSubmode: "highSpeedPassengerService"},
	}

	opts := allFiltersOn()
	opts.PassengerFerry = false
	cat := NewCatalog(planner, opts, config.CuratedData{})
	if err := cat.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(cat.All()) != 1 {
		t.Fatalf("expected only the car ferry, got %d quays", len(cat.All()))
	}
}

func TestCatalog_AppliesCoordinateOverrides(t *testing.T) {
	planner := newFakePlanner()
	planner.stops = []entur.StopPlace{
		{ID: "NSR:StopPlace:1", Name: "Kvanndal ferjekai", Latitude: 60.0, Longitude: 6.0, TransportModes: []string{"water"}, TransportSubmode: "localCarFerry"},
		{ID: "NSR:StopPlace:2", Name: "Utne ferjekai", Latitude: 60.0, Longitude: 6.1, TransportModes: []string{"water"}, TransportSubmode: "localCarFerry"},
	}

	curated := config.CuratedData{
		CoordinateOverrides: []config.CoordinateOverride{
			{StopID: "NSR:StopPlace:1", Latitude: 60.4264, Longitude: 6.5895},
			{Name: "Utne", Latitude: 60.4213, Longitude: 6.6244},
		},
	}

	cat := NewCatalog(planner, allFiltersOn(), curated)
	if err := cat.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	kvanndal, _ := cat.Get("NSR:StopPlace:1")
	if kvanndal.Latitude != 60.4264 {
		t.Errorf("id-keyed override not applied: %+v", kvanndal)
	}

	utne, _ := cat.Get("NSR:StopPlace:2")
	if utne.Longitude != 6.6244 {
		t.Errorf("name-keyed override not applied: %+v", utne)
	}
}

func TestCatalog_LoadFailureMarksLoaded(t *testing.T) {
	planner := newFakePlanner()
	planner.stopsErr = errors.New("network down")

	cat := NewCatalog(planner, allFiltersOn(), config.CuratedData{})
	err := cat.Load(context.Background())
	if !errors.Is(err, ErrCatalogUnavailable) {
		t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
	}

	if !cat.Loaded() {
		t.Errorf("failed load must still mark the catalog loaded")
	}
	if len(cat.All()) != 0 {
		t.Errorf("failed load must leave the catalog empty")
	}
}

func TestCatalog_ConcurrentLoadsShareOneAttempt(t *testing.T) {
	planner := newFakePlanner()
	planner.stops = []entur.StopPlace{
		{ID: "NSR:StopPlace:1", Name: "Lavik", TransportModes: []string{"water"}, TransportSubmode: "localCarFerry"},
	}

	cat := NewCatalog(planner, allFiltersOn(), config.CuratedData{})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cat.Load(context.Background())
		}()
	}
	wg.Wait()

	if planner.loadCount.Load() != 1 {
		t.Errorf("expected a single upstream load, got %d", planner.loadCount.Load())
	}
}

func TestCatalog_FindByName(t *testing.T) {
	planner := newFakePlanner()
	planner.stops = []entur.StopPlace{
		{ID: "NSR:StopPlace:1", Name: "Dragsvik ferjekai", TransportModes: []string{"water"}, TransportSubmode: "localCarFerry"},
	}

	cat := NewCatalog(planner, allFiltersOn(), config.CuratedData{})
	if err := cat.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	if q, ok := cat.FindByName("dragsvik"); !ok || q.ID != "NSR:StopPlace:1" {
		t.Errorf("expected normalized lookup to find Dragsvik, got %+v ok=%v", q, ok)
	}
	if _, ok := cat.FindByName("hella"); ok {
		t.Errorf("unknown name must not resolve")
	}
}
