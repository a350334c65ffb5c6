package ferry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/datajonas82/fergetid-sub000/pkg/entur"
	"github.com/datajonas82/fergetid-sub000/pkg/location"
	"github.com/datajonas82/fergetid-sub000/pkg/routing"
)

// fakeRouter maps destination quay coordinates to canned results.
type fakeRouter struct {
	mu      sync.Mutex
	results map[routing.Point]routing.Result
	errs    map[routing.Point]error
	calls   int
}

func newFakeRouter() *fakeRouter {
	return &fakeRouter{
		results: make(map[routing.Point]routing.Result),
		errs:    make(map[routing.Point]error),
	}
}

func (f *fakeRouter) Route(_ context.Context, _, dest routing.Point, _ routing.Options) (routing.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err, ok := f.errs[dest]; ok {
		return routing.Result{}, err
	}
	if res, ok := f.results[dest]; ok {
		return res, nil
	}
	return routing.Result{Minutes: 10, Meters: 8000, Source: "fake"}, nil
}

func originAt(lat, lon float64) location.Position {
	return location.Position{Latitude: lat, Longitude: lon, Timestamp: time.Now()}
}

func TestProximity_RanksByRoadDistance(t *testing.T) {
	now := time.Now()
	planner := newFakePlanner()
	planner.calls["NSR:StopPlace:near"] = []entur.EstimatedCall{carFerryCall(now.Add(30*time.Minute), "Oppedal")}
	planner.calls["NSR:StopPlace:far"] = []entur.EstimatedCall{carFerryCall(now.Add(40*time.Minute), "Dragsvik")}

	quays := []Quay{
		{ID: "NSR:StopPlace:near", Name: "Near kai", Latitude: 60.41, Longitude: 5.26, Submode: SubmodeLocalCarFerry},
		{ID: "NSR:StopPlace:far", Name: "Far kai", Latitude: 60.48, Longitude: 5.30, Submode: SubmodeLocalCarFerry},
	}

	router := newFakeRouter()
	router.results[routing.Point{Latitude: 60.41, Longitude: 5.26}] = routing.Result{Minutes: 25, Meters: 20000, Source: "here"}
	router.results[routing.Point{Latitude: 60.48, Longitude: 5.30}] = routing.Result{Minutes: 12, Meters: 9000, Source: "here"}

	fetcher := NewFetcher(planner, allFiltersOn())
	fetcher.retryDelay = time.Millisecond
	engine := NewProximityEngine(fetcher, router, allFiltersOn())

	results, err := engine.Nearest(context.Background(), originAt(60.40, 5.25), quays)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	// The straight-line nearer quay has the longer road; road wins
	if results[0].Quay.ID != "NSR:StopPlace:far" {
		t.Errorf("expected road-distance ordering, got %s first", results[0].Quay.ID)
	}
}

func TestProximity_NoQuaysInRadius(t *testing.T) {
	planner := newFakePlanner()
	fetcher := NewFetcher(planner, allFiltersOn())
	fetcher.retryDelay = time.Millisecond
	engine := NewProximityEngine(fetcher, newFakeRouter(), allFiltersOn())

	// Trondheim quay, Bergen origin: far outside 60 km
	quays := []Quay{{ID: "X", Name: "Flakk", Latitude: 63.44, Longitude: 10.23, Submode: SubmodeLocalCarFerry}}

	_, err := engine.Nearest(context.Background(), originAt(60.40, 5.25), quays)
	if !errors.Is(err, ErrNoNearbyQuays) {
		t.Fatalf("expected ErrNoNearbyQuays, got %v", err)
	}
}

func TestProximity_RadiusBoundaryInclusive(t *testing.T) {
	planner := newFakePlanner()
	fetcher := NewFetcher(planner, allFiltersOn())
	fetcher.retryDelay = time.Millisecond
	engine := NewProximityEngine(fetcher, newFakeRouter(), allFiltersOn())

	origin := originAt(60.0, 5.0)
	// Due-north displacement maps 1:1 onto the latitude scale factor,
	// so the straight-line distances come out at ~59 999 m and
	// ~60 002 m around the 60 km cutoff.
	atBoundary := Quay{ID: "edge", Latitude: 60.0 + 59999.0/110574, Longitude: 5.0, Submode: SubmodeLocalCarFerry}
	beyond := Quay{ID: "out", Latitude: 60.0 + 60002.0/110574, Longitude: 5.0, Submode: SubmodeLocalCarFerry}

	cands := engine.candidates(origin, []Quay{atBoundary, beyond})
	if len(cands) != 1 || cands[0].Quay.ID != "edge" {
		t.Fatalf("expected only the boundary quay retained, got %v", cands)
	}
}

func TestProximity_FerryRouteDiscardsCarCandidate(t *testing.T) {
	now := time.Now()
	planner := newFakePlanner()
	planner.calls["NSR:StopPlace:b"] = []entur.EstimatedCall{carFerryCall(now.Add(30*time.Minute), "Elsewhere")}

	quays := []Quay{{ID: "NSR:StopPlace:b", Name: "B kai", Latitude: 60.41, Longitude: 5.26, Submode: SubmodeLocalCarFerry}}

	router := newFakeRouter()
	router.results[routing.Point{Latitude: 60.41, Longitude: 5.26}] = routing.Result{Minutes: 30, Meters: 25000, Source: "here", HasFerry: true}

	fetcher := NewFetcher(planner, allFiltersOn())
	fetcher.retryDelay = time.Millisecond
	engine := NewProximityEngine(fetcher, router, allFiltersOn())

	_, err := engine.Nearest(context.Background(), originAt(60.40, 5.25), quays)
	if !errors.Is(err, ErrNoDrivableQuays) {
		t.Fatalf("expected ErrNoDrivableQuays when the only route crosses a ferry, got %v", err)
	}
}

func TestProximity_PassengerQuayGetsWalkingEstimate(t *testing.T) {
	now := time.Now()
	planner := newFakePlanner()
	planner.calls["NSR:StopPlace:p"] = []entur.EstimatedCall{
		callOnLine(now.Add(20*time.Minute), "Strandkaien", "L9", "localPassengerFerry", nil),
	}

	// ~1.1 km from origin
	quays := []Quay{{ID: "NSR:StopPlace:p", Name: "Kleppestø", Latitude: 60.41, Longitude: 5.25, Submode: SubmodeLocalPassengerFerry}}

	router := newFakeRouter()
	fetcher := NewFetcher(planner, allFiltersOn())
	fetcher.retryDelay = time.Millisecond
	engine := NewProximityEngine(fetcher, router, allFiltersOn())

	results, err := engine.Nearest(context.Background(), originAt(60.40, 5.25), quays)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].RouteSource != "walk" {
		t.Errorf("expected walking estimate, got source %q", results[0].RouteSource)
	}
	if router.calls != 0 {
		t.Errorf("passenger quay must not be routed, saw %d routing calls", router.calls)
	}
}

func TestProximity_PassengerCutoffBeforeRouting(t *testing.T) {
	planner := newFakePlanner()
	fetcher := NewFetcher(planner, allFiltersOn())
	fetcher.retryDelay = time.Millisecond
	engine := NewProximityEngine(fetcher, newFakeRouter(), allFiltersOn())

	origin := originAt(60.0, 5.0)
	// 10 001 m straight-line: excluded; 9 999 m: kept
	tooFar := Quay{ID: "far", Latitude: 60.0 + 10002.0/110574, Longitude: 5.0, Submode: SubmodeLocalPassengerFerry}
	inRange := Quay{ID: "ok", Latitude: 60.0 + 9998.0/110574, Longitude: 5.0, Submode: SubmodeLocalPassengerFerry}

	cands := engine.candidates(origin, []Quay{tooFar, inRange})
	if len(cands) != 1 || cands[0].Quay.ID != "ok" {
		t.Fatalf("expected the distant passenger quay dropped, got %v", cands)
	}
}

func TestProximity_EarlyExitAfterEnoughViable(t *testing.T) {
	now := time.Now()
	planner := newFakePlanner()

	var quays []Quay
	for i := 0; i < 40; i++ {
		id := string(rune('a' + i%26))
		id = "NSR:StopPlace:" + id + string(rune('0'+i/26))
		quays = append(quays, Quay{
			ID:       id,
			Latitude: 60.0 + float64(i)*0.001, Longitude: 5.0,
			Submode: SubmodeLocalCarFerry,
		})
		planner.calls[id] = []entur.EstimatedCall{carFerryCall(now.Add(30*time.Minute), "X")}
	}

	opts := allFiltersOn()
	opts.MaxResults = 8
	fetcher := NewFetcher(planner, opts)
	fetcher.retryDelay = time.Millisecond
	engine := NewProximityEngine(fetcher, newFakeRouter(), opts)

	results, err := engine.Nearest(context.Background(), originAt(60.0, 5.0), quays)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 8 {
		t.Errorf("expected results capped at 8, got %d", len(results))
	}

	// The second chunk (and no more) may have been touched; the
	// first chunk of 20 already satisfied the early-exit threshold.
	fetched := 0
	for _, n := range planner.fetchCount {
		fetched += n
	}
	if fetched > 20 {
		t.Errorf("expected early exit after first chunk of 20 fetches, saw %d", fetched)
	}
}
