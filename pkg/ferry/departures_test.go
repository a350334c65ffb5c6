package ferry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/datajonas82/fergetid-sub000/pkg/entur"
)

func carFerryCall(aimed time.Time, destination string) entur.EstimatedCall {
	return callOnLine(aimed, destination, "TEST:Line:car", "localCarFerry", nil)
}

func callOnLine(aimed time.Time, destination, lineID, submode string, quays []entur.LineQuay) entur.EstimatedCall {
	return entur.EstimatedCall{
		AimedDepartureTime: aimed,
		DestinationText:    destination,
		ServiceJourney: entur.ServiceJourney{
			ID: "TEST:ServiceJourney:" + lineID,
			JourneyPattern: entur.JourneyPattern{
				Line: entur.Line{
					ID:               lineID,
					TransportMode:    "water",
					TransportSubmode: submode,
					Quays:            quays,
				},
			},
		},
	}
}

func TestFetcher_SortsAscendingAndFiltersSubmodes(t *testing.T) {
	now := time.Now()
	planner := newFakePlanner()
	planner.calls["NSR:StopPlace:1"] = []entur.EstimatedCall{
		callOnLine(now.Add(90*time.Minute), "Oppedal", "L1", "localCarFerry", nil),
		callOnLine(now.Add(30*time.Minute), "Oppedal", "L1", "localCarFerry", nil),
		callOnLine(now.Add(10*time.Minute), "Kiel", "L2", "internationalCarFerry", nil),
	}

	fetcher := NewFetcher(planner, allFiltersOn())
	fetcher.retryDelay = time.Millisecond

	calls := fetcher.Fetch(context.Background(), "NSR:StopPlace:1", 30)
	if len(calls) != 2 {
		t.Fatalf("expected 2 admitted calls, got %d", len(calls))
	}
	if !calls[0].AimedDepartureTime.Before(calls[1].AimedDepartureTime) {
		t.Errorf("calls are not sorted ascending")
	}
}

func TestFetcher_PassengerFilterGovernsPassengerCalls(t *testing.T) {
	now := time.Now()
	planner := newFakePlanner()
	planner.calls["NSR:StopPlace:1"] = []entur.EstimatedCall{
		callOnLine(now.Add(15*time.Minute), "Kleppestø", "L3", "highSpeedPassengerService", nil),
	}

	opts := allFiltersOn()
	opts.PassengerFerry = false
	fetcher := NewFetcher(planner, opts)
	fetcher.retryDelay = time.Millisecond

	if calls := fetcher.Fetch(context.Background(), "NSR:StopPlace:1", 10); len(calls) != 0 {
		t.Errorf("expected passenger calls filtered out, got %d", len(calls))
	}
}

func TestFetcher_RetriesOnceThenSucceeds(t *testing.T) {
	now := time.Now()
	planner := newFakePlanner()
	planner.failures["NSR:StopPlace:1"] = 1
	planner.calls["NSR:StopPlace:1"] = []entur.EstimatedCall{
		carFerryCall(now.Add(20*time.Minute), "Oppedal"),
	}

	fetcher := NewFetcher(planner, allFiltersOn())
	fetcher.retryDelay = time.Millisecond

	calls := fetcher.Fetch(context.Background(), "NSR:StopPlace:1", 10)
	if len(calls) != 1 {
		t.Fatalf("expected retry to recover the calls, got %d", len(calls))
	}
	if planner.fetchCount["NSR:StopPlace:1"] != 2 {
		t.Errorf("expected exactly 2 attempts, got %d", planner.fetchCount["NSR:StopPlace:1"])
	}
}

func TestFetcher_PersistentFailureYieldsEmpty(t *testing.T) {
	planner := newFakePlanner()
	planner.callsErr["NSR:StopPlace:1"] = errors.New("upstream down")

	fetcher := NewFetcher(planner, allFiltersOn())
	fetcher.retryDelay = time.Millisecond

	if calls := fetcher.Fetch(context.Background(), "NSR:StopPlace:1", 10); calls != nil {
		t.Errorf("expected nil calls after persistent failure, got %v", calls)
	}
}

func TestFetcher_WindowPolicy(t *testing.T) {
	planner := newFakePlanner()
	fetcher := NewFetcher(planner, allFiltersOn())
	fetcher.retryDelay = time.Millisecond

	// The fake caps returned calls at the requested count; seed 60
	// calls and observe how many survive each hint.
	now := time.Now()
	var many []entur.EstimatedCall
	for i := 0; i < 60; i++ {
		many = append(many, carFerryCall(now.Add(time.Duration(i)*time.Minute), "Oppedal"))
	}
	planner.calls["NSR:StopPlace:1"] = many

	short := fetcher.Fetch(context.Background(), "NSR:StopPlace:1", 60)
	if len(short) != shortWindowCalls {
		t.Errorf("short drive should request %d calls, got %d", shortWindowCalls, len(short))
	}

	long := fetcher.Fetch(context.Background(), "NSR:StopPlace:1", 121)
	if len(long) != longWindowCalls {
		t.Errorf("long drive should request %d calls, got %d", longWindowCalls, len(long))
	}
}
