package ferry

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/datajonas82/fergetid-sub000/pkg/config"
	"github.com/datajonas82/fergetid-sub000/pkg/entur"
)

const (
	shortWindow      = 12 * time.Hour
	shortWindowCalls = 20
	longWindow       = 24 * time.Hour
	longWindowCalls  = 50

	// longDriveMinutes is the drive-time hint beyond which the wider
	// departure window is requested, so distant users still see
	// departures they can actually reach.
	longDriveMinutes = 120

	returnWindowCalls = 50
)

// Fetcher retrieves and filters upcoming departures for a stop.
type Fetcher struct {
	api  PlannerAPI
	opts config.Options

	// retryDelay is the pause before the single retry; tests shrink it.
	retryDelay time.Duration
}

func NewFetcher(api PlannerAPI, opts config.Options) *Fetcher {
	return &Fetcher{api: api, opts: opts, retryDelay: 250 * time.Millisecond}
}

// Fetch returns upcoming calls at the stop ordered ascending by aimed
// time, filtered to the active submode set. windowHint is the expected
// one-way driving time in minutes; long drives widen the window.
// Persistent upstream failure yields an empty slice, never an error.
func (f *Fetcher) Fetch(ctx context.Context, stopID string, windowHint int) []entur.EstimatedCall {
	window, count := shortWindow, shortWindowCalls
	if windowHint > longDriveMinutes {
		window, count = longWindow, longWindowCalls
	}
	return f.fetch(ctx, stopID, window, count)
}

// FetchReturns requests the wide window used when collecting
// return-direction calls at a paired quay.
func (f *Fetcher) FetchReturns(ctx context.Context, stopID string) []entur.EstimatedCall {
	return f.fetch(ctx, stopID, longWindow, returnWindowCalls)
}

func (f *Fetcher) fetch(ctx context.Context, stopID string, window time.Duration, count int) []entur.EstimatedCall {
	calls, err := f.api.EstimatedCalls(ctx, stopID, window, count)
	if err != nil {
		// One transient failure is tolerated; the batch moves on after that
		select {
		case <-time.After(f.retryDelay):
		case <-ctx.Done():
			return nil
		}
		calls, err = f.api.EstimatedCalls(ctx, stopID, window, count)
		if err != nil {
			log.Printf("[departures] giving up on %s: %v", stopID, err)
			return nil
		}
	}

	filtered := calls[:0:0]
	for _, call := range calls {
		if f.admit(call.Line().TransportSubmode) {
			filtered = append(filtered, call)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].AimedDepartureTime.Before(filtered[j].AimedDepartureTime)
	})
	return filtered
}

func (f *Fetcher) admit(submode string) bool {
	if IsExcludedSubmode(submode) {
		return false
	}
	if IsCarFerrySubmode(submode) {
		return f.opts.CarFerry
	}
	if IsPassengerSubmode(submode) {
		return f.opts.PassengerFerry
	}
	return false
}
