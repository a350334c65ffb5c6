package ferry

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/datajonas82/fergetid-sub000/pkg/config"
	"github.com/datajonas82/fergetid-sub000/pkg/entur"
	"github.com/datajonas82/fergetid-sub000/pkg/location"
	"github.com/datajonas82/fergetid-sub000/pkg/routing"
)

var (
	// ErrNoNearbyQuays means nothing was inside the search radius.
	ErrNoNearbyQuays = errors.New("no ferry quays within search radius")
	// ErrNoDrivableQuays means candidates existed but none is
	// reachable without taking a ferry.
	ErrNoDrivableQuays = errors.New("no ferry quays reachable by road")
)

const (
	departureChunkSize   = 20
	candidateCap         = 100
	routingBatchSize     = 12
	passengerCutoffMeter = 10000
	walkingSpeedMS       = 1.4
)

// ProximityEngine produces the location-mode result list: nearby quays
// with live departures, ranked by road driving distance.
type ProximityEngine struct {
	fetcher *Fetcher
	router  Router
	opts    config.Options
	now     func() time.Time
}

func NewProximityEngine(fetcher *Fetcher, router Router, opts config.Options) *ProximityEngine {
	return &ProximityEngine{fetcher: fetcher, router: router, opts: opts, now: time.Now}
}

// approxDistance is a flat-earth distance in meters, cheap enough to
// run over the whole catalog. Good to well under a percent at this
// latitude and radius.
func approxDistance(lat1, lon1, lat2, lon2 float64) float64 {
	meanLat := (lat1 + lat2) / 2 * math.Pi / 180
	dy := (lat2 - lat1) * 110574
	dx := (lon2 - lon1) * 111320 * math.Cos(meanLat)
	return math.Sqrt(dx*dx + dy*dy)
}

// Nearest runs the proximity pipeline against the given quays.
func (p *ProximityEngine) Nearest(ctx context.Context, origin location.Position, quays []Quay) ([]Result, error) {
	candidates := p.candidates(origin, quays)
	if len(candidates) == 0 {
		return nil, ErrNoNearbyQuays
	}

	viable := p.withDepartures(ctx, candidates)
	results := p.drive(ctx, origin, viable)
	if len(results) == 0 {
		return nil, ErrNoDrivableQuays
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].DriveMeters < results[j].DriveMeters
	})
	if len(results) > p.opts.MaxResults {
		results = results[:p.opts.MaxResults]
	}
	return results, nil
}

// candidates retains eligible quays inside the radius, sorted by
// straight-line distance. Passenger-ferry quays beyond walking range
// are dropped here, before any network work.
func (p *ProximityEngine) candidates(origin location.Position, quays []Quay) []Candidate {
	radius := float64(p.opts.SearchRadiusMeters)

	var candidates []Candidate
	for _, q := range quays {
		d := approxDistance(origin.Latitude, origin.Longitude, q.Latitude, q.Longitude)
		if d > radius {
			continue
		}
		if IsPassengerSubmode(q.Submode) && d > passengerCutoffMeter {
			continue
		}
		candidates = append(candidates, Candidate{Quay: q, Distance: d})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})
	if len(candidates) > candidateCap {
		candidates = candidates[:candidateCap]
	}
	return candidates
}

type viableCandidate struct {
	Candidate
	departures []entur.EstimatedCall
}

// withDepartures walks the candidate list in fixed-size chunks,
// fetching departures in parallel, and stops growing the working set
// once enough live candidates are accumulated.
func (p *ProximityEngine) withDepartures(ctx context.Context, candidates []Candidate) []viableCandidate {
	now := p.now()
	var viable []viableCandidate

	for start := 0; start < len(candidates); start += departureChunkSize {
		end := start + departureChunkSize
		if end > len(candidates) {
			end = len(candidates)
		}
		chunk := candidates[start:end]

		fetched := make([][]entur.EstimatedCall, len(chunk))
		var wg sync.WaitGroup
		for i, cand := range chunk {
			wg.Add(1)
			go func(i int, cand Candidate) {
				defer wg.Done()
				hint := driveHintMinutes(cand.Distance)
				fetched[i] = p.fetcher.Fetch(ctx, cand.Quay.ID, hint)
			}(i, cand)
		}
		wg.Wait()

		for i, cand := range chunk {
			if hasFutureDeparture(fetched[i], now) {
				viable = append(viable, viableCandidate{Candidate: cand, departures: fetched[i]})
			}
		}
		if len(viable) >= p.opts.MaxResults {
			break
		}
	}
	return viable
}

// drive enriches viable candidates with road routing, in bounded
// batches. Car-ferry quays whose road route still crosses a ferry are
// discarded; passenger quays get a walking estimate instead.
func (p *ProximityEngine) drive(ctx context.Context, origin location.Position, viable []viableCandidate) []Result {
	results := make([]*Result, len(viable))

	for start := 0; start < len(viable); start += routingBatchSize {
		end := start + routingBatchSize
		if end > len(viable) {
			end = len(viable)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = p.driveOne(ctx, origin, viable[i])
			}(i)
		}
		wg.Wait()
	}

	var kept []Result
	for _, r := range results {
		if r != nil {
			kept = append(kept, *r)
		}
	}
	return kept
}

func (p *ProximityEngine) driveOne(ctx context.Context, origin location.Position, cand viableCandidate) *Result {
	result := &Result{Quay: cand.Quay, Departures: cand.departures}

	if IsPassengerSubmode(cand.Quay.Submode) {
		// The user walks to a passenger quay
		result.DriveMinutes = walkMinutes(cand.Distance)
		result.DriveMeters = int(cand.Distance)
		result.RouteSource = "walk"
		return result
	}

	res, err := p.router.Route(ctx,
		routing.Point{Latitude: origin.Latitude, Longitude: origin.Longitude},
		routing.Point{Latitude: cand.Quay.Latitude, Longitude: cand.Quay.Longitude},
		routing.Options{AvoidFerries: true})
	if err != nil {
		return nil
	}
	if res.HasFerry {
		// Driving to this quay means taking another ferry first
		return nil
	}

	result.DriveMinutes = res.Minutes
	result.DriveMeters = res.Meters
	result.RouteSource = res.Source
	return result
}

func hasFutureDeparture(calls []entur.EstimatedCall, now time.Time) bool {
	for _, call := range calls {
		if call.AimedDepartureTime.After(now) {
			return true
		}
	}
	return false
}

// driveHintMinutes estimates driving time from straight-line distance,
// used only to size the departure window.
func driveHintMinutes(meters float64) int {
	return int(meters / (50 * 1000 / 60))
}

func walkMinutes(meters float64) int {
	minutes := int(meters / walkingSpeedMS / 60)
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
