package ferry

import (
	"context"
	"time"

	"github.com/datajonas82/fergetid-sub000/pkg/entur"
	"github.com/datajonas82/fergetid-sub000/pkg/routing"
)

// Transport classification tokens used by the journey planner.
const (
	ModeWater = "water"

	SubmodeLocalCarFerry       = "localCarFerry"
	SubmodeLocalPassengerFerry = "localPassengerFerry"
	SubmodeHighSpeedPassenger  = "highSpeedPassengerService"
)

// excludedSubmodes are never surfaced regardless of active filters.
var excludedSubmodes = map[string]bool{
	"internationalCarFerry":       true,
	"internationalPassengerFerry": true,
}

// IsCarFerrySubmode reports whether the submode is a local car ferry.
func IsCarFerrySubmode(submode string) bool {
	return submode == SubmodeLocalCarFerry
}

// IsPassengerSubmode reports whether the submode belongs to the
// recognized passenger-ferry set.
func IsPassengerSubmode(submode string) bool {
	return submode == SubmodeLocalPassengerFerry || submode == SubmodeHighSpeedPassenger
}

// IsExcludedSubmode reports whether the submode is categorically out.
func IsExcludedSubmode(submode string) bool {
	return excludedSubmodes[submode]
}

// Quay is a ferry boarding location from the catalog.
type Quay struct {
	ID        string
	Name      string
	Latitude  float64
	Longitude float64
	Submode   string
}

// Candidate is a quay with its straight-line distance from the origin,
// alive only during one location-mode pipeline run.
type Candidate struct {
	Quay     Quay
	Distance float64
}

// Result is an enriched quay ready for presentation: its upcoming
// departures, drive information and return cards.
type Result struct {
	Quay       Quay
	Departures []entur.EstimatedCall

	// Driving enrichment; zero values mean not computed.
	DriveMinutes int
	DriveMeters  int
	RouteSource  string

	Returns []ReturnCard
}

// NextDeparture returns the earliest departure strictly after now,
// or false when none exists.
func (r Result) NextDeparture(now time.Time) (entur.EstimatedCall, bool) {
	for _, call := range r.Departures {
		if call.AimedDepartureTime.After(now) {
			return call, true
		}
	}
	return entur.EstimatedCall{}, false
}

// LaterDepartures returns up to max departures following the next one.
func (r Result) LaterDepartures(now time.Time, max int) []entur.EstimatedCall {
	var later []entur.EstimatedCall
	seenNext := false
	for _, call := range r.Departures {
		if !call.AimedDepartureTime.After(now) {
			continue
		}
		if !seenNext {
			seenNext = true
			continue
		}
		later = append(later, call)
		if len(later) == max {
			break
		}
	}
	return later
}

// ReturnCard pairs an origin quay with its return-direction quay and
// the filtered departures back. Destination is held by identifier, not
// by reference, so cards can be replaced as a unit.
type ReturnCard struct {
	ParentQuayID    string
	DestinationID   string
	DestinationName string
	OriginQuayID    string
	OriginQuayName  string
	LineID          string
	Departures      []entur.EstimatedCall
}

// PlannerAPI is the journey-planner surface the core consumes.
type PlannerAPI interface {
	StopPlaces(ctx context.Context) ([]entur.StopPlace, error)
	EstimatedCalls(ctx context.Context, stopID string, window time.Duration, count int) ([]entur.EstimatedCall, error)
}

// Router computes driving routes; satisfied by routing.Chain.
type Router interface {
	Route(ctx context.Context, origin, dest routing.Point, opts routing.Options) (routing.Result, error)
}
