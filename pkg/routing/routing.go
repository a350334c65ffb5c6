package routing

import (
	"context"
	"fmt"
)

// Point is a WGS84 coordinate pair.
type Point struct {
	Latitude  float64
	Longitude float64
}

// Options modify how a route is computed.
type Options struct {
	// AvoidFerries requests a road-only route. Providers that cannot
	// honor it must report traversed ferries via Result.HasFerry when
	// they can detect them.
	AvoidFerries bool
}

// Result is a computed driving route between two points.
type Result struct {
	// Minutes is the driving time, at least 1.
	Minutes int
	// Meters is the route length.
	Meters int
	// Source names the provider that produced the result.
	Source string
	// HasFerry is true when the route still crosses a ferry despite
	// ferry avoidance being requested.
	HasFerry bool
}

// Adapter computes a driving route between two coordinates.
type Adapter interface {
	Name() string
	Route(ctx context.Context, origin, dest Point, opts Options) (Result, error)
}

// cacheKey rounds both coordinates to five decimals so that nearby
// GPS fixes share cache entries and in-flight requests.
func cacheKey(origin, dest Point, avoidFerries bool) string {
	return fmt.Sprintf("%.5f,%.5f|%.5f,%.5f|%t",
		origin.Latitude, origin.Longitude, dest.Latitude, dest.Longitude, avoidFerries)
}

// minutesFromSeconds converts a provider duration to whole minutes,
// never reporting less than one.
func minutesFromSeconds(seconds float64) int {
	minutes := int(seconds / 60)
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
