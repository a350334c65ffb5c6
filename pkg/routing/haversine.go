package routing

import (
	"context"
	"math"
)

const (
	earthRadiusMeters = 6371000.0
	// fallbackSpeedKmh estimates driving time when no road network
	// answer is available.
	fallbackSpeedKmh = 50.0
)

// HaversineDistance returns the great-circle distance in meters.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// HaversineAdapter is the terminal member of the provider chain. It
// cannot fail, cannot detect ferries, and derives time from a flat
// 50 km/h assumption.
type HaversineAdapter struct{}

func NewHaversineAdapter() *HaversineAdapter { return &HaversineAdapter{} }

func (h *HaversineAdapter) Name() string { return "haversine" }

func (h *HaversineAdapter) Route(_ context.Context, origin, dest Point, _ Options) (Result, error) {
	meters := HaversineDistance(origin.Latitude, origin.Longitude, dest.Latitude, dest.Longitude)
	seconds := meters / (fallbackSpeedKmh * 1000 / 3600)

	return Result{
		Minutes: minutesFromSeconds(seconds),
		Meters:  int(meters),
		Source:  h.Name(),
	}, nil
}
