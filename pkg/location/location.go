package location

import (
	"context"
	"errors"
	"time"
)

// Freshness bounds how long a cached position is considered usable
// for an optimistic first render.
const Freshness = 30 * time.Minute

// Terminal geolocation failures, mapped from underlying causes so the
// orchestrator can surface distinguishable diagnostics.
var (
	ErrPermissionDenied = errors.New("location permission denied")
	ErrUnavailable      = errors.New("position unavailable")
	ErrTimeout          = errors.New("position fix timed out")
)

// Position is a geographic fix.
type Position struct {
	Latitude  float64
	Longitude float64
	Timestamp time.Time
}

// Fresh reports whether the fix is recent enough to render from while
// a new fix resolves.
func (p Position) Fresh(now time.Time) bool {
	if p.Timestamp.IsZero() {
		return false
	}
	return now.Sub(p.Timestamp) <= Freshness
}

// FixOptions parameterize a single geolocation attempt.
type FixOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaxAge       time.Duration
}

// Provider produces geographic fixes. Implementations must return one
// of the sentinel errors above on terminal failure.
type Provider interface {
	Current(ctx context.Context, opts FixOptions) (Position, error)
}

// StaticProvider returns a fixed position, used when coordinates come
// from command-line flags.
type StaticProvider struct {
	Position Position
}

func (s StaticProvider) Current(_ context.Context, _ FixOptions) (Position, error) {
	if s.Position.Latitude == 0 && s.Position.Longitude == 0 {
		return Position{}, ErrUnavailable
	}
	p := s.Position
	if p.Timestamp.IsZero() {
		p.Timestamp = time.Now()
	}
	return p, nil
}
