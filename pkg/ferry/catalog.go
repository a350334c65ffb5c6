package ferry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/datajonas82/fergetid-sub000/pkg/config"
	"github.com/datajonas82/fergetid-sub000/pkg/entur"
)

// ErrCatalogUnavailable means the stop place load failed; the catalog
// is still marked loaded so pipelines proceed with empty results.
var ErrCatalogUnavailable = errors.New("ferry quay catalog unavailable")

// catalogWaitBound caps how long consumers block on an in-flight load
// before proceeding with whatever state exists.
const catalogWaitBound = 10 * time.Second

// Catalog holds the session's set of eligible ferry quays, with
// curated coordinate overrides applied. It is loaded once; concurrent
// loaders share the same in-flight attempt.
type Catalog struct {
	api     PlannerAPI
	opts    config.Options
	curated config.CuratedData

	once    sync.Once
	done    chan struct{}
	loadErr error

	mu    sync.RWMutex
	quays map[string]Quay
}

func NewCatalog(api PlannerAPI, opts config.Options, curated config.CuratedData) *Catalog {
	return &Catalog{
		api:     api,
		opts:    opts,
		curated: curated,
		done:    make(chan struct{}),
		quays:   make(map[string]Quay),
	}
}

// Load retrieves and filters the stop places. It is idempotent; every
// caller observes the result of the single underlying attempt.
func (c *Catalog) Load(ctx context.Context) error {
	c.once.Do(func() {
		defer close(c.done)
		stops, err := c.api.StopPlaces(ctx)
		if err != nil {
			c.loadErr = fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
			return
		}
		c.ingest(stops)
	})
	<-c.done
	return c.loadErr
}

// WaitLoaded blocks until the load completes or the wait bound
// expires. It never blocks a pipeline indefinitely.
func (c *Catalog) WaitLoaded(ctx context.Context) {
	select {
	case <-c.done:
	case <-time.After(catalogWaitBound):
	case <-ctx.Done():
	}
}

// Loaded reports whether the load attempt has finished.
func (c *Catalog) Loaded() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *Catalog) ingest(stops []entur.StopPlace) {
	byID := make(map[string]config.CoordinateOverride)
	byName := make(map[string]config.CoordinateOverride)
	for _, o := range c.curated.CoordinateOverrides {
		if o.StopID != "" {
			byID[o.StopID] = o
		}
		if o.Name != "" {
			byName[NormalizeQuayName(o.Name)] = o
		}
	}

	quays := make(map[string]Quay)
	for _, stop := range stops {
		if !c.eligible(stop) {
			continue
		}

		quay := Quay{
			ID:        stop.ID,
			Name:      stop.Name,
			Latitude:  stop.Latitude,
			Longitude: stop.Longitude,
			Submode:   stop.TransportSubmode,
		}

		// Identifier overrides win over name overrides
		if o, ok := byID[quay.ID]; ok {
			quay.Latitude, quay.Longitude = o.Latitude, o.Longitude
		} else if o, ok := byName[NormalizeQuayName(quay.Name)]; ok {
			quay.Latitude, quay.Longitude = o.Latitude, o.Longitude
		}

		quays[quay.ID] = quay
	}

	c.mu.Lock()
	c.quays = quays
	c.mu.Unlock()
}

func (c *Catalog) eligible(stop entur.StopPlace) bool {
	water := false
	for _, mode := range stop.TransportModes {
		if mode == ModeWater {
			water = true
			break
		}
	}
	if !water {
		return false
	}
	if IsExcludedSubmode(stop.TransportSubmode) {
		return false
	}
	if IsCarFerrySubmode(stop.TransportSubmode) {
		return c.opts.CarFerry
	}
	if IsPassengerSubmode(stop.TransportSubmode) {
		return c.opts.PassengerFerry
	}
	return false
}

// Get looks up a quay by identifier.
func (c *Catalog) Get(id string) (Quay, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q, ok := c.quays[id]
	return q, ok
}

// FindByName resolves a quay by normalized-name equality, matching
// "Lavik" against "Lavik ferjekai".
func (c *Catalog) FindByName(name string) (Quay, bool) {
	target := NormalizeQuayName(name)
	if target == "" {
		return Quay{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, q := range c.quays {
		if NormalizeQuayName(q.Name) == target {
			return q, true
		}
	}
	return Quay{}, false
}

// All returns a copy of the loaded quays.
func (c *Catalog) All() []Quay {
	c.mu.RLock()
	defer c.mu.RUnlock()
	all := make([]Quay, 0, len(c.quays))
	for _, q := range c.quays {
		all = append(all, q)
	}
	return all
}
