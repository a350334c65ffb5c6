package ferry

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/datajonas82/fergetid-sub000/pkg/config"
	"github.com/datajonas82/fergetid-sub000/pkg/entur"
	"github.com/datajonas82/fergetid-sub000/pkg/geocode"
	"github.com/datajonas82/fergetid-sub000/pkg/location"
	"github.com/datajonas82/fergetid-sub000/pkg/routing"
)

// Mode identifies which pipeline produced the published state.
type Mode int

const (
	ModeIdle Mode = iota
	ModeSearch
	ModeLocation
)

const (
	debounceDelay      = 300 * time.Millisecond
	searchCatalogWait  = 8 * time.Second
	returnCardLimit    = 5
	lowAccuracyTimeout = 3 * time.Second
	lowAccuracyMaxAge  = 5 * time.Minute
	highAccuracyFix    = 10 * time.Second
)

// Snapshot is the published presentation state. Consumers receive a
// copy; the orchestrator never mutates a snapshot it has handed out.
type Snapshot struct {
	Mode      Mode
	Version   uint64
	Results   []Result
	PlaceName string
	Verdict   Verdict
	// ErrText is the user-facing pipeline-entry error, empty when the
	// run succeeded. Per-item enrichment failures never set it.
	ErrText string
}

// PlaceNamer resolves coordinates to a display name; satisfied by
// geocode.Resolver.
type PlaceNamer interface {
	Name(ctx context.Context, lat, lon float64) string
}

// Orchestrator is the top-level state machine behind both the search
// and the location experience. Every intent bumps a request version;
// pipeline runs carry the version captured at entry and late results
// from superseded runs are dropped without publication.
type Orchestrator struct {
	catalog   *Catalog
	search    *SearchEngine
	proximity *ProximityEngine
	fetcher   *Fetcher
	returns   *ReturnResolver
	router    Router
	provider  location.Provider
	store     *location.Store
	namer     PlaceNamer
	opts      config.Options

	version  atomic.Uint64
	debounce time.Duration
	now      func() time.Time

	mu    sync.Mutex
	timer *time.Timer
	state Snapshot

	// onUpdate, when set, observes every publication. Called with the
	// orchestrator lock held; keep it cheap.
	onUpdate func(Snapshot)
}

// OrchestratorDeps bundles the collaborators.
type OrchestratorDeps struct {
	Catalog  *Catalog
	Fetcher  *Fetcher
	Returns  *ReturnResolver
	Router   Router
	Provider location.Provider
	Store    *location.Store
	Namer    PlaceNamer
	Options  config.Options
	OnUpdate func(Snapshot)
}

func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	namer := deps.Namer
	if namer == nil {
		namer = geocode.NewResolver()
	}
	return &Orchestrator{
		catalog:   deps.Catalog,
		search:    NewSearchEngine(),
		proximity: NewProximityEngine(deps.Fetcher, deps.Router, deps.Options),
		fetcher:   deps.Fetcher,
		returns:   deps.Returns,
		router:    deps.Router,
		provider:  deps.Provider,
		store:     deps.Store,
		namer:     namer,
		opts:      deps.Options,
		debounce:  debounceDelay,
		now:       time.Now,
		onUpdate:  deps.OnUpdate,
	}
}

// Snapshot returns the currently published state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// SetQuery registers a query-change intent. The pipeline run is
// debounced; rapid keystrokes supersede each other and only the last
// one reaches the network. An empty query clears immediately.
func (o *Orchestrator) SetQuery(ctx context.Context, query string) {
	version := o.version.Add(1)

	o.mu.Lock()
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	if query == "" {
		o.mu.Unlock()
		o.publish(version, Snapshot{Mode: ModeIdle, Version: version})
		return
	}
	o.timer = time.AfterFunc(o.debounce, func() {
		o.runSearch(ctx, version, query)
	})
	o.mu.Unlock()
}

// Locate registers a locate intent and runs the location pipeline in
// the background.
func (o *Orchestrator) Locate(ctx context.Context) {
	version := o.version.Add(1)
	go o.runLocation(ctx, version)
}

// publish installs a snapshot iff its version is still current. The
// new result list inherits previously resolved return cards for quays
// that survive the replacement; a run that has not resolved returns
// yet must not blank out cards the user is already looking at.
func (o *Orchestrator) publish(version uint64, next Snapshot) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if version != o.version.Load() {
		return false
	}

	prior := make(map[string][]ReturnCard, len(o.state.Results))
	for _, r := range o.state.Results {
		if len(r.Returns) > 0 {
			prior[r.Quay.ID] = r.Returns
		}
	}
	for i := range next.Results {
		if len(next.Results[i].Returns) == 0 {
			next.Results[i].Returns = prior[next.Results[i].Quay.ID]
		}
	}

	o.state = next
	if o.onUpdate != nil {
		o.onUpdate(next)
	}
	return true
}

// publishError surfaces a pipeline-entry failure without touching the
// published result list of an earlier, still-valid render.
func (o *Orchestrator) publishError(version uint64, mode Mode, msg string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if version != o.version.Load() {
		return
	}
	o.state.Mode = mode
	o.state.Version = version
	o.state.ErrText = msg
	if o.onUpdate != nil {
		o.onUpdate(o.state)
	}
}

func (o *Orchestrator) runSearch(ctx context.Context, version uint64, query string) {
	waitCtx, cancel := context.WithTimeout(ctx, searchCatalogWait)
	o.catalog.WaitLoaded(waitCtx)
	cancel()
	if !o.catalog.Loaded() {
		o.publishError(version, ModeSearch, "ferry quays are still loading, try again")
		return
	}

	matched := o.search.Matches(query, o.catalog.All())

	results := make([]Result, 0, len(matched))
	for _, quay := range matched {
		if version != o.version.Load() {
			return
		}
		results = append(results, o.enrichSearchResult(ctx, quay))
	}

	snap := Snapshot{Mode: ModeSearch, Version: version, Results: results}
	o.publish(version, snap)
}

// enrichSearchResult computes the informational driving time (ferries
// permitted in this mode) and fetches departures and return cards.
// Enrichment failures downgrade the item, never the run.
func (o *Orchestrator) enrichSearchResult(ctx context.Context, quay Quay) Result {
	result := Result{Quay: quay}

	var hint int
	if o.opts.ShowDrivingTimes {
		if pos, ok := o.lastPosition(); ok {
			res, err := o.router.Route(ctx,
				routing.Point{Latitude: pos.Latitude, Longitude: pos.Longitude},
				routing.Point{Latitude: quay.Latitude, Longitude: quay.Longitude},
				routing.Options{AvoidFerries: false})
			if err == nil {
				result.DriveMinutes = res.Minutes
				result.DriveMeters = res.Meters
				result.RouteSource = res.Source
				hint = res.Minutes
			} else {
				log.Printf("[orchestrator] drive time for %s unavailable: %v", quay.Name, err)
			}
		}
	}

	result.Departures = o.fetcher.Fetch(ctx, quay.ID, hint)
	result.Returns = o.returns.Resolve(ctx, quay, result.Departures, nil)
	return result
}

func (o *Orchestrator) runLocation(ctx context.Context, version uint64) {
	if cached, ok := o.cachedPosition(); ok {
		// Optimistic render from the last known position while the
		// fresh fix resolves. It runs under this intent's version so
		// a newer intent drops it.
		go o.renderLocation(ctx, version, cached, false)
	}

	pos, err := o.acquireFix(ctx)

	// Supersede the optimistic render. If the swap fails a newer
	// intent owns the state and this run is over either way.
	if !o.version.CompareAndSwap(version, version+1) {
		return
	}
	version++

	if err != nil {
		o.publishError(version, ModeLocation, locationErrorText(err))
		return
	}
	o.renderLocation(ctx, version, pos, true)
}

func (o *Orchestrator) acquireFix(ctx context.Context) (location.Position, error) {
	pos, err := o.provider.Current(ctx, location.FixOptions{
		Timeout: lowAccuracyTimeout,
		MaxAge:  lowAccuracyMaxAge,
	})
	if err == nil {
		return pos, nil
	}
	log.Printf("[orchestrator] low accuracy fix failed: %v", err)
	return o.provider.Current(ctx, location.FixOptions{
		HighAccuracy: true,
		Timeout:      highAccuracyFix,
	})
}

func (o *Orchestrator) renderLocation(ctx context.Context, version uint64, pos location.Position, persist bool) {
	if err := o.catalog.Load(ctx); err != nil {
		log.Printf("[orchestrator] %v", err)
	}

	results, err := o.proximity.Nearest(ctx, pos, o.catalog.All())
	if err != nil {
		o.publishError(version, ModeLocation, proximityErrorText(err))
		return
	}

	for i := range results {
		if i == returnCardLimit {
			break
		}
		if version != o.version.Load() {
			return
		}
		results[i].Returns = o.returns.Resolve(ctx, results[i].Quay, results[i].Departures, nil)
	}

	snap := Snapshot{
		Mode:      ModeLocation,
		Version:   version,
		Results:   results,
		PlaceName: o.namer.Name(ctx, pos.Latitude, pos.Longitude),
		Verdict:   o.verdictFor(results),
	}
	if !o.publish(version, snap) {
		return
	}
	if persist && o.store != nil {
		o.store.Save(pos)
	}
}

// verdictFor judges the top result. Only location mode calls this;
// search results carry no authoritative driving context.
func (o *Orchestrator) verdictFor(results []Result) Verdict {
	if len(results) == 0 {
		return Verdict{}
	}
	top := results[0]
	return TravelVerdict(VerdictInput{
		DriveMinutes: top.DriveMinutes,
		Now:          o.now(),
		Departures:   futureDepartures(top.Departures, o.now()),
	})
}

func futureDepartures(calls []entur.EstimatedCall, now time.Time) []entur.EstimatedCall {
	var future []entur.EstimatedCall
	for _, c := range calls {
		if c.AimedDepartureTime.After(now) {
			future = append(future, c)
		}
	}
	return future
}

func (o *Orchestrator) cachedPosition() (location.Position, bool) {
	if o.store == nil {
		return location.Position{}, false
	}
	pos, ok := o.store.Load()
	if !ok || !pos.Fresh(o.now()) {
		return location.Position{}, false
	}
	return pos, true
}

// lastPosition is best effort; search mode only uses it to decorate
// results with an informational driving time.
func (o *Orchestrator) lastPosition() (location.Position, bool) {
	if o.store == nil {
		return location.Position{}, false
	}
	return o.store.Load()
}

func locationErrorText(err error) string {
	switch {
	case errors.Is(err, location.ErrPermissionDenied):
		return "location permission denied, enable it or pass coordinates"
	case errors.Is(err, location.ErrUnavailable):
		return "position unavailable"
	case errors.Is(err, location.ErrTimeout):
		return "timed out waiting for a position fix"
	default:
		return "could not determine your position"
	}
}

func proximityErrorText(err error) string {
	switch {
	case errors.Is(err, ErrNoNearbyQuays):
		return "no ferry quays within the search radius"
	case errors.Is(err, ErrNoDrivableQuays):
		return "no ferry quays reachable by road from here"
	default:
		return "could not rank nearby ferry quays"
	}
}
