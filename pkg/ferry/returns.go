package ferry

import (
	"context"
	"sort"

	"github.com/datajonas82/fergetid-sub000/pkg/entur"
)

const maxReturnDepartures = 20

// ReturnResolver derives return cards for a surfaced quay: the paired
// quay(s) in the other direction, with departures back filtered to
// services that actually visit the origin.
type ReturnResolver struct {
	fetcher *Fetcher
	catalog *Catalog
	groups  FerryGroups
}

func NewReturnResolver(fetcher *Fetcher, catalog *Catalog, groups FerryGroups) *ReturnResolver {
	return &ReturnResolver{fetcher: fetcher, catalog: catalog, groups: groups}
}

// Resolve produces the return cards for a parent quay. Cards already
// present in existing (keyed by destination id) are not re-resolved or
// replaced. Group membership takes precedence over line topology; this
// is the only place curated data overrides the timetable.
func (r *ReturnResolver) Resolve(ctx context.Context, parent Quay, calls []entur.EstimatedCall, existing map[string]bool) []ReturnCard {
	if others := r.groups.Others(parent.Name); others != nil {
		return r.resolveGroup(ctx, parent, others, existing)
	}

	pairing, ok := PairLine(parent.ID, calls)
	if !ok {
		return nil
	}
	if existing[pairing.DestinationStopID] {
		return nil
	}

	card := ReturnCard{
		ParentQuayID:    parent.ID,
		DestinationID:   pairing.DestinationStopID,
		DestinationName: pairing.DestinationStopName,
		OriginQuayID:    pairing.OriginQuayID,
		OriginQuayName:  pairing.OriginQuayName,
		LineID:          pairing.LineID,
		Departures:      r.FindReturn(ctx, parent.ID, pairing.DestinationStopID, pairing.LineID),
	}
	return []ReturnCard{card}
}

func (r *ReturnResolver) resolveGroup(ctx context.Context, parent Quay, others []string, existing map[string]bool) []ReturnCard {
	var cards []ReturnCard
	for _, member := range others {
		quay, ok := r.catalog.FindByName(member)
		if !ok {
			continue
		}
		if existing[quay.ID] {
			continue
		}
		cards = append(cards, ReturnCard{
			ParentQuayID:    parent.ID,
			DestinationID:   quay.ID,
			DestinationName: quay.Name,
			Departures:      r.FindReturn(ctx, parent.ID, quay.ID, ""),
		})
	}
	return cards
}

// FindReturn collects up to 20 return-direction departures at the
// destination stop, keeping only calls whose line visits the parent
// quay. When quay-level matching finds nothing but the line is known,
// matching by line identifier is the permitted fallback.
func (r *ReturnResolver) FindReturn(ctx context.Context, parentQuayID, destStopID, lineID string) []entur.EstimatedCall {
	calls := r.fetcher.FetchReturns(ctx, destStopID)

	var passing []entur.EstimatedCall
	for _, call := range calls {
		if lineVisits(call.Line(), parentQuayID) {
			passing = append(passing, call)
		}
	}

	if len(passing) == 0 && lineID != "" {
		for _, call := range calls {
			if call.Line().ID == lineID {
				passing = append(passing, call)
			}
		}
	} else if lineID != "" {
		// Prefer calls on the known line when any exist
		var onLine []entur.EstimatedCall
		for _, call := range passing {
			if call.Line().ID == lineID {
				onLine = append(onLine, call)
			}
		}
		if len(onLine) > 0 {
			passing = onLine
		}
	}

	sort.SliceStable(passing, func(i, j int) bool {
		return passing[i].AimedDepartureTime.Before(passing[j].AimedDepartureTime)
	})
	if len(passing) > maxReturnDepartures {
		passing = passing[:maxReturnDepartures]
	}
	return passing
}

func lineVisits(line entur.Line, quayID string) bool {
	for _, q := range line.Quays {
		if q.StopPlace.ID == quayID || q.ID == quayID {
			return true
		}
	}
	return false
}
