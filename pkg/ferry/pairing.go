package ferry

import (
	"github.com/datajonas82/fergetid-sub000/pkg/entur"
)

// Pairing is the return-direction destination derived for a quay from
// the line topology carried with its departures.
type Pairing struct {
	DestinationStopID   string
	DestinationStopName string
	OriginQuayID        string
	OriginQuayName      string
	LineID              string
}

// PairLine picks the return destination for the parent stop from its
// departure calls. A call whose displayed destination text names one
// of its line's quays wins; otherwise any ferry line with a quay at a
// different parent stop is acceptable.
func PairLine(parentStopID string, calls []entur.EstimatedCall) (Pairing, bool) {
	var fallback *Pairing

	for _, call := range calls {
		line := call.Line()
		if len(line.Quays) < 2 {
			// A line with only the origin quay is not pairable
			continue
		}

		origin := originQuayOn(line, parentStopID)
		destText := CleanDestinationText(call.DestinationText)

		// Textual match against the quays the line visits
		if destText != "" {
			for _, q := range line.Quays {
				if q.StopPlace.ID == parentStopID {
					continue
				}
				if SameQuayName(q.Name, destText) || SameQuayName(q.StopPlace.Name, destText) {
					return pairingFor(line, q, origin), true
				}
			}
		}

		// Remember the first two-quay line as the topology fallback
		if fallback == nil && len(line.Quays) == 2 {
			for _, q := range line.Quays {
				if q.StopPlace.ID != parentStopID && q.StopPlace.ID != "" {
					p := pairingFor(line, q, origin)
					fallback = &p
					break
				}
			}
		}
	}

	if fallback != nil {
		return *fallback, true
	}
	return Pairing{}, false
}

func originQuayOn(line entur.Line, parentStopID string) *entur.LineQuay {
	for i := range line.Quays {
		if line.Quays[i].StopPlace.ID == parentStopID {
			return &line.Quays[i]
		}
	}
	return nil
}

func pairingFor(line entur.Line, dest entur.LineQuay, origin *entur.LineQuay) Pairing {
	p := Pairing{
		DestinationStopID:   dest.StopPlace.ID,
		DestinationStopName: dest.StopPlace.Name,
		LineID:              line.ID,
	}
	if p.DestinationStopName == "" {
		p.DestinationStopName = dest.Name
	}
	if origin != nil {
		p.OriginQuayID = origin.ID
		p.OriginQuayName = origin.Name
	}
	return p
}
