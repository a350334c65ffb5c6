package ferry

import (
	"sort"

	"github.com/datajonas82/fergetid-sub000/pkg/entur"
)

// BoardRow holds the next few departures toward one destination.
type BoardRow struct {
	Destination string
	LineCode    string
	Departures  []entur.EstimatedCall
}

// SummarizeBoard sorts calls by aimed time and groups them by cleaned
// destination text, limiting each destination to maxPerRow departures.
// This keeps a high-frequency crossing from drowning out the rest of
// the board. Row order is first chronological appearance.
func SummarizeBoard(calls []entur.EstimatedCall, maxPerRow int) []BoardRow {
	var valid []entur.EstimatedCall
	for _, c := range calls {
		if !c.AimedDepartureTime.IsZero() {
			valid = append(valid, c)
		}
	}

	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].AimedDepartureTime.Before(valid[j].AimedDepartureTime)
	})

	rowMap := make(map[string]*BoardRow)
	var order []string

	for _, c := range valid {
		dest := CleanDestinationText(c.DestinationText)
		if dest == "" {
			dest = c.DestinationText
		}
		key := dest + "|" + c.Line().ID
		if _, exists := rowMap[key]; !exists {
			rowMap[key] = &BoardRow{
				Destination: dest,
				LineCode:    c.Line().PublicCode,
			}
			order = append(order, key)
		}
		if len(rowMap[key].Departures) < maxPerRow {
			rowMap[key].Departures = append(rowMap[key].Departures, c)
		}
	}

	rows := make([]BoardRow, 0, len(order))
	for _, key := range order {
		rows = append(rows, *rowMap[key])
	}
	return rows
}
