package ferry

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const maxSearchResults = 10

// SearchEngine matches quays by display-name prefix. Matching is
// raw-lowercase on purpose: the user types what the catalog shows, so
// diacritic folding would only surprise. Ordering uses Norwegian
// collation so that æ, ø and å sort where a Norwegian expects them.
type SearchEngine struct {
	collator *collate.Collator
}

func NewSearchEngine() *SearchEngine {
	return &SearchEngine{collator: collate.New(language.Norwegian)}
}

// Matches returns up to 10 quays whose name starts with the query,
// locale-sorted.
func (s *SearchEngine) Matches(query string, quays []Quay) []Quay {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	var matched []Quay
	for _, q := range quays {
		if strings.HasPrefix(strings.ToLower(q.Name), query) {
			matched = append(matched, q)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return s.collator.CompareString(matched[i].Name, matched[j].Name) < 0
	})

	if len(matched) > maxSearchResults {
		matched = matched[:maxSearchResults]
	}
	return matched
}
