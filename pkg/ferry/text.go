package ferry

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// roadTokenRe matches Norwegian road-number tokens (E39, Rv13, Fv55)
// that the journey planner sometimes embeds in destination texts.
var roadTokenRe = regexp.MustCompile(`(?i)\b(?:e|rv|fv)\s?\d+\b`)

// quaySuffixes are stripped from quay names before comparison:
// "Lavik ferjekai" and "Lavik" are the same place.
var quaySuffixes = []string{"ferjekai", "fergekai", "kai"}

// CleanDestinationText removes road-number tokens and collapses
// whitespace. Applying it twice yields the same string.
func CleanDestinationText(s string) string {
	cleaned := roadTokenRe.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(cleaned), " ")
}

var foldTransformer = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// FoldDiacritics lowers the string and maps accented and Norwegian
// letters to their ASCII bases, for comparison only.
func FoldDiacritics(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	// Stroked letters do not decompose; map them by hand
	folded = strings.Map(func(r rune) rune {
		switch r {
		case 'ø', 'Ø':
			return 'o'
		case 'æ', 'Æ':
			return 'a'
		case 'å', 'Å':
			return 'a'
		case 'đ', 'Đ':
			return 'd'
		}
		return r
	}, folded)
	return strings.ToLower(folded)
}

// NormalizeQuayName produces the canonical comparison key for a quay
// name: cleansed, folded, with quay suffixes stripped.
func NormalizeQuayName(s string) string {
	name := FoldDiacritics(CleanDestinationText(s))
	for _, suffix := range quaySuffixes {
		name = strings.TrimSuffix(name, suffix)
	}
	return strings.TrimSpace(name)
}

// SameQuayName compares two quay names under normalization.
func SameQuayName(a, b string) bool {
	na, nb := NormalizeQuayName(a), NormalizeQuayName(b)
	return na != "" && na == nb
}

// FormatDistance renders meters as "750 m" below one kilometer and
// "7.2 km" above.
func FormatDistance(meters int) string {
	if meters < 1000 {
		return fmt.Sprintf("%d m", meters)
	}
	return fmt.Sprintf("%.1f km", float64(meters)/1000)
}

// FormatClock renders a departure timestamp in local wall time.
func FormatClock(t time.Time) string {
	return t.Local().Format("15:04")
}

// MinutesUntil returns whole minutes from now until t, negative when
// t has passed.
func MinutesUntil(now, t time.Time) int {
	return int(t.Sub(now).Minutes())
}
