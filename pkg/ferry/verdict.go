package ferry

import (
	"fmt"
	"time"

	"github.com/datajonas82/fergetid-sub000/pkg/entur"
)

const (
	hurryThresholdMin  = 5
	hourThresholdMin   = 60
	shortWaitMin       = 15
	arrivalBufferMin   = 5
	minDelaySavingsMin = 10
)

// VerdictKind classifies a travel verdict so the UI can pick styling
// without parsing the text.
type VerdictKind int

const (
	VerdictNone VerdictKind = iota
	VerdictComfortable
	VerdictHurry
	VerdictHours
	VerdictShortWait
	VerdictLongWait
	VerdictNoMoreToday
)

// Verdict is the natural-language judgement on whether the next
// departure is catchable given the computed driving time.
type Verdict struct {
	Kind VerdictKind
	Text string
}

// VerdictInput carries everything TravelVerdict needs. Departures must
// be sorted ascending by aimed time; the first one is the departure
// being judged.
type VerdictInput struct {
	DriveMinutes int
	Now          time.Time
	Departures   []entur.EstimatedCall
	// Driving suppresses the suggested-departure hint; telling someone
	// already on the road when to leave is useless.
	Driving bool
}

// TravelVerdict evaluates whether the next departure is reachable and
// phrases the outcome. With no departures or no driving time there is
// nothing to judge.
func TravelVerdict(in VerdictInput) Verdict {
	if len(in.Departures) == 0 || in.DriveMinutes <= 0 {
		return Verdict{Kind: VerdictNone}
	}

	next := in.Departures[0]
	toDeparture := MinutesUntil(in.Now, next.AimedDepartureTime)
	margin := toDeparture - in.DriveMinutes

	switch {
	case margin >= hourThresholdMin:
		return Verdict{Kind: VerdictHours, Text: fmt.Sprintf("You make it with %s to spare", formatHours(margin))}
	case margin >= hurryThresholdMin:
		return Verdict{Kind: VerdictComfortable, Text: fmt.Sprintf("You make it with %d minutes to spare", margin)}
	case margin > 0:
		return Verdict{Kind: VerdictHurry, Text: fmt.Sprintf("HURRY! You make it with %d minutes", margin)}
	}

	return missedVerdict(in, toDeparture)
}

// missedVerdict handles the case where driving time exceeds the time
// until the next departure. The wait is measured from estimated
// arrival, not from now.
func missedVerdict(in VerdictInput, toDeparture int) Verdict {
	arrival := in.Now.Add(time.Duration(in.DriveMinutes) * time.Minute)

	reachable, ok := firstAfter(in.Departures, arrival)
	if !ok || !sameDay(reachable.AimedDepartureTime, in.Now) {
		return Verdict{Kind: VerdictNoMoreToday, Text: "No more departures today"}
	}

	wait := MinutesUntil(arrival, reachable.AimedDepartureTime)
	if wait <= shortWaitMin {
		return Verdict{
			Kind: VerdictShortWait,
			Text: fmt.Sprintf("Next ferry %s after you arrive", formatWait(wait)),
		}
	}

	missedBy := in.DriveMinutes - toDeparture
	text := fmt.Sprintf("You arrive %d minutes late and wait %s for the next ferry", missedBy, formatWait(wait))

	if !in.Driving {
		if start, saved := suggestedStart(in.Now, in.DriveMinutes, reachable.AimedDepartureTime); saved > minDelaySavingsMin {
			text += fmt.Sprintf(". Start driving at %s to arrive %d minutes before it", FormatClock(start), arrivalBufferMin)
		}
	}
	return Verdict{Kind: VerdictLongWait, Text: text}
}

// suggestedStart computes when to leave so that arrival lands five
// minutes before the given departure, and how many minutes later than
// now that is.
func suggestedStart(now time.Time, driveMin int, departure time.Time) (time.Time, int) {
	start := departure.Add(-time.Duration(arrivalBufferMin+driveMin) * time.Minute)
	return start, MinutesUntil(now, start)
}

func firstAfter(calls []entur.EstimatedCall, t time.Time) (entur.EstimatedCall, bool) {
	for _, c := range calls {
		if c.AimedDepartureTime.After(t) {
			return c, true
		}
	}
	return entur.EstimatedCall{}, false
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}

func formatWait(min int) string {
	if min < hourThresholdMin {
		return fmt.Sprintf("%d minutes", min)
	}
	return formatHours(min)
}

func formatHours(min int) string {
	h := min / 60
	m := min % 60
	if m == 0 {
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	}
	if h == 1 {
		return fmt.Sprintf("1 hour and %d minutes", m)
	}
	return fmt.Sprintf("%d hours and %d minutes", h, m)
}

// IsDepartureMissed reports whether a departure cannot be reached
// given the driving time. Only location results carry driving context,
// so search-mode departures are never classified as missed.
func IsDepartureMissed(now, departure time.Time, driveMinutes int) bool {
	if driveMinutes <= 0 {
		return false
	}
	return MinutesUntil(now, departure) <= driveMinutes
}

// DepartureStatus is the reachability classification used for display
// styling.
type DepartureStatus int

const (
	DepartureReachable DepartureStatus = iota
	DepartureMissed
)

// DepartureColor classifies a departure for styling. Without driving
// info every departure counts as reachable.
func DepartureColor(now, departure time.Time, driveMinutes int, hasDrive bool) DepartureStatus {
	if !hasDrive {
		return DepartureReachable
	}
	if IsDepartureMissed(now, departure, driveMinutes) {
		return DepartureMissed
	}
	return DepartureReachable
}

// OptimalFontSize shrinks a display size linearly once text grows past
// lengthThreshold, clamped to [minSize, maxSize]. Rendering surfaces
// that cannot scale text simply ignore it.
func OptimalFontSize(text string, lengthThreshold, minSize, maxSize int) int {
	if maxSize < minSize {
		maxSize = minSize
	}
	size := maxSize
	if over := len([]rune(text)) - lengthThreshold; over > 0 {
		size = maxSize - over
	}
	if size < minSize {
		return minSize
	}
	return size
}
