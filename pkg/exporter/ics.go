package exporter

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/datajonas82/fergetid-sub000/pkg/ferry"

	ics "github.com/arran4/golang-ical"
)

// crossingBlock is the nominal calendar duration reserved per sailing;
// the timetable does not expose arrival times.
const crossingBlock = 30 * time.Minute

// GenerateICS creates an ICS calendar from a quay's departure board
// and writes it to the provided writer.
func GenerateICS(quayName string, rows []ferry.BoardRow, w io.Writer) error {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)

	now := time.Now()
	count := 0

	for _, row := range rows {
		for _, dep := range row.Departures {
			if dep.AimedDepartureTime.IsZero() {
				continue
			}
			count++

			event := cal.AddEvent(fmt.Sprintf("%s-%s-%d", slug(quayName), slug(row.Destination), count))
			event.SetCreatedTime(now)
			event.SetDtStampTime(now)
			event.SetModifiedAt(now)
			event.SetStartAt(dep.AimedDepartureTime)
			event.SetEndAt(dep.AimedDepartureTime.Add(crossingBlock))
			event.SetSummary(fmt.Sprintf("⛴ Ferry to %s", row.Destination))
			event.SetLocation(quayName)

			desc := fmt.Sprintf("Departure from %s toward %s.", quayName, row.Destination)
			if row.LineCode != "" {
				desc += fmt.Sprintf("\nLine %s.", row.LineCode)
			}
			event.SetDescription(desc)
		}
	}

	if count == 0 {
		return fmt.Errorf("no departures to export for %s", quayName)
	}

	return cal.SerializeTo(w)
}

// slug makes a name safe for use inside an event UID.
func slug(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return '-'
	}, name)
}
