package entur

import "time"

// StopPlace is a logical ferry stop as reported by the journey planner.
// A stop place groups one or more quays; for catalog purposes the stop
// place itself carries the coordinates and mode classification.
type StopPlace struct {
	ID               string
	Name             string
	Latitude         float64
	Longitude        float64
	TransportModes   []string
	TransportSubmode string
}

// EstimatedCall is a single upcoming departure at a stop.
type EstimatedCall struct {
	AimedDepartureTime time.Time
	DestinationText    string
	ServiceJourney     ServiceJourney
}

// ServiceJourney references the timetabled trip the call belongs to.
type ServiceJourney struct {
	ID             string
	JourneyPattern JourneyPattern
}

// JourneyPattern exists only to reach the line; that is all this
// application needs from it.
type JourneyPattern struct {
	Line Line
}

// Line is a ferry service with the ordered quays it visits. The quay
// list is what makes topology-based return pairing possible.
type Line struct {
	ID               string
	Name             string
	PublicCode       string
	TransportMode    string
	TransportSubmode string
	Quays            []LineQuay
}

// LineQuay is a quay referenced from a line, with its parent stop.
type LineQuay struct {
	ID        string
	Name      string
	StopPlace StopPlaceRef
}

// StopPlaceRef identifies a quay's parent stop place.
type StopPlaceRef struct {
	ID   string
	Name string
}

// Line returns the line attached to a call, reaching through the
// service journey and journey pattern.
func (c EstimatedCall) Line() Line {
	return c.ServiceJourney.JourneyPattern.Line
}

// graphQLRequest is the request envelope for the journey planner.
type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// Wire types. The journey planner answers GraphQL JSON; these mirror
// the response shape and are converted to the exported types above so
// the rest of the application never sees raw payload fields.

type graphQLError struct {
	Message string `json:"message"`
}

type stopPlacesResponse struct {
	Data struct {
		StopPlaces []stopPlaceWire `json:"stopPlaces"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

type stopPlaceWire struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Latitude         float64  `json:"latitude"`
	Longitude        float64  `json:"longitude"`
	TransportMode    []string `json:"transportMode"`
	TransportSubmode []string `json:"transportSubmode"`
}

type estimatedCallsResponse struct {
	Data struct {
		StopPlace struct {
			EstimatedCalls []estimatedCallWire `json:"estimatedCalls"`
		} `json:"stopPlace"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

type estimatedCallWire struct {
	AimedDepartureTime string `json:"aimedDepartureTime"`
	DestinationDisplay struct {
		FrontText string `json:"frontText"`
	} `json:"destinationDisplay"`
	ServiceJourney struct {
		ID             string `json:"id"`
		JourneyPattern struct {
			Line lineWire `json:"line"`
		} `json:"journeyPattern"`
	} `json:"serviceJourney"`
}

type lineWire struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	PublicCode       string `json:"publicCode"`
	TransportMode    string `json:"transportMode"`
	TransportSubmode string `json:"transportSubmode"`
	Quays            []struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		StopPlace struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"stopPlace"`
	} `json:"quays"`
}

func (w lineWire) toLine() Line {
	l := Line{
		ID:               w.ID,
		Name:             w.Name,
		PublicCode:       w.PublicCode,
		TransportMode:    w.TransportMode,
		TransportSubmode: w.TransportSubmode,
	}
	for _, q := range w.Quays {
		l.Quays = append(l.Quays, LineQuay{
			ID:   q.ID,
			Name: q.Name,
			StopPlace: StopPlaceRef{
				ID:   q.StopPlace.ID,
				Name: q.StopPlace.Name,
			},
		})
	}
	return l
}
