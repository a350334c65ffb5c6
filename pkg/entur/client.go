package entur

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

var baseURL = "https://api.entur.io/journey-planner/v3/graphql"

const clientName = "datajonas82-fergetid"

// Client talks to the Entur journey planner GraphQL API.
type Client struct {
	httpClient *http.Client
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

const stopPlacesQuery = `
{
  stopPlaces {
    id
    name
    latitude
    longitude
    transportMode
    transportSubmode
  }
}`

const estimatedCallsQuery = `
query ($id: String!, $start: DateTime, $range: Int!, $count: Int!) {
  stopPlace(id: $id) {
    estimatedCalls(startTime: $start, timeRange: $range, numberOfDepartures: $count) {
      aimedDepartureTime
      destinationDisplay { frontText }
      serviceJourney {
        id
        journeyPattern {
          line {
            id
            name
            publicCode
            transportMode
            transportSubmode
            quays {
              id
              name
              stopPlace { id name }
            }
          }
        }
      }
    }
  }
}`

func (c *Client) post(ctx context.Context, query string, vars map[string]any, out any) error {
	payload, err := json.Marshal(graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", baseURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	// Entur requires an identifying client name on every request
	req.Header.Set("ET-Client-Name", clientName)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("journey planner request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("journey planner returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read journey planner response: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode journey planner JSON: %w", err)
	}
	return nil
}

// StopPlaces retrieves every stop place known to the journey planner.
func (c *Client) StopPlaces(ctx context.Context) ([]StopPlace, error) {
	var parsed stopPlacesResponse
	if err := c.post(ctx, stopPlacesQuery, nil, &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("journey planner error: %s", parsed.Errors[0].Message)
	}

	stops := make([]StopPlace, 0, len(parsed.Data.StopPlaces))
	for _, w := range parsed.Data.StopPlaces {
		sp := StopPlace{
			ID:             w.ID,
			Name:           w.Name,
			Latitude:       w.Latitude,
			Longitude:      w.Longitude,
			TransportModes: w.TransportMode,
		}
		if len(w.TransportSubmode) > 0 {
			sp.TransportSubmode = w.TransportSubmode[0]
		}
		stops = append(stops, sp)
	}
	return stops, nil
}

// EstimatedCalls retrieves upcoming departures at a stop place within
// the given time window, capped at count calls. Calls whose aimed
// departure time cannot be parsed are dropped.
func (c *Client) EstimatedCalls(ctx context.Context, stopID string, window time.Duration, count int) ([]EstimatedCall, error) {
	vars := map[string]any{
		"id":    stopID,
		"start": time.Now().Format(time.RFC3339),
		"range": int(window.Seconds()),
		"count": count,
	}

	var parsed estimatedCallsResponse
	if err := c.post(ctx, estimatedCallsQuery, vars, &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("journey planner error: %s", parsed.Errors[0].Message)
	}

	calls := make([]EstimatedCall, 0, len(parsed.Data.StopPlace.EstimatedCalls))
	for _, w := range parsed.Data.StopPlace.EstimatedCalls {
		aimed, err := time.Parse(time.RFC3339, w.AimedDepartureTime)
		if err != nil {
			continue
		}
		calls = append(calls, EstimatedCall{
			AimedDepartureTime: aimed,
			DestinationText:    w.DestinationDisplay.FrontText,
			ServiceJourney: ServiceJourney{
				ID: w.ServiceJourney.ID,
				JourneyPattern: JourneyPattern{
					Line: w.ServiceJourney.JourneyPattern.Line.toLine(),
				},
			},
		})
	}
	return calls, nil
}
