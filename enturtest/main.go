package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type estimatedCall struct {
	AimedDepartureTime string `json:"aimedDepartureTime"`
	DestinationDisplay struct {
		FrontText string `json:"frontText"`
	} `json:"destinationDisplay"`
	ServiceJourney struct {
		JourneyPattern struct {
			Line struct {
				PublicCode       string `json:"publicCode"`
				TransportSubmode string `json:"transportSubmode"`
			} `json:"line"`
		} `json:"journeyPattern"`
	} `json:"serviceJourney"`
}

type callsResponse struct {
	Data struct {
		StopPlace struct {
			Name           string          `json:"name"`
			EstimatedCalls []estimatedCall `json:"estimatedCalls"`
		} `json:"stopPlace"`
	} `json:"data"`
}

func main() {
	// Lavik ferjekai
	query := `{
		stopPlace(id: "NSR:StopPlace:58327") {
			name
			estimatedCalls(timeRange: 43200, numberOfDepartures: 5) {
				aimedDepartureTime
				destinationDisplay { frontText }
				serviceJourney { journeyPattern { line { publicCode transportSubmode } } }
			}
		}
	}`

	fmt.Println("Fetching live departures from the Entur journey planner...")

	payload, _ := json.Marshal(map[string]string{"query": query})
	req, err := http.NewRequest(http.MethodPost, "https://api.entur.io/journey-planner/v3/graphql", bytes.NewReader(payload))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("ET-Client-Name", "datajonas82-fergetid")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	var res callsResponse
	if err := json.Unmarshal(body, &res); err != nil {
		fmt.Println("Error decoding JSON:", err)
		return
	}

	fmt.Printf("\n--- ⛴ Next Departures: %s ---\n", res.Data.StopPlace.Name)
	for _, c := range res.Data.StopPlace.EstimatedCalls {
		aimed, err := time.Parse(time.RFC3339, c.AimedDepartureTime)
		if err != nil {
			continue
		}

		fmt.Printf("[%s] Line %s -> %s (%s)\n",
			aimed.Local().Format("15:04"),
			c.ServiceJourney.JourneyPattern.Line.PublicCode,
			c.DestinationDisplay.FrontText,
			c.ServiceJourney.JourneyPattern.Line.TransportSubmode)
	}
}
