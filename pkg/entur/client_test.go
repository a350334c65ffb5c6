package entur

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_StopPlaces(t *testing.T) {
	mockJSON := `{
		"data": {
			"stopPlaces": [
				{
					"id": "NSR:StopPlace:58217",
					"name": "Lavik ferjekai",
					"latitude": 61.1075,
					"longitude": 5.5317,
					"transportMode": ["water"],
					"transportSubmode": ["localCarFerry"]
				},
				{
					"id": "NSR:StopPlace:12345",
					"name": "Bergen busstasjon",
					"latitude": 60.389,
					"longitude": 5.333,
					"transportMode": ["bus"],
					"transportSubmode": ["localBus"]
				}
			]
		}
	}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("ET-Client-Name") == "" {
			t.Errorf("expected ET-Client-Name header to be set")
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(mockJSON))
	}))
	defer server.Close()

	originalBaseURL := baseURL
	baseURL = server.URL
	defer func() { baseURL = originalBaseURL }()

	client := NewClient()
	stops, err := client.StopPlaces(context.Background())
	if err != nil {
		t.Fatalf("unexpected error fetching mocked stop places: %v", err)
	}

	if len(stops) != 2 {
		t.Fatalf("expected 2 stop places, got %d", len(stops))
	}
	if stops[0].ID != "NSR:StopPlace:58217" {
		t.Errorf("expected first stop id NSR:StopPlace:58217, got %s", stops[0].ID)
	}
	if stops[0].TransportSubmode != "localCarFerry" {
		t.Errorf("expected submode localCarFerry, got %s", stops[0].TransportSubmode)
	}
}

func TestClient_EstimatedCalls(t *testing.T) {
	mockJSON := `{
		"data": {
			"stopPlace": {
				"estimatedCalls": [
					{
						"aimedDepartureTime": "2026-08-30T14:30:00+02:00",
						"destinationDisplay": {"frontText": "Oppedal"},
						"serviceJourney": {
							"id": "SOF:ServiceJourney:1",
							"journeyPattern": {
								"line": {
									"id": "SOF:Line:1",
									"name": "Lavik-Oppedal",
									"publicCode": "",
									"transportMode": "water",
									"transportSubmode": "localCarFerry",
									"quays": [
										{"id": "NSR:Quay:1", "name": "Lavik", "stopPlace": {"id": "NSR:StopPlace:58217", "name": "Lavik ferjekai"}},
										{"id": "NSR:Quay:2", "name": "Oppedal", "stopPlace": {"id": "NSR:StopPlace:58218", "name": "Oppedal ferjekai"}}
									]
								}
							}
						}
					},
					{
						"aimedDepartureTime": "not-a-time",
						"destinationDisplay": {"frontText": "Broken"},
						"serviceJourney": {"id": "X", "journeyPattern": {"line": {"id": "Y"}}}
					}
				]
			}
		}
	}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req graphQLRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("request body is not valid JSON: %v", err)
		}
		if req.Variables["id"] != "NSR:StopPlace:58217" {
			t.Errorf("expected stop id variable, got %v", req.Variables["id"])
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(mockJSON))
	}))
	defer server.Close()

	originalBaseURL := baseURL
	baseURL = server.URL
	defer func() { baseURL = originalBaseURL }()

	client := NewClient()
	calls, err := client.EstimatedCalls(context.Background(), "NSR:StopPlace:58217", 12*time.Hour, 20)
	if err != nil {
		t.Fatalf("unexpected error fetching mocked calls: %v", err)
	}

	// The malformed aimed time must be dropped, not surfaced as an error
	if len(calls) != 1 {
		t.Fatalf("expected 1 parseable call, got %d", len(calls))
	}

	call := calls[0]
	if call.DestinationText != "Oppedal" {
		t.Errorf("expected destination 'Oppedal', got '%s'", call.DestinationText)
	}
	line := call.Line()
	if line.ID != "SOF:Line:1" {
		t.Errorf("expected line SOF:Line:1, got %s", line.ID)
	}
	if len(line.Quays) != 2 {
		t.Fatalf("expected 2 quays on line, got %d", len(line.Quays))
	}
	if line.Quays[1].StopPlace.ID != "NSR:StopPlace:58218" {
		t.Errorf("expected parent stop NSR:StopPlace:58218, got %s", line.Quays[1].StopPlace.ID)
	}
}

func TestClient_EstimatedCalls_GraphQLError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"errors": [{"message": "rate limited"}]}`))
	}))
	defer server.Close()

	originalBaseURL := baseURL
	baseURL = server.URL
	defer func() { baseURL = originalBaseURL }()

	client := NewClient()
	_, err := client.EstimatedCalls(context.Background(), "NSR:StopPlace:1", time.Hour, 5)
	if err == nil {
		t.Fatalf("expected GraphQL error to surface, got nil")
	}
}
