package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

var osrmBaseURL = "https://router.project-osrm.org"

// OSRMAdapter is the secondary routing provider. Ferry avoidance maps
// to OSRM's exclude parameter; OSRM cannot report whether the returned
// route still crosses a ferry, so HasFerry is always false here.
type OSRMAdapter struct {
	httpClient *http.Client
}

func NewOSRMAdapter() *OSRMAdapter {
	return &OSRMAdapter{
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (o *OSRMAdapter) Name() string { return "osrm" }

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Duration float64 `json:"duration"`
		Distance float64 `json:"distance"`
	} `json:"routes"`
}

func (o *OSRMAdapter) Route(ctx context.Context, origin, dest Point, opts Options) (Result, error) {
	// OSRM wants lon,lat ordering
	reqURL := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=false",
		osrmBaseURL, origin.Longitude, origin.Latitude, dest.Longitude, dest.Latitude)
	if opts.AvoidFerries {
		reqURL += "&exclude=ferry"
	}

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return Result{}, err
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("osrm request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("osrm returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read osrm response: %w", err)
	}

	var parsed osrmResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Result{}, fmt.Errorf("failed to decode osrm JSON: %w", err)
	}

	if parsed.Code != "Ok" || len(parsed.Routes) == 0 {
		return Result{}, fmt.Errorf("osrm returned no routes (code %q)", parsed.Code)
	}

	route := parsed.Routes[0]
	if route.Distance == 0 {
		return Result{}, fmt.Errorf("osrm returned zero-length route")
	}

	return Result{
		Minutes: minutesFromSeconds(route.Duration),
		Meters:  int(route.Distance),
		Source:  o.Name(),
	}, nil
}
