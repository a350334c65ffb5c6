package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

var hereBaseURL = "https://router.hereapi.com"

// HEREAdapter is the primary routing provider. It understands ferry
// avoidance natively and reports ferry sections when avoidance could
// not be satisfied.
type HEREAdapter struct {
	httpClient *http.Client
	apiKey     string
}

func NewHEREAdapter(apiKey string) *HEREAdapter {
	return &HEREAdapter{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiKey:     apiKey,
	}
}

func (h *HEREAdapter) Name() string { return "here" }

type hereResponse struct {
	Routes []struct {
		Sections []struct {
			Type      string `json:"type"`
			Transport struct {
				Mode string `json:"mode"`
			} `json:"transport"`
			Summary struct {
				Duration float64 `json:"duration"`
				Length   float64 `json:"length"`
			} `json:"summary"`
		} `json:"sections"`
	} `json:"routes"`
}

func (h *HEREAdapter) Route(ctx context.Context, origin, dest Point, opts Options) (Result, error) {
	params := url.Values{}
	params.Set("transportMode", "car")
	params.Set("routingMode", "fast")
	params.Set("origin", fmt.Sprintf("%f,%f", origin.Latitude, origin.Longitude))
	params.Set("destination", fmt.Sprintf("%f,%f", dest.Latitude, dest.Longitude))
	params.Set("return", "summary")
	if opts.AvoidFerries {
		params.Set("avoid[features]", "ferry")
	}
	if h.apiKey != "" {
		params.Set("apiKey", h.apiKey)
	}

	reqURL := fmt.Sprintf("%s/v8/routes?%s", hereBaseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return Result{}, err
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("here request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("here returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read here response: %w", err)
	}

	var parsed hereResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Result{}, fmt.Errorf("failed to decode here JSON: %w", err)
	}

	if len(parsed.Routes) == 0 || len(parsed.Routes[0].Sections) == 0 {
		return Result{}, fmt.Errorf("here returned no routes")
	}

	route := parsed.Routes[0]
	summary := route.Sections[0].Summary
	if summary.Length == 0 {
		// A zero-length route is an upstream glitch, not a result
		return Result{}, fmt.Errorf("here returned zero-length route")
	}

	hasFerry := false
	for _, section := range route.Sections {
		if section.Transport.Mode == "ferry" || section.Type == "ferry" {
			hasFerry = true
			break
		}
	}

	return Result{
		Minutes:  minutesFromSeconds(summary.Duration),
		Meters:   int(summary.Length),
		Source:   h.Name(),
		HasFerry: hasFerry,
	}, nil
}
