package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

var (
	nominatimBaseURL = "https://nominatim.openstreetmap.org"
	enturGeoBaseURL  = "https://api.entur.io/geocoder/v1"
)

// Resolver turns coordinates into a short human-readable place name.
// It never fails: when both reverse geocoders are unreachable it falls
// back to a coordinate literal.
type Resolver struct {
	httpClient *http.Client
}

func NewResolver() *Resolver {
	return &Resolver{
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type nominatimResponse struct {
	Name    string `json:"name"`
	Address struct {
		Road         string `json:"road"`
		City         string `json:"city"`
		Town         string `json:"town"`
		Village      string `json:"village"`
		Municipality string `json:"municipality"`
		County       string `json:"county"`
	} `json:"address"`
}

type enturGeoResponse struct {
	Features []struct {
		Properties struct {
			Name     string `json:"name"`
			Locality string `json:"locality"`
			County   string `json:"county"`
		} `json:"properties"`
	} `json:"features"`
}

// Name resolves coordinates to a place name, preferring street+city,
// then city/county, then a formatted coordinate literal.
func (r *Resolver) Name(ctx context.Context, lat, lon float64) string {
	if name, err := r.nominatim(ctx, lat, lon); err == nil && name != "" {
		return name
	}
	if name, err := r.enturReverse(ctx, lat, lon); err == nil && name != "" {
		return name
	}
	return CoordinateLiteral(lat, lon)
}

func (r *Resolver) nominatim(ctx context.Context, lat, lon float64) (string, error) {
	reqURL := fmt.Sprintf("%s/reverse?format=jsonv2&lat=%f&lon=%f", nominatimBaseURL, lat, lon)
	body, err := r.get(ctx, reqURL)
	if err != nil {
		return "", err
	}

	var parsed nominatimResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode nominatim JSON: %w", err)
	}

	city := parsed.Address.City
	if city == "" {
		city = parsed.Address.Town
	}
	if city == "" {
		city = parsed.Address.Village
	}
	if city == "" {
		city = parsed.Address.Municipality
	}

	if parsed.Address.Road != "" && city != "" {
		return parsed.Address.Road + ", " + city, nil
	}
	if city != "" {
		return city, nil
	}
	if parsed.Address.County != "" {
		return parsed.Address.County, nil
	}
	return parsed.Name, nil
}

func (r *Resolver) enturReverse(ctx context.Context, lat, lon float64) (string, error) {
	reqURL := fmt.Sprintf("%s/reverse?point.lat=%f&point.lon=%f&size=1", enturGeoBaseURL, lat, lon)
	body, err := r.get(ctx, reqURL)
	if err != nil {
		return "", err
	}

	var parsed enturGeoResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode geocoder JSON: %w", err)
	}
	if len(parsed.Features) == 0 {
		return "", fmt.Errorf("geocoder returned no features")
	}

	props := parsed.Features[0].Properties
	if props.Name != "" && props.Locality != "" && props.Name != props.Locality {
		return props.Name + ", " + props.Locality, nil
	}
	if props.Name != "" {
		return props.Name, nil
	}
	return props.County, nil
}

func (r *Resolver) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, err
	}
	// Nominatim blocks anonymous default user agents
	req.Header.Set("User-Agent", "ferjectl/1.0 (https://github.com/datajonas82/fergetid-sub000)")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reverse geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reverse geocoder returned status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// CoordinateLiteral formats coordinates like "60.40°N, 5.25°E".
func CoordinateLiteral(lat, lon float64) string {
	latHemi := "N"
	if lat < 0 {
		latHemi = "S"
	}
	lonHemi := "E"
	if lon < 0 {
		lonHemi = "W"
	}
	return fmt.Sprintf("%.2f°%s, %.2f°%s", math.Abs(lat), latHemi, math.Abs(lon), lonHemi)
}
