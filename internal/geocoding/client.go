// Package geocoding wraps the external geocoding collaborator: free-text
// search and reverse lookup of coordinates to a display name.
package geocoding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"

	"weather-records/internal/weather"
)

const (
	defaultBaseURL = "https://nominatim.openstreetmap.org"
	userAgent      = "weather-records/1.0"
	searchLimit    = "5"
)

// ErrUnavailable is returned when the geocoding service cannot be reached
// or rejects the call.
var ErrUnavailable = errors.New("geocoding service unavailable")

// Client talks to a Nominatim-compatible geocoding service.
type Client struct {
	http *resty.Client
}

// New creates a Client. An empty baseURL selects the public endpoint.
func New(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		http: resty.NewWithClient(httpClient).
			SetBaseURL(baseURL).
			SetHeader("User-Agent", userAgent),
	}
}

// place is the service's result shape; coordinates arrive as strings.
type place struct {
	PlaceID     int64  `json:"place_id"`
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Search resolves a free-text query into candidate locations.
func (c *Client) Search(ctx context.Context, query string) ([]weather.Location, error) {
	var results []place
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":      query,
			"format": "json",
			"limit":  searchLimit,
		}).
		SetResult(&results).
		Get("/search")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode())
	}

	locations := make([]weather.Location, 0, len(results))
	for _, p := range results {
		lat, err := strconv.ParseFloat(p.Lat, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing latitude %q: %w", p.Lat, err)
		}
		lon, err := strconv.ParseFloat(p.Lon, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing longitude %q: %w", p.Lon, err)
		}
		locations = append(locations, weather.Location{
			DisplayName: p.DisplayName,
			Coordinates: weather.Coordinates{Latitude: lat, Longitude: lon},
		})
	}
	return locations, nil
}

// Reverse resolves coordinates to a display name.
func (c *Client) Reverse(ctx context.Context, coords weather.Coordinates) (string, error) {
	var result struct {
		DisplayName string `json:"display_name"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"lat":    strconv.FormatFloat(coords.Latitude, 'f', -1, 64),
			"lon":    strconv.FormatFloat(coords.Longitude, 'f', -1, 64),
			"format": "json",
		}).
		SetResult(&result).
		Get("/reverse")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode())
	}
	return result.DisplayName, nil
}
