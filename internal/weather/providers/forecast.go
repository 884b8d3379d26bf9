package providers

import (
	"context"
	"net/http"

	"github.com/sony/gobreaker"

	"weather-records/internal/daterange"
	"weather-records/internal/weather"
)

const defaultForecastURL = "https://api.open-meteo.com/v1/forecast"

// ForecastProvider fetches daily aggregates from the forecast source, which
// covers the recent days the archive has not ingested yet. It speaks the
// same daily parallel-array dialect as the archive.
type ForecastProvider struct {
	name    string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewForecastProvider creates the forecast adapter. An empty baseURL selects
// the public endpoint.
func NewForecastProvider(client *http.Client, baseURL string) *ForecastProvider {
	if baseURL == "" {
		baseURL = defaultForecastURL
	}
	return &ForecastProvider{
		name:    "openmeteo-forecast",
		baseURL: baseURL,
		client:  client,
		circuit: newBreaker("openmeteo-forecast"),
	}
}

func (p *ForecastProvider) Name() string {
	return p.name
}

func (p *ForecastProvider) Fetch(ctx context.Context, coords weather.Coordinates, r daterange.Range) ([]weather.DailyObservation, error) {
	return fetchDaily(ctx, p.client, p.circuit, p.baseURL, coords, r)
}
