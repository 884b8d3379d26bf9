package providers

import (
	"context"
	"net/http"

	"github.com/sony/gobreaker"

	"weather-records/internal/daterange"
	"weather-records/internal/weather"
)

const defaultArchiveURL = "https://archive-api.open-meteo.com/v1/archive"

// ArchiveProvider fetches daily aggregates from the historical archive
// source. The archive lags a few days behind real time; the splitter keeps
// recent days away from it.
type ArchiveProvider struct {
	name    string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewArchiveProvider creates the archive adapter. An empty baseURL selects
// the public endpoint.
func NewArchiveProvider(client *http.Client, baseURL string) *ArchiveProvider {
	if baseURL == "" {
		baseURL = defaultArchiveURL
	}
	return &ArchiveProvider{
		name:    "openmeteo-archive",
		baseURL: baseURL,
		client:  client,
		circuit: newBreaker("openmeteo-archive"),
	}
}

func (p *ArchiveProvider) Name() string {
	return p.name
}

func (p *ArchiveProvider) Fetch(ctx context.Context, coords weather.Coordinates, r daterange.Range) ([]weather.DailyObservation, error) {
	return fetchDaily(ctx, p.client, p.circuit, p.baseURL, coords, r)
}
