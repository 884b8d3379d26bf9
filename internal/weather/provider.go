package weather

import (
	"context"

	"weather-records/internal/daterange"
)

// Provider abstracts one upstream daily-weather source (archive or forecast).
// Fetch returns one observation per calendar day of r, ordered by date.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, coords Coordinates, r daterange.Range) ([]DailyObservation, error)
}
