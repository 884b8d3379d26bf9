package weather

import (
	"fmt"
	"time"

	"weather-records/internal/daterange"
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate checks that the point lies on the globe.
func (c Coordinates) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", c.Longitude)
	}
	return nil
}

// Location is a named point for which weather is recorded.
type Location struct {
	DisplayName string      `json:"displayName"`
	Coordinates Coordinates `json:"coordinates"`
}

// DailyObservation is the normalized per-day view produced by the provider
// adapters. Humidity and wind speed are nil when the upstream source does
// not report them.
type DailyObservation struct {
	Date        daterange.Date `json:"date"`
	Temperature float64        `json:"meanTemperatureC"`
	Description string         `json:"description"`
	Humidity    *float64       `json:"humidityPercent"`
	WindSpeed   *float64       `json:"windSpeedMs"`
}

// Record is a persisted weather series for one location and date range.
// An empty ID means the record has not been saved yet; ID and CreatedAt are
// assigned by the records service on create.
type Record struct {
	ID           string             `json:"id,omitempty"`
	Location     Location           `json:"location"`
	DateRange    daterange.Range    `json:"dateRange"`
	Observations []DailyObservation `json:"observations"`
	CreatedAt    time.Time          `json:"createdAt,omitempty"`
}

// UpstreamError reports a failed provider call. The whole aggregation is
// aborted on the first one: a gap in either sub-range would corrupt the
// chronology of the merged series.
type UpstreamError struct {
	Provider string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s unavailable: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
