package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"weather-records/internal/daterange"
	"weather-records/internal/weather"
)

// dailyVariables are requested from both upstreams under the same names so
// normalization stays uniform across the two adapters.
var dailyVariables = []string{
	"temperature_2m_mean",
	"temperature_2m_max",
	"temperature_2m_min",
	"relative_humidity_2m_mean",
	"wind_speed_10m_mean",
}

var (
	errServerError = errors.New("server error")
	errUnexpected  = errors.New("unexpected status code")
	errCircuitOpen = errors.New("circuit breaker open")
)

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// doRequest executes the HTTP request through the circuit breaker. There is
// no retry loop: a failed fetch is surfaced to the user, who re-triggers the
// aggregation; the breaker only keeps a struggling upstream from being
// hammered in the meantime.
func doRequest(ctx context.Context, client *http.Client, cb *gobreaker.CircuitBreaker, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, execErr
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
		}

		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		return nil, err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return resp, nil
}

// dailyPayload is the upstream response shape: a `daily` object of parallel
// arrays indexed by day offset. Nullable metrics decode to nil entries.
type dailyPayload struct {
	Daily struct {
		Time     []string   `json:"time"`
		TempMean []float64  `json:"temperature_2m_mean"`
		TempMax  []float64  `json:"temperature_2m_max"`
		TempMin  []float64  `json:"temperature_2m_min"`
		Humidity []*float64 `json:"relative_humidity_2m_mean"`
		Wind     []*float64 `json:"wind_speed_10m_mean"`
	} `json:"daily"`
}

// fetchDaily queries one upstream for daily aggregates over r and normalizes
// the parallel-array payload into per-day observations.
func fetchDaily(ctx context.Context, client *http.Client, cb *gobreaker.CircuitBreaker, baseURL string, coords weather.Coordinates, r daterange.Range) ([]weather.DailyObservation, error) {
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	values.Set("start_date", r.Start.String())
	values.Set("end_date", r.End.String())
	values.Set("daily", strings.Join(dailyVariables, ","))
	values.Set("timezone", "auto")

	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", baseURL, values.Encode()), nil)
	if err != nil {
		return nil, err
	}

	resp, err := doRequest(ctx, client, cb, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload dailyPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding daily response: %w", err)
	}

	return normalizeDaily(payload)
}

// normalizeDaily maps the raw parallel arrays into DailyObservation values.
// The description caption is synthesized from the day's max/min; humidity
// and wind stay absent when the upstream reports no value for the day.
func normalizeDaily(payload dailyPayload) ([]weather.DailyObservation, error) {
	daily := payload.Daily
	if len(daily.TempMean) < len(daily.Time) || len(daily.TempMax) < len(daily.Time) || len(daily.TempMin) < len(daily.Time) {
		return nil, fmt.Errorf("daily temperature arrays shorter than time axis")
	}

	obs := make([]weather.DailyObservation, 0, len(daily.Time))
	for i, raw := range daily.Time {
		date, err := daterange.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("daily time[%d]: %w", i, err)
		}

		o := weather.DailyObservation{
			Date:        date,
			Temperature: daily.TempMean[i],
			Description: fmt.Sprintf("High: %.1f°C, Low: %.1f°C", daily.TempMax[i], daily.TempMin[i]),
		}
		if i < len(daily.Humidity) && daily.Humidity[i] != nil {
			o.Humidity = daily.Humidity[i]
		}
		if i < len(daily.Wind) && daily.Wind[i] != nil {
			o.WindSpeed = daily.Wind[i]
		}
		obs = append(obs, o)
	}
	return obs, nil
}
