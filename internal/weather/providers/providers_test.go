package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"weather-records/internal/daterange"
	"weather-records/internal/weather"
)

const dailyResponse = `{
	"daily": {
		"time": ["2024-01-01", "2024-01-02", "2024-01-03"],
		"temperature_2m_mean": [3.25, -1.04, 0.5],
		"temperature_2m_max": [5.5, 1.2, 2.0],
		"temperature_2m_min": [-1.0, -4.3, -0.5],
		"relative_humidity_2m_mean": [81.0, null, 77.5],
		"wind_speed_10m_mean": [4.2, 3.9, null]
	}
}`

func testRange() daterange.Range {
	return daterange.Range{
		Start: daterange.New(2024, time.January, 1),
		End:   daterange.New(2024, time.January, 3),
	}
}

func TestArchiveFetchNormalizesDaily(t *testing.T) {
	var gotQuery map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"latitude":   q.Get("latitude"),
			"start_date": q.Get("start_date"),
			"end_date":   q.Get("end_date"),
			"daily":      q.Get("daily"),
			"timezone":   q.Get("timezone"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(dailyResponse))
	}))
	defer srv.Close()

	p := NewArchiveProvider(srv.Client(), srv.URL)
	obs, err := p.Fetch(context.Background(), weather.Coordinates{Latitude: 60.17, Longitude: 24.94}, testRange())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if gotQuery["latitude"] != "60.17" {
		t.Fatalf("latitude param = %q", gotQuery["latitude"])
	}
	if gotQuery["start_date"] != "2024-01-01" || gotQuery["end_date"] != "2024-01-03" {
		t.Fatalf("date params = %q..%q", gotQuery["start_date"], gotQuery["end_date"])
	}
	if gotQuery["timezone"] != "auto" {
		t.Fatalf("timezone param = %q, want auto", gotQuery["timezone"])
	}
	if gotQuery["daily"] == "" {
		t.Fatal("daily variable list missing from query")
	}

	if len(obs) != 3 {
		t.Fatalf("got %d observations, want 3", len(obs))
	}

	first := obs[0]
	if !first.Date.Equal(daterange.New(2024, time.January, 1)) {
		t.Fatalf("first date = %v", first.Date)
	}
	if first.Temperature != 3.25 {
		t.Fatalf("first temperature = %v", first.Temperature)
	}
	if first.Description != "High: 5.5°C, Low: -1.0°C" {
		t.Fatalf("first description = %q", first.Description)
	}
	if first.Humidity == nil || *first.Humidity != 81.0 {
		t.Fatalf("first humidity = %v", first.Humidity)
	}

	// Null entries in the parallel arrays stay absent after normalization.
	if obs[1].Humidity != nil {
		t.Fatalf("second humidity = %v, want absent", *obs[1].Humidity)
	}
	if obs[2].WindSpeed != nil {
		t.Fatalf("third wind speed = %v, want absent", *obs[2].WindSpeed)
	}
}

func TestForecastFetchErrorOnServerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewForecastProvider(srv.Client(), srv.URL)
	if _, err := p.Fetch(context.Background(), weather.Coordinates{}, testRange()); err == nil {
		t.Fatal("expected error on 503 response")
	}
}

func TestFetchErrorOnNonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	p := NewArchiveProvider(srv.Client(), srv.URL)
	if _, err := p.Fetch(context.Background(), weather.Coordinates{}, testRange()); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestNormalizeDailyRejectsShortArrays(t *testing.T) {
	var payload dailyPayload
	payload.Daily.Time = []string{"2024-01-01", "2024-01-02"}
	payload.Daily.TempMean = []float64{1.0}
	payload.Daily.TempMax = []float64{2.0}
	payload.Daily.TempMin = []float64{0.0}

	if _, err := normalizeDaily(payload); err == nil {
		t.Fatal("expected error when temperature arrays are shorter than the time axis")
	}
}
