package weather

import (
	"context"
	"errors"
	"testing"
	"time"

	"weather-records/internal/daterange"
)

// fakeProvider serves canned observations for whatever range it is asked for.
type fakeProvider struct {
	name     string
	err      error
	reverse  bool
	calls    int
	gotRange daterange.Range
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Fetch(ctx context.Context, coords Coordinates, r daterange.Range) ([]DailyObservation, error) {
	f.calls++
	f.gotRange = r
	if f.err != nil {
		return nil, f.err
	}

	obs := make([]DailyObservation, 0, r.Days())
	for _, d := range r.Dates() {
		obs = append(obs, DailyObservation{Date: d, Temperature: 10, Description: "High: 12.0°C, Low: 8.0°C"})
	}
	if f.reverse {
		for i, j := 0, len(obs)-1; i < j; i, j = i+1, j-1 {
			obs[i], obs[j] = obs[j], obs[i]
		}
	}
	return obs, nil
}

func testService(archive, forecast Provider) *Service {
	svc := NewService(archive, forecast, DefaultPolicy())
	// Pin the clock: today = 2024-01-08, so the archive cutoff is 2024-01-04.
	svc.now = func() time.Time {
		return time.Date(2024, time.January, 8, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestFetchSeriesMergesChronologically(t *testing.T) {
	archive := &fakeProvider{name: "archive"}
	forecast := &fakeProvider{name: "forecast", reverse: true}
	svc := testService(archive, forecast)

	start := daterange.New(2024, time.January, 1)
	end := daterange.New(2024, time.January, 8)

	obs, err := svc.FetchSeries(context.Background(), Coordinates{}, start, end)
	if err != nil {
		t.Fatalf("FetchSeries: %v", err)
	}

	if len(obs) != 8 {
		t.Fatalf("got %d observations, want 8 (one per calendar day)", len(obs))
	}
	for i := 1; i < len(obs); i++ {
		if !obs[i-1].Date.Before(obs[i].Date) {
			t.Fatalf("observations not strictly ascending at %d: %v then %v", i, obs[i-1].Date, obs[i].Date)
		}
	}
	if !obs[0].Date.Equal(start) || !obs[len(obs)-1].Date.Equal(end) {
		t.Fatalf("series %v..%v does not cover %v..%v", obs[0].Date, obs[len(obs)-1].Date, start, end)
	}
}

func TestFetchSeriesSplitsAtCutoff(t *testing.T) {
	archive := &fakeProvider{name: "archive"}
	forecast := &fakeProvider{name: "forecast"}
	svc := testService(archive, forecast)

	_, err := svc.FetchSeries(context.Background(), Coordinates{},
		daterange.New(2024, time.January, 1), daterange.New(2024, time.January, 8))
	if err != nil {
		t.Fatalf("FetchSeries: %v", err)
	}

	wantArchiveEnd := daterange.New(2024, time.January, 4)
	wantForecastStart := daterange.New(2024, time.January, 5)
	if !archive.gotRange.End.Equal(wantArchiveEnd) {
		t.Fatalf("archive queried through %v, want %v", archive.gotRange.End, wantArchiveEnd)
	}
	if !forecast.gotRange.Start.Equal(wantForecastStart) {
		t.Fatalf("forecast queried from %v, want %v", forecast.gotRange.Start, wantForecastStart)
	}
}

func TestFetchSeriesSkipsAbsentPart(t *testing.T) {
	archive := &fakeProvider{name: "archive"}
	forecast := &fakeProvider{name: "forecast"}
	svc := testService(archive, forecast)

	// Entirely before the cutoff: the forecast provider must not be called.
	_, err := svc.FetchSeries(context.Background(), Coordinates{},
		daterange.New(2023, time.December, 20), daterange.New(2024, time.January, 2))
	if err != nil {
		t.Fatalf("FetchSeries: %v", err)
	}
	if forecast.calls != 0 {
		t.Fatalf("forecast provider called %d times for an all-archive range", forecast.calls)
	}
	if archive.calls != 1 {
		t.Fatalf("archive provider called %d times, want 1", archive.calls)
	}
}

func TestFetchSeriesAllOrNothing(t *testing.T) {
	archive := &fakeProvider{name: "archive"}
	forecast := &fakeProvider{name: "forecast", err: errors.New("boom")}
	svc := testService(archive, forecast)

	obs, err := svc.FetchSeries(context.Background(), Coordinates{},
		daterange.New(2024, time.January, 1), daterange.New(2024, time.January, 8))
	if err == nil {
		t.Fatal("expected error when one provider fails")
	}
	if obs != nil {
		t.Fatalf("got %d observations alongside an error, want none", len(obs))
	}

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("error %v is not an UpstreamError", err)
	}
	if upstream.Provider != "forecast" {
		t.Fatalf("UpstreamError.Provider = %q, want %q", upstream.Provider, "forecast")
	}
}

func TestFetchSeriesRejectsInvalidRange(t *testing.T) {
	archive := &fakeProvider{name: "archive"}
	forecast := &fakeProvider{name: "forecast"}
	svc := testService(archive, forecast)

	_, err := svc.FetchSeries(context.Background(), Coordinates{},
		daterange.New(2024, time.January, 10), daterange.New(2024, time.January, 1))
	if !errors.Is(err, daterange.ErrInvertedRange) {
		t.Fatalf("error = %v, want %v", err, daterange.ErrInvertedRange)
	}
	if archive.calls != 0 || forecast.calls != 0 {
		t.Fatal("providers were called for an invalid range")
	}
}

func TestMergeSortsDefensively(t *testing.T) {
	day := func(d int) DailyObservation {
		return DailyObservation{Date: daterange.New(2024, time.March, d)}
	}

	merged := Merge(
		[]DailyObservation{day(3), day(1), day(2)},
		[]DailyObservation{day(6), day(4), day(5)},
	)

	if len(merged) != 6 {
		t.Fatalf("len = %d, want 6", len(merged))
	}
	for i := 1; i < len(merged); i++ {
		if !merged[i-1].Date.Before(merged[i].Date) {
			t.Fatalf("merge output not sorted at %d", i)
		}
	}
}
