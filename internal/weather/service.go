package weather

import (
	"context"
	"sync"
	"time"

	"weather-records/internal/daterange"
)

// Policy holds the fixed aggregation constants. Archive providers lag a few
// days behind real time, so days newer than today minus ArchiveLagDays are
// routed to the forecast provider instead.
type Policy struct {
	ArchiveLagDays int
	MaxRangeDays   int
}

// DefaultPolicy returns the standard constants: a 4-day archive lag and a
// 30-day maximum range.
func DefaultPolicy() Policy {
	return Policy{ArchiveLagDays: 4, MaxRangeDays: 30}
}

// Service runs the aggregation pipeline: validate the range, split it at the
// archive cutoff, fetch both parts concurrently, and merge the results.
type Service struct {
	archive  Provider
	forecast Provider
	policy   Policy

	now func() time.Time
}

// NewService creates a Service over the two upstream adapters.
func NewService(archive, forecast Provider, policy Policy) *Service {
	if policy.ArchiveLagDays <= 0 {
		policy.ArchiveLagDays = DefaultPolicy().ArchiveLagDays
	}
	if policy.MaxRangeDays <= 0 {
		policy.MaxRangeDays = DefaultPolicy().MaxRangeDays
	}
	return &Service{
		archive:  archive,
		forecast: forecast,
		policy:   policy,
		now:      time.Now,
	}
}

// ValidateRange checks a candidate start/end pair against today's date and
// the policy's maximum span.
func (s *Service) ValidateRange(start, end daterange.Date) (daterange.Range, error) {
	return daterange.Validate(start, end, daterange.Of(s.now()), s.policy.MaxRangeDays)
}

// FetchSeries validates the candidate range and fetches its observations.
func (s *Service) FetchSeries(ctx context.Context, coords Coordinates, start, end daterange.Date) ([]DailyObservation, error) {
	r, err := s.ValidateRange(start, end)
	if err != nil {
		return nil, err
	}
	return s.FetchRange(ctx, coords, r)
}

// FetchRange fetches a validated range. The archive and forecast parts are
// queried concurrently; a degenerate part is skipped rather than sent
// upstream. The first provider failure aborts the whole fetch and cancels
// the other call: partial series are never returned.
func (s *Service) FetchRange(ctx context.Context, coords Coordinates, r daterange.Range) ([]DailyObservation, error) {
	cutoff := daterange.Of(s.now()).AddDays(-s.policy.ArchiveLagDays)
	archivePart, forecastPart := daterange.Split(r, cutoff)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		archiveObs  []DailyObservation
		forecastObs []DailyObservation
		fetchErr    error
	)

	fetch := func(p Provider, part daterange.Range, out *[]DailyObservation) {
		defer wg.Done()

		obs, err := p.Fetch(ctx, coords, part)

		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			if fetchErr == nil {
				fetchErr = &UpstreamError{Provider: p.Name(), Err: err}
				cancel()
			}
			return
		}
		*out = obs
	}

	if archivePart != nil {
		wg.Add(1)
		go fetch(s.archive, *archivePart, &archiveObs)
	}
	if forecastPart != nil {
		wg.Add(1)
		go fetch(s.forecast, *forecastPart, &forecastObs)
	}
	wg.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}
	return Merge(archiveObs, forecastObs), nil
}
