package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"weather-records/internal/weather"
)

var (
	// ErrNotFound is returned when no record exists for the given id.
	ErrNotFound = errors.New("record not found")
	// ErrPersistence is returned when the records service cannot be reached
	// or rejects the call. The local cache is left untouched.
	ErrPersistence = errors.New("records service unavailable")
	// ErrIncompleteRecord is returned for drafts with no observations or no
	// location name; such drafts are rejected before any network call.
	ErrIncompleteRecord = errors.New("record is incomplete")
)

// Facade fronts the external records service and mirrors its state in an
// in-memory cache. Every mutation goes to the service first; the cache is
// reconciled only after the service confirms.
type Facade struct {
	client *resty.Client

	mu    sync.RWMutex
	cache map[string]weather.Record
	order []string
}

// New creates a Facade for the records service at baseURL.
func New(baseURL string, httpClient *http.Client) *Facade {
	client := resty.NewWithClient(httpClient).SetBaseURL(baseURL)
	return &Facade{
		client: client,
		cache:  make(map[string]weather.Record),
	}
}

func (f *Facade) request(ctx context.Context) *resty.Request {
	return f.client.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", uuid.NewString())
}

// Create sends a draft to the records service, which assigns the id and
// creation timestamp, and caches the stored record.
func (f *Facade) Create(ctx context.Context, draft weather.Record) (weather.Record, error) {
	if err := validateDraft(draft); err != nil {
		return weather.Record{}, err
	}

	var created weather.Record
	resp, err := f.request(ctx).
		SetBody(draft).
		SetResult(&created).
		Post("/records")
	if err != nil {
		return weather.Record{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !resp.IsSuccess() {
		return weather.Record{}, fmt.Errorf("%w: status %d", ErrPersistence, resp.StatusCode())
	}

	f.mu.Lock()
	f.upsert(created)
	f.mu.Unlock()

	return created, nil
}

// Update replaces the stored record with the given id and reconciles the
// cache with the service's response.
func (f *Facade) Update(ctx context.Context, id string, draft weather.Record) (weather.Record, error) {
	if err := validateDraft(draft); err != nil {
		return weather.Record{}, err
	}

	var updated weather.Record
	resp, err := f.request(ctx).
		SetBody(draft).
		SetResult(&updated).
		Put("/records/" + id)
	if err != nil {
		return weather.Record{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return weather.Record{}, ErrNotFound
	}
	if !resp.IsSuccess() {
		return weather.Record{}, fmt.Errorf("%w: status %d", ErrPersistence, resp.StatusCode())
	}

	f.mu.Lock()
	f.upsert(updated)
	f.mu.Unlock()

	return updated, nil
}

// Delete removes the record from the service and then from the cache.
func (f *Facade) Delete(ctx context.Context, id string) error {
	resp, err := f.request(ctx).Delete("/records/" + id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return ErrNotFound
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("%w: status %d", ErrPersistence, resp.StatusCode())
	}

	f.mu.Lock()
	if _, ok := f.cache[id]; ok {
		delete(f.cache, id)
		for i, existing := range f.order {
			if existing == id {
				f.order = append(f.order[:i], f.order[i+1:]...)
				break
			}
		}
	}
	f.mu.Unlock()

	return nil
}

// List fetches all records from the service, replaces the cache with the
// server's view, and returns the records in the server's order.
func (f *Facade) List(ctx context.Context) ([]weather.Record, error) {
	var records []weather.Record
	resp, err := f.request(ctx).
		SetResult(&records).
		Get("/records")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: status %d", ErrPersistence, resp.StatusCode())
	}

	f.mu.Lock()
	f.cache = make(map[string]weather.Record, len(records))
	f.order = f.order[:0]
	for _, rec := range records {
		f.cache[rec.ID] = rec
		f.order = append(f.order, rec.ID)
	}
	f.mu.Unlock()

	return records, nil
}

// Get returns a record by id, from the cache when possible and after a
// re-list otherwise.
func (f *Facade) Get(ctx context.Context, id string) (weather.Record, error) {
	f.mu.RLock()
	rec, ok := f.cache[id]
	f.mu.RUnlock()
	if ok {
		return rec, nil
	}

	if _, err := f.List(ctx); err != nil {
		return weather.Record{}, err
	}

	f.mu.RLock()
	rec, ok = f.cache[id]
	f.mu.RUnlock()
	if !ok {
		return weather.Record{}, ErrNotFound
	}
	return rec, nil
}

// Cached returns the cache contents in insertion order without touching the
// network.
func (f *Facade) Cached() []weather.Record {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]weather.Record, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.cache[id])
	}
	return out
}

// upsert adds or replaces a record in the cache, preserving insertion order
// for records already present. Caller holds f.mu.
func (f *Facade) upsert(rec weather.Record) {
	if _, ok := f.cache[rec.ID]; !ok {
		f.order = append(f.order, rec.ID)
	}
	f.cache[rec.ID] = rec
}

func validateDraft(draft weather.Record) error {
	if draft.Location.DisplayName == "" {
		return fmt.Errorf("%w: location name is empty", ErrIncompleteRecord)
	}
	if len(draft.Observations) == 0 {
		return fmt.Errorf("%w: no observations loaded", ErrIncompleteRecord)
	}
	return nil
}
