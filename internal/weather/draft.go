package weather

import (
	"sync"

	"weather-records/internal/daterange"
)

// Draft holds the series belonging to the most recently requested
// location/date-range pair. Fetches are not cancelable once in flight, so
// each one is tagged with a generation; a result whose generation has been
// superseded is dropped on arrival instead of overwriting fresher state.
type Draft struct {
	mu           sync.Mutex
	generation   uint64
	location     Location
	dateRange    daterange.Range
	observations []DailyObservation
}

// NewDraft returns an empty draft.
func NewDraft() *Draft {
	return &Draft{}
}

// Begin registers a new requested pair and returns its generation token.
// Any fetch started under an earlier token becomes stale immediately. The
// currently held observations are kept until a fresh result replaces them,
// so a failed fetch leaves the previous series visible.
func (d *Draft) Begin(loc Location, r daterange.Range) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.generation++
	d.location = loc
	d.dateRange = r
	return d.generation
}

// Apply stores the fetched observations if gen is still current. It reports
// whether the result was applied; stale results leave the draft untouched.
func (d *Draft) Apply(gen uint64, obs []DailyObservation) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if gen != d.generation {
		return false
	}
	d.observations = obs
	return true
}

// Snapshot returns the pair the draft currently describes and its
// observations, if any have been applied for it.
func (d *Draft) Snapshot() (Location, daterange.Range, []DailyObservation) {
	d.mu.Lock()
	defer d.mu.Unlock()

	obs := make([]DailyObservation, len(d.observations))
	copy(obs, d.observations)
	return d.location, d.dateRange, obs
}
