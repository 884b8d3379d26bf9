package weather

import "sort"

// Merge combines the archive and forecast observation sequences into one
// series ordered by date ascending. The splitter guarantees the two inputs
// cover disjoint day ranges, so concatenation plus a sort is enough; the
// sort is done unconditionally rather than trusting adapter ordering.
func Merge(archive, forecast []DailyObservation) []DailyObservation {
	merged := make([]DailyObservation, 0, len(archive)+len(forecast))
	merged = append(merged, archive...)
	merged = append(merged, forecast...)

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Date.Before(merged[j].Date)
	})

	return merged
}
