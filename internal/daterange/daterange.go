package daterange

import (
	"errors"
	"fmt"
	"time"
)

// Layout is the wire format for calendar dates.
const Layout = "2006-01-02"

var (
	// ErrFutureDate is returned when a candidate range reaches past today.
	ErrFutureDate = errors.New("date range includes a future date")
	// ErrRangeTooLong is returned when a candidate range spans more days than allowed.
	ErrRangeTooLong = errors.New("date range is too long")
	// ErrInvertedRange is returned when the end date precedes the start date.
	ErrInvertedRange = errors.New("end date is before start date")
)

// Date is a calendar day without a time component. Comparisons are by
// calendar day only; the zone of the originating clock is irrelevant.
type Date struct {
	t time.Time
}

// New builds a Date from year, month and day.
func New(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Of truncates a timestamp to its wall-clock calendar day.
func Of(t time.Time) Date {
	return New(t.Year(), t.Month(), t.Day())
}

// Parse reads a date in YYYY-MM-DD form.
func Parse(s string) (Date, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", s)
	}
	return Of(t), nil
}

func (d Date) String() string { return d.t.Format(Layout) }

func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

func (d Date) After(o Date) bool { return d.t.After(o.t) }

func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

// AddDays returns the date n calendar days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// DaysUntil returns the number of days from d to o; negative if o is earlier.
func (d Date) DaysUntil(o Date) int {
	return int(o.t.Sub(d.t).Hours() / 24)
}

// Time returns the date as midnight UTC.
func (d Date) Time() time.Time { return d.t }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid date: %s", data)
	}
	parsed, err := Parse(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Range is an inclusive span of calendar days.
type Range struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// Days returns the inclusive number of calendar days in the range.
func (r Range) Days() int {
	return r.Start.DaysUntil(r.End) + 1
}

// Dates lists every day of the range in ascending order.
func (r Range) Dates() []Date {
	out := make([]Date, 0, r.Days())
	for d := r.Start; !d.After(r.End); d = d.AddDays(1) {
		out = append(out, d)
	}
	return out
}

// Validate checks a candidate start/end pair against today and the maximum
// allowed span. Checks run in a fixed order and the first failure wins:
// future dates, then span length, then inversion.
func Validate(start, end, today Date, maxSpanDays int) (Range, error) {
	if start.After(today) || end.After(today) {
		return Range{}, ErrFutureDate
	}
	if start.DaysUntil(end) > maxSpanDays {
		return Range{}, ErrRangeTooLong
	}
	if end.Before(start) {
		return Range{}, ErrInvertedRange
	}
	return Range{Start: start, End: end}, nil
}

// Split divides a validated range at the archive cutoff. Days up to and
// including the cutoff belong to the archive part, days after it to the
// forecast part. A nil part means the range does not touch that side.
// The parts are contiguous and disjoint and their union is exactly r.
func Split(r Range, cutoff Date) (archive, forecast *Range) {
	if !r.Start.After(cutoff) {
		end := r.End
		if end.After(cutoff) {
			end = cutoff
		}
		archive = &Range{Start: r.Start, End: end}
	}
	if r.End.After(cutoff) {
		start := r.Start
		if !start.After(cutoff) {
			start = cutoff.AddDays(1)
		}
		forecast = &Range{Start: start, End: r.End}
	}
	return archive, forecast
}
