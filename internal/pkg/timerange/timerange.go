package timerange

import (
	"errors"
	"time"
)

// Range is a half-open time interval [Start, End).
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

var ErrInvalidRange = errors.New("end time must be after start time")

func New(start, end time.Time) (Range, error) {
	if !end.After(start) {
		return Range{}, ErrInvalidRange
	}
	return Range{Start: start, End: end}, nil
}

// Overlaps reports whether r and other share any instant. Touching
// ranges (r.End == other.Start) do NOT overlap. This is the predicate
// used for booking-conflict checks: a booking may start exactly when
// another one ends.
func (r Range) Overlaps(other Range) bool {
	return r.Start.Before(other.End) && r.End.After(other.Start)
}

// OverlapsInclusive also counts touching ranges as overlapping. The
// block merge path uses it so that back-to-back blocks coalesce into
// one contiguous block instead of two adjoining rows.
func (r Range) OverlapsInclusive(other Range) bool {
	return !r.Start.After(other.End) && !r.End.Before(other.Start)
}

// Contains reports whether other lies entirely within r.
func (r Range) Contains(other Range) bool {
	return !r.Start.After(other.Start) && !r.End.Before(other.End)
}

func (r Range) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Union returns the smallest range covering both r and other.
func (r Range) Union(other Range) Range {
	out := r
	if other.Start.Before(out.Start) {
		out.Start = other.Start
	}
	if other.End.After(out.End) {
		out.End = other.End
	}
	return out
}

// Subtract removes other from r, returning the zero, one or two
// non-empty sub-ranges that remain.
func (r Range) Subtract(other Range) []Range {
	if !r.Overlaps(other) {
		return []Range{r}
	}
	var out []Range
	if r.Start.Before(other.Start) {
		out = append(out, Range{Start: r.Start, End: other.Start})
	}
	if r.End.After(other.End) {
		out = append(out, Range{Start: other.End, End: r.End})
	}
	return out
}

// Day returns the range covering the full calendar day of t in UTC,
// [midnight, midnight+24h).
func Day(t time.Time) Range {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return Range{Start: start, End: start.Add(24 * time.Hour)}
}

// EachDate calls fn once per calendar date touched by r, from the date
// of Start through the date of End inclusive. fn returning true stops
// the walk. Used to expand recurring patterns against queries that
// span midnight.
func (r Range) EachDate(fn func(date time.Time) bool) {
	last := Day(r.End).Start
	for d := Day(r.Start).Start; !d.After(last); d = d.AddDate(0, 0, 1) {
		if fn(d) {
			return
		}
	}
}
