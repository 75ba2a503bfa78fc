package domain

import (
	"fmt"
	"time"
)

// TimeRange is a closed, finite interval of two instants. It is immutable:
// a reschedule produces a new TimeRange rather than mutating an existing one.
type TimeRange struct {
	start time.Time
	end   time.Time
}

// NewTimeRange validates and builds a TimeRange. Both instants must be set
// and end must be strictly after start. Instants are normalized to UTC so
// two ranges constructed from different zone representations of the same
// moment compare equal.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if start.IsZero() || end.IsZero() {
		return TimeRange{}, ErrMissingTimezone
	}
	if !end.After(start) {
		return TimeRange{}, &InvalidRangeError{Start: start, End: end}
	}
	return TimeRange{start: start.UTC(), end: end.UTC()}, nil
}

func (r TimeRange) Start() time.Time { return r.start }

func (r TimeRange) End() time.Time { return r.end }

// Overlaps reports whether the two ranges share any time, using half-open
// semantics: a range ending exactly when another begins does not overlap it,
// so back-to-back bookings never conflict.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.start.Before(other.end) && r.end.After(other.start)
}

// Contains reports whether the instant falls inside the range, inclusive on
// both ends.
func (r TimeRange) Contains(instant time.Time) bool {
	return !instant.Before(r.start) && !instant.After(r.end)
}

func (r TimeRange) Duration() time.Duration {
	return r.end.Sub(r.start)
}

func (r TimeRange) Equal(other TimeRange) bool {
	return r.start.Equal(other.start) && r.end.Equal(other.end)
}

func (r TimeRange) IsZero() bool {
	return r.start.IsZero() && r.end.IsZero()
}

func (r TimeRange) String() string {
	return fmt.Sprintf("%s - %s", r.start.Format("2006-01-02 15:04"), r.end.Format("2006-01-02 15:04"))
}
