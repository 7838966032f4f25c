package daterange

import (
	"errors"
	"time"
)

var ErrInvalidRange = errors.New("start date cannot be after end date")

const day = 24 * time.Hour

// DateRange represents a half-open interval of calendar days [start, end).
type DateRange struct {
	start time.Time
	end   time.Time
}

// New truncates both bounds to their UTC calendar day and validates ordering.
func New(start, end time.Time) (DateRange, error) {
	if start.IsZero() || end.IsZero() {
		return DateRange{}, ErrInvalidRange
	}
	dr := DateRange{start: Day(start), end: Day(end)}
	if !dr.end.After(dr.start) {
		return DateRange{}, ErrInvalidRange
	}
	return dr, nil
}

// Must is New for fixtures; it panics on invalid input.
func Must(start, end time.Time) DateRange {
	dr, err := New(start, end)
	if err != nil {
		panic(err)
	}
	return dr
}

// Day returns the UTC midnight of the calendar day t falls on.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (dr DateRange) Start() time.Time { return dr.start }

func (dr DateRange) End() time.Time { return dr.end }

func (dr DateRange) IsZero() bool {
	return dr.start.IsZero() && dr.end.IsZero()
}

func (dr DateRange) Nights() int {
	return int(dr.end.Sub(dr.start) / day)
}

func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.start.Before(other.end) && other.start.Before(dr.end)
}

func (dr DateRange) String() string {
	return dr.start.Format(time.DateOnly) + "/" + dr.end.Format(time.DateOnly)
}
