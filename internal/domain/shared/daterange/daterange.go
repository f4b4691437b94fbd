package daterange

import (
	"errors"
	"time"
)

var ErrInvalidRange = errors.New("daterange: check-out must be after check-in")

// DateRange is a half-open stay interval [CheckIn, CheckOut). Both bounds are
// truncated to whole UTC dates; nightly stays never care about the time of day.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{CheckIn: Day(checkIn), CheckOut: Day(checkOut)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (dr DateRange) Validate() error {
	if dr.CheckIn.IsZero() || dr.CheckOut.IsZero() {
		return ErrInvalidRange
	}
	if !dr.CheckOut.After(dr.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

// Nights is the stay duration in whole days.
func (dr DateRange) Nights() int {
	return int(dr.CheckOut.Sub(dr.CheckIn).Hours() / 24)
}

// Overlaps reports whether two half-open ranges share at least one night.
// Touching endpoints do not overlap.
func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(dr.CheckOut)
}

func (dr DateRange) Adjacent(other DateRange) bool {
	return dr.CheckOut.Equal(other.CheckIn) || dr.CheckIn.Equal(other.CheckOut)
}

// BeginsBefore reports whether check-in falls before the date of t.
func (dr DateRange) BeginsBefore(t time.Time) bool {
	return dr.CheckIn.Before(Day(t))
}

// EndedBy reports whether the stay is fully in the past at t, meaning the
// check-out date is strictly before t's date.
func (dr DateRange) EndedBy(t time.Time) bool {
	return dr.CheckOut.Before(Day(t))
}
