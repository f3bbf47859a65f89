// Package timewindow computes the calendar windows budgets are measured
// against and provides the injectable clock used by the scheduler.
//
// All windows are computed in UTC. Weeks start on Sunday.
package timewindow

import (
	"errors"
	"fmt"
	"time"
)

// Period is the length of a budget window.
type Period string

const (
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

// Valid reports whether p is a known period.
func (p Period) Valid() bool {
	switch p {
	case Weekly, Monthly, Yearly:
		return true
	}
	return false
}

// ErrUnknownPeriod is returned by For when the period is not recognised.
var ErrUnknownPeriod = errors.New("unknown period")

// endOfDay is the offset from midnight to the last instant of a window.
// Windows end at millisecond precision (23:59:59.999).
const endOfDay = 24*time.Hour - time.Millisecond

// Window is an inclusive time range.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls within the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// For returns the window of the given period that contains ref.
func For(period Period, ref time.Time) (Window, error) {
	ref = ref.UTC()
	day := StartOfDay(ref)

	switch period {
	case Weekly:
		start := day.AddDate(0, 0, -int(day.Weekday()))
		return Window{Start: start, End: start.AddDate(0, 0, 6).Add(endOfDay)}, nil
	case Monthly:
		start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
		last := start.AddDate(0, 1, -1)
		return Window{Start: start, End: last.Add(endOfDay)}, nil
	case Yearly:
		start := time.Date(ref.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		last := time.Date(ref.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
		return Window{Start: start, End: last.Add(endOfDay)}, nil
	}
	return Window{}, fmt.Errorf("%w: %q", ErrUnknownPeriod, period)
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
