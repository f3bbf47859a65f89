// Package recurrence holds the schedule arithmetic for recurring transactions:
// when a rule fires next, whether it is due, and when it stops.
//
// Every function is pure. Callers pass "now" explicitly so the same code can
// be driven by the system clock or a fixed test clock.
package recurrence

import (
	"errors"
	"fmt"
	"time"

	"finman/internal/models"
	"finman/internal/timewindow"
)

// ErrUnknownFrequency is returned when a rule carries an unrecognised frequency.
var ErrUnknownFrequency = errors.New("unknown frequency")

// Advance moves base forward by one period of freq. Monthly and yearly steps
// land on anchorDay, clamped to the last day of the target month, so a rule
// anchored on the 31st fires on Feb 29 and then again on Mar 31.
func Advance(base time.Time, freq models.Frequency, anchorDay int) (time.Time, error) {
	base = base.UTC()
	switch freq {
	case models.FrequencyDaily:
		return base.AddDate(0, 0, 1), nil
	case models.FrequencyWeekly:
		return base.AddDate(0, 0, 7), nil
	case models.FrequencyMonthly:
		return addMonths(base, 1, anchorDay), nil
	case models.FrequencyYearly:
		return addMonths(base, 12, anchorDay), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownFrequency, freq)
}

func addMonths(t time.Time, n, anchorDay int) time.Time {
	// Day 1 keeps time.Date from normalising an overflowing day into the next month.
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	day := anchorDay
	if last := timewindow.DaysInMonth(first.Year(), first.Month()); day > last {
		day = last
	}
	return first.AddDate(0, 0, day-1)
}

// anchorDay is the day of month all calendar steps of r are pinned to.
func anchorDay(r *models.RecurringTransaction) int {
	return r.StartDate.UTC().Day()
}

// scheduleBase is the slot being consumed by the current execution: the
// pending next execution, else the last execution, else the start date.
func scheduleBase(r *models.RecurringTransaction) time.Time {
	switch {
	case r.NextExecution != nil:
		return *r.NextExecution
	case r.LastExecuted != nil:
		return *r.LastExecuted
	}
	return r.StartDate
}

// ComputeNextExecution returns the slot after the one r is currently on.
// A result before now is clamped to now: a dormant rule fires once promptly
// rather than replaying every missed period.
func ComputeNextExecution(r *models.RecurringTransaction, now time.Time) (time.Time, error) {
	next, err := Advance(scheduleBase(r), r.Frequency, anchorDay(r))
	if err != nil {
		return time.Time{}, err
	}
	now = now.UTC()
	if next.Before(now) {
		return now, nil
	}
	return next, nil
}

// InitialExecution is the first slot of a newly created or re-activated
// rule. It is seeded from the start date directly, so a rule starting in
// the future is not due before its start date.
func InitialExecution(r *models.RecurringTransaction, now time.Time) time.Time {
	start := r.StartDate.UTC()
	now = now.UTC()
	if start.Before(now) {
		return now
	}
	return start
}

// IsDue reports whether r should be executed at now.
func IsDue(r *models.RecurringTransaction, now time.Time) bool {
	if !r.IsActive {
		return false
	}
	if r.EndDate != nil && now.After(*r.EndDate) {
		return false
	}
	if r.Occurrences != nil && r.ExecutedCount >= *r.Occurrences {
		return false
	}
	return r.NextExecution != nil && !now.Before(*r.NextExecution)
}

// TerminationReason reports why r must stop firing at now, or
// DeactivationNone if it may continue. The end date is an exclusive bound:
// a rule whose next slot would land on or after it is finished.
func TerminationReason(r *models.RecurringTransaction, now time.Time) models.DeactivationReason {
	if r.Occurrences != nil && r.ExecutedCount >= *r.Occurrences {
		return models.DeactivationOccurrences
	}
	if r.EndDate != nil {
		if !now.Before(*r.EndDate) {
			return models.DeactivationEndDateReached
		}
		if r.NextExecution != nil && !r.NextExecution.Before(*r.EndDate) {
			return models.DeactivationEndDateReached
		}
	}
	return models.DeactivationNone
}

// Deactivate stops r and records the reason. A terminated rule has no next
// execution.
func Deactivate(r *models.RecurringTransaction, reason models.DeactivationReason) {
	r.IsActive = false
	r.NextExecution = nil
	r.DeactivationReason = reason
}

// Activate seeds the schedule of a rule that is (re)entering service. It
// returns false, leaving r inactive, when the rule has already run its course.
func Activate(r *models.RecurringTransaction, now time.Time) bool {
	next := InitialExecution(r, now)
	if r.LastExecuted != nil {
		// Resuming never fires earlier than one period after the last run.
		if n, err := Advance(*r.LastExecuted, r.Frequency, anchorDay(r)); err == nil && n.After(next) {
			next = n
		}
	}
	r.IsActive = true
	r.DeactivationReason = models.DeactivationNone
	r.NextExecution = &next

	if reason := TerminationReason(r, now); reason != models.DeactivationNone {
		Deactivate(r, reason)
		return false
	}
	return true
}

// RecordExecution applies one execution at now to r: the count and last
// execution are bumped, the next slot is computed, and the rule is
// terminated if it has run its course. An inactive rule executed by hand
// stays inactive and keeps its reason.
func RecordExecution(r *models.RecurringTransaction, now time.Time) error {
	next, err := ComputeNextExecution(r, now)
	if err != nil {
		return err
	}
	now = now.UTC()
	r.ExecutedCount++
	r.LastExecuted = &now

	if !r.IsActive {
		r.NextExecution = nil
		return nil
	}
	r.NextExecution = &next
	if reason := TerminationReason(r, now); reason != models.DeactivationNone {
		Deactivate(r, reason)
	}
	return nil
}

// Upcoming reports whether r is scheduled to fire within the next days days.
func Upcoming(r *models.RecurringTransaction, now time.Time, days int) bool {
	if !r.IsActive || r.NextExecution == nil {
		return false
	}
	limit := now.AddDate(0, 0, days)
	return !r.NextExecution.After(limit)
}

// Validate rejects rule configurations the scheduler cannot run.
func Validate(r *models.RecurringTransaction) error {
	switch {
	case r.TemplateName == "":
		return errors.New("template name is required")
	case r.Category == "":
		return errors.New("category is required")
	case r.Amount <= 0:
		return errors.New("amount must be greater than zero")
	case !r.Type.Valid():
		return fmt.Errorf("unsupported transaction type %q", r.Type)
	case !r.Frequency.Valid():
		return fmt.Errorf("%w: %q", ErrUnknownFrequency, r.Frequency)
	case r.StartDate.IsZero():
		return errors.New("start date is required")
	case r.EndDate != nil && !r.EndDate.After(r.StartDate):
		return errors.New("end date must be after start date")
	case r.Occurrences != nil && *r.Occurrences < 1:
		return errors.New("occurrences must be at least 1")
	case r.NotifyDays < 0 || r.NotifyDays > 30:
		return errors.New("notify days must be between 0 and 30")
	}
	return nil
}
