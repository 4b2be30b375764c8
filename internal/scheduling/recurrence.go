// Package scheduling holds the time arithmetic behind the agenda: clock
// parsing, overlap checks, the slot grid and recurring dates.
package scheduling

import (
	"errors"
	"fmt"
	"time"
)

// Frequency of a recurring appointment series.
type Frequency string

const (
	Weekly   Frequency = "weekly"
	Biweekly Frequency = "biweekly"
)

var ErrInvalidRecurrence = errors.New("invalid recurrence")

// IntervalDays returns the number of days between two occurrences.
func (f Frequency) IntervalDays() (int, error) {
	switch f {
	case Weekly:
		return 7, nil
	case Biweekly:
		return 14, nil
	default:
		return 0, fmt.Errorf("%w: unknown frequency %q", ErrInvalidRecurrence, f)
	}
}

// RecurringDates returns count dates starting at start (included), spaced by
// the frequency. count must be in [1, max].
func RecurringDates(start time.Time, freq Frequency, count, max int) ([]time.Time, error) {
	step, err := freq.IntervalDays()
	if err != nil {
		return nil, err
	}
	if count < 1 || count > max {
		return nil, fmt.Errorf("%w: occurrences must be between 1 and %d, got %d", ErrInvalidRecurrence, max, count)
	}

	first := dateOnly(start)
	dates := make([]time.Time, 0, count)
	for i := 0; i < count; i++ {
		dates = append(dates, first.AddDate(0, 0, i*step))
	}
	return dates, nil
}

// RecurringDatesUntil returns every occurrence from start up to and including
// until, capped at max occurrences.
func RecurringDatesUntil(start, until time.Time, freq Frequency, max int) ([]time.Time, error) {
	step, err := freq.IntervalDays()
	if err != nil {
		return nil, err
	}
	first, last := dateOnly(start), dateOnly(until)
	if last.Before(first) {
		return nil, fmt.Errorf("%w: end date before start date", ErrInvalidRecurrence)
	}

	var dates []time.Time
	for d := first; !d.After(last); d = d.AddDate(0, 0, step) {
		if len(dates) == max {
			return nil, fmt.Errorf("%w: series exceeds %d occurrences", ErrInvalidRecurrence, max)
		}
		dates = append(dates, d)
	}
	return dates, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
