package scheduling

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidTimeRange = errors.New("invalid time range")

// TimeRange is a half-open [Start, End) interval on the clock, HH:MM.
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ParseClock converts HH:MM into minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not HH:MM", ErrInvalidTimeRange, s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// NormalizeClock rewrites an accepted clock value in zero-padded HH:MM form,
// so "9:00" is stored as "09:00" and sorts correctly as text.
func NormalizeClock(s string) (string, error) {
	m, err := ParseClock(s)
	if err != nil {
		return "", err
	}
	return FormatClock(m), nil
}

// FormatClock converts minutes since midnight back to HH:MM.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseRange validates that end is strictly after start.
func ParseRange(start, end string) (int, int, error) {
	s, err := ParseClock(start)
	if err != nil {
		return 0, 0, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return 0, 0, err
	}
	if e <= s {
		return 0, 0, fmt.Errorf("%w: end %s must be after start %s", ErrInvalidTimeRange, end, start)
	}
	return s, e, nil
}

// Overlaps reports whether two half-open minute intervals intersect.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// FreeSlots lays a grid from open to close every interval minutes and keeps
// the slots of the given duration that do not collide with busy ranges.
// Busy ranges that fail to parse are ignored.
func FreeSlots(open, close string, interval, duration int, busy []TimeRange) ([]TimeRange, error) {
	if interval <= 0 || duration <= 0 {
		return nil, fmt.Errorf("%w: interval and duration must be positive", ErrInvalidTimeRange)
	}
	o, c, err := ParseRange(open, close)
	if err != nil {
		return nil, err
	}

	type span struct{ s, e int }
	taken := make([]span, 0, len(busy))
	for _, b := range busy {
		s, e, err := ParseRange(b.Start, b.End)
		if err != nil {
			continue
		}
		taken = append(taken, span{s, e})
	}

	slots := []TimeRange{}
	for start := o; start+duration <= c; start += interval {
		end := start + duration
		free := true
		for _, t := range taken {
			if Overlaps(start, end, t.s, t.e) {
				free = false
				break
			}
		}
		if free {
			slots = append(slots, TimeRange{Start: FormatClock(start), End: FormatClock(end)})
		}
	}
	return slots, nil
}
