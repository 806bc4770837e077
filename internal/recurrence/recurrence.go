package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/merzah/merzah/internal/apperr"
)

// Pattern names how a recurring event advances from one occurrence to the next.
type Pattern string

const (
	None      Pattern = ""
	Daily     Pattern = "daily"
	Weekly    Pattern = "weekly"
	Biweekly  Pattern = "biweekly"
	Weekdays  Pattern = "weekdays"
	Weekends  Pattern = "weekends"
	Monthly   Pattern = "monthly"
	Quarterly Pattern = "quarterly"
	Yearly    Pattern = "yearly"
)

// Patterns lists every recurring pattern in display order.
var Patterns = []Pattern{Daily, Weekly, Biweekly, Weekdays, Weekends, Monthly, Quarterly, Yearly}

// ParsePattern accepts a pattern name case-insensitively. An empty string or
// "none" yields None.
func ParsePattern(s string) (Pattern, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "", "none":
		return None, nil
	case "quaterly":
		// Legacy spelling, still accepted from clients and stored rows.
		return Quarterly, nil
	}
	for _, p := range Patterns {
		if string(p) == name {
			return p, nil
		}
	}
	return None, apperr.New(apperr.CodeValidationFailed, fmt.Sprintf("unknown recurrence pattern %q", s))
}

// IsRecurring reports whether p is one of the recurring patterns.
func (p Pattern) IsRecurring() bool {
	for _, known := range Patterns {
		if p == known {
			return true
		}
	}
	return false
}

// NextDate returns the occurrence following current. Day-based patterns keep
// the wall-clock time in current's location; month-based patterns clamp the
// day of month to the last day of the target month. Unknown patterns return
// current unchanged.
func NextDate(current time.Time, p Pattern) time.Time {
	switch p {
	case Daily:
		return current.AddDate(0, 0, 1)
	case Weekly:
		return current.AddDate(0, 0, 7)
	case Biweekly:
		return current.AddDate(0, 0, 14)
	case Weekdays, Weekends:
		return nextMatchingWeekday(current, p.weekdays())
	case Monthly:
		return AddMonths(current, 1)
	case Quarterly:
		return AddMonths(current, 3)
	case Yearly:
		return AddMonths(current, 12)
	default:
		return current
	}
}

// AddMonths adds n calendar months, clamping the day of month (Jan 31 + 1
// month is Feb 28 or Feb 29).
func AddMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	// time.Date normalizes month overflow into the year.
	target := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := DaysIn(target.Year(), target.Month()); day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (p Pattern) weekdays() []rrule.Weekday {
	if p == Weekends {
		return []rrule.Weekday{rrule.SA, rrule.SU}
	}
	return []rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR}
}

func nextMatchingWeekday(current time.Time, days []rrule.Weekday) time.Time {
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.DAILY,
		Byweekday: days,
		Dtstart:   current,
	})
	if err != nil {
		return current
	}
	next := rule.After(current, false)
	if next.IsZero() {
		return current
	}
	return next
}
