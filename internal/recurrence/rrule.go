package recurrence

import (
	"fmt"
	"strings"
	"time"
)

// RRule renders p as an RFC 5545 RRULE value, bounded by until when set.
// It returns an empty string for non-recurring patterns.
func (p Pattern) RRule(until *time.Time) string {
	var parts []string

	switch p {
	case Daily:
		parts = append(parts, "FREQ=DAILY")
	case Weekly:
		parts = append(parts, "FREQ=WEEKLY")
	case Biweekly:
		parts = append(parts, "FREQ=WEEKLY", "INTERVAL=2")
	case Weekdays:
		parts = append(parts, "FREQ=WEEKLY", "BYDAY=MO,TU,WE,TH,FR")
	case Weekends:
		parts = append(parts, "FREQ=WEEKLY", "BYDAY=SA,SU")
	case Monthly:
		parts = append(parts, "FREQ=MONTHLY")
	case Quarterly:
		parts = append(parts, "FREQ=MONTHLY", "INTERVAL=3")
	case Yearly:
		parts = append(parts, "FREQ=YEARLY")
	default:
		return ""
	}

	if until != nil {
		parts = append(parts, fmt.Sprintf("UNTIL=%s", until.UTC().Format("20060102T150405Z")))
	}

	return strings.Join(parts, ";")
}

// HumanReadable returns an English description of the pattern.
func (p Pattern) HumanReadable() string {
	switch p {
	case Daily:
		return "every day"
	case Weekly:
		return "every week"
	case Biweekly:
		return "every 2 weeks"
	case Weekdays:
		return "every weekday"
	case Weekends:
		return "every weekend"
	case Monthly:
		return "every month"
	case Quarterly:
		return "every 3 months"
	case Yearly:
		return "every year"
	default:
		return "one-time"
	}
}
