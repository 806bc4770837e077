package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/merzah/merzah/internal/apperr"
)

// DurationChoice is how long a new series keeps recurring.
type DurationChoice string

const (
	OneMonth    DurationChoice = "one_month"
	ThreeMonths DurationChoice = "three_months"
	SixMonths   DurationChoice = "six_months"
	OneYear     DurationChoice = "one_year"
	Forever     DurationChoice = "forever"

	DefaultDuration = ThreeMonths
)

var durationAliases = map[string]DurationChoice{
	"one_month":    OneMonth,
	"1_month":      OneMonth,
	"three_months": ThreeMonths,
	"3_months":     ThreeMonths,
	"six_months":   SixMonths,
	"6_months":     SixMonths,
	"one_year":     OneYear,
	"1_year":       OneYear,
	"forever":      Forever,
	"indefinite":   Forever,
}

// ParseDuration resolves a duration selection. An empty selection yields
// DefaultDuration; anything unrecognised is a validation error.
func ParseDuration(s string) (DurationChoice, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return DefaultDuration, nil
	}
	if d, ok := durationAliases[name]; ok {
		return d, nil
	}
	return "", apperr.New(apperr.CodeValidationFailed, fmt.Sprintf("unknown recurrence duration %q", s))
}

// Days returns the day count of the choice; zero means unbounded.
func (d DurationChoice) Days() int {
	switch d {
	case OneMonth:
		return 30
	case ThreeMonths:
		return 90
	case SixMonths:
		return 180
	case OneYear:
		return 365
	default:
		return 0
	}
}

// EndDate returns start plus the duration's day count, or nil for Forever.
func (d DurationChoice) EndDate(start time.Time) *time.Time {
	days := d.Days()
	if days == 0 {
		return nil
	}
	end := start.AddDate(0, 0, days)
	return &end
}
