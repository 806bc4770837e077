// Package calendar exports a mosque's events as an iCalendar feed. A
// recurring event is published once with an RRULE starting at its current
// occurrence, so subscribers see the series the platform still holds.
// DTSTART carries the event's TZID so clients expand the rule in local
// wall-clock time, as rotation does.
package calendar

import (
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/merzah/merzah/internal/models"
)

const (
	productID      = "-//Merzah//Mosque Events//EN"
	localTimestamp = "20060102T150405"
)

// Build renders events as a VCALENDAR named after the mosque. now stamps
// every VEVENT.
func Build(name string, events []*models.Event, now time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(name)

	for _, event := range events {
		addEvent(cal, event, now)
	}

	return cal.Serialize()
}

func addEvent(cal *ics.Calendar, event *models.Event, now time.Time) {
	ve := cal.AddEvent(UID(event))
	ve.SetDtStampTime(now.UTC())
	ve.SetCreatedTime(event.CreatedAt.UTC())
	ve.SetModifiedAt(event.UpdatedAt.UTC())
	setStart(ve, event)
	ve.SetSummary(event.Title)
	ve.SetDescription(description(event))
	ve.AddProperty(ics.ComponentPropertyCategories, strings.ToUpper(string(event.Category)))

	if event.IsRecurring {
		if rule := event.RecurrencePattern.RRule(event.RecurrenceEndDate); rule != "" {
			ve.AddRrule(rule)
		}
	}
}

// setStart writes DTSTART as UTC for UTC events and as local time with a
// TZID parameter otherwise.
func setStart(ve *ics.VEvent, event *models.Event) {
	loc := event.Location()
	if loc == time.UTC {
		ve.SetStartAt(event.NextOccurrence.UTC())
		return
	}
	ve.SetProperty(ics.ComponentPropertyDtStart,
		event.NextOccurrence.In(loc).Format(localTimestamp),
		&ics.KeyValues{Key: string(ics.ParameterTzid), Value: []string{loc.String()}})
}

// UID is stable across rotations because it only depends on event identity.
func UID(event *models.Event) string {
	return event.ID.String() + "@merzah"
}

func description(event *models.Event) string {
	if event.Speaker == nil {
		return event.Description
	}
	return event.Description + "\n\nSpeaker: " + *event.Speaker
}
