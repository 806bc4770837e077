package calendar

import (
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	"github.com/merzah/merzah/internal/models"
	"github.com/merzah/merzah/internal/recurrence"
)

func TestBuild(t *testing.T) {
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	end := time.Date(2026, 4, 1, 18, 0, 0, 0, time.UTC)
	speaker := "Imam Khalid"

	weekly := &models.Event{
		ID:                uuid.New(),
		Title:             "Weekly halaqah",
		Description:       "Tafsir of Surah Al-Kahf",
		Category:          models.CategoryHalaqah,
		Speaker:           &speaker,
		NextOccurrence:    time.Date(2026, 1, 15, 18, 0, 0, 0, time.UTC),
		IsRecurring:       true,
		RecurrencePattern: recurrence.Biweekly,
		RecurrenceEndDate: &end,
		CreatedAt:         now.Add(-48 * time.Hour),
		UpdatedAt:         now.Add(-time.Hour),
	}
	oneTime := &models.Event{
		ID:             uuid.New(),
		Title:          "Eid prayer",
		Description:    "Eid al-Fitr prayer in the main hall",
		Category:       models.CategoryEid,
		NextOccurrence: time.Date(2026, 3, 20, 7, 30, 0, 0, time.UTC),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	out := Build("Masjid Al-Noor", []*models.Event{weekly, oneTime}, now)

	if !strings.Contains(out, "X-WR-CALNAME:Masjid Al-Noor") {
		t.Errorf("expected calendar name in output:\n%s", out)
	}

	cal, err := ics.ParseCalendar(strings.NewReader(out))
	if err != nil {
		t.Fatalf("parse back: %v", err)
	}
	events := cal.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	byUID := make(map[string]*ics.VEvent)
	for _, ve := range events {
		byUID[ve.Id()] = ve
	}

	ve, ok := byUID[UID(weekly)]
	if !ok {
		t.Fatalf("missing weekly event %s", UID(weekly))
	}
	start, err := ve.GetStartAt()
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !start.Equal(weekly.NextOccurrence) {
		t.Errorf("expected start %s, got %s", weekly.NextOccurrence, start)
	}
	if p := ve.GetProperty(ics.ComponentPropertyRrule); p == nil || p.Value != "FREQ=WEEKLY;INTERVAL=2;UNTIL=20260401T180000Z" {
		t.Errorf("unexpected RRULE %+v", p)
	}
	if p := ve.GetProperty(ics.ComponentPropertySummary); p == nil || p.Value != "Weekly halaqah" {
		t.Errorf("unexpected summary %+v", p)
	}
	if p := ve.GetProperty(ics.ComponentPropertyCategories); p == nil || p.Value != "HALAQAH" {
		t.Errorf("unexpected categories %+v", p)
	}

	ve, ok = byUID[UID(oneTime)]
	if !ok {
		t.Fatalf("missing one-time event %s", UID(oneTime))
	}
	if p := ve.GetProperty(ics.ComponentPropertyRrule); p != nil {
		t.Errorf("one-time event must not carry an RRULE, got %q", p.Value)
	}
}

func TestUIDStableAcrossRotation(t *testing.T) {
	event := &models.Event{ID: uuid.New(), NextOccurrence: time.Date(2026, 1, 1, 18, 0, 0, 0, time.UTC)}
	before := UID(event)
	event.NextOccurrence = event.NextOccurrence.AddDate(0, 0, 7)
	if UID(event) != before {
		t.Fatal("UID changed after rotation")
	}
}

func TestBuildKeepsLocalTimeAcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	start := time.Date(2026, 3, 5, 18, 0, 0, 0, ny)
	event := &models.Event{
		ID:                uuid.New(),
		Title:             "Thursday halaqah",
		Description:       "Seerah study circle",
		Category:          models.CategoryHalaqah,
		Timezone:          "America/New_York",
		NextOccurrence:    start,
		IsRecurring:       true,
		RecurrencePattern: recurrence.Weekly,
		CreatedAt:         start,
		UpdatedAt:         start,
	}

	cal, err := ics.ParseCalendar(strings.NewReader(Build("Masjid Al-Noor", []*models.Event{event}, start)))
	if err != nil {
		t.Fatalf("parse back: %v", err)
	}
	events := cal.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	dtstart := events[0].GetProperty(ics.ComponentPropertyDtStart)
	if dtstart == nil || dtstart.Value != "20260305T180000" {
		t.Fatalf("expected local DTSTART, got %+v", dtstart)
	}
	if tz := dtstart.ICalParameters[string(ics.ParameterTzid)]; len(tz) != 1 || tz[0] != "America/New_York" {
		t.Fatalf("expected TZID America/New_York, got %v", tz)
	}

	// Expanding the published rule from the local start must agree with
	// rotation after the switch to daylight time on 2026-03-08.
	rule, err := rrule.StrToRRule(events[0].GetProperty(ics.ComponentPropertyRrule).Value)
	if err != nil {
		t.Fatalf("parse rrule: %v", err)
	}
	rule.DTStart(start)
	next := rule.After(start, false)
	if want := recurrence.NextDate(start, recurrence.Weekly); !next.Equal(want) || next.In(ny).Hour() != 18 {
		t.Fatalf("expected %s, got %s", want, next)
	}
}
