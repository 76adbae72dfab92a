package model

import (
	"testing"
	"time"
)

func TestNewScheduleWindow(t *testing.T) {
	// A Wednesday; the window must start the next day.
	now := time.Date(2026, 1, 7, 15, 30, 0, 0, time.UTC)

	window := NewScheduleWindow(now)

	if len(window) != WindowDays {
		t.Fatalf("expected %d days, got %d", WindowDays, len(window))
	}
	if window[0].Weekday != "Thursday" {
		t.Errorf("expected window to start on Thursday, got %s", window[0].Weekday)
	}
	if window[0].Date != "08/01" {
		t.Errorf("expected first date 08/01, got %s", window[0].Date)
	}
	if window[6].Weekday != "Wednesday" {
		t.Errorf("expected window to end on Wednesday, got %s", window[6].Weekday)
	}
	if window[0].Display != "Thursday, 08 Jan 2026" {
		t.Errorf("unexpected display format: %s", window[0].Display)
	}

	seen := make(map[string]bool)
	for _, d := range window {
		if seen[d.Weekday] {
			t.Errorf("weekday %s appears twice", d.Weekday)
		}
		seen[d.Weekday] = true
	}
}

func TestScheduleWindowLookups(t *testing.T) {
	window := NewScheduleWindow(time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC))

	day, ok := window.Day("Saturday")
	if !ok {
		t.Fatal("expected Saturday to be in the window")
	}
	if day.Date != "10/01" {
		t.Errorf("expected Saturday on 10/01, got %s", day.Date)
	}

	if idx := window.DayIndex("Thursday"); idx != 0 {
		t.Errorf("expected Thursday at index 0, got %d", idx)
	}
	if idx := window.DayIndex("Someday"); idx != -1 {
		t.Errorf("expected -1 for an unknown weekday, got %d", idx)
	}

	if _, ok := window.Day("Someday"); ok {
		t.Error("expected lookup of unknown weekday to fail")
	}
}

func TestParticipantScheduleCompleteness(t *testing.T) {
	window := NewScheduleWindow(time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC))
	ps := make(ParticipantSchedule)

	if ps.IsComplete(window) {
		t.Error("empty schedule must not be complete")
	}

	for _, d := range window[:6] {
		ps.SetDay(d.Weekday, AllSlots())
	}
	if ps.IsComplete(window) {
		t.Error("schedule missing one day must not be complete")
	}
	missing := ps.MissingDays(window)
	if len(missing) != 1 || missing[0] != window[6].Weekday {
		t.Errorf("expected missing day %s, got %v", window[6].Weekday, missing)
	}

	// An explicit empty set counts as an answer for the day.
	ps.SetDay(window[6].Weekday, DaySlots{})
	if !ps.IsComplete(window) {
		t.Error("schedule with all seven days answered must be complete")
	}
}

func TestSetDayOverwrites(t *testing.T) {
	ps := make(ParticipantSchedule)
	ps.SetDay("Monday", DaySlots{Slot1800})
	ps.SetDay("Monday", DaySlots{Slot2100, Slot2200})

	if len(ps["Monday"]) != 2 || !ps["Monday"].Contains(Slot2100) {
		t.Errorf("expected later write to replace the earlier one, got %v", ps["Monday"])
	}
}
