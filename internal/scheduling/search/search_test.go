package search

import (
	"reflect"
	"testing"
	"time"

	"scrimtime/pkg/model"
)

var testNow = time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC)

func newSession(expected int) *model.SchedulingSession {
	return model.NewSchedulingSession("alpha-vs-bravo", "Alpha", "Bravo", expected, testNow)
}

func submitUniform(s *model.SchedulingSession, participant string, slots model.DaySlots) {
	schedule := make(model.ParticipantSchedule)
	for _, d := range s.Window {
		schedule.SetDay(d.Weekday, slots)
	}
	s.Schedules[participant] = schedule
}

func TestFindCommonTimesEveryoneFree(t *testing.T) {
	s := newSession(3)
	for _, p := range []string{"ana", "ben", "cy"} {
		submitUniform(s, p, model.AllSlots())
	}

	results := FindCommonTimes(s, 3)

	if len(results) != model.WindowDays {
		t.Fatalf("expected candidates on all %d days, got %d", model.WindowDays, len(results))
	}
	for weekday, candidates := range results {
		if len(candidates) != len(model.SlotDomain) {
			t.Errorf("%s: expected %d candidates, got %d", weekday, len(model.SlotDomain), len(candidates))
		}
		for _, c := range candidates {
			if len(c.Included) != 3 || len(c.Excluded) != 0 {
				t.Errorf("%s: expected full roster included, got %+v", weekday, c)
			}
		}
	}
}

func TestFindCommonTimesIntersection(t *testing.T) {
	s := newSession(6)
	for _, p := range []string{"ana", "ben", "cy", "dre", "eli"} {
		submitUniform(s, p, model.DaySlots{model.Slot1800, model.Slot1900, model.Slot2000})
	}
	submitUniform(s, "fin", model.DaySlots{model.Slot1900, model.Slot2000, model.Slot2100})

	results := FindCommonTimes(s, 6)

	firstDay := s.Window[0].Weekday
	candidates := results[firstDay]
	if len(candidates) != 2 {
		t.Fatalf("expected 2 common times, got %d: %+v", len(candidates), candidates)
	}
	if candidates[0].Time != model.Slot1900 || candidates[1].Time != model.Slot2000 {
		t.Errorf("expected [19:00 20:00], got [%s %s]", candidates[0].Time, candidates[1].Time)
	}

	day, picked, ok := Pick(s, results)
	if !ok {
		t.Fatal("expected a pick")
	}
	if day != firstDay || picked.Time != model.Slot1900 {
		t.Errorf("expected %s 19:00, got %s %s", firstDay, day, picked.Time)
	}
}

func TestFindCommonTimesQuorumRelaxation(t *testing.T) {
	s := newSession(6)
	for _, p := range []string{"ana", "ben", "cy", "dre", "eli"} {
		submitUniform(s, p, model.DaySlots{model.Slot2000})
	}
	submitUniform(s, "fin", model.DaySlots{model.Slot2300})

	if results := FindCommonTimes(s, 6); len(results) != 0 {
		t.Fatalf("expected no full-quorum candidates, got %v", results)
	}

	results := FindCommonTimes(s, 5)
	day, picked, ok := Pick(s, results)
	if !ok {
		t.Fatal("expected a relaxed pick")
	}
	if day != s.Window[0].Weekday || picked.Time != model.Slot2000 {
		t.Errorf("unexpected pick: %s %s", day, picked.Time)
	}
	if !reflect.DeepEqual(picked.Excluded, []string{"fin"}) {
		t.Errorf("expected fin excluded, got %v", picked.Excluded)
	}
	if len(picked.Included) != 5 {
		t.Errorf("expected 5 included, got %v", picked.Included)
	}
}

func TestFindCommonTimesSkipsProposedSlots(t *testing.T) {
	s := newSession(2)
	submitUniform(s, "ana", model.DaySlots{model.Slot1900, model.Slot2000})
	submitUniform(s, "ben", model.DaySlots{model.Slot1900, model.Slot2000})

	firstDay := s.Window[0].Weekday
	s.ProposedSlots = append(s.ProposedSlots, model.ProposedSlot{Day: firstDay, Time: model.Slot1900})

	results := FindCommonTimes(s, 2)
	for _, c := range results[firstDay] {
		if c.Time == model.Slot1900 {
			t.Errorf("slot 19:00 on %s was already proposed and must not come back", firstDay)
		}
	}
	if len(results[firstDay]) != 1 || results[firstDay][0].Time != model.Slot2000 {
		t.Errorf("expected only 20:00 on %s, got %+v", firstDay, results[firstDay])
	}
}

func TestFindCommonTimesDropsFullyUnavailable(t *testing.T) {
	s := newSession(3)
	submitUniform(s, "ana", model.DaySlots{model.Slot2100})
	submitUniform(s, "ben", model.DaySlots{model.Slot2100})
	submitUniform(s, "cy", model.DaySlots{})

	// cy is out on every day, so two participants can never reach quorum 3.
	if results := FindCommonTimes(s, 3); len(results) != 0 {
		t.Errorf("expected no candidates, got %v", results)
	}

	// At quorum 2 the remaining pair matches, with cy excluded.
	results := FindCommonTimes(s, 2)
	_, picked, ok := Pick(s, results)
	if !ok {
		t.Fatal("expected a pick at quorum 2")
	}
	if !reflect.DeepEqual(picked.Excluded, []string{"cy"}) {
		t.Errorf("expected cy excluded, got %v", picked.Excluded)
	}
}

func TestPickPrefersPrimeTime(t *testing.T) {
	s := newSession(2)
	submitUniform(s, "ana", model.DaySlots{model.Slot2300, model.Slot0000})
	submitUniform(s, "ben", model.DaySlots{model.Slot2300, model.Slot0000})

	results := FindCommonTimes(s, 2)
	day, picked, ok := Pick(s, results)
	if !ok {
		t.Fatal("expected a pick")
	}
	// No prime-time candidate exists, so the earliest slot wins.
	if day != s.Window[0].Weekday || picked.Time != model.Slot2300 {
		t.Errorf("expected %s 23:00, got %s %s", s.Window[0].Weekday, day, picked.Time)
	}
}

func TestPickPrefersEarliestDay(t *testing.T) {
	s := newSession(2)
	firstDay := s.Window[0].Weekday
	secondDay := s.Window[1].Weekday

	for _, p := range []string{"ana", "ben"} {
		schedule := make(model.ParticipantSchedule)
		for _, d := range s.Window {
			schedule.SetDay(d.Weekday, model.DaySlots{})
		}
		// Only late night on the first day, prime time on the second.
		schedule.SetDay(firstDay, model.DaySlots{model.Slot2300})
		schedule.SetDay(secondDay, model.DaySlots{model.Slot1900})
		s.Schedules[p] = schedule
	}

	results := FindCommonTimes(s, 2)
	day, picked, ok := Pick(s, results)
	if !ok {
		t.Fatal("expected a pick")
	}
	// The earliest day wins even when a later day has a prime-time option.
	if day != firstDay || picked.Time != model.Slot2300 {
		t.Errorf("expected %s 23:00, got %s %s", firstDay, day, picked.Time)
	}
}

func TestCombinations(t *testing.T) {
	got := combinations([]string{"a", "b", "c", "d"}, 3)
	want := [][]string{
		{"a", "b", "c"},
		{"a", "b", "d"},
		{"a", "c", "d"},
		{"b", "c", "d"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	if combinations([]string{"a"}, 2) != nil {
		t.Error("expected nil when k exceeds the input size")
	}
	if combinations([]string{"a", "b"}, 0) != nil {
		t.Error("expected nil for k = 0")
	}
}
