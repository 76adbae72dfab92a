package service

import (
	"errors"
	"testing"
	"time"

	schedulingerrors "scrimtime/internal/scheduling/errors"
	"scrimtime/pkg/model"
)

var testNow = time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC)

func sessionWith(expected int, availability map[string]model.DaySlots) *model.SchedulingSession {
	s := model.NewSchedulingSession("alpha-vs-bravo", "Alpha", "Bravo", expected, testNow)
	for participant, slots := range availability {
		schedule := make(model.ParticipantSchedule)
		for _, d := range s.Window {
			schedule.SetDay(d.Weekday, slots)
		}
		s.Schedules[participant] = schedule
	}
	return s
}

func TestRunSearchFullQuorum(t *testing.T) {
	s := sessionWith(2, map[string]model.DaySlots{
		"ana": model.AllSlots(),
		"ben": model.AllSlots(),
	})

	events := runSearch(s, testNow)

	if s.State != model.StateProposedFull {
		t.Fatalf("expected state %s, got %s", model.StateProposedFull, s.State)
	}
	if s.CurrentProposal == nil || len(s.CurrentProposal.Included) != 2 {
		t.Fatalf("expected a full proposal, got %+v", s.CurrentProposal)
	}
	if len(s.ProposedSlots) != 1 {
		t.Errorf("expected the slot to be recorded, got %v", s.ProposedSlots)
	}
	if len(events) != 1 || events[0].Type != model.EventProposalFull {
		t.Fatalf("expected one proposal.full event, got %+v", events)
	}
	if events[0].Day != s.Window[0].Weekday || events[0].Time != model.Slot1800 {
		t.Errorf("expected earliest day at 18:00, got %s %s", events[0].Day, events[0].Time)
	}
	if events[0].DayDisplay == "" {
		t.Error("expected a human-readable day in the event")
	}
}

func TestRunSearchRelaxesQuorum(t *testing.T) {
	s := sessionWith(6, map[string]model.DaySlots{
		"ana": {model.Slot2000},
		"ben": {model.Slot2000},
		"cy":  {model.Slot2000},
		"dre": {model.Slot2000},
		"eli": {model.Slot2000},
		"fin": {model.Slot2300},
	})

	events := runSearch(s, testNow)

	if s.State != model.StateAwaitingExcluded {
		t.Fatalf("expected state %s, got %s", model.StateAwaitingExcluded, s.State)
	}
	if len(events) != 1 || events[0].Type != model.EventAskExcluded {
		t.Fatalf("expected one proposal.ask_excluded event, got %+v", events)
	}
	if events[0].Participant != "fin" {
		t.Errorf("expected the ask to target fin, got %s", events[0].Participant)
	}
	if len(s.CurrentProposal.Included) != 5 || len(s.CurrentProposal.Excluded) != 1 {
		t.Errorf("expected a 5+1 proposal, got %+v", s.CurrentProposal)
	}
}

func TestRunSearchExhausted(t *testing.T) {
	s := sessionWith(2, map[string]model.DaySlots{
		"ana": {},
		"ben": {},
	})

	events := runSearch(s, testNow)

	if s.State != model.StateExhausted {
		t.Fatalf("expected state %s, got %s", model.StateExhausted, s.State)
	}
	if s.CurrentProposal != nil {
		t.Errorf("expected no proposal on the table, got %+v", s.CurrentProposal)
	}
	if len(events) != 1 || events[0].Type != model.EventExhausted {
		t.Fatalf("expected one session.exhausted event, got %+v", events)
	}
}

func TestFullProposalConfirmation(t *testing.T) {
	s := sessionWith(2, map[string]model.DaySlots{
		"ana": model.AllSlots(),
		"ben": model.AllSlots(),
	})
	runSearch(s, testNow)

	events, err := applyResponse(s, "ana", true, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("a partial confirmation must not emit events, got %+v", events)
	}
	if s.State != model.StateProposedFull {
		t.Errorf("expected state unchanged, got %s", s.State)
	}

	events, err = applyResponse(s, "ben", true, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.State != model.StateConfirmed {
		t.Fatalf("expected state %s, got %s", model.StateConfirmed, s.State)
	}
	if s.Active {
		t.Error("a confirmed session must be deactivated")
	}
	if len(events) != 1 || events[0].Type != model.EventConfirmed {
		t.Fatalf("expected one session.confirmed event, got %+v", events)
	}
}

func TestDeclineTriggersNewSearch(t *testing.T) {
	s := sessionWith(2, map[string]model.DaySlots{
		"ana": {model.Slot1800, model.Slot1900},
		"ben": {model.Slot1800, model.Slot1900},
	})
	runSearch(s, testNow)
	first := s.CurrentProposal.Slot

	events, err := applyResponse(s, "ben", false, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected declined + new proposal events, got %+v", events)
	}
	if events[0].Type != model.EventDeclined || events[0].Participant != "ben" {
		t.Errorf("expected a declined event for ben, got %+v", events[0])
	}
	if events[1].Type != model.EventProposalFull {
		t.Errorf("expected a fresh proposal, got %+v", events[1])
	}
	if s.CurrentProposal.Slot == first {
		t.Error("a declined slot must not be proposed again")
	}
	if len(s.ProposedSlots) != 2 {
		t.Errorf("expected both slots recorded, got %v", s.ProposedSlots)
	}
}

func TestRepeatedDeclineIsIdempotent(t *testing.T) {
	s := sessionWith(2, map[string]model.DaySlots{
		"ana": {model.Slot1800},
		"ben": {model.Slot1800},
	})
	runSearch(s, testNow)
	s.Confirmations["ben"] = false

	before := len(s.ProposedSlots)
	events, err := applyResponse(s, "ben", false, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("a repeated decline must not emit events, got %+v", events)
	}
	if len(s.ProposedSlots) != before {
		t.Error("a repeated decline must not trigger another search cycle")
	}
	if s.State != model.StateProposedFull {
		t.Errorf("expected state unchanged, got %s", s.State)
	}
}

func TestExcludedParticipantJoins(t *testing.T) {
	s := sessionWith(3, map[string]model.DaySlots{
		"ana": {model.Slot2000},
		"ben": {model.Slot2000},
		"cy":  {model.Slot2300},
	})
	runSearch(s, testNow)
	if s.State != model.StateAwaitingExcluded {
		t.Fatalf("setup: expected %s, got %s", model.StateAwaitingExcluded, s.State)
	}

	events, err := applyResponse(s, "cy", true, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.State != model.StateProposedFull {
		t.Fatalf("expected promotion to %s, got %s", model.StateProposedFull, s.State)
	}
	if len(events) != 1 || events[0].Type != model.EventProposalFull {
		t.Fatalf("expected one proposal.full event, got %+v", events)
	}
	if len(s.CurrentProposal.Included) != 3 || len(s.CurrentProposal.Excluded) != 0 {
		t.Errorf("expected cy folded into the proposal, got %+v", s.CurrentProposal)
	}
	// The original pair matched on availability, so only cy still has to confirm.
	if !s.Confirmations["ana"] || !s.Confirmations["ben"] {
		t.Errorf("expected pre-seeded confirmations, got %v", s.Confirmations)
	}

	events, err = applyResponse(s, "cy", true, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.State != model.StateConfirmed {
		t.Fatalf("expected %s after cy confirms, got %s", model.StateConfirmed, s.State)
	}
	if len(events) != 1 || events[0].Type != model.EventConfirmed {
		t.Fatalf("expected one session.confirmed event, got %+v", events)
	}
}

func TestExcludedParticipantDeclines(t *testing.T) {
	s := sessionWith(3, map[string]model.DaySlots{
		"ana": {model.Slot2000},
		"ben": {model.Slot2000},
		"cy":  {model.Slot2300},
	})
	runSearch(s, testNow)

	events, err := applyResponse(s, "cy", false, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) < 2 || events[0].Type != model.EventDeclined {
		t.Fatalf("expected a declined event followed by the next search result, got %+v", events)
	}
	// The only other overlap is the pair again at 20:00 on later days.
	if s.State != model.StateAwaitingExcluded && s.State != model.StateExhausted {
		t.Errorf("unexpected state after decline: %s", s.State)
	}
}

func TestExcludedResponseFromWrongParticipant(t *testing.T) {
	s := sessionWith(3, map[string]model.DaySlots{
		"ana": {model.Slot2000},
		"ben": {model.Slot2000},
		"cy":  {model.Slot2300},
	})
	runSearch(s, testNow)

	if _, err := applyResponse(s, "ana", true, testNow); !errors.Is(err, schedulingerrors.ErrNoProposal) {
		t.Errorf("expected ErrNoProposal for a non-excluded responder, got %v", err)
	}
}

func TestResponseGuards(t *testing.T) {
	s := sessionWith(2, map[string]model.DaySlots{
		"ana": model.AllSlots(),
		"ben": model.AllSlots(),
	})

	if _, err := applyResponse(s, "zoe", true, testNow); !errors.Is(err, schedulingerrors.ErrNotParticipant) {
		t.Errorf("expected ErrNotParticipant, got %v", err)
	}
	if _, err := applyResponse(s, "ana", true, testNow); !errors.Is(err, schedulingerrors.ErrNoProposal) {
		t.Errorf("expected ErrNoProposal before any search, got %v", err)
	}
}
