package service

import (
	"fmt"
	"time"

	schedulingerrors "scrimtime/internal/scheduling/errors"
	"scrimtime/internal/scheduling/search"
	"scrimtime/pkg/model"
)

// The negotiation logic mutates the session in memory and reports what
// happened as notification events. Persistence and delivery stay in the
// coordinator, which keeps these transitions trivially testable.

// runSearch drives one SEARCHING pass: full quorum first, then quorum minus
// one with the excluded-participant ask, then exhaustion. Slots already in
// ProposedSlots are never offered again.
func runSearch(s *model.SchedulingSession, now time.Time) []model.NotificationEvent {
	s.State = model.StateSearching

	full := search.FindCommonTimes(s, s.ExpectedParticipants)
	if day, candidate, ok := search.Pick(s, full); ok {
		s.RecordProposal(model.Proposal{
			Slot:     model.ProposedSlot{Day: day, Time: candidate.Time},
			Included: candidate.Included,
		})
		s.State = model.StateProposedFull
		return []model.NotificationEvent{proposalEvent(s, model.EventProposalFull, now)}
	}

	relaxed := search.FindCommonTimes(s, s.ExpectedParticipants-1)
	if day, candidate, ok := search.Pick(s, relaxed); ok {
		s.RecordProposal(model.Proposal{
			Slot:     model.ProposedSlot{Day: day, Time: candidate.Time},
			Included: candidate.Included,
			Excluded: candidate.Excluded,
		})
		s.State = model.StateAwaitingExcluded

		event := proposalEvent(s, model.EventAskExcluded, now)
		event.Participant = candidate.Excluded[0]
		return []model.NotificationEvent{event}
	}

	s.State = model.StateExhausted
	s.CurrentProposal = nil
	return []model.NotificationEvent{baseEvent(s, model.EventExhausted, now)}
}

// applyResponse feeds one confirm/decline into the state machine.
func applyResponse(s *model.SchedulingSession, participant string, accept bool, now time.Time) ([]model.NotificationEvent, error) {
	if !s.HasParticipant(participant) {
		return nil, fmt.Errorf("%w: %s", schedulingerrors.ErrNotParticipant, participant)
	}

	switch s.State {
	case model.StateProposedFull:
		return applyFullResponse(s, participant, accept, now)
	case model.StateAwaitingExcluded:
		return applyExcludedResponse(s, participant, accept, now)
	default:
		return nil, schedulingerrors.ErrNoProposal
	}
}

func applyFullResponse(s *model.SchedulingSession, participant string, accept bool, now time.Time) ([]model.NotificationEvent, error) {
	if accept {
		s.Confirmations[participant] = true
		if s.ConfirmedCount() >= s.ExpectedParticipants {
			s.State = model.StateConfirmed
			s.Active = false
			return []model.NotificationEvent{proposalEvent(s, model.EventConfirmed, now)}, nil
		}
		return nil, nil
	}

	// A repeated decline from the same participant must not trigger another
	// search cycle.
	if confirmed, responded := s.Confirmations[participant]; responded && !confirmed {
		return nil, nil
	}
	s.Confirmations[participant] = false

	declined := proposalEvent(s, model.EventDeclined, now)
	declined.Participant = participant

	events := []model.NotificationEvent{declined}
	return append(events, runSearch(s, now)...), nil
}

func applyExcludedResponse(s *model.SchedulingSession, participant string, accept bool, now time.Time) ([]model.NotificationEvent, error) {
	if s.CurrentProposal == nil || len(s.CurrentProposal.Excluded) == 0 {
		return nil, schedulingerrors.ErrNoProposal
	}
	excluded := s.CurrentProposal.Excluded[0]
	if participant != excluded {
		return nil, fmt.Errorf("%w: awaiting response from %s", schedulingerrors.ErrNoProposal, excluded)
	}

	if accept {
		// The excluded participant can make it after all: promote the slot to
		// a full proposal. The original combination already matched on
		// availability, so their confirmations are pre-seeded; only the
		// joining participant still has to confirm.
		s.Confirmations = make(map[string]bool, s.ExpectedParticipants)
		for _, id := range s.CurrentProposal.Included {
			s.Confirmations[id] = true
		}
		s.CurrentProposal.Included = append(s.CurrentProposal.Included, excluded)
		s.CurrentProposal.Excluded = nil
		s.State = model.StateProposedFull
		return []model.NotificationEvent{proposalEvent(s, model.EventProposalFull, now)}, nil
	}

	// The slot is already recorded in ProposedSlots and will not reappear.
	declined := proposalEvent(s, model.EventDeclined, now)
	declined.Participant = participant

	events := []model.NotificationEvent{declined}
	return append(events, runSearch(s, now)...), nil
}

func baseEvent(s *model.SchedulingSession, typ model.EventType, now time.Time) model.NotificationEvent {
	return model.NotificationEvent{
		Type:       typ,
		SessionKey: s.Key,
		TeamA:      s.TeamA,
		TeamB:      s.TeamB,
		State:      s.State,
		OccurredAt: now.UTC(),
	}
}

func proposalEvent(s *model.SchedulingSession, typ model.EventType, now time.Time) model.NotificationEvent {
	event := baseEvent(s, typ, now)
	if s.CurrentProposal != nil {
		event.Day = s.CurrentProposal.Slot.Day
		event.Time = s.CurrentProposal.Slot.Time
		event.Included = append([]string{}, s.CurrentProposal.Included...)
		event.Excluded = append([]string{}, s.CurrentProposal.Excluded...)
		if day, ok := s.Window.Day(s.CurrentProposal.Slot.Day); ok {
			event.DayDisplay = day.Display
		}
	}
	return event
}
