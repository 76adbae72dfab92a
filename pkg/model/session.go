package model

import (
	"sort"
	"time"
)

// SessionState tracks where a session sits in the negotiation cycle.
type SessionState string

const (
	StateAwaitingSubmissions SessionState = "awaiting_submissions"
	StateSearching           SessionState = "searching"
	StateProposedFull        SessionState = "proposed_full"
	StateAwaitingExcluded    SessionState = "awaiting_excluded_response"
	StateConfirmed           SessionState = "confirmed"
	StateExhausted           SessionState = "exhausted"
)

// ProposedSlot is one (day, time) pair that has been offered to the group.
// The list on the session is append-only; a pair that has been proposed once
// is never offered again.
type ProposedSlot struct {
	Day  string `json:"day" bson:"day"`
	Time Slot   `json:"time" bson:"time"`
}

// Proposal is the slot currently on the table, with the participants it was
// matched for. Excluded is non-empty only for a relaxed (quorum-1) match.
type Proposal struct {
	Slot     ProposedSlot `json:"slot" bson:"slot"`
	Included []string     `json:"included" bson:"included"`
	Excluded []string     `json:"excluded,omitempty" bson:"excluded,omitempty"`
}

// ParticipantSchedule maps weekday name to the participant's slots for that
// day. A weekday missing from the map has not been filled in yet; an explicit
// empty set means unavailable.
type ParticipantSchedule map[string]DaySlots

// SetDay records the day's availability. Writing the same day again simply
// replaces the earlier entry.
func (ps ParticipantSchedule) SetDay(weekday string, slots DaySlots) {
	ps[weekday] = slots
}

// IsComplete reports whether every day of the window has an explicit entry.
func (ps ParticipantSchedule) IsComplete(window ScheduleWindow) bool {
	for _, d := range window {
		if _, ok := ps[d.Weekday]; !ok {
			return false
		}
	}
	return true
}

// MissingDays lists window weekdays without an entry, in window order.
func (ps ParticipantSchedule) MissingDays(window ScheduleWindow) []string {
	var missing []string
	for _, d := range window {
		if _, ok := ps[d.Weekday]; !ok {
			missing = append(missing, d.Weekday)
		}
	}
	return missing
}

// SchedulingSession is the aggregate root of one negotiation between two
// teams. It is the unit of consistency: every mutation loads the whole
// document, changes it, and stores it back guarded by Version.
type SchedulingSession struct {
	ID                   string                         `json:"id,omitempty" bson:"_id,omitempty"`
	Key                  string                         `json:"key" bson:"key"`
	TeamA                string                         `json:"team_a" bson:"team_a"`
	TeamB                string                         `json:"team_b" bson:"team_b"`
	ExpectedParticipants int                            `json:"expected_participants" bson:"expected_participants"`
	Window               ScheduleWindow                 `json:"window" bson:"window"`
	Schedules            map[string]ParticipantSchedule `json:"schedules" bson:"schedules"`
	ProposedSlots        []ProposedSlot                 `json:"proposed_slots" bson:"proposed_slots"`
	CurrentProposal      *Proposal                      `json:"current_proposal,omitempty" bson:"current_proposal,omitempty"`
	Confirmations        map[string]bool                `json:"confirmations" bson:"confirmations"`
	State                SessionState                   `json:"state" bson:"state"`
	Active               bool                           `json:"active" bson:"active"`
	Version              int64                          `json:"-" bson:"version"`
	CreatedAt            time.Time                      `json:"created_at" bson:"created_at"`
	UpdatedAt            time.Time                      `json:"updated_at" bson:"updated_at"`
}

// NewSchedulingSession creates a fresh session in AWAITING_SUBMISSIONS with a
// window starting tomorrow.
func NewSchedulingSession(key, teamA, teamB string, expectedParticipants int, now time.Time) *SchedulingSession {
	return &SchedulingSession{
		Key:                  key,
		TeamA:                teamA,
		TeamB:                teamB,
		ExpectedParticipants: expectedParticipants,
		Window:               NewScheduleWindow(now),
		Schedules:            make(map[string]ParticipantSchedule),
		ProposedSlots:        []ProposedSlot{},
		Confirmations:        make(map[string]bool),
		State:                StateAwaitingSubmissions,
		Active:               true,
		CreatedAt:            now.UTC().Truncate(time.Millisecond),
		UpdatedAt:            now.UTC().Truncate(time.Millisecond),
	}
}

// Participants returns the ids of everyone who has submitted, sorted for
// deterministic iteration.
func (s *SchedulingSession) Participants() []string {
	ids := make([]string, 0, len(s.Schedules))
	for id := range s.Schedules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// HasParticipant reports whether the id has a submitted schedule.
func (s *SchedulingSession) HasParticipant(id string) bool {
	_, ok := s.Schedules[id]
	return ok
}

// ReadyToSearch is true exactly when the submission quorum is reached.
func (s *SchedulingSession) ReadyToSearch() bool {
	return len(s.Schedules) == s.ExpectedParticipants
}

// HasProposed reports whether the (day, time) pair was already offered.
func (s *SchedulingSession) HasProposed(day string, t Slot) bool {
	for _, p := range s.ProposedSlots {
		if p.Day == day && p.Time == t {
			return true
		}
	}
	return false
}

// RecordProposal appends the slot to the proposed list, sets it as the
// current proposal and clears all confirmations.
func (s *SchedulingSession) RecordProposal(p Proposal) {
	s.ProposedSlots = append(s.ProposedSlots, p.Slot)
	s.CurrentProposal = &p
	s.Confirmations = make(map[string]bool)
}

// ConfirmedCount counts affirmative confirmations for the current proposal.
func (s *SchedulingSession) ConfirmedCount() int {
	n := 0
	for _, ok := range s.Confirmations {
		if ok {
			n++
		}
	}
	return n
}

// SessionStatus is the read-only snapshot exposed to the outside.
type SessionStatus struct {
	Key                  string          `json:"key"`
	TeamA                string          `json:"team_a"`
	TeamB                string          `json:"team_b"`
	State                SessionState    `json:"state"`
	ExpectedParticipants int             `json:"expected_participants"`
	Submitted            []string        `json:"submitted"`
	Window               ScheduleWindow  `json:"window"`
	CurrentProposal      *Proposal       `json:"current_proposal,omitempty"`
	Confirmations        map[string]bool `json:"confirmations,omitempty"`
	ProposedSoFar        []ProposedSlot  `json:"proposed_so_far"`
	CreatedAt            time.Time       `json:"created_at"`
}

// Status builds the snapshot for the session's current state.
func (s *SchedulingSession) Status() *SessionStatus {
	confirmations := make(map[string]bool, len(s.Confirmations))
	for id, v := range s.Confirmations {
		confirmations[id] = v
	}
	return &SessionStatus{
		Key:                  s.Key,
		TeamA:                s.TeamA,
		TeamB:                s.TeamB,
		State:                s.State,
		ExpectedParticipants: s.ExpectedParticipants,
		Submitted:            s.Participants(),
		Window:               s.Window,
		CurrentProposal:      s.CurrentProposal,
		Confirmations:        confirmations,
		ProposedSoFar:        append([]ProposedSlot{}, s.ProposedSlots...),
		CreatedAt:            s.CreatedAt,
	}
}
