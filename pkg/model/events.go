package model

import "time"

// EventType identifies an outbound notification to the presentation layer.
type EventType string

const (
	// EventProposalFull announces a slot to the whole group for confirmation.
	EventProposalFull EventType = "proposal.full"

	// EventAskExcluded privately asks the one excluded participant of a
	// relaxed match whether they can also make the slot.
	EventAskExcluded EventType = "proposal.ask_excluded"

	// EventDeclined announces that a participant turned the proposal down.
	EventDeclined EventType = "proposal.declined"

	// EventConfirmed announces the final, fully confirmed match time.
	EventConfirmed EventType = "session.confirmed"

	// EventExhausted reports that no common time could be found.
	EventExhausted EventType = "session.exhausted"

	// EventCancelled reports an explicit cancellation.
	EventCancelled EventType = "session.cancelled"
)

// NotificationEvent is the engine's only outbound signal. The presentation
// layer owns delivery and formatting; the engine just states what happened.
type NotificationEvent struct {
	Type        EventType    `json:"type"`
	SessionKey  string       `json:"session_key"`
	TeamA       string       `json:"team_a"`
	TeamB       string       `json:"team_b"`
	Day         string       `json:"day,omitempty"`
	DayDisplay  string       `json:"day_display,omitempty"`
	Time        Slot         `json:"time,omitempty"`
	Included    []string     `json:"included,omitempty"`
	Excluded    []string     `json:"excluded,omitempty"`
	Participant string       `json:"participant,omitempty"`
	State       SessionState `json:"state,omitempty"`
	OccurredAt  time.Time    `json:"occurred_at"`
}
