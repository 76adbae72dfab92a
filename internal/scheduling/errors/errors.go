package errors

import "errors"

var (
	// ErrNotFound means no active session exists for the key.
	ErrNotFound = errors.New("scheduling session not found")

	// ErrSessionExists means the key already has an active session.
	ErrSessionExists = errors.New("an active scheduling session already exists for this key")

	// ErrVersionConflict means a concurrent writer stored the session first;
	// the caller reloads and reapplies its mutation.
	ErrVersionConflict = errors.New("session was modified concurrently")

	// ErrNotParticipant means the actor has no submitted schedule in the
	// session and cannot take part in the negotiation.
	ErrNotParticipant = errors.New("participant is not part of this session")

	// ErrNoProposal means a response arrived while no slot is on the table.
	ErrNoProposal = errors.New("no slot is currently proposed")

	// ErrIncompleteSchedule means not all window days were filled in.
	ErrIncompleteSchedule = errors.New("schedule does not cover all days of the window")
)
