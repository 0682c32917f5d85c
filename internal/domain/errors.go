package domain

import "errors"

var (
	// ErrSessionNotFound is returned when no live session matches the id or code.
	ErrSessionNotFound = errors.New("live session not found")
	// ErrParticipantNotFound is returned when a participant id is unknown.
	ErrParticipantNotFound = errors.New("participant not found")
	// ErrProgressNotFound is returned when a participant has no progress row for a session.
	ErrProgressNotFound = errors.New("participant progress not found")
	// ErrSessionLocked rejects joins after the teacher locked the lobby.
	ErrSessionLocked = errors.New("session is locked")
	// ErrSessionClosed rejects joins when the session no longer accepts participants.
	ErrSessionClosed = errors.New("session is not accepting participants")
	// ErrInvalidTransition rejects lifecycle moves the state machine does not allow.
	ErrInvalidTransition = errors.New("invalid session state transition")
	// ErrCapacityReached is returned when a participant hit the serve cap.
	// Distinct from ErrNoQuestion: the cap is checked before selection.
	ErrCapacityReached = errors.New("maximum questions reached")
	// ErrNoQuestion means the selector exhausted every eligible question.
	// A normal terminal outcome, not a failure.
	ErrNoQuestion = errors.New("no more questions available")
	// ErrNothingServed is returned when an answer arrives before any question was served.
	ErrNothingServed = errors.New("no question to answer")
	// ErrEmptyCatalog rejects starting a session with no questions loaded.
	ErrEmptyCatalog = errors.New("no questions available")
)
