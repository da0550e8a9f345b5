package session

import "errors"

var (
	// ErrNotFound indicates an unknown session ID.
	ErrNotFound = errors.New("session not found")

	// ErrNotOwner indicates the caller does not own the session.
	ErrNotOwner = errors.New("caller is not the session owner")

	// ErrInvalidStage indicates a stage number outside 1..MaxStages.
	ErrInvalidStage = errors.New("stage number out of range")

	// ErrStageOrder indicates an append that skips or repeats a stage.
	ErrStageOrder = errors.New("stage out of sequence")

	// ErrSessionCompleted indicates an append after the final stage.
	ErrSessionCompleted = errors.New("session already completed")
)
