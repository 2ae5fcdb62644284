package domain

import "errors"

var (
	// ErrInvalidConfiguration is returned for nonsensical quiz requests (count <= 0, unknown quiz type).
	// It is the only failure surfaced to end users.
	ErrInvalidConfiguration = errors.New("invalid quiz configuration")
	// ErrRemoteUnavailable marks a failed or timed-out call to the remote AI collaborator.
	ErrRemoteUnavailable = errors.New("remote AI service unavailable")
	// ErrMalformedRemoteData marks a remote payload that could not be decoded into the expected shape.
	ErrMalformedRemoteData = errors.New("malformed remote data")
	// ErrPersistence wraps load/save failures of the progress store.
	ErrPersistence = errors.New("persistence failure")
	// ErrSessionNotFound is returned when a quiz session does not exist or has expired.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrQuestionNotFound indicates an answer was submitted for an unknown question id.
	ErrQuestionNotFound = errors.New("question not found")
)
