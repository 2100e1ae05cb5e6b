package domain

import "errors"

var (
	// ErrCatalogUnavailable is returned when question content cannot be
	// fetched, or when a content has zero questions. Session start aborts;
	// a partially loaded catalog is never presented.
	ErrCatalogUnavailable = errors.New("question catalog unavailable")
	// ErrInvalidTransition indicates an engine method was called in the
	// wrong state. This is a caller bug, not a recoverable condition.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrPersistenceFailed is returned when the result write fails. The
	// caller decides whether to retry or surface it; the core never retries.
	ErrPersistenceFailed = errors.New("result persistence failed")
	// ErrAnswerOutOfRange indicates a question or option index outside the
	// session's bounds.
	ErrAnswerOutOfRange = errors.New("answer index out of range")
	// ErrSessionNotFound is returned when an invite points at an unknown
	// administered session.
	ErrSessionNotFound = errors.New("session not found")
)
