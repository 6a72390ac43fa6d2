package model

import "errors"

var (
	// ErrInvalidTurn is returned when a turn has empty content.
	ErrInvalidTurn = errors.New("turn content must be a non-empty string")

	// ErrBackendFailure wraps all failures of the generative backend call:
	// network errors, malformed responses, and upstream application errors.
	ErrBackendFailure = errors.New("backend request failed")

	// ErrRelayBusy is returned when a connection's inbound queue is full.
	ErrRelayBusy = errors.New("relay busy")

	// ErrRelayClosed is returned when a message is submitted after the
	// connection's relay has shut down.
	ErrRelayClosed = errors.New("relay closed")

	// ErrSessionNotFound is returned when a session record is not found.
	ErrSessionNotFound = errors.New("session not found")
)
