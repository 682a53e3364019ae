package models

import "errors"

// Sentinel errors shared by the match engine, chat service and storage
// layer. Callers classify failures with errors.Is.
var (
	// ErrValidation marks bad input (self-match, invalid movie id,
	// empty or oversized message). Rejected before any storage access.
	ErrValidation = errors.New("validation failed")

	// ErrMembership marks an operation on a room the user is not
	// (or never was) a member of.
	ErrMembership = errors.New("not a member of this room")

	// ErrConflict marks a race-detected duplicate write. The match engine
	// recovers from it internally; it is never surfaced to API callers.
	ErrConflict = errors.New("conflicting concurrent write")

	// ErrStorageUnavailable marks a database failure. Fatal to the
	// operation, no internal retry.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
