package domain

import "errors"

// Shared sentinel errors. Entity-specific sentinels live next to their entity.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the requester is not allowed to act on the record.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidInput is returned for semantically invalid input that passed shape validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrStoreUnavailable is returned when the store kept failing transiently
	// and the bounded retries at the service boundary were exhausted.
	ErrStoreUnavailable = errors.New("store unavailable")
)
