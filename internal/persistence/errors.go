package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrConflict is returned when a booking write would overlap the
	// buffered interval of another confirmed booking.
	ErrConflict = errors.New("persistence: slot conflict")
	// ErrConstraintViolation is returned when a write violates a schema
	// constraint.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
)
