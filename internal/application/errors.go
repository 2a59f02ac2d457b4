package application

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist or,
	// for bookings, has already been cancelled.
	ErrNotFound = errors.New("application: not found")
	// ErrSlotConflict is returned when the targeted interval is no longer
	// free. It signals that the caller's view of availability is stale;
	// callers should refetch slots rather than retry.
	ErrSlotConflict = errors.New("application: slot conflict")
)

// ValidationError captures field level validation issues that callers can
// surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
