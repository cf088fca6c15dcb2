package flight

import "errors"

// Error taxonomy. Operations wrap one of these with context; callers match
// with errors.Is.
var (
	// ErrInvalidArgument reports bad input, such as a past departure time.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConflict reports a flight number that is already in use.
	ErrConflict = errors.New("conflict")

	// ErrNotFound reports an unknown flight.
	ErrNotFound = errors.New("not found")

	// ErrInternal reports an unexpected store failure.
	ErrInternal = errors.New("internal error")
)
