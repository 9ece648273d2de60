package booking

import "errors"

var (
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("booking not found")
	ErrPlaceNotFound = errors.New("place not found")
	ErrForbidden     = errors.New("forbidden")
	ErrOverbooking   = errors.New("overbooking constraint violation")
)

// NotAvailableError carries the availability checker's reason so the
// caller can surface it verbatim.
type NotAvailableError struct {
	Reason string
}

func (e *NotAvailableError) Error() string { return e.Reason }

// TransitionError reports a refused status transition with the exact
// message to show the caller.
type TransitionError struct {
	Message string
}

func (e *TransitionError) Error() string { return e.Message }
