package block

import "errors"

var (
	ErrValidation      = errors.New("validation error")
	ErrInvalidRange    = errors.New("end time must be after start time")
	ErrMissingPattern  = errors.New("recurring pattern must be provided for recurring blocks")
	ErrNotFound        = errors.New("blocked period not found")
	ErrPlaceNotFound   = errors.New("place not found")
	ErrForbidden       = errors.New("forbidden")
	ErrBookingConflict = errors.New("time period overlaps with existing bookings")
	// ErrBookingManaged marks blocks owned by a booking: they can only
	// change through the booking lifecycle, never directly.
	ErrBookingManaged = errors.New("blocked period is managed by a booking")
)
