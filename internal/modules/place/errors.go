package place

import "errors"

var (
	ErrValidation = errors.New("invalid place data")
	ErrNotFound   = errors.New("place not found")
	ErrForbidden  = errors.New("not the owner of this place")
)
