package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest           = errors.New("bad request")
	ErrConfirmationRequired = errors.New("removal must be confirmed with confirm=true")
	ErrInvalidID            = errors.New("invalid representative id")
)
