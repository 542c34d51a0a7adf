package window

import "errors"

// Sentinel kinds for filter errors.
var (
	ErrIncompleteRange = errors.New("custom range requires both a start and an end date")
	ErrUnknownSelector = errors.New("unknown filter selector")
	ErrInvalidDate     = errors.New("invalid date; must be YYYY-MM-DD")
)
