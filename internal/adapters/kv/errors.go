package kv

import "errors"

// Sentinel kinds for key-value errors.
var (
	ErrUnknownDriver = errors.New("unknown storage driver")
	ErrClosed        = errors.New("store is closed")
	ErrEmptyKey      = errors.New("key must not be empty")
)
