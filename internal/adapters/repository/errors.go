package repository

import "errors"

// Sentinel kinds for persistence errors.
var (
	ErrLoad = errors.New("load representatives failed")
	ErrSave = errors.New("save representatives failed")
)
