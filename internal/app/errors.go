package app

import "errors"

var (
	// ErrEmptyName is returned when a representative name is blank after trimming.
	ErrEmptyName = errors.New("representative name is empty")
	// ErrDuplicateName is returned when a name matches an existing one case-insensitively.
	ErrDuplicateName = errors.New("representative already exists")
	// ErrRepNotFound is returned when no representative has the given id.
	ErrRepNotFound = errors.New("representative not found")
)
