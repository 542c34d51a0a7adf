package repository

import "github.com/okian/salestrack/pkg/logger"

// DefaultKey is the storage key holding the serialized representative list.
const DefaultKey = "salesReps"

// Option applies a configuration option to the Repository.
type Option func(*Repository)

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(r *Repository) {
		if key != "" {
			r.key = key
		}
	}
}

// WithLogger sets the logger used to report load and save problems.
func WithLogger(l logger.Logger) Option {
	return func(r *Repository) {
		if l != nil {
			r.logger = l
		}
	}
}
