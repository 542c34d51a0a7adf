package app

import (
	"time"

	"github.com/okian/salestrack/internal/domain/window"
	"github.com/okian/salestrack/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets where the representative list is loaded from and saved to.
func WithStore(p Persister) Option {
	return func(s *Service) {
		if p != nil {
			s.store = p
		}
	}
}

// WithClock sets the source of "now" for ids, deal timestamps and windows.
func WithClock(c window.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLocation sets the zone used for calendar-day boundaries.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithDedupeSize sets how many idempotency keys are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithFilter sets the initial time filter. Invalid filters are ignored.
func WithFilter(f window.Filter) Option {
	return func(s *Service) {
		if f.Validate() == nil {
			s.filter = f
		}
	}
}
