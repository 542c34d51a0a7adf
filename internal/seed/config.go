package seed

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/okian/salestrack/pkg/logger"
)

// ErrInvalidConfig is returned for negative counts.
var ErrInvalidConfig = errors.New("invalid seed config")

// Config holds how much demo data to generate.
type Config struct {
	Reps        int // Number of representatives to add
	DealsPerRep int // Upper bound of deals per representative
}

// DefaultConfig is used by the seed command without flags.
func DefaultConfig() Config {
	return Config{Reps: 8, DealsPerRep: 12}
}

func (c Config) validate() error {
	if c.Reps < 0 || c.DealsPerRep < 0 {
		return fmt.Errorf("%w: reps=%d deals=%d", ErrInvalidConfig, c.Reps, c.DealsPerRep)
	}
	return nil
}

// Stats summarizes a seeding run.
type Stats struct {
	RepsAdded     int
	RepsSkipped   int
	DealsRecorded int
	Revenue       float64
	Warnings      []string
}

// Option configures a Seeder.
type Option func(*Seeder)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Seeder) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithNames replaces the built-in name list.
func WithNames(names []string) Option {
	return func(s *Seeder) {
		if len(names) > 0 {
			s.names = names
		}
	}
}

// WithRandom sets the randomness source. Defaults to crypto/rand.
func WithRandom(r io.Reader) Option {
	return func(s *Seeder) {
		if r != nil {
			s.rnd = r
		}
	}
}

// WithHistory sets how far back deal dates may go. Defaults to 60 days.
func WithHistory(d time.Duration) Option {
	return func(s *Seeder) {
		if d > 0 {
			s.history = d
		}
	}
}
