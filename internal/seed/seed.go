// Package seed fills a dashboard with demo representatives and deals through
// the regular mutation operations.
package seed

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"slices"
	"time"

	"github.com/okian/salestrack/internal/app"
	"github.com/okian/salestrack/internal/domain/model"
	"github.com/okian/salestrack/pkg/logger"
)

const (
	randomFloatDivisor = 1_000_000
	defaultHistory     = 60 * 24 * time.Hour
)

// Deal size tiers, in currency units.
const (
	smallDealMin  = 50.0
	smallDealSpan = 450.0
	midDealMin    = 500.0
	midDealSpan   = 4_500.0
	largeDealMin  = 5_000.0
	largeDealSpan = 20_000.0
	eliteDealMin  = 25_000.0
	eliteDealSpan = 75_000.0
)

var defaultNames = []string{
	"Alice Johnson", "Bob Smith", "Carmen Diaz", "Deepak Rao",
	"Elena Petrova", "Farid Haddad", "Grace Kim", "Hiro Tanaka",
	"Ines Moreau", "Jamal Carter", "Kasia Nowak", "Liam O'Brien",
}

// Mutator is the subset of the mutation API the seeder drives.
type Mutator interface {
	AddRepresentative(ctx context.Context, name string) (model.Representative, app.Outcome, error)
	RecordDealAt(ctx context.Context, id int64, amount float64, at time.Time) (model.Representative, app.Outcome, error)
	Now() time.Time
}

// Seeder generates demo data.
type Seeder struct {
	m      Mutator
	names   []string
	rnd     io.Reader
	history time.Duration
	logger  logger.Logger
}

// New creates a Seeder over m.
func New(m Mutator, opts ...Option) *Seeder {
	s := &Seeder{
		m:       m,
		names:   defaultNames,
		rnd:     rand.Reader,
		history: defaultHistory,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run adds cfg.Reps representatives and up to cfg.DealsPerRep deals each,
// dated across the configured history so every time window has data.
// Names already present are skipped. Persistence warnings are collected,
// not fatal.
func (s *Seeder) Run(ctx context.Context, cfg Config) (Stats, error) {
	var st Stats
	if err := cfg.validate(); err != nil {
		return st, err
	}
	s.logger.Info(ctx, "seeding demo data",
		logger.Int("reps", cfg.Reps),
		logger.Int("dealsPerRep", cfg.DealsPerRep),
	)

	for i := 0; i < cfg.Reps; i++ {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		rep, out, err := s.m.AddRepresentative(ctx, s.name(i))
		if errors.Is(err, app.ErrDuplicateName) {
			st.RepsSkipped++
			continue
		}
		if err != nil {
			return st, fmt.Errorf("add representative: %w", err)
		}
		st.RepsAdded++
		st.Warnings = append(st.Warnings, out.Warnings...)

		tier := s.intn(4)
		for _, at := range s.dates(s.intn(cfg.DealsPerRep+1)) {
			amount := s.amount(tier)
			_, out, err := s.m.RecordDealAt(ctx, rep.ID, amount, at)
			if err != nil {
				return st, fmt.Errorf("record deal: %w", err)
			}
			st.DealsRecorded++
			st.Revenue += amount
			st.Warnings = append(st.Warnings, out.Warnings...)
		}
	}

	s.logger.Info(ctx, "seeding complete",
		logger.Int("repsAdded", st.RepsAdded),
		logger.Int("repsSkipped", st.RepsSkipped),
		logger.Int("deals", st.DealsRecorded),
	)
	return st, nil
}

// name cycles the name list, numbering later rounds.
func (s *Seeder) name(i int) string {
	base := s.names[i%len(s.names)]
	if round := i / len(s.names); round > 0 {
		return fmt.Sprintf("%s %d", base, round+1)
	}
	return base
}

// dates draws n deal dates within the history, oldest first.
func (s *Seeder) dates(n int) []time.Time {
	now := s.m.Now()
	minutes := int(s.history / time.Minute)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = now.Add(-time.Duration(s.intn(minutes)) * time.Minute)
	}
	slices.SortFunc(out, func(a, b time.Time) int { return a.Compare(b) })
	return out
}

// amount draws a deal size from the tier's range, rounded to cents.
func (s *Seeder) amount(tier int) float64 {
	var lo, span float64
	switch tier {
	case 0:
		lo, span = smallDealMin, smallDealSpan
	case 1:
		lo, span = midDealMin, midDealSpan
	case 2:
		lo, span = largeDealMin, largeDealSpan
	default:
		lo, span = eliteDealMin, eliteDealSpan
	}
	return math.Round((lo+span*s.float())*100) / 100
}

// float returns a random value in [0, 1).
func (s *Seeder) float() float64 {
	return float64(s.intn(randomFloatDivisor)) / float64(randomFloatDivisor)
}

func (s *Seeder) intn(n int) int {
	if n <= 1 {
		return 0
	}
	v, err := rand.Int(s.rnd, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}
