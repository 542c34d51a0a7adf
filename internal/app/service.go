// Package app owns the representative list and exposes the operations that
// change it. Every mutation validates its input, updates the model, persists
// the full list and notifies listeners.
package app

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/okian/salestrack/internal/adapters/kv"
	"github.com/okian/salestrack/internal/adapters/repository"
	"github.com/okian/salestrack/internal/domain/dedupe"
	"github.com/okian/salestrack/internal/domain/model"
	"github.com/okian/salestrack/internal/domain/window"
	"github.com/okian/salestrack/pkg/logger"
	"github.com/okian/salestrack/pkg/metrics"
)

const defaultDedupeSize = 10_000

// Persister loads and saves the whole representative list.
type Persister interface {
	Load(ctx context.Context) repository.LoadResult
	Save(ctx context.Context, reps []model.Representative) error
}

// ChangeKind names the mutation that changed the model.
type ChangeKind int

const (
	RepAdded ChangeKind = iota + 1
	DealRecorded
	RepRemoved
	FilterChanged
	Loaded
)

func (k ChangeKind) String() string {
	switch k {
	case RepAdded:
		return "rep_added"
	case DealRecorded:
		return "deal_recorded"
	case RepRemoved:
		return "rep_removed"
	case FilterChanged:
		return "filter_changed"
	case Loaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// Change is delivered to listeners after a mutation completes.
type Change struct {
	Kind  ChangeKind
	RepID int64
}

// Listener is called after every change, outside the service lock.
type Listener func(ctx context.Context, c Change)

// Outcome reports what a mutation did. Warnings describe problems that did
// not stop it, such as a failed save.
type Outcome struct {
	Changed  bool     `json:"changed"`
	Warnings []string `json:"warnings,omitempty"`
}

func (o *Outcome) warn(format string, args ...any) {
	o.Warnings = append(o.Warnings, fmt.Sprintf(format, args...))
}

// Service holds the in-memory model. It is safe for concurrent use.
type Service struct {
	mu sync.RWMutex

	reps   []model.Representative
	filter window.Filter
	lastID int64

	store      Persister
	clock      window.Clock
	loc        *time.Location
	deduper    dedupe.Deduper
	dedupeSize int

	lmu       sync.RWMutex
	listeners []Listener

	logger logger.Logger
}

// New constructs a Service. Without WithStore it keeps data in memory only.
func New(opts ...Option) *Service {
	s := &Service{
		reps:       []model.Representative{},
		filter:     window.AllTime(),
		clock:      window.SystemClock{},
		loc:        time.Local,
		dedupeSize: defaultDedupeSize,
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.New(kv.NewMemory(), repository.WithLogger(s.logger))
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	return s
}

// Start loads the stored list, replacing the in-memory one. Unreadable data
// is reported as a warning and an empty list is used.
func (s *Service) Start(ctx context.Context) Outcome {
	res := s.store.Load(ctx)

	s.mu.Lock()
	s.reps = res.Reps
	if s.reps == nil {
		s.reps = []model.Representative{}
	}
	s.lastID = 0
	for _, r := range s.reps {
		if r.ID > s.lastID {
			s.lastID = r.ID
		}
	}
	count := len(s.reps)
	s.mu.Unlock()

	var out Outcome
	out.Changed = true
	if res.Discarded {
		out.warn("stored data could not be read and was discarded: %v", res.Err)
	}
	if res.Migrated > 0 {
		s.logger.Info(ctx, "upgraded legacy records", logger.Int("migrated", res.Migrated))
	}
	metrics.UpdateRepresentatives(count)
	s.logger.Info(ctx, "sales dashboard loaded",
		logger.Int("reps", count),
		logger.Bool("discarded", res.Discarded),
	)
	s.notify(ctx, Change{Kind: Loaded})
	return out
}

// OnChange registers fn to be called after every change.
func (s *Service) OnChange(fn Listener) {
	if fn == nil {
		return
	}
	s.lmu.Lock()
	s.listeners = append(s.listeners, fn)
	s.lmu.Unlock()
}

func (s *Service) notify(ctx context.Context, c Change) {
	s.lmu.RLock()
	ls := append([]Listener(nil), s.listeners...)
	s.lmu.RUnlock()
	for _, fn := range ls {
		fn(ctx, c)
	}
}

// AddRepresentative appends a representative named name (trimmed) with no deals.
func (s *Service) AddRepresentative(ctx context.Context, name string) (model.Representative, Outcome, error) {
	name = model.NormalizeName(name)
	if name == "" {
		metrics.RecordValidationRejected("empty_name")
		return model.Representative{}, Outcome{}, ErrEmptyName
	}

	s.mu.Lock()
	key := model.NameKey(name)
	for _, r := range s.reps {
		if model.NameKey(r.Name) == key {
			s.mu.Unlock()
			metrics.RecordValidationRejected("duplicate_name")
			return model.Representative{}, Outcome{}, fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
	}
	rep := model.NewRepresentative(s.nextID(), name)
	s.reps = append(s.reps, rep)
	out := s.persist(ctx)
	count := len(s.reps)
	s.mu.Unlock()

	metrics.RecordRepAdded()
	metrics.UpdateRepresentatives(count)
	s.logger.Info(ctx, "representative added",
		logger.Int64("id", rep.ID),
		logger.String("name", rep.Name),
	)
	s.notify(ctx, Change{Kind: RepAdded, RepID: rep.ID})
	return rep.Clone(), out, nil
}

// RecordDeal appends a deal of amount, stamped with the clock's now, to the
// representative with id. Negative or non-finite amounts are recorded as 0.
func (s *Service) RecordDeal(ctx context.Context, id int64, amount float64) (model.Representative, Outcome, error) {
	return s.RecordDealAt(ctx, id, amount, time.Time{})
}

// RecordDealAt is RecordDeal with an explicit deal date. A zero or future at
// is replaced by the clock's now. Dates are kept to millisecond precision,
// as stored.
func (s *Service) RecordDealAt(ctx context.Context, id int64, amount float64, at time.Time) (model.Representative, Outcome, error) {
	amount = sanitizeAmount(amount)
	now := s.clock.Now()
	if at.IsZero() || at.After(now) {
		at = now
	}
	at = at.Truncate(time.Millisecond)

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return model.Representative{}, Outcome{}, fmt.Errorf("%w: %d", ErrRepNotFound, id)
	}
	s.reps[idx].AppendDeal(model.DealRecord{Date: at, Amount: amount})
	rep := s.reps[idx].Clone()
	out := s.persist(ctx)
	s.mu.Unlock()

	metrics.RecordDeal(amount)
	s.logger.Debug(ctx, "deal recorded",
		logger.Int64("id", id),
		logger.Float64("amount", amount),
		logger.Int("deals", rep.Deals),
	)
	s.notify(ctx, Change{Kind: DealRecorded, RepID: id})
	return rep, out, nil
}

// RemoveRepresentative deletes the representative with id and its history.
// An unknown id leaves the model unchanged and is not an error.
func (s *Service) RemoveRepresentative(ctx context.Context, id int64) (Outcome, error) {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return Outcome{}, nil
	}
	s.reps = append(s.reps[:idx:idx], s.reps[idx+1:]...)
	out := s.persist(ctx)
	count := len(s.reps)
	s.mu.Unlock()

	metrics.RecordRepRemoved()
	metrics.UpdateRepresentatives(count)
	s.logger.Info(ctx, "representative removed", logger.Int64("id", id))
	s.notify(ctx, Change{Kind: RepRemoved, RepID: id})
	return out, nil
}

// SetTimeFilter makes f the active window. An incomplete custom range is
// rejected and the previous filter stays active.
func (s *Service) SetTimeFilter(ctx context.Context, f window.Filter) error {
	if err := f.Validate(); err != nil {
		metrics.RecordValidationRejected("incomplete_range")
		return err
	}
	s.mu.Lock()
	s.filter = f
	s.mu.Unlock()

	metrics.RecordFilterChange(f.Selector.String())
	s.logger.Debug(ctx, "time filter changed", logger.String("filter", f.String()))
	s.notify(ctx, Change{Kind: FilterChanged})
	return nil
}

// SeenAndRecord reports whether key was already used, recording it if not.
func (s *Service) SeenAndRecord(ctx context.Context, key string) bool {
	seen := s.deduper.SeenAndRecord(ctx, key)
	if seen {
		metrics.RecordDuplicateRequest()
	}
	return seen
}

// Unrecord forgets key so a failed request can be retried.
func (s *Service) Unrecord(ctx context.Context, key string) {
	s.deduper.Unrecord(ctx, key)
}

// persist saves the list. Callers hold s.mu. A failure becomes a warning and
// the in-memory change stands.
func (s *Service) persist(ctx context.Context) Outcome {
	out := Outcome{Changed: true}
	if err := s.store.Save(ctx, s.reps); err != nil {
		out.warn("changes could not be saved: %v", err)
	}
	return out
}

func (s *Service) indexOf(id int64) int {
	for i, r := range s.reps {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// nextID derives an id from the clock, bumping past the last one issued.
func (s *Service) nextID() int64 {
	id := s.clock.Now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// CoerceAmount converts user text to a deal amount. Text that is not a
// finite non-negative number becomes 0.
func CoerceAmount(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		metrics.RecordAmountCoerced()
		return 0
	}
	return sanitizeAmount(v)
}

func sanitizeAmount(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		metrics.RecordAmountCoerced()
		return 0
	}
	if v == 0 {
		return 0
	}
	return v
}
