// Package repository persists the representative list as a single blob in a
// key-value store and upgrades legacy records on load.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/okian/salestrack/internal/adapters/kv"
	"github.com/okian/salestrack/internal/domain/model"
	"github.com/okian/salestrack/pkg/logger"
	"github.com/okian/salestrack/pkg/metrics"
)

// Repository loads and saves the full representative list.
type Repository struct {
	store  kv.Store
	key    string
	logger logger.Logger
}

// LoadResult describes what Load found.
type LoadResult struct {
	Reps []model.Representative
	// Migrated counts legacy entries upgraded to the current shape.
	Migrated int
	// Discarded is set when stored data could not be read or parsed and an
	// empty list was used instead. Err holds the cause.
	Discarded bool
	Err       error
}

// storedRep mirrors the persisted shape with optional fields so legacy
// entries can be told apart from current ones.
type storedRep struct {
	ID          int64               `json:"id"`
	Name        string              `json:"name"`
	Deals       int                 `json:"deals"`
	Revenue     *float64            `json:"revenue"`
	DealHistory *[]model.DealRecord `json:"dealHistory"`
}

// New returns a Repository over store.
func New(store kv.Store, opts ...Option) *Repository {
	r := &Repository{
		store:  store,
		key:    DefaultKey,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Key returns the storage key in use.
func (r *Repository) Key() string { return r.key }

// Load reads the stored list. It never fails: missing data yields an empty
// list, and unreadable or corrupt data is logged and yields an empty list
// with Discarded set.
func (r *Repository) Load(ctx context.Context) LoadResult {
	start := time.Now()
	defer func() {
		metrics.RecordPersistenceDuration("load", float64(time.Since(start).Microseconds())/1000)
	}()

	blob, found, err := r.store.Get(ctx, r.key)
	if err != nil {
		return r.discard(ctx, fmt.Errorf("%w: %w", ErrLoad, err))
	}
	if !found || len(blob) == 0 {
		return LoadResult{Reps: []model.Representative{}}
	}

	var stored []storedRep
	if err := json.Unmarshal(blob, &stored); err != nil {
		return r.discard(ctx, fmt.Errorf("%w: parse: %w", ErrLoad, err))
	}

	res := LoadResult{Reps: make([]model.Representative, 0, len(stored))}
	for _, s := range stored {
		rep, migrated := s.upgrade()
		if migrated {
			res.Migrated++
		}
		res.Reps = append(res.Reps, rep)
	}
	if res.Migrated > 0 {
		metrics.RecordMigrated(res.Migrated)
		r.logger.Info(ctx, "migrated legacy representative records",
			logger.Int("migrated", res.Migrated),
			logger.String("key", r.key),
		)
	}
	return res
}

// Save replaces the stored list with reps.
func (r *Repository) Save(ctx context.Context, reps []model.Representative) error {
	start := time.Now()
	defer func() {
		metrics.RecordPersistenceDuration("save", float64(time.Since(start).Microseconds())/1000)
	}()

	out := make([]model.Representative, len(reps))
	for i, rep := range reps {
		if rep.DealHistory == nil {
			rep.DealHistory = []model.DealRecord{}
		}
		out[i] = rep
	}
	blob, err := json.Marshal(out)
	if err != nil {
		metrics.RecordPersistenceError("save")
		return fmt.Errorf("%w: encode: %w", ErrSave, err)
	}
	if err := r.store.Set(ctx, r.key, blob); err != nil {
		metrics.RecordPersistenceError("save")
		r.logger.Warn(ctx, "failed to persist representatives",
			logger.String("key", r.key),
			logger.Int("reps", len(reps)),
			logger.Error(err),
		)
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	return nil
}

func (r *Repository) discard(ctx context.Context, err error) LoadResult {
	metrics.RecordPersistenceError("load")
	r.logger.Error(ctx, "stored representatives unreadable; starting empty",
		logger.String("key", r.key),
		logger.Error(err),
	)
	return LoadResult{Reps: []model.Representative{}, Discarded: true, Err: err}
}

// upgrade converts s to the current shape. Entries without a deal history
// get an empty one and a zero revenue when none was stored; the deals count
// is kept as stored.
func (s storedRep) upgrade() (model.Representative, bool) {
	rep := model.Representative{ID: s.ID, Name: s.Name, Deals: s.Deals}
	if s.Revenue != nil {
		rep.Revenue = *s.Revenue
	}
	if s.DealHistory == nil {
		rep.DealHistory = []model.DealRecord{}
		return rep, true
	}
	rep.DealHistory = *s.DealHistory
	if rep.DealHistory == nil {
		rep.DealHistory = []model.DealRecord{}
	}
	return rep, false
}
