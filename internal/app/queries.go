package app

import (
	"context"
	"time"

	"github.com/okian/salestrack/internal/domain/model"
	"github.com/okian/salestrack/internal/domain/stats"
	"github.com/okian/salestrack/internal/domain/window"
)

// Dashboard is everything a renderer needs for one frame.
type Dashboard struct {
	Filter       window.Filter   `json:"filter"`
	Reps         []stats.RepView `json:"reps"`
	Summary      stats.Summary   `json:"summary"`
	TopPerformer *stats.RepView  `json:"topPerformer"`
	HighestDeal  float64         `json:"highestDeal"`
	DealsToday   int             `json:"dealsToday"`
	GeneratedAt  time.Time       `json:"generatedAt"`
}

// Snapshot is a copy of the model taken at one instant, used by exports.
type Snapshot struct {
	Reps []model.Representative
	At   time.Time
}

// Representatives returns a deep copy of the list in insertion order.
func (s *Service) Representatives(_ context.Context) []model.Representative {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.CloneAll(s.reps)
}

// Representative returns a copy of the representative with id.
func (s *Service) Representative(_ context.Context, id int64) (model.Representative, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return model.Representative{}, ErrRepNotFound
	}
	return s.reps[idx].Clone(), nil
}

// Filter returns the active time filter.
func (s *Service) Filter(_ context.Context) window.Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// Location returns the zone used for calendar boundaries.
func (s *Service) Location() *time.Location { return s.loc }

// Now returns the service clock's current time.
func (s *Service) Now() time.Time { return s.clock.Now() }

// Dashboard computes the view under the active filter.
func (s *Service) Dashboard(ctx context.Context) Dashboard {
	return s.DashboardFor(ctx, s.Filter(ctx))
}

// DashboardFor computes the view under f without changing the active filter.
func (s *Service) DashboardFor(_ context.Context, f window.Filter) Dashboard {
	now := s.clock.Now()
	p := stats.Params{Filter: f, Now: now, Location: s.loc}

	s.mu.RLock()
	defer s.mu.RUnlock()

	d := Dashboard{
		Filter:      f,
		Reps:        stats.Views(s.reps, p),
		Summary:     stats.Global(s.reps, p),
		HighestDeal: stats.HighestSingleDeal(s.reps, p),
		DealsToday:  stats.DealsToday(s.reps, now, s.loc),
		GeneratedAt: now,
	}
	if top, ok := stats.TopPerformer(s.reps, p); ok {
		rs := stats.For(top, p)
		d.TopPerformer = &stats.RepView{ID: top.ID, Name: top.Name, Deals: rs.Count, Revenue: rs.Revenue}
	}
	return d
}

// Snapshot returns a deep copy of the list and the time it was taken.
func (s *Service) Snapshot(_ context.Context) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Reps: model.CloneAll(s.reps), At: s.clock.Now()}
}
