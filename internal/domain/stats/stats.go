// Package stats computes per-representative and dashboard-wide statistics
// from deal histories filtered by a time window.
package stats

import (
	"sort"
	"time"

	"github.com/okian/salestrack/internal/domain/model"
	"github.com/okian/salestrack/internal/domain/window"
)

// RepStats is a representative's filtered deal count and revenue.
type RepStats struct {
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

// Summary aggregates deal figures across representatives.
type Summary struct {
	TotalDeals   int     `json:"totalDeals"`
	TotalRevenue float64 `json:"totalRevenue"`
	AvgDealSize  float64 `json:"avgDealSize"`
}

// RepView is one row of the rendered leaderboard.
type RepView struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Deals   int     `json:"deals"`
	Revenue float64 `json:"revenue"`
}

// Params bundles the window inputs shared by every filtered computation.
type Params struct {
	Filter   window.Filter
	Now      time.Time
	Location *time.Location
}

func (p Params) deals(rep model.Representative) []model.DealRecord {
	return window.FilterDeals(rep.DealHistory, p.Filter, p.Now, p.Location)
}

// StatsFor counts and sums an already-filtered deal sequence.
func StatsFor(deals []model.DealRecord) RepStats {
	s := RepStats{Count: len(deals)}
	for _, d := range deals {
		s.Revenue += d.Amount
	}
	return s
}

// For returns rep's stats inside the window. With no bounds in effect the
// cumulative counters are used as-is, so migrated records keep their count.
func For(rep model.Representative, p Params) RepStats {
	if _, _, bounded := p.Filter.Bounds(p.Now, p.Location); !bounded {
		return RepStats{Count: rep.Deals, Revenue: rep.Revenue}
	}
	return StatsFor(p.deals(rep))
}

// Global sums the filtered stats of every representative.
func Global(reps []model.Representative, p Params) Summary {
	var s Summary
	for _, rep := range reps {
		rs := For(rep, p)
		s.TotalDeals += rs.Count
		s.TotalRevenue += rs.Revenue
	}
	s.AvgDealSize = average(s.TotalRevenue, s.TotalDeals)
	return s
}

// Lifetime sums the cumulative counters, ignoring any window. Used by exports.
func Lifetime(reps []model.Representative) Summary {
	var s Summary
	for _, rep := range reps {
		s.TotalDeals += rep.Deals
		s.TotalRevenue += rep.Revenue
	}
	s.AvgDealSize = average(s.TotalRevenue, s.TotalDeals)
	return s
}

// TopPerformer returns the representative with the highest filtered revenue.
// Ties go to the earliest in list order. ok is false for an empty list.
func TopPerformer(reps []model.Representative, p Params) (top model.Representative, ok bool) {
	best := 0.0
	for i, rep := range reps {
		rev := For(rep, p).Revenue
		if i == 0 || rev > best {
			top, best, ok = rep, rev, true
		}
	}
	return top, ok
}

// HighestSingleDeal returns the largest filtered deal amount, or zero.
func HighestSingleDeal(reps []model.Representative, p Params) float64 {
	highest := 0.0
	for _, rep := range reps {
		for _, d := range p.deals(rep) {
			if d.Amount > highest {
				highest = d.Amount
			}
		}
	}
	return highest
}

// DealsToday counts deals on now's local calendar day regardless of any
// active filter.
func DealsToday(reps []model.Representative, now time.Time, loc *time.Location) int {
	n := 0
	for _, rep := range reps {
		for _, d := range rep.DealHistory {
			if window.SameDay(d.Date, now, loc) {
				n++
			}
		}
	}
	return n
}

// Views returns every representative with its filtered figures, ordered by
// filtered revenue descending. Equal revenues keep list order.
func Views(reps []model.Representative, p Params) []RepView {
	views := make([]RepView, len(reps))
	for i, rep := range reps {
		rs := For(rep, p)
		views[i] = RepView{ID: rep.ID, Name: rep.Name, Deals: rs.Count, Revenue: rs.Revenue}
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Revenue > views[j].Revenue
	})
	return views
}

func average(total float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return total / float64(count)
}
