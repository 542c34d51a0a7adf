// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// TimestampLayout is how deal dates are stored and exported: UTC with
// millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// DealRecord is one closed deal. Records are never modified after creation.
type DealRecord struct {
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
}

// MarshalJSON writes Date in TimestampLayout. Sub-millisecond precision is
// truncated.
func (d DealRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date   string  `json:"date"`
		Amount float64 `json:"amount"`
	}{
		Date:   d.Date.UTC().Format(TimestampLayout),
		Amount: d.Amount,
	})
}

// Representative is a tracked salesperson with cumulative metrics.
//
// Deals and Revenue are maintained incrementally by AppendDeal and always
// match DealHistory for records created by this package. Records migrated
// from the legacy shape may carry a Deals count with no history.
type Representative struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Deals       int          `json:"deals"`
	Revenue     float64      `json:"revenue"`
	DealHistory []DealRecord `json:"dealHistory"`
}

// NewRepresentative returns a representative with no deals.
func NewRepresentative(id int64, name string) Representative {
	return Representative{
		ID:          id,
		Name:        name,
		DealHistory: []DealRecord{},
	}
}

// AppendDeal records d and updates the cumulative counters.
func (r *Representative) AppendDeal(d DealRecord) {
	r.Deals++
	r.Revenue += d.Amount
	r.DealHistory = append(r.DealHistory, d)
}

// LastDeal returns the most recent deal, if any.
func (r Representative) LastDeal() (DealRecord, bool) {
	if len(r.DealHistory) == 0 {
		return DealRecord{}, false
	}
	return r.DealHistory[len(r.DealHistory)-1], true
}

// Consistent reports whether the counters agree with the history.
func (r Representative) Consistent() bool {
	if r.Deals != len(r.DealHistory) {
		return false
	}
	var sum float64
	for _, d := range r.DealHistory {
		sum += d.Amount
	}
	return sum == r.Revenue
}

// Clone returns a deep copy; the history slice is not shared.
func (r Representative) Clone() Representative {
	out := r
	out.DealHistory = make([]DealRecord, len(r.DealHistory))
	copy(out.DealHistory, r.DealHistory)
	return out
}

// Equal compares two representatives field by field, using time.Equal for dates.
func (r Representative) Equal(o Representative) bool {
	if r.ID != o.ID || r.Name != o.Name || r.Deals != o.Deals || r.Revenue != o.Revenue {
		return false
	}
	if len(r.DealHistory) != len(o.DealHistory) {
		return false
	}
	for i := range r.DealHistory {
		a, b := r.DealHistory[i], o.DealHistory[i]
		if a.Amount != b.Amount || !a.Date.Equal(b.Date) {
			return false
		}
	}
	return true
}

// CloneAll deep-copies a list of representatives.
func CloneAll(reps []Representative) []Representative {
	out := make([]Representative, len(reps))
	for i, r := range reps {
		out[i] = r.Clone()
	}
	return out
}

// NormalizeName trims surrounding whitespace from a display name.
func NormalizeName(raw string) string {
	return strings.TrimSpace(raw)
}

// NameKey returns the case-folded form used for uniqueness checks.
func NameKey(name string) string {
	// Casers are stateful; one per call keeps this safe for concurrent use.
	return cases.Fold().String(NormalizeName(name))
}
