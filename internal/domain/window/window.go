// Package window selects the deals that fall inside a dashboard time filter.
package window

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/okian/salestrack/internal/domain/model"
)

// Selector names a time window.
type Selector int

// Known selectors. Values outside this set behave as All.
const (
	All Selector = iota
	Today
	Week
	Month
	Custom
)

const (
	dateLayout = "2006-01-02"
	weekSpan   = 7 * 24 * time.Hour
)

func (s Selector) String() string {
	switch s {
	case All:
		return "all"
	case Today:
		return "today"
	case Week:
		return "week"
	case Month:
		return "month"
	case Custom:
		return "custom"
	default:
		return fmt.Sprintf("selector(%d)", int(s))
	}
}

// ParseSelector maps an input string to a Selector. Unknown names are an
// error rather than a silent fallback to All.
func ParseSelector(s string) (Selector, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return All, nil
	case "today":
		return Today, nil
	case "week":
		return Week, nil
	case "month":
		return Month, nil
	case "custom":
		return Custom, nil
	default:
		return All, fmt.Errorf("%w: %q", ErrUnknownSelector, s)
	}
}

// Date is a calendar date without a time of day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// IsZero reports whether d is unset.
func (d Date) IsZero() bool { return d == Date{} }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// StartIn is local midnight of d in loc.
func (d Date) StartIn(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// EndIn is the last millisecond of d in loc.
func (d Date) EndIn(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 23, 59, 59, int(999*time.Millisecond), loc)
}

// Range is an inclusive span of calendar dates.
type Range struct {
	Start Date
	End   Date
}

// Filter is the active time window: a Selector plus, for Custom, its Range.
type Filter struct {
	Selector Selector
	Range    Range
}

// AllTime is the unfiltered window.
func AllTime() Filter { return Filter{Selector: All} }

// Of returns a non-custom filter for s.
func Of(s Selector) Filter { return Filter{Selector: s} }

// Between returns a custom filter from start through end.
func Between(start, end Date) Filter {
	return Filter{Selector: Custom, Range: Range{Start: start, End: end}}
}

// ParseFilter builds a Filter from adapter input. For custom, both dates are
// required; other selectors ignore them.
func ParseFilter(selector, start, end string) (Filter, error) {
	sel, err := ParseSelector(selector)
	if err != nil {
		return Filter{}, err
	}
	if sel != Custom {
		return Of(sel), nil
	}
	if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return Filter{}, ErrIncompleteRange
	}
	from, err := ParseDate(start)
	if err != nil {
		return Filter{}, err
	}
	to, err := ParseDate(end)
	if err != nil {
		return Filter{}, err
	}
	return Between(from, to), nil
}

// Validate rejects a custom filter missing either date.
func (f Filter) Validate() error {
	if f.Selector == Custom && (f.Range.Start.IsZero() || f.Range.End.IsZero()) {
		return ErrIncompleteRange
	}
	return nil
}

func (f Filter) String() string {
	if f.Selector == Custom {
		return fmt.Sprintf("custom(%s..%s)", f.Range.Start, f.Range.End)
	}
	return f.Selector.String()
}

// Bounds returns the inclusive window for f at now. bounded is false when
// every deal matches.
func (f Filter) Bounds(now time.Time, loc *time.Location) (from, to time.Time, bounded bool) {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	switch f.Selector {
	case Today:
		return startOfDay(local), now, true
	case Week:
		return now.Add(-weekSpan), now, true
	case Month:
		return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc), now, true
	case Custom:
		if f.Validate() != nil {
			return time.Time{}, time.Time{}, false
		}
		return f.Range.Start.StartIn(loc), f.Range.End.EndIn(loc), true
	default:
		return time.Time{}, time.Time{}, false
	}
}

// Contains reports whether t falls inside f at now.
func (f Filter) Contains(t, now time.Time, loc *time.Location) bool {
	from, to, bounded := f.Bounds(now, loc)
	return !bounded || within(t, from, to)
}

// FilterDeals returns the subsequence of history inside f, preserving order.
// For All the history is returned unchanged.
func FilterDeals(history []model.DealRecord, f Filter, now time.Time, loc *time.Location) []model.DealRecord {
	from, to, bounded := f.Bounds(now, loc)
	if !bounded {
		return history
	}
	out := make([]model.DealRecord, 0, len(history))
	for _, d := range history {
		if within(d.Date, from, to) {
			out = append(out, d)
		}
	}
	return out
}

// SameDay reports whether t falls on now's calendar day in loc.
func SameDay(t, now time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.Local
	}
	start := startOfDay(now.In(loc))
	return !t.Before(start) && t.Before(start.AddDate(0, 0, 1))
}

func within(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

type filterJSON struct {
	Selector string `json:"selector"`
	Start    string `json:"start,omitempty"`
	End      string `json:"end,omitempty"`
}

// MarshalJSON encodes the filter as {selector, start, end}.
func (f Filter) MarshalJSON() ([]byte, error) {
	v := filterJSON{Selector: f.Selector.String()}
	if f.Selector == Custom {
		v.Start = f.Range.Start.String()
		v.End = f.Range.End.String()
	}
	return json.Marshal(v)
}

// UnmarshalJSON accepts the MarshalJSON shape and validates it like ParseFilter.
func (f *Filter) UnmarshalJSON(b []byte) error {
	var v filterJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	parsed, err := ParseFilter(v.Selector, v.Start, v.End)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
