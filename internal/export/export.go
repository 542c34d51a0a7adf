// Package export writes the representative list as CSV or JSON reports.
// Reports use lifetime totals, never the dashboard's active time filter.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/okian/salestrack/internal/domain/model"
	"github.com/okian/salestrack/internal/domain/stats"
	"github.com/okian/salestrack/pkg/metrics"
)

// Format is an export file type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

const dateLayout = "2006-01-02"

var (
	summaryHeader = []string{"Sales Rep", "Total Deals", "Total Revenue", "Average Deal Size", "Last Deal Date"}
	historyTitle  = []string{"Detailed Deal History"}
	historyHeader = []string{"Sales Rep", "Date", "Amount"}
)

// ParseFormat maps "csv" or "json" (any case) to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "text/csv; charset=utf-8"
}

// FileName returns the report file name for a report taken at now.
func FileName(f Format, now time.Time) string {
	return "sales-report-" + now.Format(dateLayout) + "." + string(f)
}

// CSV writes a per-representative summary followed by every deal in
// recorded order. An empty list is rejected and nothing is written.
func CSV(w io.Writer, reps []model.Representative, opts ...Option) error {
	if len(reps) == 0 {
		return ErrNothingToExport
	}
	o := apply(opts)

	cw := csv.NewWriter(w)
	rows := make([][]string, 0, len(reps)+4)
	rows = append(rows, summaryHeader)
	for _, r := range reps {
		last := ""
		if d, ok := r.LastDeal(); ok {
			last = d.Date.In(o.loc).Format(dateLayout)
		}
		avg := 0.0
		if r.Deals > 0 {
			avg = r.Revenue / float64(r.Deals)
		}
		rows = append(rows, []string{r.Name, strconv.Itoa(r.Deals), money(r.Revenue), money(avg), last})
	}
	rows = append(rows, []string{}, historyTitle, historyHeader)
	for _, r := range reps {
		for _, d := range r.DealHistory {
			rows = append(rows, []string{r.Name, d.Date.In(o.loc).Format(model.TimestampLayout), money(d.Amount)})
		}
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	metrics.RecordExport(string(FormatCSV))
	return nil
}

// Report is the JSON export document.
type Report struct {
	ExportDate   string                 `json:"exportDate"`
	TotalReps    int                    `json:"totalReps"`
	TotalDeals   int                    `json:"totalDeals"`
	TotalRevenue float64                `json:"totalRevenue"`
	SalesReps    []model.Representative `json:"salesReps"`
}

// NewReport builds the JSON document for reps at now.
func NewReport(reps []model.Representative, now time.Time) Report {
	life := stats.Lifetime(reps)
	out := make([]model.Representative, len(reps))
	for i, r := range reps {
		if r.DealHistory == nil {
			r.DealHistory = []model.DealRecord{}
		}
		out[i] = r
	}
	return Report{
		ExportDate:   now.UTC().Format(model.TimestampLayout),
		TotalReps:    len(reps),
		TotalDeals:   life.TotalDeals,
		TotalRevenue: life.TotalRevenue,
		SalesReps:    out,
	}
}

// JSON writes the full list with lifetime totals.
func JSON(w io.Writer, reps []model.Representative, now time.Time, opts ...Option) error {
	o := apply(opts)
	enc := json.NewEncoder(w)
	enc.SetIndent("", o.indent)
	if err := enc.Encode(NewReport(reps, now)); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	metrics.RecordExport(string(FormatJSON))
	return nil
}

// Write dispatches to CSV or JSON by f.
func Write(w io.Writer, f Format, reps []model.Representative, now time.Time, opts ...Option) error {
	switch f {
	case FormatCSV:
		return CSV(w, reps, opts...)
	case FormatJSON:
		return JSON(w, reps, now, opts...)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
