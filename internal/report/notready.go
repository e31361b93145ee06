package report

import (
	"encoding/csv"
	"io"
	"sort"
	"time"

	"github.com/agentlens/backend/internal/derive"
	"github.com/agentlens/backend/internal/timefmt"
	"github.com/agentlens/backend/internal/types"
)

// topNotReadyAgents caps the top-agents chart.
const topNotReadyAgents = 10

// NotReadyReport is the derived payload behind the not-ready dashboard.
type NotReadyReport struct {
	Kind          types.ReportKind `json:"kind"`
	GeneratedAt   time.Time        `json:"generatedAt"`
	Summary       NotReadySummary  `json:"summary"`
	DailyTrend    []ChartPoint     `json:"dailyTrend"`
	HourlyPattern []ChartPoint     `json:"hourlyPattern,omitempty"`
	TopAgents     []ChartPoint     `json:"topAgents"`
	Table         []NotReadyRow    `json:"table"`
}

// NotReadySummary holds the headline metrics.
type NotReadySummary struct {
	TotalAgents   int    `json:"totalAgents"`
	TotalNotReady string `json:"totalNotReady"`
	AvgNotReady   string `json:"avgNotReady"`
}

// NotReadyRow is one formatted table row, sorted by not-ready descending.
type NotReadyRow struct {
	Name         string `json:"name"`
	Date         string `json:"date,omitempty"`
	NotReadyTime string `json:"notReadyTime"`
}

// BuildNotReady derives an uploaded not-ready batch into its dashboard
// payload. The hourly pattern is only present when the DATE column
// carried a time-of-day component.
func BuildNotReady(recs []types.AgentRecord) *NotReadyReport {
	batch := derive.Records(recs)
	notReady := func(r types.DerivedRecord) float64 {
		return float64(r.Seconds[types.CategoryNotReady])
	}

	rep := &NotReadyReport{
		Kind:        types.ReportNotReady,
		GeneratedAt: time.Now().UTC(),
	}

	total := 0
	agents := make(map[string]bool)
	for _, rec := range batch {
		total += rec.Seconds[types.CategoryNotReady]
		agents[rec.FullName] = true
	}
	rep.Summary = NotReadySummary{
		TotalAgents:   len(agents),
		TotalNotReady: timefmt.FormatDuration(total),
	}
	if len(agents) > 0 {
		rep.Summary.AvgNotReady = timefmt.FormatDuration(total / len(agents))
	} else {
		rep.Summary.AvgNotReady = timefmt.FormatDuration(0)
	}

	for _, g := range derive.GroupBy(batch, derive.DayKey, notReady) {
		rep.DailyTrend = append(rep.DailyTrend, ChartPoint{Label: g.Key, Value: g.Sum})
	}
	for _, g := range derive.GroupBy(batch, derive.HourKey, notReady) {
		rep.HourlyPattern = append(rep.HourlyPattern, ChartPoint{Label: g.Key, Value: g.Sum})
	}

	// Top agents rank per-agent totals, not per-row values: the same
	// agent can appear once per day in the export.
	perAgent := derive.GroupBy(batch, func(r types.DerivedRecord) string { return r.FullName }, notReady)
	sort.SliceStable(perAgent, func(i, j int) bool { return perAgent[i].Sum > perAgent[j].Sum })
	limit := topNotReadyAgents
	if limit > len(perAgent) {
		limit = len(perAgent)
	}
	for _, g := range perAgent[:limit] {
		rep.TopAgents = append(rep.TopAgents, ChartPoint{Label: g.Key, Value: g.Sum})
	}

	for _, rec := range derive.SortBy(batch, notReady, false) {
		row := NotReadyRow{
			Name:         rec.FullName,
			NotReadyTime: timefmt.FormatDuration(rec.Seconds[types.CategoryNotReady]),
		}
		if !rec.Date.IsZero() {
			row.Date = rec.Date.Format("2006-01-02")
		}
		rep.Table = append(rep.Table, row)
	}

	return rep
}

// ReportKind implements Report.
func (r *NotReadyReport) ReportKind() types.ReportKind { return types.ReportNotReady }

// WriteCSV implements Report. The not-ready export has no group column,
// so the filter is ignored.
func (r *NotReadyReport) WriteCSV(w io.Writer, _ []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"AGENT NAME", "DATE", "NOT READY TIME"}); err != nil {
		return err
	}
	for _, row := range r.Table {
		if err := cw.Write([]string{row.Name, row.Date, row.NotReadyTime}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
