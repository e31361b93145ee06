// Package derive computes the per-agent occupancy and utilization metrics
// and the batch-level aggregates behind every dashboard view. All functions
// are pure: one uploaded batch in, one derived batch out, no shared state.
package derive

import (
	"sort"
	"strings"

	"github.com/agentlens/backend/internal/timefmt"
	"github.com/agentlens/backend/internal/types"
)

// Records derives the computed columns for every record in the batch.
// Input order is preserved; duplicate (agent, date) rows are treated as
// distinct shifts and never merged.
func Records(recs []types.AgentRecord) []types.DerivedRecord {
	out := make([]types.DerivedRecord, 0, len(recs))
	for _, rec := range recs {
		out = append(out, Record(rec))
	}
	return out
}

// Record derives the computed columns for a single record.
func Record(rec types.AgentRecord) types.DerivedRecord {
	seconds := make(map[types.Category]int, len(rec.Durations)+1)
	for cat, raw := range rec.Durations {
		seconds[cat] = timefmt.ParseDuration(raw)
	}

	login := seconds[types.CategoryLogin]
	notReady := seconds[types.CategoryNotReady]

	// The export's AVAILABLE column is optional; when absent, available
	// time is login less not-ready, floored at zero.
	if _, ok := seconds[types.CategoryAvailable]; !ok && len(rec.Durations) > 0 {
		avail := login - notReady
		if avail < 0 {
			avail = 0
		}
		seconds[types.CategoryAvailable] = avail
	}

	active := seconds[types.CategoryOnCall] + seconds[types.CategoryACW]
	total := notReady + seconds[types.CategoryWait] + seconds[types.CategoryOnCall] + seconds[types.CategoryACW]

	return types.DerivedRecord{
		AgentRecord:   rec,
		FullName:      fullName(rec),
		Seconds:       seconds,
		ActiveSeconds: active,
		TotalSeconds:  total,
		Occupancy:     Ratio(active, login),
		Utilization:   Ratio(active, login-notReady),
	}
}

// Ratio returns numerator/denominator as a percentage clipped to [0,100].
// A zero or negative denominator yields 0: the record carries no usable
// rate, which is not an error condition.
func Ratio(numerator, denominator int) float64 {
	if denominator <= 0 {
		return 0
	}
	pct := float64(numerator) / float64(denominator) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

func fullName(rec types.AgentRecord) string {
	if rec.Name != "" {
		return rec.Name
	}
	return strings.TrimSpace(rec.FirstName + " " + rec.LastName)
}

// SumByCategory totals the derived seconds per category across the batch.
func SumByCategory(batch []types.DerivedRecord, cats ...types.Category) map[types.Category]int {
	sums := make(map[types.Category]int, len(cats))
	for _, cat := range cats {
		sums[cat] = 0
	}
	for _, rec := range batch {
		for _, cat := range cats {
			sums[cat] += rec.Seconds[cat]
		}
	}
	return sums
}

// SumCounts totals an event-count field across the batch.
func SumCounts(batch []types.DerivedRecord, field types.CountField) int {
	total := 0
	for _, rec := range batch {
		total += rec.Counts[field]
	}
	return total
}

// TopN returns the n highest-valued records, descending. Ties keep the
// original record order. The input slice is not modified.
func TopN(batch []types.DerivedRecord, n int, value func(types.DerivedRecord) float64) []types.DerivedRecord {
	sorted := SortBy(batch, value, false)
	if n > len(sorted) {
		n = len(sorted)
	}
	if n < 0 {
		n = 0
	}
	return sorted[:n]
}

// SortBy returns a copy of the batch ordered by the given value. The sort
// is stable, so equal values keep their original relative order.
func SortBy(batch []types.DerivedRecord, value func(types.DerivedRecord) float64, ascending bool) []types.DerivedRecord {
	sorted := make([]types.DerivedRecord, len(batch))
	copy(sorted, batch)
	sort.SliceStable(sorted, func(i, j int) bool {
		if ascending {
			return value(sorted[i]) < value(sorted[j])
		}
		return value(sorted[i]) > value(sorted[j])
	})
	return sorted
}

// Group is one bucket of a GroupBy reduction.
type Group struct {
	Key   string  `json:"key"`
	Count int     `json:"count"`
	Sum   float64 `json:"sum"`
	Mean  float64 `json:"mean"`
}

// GroupBy buckets the batch by key and reduces each bucket to its sum and
// mean of the given value. Records whose key is empty are excluded.
// Groups come back sorted by key.
func GroupBy(batch []types.DerivedRecord, key func(types.DerivedRecord) string, value func(types.DerivedRecord) float64) []Group {
	buckets := make(map[string]*Group)
	for _, rec := range batch {
		k := key(rec)
		if k == "" {
			continue
		}
		g, ok := buckets[k]
		if !ok {
			g = &Group{Key: k}
			buckets[k] = g
		}
		g.Count++
		g.Sum += value(rec)
	}

	groups := make([]Group, 0, len(buckets))
	for _, g := range buckets {
		if g.Count > 0 {
			g.Mean = g.Sum / float64(g.Count)
		}
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups
}

// DayKey buckets a record by calendar day (YYYY-MM-DD). Records without a
// parseable reporting date return "" and drop out of the grouping.
func DayKey(rec types.DerivedRecord) string {
	if rec.Date.IsZero() {
		return ""
	}
	return rec.Date.Format("2006-01-02")
}

// HourKey buckets a record by hour of day ("HH:00"). Only meaningful when
// the reporting date carried a time-of-day component.
func HourKey(rec types.DerivedRecord) string {
	if rec.Date.IsZero() || !rec.HasTime {
		return ""
	}
	return rec.Date.Format("15:00")
}

// GroupKey buckets a record by its agent group.
func GroupKey(rec types.DerivedRecord) string {
	return rec.Group
}
