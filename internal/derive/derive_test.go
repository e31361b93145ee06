package derive_test

import (
	"testing"
	"time"

	"github.com/agentlens/backend/internal/derive"
	"github.com/agentlens/backend/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func occupancyRecord(id string, durations map[types.Category]string) types.AgentRecord {
	return types.AgentRecord{
		AgentID:   id,
		FirstName: "Agent",
		LastName:  id,
		Durations: durations,
	}
}

func TestRecordDerivation(t *testing.T) {
	// Agent A: 2h login, 1h on call, 10m ACW, 20m not ready.
	recA := occupancyRecord("A", map[types.Category]string{
		types.CategoryLogin:    "02:00:00",
		types.CategoryNotReady: "00:20:00",
		types.CategoryWait:     "00:05:00",
		types.CategoryOnCall:   "01:00:00",
		types.CategoryACW:      "00:10:00",
	})

	d := derive.Record(recA)

	assert.Equal(t, "Agent A", d.FullName)
	assert.Equal(t, 4200, d.ActiveSeconds)
	assert.InDelta(t, 4200.0/7200.0*100, d.Occupancy, 0.001)
	assert.InDelta(t, 4200.0/6000.0*100, d.Utilization, 0.001)
	// 20m not ready + 5m wait + 1h on call + 10m ACW
	assert.Equal(t, 1200+300+3600+600, d.TotalSeconds)
	// Available fallback: login less not-ready.
	assert.Equal(t, 6000, d.Seconds[types.CategoryAvailable])
}

func TestRecordZeroLogin(t *testing.T) {
	// Agent B: all durations zero. The zero denominator must resolve to a
	// zero ratio, not a fault.
	recB := occupancyRecord("B", map[types.Category]string{
		types.CategoryLogin:    "00:00:00",
		types.CategoryNotReady: "00:00:00",
		types.CategoryWait:     "00:00:00",
		types.CategoryOnCall:   "00:00:00",
		types.CategoryACW:      "00:00:00",
	})

	d := derive.Record(recB)

	assert.Equal(t, 0.0, d.Occupancy)
	assert.Equal(t, 0.0, d.Utilization)
}

func TestRecordRatiosAlwaysClipped(t *testing.T) {
	tests := map[string]map[types.Category]string{
		"ActiveExceedsLogin": {
			types.CategoryLogin:  "00:30:00",
			types.CategoryOnCall: "02:00:00",
			types.CategoryACW:    "01:00:00",
		},
		"NotReadyExceedsLogin": {
			types.CategoryLogin:    "01:00:00",
			types.CategoryNotReady: "02:00:00",
			types.CategoryOnCall:   "00:30:00",
		},
		"AllMalformed": {
			types.CategoryLogin:  "bad",
			types.CategoryOnCall: "also bad",
		},
	}

	for name, durations := range tests {
		t.Run(name, func(t *testing.T) {
			d := derive.Record(occupancyRecord("X", durations))
			assert.GreaterOrEqual(t, d.Occupancy, 0.0)
			assert.LessOrEqual(t, d.Occupancy, 100.0)
			assert.GreaterOrEqual(t, d.Utilization, 0.0)
			assert.LessOrEqual(t, d.Utilization, 100.0)
		})
	}
}

func TestRecordNotReadyName(t *testing.T) {
	d := derive.Record(types.AgentRecord{
		Name:      "Jordan Smith",
		Durations: map[types.Category]string{types.CategoryNotReady: "00:45:00"},
	})
	assert.Equal(t, "Jordan Smith", d.FullName)
	assert.Equal(t, 2700, d.Seconds[types.CategoryNotReady])
}

func TestRecordMissingLastName(t *testing.T) {
	d := derive.Record(types.AgentRecord{FirstName: "Cher", Durations: map[types.Category]string{}})
	assert.Equal(t, "Cher", d.FullName)
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 0.0, derive.Ratio(100, 0))
	assert.Equal(t, 0.0, derive.Ratio(100, -50))
	assert.Equal(t, 50.0, derive.Ratio(50, 100))
	assert.Equal(t, 100.0, derive.Ratio(200, 100))
	assert.Equal(t, 0.0, derive.Ratio(-10, 100))
}

func TestSumByCategoryPreservesPerRecordSums(t *testing.T) {
	batch := derive.Records([]types.AgentRecord{
		occupancyRecord("A", map[types.Category]string{
			types.CategoryLogin:    "01:00:00",
			types.CategoryNotReady: "00:10:00",
		}),
		occupancyRecord("B", map[types.Category]string{
			types.CategoryLogin:    "02:00:00",
			types.CategoryNotReady: "00:20:00",
		}),
		occupancyRecord("C", map[types.Category]string{
			types.CategoryLogin:    "00:30:00",
			types.CategoryNotReady: "garbage",
		}),
	})

	sums := derive.SumByCategory(batch, types.CategoryLogin, types.CategoryNotReady)

	wantLogin, wantNotReady := 0, 0
	for _, rec := range batch {
		wantLogin += rec.Seconds[types.CategoryLogin]
		wantNotReady += rec.Seconds[types.CategoryNotReady]
	}
	assert.Equal(t, wantLogin, sums[types.CategoryLogin])
	assert.Equal(t, wantNotReady, sums[types.CategoryNotReady])
	assert.Equal(t, 12600, sums[types.CategoryLogin])
	assert.Equal(t, 1800, sums[types.CategoryNotReady])
}

func TestTopN(t *testing.T) {
	batch := derive.Records([]types.AgentRecord{
		occupancyRecord("A", map[types.Category]string{types.CategoryLogin: "01:00:00", types.CategoryOnCall: "00:30:00"}),
		occupancyRecord("B", map[types.Category]string{types.CategoryLogin: "01:00:00", types.CategoryOnCall: "00:45:00"}),
		occupancyRecord("C", map[types.Category]string{types.CategoryLogin: "01:00:00", types.CategoryOnCall: "00:30:00"}),
		occupancyRecord("D", map[types.Category]string{types.CategoryLogin: "01:00:00", types.CategoryOnCall: "00:15:00"}),
	})

	byOccupancy := func(r types.DerivedRecord) float64 { return r.Occupancy }

	top := derive.TopN(batch, 3, byOccupancy)
	require.Len(t, top, 3)
	assert.Equal(t, "B", top[0].AgentID)
	// A and C tie at 50%; original order breaks the tie.
	assert.Equal(t, "A", top[1].AgentID)
	assert.Equal(t, "C", top[2].AgentID)

	// N larger than the batch returns the whole batch.
	assert.Len(t, derive.TopN(batch, 10, byOccupancy), 4)
	assert.Len(t, derive.TopN(batch, 0, byOccupancy), 0)
}

func TestSortByAscending(t *testing.T) {
	batch := derive.Records([]types.AgentRecord{
		occupancyRecord("A", map[types.Category]string{types.CategoryLogin: "03:00:00"}),
		occupancyRecord("B", map[types.Category]string{types.CategoryLogin: "01:00:00"}),
		occupancyRecord("C", map[types.Category]string{types.CategoryLogin: "02:00:00"}),
	})

	sorted := derive.SortBy(batch, func(r types.DerivedRecord) float64 {
		return float64(r.Seconds[types.CategoryLogin])
	}, true)

	assert.Equal(t, []string{"B", "C", "A"}, []string{sorted[0].AgentID, sorted[1].AgentID, sorted[2].AgentID})
	// Original batch untouched.
	assert.Equal(t, "A", batch[0].AgentID)
}

func TestGroupBy(t *testing.T) {
	mk := func(group string, calls int) types.AgentRecord {
		return types.AgentRecord{
			AgentID: group + "-agent",
			Group:   group,
			Counts:  map[types.CountField]int{types.CountCalls: calls},
		}
	}
	batch := derive.Records([]types.AgentRecord{
		mk("Support", 10),
		mk("Sales", 5),
		mk("Support", 20),
		mk("", 99), // no group, excluded
	})

	groups := derive.GroupBy(batch, derive.GroupKey, func(r types.DerivedRecord) float64 {
		return float64(r.Counts[types.CountCalls])
	})

	require.Len(t, groups, 2)
	assert.Equal(t, "Sales", groups[0].Key)
	assert.Equal(t, 5.0, groups[0].Sum)
	assert.Equal(t, "Support", groups[1].Key)
	assert.Equal(t, 30.0, groups[1].Sum)
	assert.Equal(t, 15.0, groups[1].Mean)
	assert.Equal(t, 2, groups[1].Count)
}

func TestGroupByCalendarKeys(t *testing.T) {
	withDate := func(id string, ts time.Time, hasTime bool) types.AgentRecord {
		return types.AgentRecord{
			AgentID:   id,
			Date:      ts,
			HasTime:   hasTime,
			Durations: map[types.Category]string{types.CategoryNotReady: "00:30:00"},
		}
	}
	batch := derive.Records([]types.AgentRecord{
		withDate("A", time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC), true),
		withDate("B", time.Date(2024, 3, 1, 9, 45, 0, 0, time.UTC), true),
		withDate("C", time.Date(2024, 3, 2, 14, 0, 0, 0, time.UTC), true),
		withDate("D", time.Time{}, false), // undated, excluded
	})

	notReady := func(r types.DerivedRecord) float64 { return float64(r.Seconds[types.CategoryNotReady]) }

	days := derive.GroupBy(batch, derive.DayKey, notReady)
	require.Len(t, days, 2)
	assert.Equal(t, "2024-03-01", days[0].Key)
	assert.Equal(t, 3600.0, days[0].Sum)

	hours := derive.GroupBy(batch, derive.HourKey, notReady)
	require.Len(t, hours, 2)
	assert.Equal(t, "09:00", hours[0].Key)
	assert.Equal(t, 2, hours[0].Count)
	assert.Equal(t, "14:00", hours[1].Key)
}
