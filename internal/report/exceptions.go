package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/agentlens/backend/internal/derive"
	"github.com/agentlens/backend/internal/types"
)

// topExceptionAgents caps the top-agents chart.
const topExceptionAgents = 10

// ExceptionsReport is the derived payload behind the productivity
// exceptions dashboard.
type ExceptionsReport struct {
	Kind                  types.ReportKind  `json:"kind"`
	GeneratedAt           time.Time         `json:"generatedAt"`
	Summary               ExceptionsSummary `json:"summary"`
	CallsByGroup          []ChartPoint      `json:"callsByGroup"`
	ExceptionDistribution []ChartPoint      `json:"exceptionDistribution"`
	TopAgents             TopAgents         `json:"topAgents"`
	Groups                []string          `json:"groups"`
	Table                 []ExceptionsRow   `json:"table"`

	// batch is retained for group-filtered exports.
	batch []types.DerivedRecord
}

// ExceptionsSummary holds the headline metrics.
type ExceptionsSummary struct {
	TotalAgents      int `json:"totalAgents"`
	TotalCalls       int `json:"totalCalls"`
	LongCalls        int `json:"longCalls"`
	AgentDisconnects int `json:"agentDisconnects"`
}

// TopAgents is the top-N ranking for one caller-selected exception type.
type TopAgents struct {
	By     types.CountField `json:"by"`
	Label  string           `json:"label"`
	Points []ChartPoint     `json:"points"`
}

// ExceptionsRow is one table row with the raw counts.
type ExceptionsRow struct {
	Group            string `json:"group"`
	AgentID          string `json:"agentId"`
	Calls            int    `json:"calls"`
	LongCalls        int    `json:"longCalls"`
	ShortCalls       int    `json:"shortCalls"`
	AgentDisconnects int    `json:"agentDisconnects"`
	DisconnectedHold int    `json:"disconnectedHold"`
	LongHolds        int    `json:"longHolds"`
}

// BuildExceptions derives an uploaded exceptions batch into its dashboard
// payload. topBy selects the exception type for the top-agents ranking;
// unknown values fall back to long calls.
func BuildExceptions(recs []types.AgentRecord, topBy types.CountField) *ExceptionsReport {
	if _, ok := types.CountLabels[topBy]; !ok || topBy == types.CountCalls {
		topBy = types.CountLongCalls
	}

	batch := derive.Records(recs)

	rep := &ExceptionsReport{
		Kind:        types.ReportExceptions,
		GeneratedAt: time.Now().UTC(),
		batch:       batch,
	}

	agents := make(map[string]bool)
	for _, rec := range batch {
		agents[rec.AgentID] = true
	}
	rep.Summary = ExceptionsSummary{
		TotalAgents:      len(agents),
		TotalCalls:       derive.SumCounts(batch, types.CountCalls),
		LongCalls:        derive.SumCounts(batch, types.CountLongCalls),
		AgentDisconnects: derive.SumCounts(batch, types.CountAgentDisconnects),
	}

	// Ascending by total calls so the horizontal bar chart reads bottom-up.
	groups := derive.GroupBy(batch, derive.GroupKey, func(r types.DerivedRecord) float64 {
		return float64(r.Counts[types.CountCalls])
	})
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Sum < groups[j].Sum })
	for _, g := range groups {
		rep.CallsByGroup = append(rep.CallsByGroup, ChartPoint{Label: g.Key, Value: g.Sum})
		rep.Groups = append(rep.Groups, g.Key)
	}
	sort.Strings(rep.Groups)

	for _, field := range types.AllCountFields {
		rep.ExceptionDistribution = append(rep.ExceptionDistribution, ChartPoint{
			Label: types.CountLabels[field],
			Value: float64(derive.SumCounts(batch, field)),
		})
	}

	rep.TopAgents = TopAgents{By: topBy, Label: types.CountLabels[topBy]}
	top := derive.TopN(batch, topExceptionAgents, func(r types.DerivedRecord) float64 {
		return float64(r.Counts[topBy])
	})
	for _, rec := range top {
		rep.TopAgents.Points = append(rep.TopAgents.Points, ChartPoint{
			Label: fmt.Sprintf("%s (%s)", rec.AgentID, rec.Group),
			Value: float64(rec.Counts[topBy]),
		})
	}

	for _, rec := range batch {
		rep.Table = append(rep.Table, exceptionsRow(rec))
	}

	return rep
}

func exceptionsRow(rec types.DerivedRecord) ExceptionsRow {
	return ExceptionsRow{
		Group:            rec.Group,
		AgentID:          rec.AgentID,
		Calls:            rec.Counts[types.CountCalls],
		LongCalls:        rec.Counts[types.CountLongCalls],
		ShortCalls:       rec.Counts[types.CountShortCalls],
		AgentDisconnects: rec.Counts[types.CountAgentDisconnects],
		DisconnectedHold: rec.Counts[types.CountDisconnectedHold],
		LongHolds:        rec.Counts[types.CountLongHolds],
	}
}

// FilterGroups rebuilds the payload from only the given agent groups,
// the way the dashboard recomputes after the multiselect changes. An
// empty filter returns the report unchanged.
func (r *ExceptionsReport) FilterGroups(groups []string) *ExceptionsReport {
	keep := groupSet(groups)
	if keep == nil {
		return r
	}
	var recs []types.AgentRecord
	for _, rec := range r.batch {
		if keep[rec.Group] {
			recs = append(recs, rec.AgentRecord)
		}
	}
	return BuildExceptions(recs, r.TopAgents.By)
}

// ReportKind implements Report.
func (r *ExceptionsReport) ReportKind() types.ReportKind { return types.ReportExceptions }

// WriteCSV implements Report, honoring the agent-group filter the way the
// dashboard's multiselect does: an empty filter exports everything.
func (r *ExceptionsReport) WriteCSV(w io.Writer, groups []string) error {
	keep := groupSet(groups)

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"AGENT GROUP", "AGENT", "CALLS count", "LONG CALLS count", "SHORT CALLS count",
		"AGENT DISCONNECTS FIRST count", "DISCONNECTED FROM HOLD count", "LONG HOLDS count",
	}); err != nil {
		return err
	}
	for _, rec := range r.batch {
		if keep != nil && !keep[rec.Group] {
			continue
		}
		row := exceptionsRow(rec)
		if err := cw.Write([]string{
			row.Group, row.AgentID,
			strconv.Itoa(row.Calls), strconv.Itoa(row.LongCalls), strconv.Itoa(row.ShortCalls),
			strconv.Itoa(row.AgentDisconnects), strconv.Itoa(row.DisconnectedHold), strconv.Itoa(row.LongHolds),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
