package report

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/agentlens/backend/internal/derive"
	"github.com/agentlens/backend/internal/timefmt"
	"github.com/agentlens/backend/internal/types"
)

// OccupancyReport is the derived payload behind the occupancy dashboard.
type OccupancyReport struct {
	Kind             types.ReportKind `json:"kind"`
	GeneratedAt      time.Time        `json:"generatedAt"`
	Summary          OccupancySummary `json:"summary"`
	TimeDistribution []ChartPoint     `json:"timeDistribution"`
	OccupancyRanking []ChartPoint     `json:"occupancyRanking"`
	Breakdown        []AgentBreakdown `json:"breakdown"`
	Table            []OccupancyRow   `json:"table"`
}

// OccupancySummary holds the headline metrics above the charts.
type OccupancySummary struct {
	TotalAgents    int     `json:"totalAgents"`
	AvgLoginTime   string  `json:"avgLoginTime"`
	AvgOccupancy   float64 `json:"avgOccupancy"`
	AvgUtilization float64 `json:"avgUtilization"`
	ReportDate     string  `json:"reportDate,omitempty"`
}

// AgentBreakdown carries the stacked-bar categories for one agent, in
// seconds so the chart can scale them.
type AgentBreakdown struct {
	FullName        string `json:"fullName"`
	NotReadySeconds int    `json:"notReadySeconds"`
	WaitSeconds     int    `json:"waitSeconds"`
	OnCallSeconds   int    `json:"onCallSeconds"`
	AcwSeconds      int    `json:"acwSeconds"`
}

// OccupancyRow is one formatted table row, sorted by occupancy descending.
type OccupancyRow struct {
	FullName     string `json:"fullName"`
	LoginTime    string `json:"loginTime"`
	NotReadyTime string `json:"notReadyTime"`
	WaitTime     string `json:"waitTime"`
	OnCallTime   string `json:"onCallTime"`
	AcwTime      string `json:"acwTime"`
	Occupancy    string `json:"occupancy"`
	Utilization  string `json:"utilization"`
}

// BuildOccupancy derives an uploaded occupancy batch into its dashboard
// payload.
func BuildOccupancy(recs []types.AgentRecord) *OccupancyReport {
	batch := derive.Records(recs)

	rep := &OccupancyReport{
		Kind:        types.ReportOccupancy,
		GeneratedAt: time.Now().UTC(),
		Summary:     occupancySummary(batch),
	}

	sums := derive.SumByCategory(batch,
		types.CategoryNotReady, types.CategoryWait, types.CategoryOnCall,
		types.CategoryACW, types.CategoryAvailable)
	rep.TimeDistribution = []ChartPoint{
		{Label: "Not Ready", Value: float64(sums[types.CategoryNotReady])},
		{Label: "Wait", Value: float64(sums[types.CategoryWait])},
		{Label: "On Call", Value: float64(sums[types.CategoryOnCall])},
		{Label: "ACW", Value: float64(sums[types.CategoryACW])},
		{Label: "Available", Value: float64(sums[types.CategoryAvailable])},
	}

	// Ranking is ascending so the horizontal bar chart reads bottom-up.
	byOccupancy := func(r types.DerivedRecord) float64 { return r.Occupancy }
	for _, rec := range derive.SortBy(batch, byOccupancy, true) {
		rep.OccupancyRanking = append(rep.OccupancyRanking, ChartPoint{Label: rec.FullName, Value: rec.Occupancy})
	}

	for _, rec := range batch {
		rep.Breakdown = append(rep.Breakdown, AgentBreakdown{
			FullName:        rec.FullName,
			NotReadySeconds: rec.Seconds[types.CategoryNotReady],
			WaitSeconds:     rec.Seconds[types.CategoryWait],
			OnCallSeconds:   rec.Seconds[types.CategoryOnCall],
			AcwSeconds:      rec.Seconds[types.CategoryACW],
		})
	}

	for _, rec := range derive.SortBy(batch, byOccupancy, false) {
		rep.Table = append(rep.Table, OccupancyRow{
			FullName:     rec.FullName,
			LoginTime:    timefmt.FormatDuration(rec.Seconds[types.CategoryLogin]),
			NotReadyTime: timefmt.FormatDuration(rec.Seconds[types.CategoryNotReady]),
			WaitTime:     timefmt.FormatDuration(rec.Seconds[types.CategoryWait]),
			OnCallTime:   timefmt.FormatDuration(rec.Seconds[types.CategoryOnCall]),
			AcwTime:      timefmt.FormatDuration(rec.Seconds[types.CategoryACW]),
			Occupancy:    timefmt.FormatPercent(rec.Occupancy),
			Utilization:  timefmt.FormatPercent(rec.Utilization),
		})
	}

	return rep
}

func occupancySummary(batch []types.DerivedRecord) OccupancySummary {
	s := OccupancySummary{TotalAgents: len(batch)}
	if len(batch) == 0 {
		s.AvgLoginTime = timefmt.FormatDuration(0)
		return s
	}

	loginSum, occSum, utilSum := 0, 0.0, 0.0
	for _, rec := range batch {
		loginSum += rec.Seconds[types.CategoryLogin]
		occSum += rec.Occupancy
		utilSum += rec.Utilization
	}
	n := float64(len(batch))
	s.AvgLoginTime = timefmt.FormatDuration(loginSum / len(batch))
	s.AvgOccupancy = occSum / n
	s.AvgUtilization = utilSum / n

	for _, rec := range batch {
		if !rec.Date.IsZero() {
			s.ReportDate = rec.Date.Format("01/02/2006")
			break
		}
	}
	return s
}

// ReportKind implements Report.
func (r *OccupancyReport) ReportKind() types.ReportKind { return types.ReportOccupancy }

// WriteCSV implements Report. The occupancy export has no group column,
// so the filter is ignored.
func (r *OccupancyReport) WriteCSV(w io.Writer, _ []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"Full Name", "LOGIN TIME", "NOT READY TIME", "WAIT TIME",
		"ON CALL TIME", "ON ACW TIME", "Occupancy %", "Utilization %",
	}); err != nil {
		return err
	}
	for _, row := range r.Table {
		if err := cw.Write([]string{
			row.FullName, row.LoginTime, row.NotReadyTime, row.WaitTime,
			row.OnCallTime, row.AcwTime, row.Occupancy, row.Utilization,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
