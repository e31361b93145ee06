// Package report assembles display-ready payloads from uploaded batches:
// summary scalars, chart series, and table rows per dashboard page, plus
// the CSV re-export of the table projection.
package report

import (
	"io"

	"github.com/agentlens/backend/internal/types"
)

// Report is a derived batch projected for display. Implementations are
// immutable once built; the cache hands the same value to every reader.
type Report interface {
	ReportKind() types.ReportKind
	// WriteCSV writes the display projection as CSV. groups optionally
	// filters rows by agent group; variants without groups ignore it.
	WriteCSV(w io.Writer, groups []string) error
}

// ChartPoint is one labelled value of a chart series.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// groupSet builds a membership set from the filter list. An empty filter
// means "no filtering", matching the dashboard's empty multiselect.
func groupSet(groups []string) map[string]bool {
	if len(groups) == 0 {
		return nil
	}
	set := make(map[string]bool, len(groups))
	for _, g := range groups {
		set[g] = true
	}
	return set
}
