// Package csvio decodes the three Five9 report exports into typed agent
// records. Required columns are validated up front against the header row;
// individual malformed values are absorbed later during derivation.
package csvio

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/agentlens/backend/internal/metrics"
	"github.com/agentlens/backend/internal/timefmt"
	"github.com/agentlens/backend/internal/types"
)

// Column names as they appear in the exports.
const (
	ColAgent          = "AGENT"
	ColAgentFirstName = "AGENT FIRST NAME"
	ColAgentLastName  = "AGENT LAST NAME"
	ColAgentName      = "AGENT NAME"
	ColAgentGroup     = "AGENT GROUP"
	ColDate           = "DATE"

	ColLoginTime     = "LOGIN TIME"
	ColNotReadyTime  = "NOT READY TIME"
	ColWaitTime      = "WAIT TIME"
	ColRingingTime   = "RINGING TIME"
	ColOnCallTime    = "ON CALL TIME"
	ColVoicemailTime = "ON VOICEMAIL TIME"
	ColACWTime       = "ON ACW TIME"
	ColAvailableTime = "AVAILABLE TIME (LOGIN LESS NOT READY)"

	ColCalls            = "CALLS count"
	ColLongCalls        = "LONG CALLS count"
	ColShortCalls       = "SHORT CALLS count"
	ColAgentDisconnects = "AGENT DISCONNECTS FIRST count"
	ColDisconnectedHold = "DISCONNECTED FROM HOLD count"
	ColLongHolds        = "LONG HOLDS count"
)

// durationColumns maps occupancy export columns to their categories.
var durationColumns = map[string]types.Category{
	ColLoginTime:     types.CategoryLogin,
	ColNotReadyTime:  types.CategoryNotReady,
	ColWaitTime:      types.CategoryWait,
	ColRingingTime:   types.CategoryRinging,
	ColOnCallTime:    types.CategoryOnCall,
	ColVoicemailTime: types.CategoryVoicemail,
	ColACWTime:       types.CategoryACW,
	ColAvailableTime: types.CategoryAvailable,
}

// countColumns maps exceptions export columns to their count fields.
var countColumns = map[string]types.CountField{
	ColCalls:            types.CountCalls,
	ColLongCalls:        types.CountLongCalls,
	ColShortCalls:       types.CountShortCalls,
	ColAgentDisconnects: types.CountAgentDisconnects,
	ColDisconnectedHold: types.CountDisconnectedHold,
	ColLongHolds:        types.CountLongHolds,
}

// table is a decoded CSV: a header index plus the data rows.
type table struct {
	index map[string]int
	rows  [][]string
}

// readTable parses the stream as CSV with a header row. Any read failure,
// including ragged rows and a missing header, rejects the whole file.
func readTable(r io.Reader) (*table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, &MalformedFileError{Err: err}
	}
	if len(records) == 0 {
		return nil, &MalformedFileError{Err: io.ErrUnexpectedEOF}
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[strings.ToUpper(strings.TrimSpace(name))] = i
	}

	return &table{index: index, rows: records[1:]}, nil
}

// require checks that every named column is present, collecting all the
// missing names so the caller can report them in one failure.
func (t *table) require(cols ...string) error {
	var missing []string
	for _, col := range cols {
		if _, ok := t.index[strings.ToUpper(col)]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnError{Columns: missing}
	}
	return nil
}

func (t *table) has(col string) bool {
	_, ok := t.index[strings.ToUpper(col)]
	return ok
}

// cell returns the trimmed value of the named column for a row, or ""
// when the column is absent or the row is short.
func (t *table) cell(row []string, col string) string {
	i, ok := t.index[strings.ToUpper(col)]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// DecodeOccupancy decodes an agent occupancy export.
func DecodeOccupancy(r io.Reader) ([]types.AgentRecord, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if err := t.require(
		ColAgent, ColAgentFirstName, ColAgentLastName, ColDate,
		ColLoginTime, ColNotReadyTime, ColWaitTime, ColOnCallTime, ColACWTime,
	); err != nil {
		return nil, err
	}

	recs := make([]types.AgentRecord, 0, len(t.rows))
	for _, row := range t.rows {
		rec := types.AgentRecord{
			AgentID:   t.cell(row, ColAgent),
			FirstName: t.cell(row, ColAgentFirstName),
			LastName:  t.cell(row, ColAgentLastName),
			Durations: t.durations(row),
		}
		rec.Date, rec.HasTime = parseDate(t.cell(row, ColDate))
		recs = append(recs, rec)
	}

	metrics.RowsParsed.WithLabelValues(string(types.ReportOccupancy)).Add(float64(len(recs)))
	return recs, nil
}

// DecodeNotReady decodes a not-ready time export.
func DecodeNotReady(r io.Reader) ([]types.AgentRecord, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if err := t.require(ColAgentName, ColNotReadyTime, ColDate); err != nil {
		return nil, err
	}

	recs := make([]types.AgentRecord, 0, len(t.rows))
	for _, row := range t.rows {
		rec := types.AgentRecord{
			Name:      t.cell(row, ColAgentName),
			Durations: t.durations(row),
		}
		rec.Date, rec.HasTime = parseDate(t.cell(row, ColDate))
		recs = append(recs, rec)
	}

	metrics.RowsParsed.WithLabelValues(string(types.ReportNotReady)).Add(float64(len(recs)))
	return recs, nil
}

// DecodeExceptions decodes a productivity exceptions export. Only the
// identity and calls columns are required; absent exception columns count
// as zero.
func DecodeExceptions(r io.Reader) ([]types.AgentRecord, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if err := t.require(ColAgentGroup, ColAgent, ColCalls); err != nil {
		return nil, err
	}

	recs := make([]types.AgentRecord, 0, len(t.rows))
	for _, row := range t.rows {
		counts := make(map[types.CountField]int, len(countColumns))
		for col, field := range countColumns {
			if t.has(col) {
				counts[field] = parseCount(t.cell(row, col))
			}
		}
		recs = append(recs, types.AgentRecord{
			AgentID: t.cell(row, ColAgent),
			Group:   t.cell(row, ColAgentGroup),
			Counts:  counts,
		})
	}

	metrics.RowsParsed.WithLabelValues(string(types.ReportExceptions)).Add(float64(len(recs)))
	return recs, nil
}

// durations collects the raw duration strings for every duration column
// present in the header, counting values that will be absorbed as zero.
func (t *table) durations(row []string) map[types.Category]string {
	out := make(map[types.Category]string, len(durationColumns))
	for col, cat := range durationColumns {
		if !t.has(col) {
			continue
		}
		raw := t.cell(row, col)
		out[cat] = raw
		if _, ok := timefmt.ParseDurationStrict(raw); !ok && raw != "" {
			metrics.DurationsAbsorbed.Inc()
		}
	}
	return out
}

// parseCount reads an integer event count. Malformed values are absorbed
// as zero, mirroring the duration policy.
func parseCount(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// dateLayouts covers the date formats the exports have been seen to use,
// with and without a time-of-day component.
var dateLayouts = []struct {
	layout  string
	hasTime bool
}{
	{"2006-01-02 15:04:05", true},
	{"2006-01-02T15:04:05", true},
	{"01/02/2006 03:04:05 PM", true},
	{"01/02/2006 15:04:05", true},
	{"01/02/2006 15:04", true},
	{"2006-01-02", false},
	{"01/02/2006", false},
	{"1/2/2006", false},
}

// parseDate reads a reporting date. Unparseable values yield the zero
// time; the row stays in the batch but drops out of calendar groupings.
func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, dl := range dateLayouts {
		if ts, err := time.Parse(dl.layout, s); err == nil {
			return ts, dl.hasTime
		}
	}
	return time.Time{}, false
}
