package types

import "time"

// ReportKind identifies which Five9 CSV export variant a batch came from
type ReportKind string

const (
	ReportOccupancy  ReportKind = "occupancy"
	ReportNotReady   ReportKind = "notready"
	ReportExceptions ReportKind = "exceptions"
)

// Category identifies a duration column in the export
type Category string

const (
	CategoryLogin     Category = "login"
	CategoryNotReady  Category = "not_ready"
	CategoryWait      Category = "wait"
	CategoryRinging   Category = "ringing"
	CategoryOnCall    Category = "on_call"
	CategoryVoicemail Category = "voicemail"
	CategoryACW       Category = "acw"
	CategoryAvailable Category = "available"
)

// CountField identifies an integer event-count column in the exceptions export
type CountField string

const (
	CountCalls             CountField = "calls"
	CountLongCalls         CountField = "long_calls"
	CountShortCalls        CountField = "short_calls"
	CountAgentDisconnects  CountField = "agent_disconnects_first"
	CountDisconnectedHold  CountField = "disconnected_from_hold"
	CountLongHolds         CountField = "long_holds"
)

// AllCountFields lists the exception count fields in display order
var AllCountFields = []CountField{
	CountLongCalls,
	CountShortCalls,
	CountAgentDisconnects,
	CountDisconnectedHold,
	CountLongHolds,
}

// CountLabels maps count fields to their display labels
var CountLabels = map[CountField]string{
	CountCalls:            "Calls",
	CountLongCalls:        "Long Calls",
	CountShortCalls:       "Short Calls",
	CountAgentDisconnects: "Agent Disconnects First",
	CountDisconnectedHold: "Disconnected From Hold",
	CountLongHolds:        "Long Holds",
}

// AgentRecord is one row of an uploaded report: one agent for one
// reporting period. Duration values are kept as the raw HH:MM:SS strings
// from the export; derivation parses them.
type AgentRecord struct {
	AgentID   string `json:"agentId"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	// Name holds the pre-joined agent name used by the not-ready export,
	// which carries a single AGENT NAME column instead of first/last.
	Name  string `json:"name,omitempty"`
	Group string `json:"group,omitempty"`

	Date time.Time `json:"date,omitempty"`
	// HasTime is true when the DATE column carried a time-of-day component
	HasTime bool `json:"hasTime,omitempty"`

	Durations map[Category]string  `json:"durations,omitempty"`
	Counts    map[CountField]int   `json:"counts,omitempty"`
}

// DerivedRecord is an AgentRecord with the computed columns attached.
// Ratios are percentages already clipped to [0,100].
type DerivedRecord struct {
	AgentRecord

	FullName      string           `json:"fullName"`
	Seconds       map[Category]int `json:"seconds"`
	ActiveSeconds int              `json:"activeSeconds"`
	TotalSeconds  int              `json:"totalSeconds"`
	Occupancy     float64          `json:"occupancy"`
	Utilization   float64          `json:"utilization"`
}
