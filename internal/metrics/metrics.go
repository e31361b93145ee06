// Package metrics provides Prometheus observability for the report
// pipeline: upload outcomes, parsed volume, and derivation latency.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the application's own prometheus registry, kept separate
// from the default registry so the exposition only carries our metrics.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// UploadsTotal counts report uploads by variant and outcome
// (accepted, rejected).
var UploadsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "agentlens",
	Name:      "uploads_total",
	Help:      "Report uploads by variant and outcome",
}, []string{"report", "outcome"})

// RowsParsed counts CSV data rows successfully decoded per report variant.
var RowsParsed = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "agentlens",
	Name:      "rows_parsed_total",
	Help:      "CSV data rows decoded per report variant",
}, []string{"report"})

// DurationsAbsorbed counts malformed duration values silently treated as
// zero seconds. A climbing rate usually means the export format drifted.
var DurationsAbsorbed = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "agentlens",
	Name:      "durations_absorbed_total",
	Help:      "Malformed duration values absorbed as zero seconds",
})

// DeriveDuration tracks how long one full derivation pass takes.
var DeriveDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "agentlens",
	Name:      "derive_duration_seconds",
	Help:      "Time to derive one uploaded batch",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
}, []string{"report"})

// CachedReports tracks how many derived reports are currently held in the
// in-memory cache.
var CachedReports = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "agentlens",
	Name:      "cached_reports",
	Help:      "Derived reports currently held in memory",
})

// ExportsTotal counts CSV re-exports served.
var ExportsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "agentlens",
	Name:      "exports_total",
	Help:      "CSV exports served per report variant",
}, []string{"report"})
