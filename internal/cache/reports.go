// Package cache holds derived reports in memory for the lifetime of an
// analyst's session, so the client can re-fetch and export a derived batch
// without re-uploading. Nothing survives a process restart.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/agentlens/backend/internal/metrics"
	"github.com/agentlens/backend/internal/report"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// entry is one cached derived report.
type entry struct {
	report    report.Report
	createdAt time.Time
}

// ReportCache stores derived reports keyed by ID with TTL eviction.
type ReportCache struct {
	reports map[string]entry
	ttl     time.Duration
	logger  zerolog.Logger
	mu      sync.RWMutex
}

// NewReportCache creates a report cache whose entries expire after ttl.
func NewReportCache(ttl time.Duration, logger zerolog.Logger) *ReportCache {
	return &ReportCache{
		reports: make(map[string]entry),
		ttl:     ttl,
		logger:  logger.With().Str("component", "report_cache").Logger(),
	}
}

// Put stores a derived report and returns its generated ID.
func (c *ReportCache) Put(rep report.Report) string {
	id := uuid.NewString()

	c.mu.Lock()
	c.reports[id] = entry{report: rep, createdAt: time.Now()}
	size := len(c.reports)
	c.mu.Unlock()

	metrics.CachedReports.Set(float64(size))
	return id
}

// Get returns the report for the given ID. Expired entries are treated as
// absent even before the sweeper removes them.
func (c *ReportCache) Get(id string) (report.Report, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.reports[id]
	if !ok || time.Since(e.createdAt) > c.ttl {
		return nil, false
	}
	return e.report, true
}

// Size returns the number of cached reports, expired or not.
func (c *ReportCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.reports)
}

// Sweep removes expired entries and returns how many were evicted.
func (c *ReportCache) Sweep() int {
	threshold := time.Now().Add(-c.ttl)

	c.mu.Lock()
	removed := 0
	for id, e := range c.reports {
		if e.createdAt.Before(threshold) {
			delete(c.reports, id)
			removed++
		}
	}
	size := len(c.reports)
	c.mu.Unlock()

	metrics.CachedReports.Set(float64(size))
	return removed
}

// StartSweeper evicts expired reports on the given interval until the
// context is cancelled.
func (c *ReportCache) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.logger.Info().Dur("ttl", c.ttl).Msg("report sweeper started")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("report sweeper stopped")
			return
		case <-ticker.C:
			if removed := c.Sweep(); removed > 0 {
				c.logger.Debug().Int("removed", removed).Int("remaining", c.Size()).Msg("expired reports evicted")
			}
		}
	}
}
