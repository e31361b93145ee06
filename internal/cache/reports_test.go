package cache

import (
	"bytes"
	"testing"
	"time"

	"github.com/agentlens/backend/internal/report"
	"github.com/agentlens/backend/internal/types"

	"github.com/rs/zerolog"
)

func testReport() report.Report {
	return report.BuildOccupancy([]types.AgentRecord{
		{
			AgentID:   "a1",
			FirstName: "Test",
			Durations: map[types.Category]string{types.CategoryLogin: "01:00:00"},
		},
	})
}

func TestPutAndGet(t *testing.T) {
	logger := zerolog.New(&bytes.Buffer{})
	c := NewReportCache(time.Minute, logger)

	id := c.Put(testReport())
	if id == "" {
		t.Fatal("expected a non-empty report ID")
	}

	rep, ok := c.Get(id)
	if !ok {
		t.Fatal("expected report to be cached")
	}
	if rep.ReportKind() != types.ReportOccupancy {
		t.Errorf("expected kind occupancy, got %s", rep.ReportKind())
	}

	if _, ok := c.Get("unknown"); ok {
		t.Error("expected unknown ID to miss")
	}
}

func TestGetExpired(t *testing.T) {
	logger := zerolog.New(&bytes.Buffer{})
	c := NewReportCache(time.Nanosecond, logger)

	id := c.Put(testReport())
	time.Sleep(time.Millisecond)

	if _, ok := c.Get(id); ok {
		t.Error("expected expired report to miss before sweep")
	}
	// Entry still counted until swept.
	if c.Size() != 1 {
		t.Errorf("expected size 1, got %d", c.Size())
	}
}

func TestSweep(t *testing.T) {
	logger := zerolog.New(&bytes.Buffer{})
	c := NewReportCache(time.Nanosecond, logger)

	c.Put(testReport())
	c.Put(testReport())
	time.Sleep(time.Millisecond)

	if removed := c.Sweep(); removed != 2 {
		t.Errorf("expected 2 evictions, got %d", removed)
	}
	if c.Size() != 0 {
		t.Errorf("expected empty cache after sweep, got %d", c.Size())
	}
}

func TestSweepKeepsFreshEntries(t *testing.T) {
	logger := zerolog.New(&bytes.Buffer{})
	c := NewReportCache(time.Hour, logger)

	id := c.Put(testReport())

	if removed := c.Sweep(); removed != 0 {
		t.Errorf("expected no evictions, got %d", removed)
	}
	if _, ok := c.Get(id); !ok {
		t.Error("fresh report should survive the sweep")
	}
}
