package metrics

import (
	"testing"
	"time"
)

func TestHarvestMeterDepthRatio(t *testing.T) {
	m := NewHarvestMeter()

	m.RecordPage(0, true)
	m.RecordPage(0, true)
	m.RecordPage(0, false)
	m.RecordPage(1, false)

	if got := m.DepthRatio(0); got != 2.0/3.0 {
		t.Errorf("DepthRatio(0) = %v, want 2/3", got)
	}
	if got := m.DepthRatio(1); got != 0 {
		t.Errorf("DepthRatio(1) = %v, want 0", got)
	}
	if got := m.DepthRatio(7); got != 0 {
		t.Errorf("DepthRatio of unseen depth = %v, want 0", got)
	}
}

func TestHarvestMeterReport(t *testing.T) {
	m := NewHarvestMeter()

	m.RecordPage(0, true)
	m.RecordPage(0, false)
	m.RecordPage(1, true)
	m.RecordCache(true)
	m.RecordCache(false)

	report := m.Report()

	perDepth, ok := report["per_depth"].(map[string]any)
	if !ok {
		t.Fatal("per_depth missing")
	}
	d0 := perDepth["depth_0"].(map[string]any)
	if d0["relevant_pages"] != 1 || d0["total_pages"] != 2 {
		t.Errorf("depth_0 = %v", d0)
	}
	if d0["harvest_ratio"] != 0.5 {
		t.Errorf("depth_0 ratio = %v, want 0.5", d0["harvest_ratio"])
	}

	cumulative := report["cumulative"].(map[string]any)
	c1 := cumulative["depth_1"].(map[string]any)
	if c1["relevant_pages"] != 2 || c1["total_pages"] != 3 {
		t.Errorf("cumulative depth_1 = %v", c1)
	}

	cache := report["cache"].(map[string]any)
	if cache["relevant_pages"] != 1 || cache["total_pages"] != 2 {
		t.Errorf("cache = %v", cache)
	}

	overall := report["overall"].(map[string]any)
	if overall["relevant_pages"] != 3 || overall["total_pages"] != 5 {
		t.Errorf("overall = %v", overall)
	}
	if overall["harvest_ratio"] != 0.6 {
		t.Errorf("overall ratio = %v, want 0.6", overall["harvest_ratio"])
	}
}

func TestHarvestMeterEmptyReport(t *testing.T) {
	report := NewHarvestMeter().Report()

	overall := report["overall"].(map[string]any)
	if overall["total_pages"] != 0 || overall["harvest_ratio"] != 0.0 {
		t.Errorf("empty overall = %v", overall)
	}
	if len(report["per_depth"].(map[string]any)) != 0 {
		t.Error("empty meter should have no per-depth entries")
	}
}

func TestTimer(t *testing.T) {
	tm := NewTimer()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	now := base
	tm.now = func() time.Time { return now }

	tm.Start()
	now = base.Add(1500 * time.Millisecond)
	tm.Stop()

	if got := tm.Duration(); got != 1500*time.Millisecond {
		t.Errorf("Duration = %v, want 1.5s", got)
	}

	report := tm.Report()
	if report["duration_seconds"] != 1.5 {
		t.Errorf("duration_seconds = %v, want 1.5", report["duration_seconds"])
	}
	if report["started_at"] != "2026-08-01T12:00:00Z" {
		t.Errorf("started_at = %v", report["started_at"])
	}
}

func TestTimerUnstarted(t *testing.T) {
	tm := NewTimer()
	if tm.Duration() != 0 {
		t.Error("unstarted timer must report zero duration")
	}
	tm.Stop()
	if tm.Duration() != 0 {
		t.Error("stop before start must be a no-op")
	}
	if _, ok := tm.Report()["started_at"]; ok {
		t.Error("unstarted timer must omit started_at")
	}
}

func TestTimerRunning(t *testing.T) {
	tm := NewTimer()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	now := base
	tm.now = func() time.Time { return now }

	tm.Start()
	now = base.Add(2 * time.Second)

	if got := tm.Duration(); got != 2*time.Second {
		t.Errorf("running Duration = %v, want 2s", got)
	}
}
