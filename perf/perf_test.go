package perf

import (
	"testing"
	"time"
)

func TestSnapshotEmptyIsZero(t *testing.T) {
	c := New(nil)
	snap := c.Snapshot()
	if snap.FPS != 0 || snap.AvgFrameTimeMs != 0 || snap.EventsTotal != 0 {
		t.Fatalf("expected zero snapshot, got %+v", snap)
	}
}

func TestRecordFrameComputesFPS(t *testing.T) {
	c := New(nil)
	c.lastFrame = time.Now().Add(-16 * time.Millisecond)
	c.haveLastFrame = true
	c.RecordFrame()

	snap := c.Snapshot()
	if snap.FPS < 40 || snap.FPS > 120 {
		t.Fatalf("FPS = %v, want roughly 60", snap.FPS)
	}
}

func TestFrameWindowCapped(t *testing.T) {
	c := New(nil)
	c.haveLastFrame = true
	c.lastFrame = time.Now()
	for i := 0; i < frameWindow+20; i++ {
		c.frameTimes = pushCapped(c.frameTimes, time.Millisecond, frameWindow)
	}
	if len(c.frameTimes) != frameWindow {
		t.Fatalf("frameTimes len = %d, want %d", len(c.frameTimes), frameWindow)
	}
}

func TestRecordEventTracksAverageAndTotal(t *testing.T) {
	c := New(nil)
	c.RecordEvent(100 * time.Microsecond)
	c.RecordEvent(200 * time.Microsecond)
	c.RecordEvent(300 * time.Microsecond)

	snap := c.Snapshot()
	if snap.EventsTotal != 3 {
		t.Fatalf("EventsTotal = %d, want 3", snap.EventsTotal)
	}
	if snap.AvgEventTimeUs < 150 || snap.AvgEventTimeUs > 250 {
		t.Fatalf("AvgEventTimeUs = %v, want ~200", snap.AvgEventTimeUs)
	}
	if snap.MaxEventTimeUs != 300 {
		t.Fatalf("MaxEventTimeUs = %v, want 300", snap.MaxEventTimeUs)
	}
}

func TestRecordBytesRollsPerSecondWindow(t *testing.T) {
	c := New(nil)
	c.RecordBytesIn(100)
	c.RecordBytesOut(50)
	// Both directions share one window: age it, then roll it with a
	// zero-byte record so the accumulated counts become the per-second rate.
	c.netSampleAt = time.Now().Add(-2 * time.Second)
	c.RecordBytesIn(0)

	snap := c.Snapshot()
	if snap.BytesInPerSec != 100 || snap.BytesOutPerSec != 50 {
		t.Fatalf("BytesInPerSec=%d BytesOutPerSec=%d, want 100/50", snap.BytesInPerSec, snap.BytesOutPerSec)
	}
}

func TestUpdateMemoryProxyEstimatesMB(t *testing.T) {
	c := New(nil)
	c.UpdateMemoryProxy(1000, 5)

	snap := c.Snapshot()
	if snap.LinesBuffered != 1000 || snap.WindowCount != 5 {
		t.Fatalf("unexpected memory proxy snapshot: %+v", snap)
	}
	expected := float64(1000*200) / (1024 * 1024)
	if diff := snap.EstimatedMemMB - expected; diff > 0.001 || diff < -0.001 {
		t.Fatalf("EstimatedMemMB = %v, want %v", snap.EstimatedMemMB, expected)
	}
}

type stubSampler struct{ cpu float64; rss uint64 }

func (s stubSampler) Sample() (float64, uint64) { return s.cpu, s.rss }

func TestSampleProcessUsesSampler(t *testing.T) {
	c := New(stubSampler{cpu: 12.5, rss: 4096})
	c.SampleProcess()

	snap := c.Snapshot()
	if snap.ProcessCPUPercent != 12.5 || snap.ProcessRSSBytes != 4096 {
		t.Fatalf("unexpected process snapshot: %+v", snap)
	}
}

func TestUptimeIsPositive(t *testing.T) {
	c := New(nil)
	time.Sleep(time.Millisecond)
	if c.Snapshot().Uptime <= 0 {
		t.Fatal("expected positive uptime")
	}
}
