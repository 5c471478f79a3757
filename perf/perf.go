// Package perf collects rolling-window runtime telemetry: frame timing,
// parse throughput, network byte rates, and event processing latency
// (spec §4.J). Platform process sampling (CPU%, RSS) is an external
// collaborator the spec places out of scope, so Collector exposes a
// pluggable ProcessSampler instead of importing a sysinfo-style library.
//
// Grounded on the reference client's performance.rs rolling-window
// fields and getters, wired into the teacher's debug.Monitor ticker shape.
package perf

import (
	"math"
	"sync"
	"time"
)

const (
	frameWindow = 60
	eventWindow = 100
	parseWindow = 60
)

// ProcessSampler supplies process-level metrics perf can't gather itself
// without an external dependency (spec §1 Non-goals: "platform
// process-info sampling" is an external collaborator's job).
type ProcessSampler interface {
	Sample() (cpuPercent float64, rssBytes uint64)
}

// Collector accumulates samples under a single mutex; callers record from
// whichever goroutine produced the measurement (render loop, parser,
// network reader/writer, event processor).
type Collector struct {
	mu sync.Mutex

	start time.Time

	frameTimes  []time.Duration
	lastFrame   time.Time
	haveLastFrame bool

	parseTimes     []time.Duration
	chunksThisSec  uint64
	chunksPerSec   uint64
	parseSampleAt  time.Time
	elementsThisSec uint64
	elementsPerSec  uint64

	eventTimes    []time.Duration
	eventsTotal   uint64
	lastEventDone time.Time

	bytesInThisSec, bytesOutThisSec   uint64
	bytesInPerSec, bytesOutPerSec     uint64
	netSampleAt                       time.Time

	linesBuffered int
	windowCount   int

	sampler   ProcessSampler
	cpuPct    float64
	rssBytes  uint64
}

// New returns a Collector with its uptime clock started now. sampler may
// be nil, in which case CPU/RSS readings stay zero.
func New(sampler ProcessSampler) *Collector {
	now := time.Now()
	return &Collector{
		start:         now,
		parseSampleAt: now,
		netSampleAt:   now,
		lastEventDone: now,
		sampler:       sampler,
	}
}

// RecordFrame appends the time since the previous RecordFrame call to the
// frame-time rolling window (60 samples).
func (c *Collector) RecordFrame() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	if c.haveLastFrame {
		c.frameTimes = pushCapped(c.frameTimes, now.Sub(c.lastFrame), frameWindow)
	}
	c.lastFrame = now
	c.haveLastFrame = true
}

// RecordParse appends a parse-call duration and rolls the per-second
// chunk-rate counter.
func (c *Collector) RecordParse(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.parseTimes = pushCapped(c.parseTimes, d, parseWindow)
	c.chunksThisSec++
	c.rollParseSecond()
}

// RecordElementsParsed adds to the per-second parsed-element counter.
func (c *Collector) RecordElementsParsed(n uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.elementsThisSec += n
	c.rollParseSecond()
}

func (c *Collector) rollParseSecond() {
	now := time.Now()
	if now.Sub(c.parseSampleAt) >= time.Second {
		c.chunksPerSec = c.chunksThisSec
		c.elementsPerSec = c.elementsThisSec
		c.chunksThisSec = 0
		c.elementsThisSec = 0
		c.parseSampleAt = now
	}
}

// RecordBytesIn/RecordBytesOut track network throughput, rolled into a
// per-second rate the same way the reference client samples both
// directions off a shared one-second window.
func (c *Collector) RecordBytesIn(n uint64)  { c.recordBytes(n, 0) }
func (c *Collector) RecordBytesOut(n uint64) { c.recordBytes(0, n) }

func (c *Collector) recordBytes(in, out uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bytesInThisSec += in
	c.bytesOutThisSec += out
	now := time.Now()
	if now.Sub(c.netSampleAt) >= time.Second {
		c.bytesInPerSec = c.bytesInThisSec
		c.bytesOutPerSec = c.bytesOutThisSec
		c.bytesInThisSec = 0
		c.bytesOutThisSec = 0
		c.netSampleAt = now
	}
}

// RecordEvent appends an event-processing duration to the 100-sample
// rolling window and bumps the lifetime event counter.
func (c *Collector) RecordEvent(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eventTimes = pushCapped(c.eventTimes, d, eventWindow)
	c.eventsTotal++
	c.lastEventDone = time.Now()
}

// UpdateMemoryProxy records the cheap in-process proxies for memory
// pressure: total buffered lines across windows and the live window
// count, matching the reference client's approximate-by-line-count model
// rather than a real heap profiler.
func (c *Collector) UpdateMemoryProxy(totalLines, windowCount int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.linesBuffered = totalLines
	c.windowCount = windowCount
}

// SampleProcess asks the configured ProcessSampler for fresh CPU/RSS
// numbers; a nil sampler leaves the fields at their last (zero) value.
func (c *Collector) SampleProcess() {
	if c.sampler == nil {
		return
	}
	cpu, rss := c.sampler.Sample()
	c.mu.Lock()
	c.cpuPct, c.rssBytes = cpu, rss
	c.mu.Unlock()
}

// Snapshot is a point-in-time, immutable copy of the collector's derived
// metrics, safe to format or log without holding any lock.
type Snapshot struct {
	FPS              float64
	AvgFrameTimeMs   float64
	MinFrameTimeMs   float64
	MaxFrameTimeMs   float64
	FrameJitterMs    float64

	AvgParseTimeUs  float64
	ChunksPerSec    uint64
	ElementsPerSec  uint64

	BytesInPerSec  uint64
	BytesOutPerSec uint64

	AvgEventTimeUs  float64
	MaxEventTimeUs  float64
	EventsTotal     uint64
	EventLagMs      float64

	LinesBuffered int
	WindowCount   int
	EstimatedMemMB float64

	ProcessCPUPercent float64
	ProcessRSSBytes   uint64

	Uptime time.Duration
}

// Snapshot computes a Snapshot from the collector's current state.
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	avgFrame, minFrame, maxFrame := durationStats(c.frameTimes)
	avgParse, _, _ := durationStats(c.parseTimes)
	avgEvent, _, maxEvent := durationStats(c.eventTimes)

	return Snapshot{
		FPS:            fps(avgFrame),
		AvgFrameTimeMs: msOf(avgFrame),
		MinFrameTimeMs: msOf(minFrame),
		MaxFrameTimeMs: msOf(maxFrame),
		FrameJitterMs:  jitterMs(c.frameTimes),

		AvgParseTimeUs: usOf(avgParse),
		ChunksPerSec:   c.chunksPerSec,
		ElementsPerSec: c.elementsPerSec,

		BytesInPerSec:  c.bytesInPerSec,
		BytesOutPerSec: c.bytesOutPerSec,

		AvgEventTimeUs: usOf(avgEvent),
		MaxEventTimeUs: usOf(maxEvent),
		EventsTotal:    c.eventsTotal,
		EventLagMs:     float64(time.Since(c.lastEventDone).Milliseconds()),

		LinesBuffered:  c.linesBuffered,
		WindowCount:    c.windowCount,
		EstimatedMemMB: float64(c.linesBuffered*200) / (1024 * 1024),

		ProcessCPUPercent: c.cpuPct,
		ProcessRSSBytes:   c.rssBytes,

		Uptime: time.Since(c.start),
	}
}

func pushCapped(s []time.Duration, d time.Duration, limit int) []time.Duration {
	s = append(s, d)
	if len(s) > limit {
		s = s[len(s)-limit:]
	}
	return s
}

func durationStats(s []time.Duration) (avg, min, max time.Duration) {
	if len(s) == 0 {
		return 0, 0, 0
	}
	var total time.Duration
	min, max = s[0], s[0]
	for _, d := range s {
		total += d
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	return total / time.Duration(len(s)), min, max
}

func jitterMs(s []time.Duration) float64 {
	if len(s) == 0 {
		return 0
	}
	avg, _, _ := durationStats(s)
	meanMs := msOf(avg)
	var variance float64
	for _, d := range s {
		diff := msOf(d) - meanMs
		variance += diff * diff
	}
	variance /= float64(len(s))
	return math.Sqrt(variance)
}

func fps(avgFrame time.Duration) float64 {
	if avgFrame <= 0 {
		return 0
	}
	return float64(time.Second) / float64(avgFrame)
}

func msOf(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
func usOf(d time.Duration) float64 { return float64(d) / float64(time.Microsecond) }
