package profiler

import (
	"log/slog"
	"runtime"
	"sync"
	"time"
)

// Profiler tracks shader build throughput and memory statistics for long running builds.
// Stats are written to its logger at a configurable interval.
type Profiler struct {
	mu             sync.Mutex
	logger         *slog.Logger
	buildCount     int
	failCount      int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// NewProfiler creates a new Profiler logging to logger.
// Update interval defaults to 1 second.
//
// Parameters:
//   - logger: destination of the stats records; nil uses slog.Default()
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(logger *slog.Logger) *Profiler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Profiler{
		logger:         logger,
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
}

// SetInterval changes how often Tick reports. Non-positive values are ignored.
func (p *Profiler) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	p.mu.Lock()
	p.updateInterval = d
	p.mu.Unlock()
}

// Tick records one shader build and reports when the update interval has elapsed.
// Statistics include: builds per second, failures, heap usage, allocation rate and GC pauses.
//
// Parameters:
//   - ok: whether the build succeeded
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(ok bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.buildCount++
	if !ok {
		p.failCount++
	}
	if time.Since(p.lastTime) < p.updateInterval {
		return false
	}
	p.report()
	return true
}

// Flush reports whatever was recorded since the last report, regardless of the interval.
//
// Returns:
//   - bool: true if there was anything to report
func (p *Profiler) Flush() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.buildCount == 0 {
		return false
	}
	p.report()
	return true
}

// report logs the current window and starts a new one. p.mu must be held.
func (p *Profiler) report() {
	currentTime := time.Now()
	elapsed := max(currentTime.Sub(p.lastTime), time.Millisecond)

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024

	// TotalAlloc only grows; the delta is the churn of this window
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			pause := p.memStats.PauseNs[i%256] / 1000
			if pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	p.logger.Info("shader build stats",
		"builds", p.buildCount,
		"failed", p.failCount,
		"builds_per_sec", float64(p.buildCount)/elapsed.Seconds(),
		"heap_mb", allocMB,
		"alloc_rate_mb_s", allocRateMB,
		"gc", gcCount,
		"gc_last_pause_us", lastPauseUs,
		"gc_max_pause_us", maxPauseUs,
		"sys_mb", sysMB,
	)

	p.buildCount = 0
	p.failCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
}
