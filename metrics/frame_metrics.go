// package metrics tracks per-frame timing over a rolling window and reports
// runtime statistics to the log at a fixed interval. The smoothed values feed
// the adaptive quality controller; reacting to single-frame spikes is exactly
// what the controller's hysteresis exists to avoid.
package metrics

import (
	"log"
	"runtime"
	"sync"
	"time"
)

// FrameMetrics accumulates frame times in a fixed-size ring buffer and
// periodically logs FPS and memory statistics.
type FrameMetrics struct {
	mu *sync.Mutex

	window []time.Duration
	idx    int
	count  int
	total  time.Duration

	frames uint64

	reportFrames   int
	lastReport     time.Time
	reportInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	now func() time.Time
}

// NewFrameMetrics creates a frame metrics tracker. The window defaults to 120
// frames and the report interval to 1 second.
//
// Parameters:
//   - options: functional options to configure the tracker
//
// Returns:
//   - *FrameMetrics: the newly created tracker
func NewFrameMetrics(options ...FrameMetricsOption) *FrameMetrics {
	m := &FrameMetrics{
		mu:             &sync.Mutex{},
		window:         make([]time.Duration, 120),
		reportInterval: time.Second,
		now:            time.Now,
	}

	for _, option := range options {
		option(m)
	}

	m.lastReport = m.now()
	return m
}

// Record adds one frame's duration to the rolling window and logs runtime
// statistics when the report interval has elapsed.
// Statistics include: FPS, frame time, heap usage, allocation rate, GC pauses.
//
// Parameters:
//   - frameTime: the duration of the completed frame
//
// Returns:
//   - bool: true if stats were logged for this frame, false otherwise
func (m *FrameMetrics) Record(frameTime time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total -= m.window[m.idx]
	m.window[m.idx] = frameTime
	m.total += frameTime
	m.idx = (m.idx + 1) % len(m.window)
	if m.count < len(m.window) {
		m.count++
	}

	m.frames++
	m.reportFrames++

	currentTime := m.now()
	elapsed := currentTime.Sub(m.lastReport)
	if elapsed < m.reportInterval {
		return false
	}

	fps := float64(m.reportFrames) / elapsed.Seconds()
	avg := m.averageLocked()

	runtime.ReadMemStats(&m.memStats)
	// Alloc: Bytes of allocated heap objects (live memory)
	// TotalAlloc: Cumulative bytes allocated for heap objects (increases forever, tracks churn)
	// Sys: Total bytes of memory obtained from the OS (actual process footprint)
	allocMB := float64(m.memStats.Alloc) / 1024 / 1024
	sysMB := float64(m.memStats.Sys) / 1024 / 1024

	allocDelta := m.memStats.TotalAlloc - m.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	// PauseNs is a circular buffer of the last 256 GC pauses.
	gcCount := m.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		lastPauseUs = m.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := m.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			pause := m.memStats.PauseNs[i%256] / 1000
			if pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	log.Printf("[Metrics] FPS: %.2f | Frame: %.2f ms | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
		fps, float64(avg.Microseconds())/1000, allocMB, allocRateMB, gcCount, lastPauseUs, maxPauseUs, sysMB)

	m.reportFrames = 0
	m.lastReport = currentTime
	m.lastGCCount = gcCount
	m.lastTotalAlloc = m.memStats.TotalAlloc
	return true
}

// AverageFrameTime returns the mean frame duration over the rolling window.
//
// Returns:
//   - time.Duration: the window average, or zero before any frames
func (m *FrameMetrics) AverageFrameTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.averageLocked()
}

// averageLocked computes the window average. Caller must hold the mutex.
func (m *FrameMetrics) averageLocked() time.Duration {
	if m.count == 0 {
		return 0
	}
	return m.total / time.Duration(m.count)
}

// FPS returns the smoothed frames-per-second derived from the window average.
//
// Returns:
//   - float64: smoothed FPS, or zero before any frames
func (m *FrameMetrics) FPS() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	avg := m.averageLocked()
	if avg <= 0 {
		return 0
	}
	return float64(time.Second) / float64(avg)
}

// FrameCount returns the total number of recorded frames.
//
// Returns:
//   - uint64: frames recorded since construction
func (m *FrameMetrics) FrameCount() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames
}

// WindowFill returns how many slots of the rolling window hold data.
//
// Returns:
//   - int: filled slot count, at most the window size
func (m *FrameMetrics) WindowFill() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}
