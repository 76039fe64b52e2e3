package geometry_pool

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/lod"
	"github.com/Carmen-Shannon/oxy-vis/upload"
)

const (
	// DefaultMaxObjectsPerPool is the per-category object ceiling.
	DefaultMaxObjectsPerPool = 1024
	// DefaultMaxBytesPerPool is the per-category payload byte ceiling.
	DefaultMaxBytesPerPool = 64 << 20
	// DefaultGCInterval is how often Maintain runs a cleanup pass without
	// memory pressure.
	DefaultGCInterval = 10 * time.Second
	// DefaultAgeThreshold is how long an object may sit idle before a
	// cleanup pass frees it.
	DefaultAgeThreshold = 30 * time.Second
	// DefaultPressureThreshold is the usage-to-warning ratio above which
	// Maintain collects immediately.
	DefaultPressureThreshold = 0.8
)

// PoolInfo is a point-in-time snapshot of one category's pool.
type PoolInfo struct {
	Category       common.ObjectCategory
	ObjectCount    int
	AvailableCount int
	InUseCount     int
	Bytes          int
	MaxObjects     int
	MaxBytes       int
	Stats          PoolStats
}

// MemoryInfo is a point-in-time snapshot of the whole manager for
// diagnostics.
type MemoryInfo struct {
	TotalBytes    int
	WarnBytes     int
	PressureRatio float64
	Pools         map[common.ObjectCategory]PoolInfo
}

// Manager owns one typed pool per object category plus the buffer handles
// brokered from the upload sink. Allocation failures are non-fatal by
// contract: callers fall back to a previous handle or skip the detail
// upgrade, so every refusal here is an ok=false, never an error that stops
// a frame.
type Manager interface {
	// Allocate serves a request for a staging object of at least size
	// bytes from the category's pool.
	//
	// Parameters:
	//   - category: the pool to draw from.
	//   - size: required payload size in bytes.
	//
	// Returns:
	//   - *PooledObject: the object, nil when ok is false.
	//   - bool: ok, false when the pool is at capacity.
	Allocate(category common.ObjectCategory, size int) (*PooledObject, bool)

	// Deallocate returns an object to its pool for reuse. The object is
	// not destroyed.
	//
	// Parameters:
	//   - category: the pool the object belongs to.
	//   - objectID: the object's ID.
	//
	// Returns:
	//   - bool: false when the object is not currently in use.
	Deallocate(category common.ObjectCategory, objectID uint64) bool

	// CleanupOldObjects permanently frees available objects idle longer
	// than maxAge, across all pools.
	//
	// Parameters:
	//   - maxAge: the idle age beyond which objects are destroyed.
	//
	// Returns:
	//   - int: how many objects were destroyed.
	CleanupOldObjects(maxAge time.Duration) int

	// Maintain runs the periodic garbage-collection pass. It collects when
	// the GC interval has elapsed or when the pressure ratio exceeds the
	// configured threshold, whichever comes first; under pressure any idle
	// object is reclaimed regardless of age.
	//
	// Returns:
	//   - int: how many objects were destroyed, 0 when no pass ran.
	Maintain() int

	// HandleFor returns the upload sink's buffer handle for a detail level
	// and category, acquiring it on first request and caching it after.
	//
	// Parameters:
	//   - level: the rendered detail level.
	//   - category: the object category.
	//
	// Returns:
	//   - upload.BufferHandle: the handle, NilBufferHandle on error.
	//   - error: the sink's failure, wrapped.
	HandleFor(level lod.Level, category common.ObjectCategory) (upload.BufferHandle, error)

	// ReleaseHandles returns every brokered buffer handle to the sink.
	ReleaseHandles()

	// Stats returns pool traffic counters aggregated across categories.
	//
	// Returns:
	//   - PoolStats: the summed counters.
	Stats() PoolStats

	// StatsFor returns one category's traffic counters.
	//
	// Parameters:
	//   - category: the pool to report.
	//
	// Returns:
	//   - PoolStats: the counters, zero for unknown categories.
	StatsFor(category common.ObjectCategory) PoolStats

	// Info returns a diagnostics snapshot of every pool.
	//
	// Returns:
	//   - MemoryInfo: the snapshot.
	Info() MemoryInfo

	// PressureRatio reports current usage against the warning threshold.
	//
	// Returns:
	//   - float64: the ratio, 1.0 meaning usage equals the threshold.
	PressureRatio() float64
}

type handleKey struct {
	level    lod.Level
	category common.ObjectCategory
}

type managerImpl struct {
	mu                *sync.Mutex
	pools             map[common.ObjectCategory]*typedPool
	sink              upload.Sink
	handles           map[handleKey]upload.BufferHandle
	gcInterval        time.Duration
	ageThreshold      time.Duration
	pressureThreshold float64
	warnBytes         int
	lastGC            time.Time
	clock             func() time.Time
}

var _ Manager = &managerImpl{}

// NewManager builds a manager with one pool per object category, a
// NullSink, and default limits.
//
// Parameters:
//   - options: optional settings applied in order.
//
// Returns:
//   - Manager: the new manager.
func NewManager(options ...ManagerOption) Manager {
	m := &managerImpl{
		mu:                &sync.Mutex{},
		pools:             make(map[common.ObjectCategory]*typedPool),
		sink:              upload.NewNullSink(),
		handles:           make(map[handleKey]upload.BufferHandle),
		gcInterval:        DefaultGCInterval,
		ageThreshold:      DefaultAgeThreshold,
		pressureThreshold: DefaultPressureThreshold,
		clock:             time.Now,
	}
	tick := func() time.Time { return m.clock() }
	for _, category := range common.Categories() {
		m.pools[category] = newTypedPool(category, DefaultMaxObjectsPerPool, DefaultMaxBytesPerPool, tick)
	}
	for _, opt := range options {
		opt(m)
	}
	if m.warnBytes <= 0 {
		total := 0
		for _, pool := range m.pools {
			total += pool.maxBytes
		}
		m.warnBytes = total * 3 / 4
	}
	m.lastGC = m.clock()
	return m
}

func (m *managerImpl) Allocate(category common.ObjectCategory, size int) (*PooledObject, bool) {
	pool, ok := m.pools[category]
	if !ok || size < 0 {
		return nil, false
	}
	return pool.allocate(size)
}

func (m *managerImpl) Deallocate(category common.ObjectCategory, objectID uint64) bool {
	pool, ok := m.pools[category]
	if !ok {
		return false
	}
	return pool.deallocate(objectID)
}

func (m *managerImpl) CleanupOldObjects(maxAge time.Duration) int {
	freed := 0
	for _, category := range common.Categories() {
		freed += m.pools[category].cleanupOldObjects(maxAge)
	}
	return freed
}

func (m *managerImpl) Maintain() int {
	m.mu.Lock()
	now := m.clock()
	pressure := m.pressureLocked()
	due := now.Sub(m.lastGC) >= m.gcInterval
	underPressure := pressure >= m.pressureThreshold
	if !due && !underPressure {
		m.mu.Unlock()
		return 0
	}
	m.lastGC = now
	age := m.ageThreshold
	if underPressure {
		// Under pressure anything idle is reclaimable, not just the old.
		age = 0
	}
	m.mu.Unlock()

	freed := m.CleanupOldObjects(age)
	instrumentGCRun()
	if underPressure {
		log.Printf("[Pool] memory pressure %.2f, freed %d idle objects", pressure, freed)
	}
	return freed
}

func (m *managerImpl) HandleFor(level lod.Level, category common.ObjectCategory) (upload.BufferHandle, error) {
	key := handleKey{level: level, category: category}
	m.mu.Lock()
	if handle, ok := m.handles[key]; ok {
		m.mu.Unlock()
		return handle, nil
	}
	m.mu.Unlock()

	handle, err := m.sink.Acquire(level, category)
	if err != nil {
		return upload.NilBufferHandle, fmt.Errorf("acquire %s %s: %w", category, level, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.handles[key]; ok {
		// Another caller acquired the slot concurrently; keep theirs.
		m.sink.Release(handle)
		return existing, nil
	}
	m.handles[key] = handle
	return handle, nil
}

func (m *managerImpl) ReleaseHandles() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, handle := range m.handles {
		m.sink.Release(handle)
		delete(m.handles, key)
	}
}

func (m *managerImpl) Stats() PoolStats {
	var total PoolStats
	for _, category := range common.Categories() {
		total = total.add(m.pools[category].statsSnapshot())
	}
	return total
}

func (m *managerImpl) StatsFor(category common.ObjectCategory) PoolStats {
	pool, ok := m.pools[category]
	if !ok {
		return PoolStats{}
	}
	return pool.statsSnapshot()
}

func (m *managerImpl) Info() MemoryInfo {
	info := MemoryInfo{Pools: make(map[common.ObjectCategory]PoolInfo, len(m.pools))}
	for category, pool := range m.pools {
		snap := pool.snapshot()
		info.Pools[category] = snap
		info.TotalBytes += snap.Bytes
	}
	m.mu.Lock()
	info.WarnBytes = m.warnBytes
	m.mu.Unlock()
	if info.WarnBytes > 0 {
		info.PressureRatio = float64(info.TotalBytes) / float64(info.WarnBytes)
	}
	return info
}

func (m *managerImpl) PressureRatio() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pressureLocked()
}

// pressureLocked computes usage against the warning threshold. Callers
// hold m.mu; the per-pool locks nest inside it.
func (m *managerImpl) pressureLocked() float64 {
	if m.warnBytes <= 0 {
		return 0
	}
	total := 0
	for _, pool := range m.pools {
		total += pool.currentBytes()
	}
	return float64(total) / float64(m.warnBytes)
}
