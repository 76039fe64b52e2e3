// package geometry_pool manages typed pools of reusable render-resource
// objects. Each object category has its own capacity and memory ceiling, so
// pressure in one category never starves another, and deallocated objects
// are kept for reuse instead of being destroyed.
package geometry_pool

import (
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-vis/common"
)

// PoolStats counts pool traffic since construction.
type PoolStats struct {
	// CacheHits is the number of allocations served by reusing an object.
	CacheHits uint64
	// CacheMisses is the number of allocations that constructed an object.
	CacheMisses uint64
	// TotalAllocations is the number of objects ever constructed.
	TotalAllocations uint64
	// TotalFreed is the number of objects permanently destroyed by cleanup.
	TotalFreed uint64
	// FailedAllocations is the number of allocations refused at capacity.
	FailedAllocations uint64
}

func (s PoolStats) add(other PoolStats) PoolStats {
	return PoolStats{
		CacheHits:         s.CacheHits + other.CacheHits,
		CacheMisses:       s.CacheMisses + other.CacheMisses,
		TotalAllocations:  s.TotalAllocations + other.TotalAllocations,
		TotalFreed:        s.TotalFreed + other.TotalFreed,
		FailedAllocations: s.FailedAllocations + other.FailedAllocations,
	}
}

// PooledObject is one reusable render-resource slot. The pool owns it; the
// caller may use Payload between Allocate and Deallocate, never after.
type PooledObject struct {
	// ID identifies the object within its pool.
	ID uint64
	// Size is the usable payload size in bytes.
	Size int
	// CreatedAt is when the object was constructed.
	CreatedAt time.Time
	// LastUsed is when the object last changed hands.
	LastUsed time.Time
	// UseCount is how many allocations the object has served.
	UseCount uint64
	// Payload is the object's staging memory.
	Payload []byte
}

// typedPool is the per-category pool. Reusable objects queue in FIFO order
// so long-idle objects surface first and age out predictably.
type typedPool struct {
	mu         *sync.Mutex
	category   common.ObjectCategory
	objects    map[uint64]*PooledObject
	available  []uint64
	inUse      map[uint64]struct{}
	nextID     uint64
	maxObjects int
	maxBytes   int
	bytes      int
	stats      PoolStats
	now        func() time.Time
}

func newTypedPool(category common.ObjectCategory, maxObjects, maxBytes int, now func() time.Time) *typedPool {
	return &typedPool{
		mu:         &sync.Mutex{},
		category:   category,
		objects:    make(map[uint64]*PooledObject),
		inUse:      make(map[uint64]struct{}),
		maxObjects: maxObjects,
		maxBytes:   maxBytes,
		now:        now,
	}
}

// allocate serves a request for size bytes, reusing the oldest available
// object when there is one and constructing otherwise. Returns false when
// the pool is at its object or byte ceiling.
func (p *typedPool) allocate(size int) (*PooledObject, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.available) > 0 {
		id := p.available[0]
		obj := p.objects[id]
		grown := size - obj.Size
		if grown > 0 && p.bytes+grown > p.maxBytes {
			p.stats.FailedAllocations++
			instrumentFailure(p.category)
			return nil, false
		}
		p.available = p.available[1:]
		if grown > 0 {
			obj.Payload = make([]byte, size)
			obj.Size = size
			p.bytes += grown
			instrumentBytes(p.category, p.bytes)
		}
		obj.UseCount++
		obj.LastUsed = p.now()
		p.inUse[id] = struct{}{}
		p.stats.CacheHits++
		instrumentAllocation(p.category, true)
		return obj, true
	}

	if len(p.objects) >= p.maxObjects || p.bytes+size > p.maxBytes {
		p.stats.FailedAllocations++
		instrumentFailure(p.category)
		return nil, false
	}

	p.nextID++
	now := p.now()
	obj := &PooledObject{
		ID:        p.nextID,
		Size:      size,
		CreatedAt: now,
		LastUsed:  now,
		UseCount:  1,
		Payload:   make([]byte, size),
	}
	p.objects[obj.ID] = obj
	p.inUse[obj.ID] = struct{}{}
	p.bytes += size
	p.stats.CacheMisses++
	p.stats.TotalAllocations++
	instrumentAllocation(p.category, false)
	instrumentBytes(p.category, p.bytes)
	return obj, true
}

// deallocate moves an object back to the available queue for reuse.
func (p *typedPool) deallocate(objectID uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.inUse[objectID]; !ok {
		return false
	}
	delete(p.inUse, objectID)
	p.objects[objectID].LastUsed = p.now()
	p.available = append(p.available, objectID)
	return true
}

// cleanupOldObjects permanently frees available objects idle longer than
// maxAge and reports how many were destroyed.
func (p *typedPool) cleanupOldObjects(maxAge time.Duration) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	freed := 0
	kept := p.available[:0]
	for _, id := range p.available {
		obj := p.objects[id]
		if now.Sub(obj.LastUsed) > maxAge {
			delete(p.objects, id)
			p.bytes -= obj.Size
			p.stats.TotalFreed++
			freed++
			continue
		}
		kept = append(kept, id)
	}
	p.available = kept
	if freed > 0 {
		instrumentFreed(p.category, freed)
		instrumentBytes(p.category, p.bytes)
	}
	return freed
}

func (p *typedPool) snapshot() PoolInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PoolInfo{
		Category:       p.category,
		ObjectCount:    len(p.objects),
		AvailableCount: len(p.available),
		InUseCount:     len(p.inUse),
		Bytes:          p.bytes,
		MaxObjects:     p.maxObjects,
		MaxBytes:       p.maxBytes,
		Stats:          p.stats,
	}
}

func (p *typedPool) currentBytes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bytes
}

func (p *typedPool) statsSnapshot() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}
