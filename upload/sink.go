// package upload defines the boundary between the visibility subsystem and
// whatever performs GPU uploads. The subsystem requests ready-to-bind
// buffer handles per detail level and object category; it never uploads
// geometry itself.
package upload

import (
	"errors"
	"sync"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/lod"
)

// BufferHandle identifies uploaded geometry owned by a Sink. Handles are
// opaque to everything but the sink that issued them.
type BufferHandle uint64

// NilBufferHandle is the zero handle, never issued by a Sink.
const NilBufferHandle BufferHandle = 0

// ErrNoGeometry is returned when a requested slot has no geometry to
// upload, such as the culled level.
var ErrNoGeometry = errors.New("no geometry for requested level")

// Sink issues and reclaims geometry buffer handles.
type Sink interface {
	// Acquire returns a ready-to-bind buffer handle for a detail level and
	// object category, uploading the geometry if this is the first request
	// for the slot.
	//
	// Parameters:
	//   - level: the rendered detail level.
	//   - category: the object category.
	//
	// Returns:
	//   - BufferHandle: the handle, NilBufferHandle on error.
	//   - error: ErrNoGeometry for slots without geometry, or the upload
	//     failure.
	Acquire(level lod.Level, category common.ObjectCategory) (BufferHandle, error)

	// Release returns a handle to the sink. The handle must not be used
	// afterward. Unknown handles are ignored.
	//
	// Parameters:
	//   - handle: the handle to reclaim.
	Release(handle BufferHandle)
}

// NullSink is a Sink that uploads nothing and issues synthetic handles.
// Hosts without a GPU use it directly, and tests use its counters to
// observe sink traffic.
type NullSink struct {
	mu       *sync.Mutex
	next     BufferHandle
	acquired int
	released int
	active   map[BufferHandle]struct{}
}

var _ Sink = &NullSink{}

// NewNullSink builds an empty NullSink.
//
// Returns:
//   - *NullSink: the new sink.
func NewNullSink() *NullSink {
	return &NullSink{
		mu:     &sync.Mutex{},
		active: make(map[BufferHandle]struct{}),
	}
}

func (n *NullSink) Acquire(level lod.Level, category common.ObjectCategory) (BufferHandle, error) {
	if !level.Rendered() {
		return NilBufferHandle, ErrNoGeometry
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.next++
	n.acquired++
	n.active[n.next] = struct{}{}
	return n.next, nil
}

func (n *NullSink) Release(handle BufferHandle) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.active[handle]; !ok {
		return
	}
	delete(n.active, handle)
	n.released++
}

// Acquired reports how many handles have been issued.
//
// Returns:
//   - int: the acquire count.
func (n *NullSink) Acquired() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.acquired
}

// Released reports how many handles have been reclaimed.
//
// Returns:
//   - int: the release count.
func (n *NullSink) Released() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.released
}

// Active reports how many issued handles remain outstanding.
//
// Returns:
//   - int: the outstanding handle count.
func (n *NullSink) Active() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.active)
}
