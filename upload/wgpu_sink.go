package upload

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/geometry"
	"github.com/Carmen-Shannon/oxy-vis/lod"
	"github.com/cogentcore/webgpu/wgpu"
)

// MeshBuffers is the uploaded GPU state behind a handle.
type MeshBuffers struct {
	Vertex     *wgpu.Buffer
	Index      *wgpu.Buffer
	IndexCount int
}

// WGPUSink is a Sink that uploads variant meshes into WebGPU vertex and
// index buffers. Each (level, category) slot is uploaded at most once per
// outstanding handle; releasing the handle frees the buffers.
type WGPUSink interface {
	Sink

	// Buffers returns the GPU buffers behind a handle, for the render
	// submission layer to bind.
	//
	// Parameters:
	//   - handle: a handle issued by Acquire.
	//
	// Returns:
	//   - MeshBuffers: the uploaded buffers.
	//   - bool: false when the handle is unknown.
	Buffers(handle BufferHandle) (MeshBuffers, bool)

	// Close releases every GPU buffer the sink still holds. The sink must
	// not be used afterward.
	Close()
}

type wgpuSinkImpl struct {
	mu      *sync.Mutex
	device  *wgpu.Device
	queue   *wgpu.Queue
	library *geometry.Library
	buffers map[BufferHandle]MeshBuffers
	next    BufferHandle
}

var _ WGPUSink = &wgpuSinkImpl{}

// NewWGPUSink builds a sink uploading meshes from the given library.
//
// Parameters:
//   - device: the WebGPU device buffers are created on.
//   - queue: the queue uploads are written through.
//   - library: the variant meshes to upload on demand.
//
// Returns:
//   - WGPUSink: the new sink.
func NewWGPUSink(device *wgpu.Device, queue *wgpu.Queue, library *geometry.Library) WGPUSink {
	return &wgpuSinkImpl{
		mu:      &sync.Mutex{},
		device:  device,
		queue:   queue,
		library: library,
		buffers: make(map[BufferHandle]MeshBuffers),
	}
}

func (s *wgpuSinkImpl) Acquire(level lod.Level, category common.ObjectCategory) (BufferHandle, error) {
	mesh, ok := s.library.Variant(category, level)
	if !ok {
		return NilBufferHandle, fmt.Errorf("%s %s: %w", category, level, ErrNoGeometry)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	vertexBuf, err := s.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            mesh.Name + " Vertex Buffer",
		Size:             uint64(len(mesh.VertexBytes())),
		Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return NilBufferHandle, fmt.Errorf("create vertex buffer: %w", err)
	}
	s.queue.WriteBuffer(vertexBuf, 0, mesh.VertexBytes())

	indexBuf, err := s.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            mesh.Name + " Index Buffer",
		Size:             uint64(len(mesh.IndexBytes())),
		Usage:            wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		vertexBuf.Release()
		return NilBufferHandle, fmt.Errorf("create index buffer: %w", err)
	}
	s.queue.WriteBuffer(indexBuf, 0, mesh.IndexBytes())

	s.next++
	s.buffers[s.next] = MeshBuffers{
		Vertex:     vertexBuf,
		Index:      indexBuf,
		IndexCount: len(mesh.Indices),
	}
	return s.next, nil
}

func (s *wgpuSinkImpl) Release(handle BufferHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	buffers, ok := s.buffers[handle]
	if !ok {
		return
	}
	buffers.Vertex.Release()
	buffers.Index.Release()
	delete(s.buffers, handle)
}

func (s *wgpuSinkImpl) Buffers(handle BufferHandle) (MeshBuffers, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	buffers, ok := s.buffers[handle]
	return buffers, ok
}

func (s *wgpuSinkImpl) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for handle, buffers := range s.buffers {
		buffers.Vertex.Release()
		buffers.Index.Release()
		delete(s.buffers, handle)
	}
}

// NewHeadlessDevice acquires a WebGPU device without a window surface, for
// hosts that upload geometry but present elsewhere. Pass forceFallback to
// use the software adapter.
//
// Parameters:
//   - forceFallback: request the fallback (software) adapter.
//
// Returns:
//   - *wgpu.Device: the device.
//   - *wgpu.Queue: the device's queue.
//   - error: error if no adapter or device is available.
func NewHeadlessDevice(forceFallback bool) (*wgpu.Device, *wgpu.Queue, error) {
	instance := wgpu.CreateInstance(nil)
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallback,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("request adapter: %w", err)
	}
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Upload Device",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("request device: %w", err)
	}
	return device, device.GetQueue(), nil
}
