//go:build windows

// Package webgpu implements a hybrid backend: matrix products run as WGSL
// compute shaders through go-webgpu, every other kernel runs on the CPU.
// Tensors stay host-resident between operations.
package webgpu

import (
	"fmt"
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/attend/internal/backend/cpu"
	"github.com/born-ml/attend/internal/tensor"
)

// Backend offloads MatMul and BatchMatMul to the GPU and inherits the
// remaining tensor.Backend methods from the embedded CPU backend.
type Backend struct {
	*cpu.CPUBackend

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	// Shader and pipeline cache
	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline
	mu        sync.RWMutex

	// submitMu serialises queue submission and readback.
	submitMu sync.Mutex

	bufferPool      *BufferPool
	minOffloadFlops int
}

// New creates a new WebGPU backend.
// Returns an error wrapping ErrUnavailable if WebGPU cannot be initialised.
func New() (backend *Backend, err error) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			backend = nil
			err = errors.Wrapf(ErrUnavailable, "native library: %v", r)
		}
	}()

	if initErr := wgpu.Init(); initErr != nil {
		return nil, errors.Wrapf(ErrUnavailable, "init: %v", initErr)
	}

	instance, err := wgpu.CreateInstance(nil)
	if err != nil {
		return nil, errors.Wrapf(ErrUnavailable, "create instance: %v", err)
	}

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		instance.Release()
		return nil, errors.Wrapf(ErrUnavailable, "request adapter: %v", err)
	}

	device, err := adapter.RequestDevice(nil)
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, errors.Wrapf(ErrUnavailable, "request device: %v", err)
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, errors.Wrap(ErrUnavailable, "no default queue")
	}

	klog.V(1).Infof("webgpu: device ready")

	return &Backend{
		CPUBackend:      cpu.New(),
		instance:        instance,
		adapter:         adapter,
		device:          device,
		queue:           queue,
		shaders:         make(map[string]*wgpu.ShaderModule),
		pipelines:       make(map[string]*wgpu.ComputePipeline),
		bufferPool:      NewBufferPool(device),
		minOffloadFlops: DefaultMinOffloadFlops,
	}, nil
}

// SetMinOffloadFlops sets the smallest product size sent to the GPU.
// Zero offloads every float32 product.
func (b *Backend) SetMinOffloadFlops(n int) {
	b.minOffloadFlops = n
}

// Release releases all WebGPU resources.
// Must be called when the backend is no longer needed.
func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bufferPool != nil {
		b.bufferPool.Clear()
		b.bufferPool = nil
	}

	for _, p := range b.pipelines {
		p.Release()
	}
	b.pipelines = nil

	for _, s := range b.shaders {
		s.Release()
	}
	b.shaders = nil

	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "WebGPU"
}

// Device returns the compute device.
func (b *Backend) Device() tensor.Device {
	return tensor.WebGPU
}

// PoolStats reports buffer pool usage.
func (b *Backend) PoolStats() string {
	allocated, released, hits, misses, pooled := b.bufferPool.Stats()
	return fmt.Sprintf("allocated=%d released=%d hits=%d misses=%d pooled=%d",
		allocated, released, hits, misses, pooled)
}

// IsAvailable checks if WebGPU is available on this system.
func IsAvailable() (available bool) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	if err := wgpu.Init(); err != nil {
		return false
	}
	instance, err := wgpu.CreateInstance(nil)
	if err != nil {
		return false
	}
	defer instance.Release()

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return false
	}
	adapter.Release()

	return true
}
