//go:build !windows

package webgpu

import (
	"runtime"

	"github.com/pkg/errors"

	"github.com/born-ml/attend/internal/backend/cpu"
	"github.com/born-ml/attend/internal/tensor"
)

// Backend is the WebGPU backend. On this platform New always fails and
// callers fall back to the CPU backend.
type Backend struct {
	*cpu.CPUBackend
}

// New returns ErrUnavailable: the WebGPU bindings are only built for windows.
func New() (*Backend, error) {
	return nil, errors.Wrapf(ErrUnavailable, "unsupported platform %s", runtime.GOOS)
}

// IsAvailable reports false on this platform.
func IsAvailable() bool {
	return false
}

// SetMinOffloadFlops is a no-op on this platform.
func (b *Backend) SetMinOffloadFlops(int) {}

// Release is a no-op on this platform.
func (b *Backend) Release() {}

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
	return "unavailable"
}
