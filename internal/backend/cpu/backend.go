// Package cpu implements the CPU backend: pure Go kernels with gonum BLAS
// matrix products and row-parallel reductions.
package cpu

import (
	"fmt"

	"github.com/born-ml/attend/internal/parallel"
	"github.com/born-ml/attend/internal/tensor"
)

// CPUBackend implements tensor operations on CPU.
//
// Kernels never modify their inputs and keep no state between calls, so a
// single backend value is safe for concurrent use.
type CPUBackend struct {
	device   tensor.Device
	parallel parallel.Config
}

// New creates a new CPU backend with the default parallel configuration.
func New() *CPUBackend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig creates a CPU backend with an explicit parallel configuration.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{
		device:   tensor.CPU,
		parallel: cfg,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Parallel returns the parallel configuration used by row- and batch-parallel kernels.
func (cpu *CPUBackend) Parallel() parallel.Config {
	return cpu.parallel
}

// newResult allocates a zeroed result tensor or panics with the op name.
func (cpu *CPUBackend) newResult(op string, shape tensor.Shape, dtype tensor.DataType) *tensor.RawTensor {
	result, err := tensor.NewRaw(shape, dtype, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", op, err))
	}
	return result
}

// float is the element constraint shared by all kernels.
type float interface {
	~float32 | ~float64
}

// normalizeDim resolves dim against shape or panics with the op name.
func normalizeDim(op string, shape tensor.Shape, dim int) int {
	d, err := shape.NormalizeDim(dim)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}
	return d
}

// splitAt returns the element counts before and after dim.
func splitAt(shape tensor.Shape, dim int) (outer, inner int) {
	outer, inner = 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	return outer, inner
}
