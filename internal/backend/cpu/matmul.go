package cpu

import (
	"fmt"

	"github.com/born-ml/attend/internal/tensor"
)

// MatMul performs matrix multiplication (M, K) @ (K, N) -> (M, N)
// through the gonum BLAS gemm kernels.
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape := a.Shape()
	bShape := b.Shape()

	if len(aShape) != 2 || len(bShape) != 2 {
		panic(fmt.Sprintf("matmul: only 2D tensors supported, got %dD and %dD", len(aShape), len(bShape)))
	}

	m, k := aShape[0], aShape[1]
	kAlt, n := bShape[0], bShape[1]
	if k != kAlt {
		panic(fmt.Sprintf("matmul: shape mismatch [%d,%d] @ [%d,%d]", m, k, kAlt, n))
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("matmul: dtype mismatch %s vs %s", a.DType(), b.DType()))
	}

	result := cpu.newResult("matmul", tensor.Shape{m, n}, a.DType())

	switch a.DType() {
	case tensor.Float32:
		gemmFloat32(result.AsFloat32(), a.AsFloat32(), b.AsFloat32(), m, k, n)
	case tensor.Float64:
		gemmFloat64(result.AsFloat64(), a.AsFloat64(), b.AsFloat64(), m, k, n)
	default:
		panic(fmt.Sprintf("matmul: unsupported dtype %s", a.DType()))
	}

	return result
}

// BatchMatMul performs batched matrix multiplication.
// Supports 3D and 4D tensors with batch dimensions.
//
// For 3D: [B, M, K] @ [B, K, N] -> [B, M, N]
// For 4D: [B, H, M, K] @ [B, H, K, N] -> [B, H, M, N]
//
// Batches are independent and run in parallel.
func (cpu *CPUBackend) BatchMatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape := a.Shape()
	bShape := b.Shape()
	ndim := len(aShape)

	if ndim < 3 {
		panic(fmt.Sprintf("BatchMatMul: inputs must be at least 3D, got %dD", ndim))
	}
	if len(bShape) != ndim {
		panic(fmt.Sprintf("BatchMatMul: dimension mismatch, got %dD and %dD", ndim, len(bShape)))
	}
	for i := 0; i < ndim-2; i++ {
		if aShape[i] != bShape[i] {
			panic(fmt.Sprintf("BatchMatMul: batch dimension mismatch at dim %d: %d vs %d", i, aShape[i], bShape[i]))
		}
	}

	m := aShape[ndim-2]
	k := aShape[ndim-1]
	n := bShape[ndim-1]
	if bShape[ndim-2] != k {
		panic(fmt.Sprintf("BatchMatMul: inner dimension mismatch: %d vs %d", k, bShape[ndim-2]))
	}

	batchSize := 1
	for i := 0; i < ndim-2; i++ {
		batchSize *= aShape[i]
	}

	outShape := make(tensor.Shape, ndim)
	copy(outShape, aShape[:ndim-2])
	outShape[ndim-2] = m
	outShape[ndim-1] = n

	result := cpu.newResult("BatchMatMul", outShape, a.DType())
	cfg := cpu.parallel.WithMinChunkSize(1)

	switch a.DType() {
	case tensor.Float32:
		c, av, bv := result.AsFloat32(), a.AsFloat32(), b.AsFloat32()
		forEachBatch(batchSize, m, k, n, cfg, func(cOff, aOff, bOff int) {
			gemmFloat32(c[cOff:cOff+m*n], av[aOff:aOff+m*k], bv[bOff:bOff+k*n], m, k, n)
		})
	case tensor.Float64:
		c, av, bv := result.AsFloat64(), a.AsFloat64(), b.AsFloat64()
		forEachBatch(batchSize, m, k, n, cfg, func(cOff, aOff, bOff int) {
			gemmFloat64(c[cOff:cOff+m*n], av[aOff:aOff+m*k], bv[bOff:bOff+k*n], m, k, n)
		})
	default:
		panic(fmt.Sprintf("BatchMatMul: unsupported dtype %s", a.DType()))
	}

	return result
}
