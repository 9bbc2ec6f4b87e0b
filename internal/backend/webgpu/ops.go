//go:build windows

package webgpu

import (
	"k8s.io/klog/v2"

	"github.com/born-ml/attend/internal/tensor"
)

// MatMul multiplies [M, K] @ [K, N] on the GPU when the product is float32
// and large enough, and on the CPU otherwise.
func (b *Backend) MatMul(a, other *tensor.RawTensor) *tensor.RawTensor {
	if !b.offload(a, other, 2) {
		return b.CPUBackend.MatMul(a, other)
	}

	m, k, n := a.Shape()[0], a.Shape()[1], other.Shape()[1]
	result, err := tensor.NewRaw(tensor.Shape{m, n}, tensor.Float32, tensor.CPU)
	if err != nil {
		panic("webgpu: MatMul: " + err.Error())
	}

	//nolint:gosec // G115: dimensions are positive
	d := matmulDispatch{
		shaderName: "matmul",
		shaderCode: matmulShader,
		params:     []uint32{uint32(m), uint32(k), uint32(n)},
		groups:     [3]uint32{ceilDiv(n, 16), ceilDiv(m, 16), 1},
	}
	if err := b.run(d, a, other, result); err != nil {
		klog.Warningf("webgpu: MatMul %v @ %v failed, using CPU: %v", a.Shape(), other.Shape(), err)
		return b.CPUBackend.MatMul(a, other)
	}
	return result
}

// BatchMatMul multiplies the trailing matrices of 3D or 4D tensors on the
// GPU, flattening leading dimensions into one batch axis.
func (b *Backend) BatchMatMul(a, other *tensor.RawTensor) *tensor.RawTensor {
	ndim := len(a.Shape())
	if ndim < 3 || !b.offload(a, other, ndim) {
		return b.CPUBackend.BatchMatMul(a, other)
	}

	aShape, oShape := a.Shape(), other.Shape()
	m, k, n := aShape[ndim-2], aShape[ndim-1], oShape[ndim-1]
	batch := 1
	for i := 0; i < ndim-2; i++ {
		batch *= aShape[i]
	}

	outShape := aShape.Clone()
	outShape[ndim-1] = n
	result, err := tensor.NewRaw(outShape, tensor.Float32, tensor.CPU)
	if err != nil {
		panic("webgpu: BatchMatMul: " + err.Error())
	}

	//nolint:gosec // G115: dimensions are positive
	d := matmulDispatch{
		shaderName: "batchMatMul",
		shaderCode: batchMatMulShader,
		params:     []uint32{uint32(batch), uint32(m), uint32(k), uint32(n)},
		groups:     [3]uint32{ceilDiv(n, 8), ceilDiv(m, 8), uint32(batch)},
	}
	if err := b.run(d, a, other, result); err != nil {
		klog.Warningf("webgpu: BatchMatMul %v @ %v failed, using CPU: %v", aShape, oShape, err)
		return b.CPUBackend.BatchMatMul(a, other)
	}
	return result
}

// offload reports whether a product of two rank-ndim tensors goes to the GPU.
// Shape errors are left to the CPU kernels, which panic with a description.
func (b *Backend) offload(a, other *tensor.RawTensor, ndim int) bool {
	if a.DType() != tensor.Float32 || other.DType() != tensor.Float32 {
		return false
	}
	aShape, oShape := a.Shape(), other.Shape()
	if len(aShape) != ndim || len(oShape) != ndim || aShape[ndim-1] != oShape[ndim-2] {
		return false
	}
	for i := 0; i < ndim-2; i++ {
		if aShape[i] != oShape[i] {
			return false
		}
	}
	return aShape.NumElements()*oShape[ndim-1] >= b.minOffloadFlops
}
