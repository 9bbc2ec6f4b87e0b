package cpu

import (
	"fmt"

	"github.com/born-ml/attend/internal/tensor"
)

// Reshape returns a copy of t under newShape.
// The element count must not change.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	view, err := t.WithShape(newShape)
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return view.Clone()
}

// Transpose permutes the dimensions of t. With no axes the dimensions are reversed.
//
// Example:
//
//	x := tensor.Zeros[float32](tensor.Shape{2, 3, 4}, backend)
//	y := backend.Transpose(x.Raw(), 0, 2, 1) // shape: [2, 4, 3]
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	ndim := len(shape)

	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	if len(axes) != ndim {
		panic(fmt.Sprintf("transpose: got %d axes for %dD tensor", len(axes), ndim))
	}

	seen := make([]bool, ndim)
	perm := make([]int, ndim)
	outShape := make(tensor.Shape, ndim)
	for i, a := range axes {
		a = normalizeDim("transpose", shape, a)
		if seen[a] {
			panic(fmt.Sprintf("transpose: repeated axis %d in %v", a, axes))
		}
		seen[a] = true
		perm[i] = a
		outShape[i] = shape[a]
	}

	// inStrides[i] is the input stride walked by output axis i.
	srcStrides := t.Strides()
	inStrides := make([]int, ndim)
	for i, a := range perm {
		inStrides[i] = srcStrides[a]
	}

	result := cpu.newResult("transpose", outShape, t.DType())
	outStrides := outShape.ComputeStrides()

	switch t.DType() {
	case tensor.Float32:
		gather(result.AsFloat32(), t.AsFloat32(), outStrides, inStrides)
	case tensor.Float64:
		gather(result.AsFloat64(), t.AsFloat64(), outStrides, inStrides)
	default:
		panic(fmt.Sprintf("transpose: unsupported dtype %s", t.DType()))
	}

	return result
}

// Expand broadcasts x to newShape, materialising repeated values.
//
// Follows NumPy broadcasting: dimensions of size 1 (or missing leading
// dimensions) are repeated, all others must match.
func (cpu *CPUBackend) Expand(x *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	xShape := x.Shape()
	if len(newShape) < len(xShape) {
		panic(fmt.Sprintf("expand: target shape %v has fewer dimensions than %v", newShape, xShape))
	}
	offset := len(newShape) - len(xShape)
	for i, d := range xShape {
		if d != 1 && d != newShape[offset+i] {
			panic(fmt.Sprintf("expand: cannot broadcast %v to %v", xShape, newShape))
		}
	}

	result := cpu.newResult("expand", newShape, x.DType())
	outStrides := newShape.ComputeStrides()
	inStrides := computeBroadcastStridesForShape(xShape, newShape)

	switch x.DType() {
	case tensor.Float32:
		gather(result.AsFloat32(), x.AsFloat32(), outStrides, inStrides)
	case tensor.Float64:
		gather(result.AsFloat64(), x.AsFloat64(), outStrides, inStrides)
	default:
		panic(fmt.Sprintf("expand: unsupported dtype %s", x.DType()))
	}

	return result
}

// gather fills dst by reading src through inStrides for each output coordinate.
func gather[T float](dst, src []T, outStrides, inStrides []int) {
	for i := range dst {
		dst[i] = src[computeFlatIndex(i, outStrides, inStrides)]
	}
}

// Cat concatenates tensors along the specified dimension.
//
// All tensors must have the same shape except along the concatenation dimension.
// Supports negative dim indexing (-1 = last dimension).
//
// Example:
//
//	a := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	b := tensor.Zeros[float32](tensor.Shape{2, 5}, backend)
//	c := backend.Cat([]*tensor.RawTensor{a.Raw(), b.Raw()}, 1) // Shape: [2, 8]
func (cpu *CPUBackend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("cat: at least one tensor required")
	}

	shape := tensors[0].Shape()
	ndim := len(shape)
	dtype := tensors[0].DType()
	dim = normalizeDim("cat", shape, dim)

	totalDim := 0
	for i, t := range tensors {
		tShape := t.Shape()
		if len(tShape) != ndim {
			panic(fmt.Sprintf("cat: tensor %d has %d dimensions, expected %d", i, len(tShape), ndim))
		}
		if t.DType() != dtype {
			panic(fmt.Sprintf("cat: tensor %d has dtype %s, expected %s", i, t.DType(), dtype))
		}

		for d := 0; d < ndim; d++ {
			if d == dim {
				totalDim += tShape[d]
			} else if tShape[d] != shape[d] {
				panic(fmt.Sprintf("cat: tensor %d dimension %d is %d, expected %d", i, d, tShape[d], shape[d]))
			}
		}
	}

	outShape := shape.Clone()
	outShape[dim] = totalDim
	result := cpu.newResult("cat", outShape, dtype)

	switch dtype {
	case tensor.Float32:
		catInto(result.AsFloat32(), tensors, dim, (*tensor.RawTensor).AsFloat32)
	case tensor.Float64:
		catInto(result.AsFloat64(), tensors, dim, (*tensor.RawTensor).AsFloat64)
	default:
		panic(fmt.Sprintf("cat: unsupported dtype %s", dtype))
	}

	return result
}

// catInto copies each input's contiguous [dim:] blocks into place in dst.
func catInto[T float](dst []T, tensors []*tensor.RawTensor, dim int, data func(*tensor.RawTensor) []T) {
	outer, _ := splitAt(tensors[0].Shape(), dim)

	blocks := make([]int, len(tensors))
	rowLen := 0
	for i, t := range tensors {
		_, inner := splitAt(t.Shape(), dim)
		blocks[i] = t.Shape()[dim] * inner
		rowLen += blocks[i]
	}

	for o := 0; o < outer; o++ {
		off := o * rowLen
		for i, t := range tensors {
			src := data(t)
			copy(dst[off:off+blocks[i]], src[o*blocks[i]:(o+1)*blocks[i]])
			off += blocks[i]
		}
	}
}
