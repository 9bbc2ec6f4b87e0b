package cpu

import (
	"fmt"

	"github.com/born-ml/attend/internal/tensor"
)

// SumDim sums tensor elements along the specified dimension.
//
// Parameters:
//   - dim: dimension to reduce (supports negative indexing: -1 = last dim)
//   - keepDim: if true, keep the reduced dimension with size 1; if false, remove it
//
// Example:
//
//	x := tensor.Zeros[float32](tensor.Shape{2, 3, 4}, backend)
//	y := backend.SumDim(x.Raw(), -1, true)   // shape: [2, 3, 1]
//	z := backend.SumDim(x.Raw(), -1, false)  // shape: [2, 3]
func (cpu *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return cpu.reduce("sumdim", x, dim, keepDim, reduceSum)
}

// MaxDim takes the maximum of tensor elements along the specified dimension.
func (cpu *CPUBackend) MaxDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return cpu.reduce("maxdim", x, dim, keepDim, reduceMax)
}

type reduceOp int

const (
	reduceSum reduceOp = iota
	reduceMax
)

func (cpu *CPUBackend) reduce(op string, x *tensor.RawTensor, dim int, keepDim bool, kind reduceOp) *tensor.RawTensor {
	shape := x.Shape()
	dim = normalizeDim(op, shape, dim)

	result := cpu.newResult(op, reducedShape(shape, dim, keepDim), x.DType())
	outer, inner := splitAt(shape, dim)
	n := shape[dim]

	switch x.DType() {
	case tensor.Float32:
		reduceInto(cpu, result.AsFloat32(), x.AsFloat32(), outer, n, inner, kind)
	case tensor.Float64:
		reduceInto(cpu, result.AsFloat64(), x.AsFloat64(), outer, n, inner, kind)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s (only float32/float64 supported)", op, x.DType()))
	}

	return result
}

// reducedShape is shape with dim set to 1 (keepDim) or removed.
func reducedShape(shape tensor.Shape, dim int, keepDim bool) tensor.Shape {
	if keepDim {
		out := shape.Clone()
		out[dim] = 1
		return out
	}
	out := make(tensor.Shape, 0, len(shape)-1)
	for i, d := range shape {
		if i != dim {
			out = append(out, d)
		}
	}
	return out
}

func reduceInto[T float](cpu *CPUBackend, dst, src []T, outer, n, inner int, kind reduceOp) {
	forRows(outer, inner, n, cpu.parallel, func(o, i int) {
		base := o*n*inner + i
		acc := src[base]
		for k := 1; k < n; k++ {
			v := src[base+k*inner]
			switch kind {
			case reduceSum:
				acc += v
			case reduceMax:
				if v > acc {
					acc = v
				}
			}
		}
		dst[o*inner+i] = acc
	})
}
