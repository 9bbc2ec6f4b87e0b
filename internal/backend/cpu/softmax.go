package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/attend/internal/parallel"
	"github.com/born-ml/attend/internal/tensor"
)

// MaskedSoftmax normalises x along dim over the positions where mask != 0.
//
// mask is broadcast to x's shape. Masked positions get exactly 0, and a
// row whose mask is all zero yields an all-zero row instead of NaN.
// The maximum is taken over valid positions only, so large masked
// values cannot underflow the valid ones.
func (cpu *CPUBackend) MaskedSoftmax(x, mask *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	dim = normalizeDim("maskedSoftmax", shape, dim)

	if x.DType() != mask.DType() {
		panic(fmt.Sprintf("maskedSoftmax: dtype mismatch %s vs %s", x.DType(), mask.DType()))
	}
	bShape, _, err := tensor.BroadcastShapes(mask.Shape(), shape)
	if err != nil || !bShape.Equal(shape) {
		panic(fmt.Sprintf("maskedSoftmax: mask %v does not broadcast to %v", mask.Shape(), shape))
	}

	result := cpu.newResult("maskedSoftmax", shape, x.DType())
	idx := newBroadcastIndex(mask.Shape(), shape)
	outer, inner := splitAt(shape, dim)
	n := shape[dim]

	switch x.DType() {
	case tensor.Float32:
		maskedSoftmaxInto(cpu, result.AsFloat32(), x.AsFloat32(), mask.AsFloat32(), idx, outer, n, inner)
	case tensor.Float64:
		maskedSoftmaxInto(cpu, result.AsFloat64(), x.AsFloat64(), mask.AsFloat64(), idx, outer, n, inner)
	default:
		panic(fmt.Sprintf("maskedSoftmax: unsupported dtype %s", x.DType()))
	}

	return result
}

func maskedSoftmaxInto[T float](cpu *CPUBackend, dst, src, mask []T, idx broadcastIndex, outer, n, inner int) {
	forRows(outer, inner, n, cpu.parallel, func(o, i int) {
		base := o*n*inner + i

		maxVal := math.Inf(-1)
		valid := 0
		for k := 0; k < n; k++ {
			p := base + k*inner
			if mask[idx.at(p)] == 0 {
				continue
			}
			valid++
			maxVal = math.Max(maxVal, float64(src[p]))
		}
		if valid == 0 {
			return
		}

		var sum float64
		for k := 0; k < n; k++ {
			p := base + k*inner
			if mask[idx.at(p)] == 0 {
				continue
			}
			e := math.Exp(float64(src[p]) - maxVal)
			dst[p] = T(e)
			sum += e
		}
		for k := 0; k < n; k++ {
			p := base + k*inner
			dst[p] = T(float64(dst[p]) / sum)
		}
	})
}

// forRows runs f over every (outer, inner) row of a reduction of length n.
// The chunk size is scaled by n so that tiny tensors stay sequential.
func forRows(outer, inner, n int, cfg parallel.Config, f func(o, i int)) {
	cfg = cfg.WithMinChunkSize(cfg.MinChunkSize / max(n, 1))
	parallel.ForBatch(outer, inner, f, cfg)
}
