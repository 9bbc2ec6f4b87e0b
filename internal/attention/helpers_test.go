package attention_test

import (
	"math/rand"
	"testing"

	"github.com/born-ml/attend/internal/backend/cpu"
	"github.com/born-ml/attend/internal/tensor"
	"github.com/stretchr/testify/require"
)

type (
	cpuBackend = *cpu.CPUBackend
	f32Tensor  = tensor.Tensor[float32, cpuBackend]
)

func fromSlice(t *testing.T, backend cpuBackend, data []float32, shape ...int) *f32Tensor {
	t.Helper()
	x, err := tensor.FromSlice(data, tensor.Shape(shape), backend)
	require.NoError(t, err)
	return x
}

// randomSeq returns a [batch, length, width] tensor with values in [-1, 1).
func randomSeq(backend cpuBackend, rng *rand.Rand, batch, length, width int) *f32Tensor {
	return tensor.Uniform[float32](tensor.Shape{batch, length, width}, -1, 1, rng, backend)
}

// lengthMask returns a [batch, maxLen, 1] mask with lengths[b] leading ones.
func lengthMask(t *testing.T, backend cpuBackend, maxLen int, lengths ...int) *f32Tensor {
	t.Helper()
	data := make([]float32, len(lengths)*maxLen)
	for b, n := range lengths {
		for i := 0; i < n; i++ {
			data[b*maxLen+i] = 1
		}
	}
	return fromSlice(t, backend, data, len(lengths), maxLen, 1)
}

// row returns x[b, i, :] of a rank-3 tensor as a copy.
func row(x *f32Tensor, b, i int) []float32 {
	s := x.Shape()
	data := x.Data()
	start := (b*s[1] + i) * s[2]
	return append([]float32(nil), data[start:start+s[2]]...)
}

func sum(values []float32) float64 {
	var s float64
	for _, v := range values {
		s += float64(v)
	}
	return s
}
