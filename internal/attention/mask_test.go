package attention_test

import (
	"math"
	"testing"

	"github.com/born-ml/attend/internal/attention"
	"github.com/born-ml/attend/internal/backend/cpu"
	"github.com/born-ml/attend/internal/tensor"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairwiseMask(t *testing.T) {
	backend := cpu.New()
	srcMask := lengthMask(t, backend, 3, 2)
	trgMask := lengthMask(t, backend, 2, 1)

	mask, err := attention.PairwiseMask(srcMask, trgMask, false)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1, 3, 2}, mask.Shape())
	assert.Equal(t, []float32{1, 0, 1, 0, 0, 0}, mask.Data())

	// Inputs are not modified.
	assert.Equal(t, []float32{1, 1, 0}, srcMask.Data())
	assert.Equal(t, []float32{1, 0}, trgMask.Data())
}

func TestPairwiseMask_ExcludeSelf(t *testing.T) {
	backend := cpu.New()
	srcMask := lengthMask(t, backend, 4, 4, 3)
	trgMask := lengthMask(t, backend, 4, 3, 4)

	mask, err := attention.PairwiseMask(srcMask, trgMask, true)
	require.NoError(t, err)
	require.Equal(t, tensor.Shape{2, 4, 4}, mask.Shape())

	for b := 0; b < 2; b++ {
		for i := 0; i < 4; i++ {
			for j := 0; j < 4; j++ {
				got := mask.At(b, i, j)
				if i == j {
					assert.Zero(t, got, "diagonal [%d,%d,%d]", b, i, j)
					continue
				}
				want := srcMask.At(b, i, 0) * trgMask.At(b, j, 0)
				assert.Equal(t, want, got, "[%d,%d,%d]", b, i, j)
			}
		}
	}
}

func TestPairwiseMask_Errors(t *testing.T) {
	backend := cpu.New()

	_, err := attention.PairwiseMask(lengthMask(t, backend, 3, 3), lengthMask(t, backend, 2, 2), true)
	assert.True(t, errors.Is(err, attention.ErrDimensionMismatch), "self attention needs equal lengths")

	_, err = attention.PairwiseMask(lengthMask(t, backend, 3, 3), lengthMask(t, backend, 3, 3, 3), false)
	assert.True(t, errors.Is(err, attention.ErrDimensionMismatch), "batch mismatch")

	flat := tensor.Ones[float32](tensor.Shape{1, 3}, backend)
	_, err = attention.PairwiseMask(flat, lengthMask(t, backend, 3, 3), false)
	assert.True(t, errors.Is(err, attention.ErrDimensionMismatch), "mask without trailing unit axis")
}

func TestMaskedSoftmax(t *testing.T) {
	backend := cpu.New()
	scores := fromSlice(t, backend, []float32{
		1, 2, 3,
		-50, 80, 0.5,
		4, 4, 4,
	}, 1, 3, 3)
	mask := fromSlice(t, backend, []float32{
		1, 1, 1,
		1, 0, 1,
		0, 0, 0,
	}, 1, 3, 3)

	weights, err := attention.MaskedSoftmax(scores, mask, -1)
	require.NoError(t, err)
	require.Equal(t, scores.Shape(), weights.Shape())

	t.Run("valid rows sum to one", func(t *testing.T) {
		assert.InDelta(t, 1.0, sum(row(weights, 0, 0)), 1e-6)
		assert.InDelta(t, 1.0, sum(row(weights, 0, 1)), 1e-6)
	})

	t.Run("weights are non-negative and finite", func(t *testing.T) {
		for _, v := range weights.Data() {
			assert.GreaterOrEqual(t, v, float32(0))
			assert.False(t, math.IsNaN(float64(v)))
		}
	})

	t.Run("masked positions are zero", func(t *testing.T) {
		assert.Zero(t, weights.At(0, 1, 1), "a large masked score gets no weight")
		assert.Greater(t, weights.At(0, 1, 2), weights.At(0, 1, 0))
	})

	t.Run("fully masked row is zero", func(t *testing.T) {
		assert.Equal(t, []float32{0, 0, 0}, row(weights, 0, 2))
	})

	t.Run("matches plain softmax when unmasked", func(t *testing.T) {
		e1, e2, e3 := math.Exp(1), math.Exp(2), math.Exp(3)
		z := e1 + e2 + e3
		assert.InDeltaSlice(t, []float64{e1 / z, e2 / z, e3 / z}, toFloat64(row(weights, 0, 0)), 1e-6)
	})
}

func TestMaskedSoftmax_SourceAxis(t *testing.T) {
	backend := cpu.New()
	scores := tensor.Zeros[float32](tensor.Shape{2, 3, 1}, backend)
	mask := lengthMask(t, backend, 3, 2, 3)

	weights, err := attention.MaskedSoftmax(scores, mask, 1)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.5, 0.5, 0, 1.0 / 3, 1.0 / 3, 1.0 / 3}, toFloat64(weights.Data()), 1e-6)
}

func TestMaskedSoftmax_Errors(t *testing.T) {
	backend := cpu.New()
	scores := tensor.Zeros[float32](tensor.Shape{1, 3, 2}, backend)

	_, err := attention.MaskedSoftmax(scores, tensor.Ones[float32](tensor.Shape{1, 2, 2}, backend), -1)
	assert.True(t, errors.Is(err, attention.ErrDimensionMismatch))

	_, err = attention.MaskedSoftmax(scores, tensor.Ones[float32](tensor.Shape{1, 3, 2}, backend), 3)
	assert.True(t, errors.Is(err, attention.ErrDimensionMismatch))
}

func TestProject(t *testing.T) {
	backend := cpu.New()
	x := fromSlice(t, backend, []float32{1, 2, 3, 4, 5, 6}, 1, 3, 2)
	w := fromSlice(t, backend, []float32{1, 0, 1, 0, 1, 1}, 2, 3)

	out, err := attention.Project(x, w)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1, 3, 3}, out.Shape())
	assert.Equal(t, []float32{1, 2, 3, 3, 4, 7, 5, 6, 11}, out.Data())

	_, err = attention.Project(x, tensor.Ones[float32](tensor.Shape{3, 3}, backend))
	assert.True(t, errors.Is(err, attention.ErrDimensionMismatch))

	_, err = attention.Project(tensor.Ones[float32](tensor.Shape{3, 2}, backend), w)
	assert.True(t, errors.Is(err, attention.ErrDimensionMismatch))
}

func toFloat64(values []float32) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}
