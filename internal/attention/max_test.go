package attention_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/born-ml/attend/internal/attention"
	"github.com/born-ml/attend/internal/backend/cpu"
	"github.com/born-ml/attend/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaxAttention_RowsIdentical(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(13))

	for _, st := range []attention.ScoreType{attention.Dot, attention.Bilinear, attention.Nonlinear} {
		t.Run(st.String(), func(t *testing.T) {
			m, err := attention.NewMaxAttention(attention.Config{
				ScoreType: st, SrcDim: 4, TrgDim: 4, AttDim: 3,
			}, backend, attention.WithRand(rng))
			require.NoError(t, err)

			src := randomSeq(backend, rng, 1, 3, 4)
			trg := randomSeq(backend, rng, 1, 5, 4)
			srcMask := lengthMask(t, backend, 3, 3)
			trgMask := lengthMask(t, backend, 5, 4)

			out, outMask, err := m.Forward(src, trg, srcMask, trgMask)
			require.NoError(t, err)
			assert.Equal(t, tensor.Shape{1, 3, 4}, out.Shape())
			assert.Same(t, srcMask, outMask)

			first := row(out, 0, 0)
			assert.Equal(t, first, row(out, 0, 1))
			assert.Equal(t, first, row(out, 0, 2))
		})
	}
}

func TestMaxAttention_Values(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(14))
	const ls, lt, d = 3, 2, 3

	src := randomSeq(backend, rng, 1, ls, d)
	trg := randomSeq(backend, rng, 1, lt, d)
	srcMask := lengthMask(t, backend, ls, ls)
	trgMask := lengthMask(t, backend, lt, lt)

	m, err := attention.NewMaxAttention(attention.Config{ScoreType: attention.Dot, SrcDim: d, TrgDim: d}, backend)
	require.NoError(t, err)
	out, _, weights, err := m.ForwardWithWeights(src, trg, srcMask, trgMask)
	require.NoError(t, err)
	require.Equal(t, tensor.Shape{1, 1, ls}, weights.Shape())

	// Reference: best dot score per source row, softmax over rows, pooled rows.
	best := make([]float64, ls)
	for i := 0; i < ls; i++ {
		best[i] = math.Inf(-1)
		for j := 0; j < lt; j++ {
			var s float64
			for k := 0; k < d; k++ {
				s += float64(src.At(0, i, k)) * float64(trg.At(0, j, k))
			}
			best[i] = math.Max(best[i], s)
		}
	}
	var z float64
	for _, b := range best {
		z += math.Exp(b)
	}
	pooled := make([]float64, d)
	for i := 0; i < ls; i++ {
		w := math.Exp(best[i]) / z
		assert.InDelta(t, w, float64(weights.At(0, 0, i)), 1e-5)
		for k := 0; k < d; k++ {
			pooled[k] += w * float64(src.At(0, i, k))
		}
	}
	for i := 0; i < ls; i++ {
		assert.InDeltaSlice(t, pooled, toFloat64(row(out, 0, i)), 1e-5)
	}
}

func TestMaxAttention_PaddedSource(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(15))

	m, err := attention.NewMaxAttention(attention.Config{
		ScoreType: attention.Linear, SrcDim: 4, TrgDim: 2,
	}, backend, attention.WithRand(rng))
	require.NoError(t, err)
	assert.Equal(t, 4, m.OutputDim())
	assert.Equal(t, attention.KindMaxAttention, m.Kind())

	src := randomSeq(backend, rng, 2, 4, 4)
	trg := randomSeq(backend, rng, 2, 3, 2)
	srcMask := lengthMask(t, backend, 4, 2, 4)
	trgMask := lengthMask(t, backend, 3, 3, 1)

	out, _, weights, err := m.ForwardWithWeights(src, trg, srcMask, trgMask)
	require.NoError(t, err)

	// Padded source positions get no pooling weight and a zero output row.
	assert.Zero(t, weights.At(0, 0, 2))
	assert.Zero(t, weights.At(0, 0, 3))
	assert.InDelta(t, 1.0, sum(weights.Data()[:4]), 1e-5)
	assert.InDelta(t, 1.0, sum(weights.Data()[4:]), 1e-5)
	assert.Equal(t, make([]float32, 4), row(out, 0, 2))
	assert.Equal(t, make([]float32, 4), row(out, 0, 3))
	assert.Equal(t, row(out, 0, 0), row(out, 0, 1))
}
