package attention_test

import (
	"math/rand"
	"testing"

	"github.com/born-ml/attend/internal/attention"
	"github.com/born-ml/attend/internal/backend/cpu"
	"github.com/born-ml/attend/internal/tensor"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headConfig(st attention.ScoreType) attention.HeadConfig {
	return attention.HeadConfig{
		ScoreType: st,
		SrcDim:    6,
		TrgDim:    5,
		QueryDim:  4,
		KeyDim:    4,
		ValueDim:  3,
		Trainable: true,
	}
}

func TestHeadAttention_Forward(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(16))

	for _, st := range attention.ScoreTypes() {
		t.Run(st.String(), func(t *testing.T) {
			h, err := attention.NewHeadAttention(headConfig(st), backend, attention.WithRand(rng))
			require.NoError(t, err)

			src := randomSeq(backend, rng, 2, 3, 6)
			trg := randomSeq(backend, rng, 2, 4, 5)
			srcMask := lengthMask(t, backend, 3, 3, 1)
			trgMask := lengthMask(t, backend, 4, 2, 4)

			out, outMask, weights, err := h.ForwardWithWeights(src, trg, srcMask, trgMask)
			require.NoError(t, err)
			assert.Equal(t, tensor.Shape{2, 3, 3}, out.Shape())
			assert.Equal(t, tensor.Shape{2, 3, 4}, weights.Shape())
			assert.Same(t, srcMask, outMask)
			assert.Equal(t, make([]float32, 3), row(out, 1, 1))
			assert.Equal(t, make([]float32, 3), row(out, 1, 2))
			assert.InDelta(t, 1.0, sum(row(weights, 0, 0)), 1e-5)
		})
	}
}

func TestHeadAttention_Parameters(t *testing.T) {
	backend := cpu.New()
	cfg := headConfig(attention.Nonlinear)
	h, err := attention.NewHeadAttention(cfg, backend, attention.WithRand(rand.New(rand.NewSource(17))))
	require.NoError(t, err)

	proj := h.ProjectionParameters()
	require.Len(t, proj, 3)
	assert.Equal(t, tensor.Shape{6, 4}, proj[0].Shape())
	assert.Equal(t, tensor.Shape{5, 4}, proj[1].Shape())
	assert.Equal(t, tensor.Shape{5, 3}, proj[2].Shape())

	// The attention set scores queries against keys with the key width as hidden width.
	ps := h.AttentionParameters()
	assert.Equal(t, attention.Dims{Src: 4, Trg: 4, Att: 4}, ps.Dims())
	assert.Len(t, h.Parameters(), 3+ps.Len())
	assert.Equal(t, 3, h.OutputDim())
	assert.Equal(t, cfg, h.Config())
}

func TestHeadAttention_SharedParametersBitIdentical(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(18))
	cfg := headConfig(attention.LinearPlus)

	first, err := attention.NewHeadAttention(cfg, backend, attention.WithRand(rng))
	require.NoError(t, err)
	second, err := attention.NewHeadAttention(cfg, backend, attention.WithHeadParameters(first.HeadParameters()))
	require.NoError(t, err)
	independent, err := attention.NewHeadAttention(cfg, backend, attention.WithRand(rng))
	require.NoError(t, err)

	assert.Same(t, first.HeadParameters(), second.HeadParameters())
	assert.Same(t, first.AttentionParameters(), second.AttentionParameters())
	for i, p := range first.ProjectionParameters() {
		assert.Same(t, p, second.ProjectionParameters()[i])
	}

	src := randomSeq(backend, rng, 2, 4, 6)
	trg := randomSeq(backend, rng, 2, 3, 5)
	srcMask := lengthMask(t, backend, 4, 4, 3)
	trgMask := lengthMask(t, backend, 3, 3, 2)

	a, _, err := first.Forward(src, trg, srcMask, trgMask)
	require.NoError(t, err)
	b, _, err := second.Forward(src, trg, srcMask, trgMask)
	require.NoError(t, err)
	c, _, err := independent.Forward(src, trg, srcMask, trgMask)
	require.NoError(t, err)

	assert.Equal(t, a.Data(), b.Data())
	assert.NotEqual(t, a.Data(), c.Data())
}

func TestHeadAttention_Errors(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(19))

	cfg := headConfig(attention.Dot)
	cfg.ValueDim = 0
	_, err := attention.NewHeadAttention(cfg, backend)
	assert.True(t, errors.Is(err, attention.ErrDimensionMismatch))

	cfg = headConfig(attention.Dot)
	cfg.KeyDim = 5
	_, err = attention.NewHeadAttention(cfg, backend)
	assert.True(t, errors.Is(err, attention.ErrDimensionMismatch), "dot needs query dim == key dim")

	hp, err := attention.NewHeadParameters(headConfig(attention.Bilinear), backend, rng)
	require.NoError(t, err)
	other := headConfig(attention.Bilinear)
	other.ValueDim = 7
	_, err = attention.NewHeadAttention(other, backend, attention.WithHeadParameters(hp))
	assert.True(t, errors.Is(err, attention.ErrDimensionMismatch))

	_, err = attention.NewHeadAttention(headConfig(attention.Linear), backend, attention.WithHeadParameters(hp))
	assert.True(t, errors.Is(err, attention.ErrUnsupportedVariant))

	// Self attention projects one sequence, so src and trg widths must agree.
	cfg = headConfig(attention.ScaledDot)
	cfg.IsSelf = true
	_, err = attention.NewHeadAttention(cfg, backend)
	assert.True(t, errors.Is(err, attention.ErrDimensionMismatch))
	cfg.TrgDim = cfg.SrcDim
	_, err = attention.NewHeadAttention(cfg, backend)
	assert.NoError(t, err)
}
