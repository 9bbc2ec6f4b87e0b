package attention_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/born-ml/attend/internal/attention"
	"github.com/born-ml/attend/internal/backend/cpu"
	"github.com/born-ml/attend/internal/nn"
	"github.com/born-ml/attend/internal/tensor"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setFrom builds a parameter set from literal weights in variant order.
func setFrom(t *testing.T, backend cpuBackend, st attention.ScoreType, dims attention.Dims, weights ...[]float32) *attention.ParameterSet[cpuBackend] {
	t.Helper()
	names := st.ParamNames()
	shapes := st.ParamShapes(dims)
	require.Len(t, weights, len(names))

	params := make([]*nn.Parameter[cpuBackend], len(names))
	for i := range names {
		w, err := tensor.FromSlice(weights[i], shapes[i], backend)
		require.NoError(t, err)
		params[i] = nn.NewParameter(names[i], w, false)
	}
	ps, err := attention.ParameterSetFrom(st, dims, params)
	require.NoError(t, err)
	return ps
}

func TestScore_Shapes(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(1))
	const batch, ls, lt = 2, 3, 2

	for _, st := range attention.ScoreTypes() {
		t.Run(st.String(), func(t *testing.T) {
			dims := attention.Dims{Src: 3, Trg: 5, Att: 4}
			if st == attention.Dot || st == attention.ScaledDot ||
				st == attention.LinearPlus || st == attention.NonlinearPlus {
				dims.Trg = dims.Src
			}
			ps, err := attention.NewParameterSet(st, dims, true, backend, rng)
			require.NoError(t, err)

			src := randomSeq(backend, rng, batch, ls, dims.Src)
			trg := randomSeq(backend, rng, batch, lt, dims.Trg)
			scores, err := attention.Score(st, src, trg, ps)
			require.NoError(t, err)
			assert.Equal(t, tensor.Shape{batch, ls, lt}, scores.Shape())

			for _, v := range scores.Data() {
				assert.False(t, math.IsNaN(float64(v)) || math.IsInf(float64(v), 0))
			}
		})
	}
}

func TestScore_ScaledDotIsDotOverSqrtWidth(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(2))
	src := randomSeq(backend, rng, 2, 3, 9)
	trg := randomSeq(backend, rng, 2, 4, 9)

	dot, err := attention.Score(attention.Dot, src, trg, nil)
	require.NoError(t, err)
	scaled, err := attention.Score(attention.ScaledDot, src, trg, nil)
	require.NoError(t, err)

	want := dot.Data()
	for i, got := range scaled.Data() {
		assert.InDelta(t, want[i]/3, got, 1e-5, "index %d", i)
	}
}

func TestScore_Values(t *testing.T) {
	backend := cpu.New()
	src := fromSlice(t, backend, []float32{1, 2, 3, 4}, 1, 2, 2)
	trg := fromSlice(t, backend, []float32{5, 6, 7, 8}, 1, 2, 2)
	d2 := attention.Dims{Src: 2, Trg: 2}

	tests := []struct {
		name string
		st   attention.ScoreType
		ps   *attention.ParameterSet[cpuBackend]
		want []float32
	}{
		{"dot", attention.Dot, nil, []float32{17, 23, 39, 53}},
		{"bilinear swaps features", attention.Bilinear,
			setFrom(t, backend, attention.Bilinear, d2, []float32{0, 1, 1, 0}),
			[]float32{16, 22, 38, 52}},
		{"linear adds one feature of each side", attention.Linear,
			setFrom(t, backend, attention.Linear, d2, []float32{1, 0}, []float32{0, 1}),
			[]float32{7, 9, 9, 11}},
		{"linear_plus product term is the dot product", attention.LinearPlus,
			setFrom(t, backend, attention.LinearPlus, d2, []float32{0, 0}, []float32{0, 0}, []float32{1, 1}),
			[]float32{17, 23, 39, 53}},
		{"linear_plus sums all terms", attention.LinearPlus,
			setFrom(t, backend, attention.LinearPlus, d2, []float32{1, 0}, []float32{0, 1}, []float32{1, 1}),
			[]float32{24, 32, 48, 64}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scores, err := attention.Score(tt.st, src, trg, tt.ps)
			require.NoError(t, err)
			assert.InDeltaSlice(t, tt.want, scores.Data(), 1e-4)
		})
	}
}

func TestScore_NonlinearValues(t *testing.T) {
	backend := cpu.New()
	srcData := []float32{0.1, 0.2, 0.3, 0.4}
	trgData := []float32{0.5, 0.6, 0.7, 0.8}
	src := fromSlice(t, backend, srcData, 1, 2, 2)
	trg := fromSlice(t, backend, trgData, 1, 2, 2)
	dims := attention.Dims{Src: 2, Trg: 2, Att: 1}

	// A single hidden unit reading src[0], trg[1] and optionally src[0]*trg[0].
	expected := func(withMul bool) []float32 {
		out := make([]float32, 0, 4)
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				h := float64(srcData[2*i]) + float64(trgData[2*j+1]) + 0.5
				if withMul {
					h += float64(srcData[2*i]) * float64(trgData[2*j])
				}
				out = append(out, float32(2*math.Tanh(h)))
			}
		}
		return out
	}

	ps := setFrom(t, backend, attention.Nonlinear, dims,
		[]float32{1, 0}, []float32{0, 1}, []float32{0.5}, []float32{2})
	scores, err := attention.Score(attention.Nonlinear, src, trg, ps)
	require.NoError(t, err)
	assert.InDeltaSlice(t, expected(false), scores.Data(), 1e-5)

	ps = setFrom(t, backend, attention.NonlinearPlus, dims,
		[]float32{1, 0}, []float32{0, 1}, []float32{1, 0}, []float32{0.5}, []float32{2})
	scores, err = attention.Score(attention.NonlinearPlus, src, trg, ps)
	require.NoError(t, err)
	assert.InDeltaSlice(t, expected(true), scores.Data(), 1e-5)
}

func TestScore_Errors(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(3))
	bilinear, err := attention.NewParameterSet(attention.Bilinear, attention.Dims{Src: 4, Trg: 3}, true, backend, rng)
	require.NoError(t, err)

	tests := []struct {
		name     string
		st       attention.ScoreType
		src, trg *f32Tensor
		ps       *attention.ParameterSet[cpuBackend]
		want     error
	}{
		{"dot width mismatch", attention.Dot,
			randomSeq(backend, rng, 1, 2, 4), randomSeq(backend, rng, 1, 2, 3), nil, attention.ErrDimensionMismatch},
		{"batch mismatch", attention.Dot,
			randomSeq(backend, rng, 1, 2, 4), randomSeq(backend, rng, 2, 2, 4), nil, attention.ErrDimensionMismatch},
		{"rank 2 input", attention.Dot,
			tensor.Zeros[float32](tensor.Shape{2, 4}, backend), randomSeq(backend, rng, 1, 2, 4), nil, attention.ErrDimensionMismatch},
		{"missing parameters", attention.Bilinear,
			randomSeq(backend, rng, 1, 2, 4), randomSeq(backend, rng, 1, 2, 3), nil, attention.ErrDimensionMismatch},
		{"parameters for other widths", attention.Bilinear,
			randomSeq(backend, rng, 1, 2, 4), randomSeq(backend, rng, 1, 2, 5), bilinear, attention.ErrDimensionMismatch},
		{"parameters for other variant", attention.Linear,
			randomSeq(backend, rng, 1, 2, 4), randomSeq(backend, rng, 1, 2, 3), bilinear, attention.ErrUnsupportedVariant},
		{"unknown variant", attention.ScoreType(-3),
			randomSeq(backend, rng, 1, 2, 4), randomSeq(backend, rng, 1, 2, 4), nil, attention.ErrUnsupportedVariant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scores, err := attention.Score(tt.st, tt.src, tt.trg, tt.ps)
			assert.Nil(t, scores)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestScore_InputsUntouched(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(4))
	src := randomSeq(backend, rng, 2, 3, 4)
	trg := randomSeq(backend, rng, 2, 3, 4)
	before := append([]float32(nil), src.Data()...)

	ps, err := attention.NewParameterSet(attention.NonlinearPlus, attention.Dims{Src: 4, Trg: 4, Att: 2}, true, backend, rng)
	require.NoError(t, err)
	_, err = attention.Score(attention.NonlinearPlus, src, trg, ps)
	require.NoError(t, err)
	assert.Equal(t, before, src.Data())
}
