package attention

import (
	"testing"

	"github.com/born-ml/attend/internal/tensor"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScoreType(t *testing.T) {
	names := []string{"dot", "scaled_dot", "linear", "bilinear", "nonlinear", "linear_plus", "nonlinear_plus"}
	for i, name := range names {
		st, err := ParseScoreType(name)
		require.NoError(t, err, name)
		assert.Equal(t, ScoreType(i), st)
		assert.Equal(t, name, st.String())
	}

	st, err := ParseScoreType("  Scaled_Dot ")
	require.NoError(t, err)
	assert.Equal(t, ScaledDot, st)

	_, err = ParseScoreType("cosine")
	assert.True(t, errors.Is(err, ErrUnsupportedVariant))
}

func TestScoreTypeText(t *testing.T) {
	var st ScoreType
	require.NoError(t, st.UnmarshalText([]byte("bilinear")))
	assert.Equal(t, Bilinear, st)

	text, err := NonlinearPlus.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "nonlinear_plus", string(text))

	assert.True(t, errors.Is(st.UnmarshalText([]byte("additive")), ErrUnsupportedVariant))

	_, err = ScoreType(42).MarshalText()
	assert.True(t, errors.Is(err, ErrUnsupportedVariant))
	assert.Equal(t, "ScoreType(42)", ScoreType(42).String())
	assert.False(t, ScoreType(-1).Valid())
}

func TestParamShapes(t *testing.T) {
	d := Dims{Src: 3, Trg: 5, Att: 7}
	tests := []struct {
		st     ScoreType
		names  []string
		shapes []tensor.Shape
	}{
		{Dot, []string{}, []tensor.Shape{}},
		{ScaledDot, []string{}, []tensor.Shape{}},
		{Linear,
			[]string{"linear_src_weight", "linear_trg_weight"},
			[]tensor.Shape{{1, 3}, {1, 5}}},
		{Bilinear,
			[]string{"bilinear_weight"},
			[]tensor.Shape{{3, 5}}},
		{Nonlinear,
			[]string{"pre_nonlinear_src_weight", "pre_nonlinear_trg_weight", "pre_nonlinear_bias", "post_nonlinear_weight"},
			[]tensor.Shape{{7, 3}, {7, 5}, {7}, {1, 7}}},
		{LinearPlus,
			[]string{"linear_plus_src_weight", "linear_plus_trg_weight", "linear_plus_mul_weight"},
			[]tensor.Shape{{1, 3}, {1, 5}, {1, 3}}},
		{NonlinearPlus,
			[]string{"pre_nonlinear_plus_src_weight", "pre_nonlinear_plus_trg_weight",
				"pre_nonlinear_plus_mul_weight", "pre_nonlinear_plus_bias", "post_nonlinear_plus_weight"},
			[]tensor.Shape{{7, 3}, {7, 5}, {7, 3}, {7}, {1, 7}}},
	}

	for _, tt := range tests {
		t.Run(tt.st.String(), func(t *testing.T) {
			assert.Equal(t, tt.names, tt.st.ParamNames())
			assert.Equal(t, tt.shapes, tt.st.ParamShapes(d))
		})
	}
}

func TestVariantFormsReferenceParameters(t *testing.T) {
	inRange := func(t *testing.T, v variant, i int) {
		if i != none {
			assert.True(t, i >= 0 && i < len(v.params), "%s: index %d out of range", v.name, i)
		}
	}
	for _, st := range ScoreTypes() {
		v := variants[st]
		t.Run(v.name, func(t *testing.T) {
			switch f := v.form.(type) {
			case productForm:
				inRange(t, v, f.weight)
			case additiveForm:
				require.NotEqual(t, none, f.src)
				require.NotEqual(t, none, f.trg)
				for _, i := range []int{f.src, f.trg, f.mul, f.bias, f.post} {
					inRange(t, v, i)
				}
				assert.Equal(t, f.bias != none, f.post != none, "tanh and post projection come together")
			default:
				t.Fatalf("unknown form %T", f)
			}
		})
	}
}

func TestCheckDims(t *testing.T) {
	tests := []struct {
		st   ScoreType
		dims Dims
		ok   bool
	}{
		{Dot, Dims{Src: 4, Trg: 4}, true},
		{Dot, Dims{Src: 4, Trg: 5}, false},
		{Bilinear, Dims{Src: 4, Trg: 5}, true},
		{Bilinear, Dims{Src: 0, Trg: 5}, false},
		{Nonlinear, Dims{Src: 4, Trg: 5, Att: 0}, false},
		{Nonlinear, Dims{Src: 4, Trg: 5, Att: 2}, true},
		{LinearPlus, Dims{Src: 4, Trg: 5}, false},
		{NonlinearPlus, Dims{Src: 4, Trg: 4, Att: 3}, true},
	}
	for _, tt := range tests {
		err := variants[tt.st].checkDims(tt.dims)
		if tt.ok {
			assert.NoError(t, err, "%s %+v", tt.st, tt.dims)
		} else {
			assert.True(t, errors.Is(err, ErrDimensionMismatch), "%s %+v: %v", tt.st, tt.dims, err)
		}
	}
}
