package attention

import (
	"strconv"
	"strings"

	"github.com/born-ml/attend/internal/tensor"
	"github.com/pkg/errors"
)

// ScoreType selects the formula that scores a source position against a
// target position.
type ScoreType int

const (
	// Dot scores with src · trgᵀ.
	Dot ScoreType = iota
	// ScaledDot scores with src · trgᵀ / sqrt(Ds).
	ScaledDot
	// Linear scores with (src·Wsᵀ)[i] + (trg·Wtᵀ)[j].
	Linear
	// Bilinear scores with (src·W)·trgᵀ.
	Bilinear
	// Nonlinear scores with post · tanh(Ps·src_i + Pt·trg_j + bias).
	Nonlinear
	// LinearPlus is Linear plus a projected src_i ⊙ trg_j term.
	LinearPlus
	// NonlinearPlus is Nonlinear plus a projected src_i ⊙ trg_j term inside the tanh.
	NonlinearPlus

	numScoreTypes
)

// Dims holds the widths a parameter set is built for. Att is only read by
// the nonlinear variants.
type Dims struct {
	Src int
	Trg int
	Att int
}

// none marks an absent term in a score form.
const none = -1

// scoreForm is the closed set of score computations. Forms refer to
// parameters by their position in the variant's parameter list.
type scoreForm interface {
	isScoreForm()
}

// productForm scores with src · W · trgᵀ, where W is the parameter at
// index weight or the identity when weight is none.
type productForm struct {
	weight int
	scaled bool
}

// additiveForm scores on the (i, j) grid:
//
//	h = src_i·Wsᵀ + trg_j·Wtᵀ [+ (src_i ⊙ trg_j)·Wmᵀ]
//	h = tanh(h + bias)        when bias is present
//	s = h·postᵀ               when post is present
//
// Without post the projections already have width 1.
type additiveForm struct {
	src  int
	trg  int
	mul  int
	bias int
	post int
}

func (productForm) isScoreForm()  {}
func (additiveForm) isScoreForm() {}

// paramSpec describes one parameter of a variant.
type paramSpec struct {
	name  string
	shape func(d Dims) tensor.Shape
}

type variant struct {
	name      string
	equalDims bool // Src must equal Trg
	needsAtt  bool
	params    []paramSpec
	form      scoreForm
}

func rowOfSrc(d Dims) tensor.Shape { return tensor.Shape{1, d.Src} }
func rowOfTrg(d Dims) tensor.Shape { return tensor.Shape{1, d.Trg} }
func attBySrc(d Dims) tensor.Shape { return tensor.Shape{d.Att, d.Src} }
func attByTrg(d Dims) tensor.Shape { return tensor.Shape{d.Att, d.Trg} }
func attVector(d Dims) tensor.Shape { return tensor.Shape{d.Att} }
func rowOfAtt(d Dims) tensor.Shape { return tensor.Shape{1, d.Att} }
func srcByTrg(d Dims) tensor.Shape { return tensor.Shape{d.Src, d.Trg} }

var variants = [numScoreTypes]variant{
	Dot: {
		name:      "dot",
		equalDims: true,
		form:      productForm{weight: none},
	},
	ScaledDot: {
		name:      "scaled_dot",
		equalDims: true,
		form:      productForm{weight: none, scaled: true},
	},
	Linear: {
		name: "linear",
		params: []paramSpec{
			{"linear_src_weight", rowOfSrc},
			{"linear_trg_weight", rowOfTrg},
		},
		form: additiveForm{src: 0, trg: 1, mul: none, bias: none, post: none},
	},
	Bilinear: {
		name: "bilinear",
		params: []paramSpec{
			{"bilinear_weight", srcByTrg},
		},
		form: productForm{weight: 0},
	},
	Nonlinear: {
		name:     "nonlinear",
		needsAtt: true,
		params: []paramSpec{
			{"pre_nonlinear_src_weight", attBySrc},
			{"pre_nonlinear_trg_weight", attByTrg},
			{"pre_nonlinear_bias", attVector},
			{"post_nonlinear_weight", rowOfAtt},
		},
		form: additiveForm{src: 0, trg: 1, mul: none, bias: 2, post: 3},
	},
	LinearPlus: {
		name:      "linear_plus",
		equalDims: true,
		params: []paramSpec{
			{"linear_plus_src_weight", rowOfSrc},
			{"linear_plus_trg_weight", rowOfTrg},
			{"linear_plus_mul_weight", rowOfSrc},
		},
		form: additiveForm{src: 0, trg: 1, mul: 2, bias: none, post: none},
	},
	NonlinearPlus: {
		name:      "nonlinear_plus",
		equalDims: true,
		needsAtt:  true,
		params: []paramSpec{
			{"pre_nonlinear_plus_src_weight", attBySrc},
			{"pre_nonlinear_plus_trg_weight", attByTrg},
			{"pre_nonlinear_plus_mul_weight", attBySrc},
			{"pre_nonlinear_plus_bias", attVector},
			{"post_nonlinear_plus_weight", rowOfAtt},
		},
		form: additiveForm{src: 0, trg: 1, mul: 2, bias: 3, post: 4},
	},
}

// ScoreTypes returns every supported score type in declaration order.
func ScoreTypes() []ScoreType {
	types := make([]ScoreType, numScoreTypes)
	for i := range types {
		types[i] = ScoreType(i)
	}
	return types
}

// Valid reports whether st names a supported variant.
func (st ScoreType) Valid() bool {
	return st >= 0 && st < numScoreTypes
}

// String returns the configuration name of the score type, such as "scaled_dot".
func (st ScoreType) String() string {
	if !st.Valid() {
		return "ScoreType(" + strconv.Itoa(int(st)) + ")"
	}
	return variants[st].name
}

// ParseScoreType resolves a configuration name to a ScoreType.
func ParseScoreType(name string) (ScoreType, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i := range variants {
		if variants[i].name == key {
			return ScoreType(i), nil
		}
	}
	return 0, errors.Wrapf(ErrUnsupportedVariant, "score type %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (st ScoreType) MarshalText() ([]byte, error) {
	if !st.Valid() {
		return nil, errors.Wrapf(ErrUnsupportedVariant, "score type %d", int(st))
	}
	return []byte(variants[st].name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (st *ScoreType) UnmarshalText(text []byte) error {
	parsed, err := ParseScoreType(string(text))
	if err != nil {
		return err
	}
	*st = parsed
	return nil
}

// ParamNames returns the parameter names of the variant in order.
func (st ScoreType) ParamNames() []string {
	if !st.Valid() {
		return nil
	}
	names := make([]string, len(variants[st].params))
	for i, p := range variants[st].params {
		names[i] = p.name
	}
	return names
}

// ParamShapes returns the parameter shapes the variant needs for dims.
func (st ScoreType) ParamShapes(dims Dims) []tensor.Shape {
	if !st.Valid() {
		return nil
	}
	shapes := make([]tensor.Shape, len(variants[st].params))
	for i, p := range variants[st].params {
		shapes[i] = p.shape(dims)
	}
	return shapes
}

// lookupVariant returns the table row for st.
func lookupVariant(st ScoreType) (*variant, error) {
	if !st.Valid() {
		return nil, errors.Wrapf(ErrUnsupportedVariant, "score type %d", int(st))
	}
	return &variants[st], nil
}

// checkDims validates dims against the variant's requirements.
func (v *variant) checkDims(dims Dims) error {
	if dims.Src <= 0 || dims.Trg <= 0 {
		return errors.Wrapf(ErrDimensionMismatch, "%s: src dim %d and trg dim %d must be positive",
			v.name, dims.Src, dims.Trg)
	}
	if v.needsAtt && dims.Att <= 0 {
		return errors.Wrapf(ErrDimensionMismatch, "%s: att dim %d must be positive", v.name, dims.Att)
	}
	if v.equalDims && dims.Src != dims.Trg {
		return errors.Wrapf(ErrDimensionMismatch, "%s: src dim %d and trg dim %d must be the same",
			v.name, dims.Src, dims.Trg)
	}
	return nil
}
