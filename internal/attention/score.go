package attention

import (
	"math"

	"github.com/born-ml/attend/internal/tensor"
	"github.com/pkg/errors"
)

// Score computes the raw alignment scores between every source and every
// target position.
//
// Parameters:
//   - src: [batch, Ls, Ds]
//   - trg: [batch, Lt, Dt]
//   - params: the variant's parameters; may be nil for Dot and ScaledDot
//
// Returns scores of shape [batch, Ls, Lt]. Dot and ScaledDot need Ds == Dt.
// Widths that disagree with the parameter shapes return ErrDimensionMismatch.
func Score[B tensor.Backend](scoreType ScoreType, src, trg *tensor.Tensor[float32, B], params *ParameterSet[B]) (*tensor.Tensor[float32, B], error) {
	v, err := lookupVariant(scoreType)
	if err != nil {
		return nil, err
	}
	if err := checkSequencePair(src.Shape(), trg.Shape()); err != nil {
		return nil, errors.Wrap(err, v.name)
	}
	ds, dt := src.Shape()[2], trg.Shape()[2]

	if len(v.params) == 0 {
		if ds != dt {
			return nil, errors.Wrapf(ErrDimensionMismatch, "%s: src width %d and trg width %d must be the same",
				v.name, ds, dt)
		}
	} else {
		if params == nil {
			return nil, errors.Wrapf(ErrDimensionMismatch, "%s: parameter set is required", v.name)
		}
		if err := params.compatible(scoreType, Dims{Src: ds, Trg: dt, Att: params.dims.Att}); err != nil {
			return nil, err
		}
	}

	return score(v.form, src, trg, params), nil
}

// score dispatches on the form. Shapes must already be validated.
func score[B tensor.Backend](form scoreForm, src, trg *tensor.Tensor[float32, B], params *ParameterSet[B]) *tensor.Tensor[float32, B] {
	switch f := form.(type) {
	case productForm:
		return productScore(f, src, trg, params)
	case additiveForm:
		return additiveScore(f, src, trg, params)
	default:
		panic("attention: unknown score form")
	}
}

// productScore computes src · W · trgᵀ with a batched matmul.
func productScore[B tensor.Backend](f productForm, src, trg *tensor.Tensor[float32, B], params *ParameterSet[B]) *tensor.Tensor[float32, B] {
	left := src
	if f.weight != none {
		left = project(src, params.params[f.weight].Tensor()) // [b, Ls, Dt]
	}

	scores := left.BatchMatMul(trg.Transpose(0, 2, 1)) // [b, Ls, Lt]
	if f.scaled {
		ds := src.Shape()[2]
		scores = scores.MulScalar(float32(1 / math.Sqrt(float64(ds))))
	}
	return scores
}

// additiveScore combines per-side projections on the (i, j) grid and
// reduces each cell to a scalar.
func additiveScore[B tensor.Backend](f additiveForm, src, trg *tensor.Tensor[float32, B], params *ParameterSet[B]) *tensor.Tensor[float32, B] {
	batch, ls, ds := src.Shape()[0], src.Shape()[1], src.Shape()[2]
	lt := trg.Shape()[1]
	weight := func(i int) *tensor.Tensor[float32, B] {
		return params.params[i].Tensor()
	}

	// Weights are stored [K, D]; project takes [D, K].
	k := weight(f.src).Shape()[0]
	srcTerm := project(src, weight(f.src).T()).Reshape(batch, ls, 1, k)
	trgTerm := project(trg, weight(f.trg).T()).Reshape(batch, 1, lt, k)
	grid := srcTerm.Add(trgTerm) // [b, Ls, Lt, K]

	if f.mul != none {
		prod := src.Reshape(batch, ls, 1, ds).Mul(trg.Reshape(batch, 1, lt, ds)) // [b, Ls, Lt, Ds]
		grid = grid.Add(project(prod, weight(f.mul).T()))
	}
	if f.bias != none {
		grid = grid.Add(weight(f.bias).Reshape(1, 1, 1, k)).Tanh()
	}
	if f.post != none {
		grid = project(grid, weight(f.post).T()) // [b, Ls, Lt, 1]
	}

	return grid.Reshape(batch, ls, lt)
}

// checkSequencePair validates two [batch, length, width] tensors.
func checkSequencePair(src, trg tensor.Shape) error {
	if len(src) != 3 || len(trg) != 3 {
		return errors.Wrapf(ErrDimensionMismatch, "src %v and trg %v must be [batch, length, width]", src, trg)
	}
	if err := src.Validate(); err != nil {
		return errors.Wrapf(ErrDimensionMismatch, "src %v: %v", src, err)
	}
	if err := trg.Validate(); err != nil {
		return errors.Wrapf(ErrDimensionMismatch, "trg %v: %v", trg, err)
	}
	if src[0] != trg[0] {
		return errors.Wrapf(ErrDimensionMismatch, "batch sizes differ: src %d, trg %d", src[0], trg[0])
	}
	return nil
}
