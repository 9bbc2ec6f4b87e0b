package attention

import (
	"math/rand"

	"github.com/born-ml/attend/internal/nn"
	"github.com/born-ml/attend/internal/tensor"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ParameterSet is the ordered list of weights a score variant needs.
//
// The count, order, names and shapes are fixed by the score type and the
// dims the set was built for. A set is read-only once built, so any number
// of layers may share one pointer and call Forward concurrently.
type ParameterSet[B tensor.Backend] struct {
	id        uuid.UUID
	scoreType ScoreType
	dims      Dims
	params    []*nn.Parameter[B]
}

// NewParameterSet creates glorot-uniform initialised parameters for scoreType.
//
// The _plus variants require dims.Src == dims.Trg and the nonlinear variants
// require a positive dims.Att; violations return ErrDimensionMismatch.
// A nil rng draws from the global math/rand source.
//
// Example:
//
//	ps, err := attention.NewParameterSet(attention.Bilinear,
//	    attention.Dims{Src: 64, Trg: 32}, true, backend, rand.New(rand.NewSource(1)))
//	w := ps.At(0) // bilinear_weight [64, 32]
func NewParameterSet[B tensor.Backend](scoreType ScoreType, dims Dims, trainable bool, backend B, rng *rand.Rand) (*ParameterSet[B], error) {
	v, err := lookupVariant(scoreType)
	if err != nil {
		return nil, err
	}
	if err := v.checkDims(dims); err != nil {
		return nil, err
	}

	params := make([]*nn.Parameter[B], len(v.params))
	for i, spec := range v.params {
		w := nn.GlorotUniform(spec.shape(dims), rng, backend)
		params[i] = nn.NewParameter(spec.name, w, trainable)
	}

	return &ParameterSet[B]{
		id:        uuid.New(),
		scoreType: scoreType,
		dims:      dims,
		params:    params,
	}, nil
}

// ParameterSetFrom wraps existing parameters, for example weights restored
// by the caller, without copying them. The parameters must match the
// variant's list in order and shape.
func ParameterSetFrom[B tensor.Backend](scoreType ScoreType, dims Dims, params []*nn.Parameter[B]) (*ParameterSet[B], error) {
	v, err := lookupVariant(scoreType)
	if err != nil {
		return nil, err
	}
	if err := v.checkDims(dims); err != nil {
		return nil, err
	}
	if len(params) != len(v.params) {
		return nil, errors.Wrapf(ErrDimensionMismatch, "%s: got %d parameters, want %d",
			v.name, len(params), len(v.params))
	}
	for i, spec := range v.params {
		if params[i] == nil {
			return nil, errors.Wrapf(ErrDimensionMismatch, "%s: parameter %d (%s) is nil", v.name, i, spec.name)
		}
		want := spec.shape(dims)
		if !params[i].Shape().Equal(want) {
			return nil, errors.Wrapf(ErrDimensionMismatch, "%s: parameter %d (%s) has shape %v, want %v",
				v.name, i, spec.name, params[i].Shape(), want)
		}
	}

	return &ParameterSet[B]{
		id:        uuid.New(),
		scoreType: scoreType,
		dims:      dims,
		params:    append([]*nn.Parameter[B](nil), params...),
	}, nil
}

// ID returns the identity of the set.
func (ps *ParameterSet[B]) ID() uuid.UUID {
	return ps.id
}

// ScoreType returns the variant the set was built for.
func (ps *ParameterSet[B]) ScoreType() ScoreType {
	return ps.scoreType
}

// Dims returns the widths the set was built for.
func (ps *ParameterSet[B]) Dims() Dims {
	return ps.dims
}

// Len returns the number of parameters. Dot and scaled_dot have none.
func (ps *ParameterSet[B]) Len() int {
	return len(ps.params)
}

// At returns the i-th parameter in variant order.
func (ps *ParameterSet[B]) At(i int) *nn.Parameter[B] {
	return ps.params[i]
}

// Lookup returns the parameter with the given name.
func (ps *ParameterSet[B]) Lookup(name string) (*nn.Parameter[B], bool) {
	for _, p := range ps.params {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

// Parameters returns the parameters in variant order. The slice is a copy;
// the parameters are shared.
func (ps *ParameterSet[B]) Parameters() []*nn.Parameter[B] {
	return append([]*nn.Parameter[B](nil), ps.params...)
}

// NumElements returns the number of scalars across all parameters.
func (ps *ParameterSet[B]) NumElements() int {
	return nn.NumElements(ps.params)
}

// ByteSize returns the memory held by the parameters.
func (ps *ParameterSet[B]) ByteSize() int {
	return nn.ByteSize(ps.params)
}

// compatible reports whether the set can score for scoreType at dims: the
// variant must match and every parameter must have the shape dims implies.
func (ps *ParameterSet[B]) compatible(scoreType ScoreType, dims Dims) error {
	if ps.scoreType != scoreType {
		return errors.Wrapf(ErrUnsupportedVariant, "parameter set %s was built for %s, layer uses %s",
			ps.id, ps.scoreType, scoreType)
	}
	v, err := lookupVariant(scoreType)
	if err != nil {
		return err
	}
	if err := v.checkDims(dims); err != nil {
		return err
	}
	for i, spec := range v.params {
		want := spec.shape(dims)
		if !ps.params[i].Shape().Equal(want) {
			return errors.Wrapf(ErrDimensionMismatch, "parameter set %s: %s has shape %v, layer needs %v",
				ps.id, spec.name, ps.params[i].Shape(), want)
		}
	}
	return nil
}
