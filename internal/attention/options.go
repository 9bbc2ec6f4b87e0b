package attention

import (
	"math/rand"

	"github.com/born-ml/attend/internal/tensor"
	"github.com/pkg/errors"
)

// Option configures layer construction.
type Option func(*options)

type options struct {
	params any // *ParameterSet[B]
	head   any // *HeadParameters[B]
	rng    *rand.Rand
	name   string
}

func buildOptions(defaultName string, opts []Option) options {
	o := options{name: defaultName}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithParameters makes the layer score with ps instead of creating its own
// parameters. The set is shared, not copied: every layer built with the
// same ps reads the same weights.
func WithParameters[B tensor.Backend](ps *ParameterSet[B]) Option {
	return func(o *options) {
		o.params = ps
	}
}

// WithHeadParameters makes a head-attention layer reuse hp, the projection
// weights and attention set of another layer.
func WithHeadParameters[B tensor.Backend](hp *HeadParameters[B]) Option {
	return func(o *options) {
		o.head = hp
	}
}

// WithRand sets the source used to initialise new parameters.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) {
		o.rng = rng
	}
}

// WithName sets the layer name used in logs and error messages. Gated
// attention also prefixes its gate weight with it.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// sharedParameters returns the injected parameter set, or nil when none was
// given.
func sharedParameters[B tensor.Backend](o options) (*ParameterSet[B], error) {
	if o.params == nil {
		return nil, nil
	}
	ps, ok := o.params.(*ParameterSet[B])
	if !ok || ps == nil {
		return nil, errors.Errorf("attention: injected parameter set has type %T", o.params)
	}
	return ps, nil
}

// sharedHeadParameters returns the injected head parameters, or nil.
func sharedHeadParameters[B tensor.Backend](o options) (*HeadParameters[B], error) {
	if o.head == nil {
		return nil, nil
	}
	hp, ok := o.head.(*HeadParameters[B])
	if !ok || hp == nil {
		return nil, errors.Errorf("attention: injected head parameters have type %T", o.head)
	}
	return hp, nil
}
