package nn

import (
	"github.com/born-ml/attend/internal/tensor"
)

// Parameter represents a weight of an attention layer.
//
// Parameters are created once and then only read by forward passes. The
// trainable flag is recorded for the optimizer that owns updates; nothing in
// this module writes to a parameter after construction.
//
// Example:
//
//	w := nn.NewParameter("bilinear_weight", weightTensor, true)
//	x := w.Tensor()
type Parameter[B tensor.Backend] struct {
	name      string
	tensor    *tensor.Tensor[float32, B]
	trainable bool
}

// NewParameter creates a new parameter around an initialised tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B], trainable bool) *Parameter[B] {
	return &Parameter[B]{
		name:      name,
		tensor:    t,
		trainable: trainable,
	}
}

// Name returns the parameter name.
func (p *Parameter[B]) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] {
	return p.tensor
}

// Shape returns the parameter tensor's shape.
func (p *Parameter[B]) Shape() tensor.Shape {
	return p.tensor.Shape()
}

// Trainable reports whether an optimizer may update this parameter.
func (p *Parameter[B]) Trainable() bool {
	return p.trainable
}
