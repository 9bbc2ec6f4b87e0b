package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/attend/internal/tensor"
)

// Linear applies a dense map along the last axis of its input.
//
// Performs: y = x @ W (+ b)
// where:
//   - x has shape [..., in_features]
//   - W is the weight matrix with shape [in_features, out_features]
//   - b is the optional bias vector with shape [out_features]
//   - y has shape [..., out_features]
//
// Leading axes are flattened into one row axis for a single 2-D matmul and
// restored afterwards.
//
// Example:
//
//	backend := cpu.New()
//	layer := nn.NewLinear("query", 64, 32, false, true, nil, backend)
//
//	x := tensor.Zeros[float32](tensor.Shape{8, 20, 64}, backend)
//	y, err := layer.Forward(x) // shape: [8, 20, 32]
type Linear[B tensor.Backend] struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter[B] // [in_features, out_features]
	bias        *Parameter[B] // [out_features] or nil
}

// NewLinear creates a Linear layer with a glorot-uniform weight named
// name+"_weight" and, when bias is set, a zero bias named name+"_bias".
func NewLinear[B tensor.Backend](name string, inFeatures, outFeatures int, bias, trainable bool, rng *rand.Rand, backend B) *Linear[B] {
	weightShape := tensor.Shape{inFeatures, outFeatures}
	l := &Linear[B]{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter(name+"_weight", GlorotUniform(weightShape, rng, backend), trainable),
	}
	if bias {
		l.bias = NewParameter(name+"_bias", tensor.Zeros[float32](tensor.Shape{outFeatures}, backend), trainable)
	}
	return l
}

// LinearFrom wraps existing parameters without copying them. bias may be nil.
// The weight must be [in, out] and the bias [out].
func LinearFrom[B tensor.Backend](weight, bias *Parameter[B]) (*Linear[B], error) {
	ws := weight.Shape()
	if len(ws) != 2 {
		return nil, fmt.Errorf("linear weight %q must be 2D, got shape %v", weight.Name(), ws)
	}
	if bias != nil && !bias.Shape().Equal(tensor.Shape{ws[1]}) {
		return nil, fmt.Errorf("linear bias %q has shape %v, want [%d]", bias.Name(), bias.Shape(), ws[1])
	}
	return &Linear[B]{
		inFeatures:  ws[0],
		outFeatures: ws[1],
		weight:      weight,
		bias:        bias,
	}, nil
}

// Forward computes the output of the linear layer.
//
// Input shape: [..., in_features]
// Output shape: [..., out_features]
func (l *Linear[B]) Forward(input *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	inputShape := input.Shape()
	if len(inputShape) < 2 {
		return nil, fmt.Errorf("linear: expected at least 2D input, got shape %v", inputShape)
	}
	if inputShape[len(inputShape)-1] != l.inFeatures {
		return nil, fmt.Errorf("linear: expected input with %d features, got %d",
			l.inFeatures, inputShape[len(inputShape)-1])
	}

	rows := inputShape.NumElements() / l.inFeatures
	output := input.Reshape(rows, l.inFeatures).MatMul(l.weight.Tensor()) // [rows, out_features]

	if l.bias != nil {
		output = output.Add(l.bias.Tensor().Reshape(1, l.outFeatures))
	}

	outShape := inputShape.Clone()
	outShape[len(outShape)-1] = l.outFeatures
	return output.Reshape(outShape...), nil
}

// Parameters returns the layer's parameters: [weight] or [weight, bias].
func (l *Linear[B]) Parameters() []*Parameter[B] {
	if l.bias != nil {
		return []*Parameter[B]{l.weight, l.bias}
	}
	return []*Parameter[B]{l.weight}
}

// Weight returns the weight parameter.
func (l *Linear[B]) Weight() *Parameter[B] {
	return l.weight
}

// Bias returns the bias parameter, or nil.
func (l *Linear[B]) Bias() *Parameter[B] {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear[B]) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear[B]) OutFeatures() int {
	return l.outFeatures
}
