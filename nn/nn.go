// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"

	"github.com/born-ml/attend/internal/nn"
	"github.com/born-ml/attend/internal/tensor"
)

// Parameter is a named weight tensor.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter wraps t as a parameter. t is held, not copied.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B], trainable bool) *Parameter[B] {
	return nn.NewParameter(name, t, trainable)
}

// Linear represents a fully connected (dense) layer without activation.
type Linear[B tensor.Backend] = nn.Linear[B]

// NewLinear creates a linear layer with a glorot-uniform weight. A nil rng
// draws from the global math/rand source.
//
// Example:
//
//	backend := cpu.New()
//	layer := nn.NewLinear("proj", 784, 128, true, true, nil, backend)
func NewLinear[B tensor.Backend](name string, inFeatures, outFeatures int, bias, trainable bool, rng *rand.Rand, backend B) *Linear[B] {
	return nn.NewLinear(name, inFeatures, outFeatures, bias, trainable, rng, backend)
}

// LinearFrom wraps existing parameters without copying them. bias may be nil.
func LinearFrom[B tensor.Backend](weight, bias *Parameter[B]) (*Linear[B], error) {
	return nn.LinearFrom(weight, bias)
}

// GlorotUniform samples a tensor from U(-a, a) with a = sqrt(6 / (fanIn + fanOut)).
func GlorotUniform[B tensor.Backend](shape tensor.Shape, rng *rand.Rand, backend B) *tensor.Tensor[float32, B] {
	return nn.GlorotUniform(shape, rng, backend)
}

// NumElements returns the total number of scalars held by params.
func NumElements[B tensor.Backend](params []*Parameter[B]) int {
	return nn.NumElements(params)
}

// ByteSize returns the memory held by params in bytes.
func ByteSize[B tensor.Backend](params []*Parameter[B]) int {
	return nn.ByteSize(params)
}
