package cpu

import (
	"math"

	"github.com/born-ml/attend/internal/tensor"
)

// Tanh applies the hyperbolic tangent element-wise.
func (cpu *CPUBackend) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.mapFloat("tanh", x,
		func(v float32) float32 { return float32(math.Tanh(float64(v))) },
		math.Tanh)
}

// Sigmoid applies 1 / (1 + exp(-x)) element-wise.
func (cpu *CPUBackend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.mapFloat("sigmoid", x,
		func(v float32) float32 { return float32(sigmoid(float64(v))) },
		sigmoid)
}

// sigmoid is evaluated in the numerically stable branch for each sign.
func sigmoid(v float64) float64 {
	if v >= 0 {
		return 1 / (1 + math.Exp(-v))
	}
	e := math.Exp(v)
	return e / (1 + e)
}
