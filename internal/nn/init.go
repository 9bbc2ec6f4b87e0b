package nn

import (
	"math"
	"math/rand"

	"github.com/born-ml/attend/internal/tensor"
)

// Xavier (Glorot) uniform initialization for weights.
//
// Initializes weights with values drawn from a uniform distribution:
// U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out)))
//
// A nil rng draws from the global math/rand source.
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, rng *rand.Rand, backend B) *tensor.Tensor[float32, B] {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	return tensor.Uniform[float32, B](shape, -bound, bound, rng, backend)
}

// GlorotUniform initializes a weight of the given shape, deriving the fans
// from the shape: [a, b] gives fan_in=a, fan_out=b and [n] gives n for both.
// Higher ranks [..., in, out] scale both fans by the product of the
// leading dims.
func GlorotUniform[B tensor.Backend](shape tensor.Shape, rng *rand.Rand, backend B) *tensor.Tensor[float32, B] {
	fanIn, fanOut := Fans(shape)
	return Xavier(fanIn, fanOut, shape, rng, backend)
}

// Fans returns the fan-in and fan-out GlorotUniform uses for shape.
func Fans(shape tensor.Shape) (fanIn, fanOut int) {
	switch len(shape) {
	case 0:
		return 1, 1
	case 1:
		return shape[0], shape[0]
	case 2:
		return shape[0], shape[1]
	default:
		n := len(shape)
		receptive := 1
		for _, d := range shape[:n-2] {
			receptive *= d
		}
		return shape[n-2] * receptive, shape[n-1] * receptive
	}
}
