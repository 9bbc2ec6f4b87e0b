package tensor

import "math/rand"

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	backend := cpu.New()
//	t := tensor.Zeros[float32](Shape{3, 4}, backend)
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	var dummy T
	raw, err := NewRaw(shape, inferDataType(dummy), b.Device())
	if err != nil {
		panic(err) // Shape validation should prevent this
	}
	return New[T, B](raw, b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return Full[T, B](shape, 1, b)
}

// Full creates a tensor filled with a specific value.
//
// Example:
//
//	t := tensor.Full[float32](Shape{3, 3}, 3.14, backend)
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Eye creates an n×m matrix with ones on the main diagonal.
//
// Example:
//
//	identity := tensor.Eye[float32](3, 3, backend)
func Eye[T DType, B Backend](n, m int, b B) *Tensor[T, B] {
	t := Zeros[T, B](Shape{n, m}, b)
	data := t.Data()
	for i := 0; i < min(n, m); i++ {
		data[i*m+i] = 1
	}
	return t
}

// Uniform creates a tensor with values drawn uniformly from [low, high)
// using the given source. A nil source uses the global math/rand source.
func Uniform[T DType, B Backend](shape Shape, low, high float64, rng *rand.Rand, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		var u float64
		if rng != nil {
			u = rng.Float64()
		} else {
			u = rand.Float64() //nolint:gosec // G404: weight initialisation, not security-critical
		}
		data[i] = T(low + (high-low)*u)
	}
	return t
}
