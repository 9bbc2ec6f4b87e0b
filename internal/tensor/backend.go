package tensor

// Backend defines the compute contract the attention engine relies on.
// Backends handle the actual computation for tensor operations and never
// modify their input tensors.
//
// Implementations:
//   - internal/backend/cpu: pure Go kernels with gonum BLAS matrix products
//   - internal/backend/webgpu: GPU matrix products, CPU for everything else
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// MatMul multiplies two 2D tensors: [M, K] @ [K, N] -> [M, N].
	MatMul(a, b *RawTensor) *RawTensor

	// BatchMatMul multiplies the trailing matrices of two 3D/4D tensors.
	// For 3D: [B, M, K] @ [B, K, N] -> [B, M, N]
	BatchMatMul(a, b *RawTensor) *RawTensor

	// Shape operations.
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor
	Expand(x *RawTensor, shape Shape) *RawTensor // broadcast to shape
	Cat(tensors []*RawTensor, dim int) *RawTensor

	// Scalar operations (element-wise with scalar).
	MulScalar(x *RawTensor, scalar any) *RawTensor
	AddScalar(x *RawTensor, scalar any) *RawTensor

	// Activation functions.
	Tanh(x *RawTensor) *RawTensor
	Sigmoid(x *RawTensor) *RawTensor

	// MaskedSoftmax normalises x along dim over positions where mask != 0.
	// Masked positions get exactly 0; a row with no valid position is all 0.
	// mask must broadcast to x's shape.
	MaskedSoftmax(x, mask *RawTensor, dim int) *RawTensor

	// Reductions along a dimension (negative dims count from the end).
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor
	MaxDim(x *RawTensor, dim int, keepDim bool) *RawTensor

	// Metadata.
	Name() string
	Device() Device
}
