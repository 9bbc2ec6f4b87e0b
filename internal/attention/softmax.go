package attention

import (
	"github.com/born-ml/attend/internal/tensor"
	"github.com/pkg/errors"
)

// MaskedSoftmax normalises scores along axis over the positions where mask
// is non-zero.
//
// mask must broadcast to the shape of scores. Masked positions get exactly
// 0 and a slice whose mask is all zero comes back as zeros rather than NaN.
// The reduced axis is kept, so the result has the shape of scores.
func MaskedSoftmax[B tensor.Backend](scores, mask *tensor.Tensor[float32, B], axis int) (*tensor.Tensor[float32, B], error) {
	shape := scores.Shape()
	if _, err := shape.NormalizeDim(axis); err != nil {
		return nil, errors.Wrapf(ErrDimensionMismatch, "masked softmax: %v", err)
	}
	bShape, _, err := tensor.BroadcastShapes(mask.Shape(), shape)
	if err != nil || !bShape.Equal(shape) {
		return nil, errors.Wrapf(ErrDimensionMismatch, "masked softmax: mask %v does not broadcast to scores %v",
			mask.Shape(), shape)
	}
	return scores.MaskedSoftmax(mask, axis), nil
}
