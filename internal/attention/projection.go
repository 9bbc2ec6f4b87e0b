package attention

import (
	"github.com/born-ml/attend/internal/tensor"
	"github.com/pkg/errors"
)

// Project applies a weight matrix along the feature axis of a sequence.
//
// x is [batch, L, Din] and w is [Din, Dout]; the result is [batch, L, Dout].
// The sequence is flattened to [batch*L, Din] for a single 2-D matmul.
func Project[B tensor.Backend](x, w *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	xs, ws := x.Shape(), w.Shape()
	if len(xs) != 3 || len(ws) != 2 {
		return nil, errors.Wrapf(ErrDimensionMismatch, "project: x %v must be 3D and w %v 2D", xs, ws)
	}
	if err := xs.Validate(); err != nil {
		return nil, errors.Wrapf(ErrDimensionMismatch, "project: x %v: %v", xs, err)
	}
	if xs[2] != ws[0] {
		return nil, errors.Wrapf(ErrDimensionMismatch, "project: x width %d does not match w rows %d", xs[2], ws[0])
	}
	return project(x, w), nil
}

// project maps the last axis of x through w ([D, K]) for any rank of x.
func project[B tensor.Backend](x, w *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := x.Shape()
	d, k := w.Shape()[0], w.Shape()[1]
	out := x.Reshape(shape.NumElements()/d, d).MatMul(w)

	outShape := shape.Clone()
	outShape[len(outShape)-1] = k
	return out.Reshape(outShape...)
}
