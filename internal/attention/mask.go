package attention

import (
	"github.com/born-ml/attend/internal/tensor"
	"github.com/pkg/errors"
)

// PairwiseMask builds the [batch, Ls, Lt] mask src(i) * trg(j) from two
// [batch, L, 1] validity masks. With excludeSelf the diagonal is zeroed so a
// position never attends to itself; that needs Ls == Lt.
// The input masks are not modified.
func PairwiseMask[B tensor.Backend](srcMask, trgMask *tensor.Tensor[float32, B], excludeSelf bool) (*tensor.Tensor[float32, B], error) {
	ss, ts := srcMask.Shape(), trgMask.Shape()
	if err := checkMask("src", ss); err != nil {
		return nil, err
	}
	if err := checkMask("trg", ts); err != nil {
		return nil, err
	}
	if ss[0] != ts[0] {
		return nil, errors.Wrapf(ErrDimensionMismatch, "mask batch sizes differ: src %d, trg %d", ss[0], ts[0])
	}
	batch, ls, lt := ss[0], ss[1], ts[1]
	if excludeSelf && ls != lt {
		return nil, errors.Wrapf(ErrDimensionMismatch, "self attention needs equal lengths, got src %d and trg %d", ls, lt)
	}

	mask := srcMask.Mul(trgMask.Reshape(batch, 1, lt)) // [b, Ls, 1] * [b, 1, Lt]
	if excludeSelf {
		offDiag := tensor.Ones[float32](tensor.Shape{ls, lt}, srcMask.Backend()).
			Sub(tensor.Eye[float32](ls, lt, srcMask.Backend()))
		mask = mask.Mul(offDiag.Reshape(1, ls, lt))
	}
	return mask, nil
}

func checkMask(side string, s tensor.Shape) error {
	if len(s) != 3 || s[2] != 1 {
		return errors.Wrapf(ErrDimensionMismatch, "%s mask %v must be [batch, length, 1]", side, s)
	}
	if err := s.Validate(); err != nil {
		return errors.Wrapf(ErrDimensionMismatch, "%s mask %v: %v", side, s, err)
	}
	return nil
}
