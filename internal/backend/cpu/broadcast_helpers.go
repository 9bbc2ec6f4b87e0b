package cpu

import (
	"github.com/born-ml/attend/internal/tensor"
)

// computeBroadcastStridesForShape computes strides for reading inShape as if
// it had outShape. Broadcast dimensions (size 1 or missing) get stride 0.
func computeBroadcastStridesForShape(inShape, outShape tensor.Shape) []int {
	outDim := len(outShape)
	strides := make([]int, outDim)

	inDim := len(inShape)
	offset := outDim - inDim
	origStrides := inShape.ComputeStrides()

	for i := 0; i < outDim; i++ {
		inIdx := i - offset
		switch {
		case inIdx < 0 || inIdx >= inDim:
			strides[i] = 0
		case inShape[inIdx] == 1:
			strides[i] = 0
		default:
			strides[i] = origStrides[inIdx]
		}
	}

	return strides
}

// computeFlatIndex maps a flat output index to the flat index of a broadcast input.
func computeFlatIndex(outIdx int, outStrides, inStrides []int) int {
	flatIdx := 0
	for i := range outStrides {
		coord := outIdx / outStrides[i]
		outIdx %= outStrides[i]
		flatIdx += coord * inStrides[i]
	}
	return flatIdx
}

// broadcastIndex precomputes the stride tables for reading in as outShape.
type broadcastIndex struct {
	outStrides []int
	inStrides  []int
	identity   bool
}

func newBroadcastIndex(inShape, outShape tensor.Shape) broadcastIndex {
	return broadcastIndex{
		outStrides: outShape.ComputeStrides(),
		inStrides:  computeBroadcastStridesForShape(inShape, outShape),
		identity:   inShape.Equal(outShape),
	}
}

func (bi broadcastIndex) at(outIdx int) int {
	if bi.identity {
		return outIdx
	}
	return computeFlatIndex(outIdx, bi.outStrides, bi.inStrides)
}
