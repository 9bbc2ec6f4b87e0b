// Package nn provides the parameter and layer building blocks the attention
// engine is assembled from:
//   - Parameter: a named weight tensor with a trainable flag
//   - Glorot (Xavier) uniform initialisation
//   - Linear: a dense map applied along the last axis of any-rank input
//
// The engine only reads parameters. Updates belong to an external optimizer
// that runs strictly between forward passes.
package nn

import (
	"github.com/born-ml/attend/internal/tensor"
)

// NumElements returns the total number of scalars held by params.
func NumElements[B tensor.Backend](params []*Parameter[B]) int {
	n := 0
	for _, p := range params {
		n += p.Tensor().NumElements()
	}
	return n
}

// ByteSize returns the memory held by params in bytes.
func ByteSize[B tensor.Backend](params []*Parameter[B]) int {
	n := 0
	for _, p := range params {
		n += p.Tensor().Raw().ByteSize()
	}
	return n
}
