// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the type-safe tensors the attention engine computes with.
//
// # Overview
//
// This package provides:
//   - Generic type-safe tensors (Tensor[T, B]) over float32 and float64
//   - NumPy-style broadcasting
//   - A pluggable compute Backend (CPU, WebGPU)
//   - MaskedSoftmax, the normalisation every attention layer relies on
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/attend/backend/cpu"
//	    "github.com/born-ml/attend/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    scores, _ := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{1, 3}, backend)
//	    mask, _ := tensor.FromSlice([]float32{1, 1, 0}, tensor.Shape{1, 3}, backend)
//
//	    weights := scores.MaskedSoftmax(mask, -1) // [0.27 0.73 0]
//	}
package tensor
