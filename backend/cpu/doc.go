// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO)
//   - gonum BLAS gemm for MatMul and BatchMatMul
//   - Float32 and Float64 support
//   - NumPy-compatible broadcasting
//   - Row-parallel MaskedSoftmax and reductions
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/attend/attention"
//	    "github.com/born-ml/attend/backend/cpu"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    layer, err := attention.NewAttention[float32](attention.Config{
//	        ScoreType: attention.Dot, SrcDim: 64, TrgDim: 64,
//	    }, backend)
//	    ...
//	}
package cpu
