// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the parameters and dense layers attention layers are
// built from.
//
// # Overview
//
// This package contains:
//   - Parameter: a named weight tensor with a trainable flag
//   - Linear: a dense map along the last axis of any-rank input
//   - Initialization: glorot (Xavier) uniform
//   - Utilities: NumElements and ByteSize over parameter lists
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/attend/backend/cpu"
//	    "github.com/born-ml/attend/nn"
//	    "github.com/born-ml/attend/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    proj := nn.NewLinear("query", 64, 16, false, true, nil, backend)
//
//	    x := tensor.Zeros[float32](tensor.Shape{8, 20, 64}, backend)
//	    q, err := proj.Forward(x) // [8, 20, 16]
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(nn.NumElements(proj.Parameters())) // 1024
//	}
//
// Parameters are shared by pointer: layers built from the same Parameter
// read the same tensor, and updates made between forward passes are seen
// by all of them.
package nn
