// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package attention provides generalized attention layers for aligning two
// variable-length sequences.
//
// Seven score functions are available: dot, scaled_dot, linear, bilinear,
// nonlinear, linear_plus and nonlinear_plus. Scores are normalised with a
// masked softmax, so padded positions never receive weight and fully padded
// rows produce zeros instead of NaN.
//
// Layers:
//   - Attention: weighted sum of the target for every source position
//   - MaxAttention: max-pooled source summary broadcast to every position
//   - HeadAttention: attention over query/key/value projections
//   - GatedAttention: attention fused with its input through a sigmoid gate
//
// Example:
//
//	backend := cpu.New()
//	att, err := attention.NewAttention(attention.Config{
//	    ScoreType: attention.Bilinear,
//	    SrcDim:    128,
//	    TrgDim:    64,
//	}, backend)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, outMask, err := att.Forward(passage, question, passageMask, questionMask)
//
// Parameter sets can be shared between layers with WithParameters or through
// a Registry; sharing never copies weights.
package attention
