// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides the hybrid WebGPU backend: matrix products run on
// the GPU, all other kernels on the CPU.
//
// The GPU path is built on windows only. Elsewhere New returns an error
// wrapping ErrUnavailable and callers fall back to the CPU backend.
//
// Example:
//
//	gpu, err := webgpu.New()
//	if err != nil {
//	    klog.Warningf("falling back to CPU: %v", err)
//	}
//	defer gpu.Release()
package webgpu

import (
	internalwebgpu "github.com/born-ml/attend/internal/backend/webgpu"
	"github.com/born-ml/attend/tensor"
)

// Backend represents the WebGPU backend implementation.
type Backend = internalwebgpu.Backend

// ErrUnavailable is returned by New when WebGPU cannot be initialised.
var ErrUnavailable = internalwebgpu.ErrUnavailable

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new WebGPU backend.
// Call Release() when done to free GPU resources.
func New() (*Backend, error) {
	return internalwebgpu.New()
}

// IsAvailable checks if WebGPU is available on the current system.
func IsAvailable() bool {
	return internalwebgpu.IsAvailable()
}
