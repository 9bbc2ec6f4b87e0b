package webgpu

import "github.com/pkg/errors"

// ErrUnavailable is returned by New when no WebGPU adapter can be used.
var ErrUnavailable = errors.New("webgpu: not available")

// DefaultMinOffloadFlops is the smallest matrix product (in multiply-adds)
// sent to the GPU. Smaller products stay on the CPU where the upload and
// readback would dominate.
const DefaultMinOffloadFlops = 1 << 16
