package main

import (
	"k8s.io/klog/v2"

	"github.com/born-ml/attend/backend/webgpu"
	"github.com/born-ml/attend/internal/config"
)

// openWebGPU returns the WebGPU backend when lf asks for it. When the
// device cannot be opened it logs a warning and returns nil so the caller
// runs on the CPU.
func openWebGPU(lf config.LayerFile) *webgpu.Backend {
	if lf.Backend != config.BackendWebGPU {
		return nil
	}
	gpu, err := webgpu.New()
	if err != nil {
		klog.Warningf("WebGPU backend unavailable, falling back to CPU: %v", err)
		return nil
	}
	klog.V(1).Infof("using %s backend", gpu.Name())
	return gpu
}

// loadLayer reads the layer file at path, or returns the default layer for
// an empty path.
func loadLayer(path string) (config.LayerFile, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}
