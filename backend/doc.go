// Package backend provides a pluggable registry of gpucore.Context
// implementations.
//
// # Backend Registration
//
// Backends are registered via init() functions and selected at runtime:
//
//	import _ "github.com/gogpu/bindkit/backend/software"
//	import _ "github.com/gogpu/bindkit/backend/native"
//
// # Backend Selection
//
// Use OpenDefault() to get the best available backend, or Open() to request
// a specific backend by name:
//
//	dev, err := backend.Open("software")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer dev.Close()
//
// # Available Backends
//
//   - "software": host-memory buffers and recorded descriptors (always available)
//   - "native": gogpu/wgpu HAL device
package backend
