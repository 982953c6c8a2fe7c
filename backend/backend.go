package backend

import (
	"errors"

	"github.com/gogpu/bindkit/gpucore"
)

// Backend name constants.
const (
	// NameSoftware is the name of the host-memory backend.
	NameSoftware = "software"
	// NameNative is the name of the Pure Go GPU backend (gogpu/wgpu HAL).
	NameNative = "native"
)

// Common errors for backend operations.
var (
	// ErrBackendNotAvailable is returned when no backend can be opened.
	ErrBackendNotAvailable = errors.New("backend: no backend available")

	// ErrUnknownBackend is returned when a backend name is not registered.
	ErrUnknownBackend = errors.New("backend: unknown backend")
)

// Device is a gpucore.Context that owns its underlying device and can be
// shut down.
type Device interface {
	gpucore.Context

	// Name returns the backend identifier.
	Name() string

	// Close releases the device and every object it still tracks.
	Close()
}
