package shader

import "errors"

var (
	// ErrNoEntryPoints is returned when a module declares no entry points.
	ErrNoEntryPoints = errors.New("shader: module has no entry points")

	// ErrUnsupportedStage is returned for entry point stages outside
	// vertex, fragment and compute.
	ErrUnsupportedStage = errors.New("shader: unsupported stage")

	// ErrRuntimeArray is returned for binding arrays without a fixed length.
	ErrRuntimeArray = errors.New("shader: runtime-sized resource array")

	// ErrUnsupportedType is returned for a bound handle whose type is not a
	// texture, a sampler or a fixed-size array of either.
	ErrUnsupportedType = errors.New("shader: unsupported resource type")
)
