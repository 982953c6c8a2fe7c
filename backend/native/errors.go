package native

import "errors"

// Package errors for the native backend.
var (
	// ErrNoGPU is returned when no GPU adapter is available.
	ErrNoGPU = errors.New("native: no GPU adapter available")

	// ErrNoHALAccess is returned when a device provider does not expose
	// HAL device and queue handles.
	ErrNoHALAccess = errors.New("native: provider does not expose HAL types")

	// ErrUnsupportedBinding is returned for binding kinds the HAL layout
	// translation does not cover.
	ErrUnsupportedBinding = errors.New("native: unsupported binding type")

	// ErrUnsupportedResource is returned when binding a resource kind the
	// backend cannot bind yet.
	ErrUnsupportedResource = errors.New("native: unsupported resource kind")

	// ErrConflictingBinding is returned when two stages declare the same
	// binding index with different kinds.
	ErrConflictingBinding = errors.New("native: conflicting binding declarations")
)
