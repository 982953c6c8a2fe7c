package gpucore

import "errors"

// Errors shared by Context implementations.
var (
	// ErrInvalidSize is returned when a buffer is created with a zero size
	// or with initial data larger than the buffer.
	ErrInvalidSize = errors.New("gpucore: invalid buffer size")

	// ErrUnknownBuffer is returned when a buffer ID is not tracked.
	ErrUnknownBuffer = errors.New("gpucore: unknown buffer")

	// ErrUnknownLayout is returned when a layout ID is not tracked.
	ErrUnknownLayout = errors.New("gpucore: unknown layout")

	// ErrAlreadyMapped is returned when mapping a buffer that is already mapped.
	ErrAlreadyMapped = errors.New("gpucore: buffer already mapped")

	// ErrNotMapped is returned when unmapping a buffer that is not mapped.
	ErrNotMapped = errors.New("gpucore: buffer not mapped")

	// ErrOutOfRange is returned when a write exceeds the buffer size.
	ErrOutOfRange = errors.New("gpucore: write out of range")

	// ErrUnknownBindingType is returned when parsing an unrecognized
	// binding type name.
	ErrUnknownBindingType = errors.New("gpucore: unknown binding type")
)
