package pool

import (
	"fmt"

	"github.com/gogpu/bindkit/gpucore"
)

// Storage creates, writes and releases the device side of pool slots.
type Storage[T any] interface {
	// Create returns the initial host value and the device resource
	// holding it for a new slot.
	Create(ctx gpucore.Context, slot uint32) (T, gpucore.ShaderResource, error)

	// Write uploads v to the device resource of a slot.
	Write(ctx gpucore.Context, r gpucore.ShaderResource, v *T) error

	// Release destroys the device resource of a slot.
	Release(ctx gpucore.Context, r gpucore.ShaderResource)
}

// BufferStorage keeps each slot in its own buffer.
type BufferStorage[T any] struct {
	// Label prefixes the buffer labels; the slot index is appended.
	Label string

	// Size is the buffer size in bytes.
	Size uint64

	// Usage selects the binding kind: slots are storage buffers when it
	// includes gpucore.BufferUsageStorage and uniform buffers otherwise.
	Usage gpucore.BufferUsage

	// Default returns the value of a fresh slot.
	Default func() T

	// Encode packs a value into at most Size bytes.
	Encode func(*T) []byte
}

// Compile-time check that BufferStorage implements Storage.
var _ Storage[int] = BufferStorage[int]{}

// Create allocates a buffer initialized with the default value.
func (s BufferStorage[T]) Create(ctx gpucore.Context, slot uint32) (T, gpucore.ShaderResource, error) {
	v := s.Default()
	id, err := ctx.CreateBuffer(&gpucore.BufferDesc{
		Label:       fmt.Sprintf("%s[%d]", s.Label, slot),
		Size:        s.Size,
		Usage:       s.usage(),
		InitialData: s.Encode(&v),
	})
	if err != nil {
		var zero T
		return zero, gpucore.ShaderResource{}, err
	}
	view := gpucore.BufferView{Buffer: id, Size: s.Size}
	if s.Usage&gpucore.BufferUsageStorage != 0 {
		return v, gpucore.StorageBuffer(view), nil
	}
	return v, gpucore.UniformBuffer(view), nil
}

func (s BufferStorage[T]) usage() gpucore.BufferUsage {
	u := s.Usage | gpucore.BufferUsageCopyDst
	if u&gpucore.BufferUsageStorage == 0 {
		u |= gpucore.BufferUsageUniform
	}
	return u
}

// Write maps the slot buffer and copies the encoded value into it.
func (s BufferStorage[T]) Write(ctx gpucore.Context, r gpucore.ShaderResource, v *T) error {
	return gpucore.WriteBuffer(ctx, r.Buffer.Buffer, r.Buffer.Offset, s.Encode(v))
}

// Release destroys the slot buffer.
func (s BufferStorage[T]) Release(ctx gpucore.Context, r gpucore.ShaderResource) {
	ctx.DestroyBuffer(r.Buffer.Buffer)
}
