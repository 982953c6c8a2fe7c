package reserve

import (
	"fmt"

	"github.com/gogpu/bindkit/camera"
	"github.com/gogpu/bindkit/gpucore"
	"github.com/gogpu/bindkit/pool"
)

// BindlessCameras is a pool of cameras, each in its own storage buffer,
// bound as one indexed binding. Code holding a handle updates its camera
// with CameraMut and Flush; the per-tick Update writes nothing.
type BindlessCameras struct {
	pool *pool.Pool[camera.Camera]
}

func cameraStorage() pool.BufferStorage[camera.Camera] {
	return pool.BufferStorage[camera.Camera]{
		Label:   "bindless camera",
		Size:    camera.MatrixSize,
		Usage:   gpucore.BufferUsageStorage,
		Default: camera.Identity,
		Encode: func(c *camera.Camera) []byte {
			return camera.Bytes(c.ViewMatrix())
		},
	}
}

// NewBindlessCameras creates the pool with cfg.InitialCapacity identity
// cameras.
func NewBindlessCameras(ctx gpucore.Context, cfg pool.Config) (*BindlessCameras, error) {
	p, err := pool.New[camera.Camera](ctx, cfg, cameraStorage())
	if err != nil {
		return nil, fmt.Errorf("reserve: bindless cameras: %w", err)
	}
	return &BindlessCameras{pool: p}, nil
}

func (*BindlessCameras) reserved() {}

// Name returns BindlessCameraName.
func (*BindlessCameras) Name() string { return BindlessCameraName }

// Add allocates a camera slot, growing the pool if needed.
func (b *BindlessCameras) Add(ctx gpucore.Context) (pool.Handle, error) {
	return b.pool.Allocate(ctx)
}

// Remove frees a camera slot. It reports whether h was live.
func (b *BindlessCameras) Remove(h pool.Handle) bool {
	return b.pool.Free(h)
}

// Camera returns the camera of a live handle.
func (b *BindlessCameras) Camera(h pool.Handle) (camera.Camera, error) {
	c, err := b.pool.Get(h)
	if err != nil {
		return camera.Camera{}, err
	}
	return *c, nil
}

// CameraMut returns the camera of a live handle for modification. The
// change reaches the GPU on Flush or FlushAll.
func (b *BindlessCameras) CameraMut(h pool.Handle) (*camera.Camera, error) {
	return b.pool.GetMutable(h)
}

// Flush writes the view matrix of one camera.
func (b *BindlessCameras) Flush(ctx gpucore.Context, h pool.Handle) error {
	return b.pool.Flush(ctx, h)
}

// FlushAll writes every camera modified through CameraMut.
func (b *BindlessCameras) FlushAll(ctx gpucore.Context) error {
	return b.pool.FlushAll(ctx)
}

// Len returns the number of live cameras.
func (b *BindlessCameras) Len() int { return b.pool.Len() }

// Cap returns the number of camera slots.
func (b *BindlessCameras) Cap() int { return b.pool.Cap() }

// Update does nothing; cameras are written through their handles.
func (*BindlessCameras) Update(gpucore.Context) error { return nil }

// Binding returns every camera slot as one indexed binding at binding 0.
func (b *BindlessCameras) Binding() ReservedBinding {
	return IndexedBinding(gpucore.IndexedBindingInfo{
		Resources: b.pool.Resources(),
		Binding:   0,
	})
}

// Destroy releases every camera buffer.
func (b *BindlessCameras) Destroy(ctx gpucore.Context) {
	b.pool.Destroy(ctx)
}
