package reserve

import (
	"fmt"

	"github.com/gogpu/bindkit/camera"
	"github.com/gogpu/bindkit/gpucore"
)

// Camera writes the view matrix of a single camera to a uniform buffer.
type Camera struct {
	cam    camera.Camera
	buffer gpucore.BufferID
}

// NewCamera creates the camera buffer holding the identity view.
func NewCamera(ctx gpucore.Context) (*Camera, error) {
	cam := camera.Identity()
	buf, err := ctx.CreateBuffer(&gpucore.BufferDesc{
		Label:       "reserved camera",
		Size:        camera.MatrixSize,
		Usage:       gpucore.BufferUsageUniform | gpucore.BufferUsageCopyDst,
		InitialData: camera.Bytes(cam.ViewMatrix()),
	})
	if err != nil {
		return nil, fmt.Errorf("reserve: camera buffer: %w", err)
	}
	return &Camera{cam: cam, buffer: buf}, nil
}

func (*Camera) reserved() {}

// Name returns CameraName.
func (*Camera) Name() string { return CameraName }

// Camera returns the current camera.
func (c *Camera) Camera() camera.Camera { return c.cam }

// SetCamera replaces the camera. The buffer changes on the next Update.
func (c *Camera) SetCamera(cam camera.Camera) { c.cam = cam }

// Update writes the view matrix, the inverse of the camera transform.
func (c *Camera) Update(ctx gpucore.Context) error {
	if err := gpucore.WriteBuffer(ctx, c.buffer, 0, camera.Bytes(c.cam.ViewMatrix())); err != nil {
		return fmt.Errorf("reserve: write camera: %w", err)
	}
	return nil
}

// Binding returns the camera buffer at binding 0.
func (c *Camera) Binding() ReservedBinding {
	return DirectBinding(gpucore.BindingInfo{
		Resource: gpucore.UniformBuffer(gpucore.BufferView{Buffer: c.buffer, Size: camera.MatrixSize}),
		Binding:  0,
	})
}

// Destroy releases the camera buffer.
func (c *Camera) Destroy(ctx gpucore.Context) {
	ctx.DestroyBuffer(c.buffer)
}
