//go:build !nogpu

package native

import (
	"fmt"

	"github.com/gogpu/bindkit"
	"github.com/gogpu/bindkit/backend"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Register the Vulkan HAL backend.
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

func init() {
	backend.Register(backend.NameNative, func() (backend.Device, error) {
		return Open(gputypes.BackendVulkan)
	})
}

// Open creates a standalone device on the given HAL backend and wraps it
// in a Context. The Context owns the device: Close destroys it.
//
// Discrete and integrated GPUs are preferred over software adapters.
func Open(kind gputypes.Backend) (*Context, error) {
	halBackend, ok := hal.GetBackend(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %v backend not available", ErrNoGPU, kind)
	}
	instance, err := halBackend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("native: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoGPU
	}

	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("native: open device: %w", err)
	}

	c := New(openDev.Device, openDev.Queue)
	c.release = func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	bindkit.Logger().Info("native: device opened", "adapter", selected.Info.Name)
	return c, nil
}
