package native

import (
	"errors"
	"testing"

	"github.com/gogpu/bindkit/gpucore"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// createNoopDevice creates a noop device and queue for testing.
// Returns the device, queue, and a cleanup function.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

func newNoopContext(t *testing.T) *Context {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)
	c := New(device, queue)
	t.Cleanup(func() {
		c.Close()
		cleanup()
	})
	return c
}

func TestContextBufferLifecycle(t *testing.T) {
	c := newNoopContext(t)

	id, err := c.CreateBuffer(&gpucore.BufferDesc{
		Label:       "uniform",
		Size:        16,
		Usage:       gpucore.BufferUsageUniform,
		InitialData: []byte{1, 2, 3, 4},
	})
	if err != nil {
		t.Fatalf("CreateBuffer failed: %v", err)
	}
	if id == gpucore.InvalidID {
		t.Fatal("expected valid buffer ID")
	}

	mem, err := c.MapBuffer(id)
	if err != nil {
		t.Fatalf("MapBuffer failed: %v", err)
	}
	if len(mem) != 16 || mem[0] != 1 || mem[3] != 4 {
		t.Errorf("mapped memory = %v, want initial data prefix", mem)
	}
	if _, err := c.MapBuffer(id); !errors.Is(err, gpucore.ErrAlreadyMapped) {
		t.Errorf("second MapBuffer err = %v, want ErrAlreadyMapped", err)
	}
	mem[4] = 9
	if err := c.UnmapBuffer(id); err != nil {
		t.Fatalf("UnmapBuffer failed: %v", err)
	}
	if err := c.UnmapBuffer(id); !errors.Is(err, gpucore.ErrNotMapped) {
		t.Errorf("second UnmapBuffer err = %v, want ErrNotMapped", err)
	}

	c.DestroyBuffer(id)
	if _, err := c.MapBuffer(id); !errors.Is(err, gpucore.ErrUnknownBuffer) {
		t.Errorf("MapBuffer after destroy err = %v, want ErrUnknownBuffer", err)
	}
	// Double destroy is a no-op.
	c.DestroyBuffer(id)
}

func TestContextCreateBufferInvalid(t *testing.T) {
	c := newNoopContext(t)

	tests := []struct {
		name string
		desc *gpucore.BufferDesc
	}{
		{"nil", nil},
		{"zero size", &gpucore.BufferDesc{Label: "z"}},
		{"data too large", &gpucore.BufferDesc{Label: "d", Size: 2, InitialData: []byte{1, 2, 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.CreateBuffer(tt.desc); !errors.Is(err, gpucore.ErrInvalidSize) {
				t.Errorf("err = %v, want ErrInvalidSize", err)
			}
		})
	}
}

func TestContextBindGroup(t *testing.T) {
	c := newNoopContext(t)

	layout, err := c.CreateBindGroupLayout(&gpucore.BindGroupLayoutDesc{
		Label: "camera",
		Shaders: []gpucore.ShaderInfo{
			{Stage: gpucore.ShaderStageVertex, Variables: []gpucore.BindGroupVariable{
				{Type: gpucore.BindingTypeUniform, Binding: 0},
			}},
			{Stage: gpucore.ShaderStageFragment, Variables: []gpucore.BindGroupVariable{
				{Type: gpucore.BindingTypeUniform, Binding: 0},
				{Type: gpucore.BindingTypeStorage, Binding: 1},
			}},
		},
	})
	if err != nil {
		t.Fatalf("CreateBindGroupLayout failed: %v", err)
	}

	buf, err := c.CreateBuffer(&gpucore.BufferDesc{Label: "u", Size: 64, Usage: gpucore.BufferUsageUniform})
	if err != nil {
		t.Fatalf("CreateBuffer failed: %v", err)
	}
	view := gpucore.BufferView{Buffer: buf, Size: 64}

	group, err := c.CreateBindGroup(&gpucore.BindGroupDesc{
		Label:  "camera",
		Layout: layout,
		Bindings: []gpucore.BindingInfo{
			{Resource: gpucore.UniformBuffer(view), Binding: 0},
			{Resource: gpucore.StorageBuffer(view), Binding: 1},
		},
	})
	if err != nil {
		t.Fatalf("CreateBindGroup failed: %v", err)
	}
	c.DestroyBindGroup(group)
	c.DestroyBindGroupLayout(layout)

	if _, err := c.CreateBindGroup(&gpucore.BindGroupDesc{Layout: layout}); !errors.Is(err, gpucore.ErrUnknownLayout) {
		t.Errorf("CreateBindGroup on destroyed layout err = %v, want ErrUnknownLayout", err)
	}
}

func TestContextBindGroupUnsupportedResource(t *testing.T) {
	c := newNoopContext(t)

	layout, err := c.CreateBindGroupLayout(&gpucore.BindGroupLayoutDesc{
		Label: "tex",
		Shaders: []gpucore.ShaderInfo{
			{Stage: gpucore.ShaderStageFragment, Variables: []gpucore.BindGroupVariable{
				{Type: gpucore.BindingTypeSampledImage, Binding: 0},
			}},
		},
	})
	if err != nil {
		t.Fatalf("CreateBindGroupLayout failed: %v", err)
	}
	_, err = c.CreateBindGroup(&gpucore.BindGroupDesc{
		Layout:   layout,
		Bindings: []gpucore.BindingInfo{{Resource: gpucore.SampledTexture(1), Binding: 0}},
	})
	if !errors.Is(err, ErrUnsupportedResource) {
		t.Errorf("err = %v, want ErrUnsupportedResource", err)
	}
}

func TestContextBindTable(t *testing.T) {
	c := newNoopContext(t)

	layout, err := c.CreateBindTableLayout(&gpucore.BindTableLayoutDesc{
		Label: "cameras",
		Shaders: []gpucore.ShaderInfo{
			{Stage: gpucore.ShaderStageCompute, Variables: []gpucore.BindGroupVariable{
				{Type: gpucore.BindingTypeUniform, Binding: 0, Count: 4},
			}},
		},
	})
	if err != nil {
		t.Fatalf("CreateBindTableLayout failed: %v", err)
	}

	buf, err := c.CreateBuffer(&gpucore.BufferDesc{Label: "cam", Size: 64})
	if err != nil {
		t.Fatalf("CreateBuffer failed: %v", err)
	}
	table, err := c.CreateBindTable(&gpucore.BindTableDesc{
		Label:  "cameras",
		Layout: layout,
		Bindings: []gpucore.IndexedBindingInfo{{
			Binding: 0,
			Resources: []gpucore.IndexedResource{
				{Resource: gpucore.UniformBuffer(gpucore.BufferView{Buffer: buf, Size: 64}), Slot: 2},
			},
		}},
	})
	if err != nil {
		t.Fatalf("CreateBindTable failed: %v", err)
	}
	c.DestroyBindTable(table)
	c.DestroyBindTableLayout(layout)
}

func TestLayoutEntries(t *testing.T) {
	entries, err := layoutEntries([]gpucore.ShaderInfo{
		{Stage: gpucore.ShaderStageFragment, Variables: []gpucore.BindGroupVariable{
			{Type: gpucore.BindingTypeSampler, Binding: 3},
			{Type: gpucore.BindingTypeUniform, Binding: 0},
		}},
		{Stage: gpucore.ShaderStageVertex, Variables: []gpucore.BindGroupVariable{
			{Type: gpucore.BindingTypeUniform, Binding: 0},
			{Type: gpucore.BindingTypeReadOnlyStorage, Binding: 1, Count: 2},
		}},
	})
	if err != nil {
		t.Fatalf("layoutEntries failed: %v", err)
	}

	wantBindings := []uint32{0, 1, 2, 3}
	if len(entries) != len(wantBindings) {
		t.Fatalf("got %d entries, want %d", len(entries), len(wantBindings))
	}
	for i, want := range wantBindings {
		if entries[i].Binding != want {
			t.Errorf("entries[%d].Binding = %d, want %d", i, entries[i].Binding, want)
		}
	}

	if entries[0].Visibility != gputypes.ShaderStageVertex|gputypes.ShaderStageFragment {
		t.Errorf("binding 0 visibility = %v, want vertex|fragment", entries[0].Visibility)
	}
	if entries[0].Buffer == nil || entries[0].Buffer.Type != gputypes.BufferBindingTypeUniform {
		t.Error("binding 0 should be a uniform buffer")
	}
	if entries[2].Buffer == nil || entries[2].Buffer.Type != gputypes.BufferBindingTypeReadOnlyStorage {
		t.Error("binding 2 should be an expanded read-only storage buffer")
	}
	if entries[3].Sampler == nil {
		t.Error("binding 3 should be a sampler")
	}
}

func TestLayoutEntriesErrors(t *testing.T) {
	tests := []struct {
		name    string
		shaders []gpucore.ShaderInfo
		wantErr error
	}{
		{
			name: "conflict",
			shaders: []gpucore.ShaderInfo{
				{Stage: gpucore.ShaderStageVertex, Variables: []gpucore.BindGroupVariable{{Type: gpucore.BindingTypeUniform}}},
				{Stage: gpucore.ShaderStageFragment, Variables: []gpucore.BindGroupVariable{{Type: gpucore.BindingTypeStorage}}},
			},
			wantErr: ErrConflictingBinding,
		},
		{
			name: "storage image",
			shaders: []gpucore.ShaderInfo{
				{Stage: gpucore.ShaderStageCompute, Variables: []gpucore.BindGroupVariable{{Type: gpucore.BindingTypeStorageImage}}},
			},
			wantErr: ErrUnsupportedBinding,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := layoutEntries(tt.shaders); !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConvertBufferUsage(t *testing.T) {
	got := convertBufferUsage(gpucore.BufferUsageUniform)
	if got&gputypes.BufferUsageUniform == 0 {
		t.Error("uniform usage not translated")
	}
	if got&gputypes.BufferUsageCopyDst == 0 {
		t.Error("copy-dst should always be set")
	}
	if got&gputypes.BufferUsageStorage != 0 {
		t.Error("storage usage set unexpectedly")
	}
}

type plainProvider struct{}

func (plainProvider) Device() gpucontext.Device             { return nil }
func (plainProvider) Queue() gpucontext.Queue               { return nil }
func (plainProvider) Adapter() gpucontext.Adapter           { return nil }
func (plainProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }
func (plainProvider) AdapterInfo() gpucontext.AdapterInfo   { return gpucontext.AdapterInfo{} }

var _ gpucontext.DeviceProvider = halProvider{}

type halProvider struct {
	plainProvider
	device hal.Device
	queue  hal.Queue
}

func (p halProvider) HalDevice() any { return p.device }
func (p halProvider) HalQueue() any  { return p.queue }

func TestNewFromProvider(t *testing.T) {
	if _, err := NewFromProvider(plainProvider{}); !errors.Is(err, ErrNoHALAccess) {
		t.Errorf("plain provider err = %v, want ErrNoHALAccess", err)
	}

	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	c, err := NewFromProvider(halProvider{device: device, queue: queue})
	if err != nil {
		t.Fatalf("NewFromProvider failed: %v", err)
	}
	if c.device != device || c.queue != queue {
		t.Error("provider device/queue not stored")
	}
	c.Close()

	if _, err := NewFromProvider(halProvider{}); !errors.Is(err, ErrNoHALAccess) {
		t.Errorf("nil HAL handles err = %v, want ErrNoHALAccess", err)
	}
}
