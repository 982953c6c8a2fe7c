// Package native provides a gpucore.Context on top of gogpu/wgpu/hal.
package native

import (
	"fmt"
	"slices"

	"github.com/gogpu/bindkit"
	"github.com/gogpu/bindkit/backend"
	"github.com/gogpu/bindkit/gpucore"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// halBuffer pairs a HAL buffer with the host shadow copy that backs
// MapBuffer. UnmapBuffer uploads the shadow through the queue.
type halBuffer struct {
	buf    hal.Buffer
	shadow []byte
	mapped bool
}

// Context implements gpucore.Context using gogpu/wgpu/hal directly.
// It maps gpucore IDs to HAL objects.
//
// Context is not safe for concurrent use.
type Context struct {
	device hal.Device
	queue  hal.Queue

	// release destroys the device and instance when Context opened them
	// itself. Nil for shared devices.
	release func()

	nextID uint64

	buffers          map[gpucore.BufferID]*halBuffer
	bindGroupLayouts map[gpucore.BindGroupLayoutID]hal.BindGroupLayout
	bindTableLayouts map[gpucore.BindTableLayoutID]hal.BindGroupLayout
	bindGroups       map[gpucore.BindGroupID]hal.BindGroup
	bindTables       map[gpucore.BindTableID]hal.BindGroup
}

// Compile-time check that Context implements backend.Device.
var _ backend.Device = (*Context)(nil)

// New creates a Context wrapping the given device and queue.
// The caller keeps ownership of both; Close releases only the objects the
// Context created.
func New(device hal.Device, queue hal.Queue) *Context {
	return &Context{
		device:           device,
		queue:            queue,
		nextID:           1,
		buffers:          make(map[gpucore.BufferID]*halBuffer),
		bindGroupLayouts: make(map[gpucore.BindGroupLayoutID]hal.BindGroupLayout),
		bindTableLayouts: make(map[gpucore.BindTableLayoutID]hal.BindGroupLayout),
		bindGroups:       make(map[gpucore.BindGroupID]hal.BindGroup),
		bindTables:       make(map[gpucore.BindTableID]hal.BindGroup),
	}
}

func (c *Context) newID() uint64 {
	id := c.nextID
	c.nextID++
	return id
}

// Name returns the backend identifier.
func (c *Context) Name() string { return backend.NameNative }

// Close releases all tracked objects, then the device if Context owns it.
func (c *Context) Close() {
	for id := range c.bindTables {
		c.DestroyBindTable(id)
	}
	for id := range c.bindGroups {
		c.DestroyBindGroup(id)
	}
	for id := range c.bindTableLayouts {
		c.DestroyBindTableLayout(id)
	}
	for id := range c.bindGroupLayouts {
		c.DestroyBindGroupLayout(id)
	}
	for id := range c.buffers {
		c.DestroyBuffer(id)
	}
	if c.release != nil {
		c.release()
		c.release = nil
	}
}

// === Buffer Management ===

// CreateBuffer creates a HAL buffer and uploads the initial data.
func (c *Context) CreateBuffer(desc *gpucore.BufferDesc) (gpucore.BufferID, error) {
	if desc == nil || desc.Size == 0 || uint64(len(desc.InitialData)) > desc.Size {
		return gpucore.InvalidID, gpucore.ErrInvalidSize
	}

	buf, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: convertBufferUsage(desc.Usage),
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create buffer %q: %w", desc.Label, err)
	}

	hb := &halBuffer{buf: buf, shadow: make([]byte, desc.Size)}
	copy(hb.shadow, desc.InitialData)
	if len(desc.InitialData) > 0 {
		c.queue.WriteBuffer(buf, 0, hb.shadow)
	}

	id := gpucore.BufferID(c.newID())
	c.buffers[id] = hb

	bindkit.Logger().Debug("native: buffer created",
		"label", desc.Label,
		"size", desc.Size)
	return id, nil
}

// DestroyBuffer releases a HAL buffer.
func (c *Context) DestroyBuffer(id gpucore.BufferID) {
	hb, ok := c.buffers[id]
	if !ok {
		return
	}
	delete(c.buffers, id)
	c.device.DestroyBuffer(hb.buf)
}

// MapBuffer returns the host shadow of the buffer for writing.
func (c *Context) MapBuffer(id gpucore.BufferID) ([]byte, error) {
	hb, ok := c.buffers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", gpucore.ErrUnknownBuffer, id)
	}
	if hb.mapped {
		return nil, fmt.Errorf("%w: %d", gpucore.ErrAlreadyMapped, id)
	}
	hb.mapped = true
	return hb.shadow, nil
}

// UnmapBuffer uploads the host shadow through the queue.
func (c *Context) UnmapBuffer(id gpucore.BufferID) error {
	hb, ok := c.buffers[id]
	if !ok {
		return fmt.Errorf("%w: %d", gpucore.ErrUnknownBuffer, id)
	}
	if !hb.mapped {
		return fmt.Errorf("%w: %d", gpucore.ErrNotMapped, id)
	}
	hb.mapped = false
	c.queue.WriteBuffer(hb.buf, 0, hb.shadow)
	return nil
}

// === Layouts ===

// CreateBindGroupLayout creates a HAL bind group layout.
func (c *Context) CreateBindGroupLayout(desc *gpucore.BindGroupLayoutDesc) (gpucore.BindGroupLayoutID, error) {
	if desc == nil {
		return gpucore.InvalidID, fmt.Errorf("native: nil bind group layout descriptor")
	}
	layout, err := c.createLayout(desc.Label, desc.Shaders)
	if err != nil {
		return gpucore.InvalidID, err
	}
	id := gpucore.BindGroupLayoutID(c.newID())
	c.bindGroupLayouts[id] = layout
	return id, nil
}

// DestroyBindGroupLayout releases a bind group layout.
func (c *Context) DestroyBindGroupLayout(id gpucore.BindGroupLayoutID) {
	if layout, ok := c.bindGroupLayouts[id]; ok {
		delete(c.bindGroupLayouts, id)
		c.device.DestroyBindGroupLayout(layout)
	}
}

// CreateBindTableLayout creates a HAL bind group layout for an indexed
// table. Core WebGPU has no binding arrays, so an array variable of
// count N occupies N consecutive bindings.
func (c *Context) CreateBindTableLayout(desc *gpucore.BindTableLayoutDesc) (gpucore.BindTableLayoutID, error) {
	if desc == nil {
		return gpucore.InvalidID, fmt.Errorf("native: nil bind table layout descriptor")
	}
	layout, err := c.createLayout(desc.Label, desc.Shaders)
	if err != nil {
		return gpucore.InvalidID, err
	}
	id := gpucore.BindTableLayoutID(c.newID())
	c.bindTableLayouts[id] = layout
	return id, nil
}

// DestroyBindTableLayout releases a bind table layout.
func (c *Context) DestroyBindTableLayout(id gpucore.BindTableLayoutID) {
	if layout, ok := c.bindTableLayouts[id]; ok {
		delete(c.bindTableLayouts, id)
		c.device.DestroyBindGroupLayout(layout)
	}
}

func (c *Context) createLayout(label string, shaders []gpucore.ShaderInfo) (hal.BindGroupLayout, error) {
	entries, err := layoutEntries(shaders)
	if err != nil {
		return nil, fmt.Errorf("native: layout %q: %w", label, err)
	}
	layout, err := c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   label,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create layout %q: %w", label, err)
	}
	bindkit.Logger().Debug("native: layout created",
		"label", label,
		"entries", len(entries))
	return layout, nil
}

// === Bound objects ===

// CreateBindGroup creates a HAL bind group.
func (c *Context) CreateBindGroup(desc *gpucore.BindGroupDesc) (gpucore.BindGroupID, error) {
	if desc == nil {
		return gpucore.InvalidID, fmt.Errorf("native: nil bind group descriptor")
	}
	layout, ok := c.bindGroupLayouts[desc.Layout]
	if !ok {
		return gpucore.InvalidID, fmt.Errorf("%w: bind group layout %d", gpucore.ErrUnknownLayout, desc.Layout)
	}
	entries := make([]gputypes.BindGroupEntry, 0, len(desc.Bindings))
	for _, b := range desc.Bindings {
		e, err := c.bindGroupEntry(b.Binding, b.Resource)
		if err != nil {
			return gpucore.InvalidID, err
		}
		entries = append(entries, e)
	}
	bg, err := c.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create bind group %q: %w", desc.Label, err)
	}
	id := gpucore.BindGroupID(c.newID())
	c.bindGroups[id] = bg
	return id, nil
}

// DestroyBindGroup releases a bind group.
func (c *Context) DestroyBindGroup(id gpucore.BindGroupID) {
	if bg, ok := c.bindGroups[id]; ok {
		delete(c.bindGroups, id)
		c.device.DestroyBindGroup(bg)
	}
}

// CreateBindTable creates a HAL bind group for an indexed table, placing
// slot i of an indexed binding at binding base+i.
func (c *Context) CreateBindTable(desc *gpucore.BindTableDesc) (gpucore.BindTableID, error) {
	if desc == nil {
		return gpucore.InvalidID, fmt.Errorf("native: nil bind table descriptor")
	}
	layout, ok := c.bindTableLayouts[desc.Layout]
	if !ok {
		return gpucore.InvalidID, fmt.Errorf("%w: bind table layout %d", gpucore.ErrUnknownLayout, desc.Layout)
	}
	var entries []gputypes.BindGroupEntry
	for _, b := range desc.Bindings {
		for _, r := range b.Resources {
			e, err := c.bindGroupEntry(b.Binding+r.Slot, r.Resource)
			if err != nil {
				return gpucore.InvalidID, err
			}
			entries = append(entries, e)
		}
	}
	bg, err := c.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create bind table %q: %w", desc.Label, err)
	}
	id := gpucore.BindTableID(c.newID())
	c.bindTables[id] = bg
	return id, nil
}

// DestroyBindTable releases a bind table.
func (c *Context) DestroyBindTable(id gpucore.BindTableID) {
	if bg, ok := c.bindTables[id]; ok {
		delete(c.bindTables, id)
		c.device.DestroyBindGroup(bg)
	}
}

func (c *Context) bindGroupEntry(binding uint32, r gpucore.ShaderResource) (gputypes.BindGroupEntry, error) {
	switch r.Kind {
	case gpucore.ResourceUniformBuffer, gpucore.ResourceStorageBuffer:
		hb, ok := c.buffers[r.Buffer.Buffer]
		if !ok {
			return gputypes.BindGroupEntry{}, fmt.Errorf("%w: %d", gpucore.ErrUnknownBuffer, r.Buffer.Buffer)
		}
		return gputypes.BindGroupEntry{
			Binding: binding,
			Resource: gputypes.BufferBinding{
				Buffer: hb.buf.NativeHandle(),
				Offset: r.Buffer.Offset,
				Size:   r.Buffer.Size,
			},
		}, nil
	default:
		return gputypes.BindGroupEntry{}, fmt.Errorf("%w: binding %d", ErrUnsupportedResource, binding)
	}
}

// === Conversion ===

// convertBufferUsage translates gpucore usage flags to gputypes.
func convertBufferUsage(usage gpucore.BufferUsage) gputypes.BufferUsage {
	var out gputypes.BufferUsage
	if usage&gpucore.BufferUsageUniform != 0 {
		out |= gputypes.BufferUsageUniform
	}
	if usage&gpucore.BufferUsageStorage != 0 {
		out |= gputypes.BufferUsageStorage
	}
	if usage&gpucore.BufferUsageCopyDst != 0 {
		out |= gputypes.BufferUsageCopyDst
	}
	if usage&gpucore.BufferUsageCopySrc != 0 {
		out |= gputypes.BufferUsageCopySrc
	}
	// Host writes always go through Queue.WriteBuffer.
	out |= gputypes.BufferUsageCopyDst
	return out
}

// layoutEntries flattens per-stage variables into one entry per binding,
// OR-ing the visibility of every stage that declares it. Array variables
// are expanded to consecutive bindings.
func layoutEntries(shaders []gpucore.ShaderInfo) ([]gputypes.BindGroupLayoutEntry, error) {
	index := make(map[uint32]int)
	kinds := make(map[uint32]gpucore.BindingType)
	var entries []gputypes.BindGroupLayoutEntry

	for _, s := range shaders {
		for _, v := range s.Variables {
			count := max(v.Count, 1)
			for i := range count {
				binding := v.Binding + i
				pos, seen := index[binding]
				if !seen {
					e, err := newLayoutEntry(binding, v.Type)
					if err != nil {
						return nil, err
					}
					pos = len(entries)
					index[binding] = pos
					kinds[binding] = v.Type
					entries = append(entries, e)
				} else if kinds[binding] != v.Type {
					return nil, fmt.Errorf("%w: binding %d is %s and %s",
						ErrConflictingBinding, binding, kinds[binding], v.Type)
				}
				switch s.Stage {
				case gpucore.ShaderStageVertex:
					entries[pos].Visibility |= gputypes.ShaderStageVertex
				case gpucore.ShaderStageFragment:
					entries[pos].Visibility |= gputypes.ShaderStageFragment
				case gpucore.ShaderStageCompute:
					entries[pos].Visibility |= gputypes.ShaderStageCompute
				}
			}
		}
	}

	slices.SortFunc(entries, func(a, b gputypes.BindGroupLayoutEntry) int {
		return int(a.Binding) - int(b.Binding)
	})
	return entries, nil
}

func newLayoutEntry(binding uint32, t gpucore.BindingType) (gputypes.BindGroupLayoutEntry, error) {
	e := gputypes.BindGroupLayoutEntry{Binding: binding}
	switch t {
	case gpucore.BindingTypeUniform:
		e.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}
	case gpucore.BindingTypeStorage:
		e.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}
	case gpucore.BindingTypeReadOnlyStorage:
		e.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}
	case gpucore.BindingTypeSampledImage:
		e.Texture = &gputypes.TextureBindingLayout{
			SampleType:    gputypes.TextureSampleTypeFloat,
			ViewDimension: gputypes.TextureViewDimension2D,
		}
	case gpucore.BindingTypeSampler:
		e.Sampler = &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering}
	default:
		return e, fmt.Errorf("%w: %s at binding %d", ErrUnsupportedBinding, t, binding)
	}
	return e, nil
}
