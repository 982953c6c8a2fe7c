// Package software provides a host-memory implementation of gpucore.Context.
//
// Buffers are plain byte slices and layouts, groups and tables are recorded
// descriptors. It is used for headless tooling (dry runs of a recipe book)
// and as the GPU layer in tests that must not depend on a device.
package software

import (
	"fmt"
	"slices"

	"github.com/gogpu/bindkit/backend"
	"github.com/gogpu/bindkit/gpucore"
)

func init() {
	backend.Register(backend.NameSoftware, func() (backend.Device, error) {
		return New(), nil
	})
}

type buffer struct {
	desc      gpucore.BufferDesc
	published []byte
	staging   []byte
	mapped    bool
}

// Counts reports how many objects of each kind are currently alive.
type Counts struct {
	Buffers          int
	BindGroupLayouts int
	BindTableLayouts int
	BindGroups       int
	BindTables       int
}

// Context is a gpucore.Context backed by host memory.
//
// Context is not safe for concurrent use.
type Context struct {
	nextID uint64

	buffers          map[gpucore.BufferID]*buffer
	bindGroupLayouts map[gpucore.BindGroupLayoutID]gpucore.BindGroupLayoutDesc
	bindTableLayouts map[gpucore.BindTableLayoutID]gpucore.BindTableLayoutDesc
	bindGroups       map[gpucore.BindGroupID]gpucore.BindGroupDesc
	bindTables       map[gpucore.BindTableID]gpucore.BindTableDesc

	// failBuffersAfter makes CreateBuffer fail once this many buffers have
	// been created. Negative disables failure injection.
	failBuffersAfter int
	created          int
}

// Compile-time check that Context implements backend.Device.
var _ backend.Device = (*Context)(nil)

// New creates an empty software context.
func New() *Context {
	return &Context{
		nextID:           1,
		buffers:          make(map[gpucore.BufferID]*buffer),
		bindGroupLayouts: make(map[gpucore.BindGroupLayoutID]gpucore.BindGroupLayoutDesc),
		bindTableLayouts: make(map[gpucore.BindTableLayoutID]gpucore.BindTableLayoutDesc),
		bindGroups:       make(map[gpucore.BindGroupID]gpucore.BindGroupDesc),
		bindTables:       make(map[gpucore.BindTableID]gpucore.BindTableDesc),
		failBuffersAfter: -1,
	}
}

// Name returns the backend identifier.
func (c *Context) Name() string { return backend.NameSoftware }

// Close releases everything the context still tracks.
func (c *Context) Close() {
	clear(c.buffers)
	clear(c.bindGroupLayouts)
	clear(c.bindTableLayouts)
	clear(c.bindGroups)
	clear(c.bindTables)
}

// FailBufferAfter makes every CreateBuffer call fail once n more buffers
// have been created. Pass a negative n to disable.
func (c *Context) FailBufferAfter(n int) {
	c.failBuffersAfter = n
	c.created = 0
}

func (c *Context) newID() uint64 {
	id := c.nextID
	c.nextID++
	return id
}

// === Buffer Management ===

// CreateBuffer creates a host buffer.
func (c *Context) CreateBuffer(desc *gpucore.BufferDesc) (gpucore.BufferID, error) {
	if desc == nil || desc.Size == 0 || uint64(len(desc.InitialData)) > desc.Size {
		return gpucore.InvalidID, gpucore.ErrInvalidSize
	}
	if c.failBuffersAfter >= 0 && c.created >= c.failBuffersAfter {
		return gpucore.InvalidID, fmt.Errorf("software: create buffer %q: out of memory", desc.Label)
	}
	c.created++

	b := &buffer{
		desc:      *desc,
		published: make([]byte, desc.Size),
	}
	b.desc.InitialData = nil
	copy(b.published, desc.InitialData)

	id := gpucore.BufferID(c.newID())
	c.buffers[id] = b
	return id, nil
}

// DestroyBuffer releases a host buffer.
func (c *Context) DestroyBuffer(id gpucore.BufferID) {
	delete(c.buffers, id)
}

// MapBuffer returns a staging copy of the buffer contents.
func (c *Context) MapBuffer(id gpucore.BufferID) ([]byte, error) {
	b, ok := c.buffers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", gpucore.ErrUnknownBuffer, id)
	}
	if b.mapped {
		return nil, fmt.Errorf("%w: %d", gpucore.ErrAlreadyMapped, id)
	}
	b.mapped = true
	b.staging = slices.Clone(b.published)
	return b.staging, nil
}

// UnmapBuffer publishes the staging copy.
func (c *Context) UnmapBuffer(id gpucore.BufferID) error {
	b, ok := c.buffers[id]
	if !ok {
		return fmt.Errorf("%w: %d", gpucore.ErrUnknownBuffer, id)
	}
	if !b.mapped {
		return fmt.Errorf("%w: %d", gpucore.ErrNotMapped, id)
	}
	copy(b.published, b.staging)
	b.staging = nil
	b.mapped = false
	return nil
}

// BufferData returns a copy of the last published contents of a buffer.
func (c *Context) BufferData(id gpucore.BufferID) ([]byte, bool) {
	b, ok := c.buffers[id]
	if !ok {
		return nil, false
	}
	return slices.Clone(b.published), true
}

// BufferDesc returns the descriptor a buffer was created with.
func (c *Context) BufferDesc(id gpucore.BufferID) (gpucore.BufferDesc, bool) {
	b, ok := c.buffers[id]
	if !ok {
		return gpucore.BufferDesc{}, false
	}
	return b.desc, true
}

// === Layouts ===

// CreateBindGroupLayout records a binding-group layout.
func (c *Context) CreateBindGroupLayout(desc *gpucore.BindGroupLayoutDesc) (gpucore.BindGroupLayoutID, error) {
	if desc == nil {
		return gpucore.InvalidID, fmt.Errorf("software: nil bind group layout descriptor")
	}
	id := gpucore.BindGroupLayoutID(c.newID())
	c.bindGroupLayouts[id] = cloneShaders(*desc)
	return id, nil
}

// DestroyBindGroupLayout releases a binding-group layout.
func (c *Context) DestroyBindGroupLayout(id gpucore.BindGroupLayoutID) {
	delete(c.bindGroupLayouts, id)
}

// BindGroupLayout returns a recorded binding-group layout.
func (c *Context) BindGroupLayout(id gpucore.BindGroupLayoutID) (gpucore.BindGroupLayoutDesc, bool) {
	d, ok := c.bindGroupLayouts[id]
	return d, ok
}

// CreateBindTableLayout records a binding-table layout.
func (c *Context) CreateBindTableLayout(desc *gpucore.BindTableLayoutDesc) (gpucore.BindTableLayoutID, error) {
	if desc == nil {
		return gpucore.InvalidID, fmt.Errorf("software: nil bind table layout descriptor")
	}
	id := gpucore.BindTableLayoutID(c.newID())
	c.bindTableLayouts[id] = gpucore.BindTableLayoutDesc(cloneShaders(gpucore.BindGroupLayoutDesc(*desc)))
	return id, nil
}

// DestroyBindTableLayout releases a binding-table layout.
func (c *Context) DestroyBindTableLayout(id gpucore.BindTableLayoutID) {
	delete(c.bindTableLayouts, id)
}

// BindTableLayout returns a recorded binding-table layout.
func (c *Context) BindTableLayout(id gpucore.BindTableLayoutID) (gpucore.BindTableLayoutDesc, bool) {
	d, ok := c.bindTableLayouts[id]
	return d, ok
}

// === Bound objects ===

// CreateBindGroup records a binding group after checking that every bound
// buffer exists.
func (c *Context) CreateBindGroup(desc *gpucore.BindGroupDesc) (gpucore.BindGroupID, error) {
	if desc == nil {
		return gpucore.InvalidID, fmt.Errorf("software: nil bind group descriptor")
	}
	if _, ok := c.bindGroupLayouts[desc.Layout]; !ok {
		return gpucore.InvalidID, fmt.Errorf("%w: bind group layout %d", gpucore.ErrUnknownLayout, desc.Layout)
	}
	for _, b := range desc.Bindings {
		if err := c.checkResource(b.Resource); err != nil {
			return gpucore.InvalidID, fmt.Errorf("software: binding %d: %w", b.Binding, err)
		}
	}
	id := gpucore.BindGroupID(c.newID())
	d := *desc
	d.Bindings = slices.Clone(desc.Bindings)
	c.bindGroups[id] = d
	return id, nil
}

// DestroyBindGroup releases a binding group.
func (c *Context) DestroyBindGroup(id gpucore.BindGroupID) {
	delete(c.bindGroups, id)
}

// BindGroup returns a recorded binding group.
func (c *Context) BindGroup(id gpucore.BindGroupID) (gpucore.BindGroupDesc, bool) {
	d, ok := c.bindGroups[id]
	return d, ok
}

// CreateBindTable records a binding table after checking that every bound
// buffer exists.
func (c *Context) CreateBindTable(desc *gpucore.BindTableDesc) (gpucore.BindTableID, error) {
	if desc == nil {
		return gpucore.InvalidID, fmt.Errorf("software: nil bind table descriptor")
	}
	if _, ok := c.bindTableLayouts[desc.Layout]; !ok {
		return gpucore.InvalidID, fmt.Errorf("%w: bind table layout %d", gpucore.ErrUnknownLayout, desc.Layout)
	}
	for _, b := range desc.Bindings {
		for _, r := range b.Resources {
			if err := c.checkResource(r.Resource); err != nil {
				return gpucore.InvalidID, fmt.Errorf("software: binding %d slot %d: %w", b.Binding, r.Slot, err)
			}
		}
	}
	id := gpucore.BindTableID(c.newID())
	d := *desc
	d.Bindings = slices.Clone(desc.Bindings)
	c.bindTables[id] = d
	return id, nil
}

// DestroyBindTable releases a binding table.
func (c *Context) DestroyBindTable(id gpucore.BindTableID) {
	delete(c.bindTables, id)
}

// BindTable returns a recorded binding table.
func (c *Context) BindTable(id gpucore.BindTableID) (gpucore.BindTableDesc, bool) {
	d, ok := c.bindTables[id]
	return d, ok
}

// Counts returns the number of live objects of each kind.
func (c *Context) Counts() Counts {
	return Counts{
		Buffers:          len(c.buffers),
		BindGroupLayouts: len(c.bindGroupLayouts),
		BindTableLayouts: len(c.bindTableLayouts),
		BindGroups:       len(c.bindGroups),
		BindTables:       len(c.bindTables),
	}
}

func (c *Context) checkResource(r gpucore.ShaderResource) error {
	switch r.Kind {
	case gpucore.ResourceUniformBuffer, gpucore.ResourceStorageBuffer:
		if _, ok := c.buffers[r.Buffer.Buffer]; !ok {
			return fmt.Errorf("%w: %d", gpucore.ErrUnknownBuffer, r.Buffer.Buffer)
		}
	case gpucore.ResourceNone:
		return fmt.Errorf("software: empty resource")
	}
	return nil
}

func cloneShaders(desc gpucore.BindGroupLayoutDesc) gpucore.BindGroupLayoutDesc {
	out := gpucore.BindGroupLayoutDesc{Label: desc.Label, Shaders: make([]gpucore.ShaderInfo, len(desc.Shaders))}
	for i, s := range desc.Shaders {
		out.Shaders[i] = gpucore.ShaderInfo{Stage: s.Stage, Variables: slices.Clone(s.Variables)}
	}
	return out
}
