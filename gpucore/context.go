package gpucore

// Context abstracts over the GPU API layer that owns buffers and
// binding objects.
//
// Components never store a Context. It is passed to every call that
// touches GPU memory, so the caller decides how long the device lives.
//
// Resource lifecycle:
//   - Resources are created via Create* methods
//   - Resources must be explicitly destroyed via Destroy* methods
//   - Destroying a resource while in use is undefined behavior
//   - IDs become invalid after destruction and must not be reused
//
// Implementations are not required to be safe for concurrent use.
type Context interface {
	// === Buffer Management ===

	// CreateBuffer creates a GPU buffer, uploading desc.InitialData if set.
	// Returns the buffer ID or an error if allocation fails.
	CreateBuffer(desc *BufferDesc) (BufferID, error)

	// DestroyBuffer releases a GPU buffer. Unknown IDs are ignored.
	DestroyBuffer(id BufferID)

	// MapBuffer returns a writable host view of the whole buffer.
	// Only one mapping per buffer may be active; the view must not be
	// used after UnmapBuffer.
	MapBuffer(id BufferID) ([]byte, error)

	// UnmapBuffer ends the mapping and makes the written bytes visible
	// to the GPU.
	UnmapBuffer(id BufferID) error

	// === Layouts ===

	// CreateBindGroupLayout creates a direct binding-group layout.
	CreateBindGroupLayout(desc *BindGroupLayoutDesc) (BindGroupLayoutID, error)

	// DestroyBindGroupLayout releases a binding-group layout.
	DestroyBindGroupLayout(id BindGroupLayoutID)

	// CreateBindTableLayout creates an indexed binding-table layout.
	CreateBindTableLayout(desc *BindTableLayoutDesc) (BindTableLayoutID, error)

	// DestroyBindTableLayout releases a binding-table layout.
	DestroyBindTableLayout(id BindTableLayoutID)

	// === Bound objects ===

	// CreateBindGroup binds resources to a binding-group layout.
	CreateBindGroup(desc *BindGroupDesc) (BindGroupID, error)

	// DestroyBindGroup releases a binding group.
	DestroyBindGroup(id BindGroupID)

	// CreateBindTable binds indexed resources to a binding-table layout.
	CreateBindTable(desc *BindTableDesc) (BindTableID, error)

	// DestroyBindTable releases a binding table.
	DestroyBindTable(id BindTableID)
}

// WriteBuffer maps the buffer, copies data at offset and unmaps it again.
// It is the scoped map-write-unmap sequence every per-tick refresh uses.
func WriteBuffer(ctx Context, id BufferID, offset uint64, data []byte) error {
	view, err := ctx.MapBuffer(id)
	if err != nil {
		return err
	}
	if offset > uint64(len(view)) || uint64(len(data)) > uint64(len(view))-offset {
		_ = ctx.UnmapBuffer(id)
		return ErrOutOfRange
	}
	copy(view[offset:], data)
	return ctx.UnmapBuffer(id)
}
