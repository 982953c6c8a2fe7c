package reserve

import "github.com/gogpu/bindkit/gpucore"

// ReservedBinding describes how a reserved resource is bound: either a
// single resource at one binding index, or an array of resources at a
// base binding index. Exactly one of the two is set.
type ReservedBinding struct {
	direct  *gpucore.BindingInfo
	indexed *gpucore.IndexedBindingInfo
}

// DirectBinding returns a binding of a single resource.
func DirectBinding(b gpucore.BindingInfo) ReservedBinding {
	return ReservedBinding{direct: &b}
}

// IndexedBinding returns a binding of a resource array.
func IndexedBinding(b gpucore.IndexedBindingInfo) ReservedBinding {
	return ReservedBinding{indexed: &b}
}

// Direct returns the single-resource binding.
func (b ReservedBinding) Direct() (gpucore.BindingInfo, bool) {
	if b.direct == nil {
		return gpucore.BindingInfo{}, false
	}
	return *b.direct, true
}

// Indexed returns the resource-array binding.
func (b ReservedBinding) Indexed() (gpucore.IndexedBindingInfo, bool) {
	if b.indexed == nil {
		return gpucore.IndexedBindingInfo{}, false
	}
	return *b.indexed, true
}

// IsIndexed reports whether the binding is a resource array.
func (b ReservedBinding) IsIndexed() bool {
	return b.indexed != nil
}

// Resource is an engine-owned GPU resource refreshed once per tick.
// The set of implementations is closed: Timing, Camera and
// BindlessCameras.
type Resource interface {
	// Name returns the reserved name shaders refer to the resource by.
	Name() string

	// Update refreshes the GPU-side contents.
	Update(ctx gpucore.Context) error

	// Binding describes the resource for binding-set construction.
	Binding() ReservedBinding

	// Destroy releases the GPU objects of the resource.
	Destroy(ctx gpucore.Context)

	reserved()
}
