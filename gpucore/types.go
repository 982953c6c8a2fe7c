package gpucore

import (
	"fmt"
	"strings"
)

// Resource IDs
//
// These opaque IDs represent GPU objects. Each Context implementation
// maintains a mapping between IDs and actual backend objects.
// IDs are uint64 to accommodate various backend handle sizes.

// BufferID is an opaque handle to a GPU buffer.
type BufferID uint64

// TextureID is an opaque handle to a GPU texture view.
type TextureID uint64

// SamplerID is an opaque handle to a GPU sampler.
type SamplerID uint64

// BindGroupLayoutID is an opaque handle to a direct binding-group layout.
type BindGroupLayoutID uint64

// BindTableLayoutID is an opaque handle to an indexed binding-table layout.
type BindTableLayoutID uint64

// BindGroupID is an opaque handle to a bound binding group.
type BindGroupID uint64

// BindTableID is an opaque handle to a bound binding table.
type BindTableID uint64

// InvalidID is the zero value, representing an invalid/null resource.
const InvalidID = 0

// BufferUsage is a bitmask specifying how a buffer will be used.
type BufferUsage uint32

// Buffer usage flags.
const (
	// BufferUsageUniform indicates the buffer can be bound as a uniform buffer.
	BufferUsageUniform BufferUsage = 1 << 0

	// BufferUsageStorage indicates the buffer can be bound as a storage buffer.
	BufferUsageStorage BufferUsage = 1 << 1

	// BufferUsageCopyDst indicates the buffer can be written from the host.
	BufferUsageCopyDst BufferUsage = 1 << 2

	// BufferUsageCopySrc indicates the buffer can be used as a copy source.
	BufferUsageCopySrc BufferUsage = 1 << 3
)

// BindingType is the kind of resource a shader binding expects.
type BindingType uint8

// Binding types.
const (
	// BindingTypeUndefined is the zero value, used by unresolved bindings.
	BindingTypeUndefined BindingType = iota

	// BindingTypeUniform is a uniform (constant) buffer.
	BindingTypeUniform

	// BindingTypeStorage is a read-write storage buffer.
	BindingTypeStorage

	// BindingTypeReadOnlyStorage is a read-only storage buffer.
	BindingTypeReadOnlyStorage

	// BindingTypeSampledImage is a sampled texture.
	BindingTypeSampledImage

	// BindingTypeStorageImage is a storage texture.
	BindingTypeStorageImage

	// BindingTypeSampler is a texture sampler.
	BindingTypeSampler
)

// String returns the binding type name.
func (t BindingType) String() string {
	switch t {
	case BindingTypeUndefined:
		return "Undefined"
	case BindingTypeUniform:
		return "Uniform"
	case BindingTypeStorage:
		return "Storage"
	case BindingTypeReadOnlyStorage:
		return "ReadOnlyStorage"
	case BindingTypeSampledImage:
		return "SampledImage"
	case BindingTypeStorageImage:
		return "StorageImage"
	case BindingTypeSampler:
		return "Sampler"
	default:
		return fmt.Sprintf("BindingType(%d)", uint8(t))
	}
}

// ParseBindingType parses a binding type name, case-insensitively. Both
// the String form ("ReadOnlyStorage") and the snake_case form
// ("read_only_storage") are accepted.
func ParseBindingType(s string) (BindingType, error) {
	name := strings.ReplaceAll(strings.ToLower(s), "_", "")
	for t := BindingTypeUniform; t <= BindingTypeSampler; t++ {
		if strings.ToLower(t.String()) == name {
			return t, nil
		}
	}
	return BindingTypeUndefined, fmt.Errorf("%w: %q", ErrUnknownBindingType, s)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *BindingType) UnmarshalText(text []byte) error {
	parsed, err := ParseBindingType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (t BindingType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// IsBuffer reports whether the binding type is backed by a buffer.
func (t BindingType) IsBuffer() bool {
	return t == BindingTypeUniform || t == BindingTypeStorage || t == BindingTypeReadOnlyStorage
}

// ShaderStage identifies a programmable pipeline stage.
type ShaderStage uint8

// Shader stages.
const (
	ShaderStageVertex ShaderStage = iota
	ShaderStageFragment
	ShaderStageCompute
)

// String returns the stage name.
func (s ShaderStage) String() string {
	switch s {
	case ShaderStageVertex:
		return "Vertex"
	case ShaderStageFragment:
		return "Fragment"
	case ShaderStageCompute:
		return "Compute"
	default:
		return fmt.Sprintf("ShaderStage(%d)", uint8(s))
	}
}

// BindGroupVariable describes one binding declared by a shader:
// the resource kind, its binding index within the set, and the array count.
type BindGroupVariable struct {
	// Type is the resource kind expected at this binding.
	Type BindingType

	// Binding is the binding index within the set.
	Binding uint32

	// Count is the array element count. 1 for non-array bindings.
	Count uint32
}

// ShaderInfo lists the variables a single stage declares for one set.
type ShaderInfo struct {
	Stage     ShaderStage
	Variables []BindGroupVariable
}

// BindGroupLayoutDesc describes a direct binding-group layout.
type BindGroupLayoutDesc struct {
	// Label is an optional debug label.
	Label string

	// Shaders lists the per-stage variables of this layout.
	Shaders []ShaderInfo
}

// BindTableLayoutDesc describes an indexed (bindless) binding-table layout.
type BindTableLayoutDesc struct {
	// Label is an optional debug label.
	Label string

	// Shaders lists the per-stage variables of this layout.
	Shaders []ShaderInfo
}

// BufferDesc describes a buffer to create.
type BufferDesc struct {
	// Label is an optional debug label.
	Label string

	// Size is the buffer size in bytes. Must be positive.
	Size uint64

	// Usage is a bitmask of BufferUsage flags.
	Usage BufferUsage

	// InitialData, if non-nil, is uploaded at creation. It must not be
	// longer than Size.
	InitialData []byte
}

// BufferView is a byte range of a buffer.
type BufferView struct {
	Buffer BufferID
	Offset uint64

	// Size is the size of the range. Use 0 to bind the entire buffer from Offset.
	Size uint64
}

// ResourceKind identifies which field of a ShaderResource is meaningful.
type ResourceKind uint8

// Resource kinds.
const (
	ResourceNone ResourceKind = iota
	ResourceUniformBuffer
	ResourceStorageBuffer
	ResourceSampledTexture
	ResourceStorageTexture
	ResourceSampler
)

// ShaderResource is a GPU object that can be bound to a shader variable.
// Build values with UniformBuffer, StorageBuffer, SampledTexture,
// StorageTexture or SamplerResource.
type ShaderResource struct {
	Kind    ResourceKind
	Buffer  BufferView
	Texture TextureID
	Sampler SamplerID
}

// UniformBuffer returns a uniform-buffer resource.
func UniformBuffer(view BufferView) ShaderResource {
	return ShaderResource{Kind: ResourceUniformBuffer, Buffer: view}
}

// StorageBuffer returns a storage-buffer resource.
func StorageBuffer(view BufferView) ShaderResource {
	return ShaderResource{Kind: ResourceStorageBuffer, Buffer: view}
}

// SampledTexture returns a sampled-texture resource.
func SampledTexture(id TextureID) ShaderResource {
	return ShaderResource{Kind: ResourceSampledTexture, Texture: id}
}

// StorageTexture returns a storage-texture resource.
func StorageTexture(id TextureID) ShaderResource {
	return ShaderResource{Kind: ResourceStorageTexture, Texture: id}
}

// SamplerResource returns a sampler resource.
func SamplerResource(id SamplerID) ShaderResource {
	return ShaderResource{Kind: ResourceSampler, Sampler: id}
}

// Compatible reports whether the resource can be bound to a variable
// of binding type t.
func (r ShaderResource) Compatible(t BindingType) bool {
	switch r.Kind {
	case ResourceUniformBuffer:
		return t == BindingTypeUniform
	case ResourceStorageBuffer:
		return t == BindingTypeStorage || t == BindingTypeReadOnlyStorage
	case ResourceSampledTexture:
		return t == BindingTypeSampledImage
	case ResourceStorageTexture:
		return t == BindingTypeStorageImage
	case ResourceSampler:
		return t == BindingTypeSampler
	default:
		return false
	}
}

// BindingInfo binds a single resource at a binding index.
type BindingInfo struct {
	Resource ShaderResource
	Binding  uint32
}

// IndexedResource is one element of an indexed binding, placed at Slot.
type IndexedResource struct {
	Resource ShaderResource
	Slot     uint32
}

// IndexedBindingInfo binds an array of resources at a base binding index.
type IndexedBindingInfo struct {
	Resources []IndexedResource
	Binding   uint32
}

// BindGroupDesc describes a bound binding group.
type BindGroupDesc struct {
	// Label is an optional debug label.
	Label string

	// Layout is the layout the bindings are validated against.
	Layout BindGroupLayoutID

	// Set is the binding-set index this group is bound at.
	Set uint32

	// Bindings are the resource bindings.
	Bindings []BindingInfo
}

// BindTableDesc describes a bound binding table.
type BindTableDesc struct {
	// Label is an optional debug label.
	Label string

	// Layout is the layout the bindings are validated against.
	Layout BindTableLayoutID

	// Set is the binding-set index this table is bound at.
	Set uint32

	// Bindings are the indexed resource bindings.
	Bindings []IndexedBindingInfo
}
