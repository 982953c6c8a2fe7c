package reserve

import (
	"fmt"
	"strings"

	"github.com/gogpu/bindkit/gpucore"
)

// Reserved names recognized by the registry.
const (
	TimingName         = "engine_timing"
	CameraName         = "engine_camera"
	BindlessCameraName = "engine_bindless_cameras"
)

// Metadata declares one reserved name and the binding kind shaders must
// use for it.
type Metadata struct {
	Name string
	Kind gpucore.BindingType
}

// TimingEntry returns the metadata of the timing resource.
func TimingEntry() Metadata {
	return Metadata{Name: TimingName, Kind: gpucore.BindingTypeUniform}
}

// CameraEntry returns the metadata of the camera resource.
func CameraEntry() Metadata {
	return Metadata{Name: CameraName, Kind: gpucore.BindingTypeUniform}
}

// BindlessCameraEntry returns the metadata of the bindless camera pool.
func BindlessCameraEntry() Metadata {
	return Metadata{Name: BindlessCameraName, Kind: gpucore.BindingTypeStorage}
}

// Variant distinguishes registries bound per object from bindless ones.
type Variant uint8

// Catalog variants.
const (
	VariantDirect Variant = iota
	VariantBindless
)

// String returns the variant name.
func (v Variant) String() string {
	switch v {
	case VariantDirect:
		return "direct"
	case VariantBindless:
		return "bindless"
	default:
		return fmt.Sprintf("Variant(%d)", uint8(v))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for "direct" and
// "bindless".
func (v *Variant) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "direct":
		*v = VariantDirect
	case "bindless":
		*v = VariantBindless
	default:
		return fmt.Errorf("%w: %q", ErrUnknownVariant, text)
	}
	return nil
}

// Catalog is an immutable list of reserved names with unique entries.
type Catalog struct {
	variant Variant
	entries []Metadata
	index   map[string]int
}

// NewCatalog returns a catalog of the given entries, in order. It fails
// with a *DuplicateNameError if a name appears twice.
func NewCatalog(variant Variant, entries ...Metadata) (*Catalog, error) {
	c := &Catalog{
		variant: variant,
		entries: make([]Metadata, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	copy(c.entries, entries)
	for i, m := range c.entries {
		if first, ok := c.index[m.Name]; ok {
			return nil, &DuplicateNameError{Name: m.Name, First: first, Second: i}
		}
		c.index[m.Name] = i
	}
	return c, nil
}

func mustCatalog(variant Variant, entries ...Metadata) *Catalog {
	c, err := NewCatalog(variant, entries...)
	if err != nil {
		panic(err)
	}
	return c
}

// DirectCatalog returns the catalog of the direct registry: timing only.
func DirectCatalog() *Catalog {
	return mustCatalog(VariantDirect, TimingEntry())
}

// BindlessCatalog returns the catalog of the bindless registry. It holds
// the same single timing entry as DirectCatalog.
func BindlessCatalog() *Catalog {
	return mustCatalog(VariantBindless, TimingEntry())
}

// FullCatalog returns a bindless catalog with every resource the package
// implements.
func FullCatalog() *Catalog {
	return mustCatalog(VariantBindless, TimingEntry(), CameraEntry(), BindlessCameraEntry())
}

// Variant returns the catalog variant.
func (c *Catalog) Variant() Variant { return c.variant }

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

// Entries returns a copy of the entries in declaration order.
func (c *Catalog) Entries() []Metadata {
	out := make([]Metadata, len(c.entries))
	copy(out, c.entries)
	return out
}

// Lookup returns the entry for name.
func (c *Catalog) Lookup(name string) (Metadata, bool) {
	i, ok := c.index[name]
	if !ok {
		return Metadata{}, false
	}
	return c.entries[i], true
}
