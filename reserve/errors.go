package reserve

import (
	"errors"
	"fmt"

	"github.com/gogpu/bindkit/gpucore"
)

var (
	// ErrNotFound is returned when a name is not in the registry.
	ErrNotFound = errors.New("reserve: binding not found")

	// ErrNilCatalog is returned when constructing a registry without a
	// catalog.
	ErrNilCatalog = errors.New("reserve: nil catalog")

	// ErrUnknownReserved is returned for catalog names no resource
	// implementation exists for.
	ErrUnknownReserved = errors.New("reserve: no resource for reserved name")

	// ErrUnknownVariant is returned when decoding an unrecognized catalog
	// variant.
	ErrUnknownVariant = errors.New("reserve: unknown catalog variant")

	// ErrUnknownFormat is returned for catalog files that are neither TOML
	// nor YAML.
	ErrUnknownFormat = errors.New("reserve: unknown catalog format")
)

// DuplicateNameError reports a catalog that declares a name twice.
type DuplicateNameError struct {
	Name string

	// First and Second are the positions of the two declarations.
	First, Second int
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("reserve: duplicate reserved name %q at entries %d and %d", e.Name, e.First, e.Second)
}

// KindMismatchError reports a shader variable whose reflected kind differs
// from the kind its reserved name is declared with.
type KindMismatchError struct {
	Name      string
	Set       uint32
	Binding   uint32
	Declared  gpucore.BindingType
	Reflected gpucore.BindingType
}

func (e *KindMismatchError) Error() string {
	return fmt.Sprintf("reserve: %q at set %d binding %d is %s in the shader but reserved as %s",
		e.Name, e.Set, e.Binding, e.Reflected, e.Declared)
}
