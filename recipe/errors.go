package recipe

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownBinding is returned when filling a binding index the
	// layout does not declare.
	ErrUnknownBinding = errors.New("recipe: binding not in layout")

	// ErrIncompatibleResource is returned when a resource cannot be bound
	// to the declared binding type.
	ErrIncompatibleResource = errors.New("recipe: resource incompatible with binding")

	// ErrSlotOutOfRange is returned when an indexed resource lies beyond
	// the array count of its binding.
	ErrSlotOutOfRange = errors.New("recipe: slot out of range")

	// ErrEmptyBinding is returned when filling an indexed binding with no
	// resources.
	ErrEmptyBinding = errors.New("recipe: no resources")

	// ErrAlreadyBuilt is returned when filling a recipe whose GPU object
	// exists.
	ErrAlreadyBuilt = errors.New("recipe: already built")

	// ErrIndexedInDirectSet is returned when a resource array is assigned
	// to a direct set.
	ErrIndexedInDirectSet = errors.New("recipe: indexed binding in a direct set")

	// ErrDestroyed is returned when using a destroyed recipe.
	ErrDestroyed = errors.New("recipe: destroyed")
)

// MissingBindingsError is returned when cooking a recipe that still has
// empty binding slots.
type MissingBindingsError struct {
	Set uint32

	// Missing lists the empty binding indices in ascending order.
	Missing []uint32
}

func (e *MissingBindingsError) Error() string {
	return fmt.Sprintf("recipe: set %d is missing bindings %v", e.Set, e.Missing)
}
