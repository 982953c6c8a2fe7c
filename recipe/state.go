package recipe

import "fmt"

// State is the progress of a recipe towards its GPU object.
//
// State Machine:
//
//	Incomplete -> (every slot filled) -> Ready -> Cook() -> Built
type State int

const (
	// StateIncomplete means at least one binding slot is empty.
	StateIncomplete State = iota

	// StateReady means every binding slot is filled.
	StateReady

	// StateBuilt means the GPU object has been created.
	StateBuilt
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case StateIncomplete:
		return "Incomplete"
	case StateReady:
		return "Ready"
	case StateBuilt:
		return "Built"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}
