package domain

import "fmt"

// ActionFlags is the enumerated action state of a Record.
type ActionFlags int32

const (
	// ActionNone marks a record holding a real payload.
	ActionNone ActionFlags = 0
	// ActionInitializeItem marks a placeholder record created before its first population.
	// It is consumed and reset to ActionNone on the first read.
	ActionInitializeItem ActionFlags = 1
)

func (f ActionFlags) String() string {
	switch f {
	case ActionNone:
		return "None"
	case ActionInitializeItem:
		return "InitializeItem"
	default:
		return fmt.Sprintf("ActionFlags(%d)", int32(f))
	}
}
