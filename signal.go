package rewind

import "fmt"

// SignalKind identifies what a Signal describes.
type SignalKind int

const (
	// SignalApply reports a successful push moving the cursor forward.
	SignalApply SignalKind = iota

	// SignalUndo reports a successful undo moving the cursor back.
	SignalUndo

	// SignalRedo reports a successful redo moving the cursor forward.
	SignalRedo

	// SignalSaved reports an is-saved transition; Saved carries the new
	// value.
	SignalSaved
)

// String returns the signal kind name.
func (k SignalKind) String() string {
	switch k {
	case SignalApply:
		return "apply"
	case SignalUndo:
		return "undo"
	case SignalRedo:
		return "redo"
	case SignalSaved:
		return "saved"
	default:
		return fmt.Sprintf("SignalKind(%d)", int(k))
	}
}

// Signal describes one state transition. For Apply/Undo/Redo, Before and
// After are the cursor positions around the step. For Saved, Saved holds
// the new is-saved value and the cursor fields repeat the current cursor.
//
// Signals are delivered synchronously, inside the mutating call, before
// it returns. The listener must not mutate the record that signalled it.
type Signal struct {
	Kind   SignalKind
	Before int
	After  int
	Saved  bool
}

// SignalFunc receives signals from a Record or History.
type SignalFunc func(Signal)

// notify invokes fn when set.
func notify(fn SignalFunc, s Signal) {
	if fn != nil {
		fn(s)
	}
}
