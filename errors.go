package rewind

import (
	"errors"
	"fmt"
)

// Common errors for timeline operations.
var (
	// ErrNothingToUndo is returned by Undo at the start of the log.
	// It marks a boundary, not a failure.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo is returned by Redo at the end of the log.
	// It marks a boundary, not a failure.
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrBranchNotFound is returned when a branch id does not resolve.
	// Pruned ids are never reassigned, so a stale id stays not-found.
	ErrBranchNotFound = errors.New("branch not found")

	// ErrCannotPrune is returned when pruning the root or the current
	// branch is requested.
	ErrCannotPrune = errors.New("cannot prune root or current branch")

	// ErrLimitTooSmall is returned by SetLimit when the requested limit
	// is below the current log length.
	ErrLimitTooSmall = errors.New("limit smaller than log length")

	// ErrStaleView is returned when a Queue or Checkpoint detects that
	// its record was mutated outside the view since it was taken.
	ErrStaleView = errors.New("record changed outside view")

	// ErrInvalidSnapshot is returned by the restore functions when a
	// snapshot violates a structural invariant. The reported error
	// wraps it with the specific violation.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

// ApplyError reports a command whose Apply failed. The target is
// whatever state the failing Apply left it in; the log is unchanged.
// For a failed Push, Cmd carries ownership of the command back to the
// caller. For a failed Redo the command stays in the log and Cmd is nil.
type ApplyError[T any] struct {
	Cmd Command[T]
	Err error
}

// Error returns the error message.
func (e *ApplyError[T]) Error() string {
	return fmt.Sprintf("apply: %v", e.Err)
}

// Unwrap returns the command's own error.
func (e *ApplyError[T]) Unwrap() error { return e.Err }

// UndoError reports a command whose Undo failed. The cursor and log are
// unchanged: the command is treated as still applied. Whether the target
// is fully applied or partially undone depends on the command; commands
// should make Undo effectively atomic or fail before mutating.
type UndoError[T any] struct {
	Err error
}

// Error returns the error message.
func (e *UndoError[T]) Error() string {
	return fmt.Sprintf("undo: %v", e.Err)
}

// Unwrap returns the command's own error.
func (e *UndoError[T]) Unwrap() error { return e.Err }
