package rewind

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Command is a reversible unit of work over a target of type T.
//
// Apply performs the command's effect and Undo reverses it. Both report
// failure through their error return; the engine never calls Apply on a
// command whose previous Apply failed, and treats a failed Undo as
// leaving the command still applied (see UndoError).
//
// Once a command has been pushed successfully it belongs to the log.
// A failed push hands the command back inside *ApplyError.
type Command[T any] interface {
	// Apply performs the command against the target.
	Apply(target T) error

	// Undo reverses the command against the target.
	Undo(target T) error
}

// Redoer is an optional capability for commands whose redo differs from
// a fresh Apply. Without it, redo re-applies the command.
type Redoer[T any] interface {
	// Redo re-performs a previously undone command.
	Redo(target T) error
}

// Merger is an optional capability allowing consecutive commands to be
// coalesced into a single log entry. Merge is consulted when a command
// is pushed directly after the receiver; on MergeYes the receiver must
// have absorbed next's effect in place.
type Merger[T any] interface {
	Merge(next Command[T]) MergeResult
}

// MergeResult is the outcome of a Merger.Merge call.
type MergeResult int

const (
	// MergeNo keeps both commands as separate log entries.
	MergeNo MergeResult = iota

	// MergeYes replaces the previous entry with the merged command;
	// the pushed command is dropped.
	MergeYes

	// MergeAnnul means the two commands cancel out; both are dropped
	// and the previous entry is removed from the log.
	MergeAnnul
)

// String returns the merge result name.
func (m MergeResult) String() string {
	switch m {
	case MergeNo:
		return "no"
	case MergeYes:
		return "yes"
	case MergeAnnul:
		return "annul"
	default:
		return fmt.Sprintf("MergeResult(%d)", int(m))
	}
}

// entry wraps a command with metadata.
type entry[T any] struct {
	cmd  Command[T]
	id   uuid.UUID
	time time.Time
}

// newEntry stamps a command with identity and time.
func newEntry[T any](cmd Command[T]) *entry[T] {
	return &entry[T]{
		cmd:  cmd,
		id:   uuid.New(),
		time: time.Now(),
	}
}

// redo re-performs the entry's command, preferring the Redoer capability.
func (e *entry[T]) redo(target T) error {
	if r, ok := e.cmd.(Redoer[T]); ok {
		return r.Redo(target)
	}
	return e.cmd.Apply(target)
}

// describe returns the command's description, using fmt.Stringer when
// implemented and the concrete type name otherwise.
func (e *entry[T]) describe() string {
	return describeCommand(e.cmd)
}

func describeCommand[T any](cmd Command[T]) string {
	if s, ok := cmd.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", cmd)
}

// info returns the entry's read-only view.
func (e *entry[T]) info() EntryInfo {
	return EntryInfo{
		ID:          e.id,
		Time:        e.time,
		Description: e.describe(),
	}
}

// EntryInfo is a read-only view of one log entry, for display and
// notification collaborators.
type EntryInfo struct {
	ID          uuid.UUID
	Time        time.Time
	Description string
}

// entryInfos converts a slice of entries to their read-only views.
func entryInfos[T any](entries []*entry[T]) []EntryInfo {
	result := make([]EntryInfo, len(entries))
	for i, e := range entries {
		result[i] = e.info()
	}
	return result
}
