package rewind

import "fmt"

// checkpointAction is one operation recorded with enough structure to
// invert it.
type checkpointAction[T any] struct {
	kind    actionKind
	tail    []*entry[T] // future displaced by a push
	evicted *entry[T]   // entry the limit evicted during a push
	saved   int         // saved marker before a push
	cursor  int         // cursor before a goto
}

// Checkpoint wraps a record exclusively and makes a run of operations
// cancellable. Operations performed through the checkpoint take effect
// on the record immediately; each is recorded structurally so Cancel
// can restore the exact log, cursor and saved marker from before the
// checkpoint, including any future a push discarded and any entry the
// limit evicted. Commit keeps the operations and drops the recording.
//
// Pushes through a checkpoint never merge: merging rewrites the
// previous entry in place, which cannot be inverted afterwards.
//
// A checkpoint holds no lock; like Queue it detects out-of-band
// mutation through the record's version counter. Any mutation not made
// through the checkpoint makes further operations and Cancel fail with
// ErrStaleView. Checkpoints over the same record nest as long as they
// unwind last-in-first-out: cancelling an inner checkpoint restores the
// version an outer one expects, while committing an inner one leaves
// the outer stale.
type Checkpoint[T any] struct {
	rec     *Record[T]
	actions []checkpointAction[T]
	base    uint64 // version at creation, restored by Cancel
	expect  uint64 // version the record must have before the next operation
	done    bool
}

// NewCheckpoint creates a checkpoint over rec.
func NewCheckpoint[T any](rec *Record[T]) *Checkpoint[T] {
	return &Checkpoint[T]{rec: rec, base: rec.version, expect: rec.version}
}

func (c *Checkpoint[T]) stale() bool {
	return c.done || c.rec.version != c.expect
}

// Push applies cmd through the record without merging. Record.Push
// failure semantics apply; a failed push records nothing.
func (c *Checkpoint[T]) Push(cmd Command[T]) error {
	if c.stale() {
		return ErrStaleView
	}
	saved := c.rec.saved
	tail, evicted, _, err := c.rec.push(newEntry(cmd), false)
	if err != nil {
		return err
	}
	c.actions = append(c.actions, checkpointAction[T]{
		kind:    actionPush,
		tail:    tail,
		evicted: evicted,
		saved:   saved,
	})
	c.expect = c.rec.version
	return nil
}

// Undo forwards to the record and records the inverse redo.
func (c *Checkpoint[T]) Undo() error {
	if c.stale() {
		return ErrStaleView
	}
	if err := c.rec.Undo(); err != nil {
		return err
	}
	c.actions = append(c.actions, checkpointAction[T]{kind: actionUndo})
	c.expect = c.rec.version
	return nil
}

// Redo forwards to the record and records the inverse undo.
func (c *Checkpoint[T]) Redo() error {
	if c.stale() {
		return ErrStaleView
	}
	if err := c.rec.Redo(); err != nil {
		return err
	}
	c.actions = append(c.actions, checkpointAction[T]{kind: actionRedo})
	c.expect = c.rec.version
	return nil
}

// GoTo forwards to the record and records the pre-move cursor. Record
// GoTo is best-effort; partial progress is recorded too, so Cancel
// still restores the starting position.
func (c *Checkpoint[T]) GoTo(index int) error {
	if c.stale() {
		return ErrStaleView
	}
	before := c.rec.cursor
	err := c.rec.GoTo(index)
	if c.rec.cursor != before {
		c.actions = append(c.actions, checkpointAction[T]{kind: actionGoTo, cursor: before})
	}
	c.expect = c.rec.version
	return err
}

// Commit keeps every operation made through the checkpoint and consumes
// it. The record is not touched. Committing twice is a no-op.
func (c *Checkpoint[T]) Commit() {
	c.done = true
	c.actions = nil
}

// Cancel replays the inverse of every recorded operation in reverse
// order, restoring the record to its state at checkpoint creation, and
// consumes the checkpoint. Cancelling a consumed checkpoint is a no-op.
//
// The target-level work is re-done through the commands' own Undo and
// Redo; a failing inverse stops the replay with that step's error and
// leaves the record where the step left it.
func (c *Checkpoint[T]) Cancel() error {
	if c.done {
		return nil
	}
	c.done = true
	if c.rec.version != c.expect {
		return ErrStaleView
	}
	for i := len(c.actions) - 1; i >= 0; i-- {
		a := c.actions[i]
		var err error
		switch a.kind {
		case actionPush:
			err = c.rec.cancelPush(a.tail, a.evicted, a.saved)
		case actionUndo:
			err = c.rec.Redo()
		case actionRedo:
			err = c.rec.Undo()
		case actionGoTo:
			err = c.rec.GoTo(a.cursor)
		}
		if err != nil {
			return fmt.Errorf("cancel step %d: %w", i, err)
		}
	}
	c.actions = nil
	c.rec.version = c.base
	return nil
}

// historyCheckpointAction is one history operation with its navigation
// inverse.
type historyCheckpointAction struct {
	kind actionKind
	at   At // position before a push, goto or jump
}

// HistoryCheckpoint makes a run of history operations cancellable. It
// records navigation inverses rather than log structure: a push into a
// history displaces the future into a branch instead of discarding it,
// so the position before any push, goto or jump stays reachable and
// its inverse is simply a jump back. Undo and redo invert exactly.
//
// Cancel restores the target state and position, not the tree:
// branches created while the checkpoint was open persist and can be
// pruned separately.
//
// Pushes through the checkpoint never merge, like Checkpoint's.
// Staleness and LIFO nesting follow Checkpoint, using the history's
// generation counter.
type HistoryCheckpoint[T any] struct {
	hist    *History[T]
	actions []historyCheckpointAction
	base    uint64
	expect  uint64
	done    bool
}

// NewHistoryCheckpoint creates a checkpoint over h.
func NewHistoryCheckpoint[T any](h *History[T]) *HistoryCheckpoint[T] {
	return &HistoryCheckpoint[T]{hist: h, base: h.generation(), expect: h.generation()}
}

func (c *HistoryCheckpoint[T]) stale() bool {
	return c.done || c.hist.generation() != c.expect
}

func (c *HistoryCheckpoint[T]) here() At {
	return At{Branch: c.hist.current, Index: c.hist.rec.cursor}
}

// Push applies cmd through the history without merging. History.Push
// failure semantics apply; a failed push records nothing.
func (c *HistoryCheckpoint[T]) Push(cmd Command[T]) error {
	if c.stale() {
		return ErrStaleView
	}
	before := c.here()
	if err := c.hist.push(cmd, false); err != nil {
		return err
	}
	c.actions = append(c.actions, historyCheckpointAction{kind: actionGoTo, at: before})
	c.expect = c.hist.generation()
	return nil
}

// Undo forwards to the history and records the inverse redo.
func (c *HistoryCheckpoint[T]) Undo() error {
	if c.stale() {
		return ErrStaleView
	}
	if err := c.hist.Undo(); err != nil {
		return err
	}
	c.actions = append(c.actions, historyCheckpointAction{kind: actionUndo})
	c.expect = c.hist.generation()
	return nil
}

// Redo forwards to the history and records the inverse undo.
func (c *HistoryCheckpoint[T]) Redo() error {
	if c.stale() {
		return ErrStaleView
	}
	if err := c.hist.Redo(); err != nil {
		return err
	}
	c.actions = append(c.actions, historyCheckpointAction{kind: actionRedo})
	c.expect = c.hist.generation()
	return nil
}

// GoTo forwards to the history. Like Record.GoTo it is best-effort;
// partial progress is recorded so Cancel still jumps back to the
// starting position.
func (c *HistoryCheckpoint[T]) GoTo(index int) error {
	if c.stale() {
		return ErrStaleView
	}
	before := c.here()
	err := c.hist.GoTo(index)
	if c.here() != before {
		c.actions = append(c.actions, historyCheckpointAction{kind: actionGoTo, at: before})
	}
	c.expect = c.hist.generation()
	return err
}

// JumpTo forwards to the history. A partial walk that stops on an
// intermediate branch is recorded too, so Cancel jumps back from
// wherever it stopped.
func (c *HistoryCheckpoint[T]) JumpTo(id, index int) error {
	if c.stale() {
		return ErrStaleView
	}
	before := c.here()
	err := c.hist.JumpTo(id, index)
	if c.here() != before {
		c.actions = append(c.actions, historyCheckpointAction{kind: actionGoTo, at: before})
	}
	c.expect = c.hist.generation()
	return err
}

// Commit keeps every operation made through the checkpoint and consumes
// it. Committing twice is a no-op.
func (c *HistoryCheckpoint[T]) Commit() {
	c.done = true
	c.actions = nil
}

// Cancel jumps back through every recorded position in reverse order,
// restoring the history's position and target state at checkpoint
// creation, and consumes the checkpoint. Cancelling a consumed
// checkpoint is a no-op. A failing inverse stops the replay with that
// step's error.
func (c *HistoryCheckpoint[T]) Cancel() error {
	if c.done {
		return nil
	}
	c.done = true
	if c.hist.generation() != c.expect {
		return ErrStaleView
	}
	for i := len(c.actions) - 1; i >= 0; i-- {
		a := c.actions[i]
		var err error
		switch a.kind {
		case actionUndo:
			err = c.hist.Redo()
		case actionRedo:
			err = c.hist.Undo()
		default:
			err = c.hist.JumpTo(a.at.Branch, a.at.Index)
		}
		if err != nil {
			return fmt.Errorf("cancel step %d: %w", i, err)
		}
	}
	c.actions = nil
	c.hist.rec.version = c.base - c.hist.version
	return nil
}
