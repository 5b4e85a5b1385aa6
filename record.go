package rewind

// Record manages a linear undo/redo timeline over a single target.
//
// The record owns an ordered log of applied commands and a cursor that
// counts how many of them are currently applied, in order, from the
// start. The target state is always the result of applying log[0:cursor]
// to the target's initial state; every operation preserves that
// invariant or reports an error without breaking it.
//
// A Record is single-owner: it does no internal locking, and no two
// operations may run concurrently on the same instance. The registered
// signal listener runs synchronously inside the mutating call.
type Record[T any] struct {
	log    []*entry[T]
	target T
	cursor int
	saved  int // -1 when unset
	limit  int // 0 means unlimited
	signal SignalFunc

	// version counts structural mutations; Queue and Checkpoint use it
	// to detect out-of-band changes to the record.
	version uint64
}

// NewRecord creates a record around target. The record starts empty and
// in the saved state, matching a target that has just been loaded.
func NewRecord[T any](target T, opts ...Option[T]) *Record[T] {
	r := &Record[T]{
		log:    make([]*entry[T], 0, DefaultCapacity),
		target: target,
		saved:  0,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Push applies cmd to the target and appends it to the log, discarding
// any undone future first. When the record sits at the tip, the new
// command may instead merge with the previous entry (see Merger).
//
// Apply runs before any log mutation: if it fails, the log, cursor and
// saved marker are untouched, the target is whatever the failing Apply
// left it as, and the returned *ApplyError carries cmd back to the
// caller.
func (r *Record[T]) Push(cmd Command[T]) error {
	_, _, _, err := r.push(newEntry(cmd), true)
	return err
}

// push is the shared push path. It returns the discarded future tail
// and the entry evicted by the limit, so History and Checkpoint can
// preserve them, and whether the command was absorbed by a merge or
// annul instead of appended.
func (r *Record[T]) push(e *entry[T], allowMerge bool) (tail []*entry[T], evicted *entry[T], merged bool, err error) {
	if err := e.cmd.Apply(r.target); err != nil {
		return nil, nil, false, &ApplyError[T]{Cmd: e.cmd, Err: err}
	}
	r.version++

	before := r.cursor
	wasSaved := r.isSaved()

	// Discard the undone future. The tail is handed back to callers that
	// know how to keep it; a plain Push drops it.
	if r.cursor < len(r.log) {
		tail = append(tail, r.log[r.cursor:]...)
		r.log = r.log[:r.cursor]
	}
	if r.saved > r.cursor {
		// The saved position was in the discarded future.
		r.saved = -1
	}

	// Merge only at the tip of an intact log: merging after a truncation
	// would rewrite an entry the discarded tail's owner still counts on,
	// and merging at the saved position would dissolve the entry the
	// saved marker names.
	if allowMerge && len(tail) == 0 && r.cursor > 0 && !wasSaved {
		if m, ok := r.log[r.cursor-1].cmd.(Merger[T]); ok {
			switch m.Merge(e.cmd) {
			case MergeYes:
				r.emit(Signal{Kind: SignalApply, Before: before, After: r.cursor})
				return tail, nil, true, nil
			case MergeAnnul:
				r.log = r.log[:r.cursor-1]
				r.cursor--
				r.emit(Signal{Kind: SignalApply, Before: before, After: r.cursor})
				r.emitSavedChange(wasSaved)
				return tail, nil, true, nil
			}
		}
	}

	r.log = append(r.log, e)
	r.cursor++

	// Limit eviction drops the oldest entry and shifts every index down.
	if r.limit > 0 && len(r.log) > r.limit {
		evicted = r.log[0]
		copy(r.log, r.log[1:])
		r.log[len(r.log)-1] = nil
		r.log = r.log[:len(r.log)-1]
		r.cursor--
		switch {
		case r.saved == 0:
			// The evicted entry was the saved position; the state it
			// described is no longer reachable.
			r.saved = -1
		case r.saved > 0:
			r.saved--
		}
	}

	r.emit(Signal{Kind: SignalApply, Before: before, After: r.cursor})
	r.emitSavedChange(wasSaved)
	return tail, evicted, false, nil
}

// Undo reverses the most recently applied command. At the start of the
// log it returns ErrNothingToUndo. If the command's Undo fails, the
// cursor and log are unchanged and the command is treated as still
// applied; see UndoError for the caller-visible ambiguity this leaves.
func (r *Record[T]) Undo() error {
	if r.cursor == 0 {
		return ErrNothingToUndo
	}
	if err := r.log[r.cursor-1].cmd.Undo(r.target); err != nil {
		return &UndoError[T]{Err: err}
	}
	r.version++
	wasSaved := r.isSaved()
	r.cursor--
	r.emit(Signal{Kind: SignalUndo, Before: r.cursor + 1, After: r.cursor})
	r.emitSavedChange(wasSaved)
	return nil
}

// Redo re-applies the next undone command. At the end of the log it
// returns ErrNothingToRedo. If the command fails, the cursor and log
// are unchanged; the entry stays in the log, so the returned
// *ApplyError carries no command.
func (r *Record[T]) Redo() error {
	if r.cursor == len(r.log) {
		return ErrNothingToRedo
	}
	if err := r.log[r.cursor].redo(r.target); err != nil {
		return &ApplyError[T]{Err: err}
	}
	r.version++
	wasSaved := r.isSaved()
	r.cursor++
	r.emit(Signal{Kind: SignalRedo, Before: r.cursor - 1, After: r.cursor})
	r.emitSavedChange(wasSaved)
	return nil
}

// GoTo undoes or redoes until the cursor reaches index. The walk is
// best-effort: a failing step stops it, partial progress is kept, and
// the step's error is returned. Each successful step signals on its
// own. Callers that need all-or-nothing movement use a Checkpoint.
func (r *Record[T]) GoTo(index int) error {
	if index < 0 {
		return ErrNothingToUndo
	}
	if index > len(r.log) {
		return ErrNothingToRedo
	}
	for r.cursor > index {
		if err := r.Undo(); err != nil {
			return err
		}
	}
	for r.cursor < index {
		if err := r.Redo(); err != nil {
			return err
		}
	}
	return nil
}

// Clear drops every log entry without undoing them. The cursor resets
// to zero; the saved marker survives only if it already sat at zero.
func (r *Record[T]) Clear() {
	r.version++
	before := r.cursor
	wasSaved := r.isSaved()
	r.log = r.log[:0]
	r.cursor = 0
	if r.saved > 0 {
		r.saved = -1
	}
	if before != 0 {
		r.emit(Signal{Kind: SignalUndo, Before: before, After: 0})
	}
	r.emitSavedChange(wasSaved)
}

// CanUndo reports whether an undo step is available.
func (r *Record[T]) CanUndo() bool {
	return r.cursor > 0
}

// CanRedo reports whether a redo step is available.
func (r *Record[T]) CanRedo() bool {
	return r.cursor < len(r.log)
}

// Cursor returns the number of currently applied commands.
func (r *Record[T]) Cursor() int {
	return r.cursor
}

// Len returns the number of commands in the log.
func (r *Record[T]) Len() int {
	return len(r.log)
}

// Limit returns the maximum log length, or zero when unlimited.
func (r *Record[T]) Limit() int {
	return r.limit
}

// SetLimit bounds the log length. Zero removes the bound. A limit
// smaller than the current log length is refused with ErrLimitTooSmall
// rather than silently truncating history.
func (r *Record[T]) SetLimit(limit int) error {
	if limit < 0 {
		return ErrLimitTooSmall
	}
	if limit > 0 && limit < len(r.log) {
		return ErrLimitTooSmall
	}
	r.limit = limit
	return nil
}

// SetSaved marks the current cursor position as saved.
func (r *Record[T]) SetSaved() {
	wasSaved := r.isSaved()
	r.saved = r.cursor
	r.emitSavedChange(wasSaved)
}

// ClearSaved removes the saved marker.
func (r *Record[T]) ClearSaved() {
	wasSaved := r.isSaved()
	r.saved = -1
	r.emitSavedChange(wasSaved)
}

// IsSaved reports whether the target currently sits at the saved
// position.
func (r *Record[T]) IsSaved() bool {
	return r.isSaved()
}

// Saved returns the saved position and whether one is set.
func (r *Record[T]) Saved() (int, bool) {
	if r.saved < 0 {
		return 0, false
	}
	return r.saved, true
}

// Target returns the target value the record mutates.
func (r *Record[T]) Target() T {
	return r.target
}

// Entries returns a read-only view of the log for display and
// notification collaborators.
func (r *Record[T]) Entries() []EntryInfo {
	return entryInfos(r.log)
}

// generation satisfies Timeline; see Queue for how it detects staleness.
func (r *Record[T]) generation() uint64 {
	return r.version
}

func (r *Record[T]) isSaved() bool {
	return r.saved == r.cursor
}

func (r *Record[T]) emit(s Signal) {
	notify(r.signal, s)
}

// emitSavedChange signals a saved transition if one happened since
// wasSaved was sampled.
func (r *Record[T]) emitSavedChange(wasSaved bool) {
	if isSaved := r.isSaved(); isSaved != wasSaved {
		r.emit(Signal{Kind: SignalSaved, Before: r.cursor, After: r.cursor, Saved: isSaved})
	}
}

// detachTail splits off and returns the log entries beyond the cursor.
// History uses it to move a timeline segment into suspended storage.
func (r *Record[T]) detachTail() []*entry[T] {
	if r.cursor == len(r.log) {
		return nil
	}
	r.version++
	tail := make([]*entry[T], len(r.log)-r.cursor)
	copy(tail, r.log[r.cursor:])
	r.log = r.log[:r.cursor]
	if r.saved > r.cursor {
		r.saved = -1
	}
	return tail
}

// attachTail appends a suspended segment after the cursor. The log must
// end at the cursor, so the attached entries become the redoable future.
func (r *Record[T]) attachTail(tail []*entry[T]) {
	r.version++
	r.log = append(r.log, tail...)
}

// cancelPush inverts a non-merged push: the tip command is undone and
// its entry removed, the future it displaced is spliced back, any entry
// the limit evicted is put back in front, and the saved marker is
// restored to its pre-push value. Checkpoint.Cancel is the only caller;
// the silent saved restore is exact because a checkpoint push can only
// ever move the marker by discarding or evicting, never by arriving at
// it (see push).
func (r *Record[T]) cancelPush(tail []*entry[T], evicted *entry[T], saved int) error {
	if err := r.Undo(); err != nil {
		return err
	}
	r.version++
	r.log = r.log[:r.cursor]
	r.log = append(r.log, tail...)
	if evicted != nil {
		r.log = append(r.log, nil)
		copy(r.log[1:], r.log)
		r.log[0] = evicted
		r.cursor++
	}
	r.saved = saved
	return nil
}

// setSavedAt places the saved marker without signalling; History uses
// it when a cross-branch saved position re-enters the record.
func (r *Record[T]) setSavedAt(index int) {
	r.saved = index
}

// dropSaved removes the saved marker without signalling; History uses
// it when the saved position leaves the record for suspended storage.
func (r *Record[T]) dropSaved() {
	r.saved = -1
}
