package rewind

// Timeline is the mutation surface shared by Record and History. Queue
// stages actions against either one. The interface is closed: only
// types in this package satisfy it.
type Timeline[T any] interface {
	Push(Command[T]) error
	Undo() error
	Redo() error
	GoTo(int) error

	generation() uint64
}

// actionKind identifies a staged or recorded timeline action.
type actionKind int

const (
	actionPush actionKind = iota
	actionUndo
	actionRedo
	actionGoTo
)

// queuedAction is one staged Queue step.
type queuedAction[T any] struct {
	kind  actionKind
	cmd   Command[T]
	index int
}

// Queue stages a batch of timeline actions without touching the target,
// then replays them in order on Commit. Dropping or cancelling a queue
// leaves the timeline untouched.
//
// A queue holds no lock; it detects out-of-band mutation of its
// timeline instead. Commit refuses with ErrStaleView if the timeline
// changed since the queue was created.
type Queue[T any] struct {
	tl     Timeline[T]
	staged []queuedAction[T]
	gen    uint64
	done   bool
}

// NewQueue creates a queue over tl.
func NewQueue[T any](tl Timeline[T]) *Queue[T] {
	return &Queue[T]{tl: tl, gen: tl.generation()}
}

// Push stages a push of cmd.
func (q *Queue[T]) Push(cmd Command[T]) {
	q.staged = append(q.staged, queuedAction[T]{kind: actionPush, cmd: cmd})
}

// Undo stages an undo step.
func (q *Queue[T]) Undo() {
	q.staged = append(q.staged, queuedAction[T]{kind: actionUndo})
}

// Redo stages a redo step.
func (q *Queue[T]) Redo() {
	q.staged = append(q.staged, queuedAction[T]{kind: actionRedo})
}

// GoTo stages a cursor move to index.
func (q *Queue[T]) GoTo(index int) {
	q.staged = append(q.staged, queuedAction[T]{kind: actionGoTo, index: index})
}

// Len returns the number of staged actions.
func (q *Queue[T]) Len() int {
	return len(q.staged)
}

// Commit replays the staged actions strictly in order, stopping at the
// first failure. It returns how many actions succeeded and the error
// that stopped the replay, if any. Partial effects stay exactly where
// the timeline's own rules put them.
//
// Commit consumes the queue; calling it again is a no-op. If the
// timeline was mutated since the queue was created, Commit returns
// ErrStaleView without replaying anything.
func (q *Queue[T]) Commit() (int, error) {
	if q.done {
		return 0, nil
	}
	q.done = true
	if q.tl.generation() != q.gen {
		return 0, ErrStaleView
	}
	for i, a := range q.staged {
		var err error
		switch a.kind {
		case actionPush:
			err = q.tl.Push(a.cmd)
		case actionUndo:
			err = q.tl.Undo()
		case actionRedo:
			err = q.tl.Redo()
		case actionGoTo:
			err = q.tl.GoTo(a.index)
		}
		if err != nil {
			return i, err
		}
	}
	return len(q.staged), nil
}

// Cancel discards the staged actions with no effect on the timeline.
// It consumes the queue; cancelling twice is a no-op.
func (q *Queue[T]) Cancel() {
	q.done = true
	q.staged = nil
}
