package rewind

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RecordSnapshot is a faithful copy of a record's state with opaque
// commands. It carries no behavior; pair it with journal.Codec to take
// it across a process boundary.
type RecordSnapshot[T any] struct {
	Commands []Command[T]
	IDs      []uuid.UUID
	Times    []time.Time
	Cursor   int
	Saved    int // -1 when unset
	Limit    int // 0 when unlimited
}

// BranchSnapshot is one branch of a HistorySnapshot. For the current
// branch Commands holds the full materialized timeline; for a suspended
// branch it holds only the branch's own suffix, with Res locating the
// shared prefix, mirroring the in-memory representation.
type BranchSnapshot[T any] struct {
	ID       int
	Parent   At
	Res      At
	Commands []Command[T]
	IDs      []uuid.UUID
	Times    []time.Time
}

// HistorySnapshot is a faithful copy of a history's state with opaque
// commands.
type HistorySnapshot[T any] struct {
	Branches []BranchSnapshot[T]
	Root     int
	Current  int
	Next     int
	Cursor   int
	Saved    int // saved position on the current branch, -1 when unset
	SavedAt  At  // saved position on a suspended branch, Branch -1 when none
}

// Snapshot returns a copy of the record's state. The commands are
// shared, not cloned; the snapshot is a view, not an isolation
// boundary.
func (r *Record[T]) Snapshot() RecordSnapshot[T] {
	s := RecordSnapshot[T]{
		Cursor: r.cursor,
		Saved:  r.saved,
		Limit:  r.limit,
	}
	s.Commands, s.IDs, s.Times = splitEntries(r.log)
	return s
}

// RestoreRecord rebuilds a record from a snapshot around target. The
// target's state must already correspond to the snapshot's cursor; the
// commands are not re-applied. Nil IDs or Times are tolerated and
// filled with fresh identities and zero times. The snapshot's limit
// applies; use options for the signal and capacity.
func RestoreRecord[T any](target T, snap RecordSnapshot[T], opts ...Option[T]) (*Record[T], error) {
	log, err := joinEntries(snap.Commands, snap.IDs, snap.Times)
	if err != nil {
		return nil, err
	}
	if snap.Cursor < 0 || snap.Cursor > len(log) {
		return nil, fmt.Errorf("%w: cursor %d outside [0, %d]", ErrInvalidSnapshot, snap.Cursor, len(log))
	}
	if snap.Saved != -1 && (snap.Saved < 0 || snap.Saved > len(log)) {
		return nil, fmt.Errorf("%w: saved %d outside [0, %d]", ErrInvalidSnapshot, snap.Saved, len(log))
	}
	if snap.Limit < 0 {
		return nil, fmt.Errorf("%w: negative limit %d", ErrInvalidSnapshot, snap.Limit)
	}
	if snap.Limit > 0 && len(log) > snap.Limit {
		return nil, fmt.Errorf("%w: %d commands exceed limit %d", ErrInvalidSnapshot, len(log), snap.Limit)
	}
	r := NewRecord(target, opts...)
	r.log = append(r.log[:0], log...)
	r.cursor = snap.Cursor
	r.saved = snap.Saved
	r.limit = snap.Limit
	return r, nil
}

// Snapshot returns a copy of the history's state, branches sorted by
// id. Like RecordSnapshot, commands are shared.
func (h *History[T]) Snapshot() HistorySnapshot[T] {
	s := HistorySnapshot[T]{
		Root:    0,
		Current: h.current,
		Next:    h.next,
		Cursor:  h.rec.cursor,
		Saved:   h.rec.saved,
		SavedAt: At{Branch: -1},
	}
	if h.saved != nil {
		s.SavedAt = *h.saved
	}
	for _, info := range h.Branches() {
		br := h.branches[info.ID]
		bs := BranchSnapshot[T]{
			ID:     info.ID,
			Parent: br.parent,
			Res:    br.res,
		}
		if info.ID == h.current {
			bs.Res = At{Branch: info.ID}
			bs.Commands, bs.IDs, bs.Times = splitEntries(h.rec.log)
		} else {
			bs.Commands, bs.IDs, bs.Times = splitEntries(br.tail)
		}
		s.Branches = append(s.Branches, bs)
	}
	return s
}

// RestoreHistory rebuilds a history from a snapshot around target. The
// target's state must already correspond to the snapshot's cursor on
// the current branch. The snapshot's tree shape, residence chains, id
// monotonicity and cursor/saved ranges are all validated before
// anything is built.
func RestoreHistory[T any](target T, snap HistorySnapshot[T], opts ...HistoryOption[T]) (*History[T], error) {
	if snap.Root != 0 {
		return nil, fmt.Errorf("%w: root id %d, must be 0", ErrInvalidSnapshot, snap.Root)
	}
	byID := make(map[int]*BranchSnapshot[T], len(snap.Branches))
	for i := range snap.Branches {
		b := &snap.Branches[i]
		if b.ID < 0 {
			return nil, fmt.Errorf("%w: negative branch id %d", ErrInvalidSnapshot, b.ID)
		}
		if _, dup := byID[b.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate branch id %d", ErrInvalidSnapshot, b.ID)
		}
		if b.ID >= snap.Next {
			return nil, fmt.Errorf("%w: branch id %d not below next id %d", ErrInvalidSnapshot, b.ID, snap.Next)
		}
		byID[b.ID] = b
	}
	if _, ok := byID[0]; !ok {
		return nil, fmt.Errorf("%w: missing root branch", ErrInvalidSnapshot)
	}
	cur, ok := byID[snap.Current]
	if !ok {
		return nil, fmt.Errorf("%w: current branch %d not present", ErrInvalidSnapshot, snap.Current)
	}

	// Full timeline length per branch: the current branch stores all of
	// its entries, a suspended one only the suffix past its resident
	// prefix.
	length := func(b *BranchSnapshot[T]) int {
		if b.ID == snap.Current {
			return len(b.Commands)
		}
		return b.Res.Index + len(b.Commands)
	}

	for _, b := range byID {
		if b.ID == 0 {
			if b.Parent != (At{Branch: -1}) {
				return nil, fmt.Errorf("%w: root branch has parent %+v", ErrInvalidSnapshot, b.Parent)
			}
			continue
		}
		p, ok := byID[b.Parent.Branch]
		if !ok || b.Parent.Branch == b.ID {
			return nil, fmt.Errorf("%w: branch %d has invalid parent %d", ErrInvalidSnapshot, b.ID, b.Parent.Branch)
		}
		if b.Parent.Index < 0 || b.Parent.Index > length(p) {
			return nil, fmt.Errorf("%w: branch %d diverges at %d beyond parent length %d", ErrInvalidSnapshot, b.ID, b.Parent.Index, length(p))
		}
	}

	// All residence edges must resolve before any chain can be walked.
	for _, b := range byID {
		if b.ID == snap.Current {
			continue
		}
		r, ok := byID[b.Res.Branch]
		if !ok {
			return nil, fmt.Errorf("%w: branch %d resides on missing branch %d", ErrInvalidSnapshot, b.ID, b.Res.Branch)
		}
		if b.Res.Index < 0 || b.Res.Index > length(r) {
			return nil, fmt.Errorf("%w: branch %d resident prefix %d beyond branch %d length %d", ErrInvalidSnapshot, b.ID, b.Res.Index, b.Res.Branch, length(r))
		}
	}

	// Parent edges must reach the root without cycles, residence edges
	// the current branch.
	for _, b := range byID {
		steps := 0
		for p := b.ID; p != 0; p = byID[p].Parent.Branch {
			if steps++; steps > len(byID) {
				return nil, fmt.Errorf("%w: parent cycle through branch %d", ErrInvalidSnapshot, b.ID)
			}
		}
		steps = 0
		for p := b.ID; p != snap.Current; p = byID[p].Res.Branch {
			if steps++; steps > len(byID) {
				return nil, fmt.Errorf("%w: residence cycle through branch %d", ErrInvalidSnapshot, b.ID)
			}
		}
	}

	if snap.Cursor < 0 || snap.Cursor > len(cur.Commands) {
		return nil, fmt.Errorf("%w: cursor %d outside [0, %d]", ErrInvalidSnapshot, snap.Cursor, len(cur.Commands))
	}
	if snap.Saved != -1 && (snap.Saved < 0 || snap.Saved > len(cur.Commands)) {
		return nil, fmt.Errorf("%w: saved %d outside [0, %d]", ErrInvalidSnapshot, snap.Saved, len(cur.Commands))
	}
	if snap.SavedAt.Branch != -1 {
		if snap.Saved != -1 {
			return nil, fmt.Errorf("%w: saved position on both current and suspended branch", ErrInvalidSnapshot)
		}
		if snap.SavedAt.Branch == snap.Current {
			return nil, fmt.Errorf("%w: suspended saved position names the current branch", ErrInvalidSnapshot)
		}
		at, ok := byID[snap.SavedAt.Branch]
		if !ok {
			return nil, fmt.Errorf("%w: saved position on missing branch %d", ErrInvalidSnapshot, snap.SavedAt.Branch)
		}
		if snap.SavedAt.Index < 0 || snap.SavedAt.Index > length(at) {
			return nil, fmt.Errorf("%w: saved position %d beyond branch %d length %d", ErrInvalidSnapshot, snap.SavedAt.Index, at.ID, length(at))
		}
	}

	h := &History[T]{
		rec:      NewRecord(target),
		branches: make(map[int]*branch[T], len(byID)),
		current:  snap.Current,
		next:     snap.Next,
	}
	for _, b := range byID {
		entries, err := joinEntries(b.Commands, b.IDs, b.Times)
		if err != nil {
			return nil, fmt.Errorf("branch %d: %w", b.ID, err)
		}
		if b.ID == snap.Current {
			h.rec.log = entries
			h.branches[b.ID] = &branch[T]{parent: b.Parent, res: At{Branch: b.ID}}
		} else {
			h.branches[b.ID] = &branch[T]{parent: b.Parent, res: b.Res, tail: entries}
		}
	}
	h.rec.cursor = snap.Cursor
	h.rec.saved = snap.Saved
	if snap.SavedAt.Branch != -1 {
		at := snap.SavedAt
		h.saved = &at
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// splitEntries copies entry metadata into parallel slices.
func splitEntries[T any](entries []*entry[T]) ([]Command[T], []uuid.UUID, []time.Time) {
	cmds := make([]Command[T], len(entries))
	ids := make([]uuid.UUID, len(entries))
	times := make([]time.Time, len(entries))
	for i, e := range entries {
		cmds[i] = e.cmd
		ids[i] = e.id
		times[i] = e.time
	}
	return cmds, ids, times
}

// joinEntries rebuilds entries from parallel slices. Nil ids or times
// are filled in; mismatched lengths and nil commands are refused.
func joinEntries[T any](cmds []Command[T], ids []uuid.UUID, times []time.Time) ([]*entry[T], error) {
	if ids != nil && len(ids) != len(cmds) {
		return nil, fmt.Errorf("%w: %d ids for %d commands", ErrInvalidSnapshot, len(ids), len(cmds))
	}
	if times != nil && len(times) != len(cmds) {
		return nil, fmt.Errorf("%w: %d times for %d commands", ErrInvalidSnapshot, len(times), len(cmds))
	}
	entries := make([]*entry[T], len(cmds))
	for i, cmd := range cmds {
		if cmd == nil {
			return nil, fmt.Errorf("%w: nil command at %d", ErrInvalidSnapshot, i)
		}
		e := &entry[T]{cmd: cmd}
		if ids != nil {
			e.id = ids[i]
		} else {
			e.id = uuid.New()
		}
		if times != nil {
			e.time = times[i]
		}
		entries[i] = e
	}
	return entries, nil
}
