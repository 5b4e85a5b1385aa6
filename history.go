package rewind

import (
	"fmt"
	"sort"
)

// At addresses a position in a branch tree: an entry index on one
// branch's timeline. A branch's timeline is counted from the root of
// the tree, so index 0 is the initial state on every branch.
type At struct {
	Branch int
	Index  int
}

// branch is one timeline in the tree.
//
// The current branch's timeline is fully materialized in the record;
// its tail is nil. A suspended branch stores only its own suffix: its
// first res.Index entries are the same entries as the first res.Index
// entries of branch res.Branch, and tail holds the rest. Residence
// edges always lead to the current branch, so every suspended timeline
// can be materialized by walking them.
//
// parent is the observable divergence edge reported by Branches: the
// branch forked off parent.Branch at entry index parent.Index. Jumps
// move storage between branches and rewrite residence edges, but never
// touch parent edges; the observable tree only changes when a
// divergence creates a branch, a push truncates a shared timeline, or
// a prune removes branches.
type branch[T any] struct {
	parent At
	res    At
	tail   []*entry[T]
}

// History is a tree of undo/redo timelines over a single target.
//
// It embeds a Record holding the current branch's timeline, so every
// Record semantic carries over: merge-on-tip, saved tracking, signals,
// the partial-failure contract. Pushing with undone commands ahead of
// the cursor diverges instead of discarding: the displaced future
// becomes a new branch that JumpTo can reach later.
//
// Branch ids are assigned by a per-instance counter and never reused;
// the root id is always 0. Like Record, a History is single-owner and
// does no internal locking.
type History[T any] struct {
	rec      *Record[T]
	branches map[int]*branch[T]
	current  int
	next     int

	// saved locates the saved position when it sits on a suspended
	// branch; the record itself tracks it while it is on the current
	// one. At most one of the two is set.
	saved *At

	// version counts structural mutations invisible to the record's
	// own counter (pruning); generation sums the two.
	version uint64
}

// NewHistory creates a history around target with a single root branch.
func NewHistory[T any](target T, opts ...HistoryOption[T]) *History[T] {
	h := &History[T]{
		rec:      NewRecord(target),
		branches: map[int]*branch[T]{0: {parent: At{Branch: -1}}},
		next:     1,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// generation satisfies Timeline; see Queue for how it detects staleness.
func (h *History[T]) generation() uint64 {
	return h.rec.version + h.version
}

// Push applies cmd on the current branch. When undone commands sit
// ahead of the cursor they are not discarded: a new branch takes them,
// forking off the current branch at the pre-push cursor, and the
// current branch continues with cmd. A saved position among the
// displaced commands moves to the new branch with them.
//
// Push failure semantics are the record's: a failed Apply changes
// nothing and returns ownership of cmd inside *ApplyError.
func (h *History[T]) Push(cmd Command[T]) error {
	return h.push(cmd, h.allowMerge())
}

// push is Push with an explicit merge policy. HistoryCheckpoint forbids
// merging so a cancel can restore the pre-push entry untouched.
func (h *History[T]) push(cmd Command[T], allowMerge bool) error {
	before := h.rec.cursor
	savedBefore := h.rec.saved
	tail, _, _, err := h.rec.push(newEntry(cmd), allowMerge)
	if err != nil {
		return err
	}
	if len(tail) > 0 {
		id := h.next
		h.next++
		h.branches[id] = &branch[T]{
			parent: At{Branch: h.current, Index: before},
			res:    At{Branch: h.current, Index: before},
			tail:   tail,
		}
		h.reparent(h.current, before, id)
		// The current branch's own shared prefix with its parent cannot
		// extend past the divergence anymore.
		if cur := h.branches[h.current]; cur.parent.Branch != -1 && cur.parent.Index > before {
			cur.parent.Index = before
		}
		if savedBefore > before {
			// The saved position was in the displaced future; it now
			// lives on the new branch.
			h.saved = &At{Branch: id, Index: savedBefore}
		}
	}
	return nil
}

// allowMerge reports whether the record may merge the next push into
// its tip entry. A suspended branch whose resident prefix covers the
// tip shares that entry; merging would rewrite or remove it under the
// other branch, so merging is suppressed then.
func (h *History[T]) allowMerge() bool {
	cursor := h.rec.cursor
	for id, br := range h.branches {
		if id == h.current {
			continue
		}
		if br.res.Branch == h.current && br.res.Index >= cursor {
			return false
		}
	}
	return true
}

// reparent re-points edges that named positions past index d on donor:
// that part of the donor's timeline now lives on branch id.
func (h *History[T]) reparent(donor, d, id int) {
	for bid, br := range h.branches {
		if bid == id {
			continue
		}
		if br.parent.Branch == donor && br.parent.Index > d {
			br.parent.Branch = id
		}
		if br.res.Branch == donor && br.res.Index > d {
			br.res.Branch = id
		}
	}
}

// Undo reverses the most recent command on the current branch.
func (h *History[T]) Undo() error {
	return h.rec.Undo()
}

// Redo re-applies the next undone command on the current branch. It
// stops at the branch tip; it never crosses into another branch.
func (h *History[T]) Redo() error {
	return h.rec.Redo()
}

// GoTo moves the cursor to index on the current branch, stepwise and
// best-effort like Record.GoTo.
func (h *History[T]) GoTo(index int) error {
	return h.rec.GoTo(index)
}

// JumpTo moves to position index on the named branch, undoing and
// redoing through every branch point in between. The walk is
// best-effort: a failing command stops it, the history stays exactly
// where that step left it (always on a consistent branch), and the
// returned error wraps the failing step.
func (h *History[T]) JumpTo(id, index int) error {
	if _, ok := h.branches[id]; !ok {
		return ErrBranchNotFound
	}
	if index < 0 {
		return ErrNothingToUndo
	}
	if index > h.branchLen(id) {
		return ErrNothingToRedo
	}
	if id != h.current {
		// Residence edges lead from the target to the current branch;
		// activate each branch on that path, nearest first.
		var chain []int
		for p := id; p != h.current; p = h.branches[p].res.Branch {
			chain = append(chain, p)
		}
		for i := len(chain) - 1; i >= 0; i-- {
			if err := h.activate(chain[i]); err != nil {
				return fmt.Errorf("jump to branch %d: %w", id, err)
			}
		}
	}
	if err := h.rec.GoTo(index); err != nil {
		return fmt.Errorf("jump to branch %d: %w", id, err)
	}
	return nil
}

// activate makes id the current branch. Its resident prefix must lie in
// the record, i.e. res.Branch == current. The record rewinds to the
// shared prefix, the abandoned suffix is suspended onto the old current
// branch, and the activated branch's tail becomes the record's future.
func (h *History[T]) activate(id int) error {
	br := h.branches[id]
	d := br.res.Index
	if err := h.rec.GoTo(d); err != nil {
		return fmt.Errorf("leave branch %d at %d: %w", h.current, d, err)
	}
	// A saved position beyond the shared prefix belongs to the branch
	// being suspended; park it at the history level.
	if h.rec.saved > d {
		h.saved = &At{Branch: h.current, Index: h.rec.saved}
		h.rec.dropSaved()
	}
	old := h.branches[h.current]
	old.tail = h.rec.detachTail()
	old.res = At{Branch: id, Index: d}
	h.rec.attachTail(br.tail)
	br.tail = nil
	br.res = At{Branch: id}
	h.current = id
	// A parked saved position on the activated branch re-enters the
	// record.
	if h.saved != nil && h.saved.Branch == id {
		h.rec.setSavedAt(h.saved.Index)
		h.saved = nil
	}
	return nil
}

// branchLen returns the full timeline length of a branch.
func (h *History[T]) branchLen(id int) int {
	if id == h.current {
		return h.rec.Len()
	}
	br := h.branches[id]
	return br.res.Index + len(br.tail)
}

// Prune removes a branch together with every branch reachable from it
// through parent edges. The root and the current branch are refused, as
// is any ancestor of the current branch: removing one would orphan the
// branch the target state lives on. Suspended content that a surviving
// branch still depends on is re-homed into a survivor before removal.
func (h *History[T]) Prune(id int) error {
	if _, ok := h.branches[id]; !ok {
		return ErrBranchNotFound
	}
	if id == 0 || id == h.current {
		return ErrCannotPrune
	}
	for p := h.branches[h.current].parent.Branch; p != -1; p = h.branches[p].parent.Branch {
		if p == id {
			return ErrCannotPrune
		}
	}

	// The observable subtree under id.
	removed := map[int]bool{id: true}
	for changed := true; changed; {
		changed = false
		for bid, br := range h.branches {
			if !removed[bid] && br.parent.Branch != -1 && removed[br.parent.Branch] {
				removed[bid] = true
				changed = true
			}
		}
	}

	h.rehome(removed)

	if h.saved != nil && removed[h.saved.Branch] {
		// The saved position sat on a removed branch; that state is no
		// longer reachable.
		h.saved = nil
	}
	for bid := range removed {
		delete(h.branches, bid)
	}
	h.version++
	return nil
}

// rehome moves content out of removed branches that survivors' resident
// prefixes still depend on. For each removed donor, the survivor with
// the longest claim absorbs the donor's storage up to that claim and
// the other claimants re-point through the absorber, so every entry
// keeps a single owner.
func (h *History[T]) rehome(removed map[int]bool) {
	for {
		donor := -1
		for bid, br := range h.branches {
			if bid == h.current || removed[bid] {
				continue
			}
			if removed[br.res.Branch] {
				donor = br.res.Branch
				break
			}
		}
		if donor == -1 {
			return
		}

		var claimants []int
		for bid, br := range h.branches {
			if bid != h.current && !removed[bid] && br.res.Branch == donor {
				claimants = append(claimants, bid)
			}
		}
		longest := claimants[0]
		for _, bid := range claimants[1:] {
			if h.branches[bid].res.Index > h.branches[longest].res.Index {
				longest = bid
			}
		}

		d := h.branches[donor]
		l := h.branches[longest]
		if n := l.res.Index - d.res.Index; n > 0 {
			// The claim extends into the donor's own storage; absorb
			// that span in front of the absorber's tail.
			tail := make([]*entry[T], 0, n+len(l.tail))
			tail = append(tail, d.tail[:n]...)
			tail = append(tail, l.tail...)
			l.tail = tail
			l.res = At{Branch: d.res.Branch, Index: d.res.Index}
		} else {
			l.res = At{Branch: d.res.Branch, Index: l.res.Index}
		}
		for _, bid := range claimants {
			if bid != longest {
				h.branches[bid].res.Branch = longest
			}
		}
	}
}

// BranchInfo is a read-only view of one branch for display and
// traversal collaborators.
type BranchInfo struct {
	ID         int
	Parent     int // -1 for the root
	Divergence int // entry index on the parent where this branch forked
	Entries    []EntryInfo
}

// Branches returns every branch sorted by id. Entries holds the
// branch's own commands, from its divergence point to its tip; the
// shared prefix before the divergence belongs to its ancestors.
func (h *History[T]) Branches() []BranchInfo {
	ids := make([]int, 0, len(h.branches))
	for id := range h.branches {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	infos := make([]BranchInfo, 0, len(ids))
	for _, id := range ids {
		br := h.branches[id]
		infos = append(infos, BranchInfo{
			ID:         id,
			Parent:     br.parent.Branch,
			Divergence: br.parent.Index,
			Entries:    entryInfos(h.timeline(id, br.parent.Index, h.branchLen(id))),
		})
	}
	return infos
}

// timeline materializes entries [from, to) of a branch's full timeline,
// resolving resident prefixes through residence edges.
func (h *History[T]) timeline(id, from, to int) []*entry[T] {
	if from >= to {
		return nil
	}
	if id == h.current {
		return h.rec.log[from:to]
	}
	br := h.branches[id]
	k := br.res.Index
	var out []*entry[T]
	if from < k {
		stop := to
		if stop > k {
			stop = k
		}
		out = append(out, h.timeline(br.res.Branch, from, stop)...)
	}
	if to > k {
		start := from - k
		if start < 0 {
			start = 0
		}
		out = append(out, br.tail[start:to-k]...)
	}
	return out
}

// Current returns the current branch id.
func (h *History[T]) Current() int {
	return h.current
}

// Root returns the root branch id, which is always 0.
func (h *History[T]) Root() int {
	return 0
}

// Cursor returns the number of applied commands on the current branch.
func (h *History[T]) Cursor() int {
	return h.rec.Cursor()
}

// Len returns the current branch's timeline length.
func (h *History[T]) Len() int {
	return h.rec.Len()
}

// CanUndo reports whether an undo step is available.
func (h *History[T]) CanUndo() bool {
	return h.rec.CanUndo()
}

// CanRedo reports whether a redo step is available on the current
// branch.
func (h *History[T]) CanRedo() bool {
	return h.rec.CanRedo()
}

// SetSaved marks the current position as saved. Any previous saved
// position, on any branch, is replaced.
func (h *History[T]) SetSaved() {
	h.saved = nil
	h.rec.SetSaved()
}

// ClearSaved removes the saved marker from every branch.
func (h *History[T]) ClearSaved() {
	h.saved = nil
	h.rec.ClearSaved()
}

// IsSaved reports whether the target currently sits at the saved
// position.
func (h *History[T]) IsSaved() bool {
	return h.rec.IsSaved()
}

// Saved returns the saved position, which may sit on a branch other
// than the current one, and whether one is set.
func (h *History[T]) Saved() (At, bool) {
	if s, ok := h.rec.Saved(); ok {
		return At{Branch: h.current, Index: s}, true
	}
	if h.saved != nil {
		return *h.saved, true
	}
	return At{}, false
}

// Target returns the target value the history mutates.
func (h *History[T]) Target() T {
	return h.rec.Target()
}

// Entries returns a read-only view of the current branch's timeline.
func (h *History[T]) Entries() []EntryInfo {
	return h.rec.Entries()
}
