package app

import (
	"fmt"
	"time"

	"github.com/dshills/rewind"
)

// treeRow is one line of the history pane. Header rows introduce a
// branch; entry rows are jump targets, identified by branch and index.
type treeRow struct {
	branch int
	index  int // position on the branch; -1 on header rows
	depth  int
	label  string
	header bool
	active bool // the history's current position
	saved  bool
	time   time.Time
}

// treeRows flattens a history into pane rows, branches sorted by id,
// each branch's entries newest first, the root closing with the initial
// state. The layout matches rewind.FormatHistory so the pane and the
// script tool print the same shape.
func treeRows[T any](h *rewind.History[T]) []treeRow {
	branches := h.Branches()
	byID := make(map[int]rewind.BranchInfo, len(branches))
	for _, br := range branches {
		byID[br.ID] = br
	}

	// A position at or before a branch's divergence point lives on an
	// ancestor's rows; resolve where the markers belong.
	resolve := func(id, pos int) (int, int) {
		for id != 0 && pos <= byID[id].Divergence {
			id = byID[id].Parent
		}
		return id, pos
	}
	curBranch, curPos := resolve(h.Current(), h.Cursor())
	savedBranch, savedPos := -1, -1
	if at, ok := h.Saved(); ok {
		savedBranch, savedPos = resolve(at.Branch, at.Index)
	}
	depth := func(id int) int {
		d := 0
		for id != 0 {
			id = byID[id].Parent
			d++
		}
		return d
	}

	var rows []treeRow
	for _, br := range branches {
		label := fmt.Sprintf("branch %d", br.ID)
		if br.Parent >= 0 {
			label += fmt.Sprintf(" (from %d @ %d)", br.Parent, br.Divergence)
		}
		rows = append(rows, treeRow{
			branch: br.ID,
			index:  -1,
			depth:  depth(br.ID),
			label:  label,
			header: true,
		})

		top := br.Divergence + len(br.Entries)
		for pos := top; pos > br.Divergence; pos-- {
			e := br.Entries[pos-br.Divergence-1]
			rows = append(rows, treeRow{
				branch: br.ID,
				index:  pos,
				depth:  depth(br.ID) + 1,
				label:  e.Description,
				active: br.ID == curBranch && pos == curPos,
				saved:  br.ID == savedBranch && pos == savedPos,
				time:   e.Time,
			})
		}
		if br.ID == 0 {
			rows = append(rows, treeRow{
				branch: 0,
				index:  0,
				depth:  1,
				label:  "start",
				active: curBranch == 0 && curPos == 0,
				saved:  savedBranch == 0 && savedPos == 0,
			})
		}
	}
	return rows
}

// activeRow returns the index of the row holding the cursor marker, or
// 0 when the tree is empty.
func activeRow(rows []treeRow) int {
	for i, r := range rows {
		if r.active {
			return i
		}
	}
	return 0
}
