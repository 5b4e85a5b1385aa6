package app

import (
	"testing"

	"github.com/dshills/rewind"
	"github.com/dshills/rewind/textedit"
)

// forkedHistory builds a two-branch history: "ab" pushed, undone, and
// "c" pushed over it, displacing "ab" onto branch 1.
func forkedHistory(t *testing.T) *rewind.History[*textedit.Document] {
	t.Helper()
	h := rewind.NewHistory(textedit.NewDocument(""))
	if err := h.Push(&textedit.Insert{At: 0, Text: "ab"}); err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	if err := h.Undo(); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if err := h.Push(&textedit.Insert{At: 0, Text: "c"}); err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	return h
}

func TestTreeRows_Forked(t *testing.T) {
	h := forkedHistory(t)
	h.SetSaved()

	rows := treeRows(h)
	if len(rows) != 5 {
		t.Fatalf("len(rows) = %d, want 5", len(rows))
	}

	want := []struct {
		branch int
		index  int
		depth  int
		label  string
		header bool
		active bool
		saved  bool
	}{
		{0, -1, 0, "branch 0", true, false, false},
		{0, 1, 1, `insert "c" at 0`, false, true, true},
		{0, 0, 1, "start", false, false, false},
		{1, -1, 1, "branch 1 (from 0 @ 0)", true, false, false},
		{1, 1, 2, `insert "ab" at 0`, false, false, false},
	}
	for i, w := range want {
		r := rows[i]
		if r.branch != w.branch || r.index != w.index || r.depth != w.depth ||
			r.label != w.label || r.header != w.header || r.active != w.active || r.saved != w.saved {
			t.Errorf("rows[%d] = %+v, want %+v", i, r, w)
		}
	}

	if got := activeRow(rows); got != 1 {
		t.Errorf("activeRow() = %d, want 1", got)
	}
}

func TestTreeRows_MarkersFollowTheCursor(t *testing.T) {
	h := forkedHistory(t)
	h.SetSaved()
	if err := h.Undo(); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}

	rows := treeRows(h)
	if !rows[2].active {
		t.Error("start row should be active after undo")
	}
	if rows[1].active {
		t.Error("old cursor row still active")
	}
	if !rows[1].saved {
		t.Error("saved marker should stay on the saved position")
	}
	if got := activeRow(rows); got != 2 {
		t.Errorf("activeRow() = %d, want 2", got)
	}
}

func TestTreeRows_Linear(t *testing.T) {
	h := rewind.NewHistory(textedit.NewDocument(""))
	if err := h.Push(&textedit.Insert{At: 0, Text: "one"}); err != nil {
		t.Fatalf("Push() error = %v", err)
	}

	rows := treeRows(h)
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(rows))
	}
	if !rows[0].header || rows[0].label != "branch 0" {
		t.Errorf("rows[0] = %+v, want branch 0 header", rows[0])
	}
	if rows[1].index != 1 || !rows[1].active {
		t.Errorf("rows[1] = %+v, want active position 1", rows[1])
	}
	if rows[2].index != 0 || rows[2].label != "start" {
		t.Errorf("rows[2] = %+v, want start row", rows[2])
	}
}
