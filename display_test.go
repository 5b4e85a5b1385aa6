package rewind

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
)

// plainOpts disables coloring so output is byte-stable in tests.
func plainOpts() *DisplayOptions {
	return &DisplayOptions{Palette: &Palette{}}
}

// Helper building the three-branch tree the jump tests walk.
func treeHistory(t *testing.T) (*History[*int], *int) {
	t.Helper()
	target := 0
	h := NewHistory(&target)
	pushAll(t, h, 1, 2, 4)
	if err := h.Undo(); err != nil {
		t.Fatal(err)
	}
	pushAll(t, h, 8)
	if err := h.JumpTo(1, 3); err != nil {
		t.Fatal(err)
	}
	if err := h.GoTo(1); err != nil {
		t.Fatal(err)
	}
	pushAll(t, h, 16)
	h.ClearSaved()
	return h, &target
}

func TestFormatRecord(t *testing.T) {
	target := 0
	r := NewRecord(&target)
	for _, n := range []int{1, 2, 4} {
		if err := r.Push(&add{n: n}); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.Undo(); err != nil {
		t.Fatal(err)
	}
	r.SetSaved()

	var buf bytes.Buffer
	if err := FormatRecord(&buf, r, plainOpts()); err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"* 3 add 4",
		"> 2 add 2 (saved)",
		"* 1 add 1",
		"* 0 start",
	}, "\n") + "\n"
	if buf.String() != want {
		t.Errorf("FormatRecord =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestFormatRecordEmpty(t *testing.T) {
	target := 0
	r := NewRecord(&target)
	r.ClearSaved()

	var buf bytes.Buffer
	if err := FormatRecord(&buf, r, plainOpts()); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "> 0 start\n" {
		t.Errorf("FormatRecord = %q, want %q", got, "> 0 start\n")
	}
}

func TestFormatRecordTimes(t *testing.T) {
	target := 1
	snap := RecordSnapshot[*int]{
		Commands: []Command[*int]{&add{n: 1}},
		Times:    []time.Time{time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		Cursor:   1,
		Saved:    -1,
	}
	r, err := RestoreRecord(&target, snap)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	opts := plainOpts()
	opts.Times = true
	if err := FormatRecord(&buf, r, opts); err != nil {
		t.Fatal(err)
	}
	want := "> 1 add 1 03:04:05\n* 0 start\n"
	if buf.String() != want {
		t.Errorf("FormatRecord = %q, want %q", buf.String(), want)
	}
}

func TestFormatHistoryTree(t *testing.T) {
	h, _ := treeHistory(t)

	var buf bytes.Buffer
	if err := FormatHistory(&buf, h, plainOpts()); err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"branch 0",
		"  * 3 add 8",
		"  * 2 add 2",
		"  * 1 add 1",
		"  * 0 start",
		"  branch 1 (from 0 @ 1) *",
		"    > 2 add 16",
		"    branch 2 (from 1 @ 1)",
		"      * 3 add 4",
		"      * 2 add 2",
	}, "\n") + "\n"
	if buf.String() != want {
		t.Errorf("FormatHistory =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestFormatHistoryMarkersOnSharedPrefix(t *testing.T) {
	h, _ := treeHistory(t)
	h.SetSaved()
	if err := h.Undo(); err != nil {
		t.Fatal(err)
	}
	// The cursor now sits on the prefix shared with the root branch; its
	// row, and the saved row, land where the positions actually live.
	var buf bytes.Buffer
	if err := FormatHistory(&buf, h, plainOpts()); err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"branch 0",
		"  * 3 add 8",
		"  * 2 add 2",
		"  > 1 add 1",
		"  * 0 start",
		"  branch 1 (from 0 @ 1) *",
		"    * 2 add 16 (saved)",
		"    branch 2 (from 1 @ 1)",
		"      * 3 add 4",
		"      * 2 add 2",
	}, "\n") + "\n"
	if buf.String() != want {
		t.Errorf("FormatHistory =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestFormatRecordColors(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = prev }()

	target := 0
	r := NewRecord(&target)
	if err := r.Push(&add{n: 1}); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := FormatRecord(&buf, r, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Error("default palette should emit color escapes when color is on")
	}
}
