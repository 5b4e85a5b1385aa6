package rewind

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Palette maps timeline roles to sprintf-style colorizers, as produced
// by color.New(...).SprintfFunc(). Nil entries print plain text, and
// color.NoColor degrades everything to plain text off a TTY.
type Palette struct {
	Cursor func(format string, a ...any) string
	Saved  func(format string, a ...any) string
	Branch func(format string, a ...any) string
	Muted  func(format string, a ...any) string
}

// DefaultPalette returns the palette the bundled tools use.
func DefaultPalette() *Palette {
	return &Palette{
		Cursor: color.New(color.FgGreen, color.Bold).SprintfFunc(),
		Saved:  color.New(color.FgYellow).SprintfFunc(),
		Branch: color.New(color.FgCyan).SprintfFunc(),
		Muted:  color.New(color.FgHiBlack).SprintfFunc(),
	}
}

func (p *Palette) paint(f func(string, ...any) string, s string) string {
	if p == nil || f == nil {
		return s
	}
	return f("%s", s)
}

// DisplayOptions controls the timeline renderers.
type DisplayOptions struct {
	// Times prints each entry's timestamp.
	Times bool

	// Palette colors the output; nil means DefaultPalette.
	Palette *Palette
}

func (o *DisplayOptions) palette() *Palette {
	if o == nil || o.Palette == nil {
		return DefaultPalette()
	}
	return o.Palette
}

func (o *DisplayOptions) times() bool {
	return o != nil && o.Times
}

// FormatRecord renders a record's timeline, one line per position,
// newest first. The cursor row carries an arrow, the saved position a
// marker. It reads only the record's public views; any display
// collaborator could produce the same output.
func FormatRecord[T any](w io.Writer, r *Record[T], opts *DisplayOptions) error {
	pal := opts.palette()
	var b strings.Builder
	entries := r.Entries()
	saved, hasSaved := r.Saved()
	for pos := len(entries); pos >= 0; pos-- {
		label := "start"
		if pos > 0 {
			label = entries[pos-1].Description
		}
		writeRow(&b, pal, rowOptions{
			pos:        pos,
			label:      label,
			active:     pos == r.Cursor(),
			saved:      hasSaved && pos == saved,
			time:       entryTime(entries, pos, opts.times()),
			initialRow: pos == 0,
		})
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// FormatHistory renders every branch as an indented tree, sorted by id,
// each branch showing its own entries from its divergence point. The
// cursor arrow and saved marker land on whichever branch's row holds
// the position, shared prefixes included.
func FormatHistory[T any](w io.Writer, h *History[T], opts *DisplayOptions) error {
	pal := opts.palette()
	branches := h.Branches()
	byID := make(map[int]BranchInfo, len(branches))
	for _, br := range branches {
		byID[br.ID] = br
	}

	// A position at or before a branch's divergence point lives on an
	// ancestor's rows; resolve where the marker belongs.
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

	var b strings.Builder
	for _, br := range branches {
		ind := strings.Repeat("  ", depth(br.ID))
		head := fmt.Sprintf("branch %d", br.ID)
		if br.Parent >= 0 {
			head += fmt.Sprintf(" (from %d @ %d)", br.Parent, br.Divergence)
		}
		if br.ID == h.Current() {
			head += " *"
		}
		b.WriteString(ind)
		b.WriteString(pal.paint(pal.Branch, head))
		b.WriteByte('\n')

		top := br.Divergence + len(br.Entries)
		for pos := top; pos > br.Divergence; pos-- {
			writeRow(&b, pal, rowOptions{
				pos:    pos,
				label:  br.Entries[pos-br.Divergence-1].Description,
				active: br.ID == curBranch && pos == curPos,
				saved:  br.ID == savedBranch && pos == savedPos,
				time:   entryTime(br.Entries, pos-br.Divergence, opts.times()),
				indent: depth(br.ID) + 1,
			})
		}
		if br.ID == 0 {
			writeRow(&b, pal, rowOptions{
				pos:        0,
				label:      "start",
				active:     curBranch == 0 && curPos == 0,
				saved:      savedBranch == 0 && savedPos == 0,
				indent:     1,
				initialRow: true,
			})
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

type rowOptions struct {
	pos        int
	label      string
	active     bool
	saved      bool
	time       string
	indent     int
	initialRow bool
}

func writeRow(b *strings.Builder, pal *Palette, row rowOptions) {
	b.WriteString(strings.Repeat("  ", row.indent))
	line := fmt.Sprintf("* %d %s", row.pos, row.label)
	if row.active {
		line = fmt.Sprintf("> %d %s", row.pos, row.label)
	}
	switch {
	case row.active:
		line = pal.paint(pal.Cursor, line)
	case row.initialRow:
		line = pal.paint(pal.Muted, line)
	}
	b.WriteString(line)
	if row.saved {
		b.WriteByte(' ')
		b.WriteString(pal.paint(pal.Saved, "(saved)"))
	}
	if row.time != "" {
		b.WriteByte(' ')
		b.WriteString(pal.paint(pal.Muted, row.time))
	}
	b.WriteByte('\n')
}

// entryTime formats the timestamp of the entry producing position pos,
// or returns "" when times are off or pos is the initial state.
func entryTime(entries []EntryInfo, pos int, on bool) string {
	if !on || pos <= 0 || pos > len(entries) {
		return ""
	}
	return entries[pos-1].Time.Format("15:04:05")
}
