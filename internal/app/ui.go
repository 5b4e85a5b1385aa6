package app

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// styles groups the screen styles. The zero value is monochrome; the
// colored set mirrors the rewind.DefaultPalette roles.
type styles struct {
	active tcell.Style
	saved  tcell.Style
	branch tcell.Style
	muted  tcell.Style
	bar    tcell.Style
}

func newStyles(color bool) styles {
	base := tcell.StyleDefault
	st := styles{
		active: base,
		saved:  base,
		branch: base,
		muted:  base,
		bar:    base.Reverse(true),
	}
	if color {
		st.active = base.Foreground(tcell.ColorGreen).Bold(true)
		st.saved = base.Foreground(tcell.ColorYellow)
		st.branch = base.Foreground(tcell.ColorAqua)
		st.muted = base.Foreground(tcell.ColorGray)
	}
	return st
}

// drawText writes text at (x, y), clipped at maxX, and returns the x
// after the last cell written.
func drawText(s tcell.Screen, x, y, maxX int, style tcell.Style, text string) int {
	for _, r := range text {
		if x >= maxX {
			break
		}
		s.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}

// draw renders the whole screen: the editor, the history pane when
// open, and the status bar.
func (a *App) draw() {
	s := a.screen
	s.Clear()
	w, h := s.Size()
	if w <= 0 || h <= 1 {
		s.Show()
		return
	}

	statusY := h - 1
	editW := w
	if a.showTree {
		treeW := w / 2
		if treeW > 48 {
			treeW = 48
		}
		editW = w - treeW
		a.drawTree(editW, 0, treeW, statusY)
	}
	a.drawEditor(0, 0, editW, statusY)
	a.drawStatus(statusY, w)
	s.Show()
}

// drawEditor renders the document into the given region, wrapping at
// the region width, and places the terminal cursor on the document
// cursor while the editor has focus.
func (a *App) drawEditor(x0, y0, w, h int) {
	s := a.screen
	x, y := x0, y0
	cx, cy := x0, y0
	cursor := a.doc.Cursor()

	for i, r := range []rune(a.doc.Text()) {
		if r == '\n' {
			if i == cursor {
				cx, cy = x, y
			}
			x, y = x0, y+1
			if y >= y0+h {
				break
			}
			continue
		}
		if x >= x0+w {
			x, y = x0, y+1
			if y >= y0+h {
				break
			}
		}
		if i == cursor {
			cx, cy = x, y
		}
		s.SetContent(x, y, r, nil, tcell.StyleDefault)
		x++
	}
	if cursor == a.doc.Len() {
		if x >= x0+w {
			x, y = x0, y+1
		}
		cx, cy = x, y
	}

	if a.showTree || cy >= y0+h || cx >= x0+w {
		s.HideCursor()
	} else {
		s.ShowCursor(cx, cy)
	}
}

// drawTree renders the history pane with the selection bar, scrolled to
// keep the selection visible.
func (a *App) drawTree(x0, y0, w, h int) {
	s := a.screen
	rows := treeRows(a.hist)
	if a.treeSel >= len(rows) {
		a.treeSel = len(rows) - 1
	}
	if a.treeSel < 0 {
		a.treeSel = 0
	}

	for y := y0; y < y0+h; y++ {
		s.SetContent(x0, y, '│', nil, a.st.muted)
	}

	first := 0
	if len(rows) > h {
		first = a.treeSel - h/2
		if first > len(rows)-h {
			first = len(rows) - h
		}
		if first < 0 {
			first = 0
		}
	}

	for i := first; i < len(rows) && i-first < h; i++ {
		row := rows[i]
		y := y0 + i - first

		style := tcell.StyleDefault
		switch {
		case row.header:
			style = a.st.branch
		case row.active:
			style = a.st.active
		case row.index == 0:
			style = a.st.muted
		}
		savedStyle := a.st.saved
		timeStyle := a.st.muted
		if i == a.treeSel {
			style = style.Reverse(true)
			savedStyle = savedStyle.Reverse(true)
			timeStyle = timeStyle.Reverse(true)
		}

		text := strings.Repeat("  ", row.depth)
		if row.header {
			text += row.label
			if row.branch == a.hist.Current() {
				text += " *"
			}
		} else {
			marker := "*"
			if row.active {
				marker = ">"
			}
			text += fmt.Sprintf("%s %d %s", marker, row.index, row.label)
		}

		x := drawText(s, x0+2, y, x0+w, style, text)
		if row.saved {
			x = drawText(s, x+1, y, x0+w, savedStyle, "(saved)")
		}
		if a.cfg.UI.Times && !row.header && !row.time.IsZero() {
			drawText(s, x+1, y, x0+w, timeStyle, row.time.Format("15:04:05"))
		}
	}
}

// drawStatus renders the bottom bar: journal, position, saved marker,
// and the transient message right-aligned.
func (a *App) drawStatus(y, w int) {
	s := a.screen
	for x := 0; x < w; x++ {
		s.SetContent(x, y, ' ', nil, a.st.bar)
	}

	name := "(no journal)"
	if a.journalPath != "" {
		name = filepath.Base(a.journalPath)
	}
	if a.readOnly {
		name += " [ro]"
	}
	line := fmt.Sprintf(" %s  branch %d  %d/%d", name, a.hist.Current(), a.hist.Cursor(), a.hist.Len())
	if a.hist.IsSaved() {
		line += "  saved"
	}
	drawText(s, 0, y, w, a.st.bar, line)

	if a.status != "" {
		x := w - len([]rune(a.status)) - 1
		if x < 0 {
			x = 0
		}
		drawText(s, x, y, w, a.st.bar, a.status)
	}
}
