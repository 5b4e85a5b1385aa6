package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/rewind"
	"github.com/dshills/rewind/journal"
	"github.com/dshills/rewind/textedit"
)

// Options adjust an App beyond its Config.
type Options struct {
	// Journal overrides the configured journal path.
	Journal string

	// ReadOnly refuses edits and journal writes. Undo, redo and jumps
	// stay live; they only move through already-recorded states.
	ReadOnly bool

	// Screen substitutes a screen, for tests. Nil opens the terminal.
	Screen tcell.Screen

	// Logger overrides the configured logger.
	Logger *Logger
}

// App is the interactive editor: a text document under a branching
// history, a journal for persistence, and a tcell screen.
type App struct {
	cfg      *Config
	log      *Logger
	closeLog func() error
	screen   tcell.Screen
	keys     *Keymap

	doc         *textedit.Document
	hist        *rewind.History[*textedit.Document]
	codec       *journal.TypeCodec[*textedit.Document]
	journalPath string
	readOnly    bool

	st          styles
	showTree    bool
	treeSel     int
	status      string
	confirmQuit bool
	quitting    bool
}

// New builds an App from the config and options. A configured journal
// file is loaded if it exists; otherwise the session starts empty.
func New(cfg *Config, opts Options) (*App, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	keys, err := NewKeymap(cfg.Keys)
	if err != nil {
		return nil, err
	}

	log := opts.Logger
	var closeLog func() error
	if log == nil {
		log, closeLog, err = cfg.logger()
		if err != nil {
			return nil, err
		}
	}

	a := &App{
		cfg:         cfg,
		log:         log,
		closeLog:    closeLog,
		keys:        keys,
		codec:       newCodec(),
		journalPath: cfg.Journal.Path,
		readOnly:    opts.ReadOnly,
		st:          newStyles(cfg.UI.Color),
	}
	if opts.Journal != "" {
		a.journalPath = opts.Journal
	}

	if err := a.openJournal(); err != nil {
		a.close()
		return nil, err
	}

	a.screen = opts.Screen
	if a.screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			a.close()
			return nil, fmt.Errorf("opening terminal: %w", err)
		}
		a.screen = s
	}
	return a, nil
}

// newCodec registers the textedit command set for journaling.
func newCodec() *journal.TypeCodec[*textedit.Document] {
	c := journal.NewTypeCodec[*textedit.Document]()
	c.Register("insert", func() rewind.Command[*textedit.Document] { return &textedit.Insert{} })
	c.Register("delete", func() rewind.Command[*textedit.Document] { return &textedit.Delete{} })
	c.Register("replace", func() rewind.Command[*textedit.Document] { return &textedit.Replace{} })
	return c
}

// openJournal loads the journal file when one is configured and
// present, or starts a fresh document and history. Loading replays the
// journaled commands into a fresh document to reach the saved session's
// state.
func (a *App) openJournal() error {
	if a.journalPath != "" {
		h, err := journal.ReplayHistory(a.journalPath, textedit.NewDocument(""), a.codec)
		switch {
		case err == nil:
			a.hist = h
			a.doc = h.Target()
			a.log.WithComponent("journal").Info("loaded %s: branch %d at %d/%d",
				a.journalPath, h.Current(), h.Cursor(), h.Len())
			return nil
		case !errors.Is(err, os.ErrNotExist):
			return fmt.Errorf("loading journal: %w", err)
		}
	}
	a.doc = textedit.NewDocument("")
	a.hist = rewind.NewHistory(a.doc)
	return nil
}

// Run owns the terminal until the user quits.
func (a *App) Run() error {
	defer a.close()
	if err := a.screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	defer a.screen.Fini()
	a.log.WithComponent("ui").Info("session start")

	for !a.quitting {
		a.draw()
		ev := a.screen.PollEvent()
		if ev == nil {
			break
		}
		switch ev := ev.(type) {
		case *tcell.EventResize:
			a.screen.Sync()
		case *tcell.EventKey:
			a.handleKey(ev)
		case *tcell.EventInterrupt:
			a.quitting = true
		}
	}
	a.log.WithComponent("ui").Info("session end")
	return nil
}

// Quit asks the event loop to exit. Safe to call from another
// goroutine, such as a signal handler.
func (a *App) Quit() {
	_ = a.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

func (a *App) close() {
	if a.closeLog != nil {
		_ = a.closeLog()
		a.closeLog = nil
	}
}

// handleKey routes a key press: bound actions first, then the history
// pane when it is open, then the editor.
func (a *App) handleKey(ev *tcell.EventKey) {
	a.status = ""
	quitPending := a.confirmQuit
	a.confirmQuit = false

	if action, ok := a.keys.Lookup(ev); ok {
		a.dispatch(action, quitPending)
		return
	}
	if a.showTree {
		a.treeKey(ev)
		return
	}
	a.editKey(ev)
}

func (a *App) dispatch(action Action, quitPending bool) {
	switch action {
	case ActionUndo:
		a.undo()
	case ActionRedo:
		a.redo()
	case ActionSave:
		a.save()
	case ActionTree:
		a.showTree = !a.showTree
		if a.showTree {
			a.treeSel = activeRow(treeRows(a.hist))
		}
	case ActionQuit:
		if a.journalPath != "" && !a.readOnly && !a.hist.IsSaved() && !quitPending {
			a.confirmQuit = true
			a.status = "unsaved changes; press again to quit"
			return
		}
		a.quitting = true
	}
}

// editKey handles editor-focused input: typing becomes Insert commands,
// Backspace and Delete become Delete commands, and the motion keys move
// the cursor without touching the history.
func (a *App) editKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyRune:
		a.push(&textedit.Insert{At: a.doc.Cursor(), Text: string(ev.Rune())})
	case tcell.KeyEnter:
		a.push(&textedit.Insert{At: a.doc.Cursor(), Text: "\n"})
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if c := a.doc.Cursor(); c > 0 {
			a.push(&textedit.Delete{At: c - 1, Count: 1})
		}
	case tcell.KeyDelete:
		if c := a.doc.Cursor(); c < a.doc.Len() {
			a.push(&textedit.Delete{At: c, Count: 1})
		}
	case tcell.KeyLeft:
		a.doc.SetCursor(a.doc.Cursor() - 1)
	case tcell.KeyRight:
		a.doc.SetCursor(a.doc.Cursor() + 1)
	case tcell.KeyHome:
		a.doc.SetCursor(0)
	case tcell.KeyEnd:
		a.doc.SetCursor(a.doc.Len())
	}
}

// treeKey handles history-pane input: arrows move the selection, enter
// jumps to the selected position, p prunes the selected branch.
func (a *App) treeKey(ev *tcell.EventKey) {
	rows := treeRows(a.hist)
	if len(rows) == 0 {
		return
	}
	if a.treeSel >= len(rows) {
		a.treeSel = len(rows) - 1
	}
	if a.treeSel < 0 {
		a.treeSel = 0
	}

	switch ev.Key() {
	case tcell.KeyUp:
		if a.treeSel > 0 {
			a.treeSel--
		}
	case tcell.KeyDown:
		if a.treeSel < len(rows)-1 {
			a.treeSel++
		}
	case tcell.KeyEnter:
		a.jumpTo(rows[a.treeSel])
	case tcell.KeyEscape:
		a.showTree = false
	case tcell.KeyRune:
		if ev.Rune() == 'p' {
			a.pruneSelected(rows[a.treeSel])
		}
	}
}

func (a *App) push(cmd rewind.Command[*textedit.Document]) {
	if a.readOnly {
		a.status = "read-only"
		return
	}
	if err := a.hist.Push(cmd); err != nil {
		a.status = err.Error()
		a.log.WithComponent("history").Error("push %v: %v", cmd, err)
		return
	}
	a.enforceLimit()
	a.syncTree()
}

func (a *App) undo() {
	if err := a.hist.Undo(); err != nil {
		if errors.Is(err, rewind.ErrNothingToUndo) {
			a.status = "nothing to undo"
			return
		}
		a.status = err.Error()
		a.log.WithComponent("history").Error("undo: %v", err)
		return
	}
	a.syncTree()
}

func (a *App) redo() {
	if err := a.hist.Redo(); err != nil {
		if errors.Is(err, rewind.ErrNothingToRedo) {
			a.status = "nothing to redo"
			return
		}
		a.status = err.Error()
		a.log.WithComponent("history").Error("redo: %v", err)
		return
	}
	a.syncTree()
}

// save marks the current position and writes the journal. A failed
// write clears the mark again so the app never claims a state the file
// does not hold.
func (a *App) save() {
	if a.readOnly {
		a.status = "read-only"
		return
	}
	if a.journalPath == "" {
		a.status = "no journal configured"
		return
	}
	a.hist.SetSaved()
	if err := journal.SaveHistory(a.journalPath, a.hist.Snapshot(), a.codec); err != nil {
		a.hist.ClearSaved()
		a.status = "save failed: " + err.Error()
		a.log.WithComponent("journal").Error("save %s: %v", a.journalPath, err)
		return
	}
	a.status = "saved " + filepath.Base(a.journalPath)
	a.log.WithComponent("journal").Info("saved %s", a.journalPath)
}

func (a *App) jumpTo(row treeRow) {
	id, idx := row.branch, row.index
	if row.header {
		// Jumping to a header means the branch tip.
		for _, br := range a.hist.Branches() {
			if br.ID == id {
				idx = br.Divergence + len(br.Entries)
				break
			}
		}
	}
	if err := a.hist.JumpTo(id, idx); err != nil {
		a.status = err.Error()
		a.log.WithComponent("history").Error("jump to %d/%d: %v", id, idx, err)
		return
	}
	a.syncTree()
}

func (a *App) pruneSelected(row treeRow) {
	if err := a.hist.Prune(row.branch); err != nil {
		if errors.Is(err, rewind.ErrCannotPrune) {
			a.status = "cannot prune the active path"
			return
		}
		a.status = err.Error()
		return
	}
	a.status = fmt.Sprintf("pruned branch %d", row.branch)
	a.log.WithComponent("history").Info("pruned branch %d", row.branch)
	a.syncTree()
}

// enforceLimit keeps the history tree within the configured entry
// budget by pruning suspended branches, lowest id first. The active
// path is never prunable, so a long current branch can exceed the
// limit on its own; that excess stays.
func (a *App) enforceLimit() {
	limit := a.cfg.Editor.Limit
	if limit <= 0 {
		return
	}
	for total := a.treeSize(); total > limit; total = a.treeSize() {
		pruned := false
		for _, br := range a.hist.Branches() {
			if br.ID == a.hist.Current() {
				continue
			}
			if err := a.hist.Prune(br.ID); err == nil {
				a.log.WithComponent("history").Info("pruned branch %d to keep %d entries", br.ID, limit)
				pruned = true
				break
			}
		}
		if !pruned {
			return
		}
	}
}

// treeSize is the total entry count across all branches.
func (a *App) treeSize() int {
	n := 0
	for _, br := range a.hist.Branches() {
		n += len(br.Entries)
	}
	return n
}

// syncTree keeps the pane selection on the current position after the
// history moves.
func (a *App) syncTree() {
	if a.showTree {
		a.treeSel = activeRow(treeRows(a.hist))
	}
}
