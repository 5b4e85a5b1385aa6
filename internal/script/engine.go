package script

import (
	"errors"

	"github.com/dshills/rewind"
	"github.com/dshills/rewind/textedit"
)

// Errors returned by checkpoint management.
var (
	ErrCheckpointOpen = errors.New("a checkpoint is already open")
	ErrNoCheckpoint   = errors.New("no checkpoint is open")
)

// Engine drives one text document through a branching history on
// behalf of a script. At most one checkpoint is open at a time; while
// it is, every mutation routes through it so cancel can unwind the
// whole run.
type Engine struct {
	doc  *textedit.Document
	hist *rewind.History[*textedit.Document]
	cp   *rewind.HistoryCheckpoint[*textedit.Document]
}

// NewEngine creates an engine around a document holding text.
func NewEngine(text string) *Engine {
	doc := textedit.NewDocument(text)
	return &Engine{doc: doc, hist: rewind.NewHistory(doc)}
}

// Document returns the driven document.
func (e *Engine) Document() *textedit.Document {
	return e.doc
}

// History returns the engine's history for read-only collaborators.
func (e *Engine) History() *rewind.History[*textedit.Document] {
	return e.hist
}

// Insert pushes an insertion of text at the rune offset at.
func (e *Engine) Insert(at int, text string) error {
	return e.push(&textedit.Insert{At: at, Text: text})
}

// Delete pushes a deletion of count runes starting at at.
func (e *Engine) Delete(at, count int) error {
	return e.push(&textedit.Delete{At: at, Count: count})
}

// Replace pushes a replacement of count runes at at with text.
func (e *Engine) Replace(at, count int, text string) error {
	return e.push(&textedit.Replace{At: at, Count: count, Text: text})
}

func (e *Engine) push(cmd rewind.Command[*textedit.Document]) error {
	if e.cp != nil {
		return e.cp.Push(cmd)
	}
	return e.hist.Push(cmd)
}

// Undo reverses the most recent command.
func (e *Engine) Undo() error {
	if e.cp != nil {
		return e.cp.Undo()
	}
	return e.hist.Undo()
}

// Redo re-applies the next undone command.
func (e *Engine) Redo() error {
	if e.cp != nil {
		return e.cp.Redo()
	}
	return e.hist.Redo()
}

// GoTo moves to index on the current branch.
func (e *Engine) GoTo(index int) error {
	if e.cp != nil {
		return e.cp.GoTo(index)
	}
	return e.hist.GoTo(index)
}

// JumpTo moves to index on the named branch.
func (e *Engine) JumpTo(branch, index int) error {
	if e.cp != nil {
		return e.cp.JumpTo(branch, index)
	}
	return e.hist.JumpTo(branch, index)
}

// Save marks the current position as saved. The marker is orthogonal
// to any open checkpoint; cancel does not move it back.
func (e *Engine) Save() {
	e.hist.SetSaved()
}

// IsSaved reports whether the history sits at the saved position.
func (e *Engine) IsSaved() bool {
	return e.hist.IsSaved()
}

// Checkpoint opens a checkpoint. Only one may be open at a time.
func (e *Engine) Checkpoint() error {
	if e.cp != nil {
		return ErrCheckpointOpen
	}
	e.cp = rewind.NewHistoryCheckpoint(e.hist)
	return nil
}

// Commit keeps the open checkpoint's operations and closes it.
func (e *Engine) Commit() error {
	if e.cp == nil {
		return ErrNoCheckpoint
	}
	e.cp.Commit()
	e.cp = nil
	return nil
}

// Cancel unwinds the open checkpoint's operations and closes it.
func (e *Engine) Cancel() error {
	if e.cp == nil {
		return ErrNoCheckpoint
	}
	err := e.cp.Cancel()
	e.cp = nil
	return err
}
