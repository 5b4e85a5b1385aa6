package script

import (
	"errors"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/rewind"
)

// Module exposes an Engine to Lua as the global doc table.
type Module struct {
	eng *Engine
}

// NewModule creates a module over eng.
func NewModule(eng *Engine) *Module {
	return &Module{eng: eng}
}

// Register installs the doc table into L.
func (m *Module) Register(L *lua.LState) error {
	mod := L.NewTable()

	L.SetField(mod, "text", L.NewFunction(m.text))
	L.SetField(mod, "len", L.NewFunction(m.docLen))
	L.SetField(mod, "cursor", L.NewFunction(m.cursor))
	L.SetField(mod, "insert", L.NewFunction(m.insert))
	L.SetField(mod, "delete", L.NewFunction(m.delete))
	L.SetField(mod, "replace", L.NewFunction(m.replace))
	L.SetField(mod, "undo", L.NewFunction(m.undo))
	L.SetField(mod, "redo", L.NewFunction(m.redo))
	L.SetField(mod, "go_to", L.NewFunction(m.goTo))
	L.SetField(mod, "jump", L.NewFunction(m.jump))
	L.SetField(mod, "save", L.NewFunction(m.save))
	L.SetField(mod, "is_saved", L.NewFunction(m.isSaved))
	L.SetField(mod, "branches", L.NewFunction(m.branches))
	L.SetField(mod, "entries", L.NewFunction(m.entries))
	L.SetField(mod, "checkpoint", L.NewFunction(m.checkpoint))
	L.SetField(mod, "commit", L.NewFunction(m.commit))
	L.SetField(mod, "cancel", L.NewFunction(m.cancel))

	L.SetGlobal("doc", mod)
	return nil
}

// text() -> string
func (m *Module) text(L *lua.LState) int {
	L.Push(lua.LString(m.eng.Document().Text()))
	return 1
}

// len() -> number
// Document length in runes.
func (m *Module) docLen(L *lua.LState) int {
	L.Push(lua.LNumber(m.eng.Document().Len()))
	return 1
}

// cursor() -> number
// Document cursor as a rune offset.
func (m *Module) cursor(L *lua.LState) int {
	L.Push(lua.LNumber(m.eng.Document().Cursor()))
	return 1
}

// insert(at, text)
func (m *Module) insert(L *lua.LState) int {
	at := L.CheckInt(1)
	text := L.CheckString(2)
	if err := m.eng.Insert(at, text); err != nil {
		L.RaiseError("insert: %v", err)
	}
	return 0
}

// delete(at, count)
func (m *Module) delete(L *lua.LState) int {
	at := L.CheckInt(1)
	count := L.CheckInt(2)
	if err := m.eng.Delete(at, count); err != nil {
		L.RaiseError("delete: %v", err)
	}
	return 0
}

// replace(at, count, text)
func (m *Module) replace(L *lua.LState) int {
	at := L.CheckInt(1)
	count := L.CheckInt(2)
	text := L.CheckString(3)
	if err := m.eng.Replace(at, count, text); err != nil {
		L.RaiseError("replace: %v", err)
	}
	return 0
}

// undo() -> bool
// False when there is nothing to undo; a failing command raises.
func (m *Module) undo(L *lua.LState) int {
	err := m.eng.Undo()
	switch {
	case errors.Is(err, rewind.ErrNothingToUndo):
		L.Push(lua.LFalse)
	case err != nil:
		L.RaiseError("undo: %v", err)
	default:
		L.Push(lua.LTrue)
	}
	return 1
}

// redo() -> bool
func (m *Module) redo(L *lua.LState) int {
	err := m.eng.Redo()
	switch {
	case errors.Is(err, rewind.ErrNothingToRedo):
		L.Push(lua.LFalse)
	case err != nil:
		L.RaiseError("redo: %v", err)
	default:
		L.Push(lua.LTrue)
	}
	return 1
}

// go_to(index)
func (m *Module) goTo(L *lua.LState) int {
	index := L.CheckInt(1)
	if err := m.eng.GoTo(index); err != nil {
		L.RaiseError("go_to: %v", err)
	}
	return 0
}

// jump(branch, index)
func (m *Module) jump(L *lua.LState) int {
	branch := L.CheckInt(1)
	index := L.CheckInt(2)
	if err := m.eng.JumpTo(branch, index); err != nil {
		L.RaiseError("jump: %v", err)
	}
	return 0
}

// save()
func (m *Module) save(L *lua.LState) int {
	m.eng.Save()
	return 0
}

// is_saved() -> bool
func (m *Module) isSaved(L *lua.LState) int {
	L.Push(lua.LBool(m.eng.IsSaved()))
	return 1
}

// branches() -> { {id, parent, divergence, current, entries={...}}, ... }
func (m *Module) branches(L *lua.LState) int {
	hist := m.eng.History()
	current := hist.Current()
	list := L.NewTable()
	for i, info := range hist.Branches() {
		br := L.NewTable()
		L.SetField(br, "id", lua.LNumber(info.ID))
		L.SetField(br, "parent", lua.LNumber(info.Parent))
		L.SetField(br, "divergence", lua.LNumber(info.Divergence))
		L.SetField(br, "current", lua.LBool(info.ID == current))
		entries := L.NewTable()
		for j, e := range info.Entries {
			entries.RawSetInt(j+1, lua.LString(e.Description))
		}
		L.SetField(br, "entries", entries)
		list.RawSetInt(i+1, br)
	}
	L.Push(list)
	return 1
}

// entries() -> { description, ... }
// Descriptions along the current branch, oldest first.
func (m *Module) entries(L *lua.LState) int {
	list := L.NewTable()
	for i, e := range m.eng.History().Entries() {
		list.RawSetInt(i+1, lua.LString(e.Description))
	}
	L.Push(list)
	return 1
}

// checkpoint()
func (m *Module) checkpoint(L *lua.LState) int {
	if err := m.eng.Checkpoint(); err != nil {
		L.RaiseError("checkpoint: %v", err)
	}
	return 0
}

// commit()
func (m *Module) commit(L *lua.LState) int {
	if err := m.eng.Commit(); err != nil {
		L.RaiseError("commit: %v", err)
	}
	return 0
}

// cancel()
func (m *Module) cancel(L *lua.LState) int {
	if err := m.eng.Cancel(); err != nil {
		L.RaiseError("cancel: %v", err)
	}
	return 0
}
