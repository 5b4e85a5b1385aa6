package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// Runner owns a Lua state bound to one engine. Only the safe standard
// libraries are opened; scripts get no filesystem or process access
// beyond the doc table.
type Runner struct {
	L   *lua.LState
	eng *Engine
}

// NewRunner creates a Lua state with the safe base libraries and the
// doc module bound to eng.
func NewRunner(eng *Engine) (*Runner, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	if err := NewModule(eng).Register(L); err != nil {
		L.Close()
		return nil, err
	}
	return &Runner{L: L, eng: eng}, nil
}

// Engine returns the engine the runner drives.
func (r *Runner) Engine() *Engine {
	return r.eng
}

// RunFile executes the Lua file at path.
func (r *Runner) RunFile(path string) error {
	return r.run(func() error { return r.L.DoFile(path) })
}

// RunString executes code.
func (r *Runner) RunString(code string) error {
	return r.run(func() error { return r.L.DoString(code) })
}

func (r *Runner) run(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("lua panic: %v", rec)
		}
	}()
	return fn()
}

// Close releases the Lua state.
func (r *Runner) Close() {
	r.L.Close()
}
