package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Action names an editor operation a key can be bound to.
type Action string

// Bindable actions. The [keys] config table maps these names to key
// specs, replacing the default binding.
const (
	ActionUndo Action = "undo"
	ActionRedo Action = "redo"
	ActionSave Action = "save"
	ActionQuit Action = "quit"
	ActionTree Action = "tree"
)

// Keymap errors.
var (
	ErrUnknownAction = errors.New("unknown action")
	ErrInvalidKey    = errors.New("invalid key specification")
)

// chord is a normalized key press. Control combinations arrive from the
// terminal as dedicated key codes, so a modifier mask is not needed;
// plain runes carry the rune with key code KeyRune.
type chord struct {
	key tcell.Key
	ch  rune
}

// Keymap maps key presses to actions.
type Keymap struct {
	bindings map[chord]Action
}

// DefaultKeymap returns the built-in bindings: ctrl+z undo, ctrl+y
// redo, ctrl+s save, ctrl+q quit, ctrl+t history pane.
func DefaultKeymap() *Keymap {
	k := &Keymap{bindings: make(map[chord]Action)}
	k.bindings[chord{key: tcell.KeyCtrlZ}] = ActionUndo
	k.bindings[chord{key: tcell.KeyCtrlY}] = ActionRedo
	k.bindings[chord{key: tcell.KeyCtrlS}] = ActionSave
	k.bindings[chord{key: tcell.KeyCtrlQ}] = ActionQuit
	k.bindings[chord{key: tcell.KeyCtrlT}] = ActionTree
	return k
}

// NewKeymap returns the default keymap with the given overrides
// applied. Override keys are action names, values are key specs like
// "ctrl+z", "f5", "esc" or a single character.
func NewKeymap(overrides map[string]string) (*Keymap, error) {
	k := DefaultKeymap()
	for action, spec := range overrides {
		if err := k.Bind(Action(action), spec); err != nil {
			return nil, err
		}
	}
	return k, nil
}

// Bind replaces the binding for action with the key described by spec.
// The action's previous key is released; if spec's key was bound to a
// different action, that action loses its binding.
func (k *Keymap) Bind(action Action, spec string) error {
	switch action {
	case ActionUndo, ActionRedo, ActionSave, ActionQuit, ActionTree:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	c, err := parseChord(spec)
	if err != nil {
		return err
	}
	for old, a := range k.bindings {
		if a == action {
			delete(k.bindings, old)
		}
	}
	k.bindings[c] = action
	return nil
}

// Lookup resolves a key event to its bound action.
func (k *Keymap) Lookup(ev *tcell.EventKey) (Action, bool) {
	c := chord{key: ev.Key()}
	if c.key == tcell.KeyBackspace2 {
		c.key = tcell.KeyBackspace
	}
	if c.key == tcell.KeyRune {
		c.ch = ev.Rune()
	}
	a, ok := k.bindings[c]
	return a, ok
}

// specialKeys maps key spec names to tcell key codes.
var specialKeys = map[string]tcell.Key{
	"enter":     tcell.KeyEnter,
	"tab":       tcell.KeyTab,
	"esc":       tcell.KeyEscape,
	"escape":    tcell.KeyEscape,
	"backspace": tcell.KeyBackspace,
	"delete":    tcell.KeyDelete,
	"del":       tcell.KeyDelete,
	"insert":    tcell.KeyInsert,
	"up":        tcell.KeyUp,
	"down":      tcell.KeyDown,
	"left":      tcell.KeyLeft,
	"right":     tcell.KeyRight,
	"home":      tcell.KeyHome,
	"end":       tcell.KeyEnd,
	"pgup":      tcell.KeyPgUp,
	"pgdn":      tcell.KeyPgDn,
	"f1":        tcell.KeyF1,
	"f2":        tcell.KeyF2,
	"f3":        tcell.KeyF3,
	"f4":        tcell.KeyF4,
	"f5":        tcell.KeyF5,
	"f6":        tcell.KeyF6,
	"f7":        tcell.KeyF7,
	"f8":        tcell.KeyF8,
	"f9":        tcell.KeyF9,
	"f10":       tcell.KeyF10,
	"f11":       tcell.KeyF11,
	"f12":       tcell.KeyF12,
}

// parseChord parses a key spec into its normalized form. Supported:
// "ctrl+<letter>", special key names, "space", and single characters.
// Note that ctrl+i, ctrl+m and ctrl+h are the terminal's tab, enter and
// backspace; binding them captures those keys.
func parseChord(spec string) (chord, error) {
	s := strings.ToLower(strings.TrimSpace(spec))
	if s == "" {
		return chord{}, fmt.Errorf("%w: empty", ErrInvalidKey)
	}

	if rest, ok := strings.CutPrefix(s, "ctrl+"); ok {
		r := []rune(rest)
		if len(r) != 1 || r[0] < 'a' || r[0] > 'z' {
			return chord{}, fmt.Errorf("%w: %q", ErrInvalidKey, spec)
		}
		return chord{key: tcell.Key(r[0] - 'a' + 1)}, nil
	}
	if strings.Contains(s, "+") {
		return chord{}, fmt.Errorf("%w: %q (only the ctrl modifier is supported)", ErrInvalidKey, spec)
	}

	if key, ok := specialKeys[s]; ok {
		return chord{key: key}, nil
	}
	if s == "space" {
		return chord{key: tcell.KeyRune, ch: ' '}, nil
	}

	r := []rune(strings.TrimSpace(spec))
	if len(r) == 1 {
		return chord{key: tcell.KeyRune, ch: r[0]}, nil
	}
	return chord{}, fmt.Errorf("%w: %q", ErrInvalidKey, spec)
}
