// Package keybind defines the key-event-to-action vocabulary shared by the
// input router and the config/merge model.
//
// The teacher let Lua scripts register arbitrary callback functions against
// key chords. The spec closes that set: a bind resolves to either one of a
// fixed list of internal actions or a verbatim macro string, never to
// arbitrary code.
package keybind

import (
	"fmt"
	"strings"
)

// Mod is a bitmask of modifier keys held alongside a key code.
type Mod uint8

const (
	ModNone  Mod = 0
	ModShift Mod = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Key identifies a single key event: a textual key code (e.g. "a", "f1",
// "up", "enter", "tab") plus a modifier mask.
type Key struct {
	Code string
	Mods Mod
}

// String renders the key in "ctrl+alt+a" form, canonical for table lookups.
func (k Key) String() string {
	var b strings.Builder
	if k.Mods&ModCtrl != 0 {
		b.WriteString("ctrl+")
	}
	if k.Mods&ModAlt != 0 {
		b.WriteString("alt+")
	}
	if k.Mods&ModMeta != 0 {
		b.WriteString("meta+")
	}
	if k.Mods&ModShift != 0 {
		b.WriteString("shift+")
	}
	b.WriteString(k.Code)
	return b.String()
}

// ParseKey parses the canonical "ctrl+alt+a" form back into a Key.
func ParseKey(s string) Key {
	parts := strings.Split(s, "+")
	k := Key{Code: parts[len(parts)-1]}
	for _, m := range parts[:len(parts)-1] {
		switch strings.ToLower(m) {
		case "ctrl":
			k.Mods |= ModCtrl
		case "alt":
			k.Mods |= ModAlt
		case "meta":
			k.Mods |= ModMeta
		case "shift":
			k.Mods |= ModShift
		}
	}
	return k
}

// Action is a closed vocabulary of internal actions a key can trigger.
type Action string

const (
	ActionCopy                     Action = "Copy"
	ActionPaste                    Action = "Paste"
	ActionSendCommand              Action = "SendCommand"
	ActionScrollCurrentWindowUpOne Action = "ScrollCurrentWindowUpOne"
	ActionScrollCurrentWindowDnOne Action = "ScrollCurrentWindowDownOne"
	ActionScrollCurrentWindowUpPage Action = "ScrollCurrentWindowUpPage"
	ActionScrollCurrentWindowDnPage Action = "ScrollCurrentWindowDownPage"
	ActionScrollToBottom           Action = "ScrollToBottom"
	ActionSwitchCurrentWindow      Action = "SwitchCurrentWindow"
	ActionNextTab                  Action = "NextTab"
	ActionPrevTab                  Action = "PrevTab"
	ActionNextUnread               Action = "NextUnread"
	ActionHistoryPrev              Action = "HistoryPrev"
	ActionHistoryNext              Action = "HistoryNext"
	ActionTtsNext                  Action = "TtsNext"
	ActionTtsStop                  Action = "TtsStop"
	ActionOpenMenu                 Action = "OpenMenu"
	ActionQuit                     Action = "Quit"
)

// Bind is a single key→action mapping. Exactly one of Action or Macro is set.
type Bind struct {
	Key    Key
	Action Action  // closed internal action, or ""
	Macro  string  // verbatim command text to send, or ""
}

// IsMacro reports whether this bind sends literal text rather than invoking
// an internal action.
func (b Bind) IsMacro() bool { return b.Action == "" && b.Macro != "" }

// Table is an ordered-by-insertion set of binds, looked up by key.
// Later binds for the same key replace earlier ones (last-wins), matching
// how a character overlay is expected to override the common file.
type Table struct {
	byKey map[Key]Bind
	order []Key
}

// NewTable returns an empty bind table.
func NewTable() *Table {
	return &Table{byKey: make(map[Key]Bind)}
}

// Set installs or replaces the bind for a key.
func (t *Table) Set(b Bind) {
	if _, exists := t.byKey[b.Key]; !exists {
		t.order = append(t.order, b.Key)
	}
	t.byKey[b.Key] = b
}

// Lookup returns the bind for a key, if any.
func (t *Table) Lookup(k Key) (Bind, bool) {
	b, ok := t.byKey[k]
	return b, ok
}

// All returns binds in insertion order.
func (t *Table) All() []Bind {
	out := make([]Bind, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, t.byKey[k])
	}
	return out
}

// Len reports the number of distinct bound keys.
func (t *Table) Len() int { return len(t.byKey) }

// Default returns the built-in keybind table used when no config overrides
// a given key. Modeled after the teacher's default Emacs-ish scrollback
// binds, generalized to the closed action set above.
func Default() *Table {
	t := NewTable()
	defaults := []Bind{
		{Key: Key{Code: "pgup"}, Action: ActionScrollCurrentWindowUpPage},
		{Key: Key{Code: "pgdown"}, Action: ActionScrollCurrentWindowDnPage},
		{Key: Key{Code: "up", Mods: ModCtrl}, Action: ActionScrollCurrentWindowUpOne},
		{Key: Key{Code: "down", Mods: ModCtrl}, Action: ActionScrollCurrentWindowDnOne},
		{Key: Key{Code: "end", Mods: ModCtrl}, Action: ActionScrollToBottom},
		{Key: Key{Code: "tab", Mods: ModCtrl}, Action: ActionNextTab},
		{Key: Key{Code: "tab", Mods: ModCtrl | ModShift}, Action: ActionPrevTab},
		{Key: Key{Code: "u", Mods: ModCtrl}, Action: ActionNextUnread},
		{Key: Key{Code: "up"}, Action: ActionHistoryPrev},
		{Key: Key{Code: "down"}, Action: ActionHistoryNext},
		{Key: Key{Code: "c", Mods: ModCtrl | ModShift}, Action: ActionCopy},
		{Key: Key{Code: "v", Mods: ModCtrl | ModShift}, Action: ActionPaste},
		{Key: Key{Code: "tab", Mods: ModAlt}, Action: ActionSwitchCurrentWindow},
		{Key: Key{Code: "m", Mods: ModCtrl}, Action: ActionOpenMenu},
	}
	for _, b := range defaults {
		t.Set(b)
	}
	return t
}

// ValidateAction reports an error for an action name outside the closed set,
// used when decoding a bind table from config.
func ValidateAction(a Action) error {
	switch a {
	case ActionCopy, ActionPaste, ActionSendCommand, ActionScrollCurrentWindowUpOne,
		ActionScrollCurrentWindowDnOne, ActionScrollCurrentWindowUpPage, ActionScrollCurrentWindowDnPage,
		ActionScrollToBottom, ActionSwitchCurrentWindow, ActionNextTab, ActionPrevTab, ActionNextUnread,
		ActionHistoryPrev, ActionHistoryNext, ActionTtsNext, ActionTtsStop, ActionOpenMenu, ActionQuit:
		return nil
	default:
		return fmt.Errorf("keybind: unknown action %q", a)
	}
}
