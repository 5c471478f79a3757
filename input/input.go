// Package input is the three-layer keyboard/mouse router (spec §4.G):
// overlay first, then the popup-menu stack, then the keybind table,
// falling through to the focused command-input widget.
//
// Grounded on the teacher's handleKey/handleNormalKey layering (now
// deleted ui/tui/model.go), rewritten to drive uicore/keybind rather than
// bubbletea messages directly.
package input

import (
	"strings"

	"github.com/drake/vellum/keybind"
	"github.com/drake/vellum/protocol"
	"github.com/drake/vellum/uicore"
)

// Outcome is what handling one key event produced, for the caller
// (session orchestrator) to act on.
type Outcome struct {
	// Command, if non-empty, should be sent to the server verbatim
	// (newline-terminated by the caller).
	Command string
	// DotCommand, if non-empty, is a local "." command for the session
	// layer to interpret rather than send to the server.
	DotCommand string
	// Action, if non-empty, is an internal keybind.Action to execute.
	Action keybind.Action
	// Quit requests application shutdown.
	Quit bool
}

// Router holds the dependencies needed to resolve a key event: the
// keybind table and the UI state it mutates/reads.
type Router struct {
	Binds *keybind.Table
	UI    *uicore.UIState
}

// NewRouter returns a Router over the given bind table and UI state.
func NewRouter(binds *keybind.Table, ui *uicore.UIState) *Router {
	return &Router{Binds: binds, UI: ui}
}

// HandleKey runs one key event through the three layers in order,
// stopping at the first layer that consumes it.
func (r *Router) HandleKey(k keybind.Key) Outcome {
	if r.UI.InputMode.Overlay != nil {
		return r.handleOverlay(k)
	}
	if r.UI.InputMode.Kind == uicore.ModeMenu {
		return r.handleMenu(k)
	}
	return r.handleNormal(k)
}

func (r *Router) handleOverlay(k keybind.Key) Outcome {
	action := overlayAction(k)
	result := r.UI.InputMode.Overlay.HandleAction(action)
	switch result {
	case uicore.OverlayConsumedClose:
		mode := r.UI.InputMode
		mode.Overlay = nil
		mode.Kind = uicore.ModeNormal
		r.UI.SetInputMode(mode)
	case uicore.OverlayUnconsumed:
		// Rare: fall through to normal-layer handling for this key.
		return r.handleNormal(k)
	}
	return Outcome{}
}

// overlayAction maps a raw key to the MenuAction vocabulary overlays
// speak, per spec §4.G ("Overlays include save/cancel/delete action kinds
// routed through a unified MenuAction vocabulary").
func overlayAction(k keybind.Key) uicore.MenuAction {
	switch k.Code {
	case "up":
		return uicore.MenuAction{Kind: uicore.MenuActionNavigateUp}
	case "down":
		return uicore.MenuAction{Kind: uicore.MenuActionNavigateDown}
	case "enter":
		return uicore.MenuAction{Kind: uicore.MenuActionSelect}
	case "esc":
		return uicore.MenuAction{Kind: uicore.MenuActionCancel}
	case "f2":
		return uicore.MenuAction{Kind: uicore.MenuActionSave}
	case "delete":
		return uicore.MenuAction{Kind: uicore.MenuActionDelete}
	default:
		return uicore.MenuAction{Kind: uicore.MenuActionTextInput, Arg: k.Code}
	}
}

func (r *Router) handleMenu(k keybind.Key) Outcome {
	popup := r.UI.Popups.Top()
	if popup == nil {
		r.UI.CloseAllMenus()
		return Outcome{}
	}
	switch k.Code {
	case "up":
		if popup.Selected > 0 {
			popup.Selected--
		}
	case "down", "tab":
		if popup.Selected < len(popup.Items)-1 {
			popup.Selected++
		}
	case "esc":
		r.UI.PopPopup()
	case "enter":
		return r.selectPopupItem(popup)
	}
	return Outcome{}
}

func (r *Router) selectPopupItem(popup *uicore.PopupMenu) Outcome {
	if popup.Selected < 0 || popup.Selected >= len(popup.Items) {
		return Outcome{}
	}
	item := popup.Items[popup.Selected]
	if item.IsSubmenu() {
		r.UI.PushPopup(&uicore.PopupMenu{Items: item.Submenu})
		return Outcome{}
	}
	r.UI.CloseAllMenus()
	switch {
	case item.Action != "":
		return Outcome{Action: keybind.Action(strings.TrimPrefix(item.Action, "action:"))}
	case item.DotCmd != "":
		return Outcome{DotCommand: item.DotCmd}
	default:
		return Outcome{Command: item.GameCmd}
	}
}

func (r *Router) handleNormal(k keybind.Key) Outcome {
	if bind, ok := r.Binds.Lookup(k); ok {
		if bind.IsMacro() {
			return Outcome{Command: bind.Macro}
		}
		if bind.Action == keybind.ActionQuit {
			return Outcome{Quit: true}
		}
		return Outcome{Action: bind.Action}
	}
	return r.editCommandInput(k)
}

// editCommandInput applies ordinary character/navigation input to the
// focused command-input widget, or to the first command-input window when
// the focused window is not one. With no command-input window the key is
// ignored silently.
func (r *Router) editCommandInput(k keybind.Key) Outcome {
	w := r.commandInputWindow()
	if w == nil {
		return Outcome{}
	}
	data := w.Data.(*uicore.CommandInputData)
	switch k.Code {
	case "enter":
		cmd := data.Buffer
		if cmd != "" {
			data.History = append(data.History, cmd)
		}
		data.Buffer = ""
		data.Cursor = 0
		data.HistIdx = -1
		return Outcome{Command: cmd}
	case "backspace":
		if data.Cursor > 0 {
			data.Buffer = data.Buffer[:data.Cursor-1] + data.Buffer[data.Cursor:]
			data.Cursor--
		}
	case "delete":
		if data.Cursor < len(data.Buffer) {
			data.Buffer = data.Buffer[:data.Cursor] + data.Buffer[data.Cursor+1:]
		}
	case "left":
		if data.Cursor > 0 {
			data.Cursor--
		}
	case "right":
		if data.Cursor < len(data.Buffer) {
			data.Cursor++
		}
	case "home":
		data.Cursor = 0
	case "end":
		data.Cursor = len(data.Buffer)
	case "ctrl+left":
		data.Cursor = wordStart(data.Buffer, data.Cursor)
	case "ctrl+right":
		data.Cursor = wordEnd(data.Buffer, data.Cursor)
	default:
		if len(k.Code) == 1 {
			data.Buffer = data.Buffer[:data.Cursor] + k.Code + data.Buffer[data.Cursor:]
			data.Cursor++
		}
	}
	return Outcome{}
}

// wordStart scans back from cursor to the start of the word at or before
// it, skipping a run of spaces first. Grounded on the teacher's
// FindWordBoundaries (ui/tui/util/text.go), split per-direction for the
// ctrl+left/ctrl+right command-input bindings.
func wordStart(text string, cursor int) int {
	if cursor > len(text) {
		cursor = len(text)
	}
	i := cursor
	for i > 0 && text[i-1] == ' ' {
		i--
	}
	for i > 0 && text[i-1] != ' ' {
		i--
	}
	return i
}

// wordEnd scans forward from cursor to the end of the next word.
func wordEnd(text string, cursor int) int {
	if cursor < 0 {
		cursor = 0
	}
	i := cursor
	for i < len(text) && text[i] == ' ' {
		i++
	}
	for i < len(text) && text[i] != ' ' {
		i++
	}
	return i
}

func (r *Router) commandInputWindow() *uicore.Window {
	if r.UI.FocusedWindow != "" {
		if w := r.UI.Window(r.UI.FocusedWindow); w != nil {
			if _, ok := w.Data.(*uicore.CommandInputData); ok {
				return w
			}
		}
	}
	return r.UI.GetWindowByType(uicore.WidgetCommandInput, "")
}

// MouseZone is the structural region of a window a mouse event landed in
// (spec §4.G: "title bar... edges... tab strip... content area").
type MouseZone int

const (
	ZoneNone MouseZone = iota
	ZoneTitleBar
	ZoneResizeEdge
	ZoneTabStrip
	ZoneContent
)

// ClassifyZone determines which zone of a window (row, col) falls in.
func ClassifyZone(w *uicore.Window, row, col int) MouseZone {
	r := w.Rect
	if row < r.Row || row >= r.Row+r.Rows || col < r.Col || col >= r.Col+r.Cols {
		return ZoneNone
	}
	if row == r.Row && w.Title != "" {
		return ZoneTitleBar
	}
	if row == r.Row+r.Rows-1 || col == r.Col+r.Cols-1 {
		return ZoneResizeEdge
	}
	if w.Kind == uicore.WidgetTabbedText && row == r.Row+1 {
		return ZoneTabStrip
	}
	return ZoneContent
}

// HandleMouseDown resolves the topmost window under a click and classifies
// which zone it landed in, beginning a drag for title-bar/edge zones.
func (r *Router) HandleMouseDown(row, col int, ctrl bool) (windowName string, zone MouseZone) {
	name := r.UI.TopmostAt(row, col)
	if name == "" {
		return "", ZoneNone
	}
	w := r.UI.Window(name)
	zone = ClassifyZone(w, row, col)
	switch zone {
	case ZoneTitleBar:
		if !w.Locked {
			r.UI.Drag = uicore.DragState{Kind: uicore.DragMove, Window: name, StartRow: row, StartCol: col}
		}
	case ZoneResizeEdge:
		if !w.Locked {
			r.UI.Drag = uicore.DragState{Kind: uicore.DragResize, Window: name, StartRow: row, StartCol: col}
		}
	}
	return name, zone
}

// ResolveLinkClick applies the link-interaction rules on a left-release
// near its click origin (spec §4.G). cmdLookup resolves a coord to a
// command template containing %n/%e placeholders.
func ResolveLinkClick(link *protocol.LinkAnnotation, cmdLookup func(coord string) (string, bool)) (command string, needsMenu bool) {
	if link == nil {
		return "", false
	}
	if link.Coord != "" {
		if tmpl, ok := cmdLookup(link.Coord); ok {
			cmd := strings.ReplaceAll(tmpl, "%n", link.Noun)
			cmd = strings.ReplaceAll(cmd, "%e", link.ExistID)
			return cmd, false
		}
	}
	if link.ExistID == "_direct_" {
		return link.Noun, false
	}
	return "_menu " + link.ExistID + " " + link.Noun, true
}

// ResolveLinkDrag computes the `_drag` command for a link dropped on a
// target zone (spec §4.G: left/right/wear, #<otherExistId>, or drop).
func ResolveLinkDrag(existID string, dropZone string, dropExistID string) string {
	switch dropZone {
	case "left", "right", "wear":
		return "_drag " + existID + " " + dropZone
	default:
		if dropExistID != "" {
			return "_drag " + existID + " #" + dropExistID
		}
		return "_drag " + existID + " drop"
	}
}
