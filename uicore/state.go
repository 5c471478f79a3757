package uicore

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/zyedidia/generic/mapset"

	"github.com/drake/vellum/protocol"
)

// Dialog is an active modal dialog window (spec §3: "at most one dialog
// may be active; opening a new one with the same id replaces it").
type Dialog struct {
	ID   string
	HTML string
}

// SelectionState tracks an in-progress text-copy selection within a
// window's content area.
type SelectionState struct {
	Window        string
	StartRow, StartCol int
	EndRow, EndCol     int
	Active        bool
}

// DragKind closes the set of window-drag operations.
type DragKind int

const (
	DragNone DragKind = iota
	DragMove
	DragResize
)

// DragState tracks an in-progress window move/resize.
type DragState struct {
	Kind      DragKind
	Window    string
	StartRow, StartCol int
}

// LinkDragState tracks an in-progress Ctrl-drag of a clickable link (spec
// §4.G "Link drag").
type LinkDragState struct {
	Active  bool
	ExistID string
}

// PendingLinkClick records a link click awaiting a matching release (and,
// for coord-less non-direct links, a server menu response).
type PendingLinkClick struct {
	ExistID string
	Noun    string
	Coord   string
	Row, Col int
}

// UIState is the headless UI state core (spec §3 UIState, §4.E). All
// mutation goes through its methods; the frontend only reads.
type UIState struct {
	TermCols, TermRows int

	windows map[string]*Window
	order   []string // insertion order, for deterministic iteration

	InputMode InputMode
	Popups    PopupStack

	ActiveDialog   *Dialog
	FocusedWindow  string

	EphemeralOrder []string // creation order; most-recent appended last
	ephemeralSet   mapset.Set[string]

	Selection SelectionState
	Drag      DragState
	LinkDrag  LinkDragState
	PendingLinkClick *PendingLinkClick

	QuickbarOrder  []string
	ActiveQuickbar string
}

// New returns an empty UIState sized to termCols x termRows.
func New(termCols, termRows int) *UIState {
	return &UIState{
		TermCols:     termCols,
		TermRows:     termRows,
		windows:      make(map[string]*Window),
		ephemeralSet: mapset.New[string](),
	}
}

// --- Window CRUD -----------------------------------------------------

// AddWindow inserts a window, clamping its rectangle to the terminal size.
// Re-adding an existing name replaces it in place (preserving position in
// iteration order).
func (s *UIState) AddWindow(w *Window) {
	w.Rect = w.Rect.Clamp(s.TermCols, s.TermRows)
	if _, exists := s.windows[w.Name]; !exists {
		s.order = append(s.order, w.Name)
	}
	s.windows[w.Name] = w
}

// Window returns the window by name, or nil.
func (s *UIState) Window(name string) *Window {
	return s.windows[name]
}

// Windows returns all windows in insertion order.
func (s *UIState) Windows() []*Window {
	out := make([]*Window, 0, len(s.order))
	for _, n := range s.order {
		if w, ok := s.windows[n]; ok {
			out = append(out, w)
		}
	}
	return out
}

// GetWindowByType returns the first window of the given kind, preferring
// one whose name equals idHint if idHint is non-empty and such a window of
// that kind exists (spec §4.E get_window_by_type).
func (s *UIState) GetWindowByType(kind WidgetKind, idHint string) *Window {
	if idHint != "" {
		if w, ok := s.windows[idHint]; ok && w.Kind == kind {
			return w
		}
	}
	for _, n := range s.order {
		if w := s.windows[n]; w.Kind == kind {
			return w
		}
	}
	return nil
}

// RemoveWindow deletes a window entirely (distinct from hiding it).
func (s *UIState) RemoveWindow(name string) {
	delete(s.windows, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.removeEphemeral(name)
	if s.FocusedWindow == name {
		s.FocusedWindow = ""
	}
}

// RenameWindow changes a window's name in place, preserving its position
// in iteration order, focus, and ephemeral/tab wiring (spec §6 ".rename").
// Renaming a non-existent window or onto an already-taken name reports a
// system message and leaves state untouched (spec §7 "Window operation
// error... never fatal").
func (s *UIState) RenameWindow(oldName, newName string) bool {
	w := s.windows[oldName]
	if w == nil {
		s.SystemMessage("rename: window %q does not exist", oldName)
		return false
	}
	if _, taken := s.windows[newName]; taken {
		s.SystemMessage("rename: window %q already exists", newName)
		return false
	}
	delete(s.windows, oldName)
	w.Name = newName
	s.windows[newName] = w
	for i, n := range s.order {
		if n == oldName {
			s.order[i] = newName
			break
		}
	}
	if s.FocusedWindow == oldName {
		s.FocusedWindow = newName
	}
	if s.ephemeralSet.Has(oldName) {
		s.ephemeralSet.Remove(oldName)
		s.ephemeralSet.Put(newName)
		for i, n := range s.EphemeralOrder {
			if n == oldName {
				s.EphemeralOrder[i] = newName
				break
			}
		}
	}
	return true
}

// SystemMessage is a convenience error-reporting path: add/hide/rename
// operations on non-existent windows surface a user-visible message in the
// main window rather than failing silently or fatally (spec §7).
func (s *UIState) SystemMessage(format string, args ...any) {
	w := s.windows["main"]
	if w == nil {
		return
	}
	tc, ok := w.Data.(*TextContent)
	if !ok {
		return
	}
	tc.Append(protocol.StyledLine{Segments: []protocol.StyledSegment{
		{Text: "[System] " + fmt.Sprintf(format, args...), Class: "system"},
	}})
}

// --- Operations (spec §4.E) ------------------------------------------

// AddLine appends a styled line to a Text window's content, or reports a
// system message if the window doesn't exist or isn't a Text window.
func (s *UIState) AddLine(windowName string, line protocol.StyledLine) {
	w := s.windows[windowName]
	if w == nil {
		s.SystemMessage("add_line: window %q does not exist", windowName)
		return
	}
	tc, ok := w.Data.(*TextContent)
	if !ok {
		s.SystemMessage("add_line: window %q is not a text window", windowName)
		return
	}
	tc.Append(line)
}

// AddTabLine appends a line to one tab of a TabbedText window.
func (s *UIState) AddTabLine(windowName string, tabIndex int, line protocol.StyledLine) {
	w := s.windows[windowName]
	if w == nil {
		s.SystemMessage("add_tab_line: window %q does not exist", windowName)
		return
	}
	ttc, ok := w.Data.(*TabbedTextContent)
	if !ok {
		s.SystemMessage("add_tab_line: window %q is not a tabbed window", windowName)
		return
	}
	ttc.AppendToTab(tabIndex, line)
}

// ClearWindow clears a Text or TabbedText (active tab) window's content.
func (s *UIState) ClearWindow(windowName string) {
	w := s.windows[windowName]
	if w == nil {
		s.SystemMessage("clear_window: window %q does not exist", windowName)
		return
	}
	switch d := w.Data.(type) {
	case *TextContent:
		d.Clear()
	case *TabbedTextContent:
		if d.ActiveIndex < len(d.Tabs) {
			d.Tabs[d.ActiveIndex].Content.Clear()
		}
	}
}

// SetVisible toggles a window's visibility.
func (s *UIState) SetVisible(windowName string, visible bool) {
	w := s.windows[windowName]
	if w == nil {
		s.SystemMessage("set_visible: window %q does not exist", windowName)
		return
	}
	w.Visible = visible
}

// SetFocus moves keyboard focus to a window.
func (s *UIState) SetFocus(windowName string) {
	if windowName != "" && s.windows[windowName] == nil {
		s.SystemMessage("set_focus: window %q does not exist", windowName)
		return
	}
	s.FocusedWindow = windowName
}

// ResizeWindow changes a window's size, clamping to the terminal and to
// any configured min/max bounds.
func (s *UIState) ResizeWindow(windowName string, rows, cols int) {
	w := s.windows[windowName]
	if w == nil {
		s.SystemMessage("resize_window: window %q does not exist", windowName)
		return
	}
	if w.MinRows > 0 && rows < w.MinRows {
		rows = w.MinRows
	}
	if w.MinCols > 0 && cols < w.MinCols {
		cols = w.MinCols
	}
	if w.MaxRows > 0 && rows > w.MaxRows {
		rows = w.MaxRows
	}
	if w.MaxCols > 0 && cols > w.MaxCols {
		cols = w.MaxCols
	}
	w.Rect.Rows, w.Rect.Cols = rows, cols
	w.Rect = w.Rect.Clamp(s.TermCols, s.TermRows)
}

// MoveWindow changes a window's position, clamping to the terminal.
func (s *UIState) MoveWindow(windowName string, row, col int) {
	w := s.windows[windowName]
	if w == nil {
		s.SystemMessage("move_window: window %q does not exist", windowName)
		return
	}
	w.Rect.Row, w.Rect.Col = row, col
	w.Rect = w.Rect.Clamp(s.TermCols, s.TermRows)
}

// Resize updates the terminal dimensions and re-clamps every window.
func (s *UIState) Resize(cols, rows int) {
	s.TermCols, s.TermRows = cols, rows
	for _, w := range s.windows {
		w.Rect = w.Rect.Clamp(cols, rows)
	}
}

// --- Input mode / popup operations ------------------------------------

// SetInputMode is the single mutator input_mode transitions go through
// (spec §4.E invariant). Switching away from Menu clears the popup stack.
func (s *UIState) SetInputMode(m InputMode) {
	if m.Kind != ModeMenu && s.InputMode.Kind == ModeMenu {
		s.Popups.Clear()
	}
	s.InputMode = m
}

// PushPopup stacks a new popup menu and ensures input_mode == Menu (spec
// §4.E: "nested popups may exist only while input_mode == Menu").
func (s *UIState) PushPopup(m *PopupMenu) bool {
	ok := s.Popups.Push(m)
	if ok {
		s.InputMode = InputMode{Kind: ModeMenu}
	}
	return ok
}

// PopPopup pops one level; if the stack empties, input_mode reverts to
// Normal.
func (s *UIState) PopPopup() {
	s.Popups.Pop()
	if s.Popups.Depth() == 0 && s.InputMode.Kind == ModeMenu {
		s.InputMode = InputMode{Kind: ModeNormal}
	}
}

// CloseAllMenus clears the entire popup stack and reverts to Normal mode.
func (s *UIState) CloseAllMenus() {
	s.Popups.Clear()
	if s.InputMode.Kind == ModeMenu {
		s.InputMode = InputMode{Kind: ModeNormal}
	}
}

// --- Dialogs ------------------------------------------------------------

// OpenDialog opens (or replaces, if same id) the active dialog. Opening a
// dialog with a different id also replaces it -- the reference design does
// not stack dialogs (spec §4.E).
func (s *UIState) OpenDialog(id, html string) {
	s.ActiveDialog = &Dialog{ID: id, HTML: html}
	s.InputMode = InputMode{Kind: ModeDialog}
}

// CloseDialog closes the active dialog if its id matches (or always, if id
// is empty).
func (s *UIState) CloseDialog(id string) {
	if s.ActiveDialog == nil {
		return
	}
	if id == "" || s.ActiveDialog.ID == id {
		s.ActiveDialog = nil
		if s.InputMode.Kind == ModeDialog {
			s.InputMode = InputMode{Kind: ModeNormal}
		}
	}
}

// --- Ephemeral windows ---------------------------------------------------

// NewEphemeralID mints a unique window name for ephemeral windows that have
// no natural stable key (e.g. a container whose server-side existId isn't
// known yet). Windows with a stable key -- most containers, which key off
// their existId -- should use that instead so re-opening the same object
// reuses its window rather than spawning a duplicate.
func NewEphemeralID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// AddEphemeralWindow inserts a window and tags it ephemeral. Z-order among
// ephemeral windows is creation order, most-recent on top (spec §9 Open
// Question a, resolved and documented in DESIGN.md): EphemeralOrder is
// append-only until a window is removed. A window added with no Name is
// assigned a fresh NewEphemeralID so callers never collide by accident.
func (s *UIState) AddEphemeralWindow(w *Window) {
	if w.Name == "" {
		w.Name = NewEphemeralID("ephemeral")
	}
	s.AddWindow(w)
	if !s.ephemeralSet.Has(w.Name) {
		s.ephemeralSet.Put(w.Name)
		s.EphemeralOrder = append(s.EphemeralOrder, w.Name)
	}
}

// IsEphemeral reports whether a window was created dynamically.
func (s *UIState) IsEphemeral(name string) bool {
	return s.ephemeralSet.Has(name)
}

func (s *UIState) removeEphemeral(name string) {
	if !s.ephemeralSet.Has(name) {
		return
	}
	s.ephemeralSet.Remove(name)
	for i, n := range s.EphemeralOrder {
		if n == name {
			s.EphemeralOrder = append(s.EphemeralOrder[:i], s.EphemeralOrder[i+1:]...)
			break
		}
	}
}

// TopmostAt returns the name of the highest z-order window whose rect
// contains (row, col), checking ephemeral windows (in most-recent-on-top
// order) before regular windows. Empty string if none match.
func (s *UIState) TopmostAt(row, col int) string {
	for i := len(s.EphemeralOrder) - 1; i >= 0; i-- {
		if w := s.windows[s.EphemeralOrder[i]]; w != nil && w.Visible && contains(w.Rect, row, col) {
			return w.Name
		}
	}
	for i := len(s.order) - 1; i >= 0; i-- {
		name := s.order[i]
		if s.ephemeralSet.Has(name) {
			continue
		}
		if w := s.windows[name]; w != nil && w.Visible && contains(w.Rect, row, col) {
			return w.Name
		}
	}
	return ""
}

func contains(r Rect, row, col int) bool {
	return row >= r.Row && row < r.Row+r.Rows && col >= r.Col && col < r.Col+r.Cols
}
