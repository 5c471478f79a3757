package session

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/drake/vellum/frontend"
	"github.com/drake/vellum/highlight"
	"github.com/drake/vellum/input"
	"github.com/drake/vellum/keybind"
	"github.com/drake/vellum/protocol"
	"github.com/drake/vellum/uicore"
	"github.com/drake/vellum/vconfig"
)

// dispatchMouse turns a frontend mouse event into window drag/click/link
// handling (spec §4.G: title-bar drag, edge resize, tab-strip click,
// link click/drag).
func (s *Session) dispatchMouse(ev frontend.Event) {
	switch ev.Mouse {
	case frontend.MouseDown:
		s.mouseDown(ev)
	case frontend.MouseDrag:
		s.mouseDrag(ev)
	case frontend.MouseUp:
		s.mouseUp(ev)
	case frontend.MouseWheelUp:
		s.scrollWindowAt(ev.MouseRow, ev.MouseCol, -3)
	case frontend.MouseWheelDown:
		s.scrollWindowAt(ev.MouseRow, ev.MouseCol, 3)
	}
}

func (s *Session) mouseDown(ev frontend.Event) {
	name, zone := s.router.HandleMouseDown(ev.MouseRow, ev.MouseCol, ev.MouseCtrl)
	if name == "" {
		return
	}
	s.ui.SetFocus(name)
	w := s.ui.Window(name)
	switch zone {
	case input.ZoneTabStrip:
		s.switchTabAt(w, ev.MouseCol)
	case input.ZoneContent:
		if ev.MouseCtrl {
			if link := s.linkAt(w, ev.MouseRow, ev.MouseCol); link != nil {
				s.ui.LinkDrag = uicore.LinkDragState{Active: true, ExistID: link.ExistID}
			}
			return
		}
		if link := s.linkAt(w, ev.MouseRow, ev.MouseCol); link != nil {
			s.ui.PendingLinkClick = &uicore.PendingLinkClick{
				ExistID: link.ExistID, Noun: link.Noun, Coord: link.Coord,
				Row: ev.MouseRow, Col: ev.MouseCol,
			}
		}
	}
}

func (s *Session) mouseDrag(ev frontend.Event) {
	switch s.ui.Drag.Kind {
	case uicore.DragMove:
		dr, dc := ev.MouseRow-s.ui.Drag.StartRow, ev.MouseCol-s.ui.Drag.StartCol
		if w := s.ui.Window(s.ui.Drag.Window); w != nil {
			s.ui.MoveWindow(w.Name, w.Rect.Row+dr, w.Rect.Col+dc)
		}
		s.ui.Drag.StartRow, s.ui.Drag.StartCol = ev.MouseRow, ev.MouseCol
	case uicore.DragResize:
		if w := s.ui.Window(s.ui.Drag.Window); w != nil {
			dr, dc := ev.MouseRow-s.ui.Drag.StartRow, ev.MouseCol-s.ui.Drag.StartCol
			s.ui.ResizeWindow(w.Name, w.Rect.Rows+dr, w.Rect.Cols+dc)
		}
		s.ui.Drag.StartRow, s.ui.Drag.StartCol = ev.MouseRow, ev.MouseCol
	}
}

func (s *Session) mouseUp(ev frontend.Event) {
	defer func() {
		s.ui.Drag = uicore.DragState{}
	}()

	if s.ui.LinkDrag.Active {
		s.finishLinkDrag(ev)
		return
	}
	if s.ui.PendingLinkClick != nil {
		s.finishLinkClick(ev)
	}
}

func (s *Session) finishLinkDrag(ev frontend.Event) {
	existID := s.ui.LinkDrag.ExistID
	s.ui.LinkDrag = uicore.LinkDragState{}

	name := s.ui.TopmostAt(ev.MouseRow, ev.MouseCol)
	if name == "" {
		s.send(input.ResolveLinkDrag(existID, "drop", ""))
		return
	}
	w := s.ui.Window(name)
	zone := input.ClassifyZone(w, ev.MouseRow, ev.MouseCol)
	dropExistID := ""
	if zone == input.ZoneContent {
		if link := s.linkAt(w, ev.MouseRow, ev.MouseCol); link != nil {
			dropExistID = link.ExistID
		}
	}
	s.send(input.ResolveLinkDrag(existID, dropZoneName(w), dropExistID))
}

// dropZoneName maps a window's identity to the left/right/wear vocabulary
// ResolveLinkDrag expects; any other window is a generic drop target.
func dropZoneName(w *uicore.Window) string {
	if w == nil {
		return "drop"
	}
	if d, ok := w.Data.(*uicore.HandData); ok {
		return d.Slot
	}
	return "drop"
}

func (s *Session) finishLinkClick(ev frontend.Event) {
	click := s.ui.PendingLinkClick
	s.ui.PendingLinkClick = nil

	if abs(ev.MouseRow-click.Row)+abs(ev.MouseCol-click.Col) > 1 {
		return
	}
	link := &protocol.LinkAnnotation{ExistID: click.ExistID, Noun: click.Noun, Coord: click.Coord}
	// needsMenu distinguishes a server-bound "_menu" request from a direct
	// command, but both travel to the server the same way.
	cmd, _ := input.ResolveLinkClick(link, s.cmdLookup)
	s.send(cmd)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// linkAt resolves the clickable link (if any) under a content-area click,
// indexing into the window's logical line/segment buffer. This indexes
// buffered text, not a rendered cell grid, so it holds regardless of
// which frontend is driving the session.
func (s *Session) linkAt(w *uicore.Window, row, col int) *protocol.LinkAnnotation {
	if w == nil {
		return nil
	}
	var lines []protocol.StyledLine
	switch d := w.Data.(type) {
	case *uicore.TextContent:
		lines = d.Lines
	case *uicore.TabbedTextContent:
		if len(d.Tabs) == 0 {
			return nil
		}
		lines = d.Tabs[d.ActiveIndex].Content.Lines
	default:
		return nil
	}

	contentTop := w.Rect.Row + 1
	idx := len(lines) - (w.Rect.Rows - 2) + (row - contentTop)
	if idx < 0 || idx >= len(lines) {
		return nil
	}
	col -= w.Rect.Col + 1

	offset := 0
	for _, seg := range lines[idx].Segments {
		end := offset + len(seg.Text)
		if col >= offset && col < end {
			return seg.Link
		}
		offset = end
	}
	return nil
}

// switchTabAt finds which tab label a tab-strip click landed in, by
// cumulative label width, and makes it active.
func (s *Session) switchTabAt(w *uicore.Window, col int) {
	data, ok := w.Data.(*uicore.TabbedTextContent)
	if !ok {
		return
	}
	x := w.Rect.Col + 1
	for i, tab := range data.Tabs {
		width := len(tab.Def.Name) + 2
		if col >= x && col < x+width {
			data.SetActive(i)
			return
		}
		x += width
	}
}

func (s *Session) scrollWindowAt(row, col int, delta int) {
	name := s.ui.TopmostAt(row, col)
	if name == "" {
		return
	}
	w := s.ui.Window(name)
	content := textContentOf(w)
	if content == nil {
		return
	}
	content.ScrollOffset += delta
	content.ClampScroll()
}

func textContentOf(w *uicore.Window) *uicore.TextContent {
	if w == nil {
		return nil
	}
	switch d := w.Data.(type) {
	case *uicore.TextContent:
		return d
	case *uicore.TabbedTextContent:
		if len(d.Tabs) == 0 {
			return nil
		}
		return d.Tabs[d.ActiveIndex].Content
	}
	return nil
}

// handleAction executes one internal keybind action against the focused
// window and UI state (spec §4.D keybind.Action vocabulary).
func (s *Session) handleAction(a keybind.Action) {
	switch a {
	case keybind.ActionCopy:
		s.copySelection()
	case keybind.ActionPaste:
		// Clipboard access is out of scope; nothing to paste from.
	case keybind.ActionSendCommand:
		// Handled by editCommandInput's Outcome.Command path; no-op here.
	case keybind.ActionScrollCurrentWindowUpOne:
		s.scrollFocused(-1)
	case keybind.ActionScrollCurrentWindowDnOne:
		s.scrollFocused(1)
	case keybind.ActionScrollCurrentWindowUpPage:
		s.scrollFocused(-s.focusedPageSize())
	case keybind.ActionScrollCurrentWindowDnPage:
		s.scrollFocused(s.focusedPageSize())
	case keybind.ActionScrollToBottom:
		if c := s.focusedContent(); c != nil {
			c.ScrollOffset = len(c.Lines)
		}
	case keybind.ActionSwitchCurrentWindow:
		s.focusNextWindow()
	case keybind.ActionNextTab:
		s.switchTab(1)
	case keybind.ActionPrevTab:
		s.switchTab(-1)
	case keybind.ActionNextUnread:
		s.jumpNextUnread()
	case keybind.ActionHistoryPrev:
		s.navigateHistory(-1)
	case keybind.ActionHistoryNext:
		s.navigateHistory(1)
	case keybind.ActionTtsNext:
		if len(s.ttsQueue) > 0 {
			s.ttsQueue = s.ttsQueue[1:]
		}
	case keybind.ActionTtsStop:
		s.ttsQueue = nil
	case keybind.ActionOpenMenu:
		s.openRootMenu()
	case keybind.ActionQuit:
		s.running = false
	}
}

// focusedPageSize is one screenful of the focused window's content area,
// falling back to a reasonable default when nothing is focused.
func (s *Session) focusedPageSize() int {
	if w := s.ui.Window(s.ui.FocusedWindow); w != nil && w.Rect.Rows > 2 {
		return w.Rect.Rows - 2
	}
	return 10
}

func (s *Session) focusedContent() *uicore.TextContent {
	return textContentOf(s.ui.Window(s.ui.FocusedWindow))
}

func (s *Session) scrollFocused(delta int) {
	c := s.focusedContent()
	if c == nil {
		return
	}
	c.ScrollOffset += delta
	c.ClampScroll()
}

func (s *Session) focusNextWindow() {
	windows := s.ui.Windows()
	if len(windows) == 0 {
		return
	}
	idx := 0
	for i, w := range windows {
		if w.Name == s.ui.FocusedWindow {
			idx = i
			break
		}
	}
	next := windows[(idx+1)%len(windows)]
	s.ui.SetFocus(next.Name)
}

func (s *Session) switchTab(dir int) {
	w := s.ui.Window(s.ui.FocusedWindow)
	data, ok := w.Data.(*uicore.TabbedTextContent)
	if !ok || len(data.Tabs) == 0 {
		return
	}
	n := len(data.Tabs)
	next := ((data.ActiveIndex+dir)%n + n) % n
	data.SetActive(next)
}

func (s *Session) jumpNextUnread() {
	w := s.ui.Window(s.ui.FocusedWindow)
	data, ok := w.Data.(*uicore.TabbedTextContent)
	if !ok {
		return
	}
	if idx := data.NextUnread(); idx >= 0 {
		data.SetActive(idx)
	}
}

func (s *Session) navigateHistory(dir int) {
	w := s.ui.GetWindowByType(uicore.WidgetCommandInput, "")
	if w == nil {
		return
	}
	data := w.Data.(*uicore.CommandInputData)
	if len(data.History) == 0 {
		return
	}
	if data.HistIdx < 0 {
		data.HistIdx = len(data.History)
	}
	data.HistIdx += dir
	if data.HistIdx < 0 {
		data.HistIdx = 0
	}
	if data.HistIdx >= len(data.History) {
		data.HistIdx = -1
		data.Buffer = ""
		data.Cursor = 0
		return
	}
	data.Buffer = data.History[data.HistIdx]
	data.Cursor = len(data.Buffer)
}

// copySelection formats the active selection's plain text and hands it to
// the configured Clipboard, if any (spec §1 Non-goal: clipboard access
// itself is an external collaborator).
func (s *Session) copySelection() {
	if s.Clipboard == nil || !s.ui.Selection.Active {
		return
	}
	content := textContentOf(s.ui.Window(s.ui.Selection.Window))
	if content == nil {
		return
	}
	lo, hi := s.ui.Selection.StartRow, s.ui.Selection.EndRow
	if lo > hi {
		lo, hi = hi, lo
	}
	var b strings.Builder
	for i := lo; i <= hi && i < len(content.Lines); i++ {
		if i < 0 {
			continue
		}
		b.WriteString(content.Lines[i].PlainText())
		b.WriteString("\n")
	}
	s.Clipboard.Set(b.String())
}

func (s *Session) openRootMenu() {
	items := []uicore.PopupItem{
		{Label: "Windows", Submenu: s.windowSubmenu()},
		{Label: "Reload config", DotCmd: ".reload"},
		{Label: "Quit", DotCmd: ".quit"},
	}
	s.ui.PushPopup(&uicore.PopupMenu{Items: items})
	mode := s.ui.InputMode
	mode.Kind = uicore.ModeMenu
	s.ui.SetInputMode(mode)
}

func (s *Session) windowSubmenu() []uicore.PopupItem {
	var items []uicore.PopupItem
	for _, w := range s.ui.Windows() {
		items = append(items, uicore.PopupItem{Label: w.Name, DotCmd: ".hidewindow " + w.Name})
	}
	return items
}

// handleDotCommand interprets a local "." command (spec §1 scope: "local
// dot-commands"). Returning a non-empty string surfaces it as a system
// message; most commands mutate state directly and return "".
func (s *Session) handleDotCommand(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	name, args := fields[0], fields[1:]

	switch name {
	case ".quit":
		s.running = false
	case ".resize":
		return s.cmdResize(args)
	case ".rename":
		return s.cmdRename(args)
	case ".hidewindow":
		return s.cmdSetVisible(args, false)
	case ".showwindow":
		return s.cmdSetVisible(args, true)
	case ".deletewindow":
		return s.cmdDeleteWindow(args)
	case ".nexttab":
		s.switchTab(1)
	case ".prevtab":
		s.switchTab(-1)
	case ".settheme":
		return s.cmdSetTheme(args)
	case ".reload":
		return s.cmdReload()
	case ".savelayout":
		return s.cmdSaveLayout(args)
	case ".testline":
		s.cmdTestLine(strings.Join(args, " "))
	case ".help":
		s.cmdHelp()
	default:
		return fmt.Sprintf("unknown command: %s", name)
	}
	return ""
}

func (s *Session) cmdResize(args []string) string {
	if len(args) != 2 {
		return "usage: .resize <rows> <cols>"
	}
	rows, err1 := strconv.Atoi(args[0])
	cols, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		return "usage: .resize <rows> <cols>"
	}
	s.ui.ResizeWindow(s.ui.FocusedWindow, rows, cols)
	return ""
}

func (s *Session) cmdRename(args []string) string {
	if len(args) != 2 {
		return "usage: .rename <old> <new>"
	}
	if !s.ui.RenameWindow(args[0], args[1]) {
		return fmt.Sprintf("no such window: %s", args[0])
	}
	return ""
}

func (s *Session) cmdSetVisible(args []string, visible bool) string {
	if len(args) != 1 {
		return "usage: .hidewindow/.showwindow <name>"
	}
	s.ui.SetVisible(args[0], visible)
	return ""
}

func (s *Session) cmdDeleteWindow(args []string) string {
	if len(args) != 1 {
		return "usage: .deletewindow <name>"
	}
	s.ui.RemoveWindow(args[0])
	return ""
}

func (s *Session) cmdSetTheme(args []string) string {
	if len(args) != 1 {
		return "usage: .settheme <name>"
	}
	s.cfg.Settings.Theme.Value = args[0]
	return ""
}

// cmdReload reloads keybinds/highlights from the merged settings document,
// leaving window layout untouched (spec §3: config reload doesn't imply a
// layout reload).
func (s *Session) cmdReload() string {
	doc, err := vconfig.Load(s.cfg.Character)
	if err != nil {
		return fmt.Sprintf("reload failed: %v", err)
	}
	s.cfg.Settings = doc
	s.binds = keybind.Default()
	for _, b := range doc.Keybinds.Value {
		s.binds.Set(b)
	}
	s.router.Binds = s.binds
	s.lights = highlight.NewTable(patternPointers(doc.Highlights.Value), func(p *highlight.Pattern, err error) {
		s.ui.SystemMessage("highlight: disabling pattern %q: %v", p.Match, err)
	})
	s.proc.Lights = s.lights
	return "config reloaded"
}

func (s *Session) cmdSaveLayout(args []string) string {
	name := "default"
	if len(args) > 0 {
		name = args[0]
	}
	if err := s.layouts.Save(name, s.ui.TermCols, s.ui.TermRows, s.ui.Windows()); err != nil {
		return fmt.Sprintf("save failed: %v", err)
	}
	return fmt.Sprintf("layout saved as %q", name)
}

// cmdTestLine feeds a line through the same highlight/routing pipeline a
// server line would go through, for testing highlight patterns without a
// live connection.
func (s *Session) cmdTestLine(text string) {
	line := protocol.StyledLine{Segments: []protocol.StyledSegment{{Text: text}}}
	ev := protocol.Event{Type: protocol.EventStyledLine, Stream: "main", Line: &line}
	s.proc.Handle(ev, "")
}

// cmdHelp renders the embedded dot-command/keybind reference and surfaces
// it one line at a time as system messages, wrapped to the terminal width.
func (s *Session) cmdHelp() {
	rendered := renderHelp(s.ui.TermCols)
	for _, line := range strings.Split(strings.TrimRight(rendered, "\n"), "\n") {
		s.ui.SystemMessage("%s", line)
	}
}
