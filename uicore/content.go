package uicore

import "github.com/drake/vellum/protocol"

// TextContent is an append-only line buffer capped at a configured size,
// with a monotonic generation counter. Generation never decreases; the
// oldest line evicts when the buffer is full (spec §3 invariant).
type TextContent struct {
	Lines        []protocol.StyledLine
	Capacity     int
	Generation   uint64
	ScrollOffset int
}

// NewTextContent returns an empty buffer capped at capacity lines.
func NewTextContent(capacity int) *TextContent {
	if capacity <= 0 {
		capacity = 1
	}
	return &TextContent{Capacity: capacity}
}

// Append adds a line, evicting the oldest if at capacity, and bumps the
// generation counter by exactly 1.
func (c *TextContent) Append(line protocol.StyledLine) {
	c.Lines = append(c.Lines, line)
	if len(c.Lines) > c.Capacity {
		evict := len(c.Lines) - c.Capacity
		c.Lines = c.Lines[evict:]
	}
	c.Generation++
	if c.ScrollOffset > len(c.Lines) {
		c.ScrollOffset = len(c.Lines)
	}
}

// Clear empties the buffer and bumps the generation.
func (c *TextContent) Clear() {
	c.Lines = nil
	c.ScrollOffset = 0
	c.Generation++
}

// ClampScroll enforces 0 <= ScrollOffset <= len(Lines) (spec §8 universal
// invariant).
func (c *TextContent) ClampScroll() {
	if c.ScrollOffset < 0 {
		c.ScrollOffset = 0
	}
	if c.ScrollOffset > len(c.Lines) {
		c.ScrollOffset = len(c.Lines)
	}
}

// TabDef describes one tab of a TabbedTextContent.
type TabDef struct {
	Name            string
	Streams         []string
	ShowTimestamps  bool
	IgnoreActivity  bool
}

// Tab pairs a TabDef with its own content buffer and unread marker.
type Tab struct {
	Def     TabDef
	Content *TextContent
	Unread  bool
}

// TabbedTextContent is an ordered list of tabs sharing one active index.
// Invariant: ActiveIndex < len(Tabs) whenever Tabs is non-empty; an empty
// tab list makes the widget inert until tabs are re-populated (spec §3).
type TabbedTextContent struct {
	Tabs        []*Tab
	ActiveIndex int
	capacity    int
}

// NewTabbedTextContent returns an empty tabbed buffer; each tab's content
// will be capped at capacity lines when added.
func NewTabbedTextContent(capacity int) *TabbedTextContent {
	return &TabbedTextContent{capacity: capacity}
}

// AddTab appends a new tab and returns its index.
func (t *TabbedTextContent) AddTab(def TabDef) int {
	t.Tabs = append(t.Tabs, &Tab{Def: def, Content: NewTextContent(t.capacity)})
	return len(t.Tabs) - 1
}

// RemoveTab removes the tab at index, clamping ActiveIndex to stay valid.
func (t *TabbedTextContent) RemoveTab(index int) {
	if index < 0 || index >= len(t.Tabs) {
		return
	}
	t.Tabs = append(t.Tabs[:index], t.Tabs[index+1:]...)
	if t.ActiveIndex >= len(t.Tabs) && len(t.Tabs) > 0 {
		t.ActiveIndex = len(t.Tabs) - 1
	}
	if len(t.Tabs) == 0 {
		t.ActiveIndex = 0
	}
}

// AppendToTab appends a line to the tab at index, marking it unread unless
// it's the active tab.
func (t *TabbedTextContent) AppendToTab(index int, line protocol.StyledLine) {
	if index < 0 || index >= len(t.Tabs) {
		return
	}
	tab := t.Tabs[index]
	tab.Content.Append(line)
	if index != t.ActiveIndex && !tab.Def.IgnoreActivity {
		tab.Unread = true
	}
}

// SetActive switches the active tab and clears its unread marker.
func (t *TabbedTextContent) SetActive(index int) {
	if index < 0 || index >= len(t.Tabs) {
		return
	}
	t.ActiveIndex = index
	t.Tabs[index].Unread = false
}

// NextUnread returns the index of the next tab (after the active one,
// wrapping) carrying an unread marker, or -1 if none.
func (t *TabbedTextContent) NextUnread() int {
	n := len(t.Tabs)
	for i := 1; i <= n; i++ {
		idx := (t.ActiveIndex + i) % n
		if t.Tabs[idx].Unread {
			return idx
		}
	}
	return -1
}

// TabForStream returns the index of the first tab subscribed to stream, or
// -1 if none match.
func (t *TabbedTextContent) TabForStream(stream string) int {
	for i, tab := range t.Tabs {
		for _, s := range tab.Def.Streams {
			if s == stream {
				return i
			}
		}
	}
	return -1
}

// ProgressData backs WidgetProgress (and the vitals bars specifically).
type ProgressData struct {
	VitalID string
	Current int
	Max     int
}

// CountdownData backs WidgetCountdown.
type CountdownData struct {
	ID string
}

// CompassData backs WidgetCompass.
type CompassData struct {
	Exits []string
}

// IndicatorData backs WidgetIndicator.
type IndicatorData struct {
	ID     string
	Active bool
}

// HandData backs WidgetHand.
type HandData struct {
	Slot string // "left", "right", "spell"
}

// CommandInputData backs WidgetCommandInput.
type CommandInputData struct {
	Buffer  string
	Cursor  int
	History []string
	HistIdx int // -1 = not navigating history
}

// ContainerData backs WidgetContainer and ephemeral container windows.
type ContainerData struct {
	ExistID string
	Items   []protocol.StyledLine
}

// QuickbarData backs WidgetQuickbar.
type QuickbarData struct {
	Order    []string
	ActiveID string
}
