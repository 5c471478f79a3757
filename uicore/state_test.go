package uicore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/drake/vellum/protocol"
)

func textLine(s string) protocol.StyledLine {
	return protocol.StyledLine{Segments: []protocol.StyledSegment{{Text: s}}}
}

func TestGenerationStrictlyIncreases(t *testing.T) {
	s := New(80, 24)
	s.AddWindow(&Window{Name: "main", Kind: WidgetText, Rect: Rect{0, 0, 24, 80}, Visible: true, Data: NewTextContent(100)})

	tc := s.Window("main").Data.(*TextContent)
	var last uint64
	for i := 0; i < 5; i++ {
		s.AddLine("main", textLine("line"))
		if tc.Generation != last+1 {
			t.Fatalf("generation = %d, want %d", tc.Generation, last+1)
		}
		last = tc.Generation
	}
}

func TestTextContentEvictsOldest(t *testing.T) {
	tc := NewTextContent(3)
	tc.Append(textLine("a"))
	tc.Append(textLine("b"))
	tc.Append(textLine("c"))
	tc.Append(textLine("d"))

	if len(tc.Lines) != 3 {
		t.Fatalf("len(Lines) = %d, want 3", len(tc.Lines))
	}
	if tc.Lines[0].PlainText() != "b" {
		t.Fatalf("oldest surviving line = %q, want %q", tc.Lines[0].PlainText(), "b")
	}
}

func TestTabbedActiveIndexInvariant(t *testing.T) {
	ttc := NewTabbedTextContent(10)
	ttc.AddTab(TabDef{Name: "combat", Streams: []string{"death", "combat"}})
	ttc.AddTab(TabDef{Name: "chat", Streams: []string{"lnet"}})
	ttc.SetActive(1)

	idx := ttc.TabForStream("combat")
	if idx != 0 {
		t.Fatalf("TabForStream(combat) = %d, want 0", idx)
	}
	ttc.AppendToTab(idx, textLine("a troll attacks"))

	if ttc.Tabs[0].Content.Generation != 1 {
		t.Fatalf("combat tab generation = %d, want 1", ttc.Tabs[0].Content.Generation)
	}
	if ttc.Tabs[1].Content.Generation != 0 {
		t.Fatalf("chat tab should be untouched, generation = %d", ttc.Tabs[1].Content.Generation)
	}
	if !ttc.Tabs[0].Unread {
		t.Fatal("expected combat tab unread since it's not active")
	}

	ttc.RemoveTab(0)
	ttc.RemoveTab(0)
	if ttc.ActiveIndex >= len(ttc.Tabs) && len(ttc.Tabs) > 0 {
		t.Fatalf("ActiveIndex %d out of range for %d tabs", ttc.ActiveIndex, len(ttc.Tabs))
	}
}

func TestWindowClampsToTerminal(t *testing.T) {
	s := New(80, 24)
	s.AddWindow(&Window{Name: "edge", Kind: WidgetText, Rect: Rect{Row: 0, Col: 79, Rows: 5, Cols: 5}, Data: NewTextContent(10)})

	r := s.Window("edge").Rect
	if r.Col+r.Cols > 80 || r.Row+r.Rows > 24 {
		t.Fatalf("window not clamped on-screen: %+v", r)
	}

	s.Resize(10, 3)
	r = s.Window("edge").Rect
	if r.Rows < 0 || r.Cols < 0 {
		t.Fatalf("negative dimensions after shrink: %+v", r)
	}
	if r.Rows > 3 || r.Cols > 10 {
		t.Fatalf("window exceeds shrunk terminal: %+v", r)
	}
}

func TestInputModeMenuInvariant(t *testing.T) {
	s := New(80, 24)
	if s.InputMode.Kind == ModeMenu {
		t.Fatal("fresh state should not start in Menu mode")
	}

	s.PushPopup(&PopupMenu{Items: []PopupItem{{Label: "a", DotCmd: ".quit"}}})
	if s.InputMode.Kind != ModeMenu {
		t.Fatal("pushing a popup should enter Menu mode")
	}

	s.PopPopup()
	if s.InputMode.Kind == ModeMenu {
		t.Fatal("popping the last popup should leave Menu mode")
	}
}

func TestPopupStackDepthLimit(t *testing.T) {
	s := New(80, 24)
	for i := 0; i < MaxPopupDepth; i++ {
		if !s.PushPopup(&PopupMenu{}) {
			t.Fatalf("push %d should have succeeded", i)
		}
	}
	if s.Popups.Push(&PopupMenu{}) {
		t.Fatal("push beyond MaxPopupDepth should fail")
	}
}

func TestSingleActiveDialog(t *testing.T) {
	s := New(80, 24)
	s.OpenDialog("inventory", "<html/>")
	s.OpenDialog("inventory", "<html2/>")
	if s.ActiveDialog.HTML != "<html2/>" {
		t.Fatal("reopening same id should replace in place")
	}

	s.OpenDialog("map", "<map/>")
	if s.ActiveDialog.ID != "map" {
		t.Fatal("opening a different dialog should replace the active one")
	}
}

func TestEphemeralZOrderCreationOrder(t *testing.T) {
	s := New(80, 24)
	s.AddEphemeralWindow(&Window{Name: "container1", Kind: WidgetContainer, Rect: Rect{0, 0, 5, 5}, Visible: true})
	s.AddEphemeralWindow(&Window{Name: "container2", Kind: WidgetContainer, Rect: Rect{0, 0, 5, 5}, Visible: true})

	top := s.TopmostAt(1, 1)
	if top != "container2" {
		t.Fatalf("TopmostAt = %q, want container2 (most recent on top)", top)
	}
}

func TestEphemeralWindowGetsUniqueNameWhenUnnamed(t *testing.T) {
	s := New(80, 24)
	s.AddEphemeralWindow(&Window{Kind: WidgetContainer, Rect: Rect{0, 0, 5, 5}, Visible: true})
	s.AddEphemeralWindow(&Window{Kind: WidgetContainer, Rect: Rect{0, 0, 5, 5}, Visible: true})

	require.Len(t, s.EphemeralOrder, 2)
	require.NotEqual(t, s.EphemeralOrder[0], s.EphemeralOrder[1], "unnamed ephemeral windows must not collide")
	for _, name := range s.EphemeralOrder {
		require.True(t, s.IsEphemeral(name))
	}
}

func TestSystemMessageOnMissingWindow(t *testing.T) {
	s := New(80, 24)
	s.AddWindow(&Window{Name: "main", Kind: WidgetText, Data: NewTextContent(10)})
	s.AddLine("nonexistent", textLine("x"))

	tc := s.Window("main").Data.(*TextContent)
	if len(tc.Lines) != 1 {
		t.Fatal("expected a system message line in main window")
	}
}
