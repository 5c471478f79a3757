package input

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/drake/vellum/keybind"
	"github.com/drake/vellum/protocol"
	"github.com/drake/vellum/uicore"
)

func newRouter() (*Router, *uicore.UIState) {
	ui := uicore.New(80, 24)
	ui.AddWindow(&uicore.Window{
		Name: "input", Kind: uicore.WidgetCommandInput, Rect: uicore.Rect{Row: 23, Cols: 80, Rows: 1},
		Visible: true, Data: &uicore.CommandInputData{HistIdx: -1},
	})
	ui.FocusedWindow = "input"
	binds := keybind.Default()
	return NewRouter(binds, ui), ui
}

func TestNormalLayerTypingBuildsBuffer(t *testing.T) {
	r, ui := newRouter()
	for _, c := range "hi" {
		r.HandleKey(keybind.Key{Code: string(c)})
	}
	data := ui.Window("input").Data.(*uicore.CommandInputData)
	if data.Buffer != "hi" {
		t.Fatalf("Buffer = %q, want hi", data.Buffer)
	}
}

func TestEnterSendsCommandAndClearsBuffer(t *testing.T) {
	r, ui := newRouter()
	r.HandleKey(keybind.Key{Code: "k"})
	out := r.HandleKey(keybind.Key{Code: "enter"})
	if out.Command != "k" {
		t.Fatalf("Command = %q, want k", out.Command)
	}
	data := ui.Window("input").Data.(*uicore.CommandInputData)
	if data.Buffer != "" {
		t.Fatalf("Buffer not cleared: %q", data.Buffer)
	}
	if len(data.History) != 1 || data.History[0] != "k" {
		t.Fatalf("History = %v", data.History)
	}
}

func TestBoundKeyProducesAction(t *testing.T) {
	r, _ := newRouter()
	out := r.HandleKey(keybind.Key{Code: "pgup"})
	if out.Action != keybind.ActionScrollCurrentWindowUpPage {
		t.Fatalf("Action = %q", out.Action)
	}
}

func TestMenuLayerNavigatesAndSelects(t *testing.T) {
	r, ui := newRouter()
	ui.PushPopup(&uicore.PopupMenu{Items: []uicore.PopupItem{
		{Label: "Open", GameCmd: "open box"},
		{Label: "Close", GameCmd: "close box"},
	}})

	r.HandleKey(keybind.Key{Code: "down"})
	out := r.HandleKey(keybind.Key{Code: "enter"})
	if out.Command != "close box" {
		t.Fatalf("Command = %q, want close box", out.Command)
	}
	if ui.InputMode.Kind != uicore.ModeNormal {
		t.Fatal("expected menu mode to clear after selection")
	}
}

func TestMenuEscPopsOneLevel(t *testing.T) {
	r, ui := newRouter()
	ui.PushPopup(&uicore.PopupMenu{Items: []uicore.PopupItem{{Label: "a", GameCmd: "a"}}})
	ui.PushPopup(&uicore.PopupMenu{Items: []uicore.PopupItem{{Label: "b", GameCmd: "b"}}})

	r.HandleKey(keybind.Key{Code: "esc"})
	if ui.Popups.Depth() != 1 {
		t.Fatalf("Depth() = %d, want 1", ui.Popups.Depth())
	}
	if ui.InputMode.Kind != uicore.ModeMenu {
		t.Fatal("expected still in menu mode with one level remaining")
	}
}

func TestSubmenuSelectionStacks(t *testing.T) {
	r, ui := newRouter()
	ui.PushPopup(&uicore.PopupMenu{Items: []uicore.PopupItem{
		{Label: "More", Submenu: []uicore.PopupItem{{Label: "Deep", GameCmd: "deep"}}},
	}})
	r.HandleKey(keybind.Key{Code: "enter"})
	if ui.Popups.Depth() != 2 {
		t.Fatalf("Depth() = %d, want 2 after stacking submenu", ui.Popups.Depth())
	}
}

func TestResolveLinkClickDirect(t *testing.T) {
	link := &protocol.LinkAnnotation{ExistID: "_direct_", Noun: "look"}
	cmd, needsMenu := ResolveLinkClick(link, nil)
	if cmd != "look" || needsMenu {
		t.Fatalf("cmd=%q needsMenu=%v", cmd, needsMenu)
	}
}

func TestResolveLinkClickWithCoord(t *testing.T) {
	link := &protocol.LinkAnnotation{ExistID: "123", Noun: "sword", Coord: "exa"}
	lookup := func(coord string) (string, bool) {
		if coord == "exa" {
			return "look at %n", true
		}
		return "", false
	}
	cmd, needsMenu := ResolveLinkClick(link, lookup)
	if cmd != "look at sword" || needsMenu {
		t.Fatalf("cmd=%q needsMenu=%v", cmd, needsMenu)
	}
}

func TestResolveLinkClickFallsBackToMenu(t *testing.T) {
	link := &protocol.LinkAnnotation{ExistID: "123", Noun: "sword"}
	cmd, needsMenu := ResolveLinkClick(link, func(string) (string, bool) { return "", false })
	if cmd != "_menu 123 sword" || !needsMenu {
		t.Fatalf("cmd=%q needsMenu=%v", cmd, needsMenu)
	}
}

func TestResolveLinkDragTargets(t *testing.T) {
	if got := ResolveLinkDrag("42", "left", ""); got != "_drag 42 left" {
		t.Fatalf("got %q", got)
	}
	if got := ResolveLinkDrag("42", "", "99"); got != "_drag 42 #99" {
		t.Fatalf("got %q", got)
	}
	if got := ResolveLinkDrag("42", "", ""); got != "_drag 42 drop" {
		t.Fatalf("got %q", got)
	}
}

func TestClassifyZoneEdgesAndContent(t *testing.T) {
	w := &uicore.Window{Rect: uicore.Rect{Row: 0, Col: 0, Rows: 5, Cols: 10}, Title: "Main"}
	if ClassifyZone(w, 0, 2) != ZoneTitleBar {
		t.Fatal("expected title bar zone")
	}
	if ClassifyZone(w, 4, 2) != ZoneResizeEdge {
		t.Fatal("expected resize edge on bottom row")
	}
	if ClassifyZone(w, 2, 2) != ZoneContent {
		t.Fatal("expected content zone in the middle")
	}
	if ClassifyZone(w, 10, 10) != ZoneNone {
		t.Fatal("expected no zone outside the rect")
	}
}

func TestHistoryNavigationIsDispatchedAsAction(t *testing.T) {
	r, ui := newRouter()
	r.HandleKey(keybind.Key{Code: "f"})
	r.HandleKey(keybind.Key{Code: "enter"})
	r.HandleKey(keybind.Key{Code: "g"})
	r.HandleKey(keybind.Key{Code: "enter"})

	data := ui.Window("input").Data.(*uicore.CommandInputData)
	require.Equal(t, []string{"f", "g"}, data.History)

	// "up"/"down" are bound keys (spec §3 KeyBind), not plain command-input
	// editing -- the normal layer hands them back as an Action for the
	// session to apply, rather than mutating CommandInputData itself.
	out := r.HandleKey(keybind.Key{Code: "up"})
	require.Equal(t, keybind.ActionHistoryPrev, out.Action)
	require.Empty(t, out.Command)
}
