package msgproc

import (
	"testing"
	"time"

	"github.com/drake/vellum/gamestate"
	"github.com/drake/vellum/highlight"
	"github.com/drake/vellum/protocol"
	"github.com/drake/vellum/uicore"
)

func newProcessor() (*Processor, *uicore.UIState) {
	ui := uicore.New(80, 24)
	ui.AddWindow(&uicore.Window{
		Name: "main", Kind: uicore.WidgetText, Visible: true,
		Streams: []string{"main"}, Data: uicore.NewTextContent(100),
	})
	p := New(gamestate.New(), ui, nil)
	p.Now = func() time.Time { return time.Date(2026, 7, 29, 12, 0, 0, 0, time.UTC) }
	return p, ui
}

func line(s string) *protocol.StyledLine {
	return &protocol.StyledLine{Segments: []protocol.StyledSegment{{Text: s}}}
}

func TestRouteLineToSubscribedWindow(t *testing.T) {
	p, ui := newProcessor()
	p.Handle(protocol.Event{Type: protocol.EventStyledLine, Stream: "main", Line: line("a troll arrives")}, "")

	tc := ui.Window("main").Data.(*uicore.TextContent)
	if len(tc.Lines) != 1 || tc.Lines[0].PlainText() != "a troll arrives" {
		t.Fatalf("main window content = %+v", tc.Lines)
	}
}

func TestUnroutedLineFallsBackToMain(t *testing.T) {
	p, ui := newProcessor()
	p.Handle(protocol.Event{Type: protocol.EventStyledLine, Stream: "death", Line: line("you have died")}, "")

	tc := ui.Window("main").Data.(*uicore.TextContent)
	if len(tc.Lines) != 1 {
		t.Fatalf("expected fallback line in main, got %d lines", len(tc.Lines))
	}
}

func TestTimestampPrefixAppliedWhenRequested(t *testing.T) {
	p, ui := newProcessor()
	w := ui.Window("main")
	w.Timestamps = true

	p.Handle(protocol.Event{Type: protocol.EventStyledLine, Stream: "main", Line: line("hello")}, "")

	tc := w.Data.(*uicore.TextContent)
	got := tc.Lines[0].PlainText()
	if got != "[12:00:00] hello" {
		t.Fatalf("PlainText() = %q, want timestamp prefix", got)
	}
}

func TestVitalsUpdatesStateAndProgressWindow(t *testing.T) {
	p, ui := newProcessor()
	ui.AddWindow(&uicore.Window{
		Name: "healthbar", Kind: uicore.WidgetProgress, Visible: true,
		Data: &uicore.ProgressData{VitalID: "health"},
	})

	p.Handle(protocol.Event{Type: protocol.EventVitals, VitalID: "health", Current: 80, Max: 100}, "")

	g, ok := p.Game.Vital("health")
	if !ok || g.Current != 80 || g.Max != 100 {
		t.Fatalf("gamestate vital = %+v, ok=%v", g, ok)
	}
	pd := ui.Window("healthbar").Data.(*uicore.ProgressData)
	if pd.Current != 80 || pd.Max != 100 {
		t.Fatalf("progress window not refreshed: %+v", pd)
	}
}

func TestCountdownStartsTimer(t *testing.T) {
	p, _ := newProcessor()
	p.Handle(protocol.Event{Type: protocol.EventCountdown, CountdownID: "roundtime", DurationSecs: 5}, "")

	remaining := p.Game.Remaining("roundtime", p.Now())
	if remaining != 5*time.Second {
		t.Fatalf("Remaining = %v, want 5s", remaining)
	}
}

func TestStreamWindowCreatedOnceAndNotClobbered(t *testing.T) {
	p, ui := newProcessor()
	p.Handle(protocol.Event{Type: protocol.EventStreamWindow, WindowName: "combat", WindowStreams: []string{"combat"}}, "")
	w := ui.Window("combat")
	if w == nil {
		t.Fatal("expected combat window to be created")
	}
	w.Rect.Row = 5 // simulate user repositioning

	p.Handle(protocol.Event{Type: protocol.EventStreamWindow, WindowName: "combat", WindowStreams: []string{"combat"}}, "")
	if ui.Window("combat").Rect.Row != 5 {
		t.Fatal("re-declaring an existing stream window should not clobber its position")
	}
}

func TestDialogOpenAndClose(t *testing.T) {
	p, ui := newProcessor()
	p.Handle(protocol.Event{Type: protocol.EventDialog, DialogID: "inv", DialogHTML: "<html/>"}, "")
	if ui.ActiveDialog == nil || ui.ActiveDialog.ID != "inv" {
		t.Fatal("expected inv dialog to open")
	}

	p.Handle(protocol.Event{Type: protocol.EventDialogClose, DialogID: "inv"}, "")
	if ui.ActiveDialog != nil {
		t.Fatal("expected dialog to close")
	}
}

func TestMenuEventPushesPopup(t *testing.T) {
	p, ui := newProcessor()
	p.Handle(protocol.Event{Type: protocol.EventMenu, MenuItems: []protocol.MenuItem{{Label: "Open", Command: "open box"}}}, "")
	if ui.Popups.Depth() != 1 {
		t.Fatalf("Popups.Depth() = %d, want 1", ui.Popups.Depth())
	}
}

func TestRawLogReceivesEveryLine(t *testing.T) {
	p, _ := newProcessor()
	var got []string
	p.Log = rawLoggerFunc(func(s string) { got = append(got, s) })

	p.Handle(protocol.Event{Type: protocol.EventStyledLine, Stream: "main", Line: line("x")}, "<pushStream id=\"main\"/>x")
	if len(got) != 1 || got[0] == "" {
		t.Fatalf("expected raw line logged, got %v", got)
	}
}

func TestCuesForwardedToSink(t *testing.T) {
	ui := uicore.New(80, 24)
	ui.AddWindow(&uicore.Window{Name: "main", Kind: uicore.WidgetText, Streams: []string{"main"}, Data: uicore.NewTextContent(10)})
	table := highlight.NewTable([]*highlight.Pattern{
		{Match: "troll", Kind: highlight.MatchSubstring, SoundFile: "troll.wav"},
	}, nil)
	p := New(gamestate.New(), ui, table)
	var played []highlight.Cue
	p.Cues = cueSinkFunc(func(c highlight.Cue) { played = append(played, c) })

	p.Handle(protocol.Event{Type: protocol.EventStyledLine, Stream: "main", Line: line("a troll arrives")}, "")

	if len(played) != 1 || played[0].SoundFile != "troll.wav" {
		t.Fatalf("played = %+v", played)
	}
}

type rawLoggerFunc func(string)

func (f rawLoggerFunc) Write(s string) { f(s) }

type cueSinkFunc func(highlight.Cue)

func (f cueSinkFunc) Play(c highlight.Cue) { f(c) }
