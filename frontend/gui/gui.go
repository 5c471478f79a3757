// Package gui implements frontend.Frontend on top of Ebiten, drawing a
// monospaced text grid only: concrete per-widget-kind rendering (gauges,
// doll art, sprite tiles) is the same spec Non-goal the TUI frontend
// observes. Grounded on jamesread-TheDarkStation's ebiten renderer package
// shape (Init/Update/Draw/Layout/Run), filled in for real instead of left
// as a placeholder.
package gui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/drake/vellum/frontend"
	"github.com/drake/vellum/uicore"
)

const (
	cellW = 7
	cellH = 13
)

// GUI adapts an Ebiten game loop to frontend.Frontend. Ebiten's RunGame
// must be called from the main OS thread, so unlike frontend/tui's
// Start/Done pair this frontend is driven by a blocking Run.
type GUI struct {
	mu       sync.Mutex
	cols     int
	rows     int
	events   []frontend.Event
	snapshot *uicore.UIState

	prevMouseDown bool
	closed        bool
}

// New constructs a GUI frontend sized to a default terminal-like grid.
func New() *GUI {
	g := &GUI{cols: 80, rows: 24}
	return g
}

// Run starts the Ebiten game loop. It blocks until the window closes or
// Cleanup is called; callers drive the session loop from a separate
// goroutine reading Render/PollEvents concurrently with this call.
func (g *GUI) Run() error {
	ebiten.SetWindowSize(g.cols*cellW, g.rows*cellH)
	ebiten.SetWindowTitle("vellum")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(g)
}

func (g *GUI) Size() (cols, rows int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cols, g.rows
}

func (g *GUI) PollEvents() []frontend.Event {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := g.events
	g.events = nil
	return out
}

func (g *GUI) Render(ui *uicore.UIState) {
	g.mu.Lock()
	g.snapshot = ui
	g.mu.Unlock()
}

func (g *GUI) Cleanup() {
	// Ebiten has no explicit teardown hook beyond returning
	// ebiten.Termination from Update, so Cleanup marks the frontend closed
	// and the next Update returns it; the OS window close event is handled
	// by Ebiten itself.
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
}

func (g *GUI) queue(ev frontend.Event) {
	g.events = append(g.events, ev)
}

// Update implements ebiten.Game: it samples keyboard/mouse state once per
// tick and translates it into frontend.Event values for the session loop
// to drain via PollEvents.
func (g *GUI) Update() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return ebiten.Termination
	}

	for _, r := range ebiten.AppendInputChars(nil) {
		g.queue(frontend.Event{Kind: frontend.EventKey, KeyCode: string(r)})
	}
	for _, k := range inpututil.AppendJustPressedKeys(nil) {
		if code, ok := keyName(k); ok {
			ctrl := ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight)
			mods := uint8(0)
			if ctrl {
				mods |= 1
				code = "ctrl+" + code
			}
			g.queue(frontend.Event{Kind: frontend.EventKey, KeyCode: code, KeyMods: mods})
		}
	}

	col, row := g.cursorCell()
	down := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	switch {
	case down && !g.prevMouseDown:
		g.queue(frontend.Event{Kind: frontend.EventMouse, Mouse: frontend.MouseDown, MouseRow: row, MouseCol: col})
	case !down && g.prevMouseDown:
		g.queue(frontend.Event{Kind: frontend.EventMouse, Mouse: frontend.MouseUp, MouseRow: row, MouseCol: col})
	case down:
		g.queue(frontend.Event{Kind: frontend.EventMouse, Mouse: frontend.MouseDrag, MouseRow: row, MouseCol: col})
	}
	g.prevMouseDown = down

	if _, dy := ebiten.Wheel(); dy != 0 {
		action := frontend.MouseWheelDown
		if dy > 0 {
			action = frontend.MouseWheelUp
		}
		g.queue(frontend.Event{Kind: frontend.EventMouse, Mouse: action, MouseRow: row, MouseCol: col})
	}

	return nil
}

func (g *GUI) cursorCell() (col, row int) {
	x, y := ebiten.CursorPosition()
	return x / cellW, y / cellH
}

// Draw implements ebiten.Game: it renders the latest UI snapshot as a
// monospaced text grid, one titled/bordered region per visible window.
func (g *GUI) Draw(screen *ebiten.Image) {
	g.mu.Lock()
	ui := g.snapshot
	g.mu.Unlock()
	if ui == nil {
		ebitenutil.DebugPrintAt(screen, "connecting...", 0, 0)
		return
	}
	for _, w := range ui.Windows() {
		if w == nil || !w.Visible {
			continue
		}
		g.drawWindow(screen, w, ui.FocusedWindow == w.Name)
	}
}

func (g *GUI) drawWindow(screen *ebiten.Image, w *uicore.Window, focused bool) {
	px, py := w.Rect.Col*cellW, w.Rect.Row*cellH
	title := w.Title
	if title == "" {
		title = w.Name
	}
	if focused {
		title = "[" + title + "]"
	}
	ebitenutil.DebugPrintAt(screen, title, px, py)

	body := windowBody(w)
	lines := strings.Split(body, "\n")
	maxLines := w.Rect.Rows - 1
	if maxLines < 0 {
		maxLines = 0
	}
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	for i, line := range lines {
		ebitenutil.DebugPrintAt(screen, line, px, py+(i+1)*cellH)
	}
}

func windowBody(w *uicore.Window) string {
	switch data := w.Data.(type) {
	case *uicore.TextContent:
		lines := make([]string, 0, len(data.Lines))
		for _, l := range data.Lines {
			lines = append(lines, l.PlainText())
		}
		return strings.Join(lines, "\n")
	case *uicore.TabbedTextContent:
		if len(data.Tabs) == 0 {
			return ""
		}
		active := data.Tabs[data.ActiveIndex]
		lines := make([]string, 0, len(active.Content.Lines))
		for _, l := range active.Content.Lines {
			lines = append(lines, l.PlainText())
		}
		return strings.Join(lines, "\n")
	case *uicore.CommandInputData:
		return data.Buffer
	case *uicore.ProgressData:
		return fmt.Sprintf("%d/%d", data.Current, data.Max)
	default:
		return ""
	}
}

// Layout implements ebiten.Game: the logical screen size tracks the
// window's pixel size divided into character cells, so resizing the OS
// window produces an EventResize the same way a terminal resize does.
func (g *GUI) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.mu.Lock()
	cols, rows := outsideWidth/cellW, outsideHeight/cellH
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	if cols != g.cols || rows != g.rows {
		g.cols, g.rows = cols, rows
		g.queue(frontend.Event{Kind: frontend.EventResize, Cols: cols, Rows: rows})
	}
	g.mu.Unlock()
	return outsideWidth, outsideHeight
}

func keyName(k ebiten.Key) (string, bool) {
	switch k {
	case ebiten.KeyEnter, ebiten.KeyKPEnter:
		return "enter", true
	case ebiten.KeyBackspace:
		return "backspace", true
	case ebiten.KeyDelete:
		return "delete", true
	case ebiten.KeyArrowLeft:
		return "left", true
	case ebiten.KeyArrowRight:
		return "right", true
	case ebiten.KeyArrowUp:
		return "up", true
	case ebiten.KeyArrowDown:
		return "down", true
	case ebiten.KeyHome:
		return "home", true
	case ebiten.KeyEnd:
		return "end", true
	case ebiten.KeyEscape:
		return "esc", true
	case ebiten.KeyTab:
		return "tab", true
	default:
		return "", false
	}
}
