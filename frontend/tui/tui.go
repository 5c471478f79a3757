// Package tui implements frontend.Frontend on top of bubbletea: a generic
// titled/bordered text-region renderer per window (concrete per-widget-kind
// rendering is an explicit spec Non-goal). Grounded on the teacher's
// BubbleTeaUI/Model Elm-loop wiring (ui/tui/tui.go, ui/tui/model.go),
// rewritten so the session drives a poll/render cycle instead of bubbletea
// owning the loop: events flow into an internal queue via Update, and
// Render submits a snapshot the model's View draws from.
package tui

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/drake/vellum/frontend"
	"github.com/drake/vellum/frontend/tui/style"
	"github.com/drake/vellum/uicore"
)

// TUI adapts a running tea.Program to frontend.Frontend.
type TUI struct {
	program *tea.Program
	model   *model

	mu       sync.Mutex
	cols     int
	rows     int
	exited   chan struct{}
	exitOnce sync.Once
}

// New constructs a TUI frontend; call Start to begin the bubbletea loop.
func New() *TUI {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 0
	ti.Focus()

	m := &model{
		events:   make(chan frontend.Event, 256),
		styles:   style.Default(),
		cols:     80,
		rows:     24,
		cmdInput: ti,
	}
	t := &TUI{model: m, cols: 80, rows: 24, exited: make(chan struct{})}
	t.program = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	m.owner = t
	return t
}

// Start runs the bubbletea program in a background goroutine and returns
// immediately, without waiting for the first screen. Errors from Run surface
// by closing the TUI's Done-equivalent (Cleanup is idempotent regardless).
func (t *TUI) Start() {
	go func() {
		_, _ = t.program.Run()
		t.exitOnce.Do(func() { close(t.exited) })
	}()
}

// Done reports when the underlying bubbletea program has exited (e.g. the
// user pressed the program's own quit key, or Cleanup ran).
func (t *TUI) Done() <-chan struct{} { return t.exited }

func (t *TUI) Size() (cols, rows int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cols, t.rows
}

func (t *TUI) setSize(cols, rows int) {
	t.mu.Lock()
	t.cols, t.rows = cols, rows
	t.mu.Unlock()
}

// PollEvents drains whatever input events Update has queued since the last
// call, never blocking.
func (t *TUI) PollEvents() []frontend.Event {
	var out []frontend.Event
	for {
		select {
		case ev := <-t.model.events:
			out = append(out, ev)
		default:
			return out
		}
	}
}

// Render hands the latest UI state snapshot to the model and asks
// bubbletea to redraw from it on its own schedule.
func (t *TUI) Render(ui *uicore.UIState) {
	t.model.snapshot.Store(ui)
	t.program.Send(renderMsg{})
}

// Cleanup stops the bubbletea program, restoring the terminal.
func (t *TUI) Cleanup() {
	t.program.Quit()
	t.exitOnce.Do(func() { close(t.exited) })
}

// renderMsg asks the model to re-render from its stored snapshot; it
// carries no data because the snapshot lives in model.snapshot.
type renderMsg struct{}

type model struct {
	owner    *TUI
	events   chan frontend.Event
	styles   style.Styles
	snapshot atomic.Pointer[uicore.UIState]
	cols     int
	rows     int

	// cmdInput renders the command-input widget's buffer/cursor, mirroring
	// the teacher's ui/tui/widget/input.go use of bubbles/textinput for the
	// same widget. Input routing itself stays in the frontend-agnostic
	// input package; this is display only.
	cmdInput textinput.Model
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch ev := msg.(type) {
	case tea.WindowSizeMsg:
		m.cols, m.rows = ev.Width, ev.Height
		if m.owner != nil {
			m.owner.setSize(ev.Width, ev.Height)
		}
		m.queue(frontend.Event{Kind: frontend.EventResize, Cols: ev.Width, Rows: ev.Height})
	case tea.KeyMsg:
		m.queue(frontend.Event{Kind: frontend.EventKey, KeyCode: ev.String()})
	case tea.MouseMsg:
		m.queue(mouseEvent(ev))
	case renderMsg:
		// Nothing to do beyond falling through to bubbletea's own re-View.
	}
	return m, nil
}

func (m *model) queue(ev frontend.Event) {
	select {
	case m.events <- ev:
	default:
		// Drop oldest by draining one slot; an unresponsive session
		// shouldn't wedge bubbletea's Update loop.
		select {
		case <-m.events:
		default:
		}
		select {
		case m.events <- ev:
		default:
		}
	}
}

func mouseEvent(ev tea.MouseMsg) frontend.Event {
	out := frontend.Event{Kind: frontend.EventMouse, MouseRow: ev.Y, MouseCol: ev.X, MouseCtrl: ev.Ctrl}
	switch ev.Action {
	case tea.MouseActionPress:
		out.Mouse = frontend.MouseDown
	case tea.MouseActionRelease:
		out.Mouse = frontend.MouseUp
	case tea.MouseActionMotion:
		out.Mouse = frontend.MouseDrag
	}
	switch ev.Button {
	case tea.MouseButtonWheelUp:
		out.Mouse = frontend.MouseWheelUp
	case tea.MouseButtonWheelDown:
		out.Mouse = frontend.MouseWheelDown
	}
	return out
}

func (m *model) View() string {
	ui := m.snapshot.Load()
	if ui == nil {
		return "connecting...\n"
	}
	var regions []string
	for _, w := range ui.Windows() {
		if w == nil || !w.Visible {
			continue
		}
		regions = append(regions, m.renderWindow(w))
	}
	return strings.Join(regions, "\n")
}

// renderWindow draws one window as a generic titled/bordered text region.
// Concrete per-widget-kind rendering (gauges, doll art, tab chrome) is an
// explicit Non-goal; every kind falls back to its plain-text projection.
func (m *model) renderWindow(w *uicore.Window) string {
	box := m.styles.Border
	if ui := m.snapshot.Load(); ui != nil && ui.FocusedWindow == w.Name {
		box = m.styles.FocusedBorder
	}
	title := w.Title
	if title == "" {
		title = w.Name
	}

	body := m.windowBody(w)
	content := box.
		Width(maxInt(w.Rect.Cols-2, 1)).
		Height(maxInt(w.Rect.Rows-2, 1)).
		Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, m.styles.Title.Render(title), content)
}

func (m *model) windowBody(w *uicore.Window) string {
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
		return m.renderCommandInput(data)
	case *uicore.ProgressData:
		return fmt.Sprintf("%d/%d", data.Current, data.Max)
	default:
		return ""
	}
}

// renderCommandInput drives a bubbles/textinput.Model purely for display:
// the buffer, cursor position, and (while navigating) history entry all
// live in uicore.CommandInputData, which input.Router mutates; this just
// mirrors that state into the widget each frame.
func (m *model) renderCommandInput(data *uicore.CommandInputData) string {
	value := data.Buffer
	if data.HistIdx >= 0 && data.HistIdx < len(data.History) {
		value = data.History[data.HistIdx]
	}
	m.cmdInput.SetValue(value)
	m.cmdInput.CursorEnd()
	if data.Cursor >= 0 && data.Cursor <= len(value) {
		m.cmdInput.SetCursor(data.Cursor)
	}
	return m.cmdInput.View()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
