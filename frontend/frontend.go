// Package frontend defines the minimal contract a renderer implements
// (spec §4.I): size query, event polling, rendering the UI core's state,
// and cleanup. The core never calls a terminal or GUI API directly; it
// only talks to this interface.
//
// Grounded on the teacher's ui.UI interface (now split: the headless state
// it used to own lives in uicore, and this package keeps only the
// rendering/input-source contract).
package frontend

import "github.com/drake/vellum/uicore"

// Frontend is implemented once per rendering backend (frontend/tui,
// frontend/gui).
type Frontend interface {
	// Size reports the current render surface in character cells.
	Size() (cols, rows int)
	// PollEvents returns any input events queued since the last call. It
	// must not block; an empty slice means nothing happened this tick.
	PollEvents() []Event
	// Render draws the given UI state. Concrete per-widget-kind rendering
	// beyond a generic titled/bordered text region is out of scope.
	Render(ui *uicore.UIState)
	// Cleanup restores the terminal/window to its pre-run state.
	Cleanup()
}

// EventKind closes the set of input events a Frontend can produce.
type EventKind int

const (
	EventKey EventKind = iota
	EventMouse
	EventResize
)

// MouseAction distinguishes press/release/drag/wheel within EventMouse.
type MouseAction int

const (
	MouseDown MouseAction = iota
	MouseUp
	MouseDrag
	MouseWheelUp
	MouseWheelDown
)

// Event is one input event handed to the session loop, frontend-agnostic.
type Event struct {
	Kind EventKind

	// EventKey
	KeyCode string
	KeyMods uint8

	// EventMouse
	MouseRow, MouseCol int
	Mouse              MouseAction
	MouseCtrl          bool

	// EventResize
	Cols, Rows int
}
