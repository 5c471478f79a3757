// Package uicore is the frontend-agnostic UI state core: typed windows,
// input mode, popup-menu stack, dialogs, and ephemeral windows.
//
// This rebuilds the teacher's bubbletea-coupled ui package into a headless
// contract; ui/interface.go's UI interface is the direct ancestor of the
// Frontend type this package hands rendering-relevant state to. No package
// in this module imports a terminal or GUI library from uicore itself.
package uicore

// WidgetKind is the closed set of window types (spec §3 Window).
type WidgetKind int

const (
	WidgetText WidgetKind = iota
	WidgetTabbedText
	WidgetRoom
	WidgetInventory
	WidgetCommandInput
	WidgetProgress
	WidgetCountdown
	WidgetCompass
	WidgetIndicator
	WidgetDashboard
	WidgetInjuryDoll
	WidgetHand
	WidgetActiveEffects
	WidgetPerformance
	WidgetTargets
	WidgetPlayers
	WidgetContainer
	WidgetSpacer
	WidgetQuickbar
	WidgetSpells
	WidgetPerception
	WidgetExperience
)

// Rect is a window's screen rectangle.
type Rect struct {
	Row, Col, Rows, Cols int
}

// Clamp saturates the rectangle into the given terminal dimensions: a
// window pushed off-screen is resized/moved to fit rather than rejected
// (spec §4.E invariant).
func (r Rect) Clamp(termCols, termRows int) Rect {
	out := r
	if out.Cols > termCols {
		out.Cols = termCols
	}
	if out.Rows > termRows {
		out.Rows = termRows
	}
	if out.Cols < 1 {
		out.Cols = 1
	}
	if out.Rows < 1 {
		out.Rows = 1
	}
	if out.Col+out.Cols > termCols {
		out.Col = termCols - out.Cols
	}
	if out.Row+out.Rows > termRows {
		out.Row = termRows - out.Rows
	}
	if out.Col < 0 {
		out.Col = 0
	}
	if out.Row < 0 {
		out.Row = 0
	}
	return out
}

// BorderKind selects decorative borders around a window.
type BorderKind int

const (
	BorderNone BorderKind = iota
	BorderSingle
	BorderDouble
)

// Window is the live, polymorphic window state. Base is present on every
// window; Data carries kind-specific fields via the tagged-union pattern
// described in spec §9 ("pattern-matching on the variant replaces
// inheritance").
type Window struct {
	Name    string
	Kind    WidgetKind
	Rect    Rect
	Border  BorderKind
	Title   string
	Visible bool
	Locked  bool

	MinRows, MinCols int
	MaxRows, MaxCols int // 0 = unbounded

	// Streams lists the logical streams a Text window subscribes to.
	// TabbedText windows instead carry subscriptions per-tab (TabDef.Streams).
	Streams []string
	// Timestamps requests the message processor prefix routed lines with
	// a timestamp before appending them (spec §4.D).
	Timestamps bool

	Data any // one of the *Data types in content.go, matching Kind
}

// SubscribesTo reports whether a Text window is subscribed to stream.
func (w *Window) SubscribesTo(stream string) bool {
	for _, s := range w.Streams {
		if s == stream {
			return true
		}
	}
	return false
}

// Invalidate* flags live on the content stores themselves (generation
// counters) rather than on Window, since different widget kinds have
// different notions of "dirty" -- a Text window is dirty when its
// generation advances, a Progress window whenever its value changes. The
// UI state core exposes per-kind accessors in state.go.
