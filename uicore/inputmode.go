package uicore

// InputModeKind is the tagged-union discriminant over UIState.InputMode
// (spec §3 UIState.input_mode).
type InputModeKind int

const (
	ModeNormal InputModeKind = iota
	ModeMenu
	ModeDialog
	ModeSearch
	ModeWindowEditor
	ModeHighlightBrowser
	ModeHighlightForm
	ModeKeybindBrowser
	ModeKeybindForm
	ModeColorPaletteBrowser
	ModeColorForm
	ModeSpellColorsBrowser
	ModeSpellColorForm
	ModeUIColorsBrowser
	ModeThemeBrowser
	ModeThemeEditor
	ModeSettingsEditor
	ModeIndicatorTemplateEditor
)

// InputMode is the tagged union itself; Overlay carries overlay-specific
// state for the overlay-flavored kinds and is nil for Normal/Menu/Dialog.
type InputMode struct {
	Kind    InputModeKind
	Overlay Overlay
}

// Overlay is the state contract for a modal form/browser/editor (spec §1:
// "only the state contract is specified" -- the form UI itself is an
// external collaborator). HandleAction returns the outcome of delivering
// one action to the overlay.
type Overlay interface {
	// HandleAction processes a MenuAction-vocabulary action routed to the
	// overlay by the input router and reports what should happen next.
	HandleAction(action MenuAction) OverlayResult
}

// OverlayResult is what an overlay reports after consuming one input.
type OverlayResult int

const (
	OverlayConsumedRemain OverlayResult = iota
	OverlayConsumedClose
	OverlayUnconsumed
)

// MenuAction is the unified action vocabulary overlays and popup menus
// route through (spec §4.G: "save/cancel/delete action kinds routed
// through a unified MenuAction vocabulary").
type MenuAction struct {
	Kind MenuActionKind
	Arg  string
}

// MenuActionKind closes the set of structural menu/overlay actions.
type MenuActionKind int

const (
	MenuActionNavigateUp MenuActionKind = iota
	MenuActionNavigateDown
	MenuActionSelect
	MenuActionCancel
	MenuActionSave
	MenuActionDelete
	MenuActionTextInput
)
