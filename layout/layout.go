// Package layout stores and loads named window arrangements: a layout is
// a list of window definitions plus the terminal size it was captured at.
// load resolves the best-fitting layout for the current terminal; save
// persists the current set, preserving name uniqueness.
//
// Grounded on the teacher's ui/tui/layout/engine.go, generalized from its
// two-dock height-sum sizing (top dock, viewport, bottom dock) to
// arbitrary (row, col, rows, cols) window rectangles -- the dock engine's
// "total available size" bookkeeping becomes the exact/nearest-smaller
// terminal-size match below.
package layout

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/drake/vellum/uicore"
)

// WindowDef is the serializable form of a uicore.Window.
type WindowDef struct {
	Name    string        `yaml:"name"`
	Kind    string        `yaml:"kind"`
	Row     int           `yaml:"row"`
	Col     int           `yaml:"col"`
	Rows    int           `yaml:"rows"`
	Cols    int           `yaml:"cols"`
	Border  string        `yaml:"border,omitempty"`
	Title   string        `yaml:"title,omitempty"`
	Visible bool          `yaml:"visible"`
	Locked  bool          `yaml:"locked,omitempty"`
	Streams []string      `yaml:"streams,omitempty"`
}

// Layout is a named, terminal-size-tagged window arrangement.
type Layout struct {
	Name     string      `yaml:"name"`
	TermCols int         `yaml:"term_cols"`
	TermRows int         `yaml:"term_rows"`
	Windows  []WindowDef `yaml:"windows"`

	// Schema is absent on legacy files; its presence marks a file as
	// already canonicalized so repeated loads don't re-migrate it.
	Schema int `yaml:"schema,omitempty"`
}

// CurrentSchema is bumped whenever the on-disk shape changes in a way
// Migrate needs to know about.
const CurrentSchema = 2

// Store loads and saves layouts under a directory (one YAML file per
// named layout).
type Store struct {
	Dir string
}

// NewStore returns a Store rooted at dir, creating it if necessary.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("layout: creating store dir: %w", err)
	}
	return &Store{Dir: dir}, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.Dir, name+".yaml")
}

// List returns the names of all stored layouts.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".yaml" {
			names = append(names, e.Name()[:len(e.Name())-len(".yaml")])
		}
	}
	sort.Strings(names)
	return names, nil
}

// Load reads the layout stored under name (each name maps to exactly one
// file, holding the most recently saved size), migrating it if it predates
// CurrentSchema.
func (s *Store) Load(name string) (*Layout, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return nil, err
	}
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("layout: parsing %q: %w", name, err)
	}
	if l.Schema < CurrentSchema {
		Migrate(&l)
	}
	return &l, nil
}

// Save serializes the given windows as a named layout at the current
// terminal size, overwriting any existing layout with that name --
// save(name, ...) always means "this name now means this arrangement",
// which trivially preserves name uniqueness since it's a map by name.
func (s *Store) Save(name string, termCols, termRows int, windows []*uicore.Window) error {
	l := Layout{Name: name, TermCols: termCols, TermRows: termRows, Schema: CurrentSchema}
	for _, w := range windows {
		l.Windows = append(l.Windows, fromWindow(w))
	}
	data, err := yaml.Marshal(l)
	if err != nil {
		return fmt.Errorf("layout: serializing %q: %w", name, err)
	}
	return os.WriteFile(s.path(name), data, 0o644)
}

// Best finds the layout among all stored layouts whose terminal size best
// fits (termCols, termRows): exact match preferred, then the largest
// layout that fits within (nearest-smaller fallback), per spec.
func (s *Store) Best(termCols, termRows int) (*Layout, error) {
	names, err := s.List()
	if err != nil || len(names) == 0 {
		return nil, fmt.Errorf("layout: no stored layouts")
	}

	var best *Layout
	var bestArea int
	for _, name := range names {
		l, err := s.Load(name)
		if err != nil {
			continue
		}
		if l.TermCols == termCols && l.TermRows == termRows {
			return l, nil
		}
		if l.TermCols <= termCols && l.TermRows <= termRows {
			area := l.TermCols * l.TermRows
			if best == nil || area > bestArea {
				best, bestArea = l, area
			}
		}
	}
	if best == nil {
		return nil, fmt.Errorf("layout: no layout fits %dx%d", termCols, termRows)
	}
	return best, nil
}

// Default returns the fallback layout used when no stored layout fits:
// a single "main" text window filling the screen above a one-row command
// input (spec §4.F "On failure, creates a default layout with just main
// and a command input").
func Default(termCols, termRows int) *Layout {
	inputRows := 1
	mainRows := termRows - inputRows
	if mainRows < 1 {
		mainRows = 1
	}
	return &Layout{
		Name: "default", TermCols: termCols, TermRows: termRows, Schema: CurrentSchema,
		Windows: []WindowDef{
			{Name: "main", Kind: "text", Row: 0, Col: 0, Rows: mainRows, Cols: termCols, Visible: true, Streams: []string{"main"}},
			{Name: "input", Kind: "command_input", Row: mainRows, Col: 0, Rows: inputRows, Cols: termCols, Visible: true},
		},
	}
}

var kindNames = map[string]uicore.WidgetKind{
	"text": uicore.WidgetText, "tabbed_text": uicore.WidgetTabbedText,
	"room": uicore.WidgetRoom, "inventory": uicore.WidgetInventory,
	"command_input": uicore.WidgetCommandInput, "progress": uicore.WidgetProgress,
	"countdown": uicore.WidgetCountdown, "compass": uicore.WidgetCompass,
	"indicator": uicore.WidgetIndicator, "dashboard": uicore.WidgetDashboard,
	"injury_doll": uicore.WidgetInjuryDoll, "hand": uicore.WidgetHand,
	"active_effects": uicore.WidgetActiveEffects, "performance": uicore.WidgetPerformance,
	"targets": uicore.WidgetTargets, "players": uicore.WidgetPlayers,
	"container": uicore.WidgetContainer, "spacer": uicore.WidgetSpacer,
	"quickbar": uicore.WidgetQuickbar, "spells": uicore.WidgetSpells,
	"perception": uicore.WidgetPerception, "experience": uicore.WidgetExperience,
}

var kindStrings = func() map[uicore.WidgetKind]string {
	out := make(map[uicore.WidgetKind]string, len(kindNames))
	for s, k := range kindNames {
		out[k] = s
	}
	return out
}()

func fromWindow(w *uicore.Window) WindowDef {
	border := ""
	switch w.Border {
	case uicore.BorderSingle:
		border = "single"
	case uicore.BorderDouble:
		border = "double"
	}
	return WindowDef{
		Name: w.Name, Kind: kindStrings[w.Kind],
		Row: w.Rect.Row, Col: w.Rect.Col, Rows: w.Rect.Rows, Cols: w.Rect.Cols,
		Border: border, Title: w.Title, Visible: w.Visible, Locked: w.Locked,
		Streams: w.Streams,
	}
}

// ToWindow converts a serialized definition back into a live window,
// falling back to WidgetText for an unrecognized kind string rather than
// dropping the window outright.
func (d WindowDef) ToWindow() *uicore.Window {
	kind, ok := kindNames[d.Kind]
	if !ok {
		kind = uicore.WidgetText
	}
	var border uicore.BorderKind
	switch d.Border {
	case "single":
		border = uicore.BorderSingle
	case "double":
		border = uicore.BorderDouble
	}
	w := &uicore.Window{
		Name: d.Name, Kind: kind,
		Rect:    uicore.Rect{Row: d.Row, Col: d.Col, Rows: d.Rows, Cols: d.Cols},
		Border:  border,
		Title:   d.Title,
		Visible: d.Visible,
		Locked:  d.Locked,
		Streams: d.Streams,
	}
	w.Data = defaultData(kind)
	return w
}

func defaultData(kind uicore.WidgetKind) any {
	switch kind {
	case uicore.WidgetText, uicore.WidgetRoom, uicore.WidgetInventory, uicore.WidgetPlayers, uicore.WidgetTargets:
		return uicore.NewTextContent(1000)
	case uicore.WidgetTabbedText:
		return uicore.NewTabbedTextContent(1000)
	case uicore.WidgetCommandInput:
		return &uicore.CommandInputData{HistIdx: -1}
	case uicore.WidgetProgress:
		return &uicore.ProgressData{}
	case uicore.WidgetCountdown:
		return &uicore.CountdownData{}
	case uicore.WidgetCompass:
		return &uicore.CompassData{}
	case uicore.WidgetIndicator:
		return &uicore.IndicatorData{}
	case uicore.WidgetHand:
		return &uicore.HandData{}
	case uicore.WidgetContainer:
		return &uicore.ContainerData{}
	case uicore.WidgetQuickbar:
		return &uicore.QuickbarData{}
	default:
		return nil
	}
}

// Apply replaces the live window set in ui with the layout's windows.
func Apply(l *Layout, ui *uicore.UIState) {
	ui.Resize(l.TermCols, l.TermRows)
	for _, w := range ui.Windows() {
		ui.RemoveWindow(w.Name)
	}
	for _, d := range l.Windows {
		ui.AddWindow(d.ToWindow())
	}
}
