package layout

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/drake/vellum/uicore"
)

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	ui := uicore.New(80, 24)
	ui.AddWindow(&uicore.Window{Name: "main", Kind: uicore.WidgetText, Rect: uicore.Rect{Rows: 23, Cols: 80}, Visible: true, Streams: []string{"main"}, Data: uicore.NewTextContent(100)})

	if err := store.Save("everyday", 80, 24, ui.Windows()); err != nil {
		t.Fatal(err)
	}

	l, err := store.Load("everyday")
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Windows) != 1 || l.Windows[0].Name != "main" {
		t.Fatalf("loaded layout = %+v", l)
	}
	if l.Schema != CurrentSchema {
		t.Fatalf("Schema = %d, want %d", l.Schema, CurrentSchema)
	}
}

func TestBestPrefersExactMatch(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewStore(dir)
	store.Save("small", 80, 24, nil)
	store.Save("big", 160, 48, nil)

	l, err := store.Best(80, 24)
	if err != nil {
		t.Fatal(err)
	}
	if l.Name != "small" {
		t.Fatalf("Best = %q, want small", l.Name)
	}
}

func TestBestFallsBackToNearestSmaller(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewStore(dir)
	store.Save("small", 80, 24, nil)
	store.Save("medium", 100, 30, nil)

	l, err := store.Best(200, 60)
	if err != nil {
		t.Fatal(err)
	}
	if l.Name != "medium" {
		t.Fatalf("Best = %q, want medium (largest that still fits)", l.Name)
	}
}

func TestBestErrorsWhenNothingFits(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewStore(dir)
	store.Save("huge", 300, 100, nil)

	if _, err := store.Best(80, 24); err == nil {
		t.Fatal("expected an error when no stored layout fits")
	}
}

func TestDefaultHasMainAndCommandInput(t *testing.T) {
	l := Default(80, 24)
	if len(l.Windows) != 2 {
		t.Fatalf("Default windows = %d, want 2", len(l.Windows))
	}
	if l.Windows[0].Name != "main" || l.Windows[1].Name != "input" {
		t.Fatalf("Default windows = %+v", l.Windows)
	}
	total := l.Windows[0].Rows + l.Windows[1].Rows
	if total != 24 {
		t.Fatalf("rows sum to %d, want 24", total)
	}
}

func TestMigrateCanonicalizesNamesAndKinds(t *testing.T) {
	l := &Layout{
		TermCols: 80, TermRows: 24,
		Windows: []WindowDef{
			{Name: "mindstate", Kind: "progress"},
			{Name: "lefthandwin", Kind: "lefthand"},
			{Name: "chat", Kind: "tabbed"},
		},
	}
	Migrate(l)

	if l.Windows[0].Name != "mindState" {
		t.Fatalf("name alias = %q, want mindState", l.Windows[0].Name)
	}
	if l.Windows[1].Kind != "hand" {
		t.Fatalf("kind alias = %q, want hand", l.Windows[1].Kind)
	}
	if l.Windows[2].Kind != "tabbed_text" {
		t.Fatalf("kind alias = %q, want tabbed_text", l.Windows[2].Kind)
	}
	if l.Schema != CurrentSchema {
		t.Fatalf("Schema after migrate = %d, want %d", l.Schema, CurrentSchema)
	}
}

func TestApplyPopulatesUIState(t *testing.T) {
	l := Default(100, 30)
	ui := uicore.New(80, 24)
	Apply(l, ui)

	if ui.TermCols != 100 || ui.TermRows != 30 {
		t.Fatalf("terminal size not applied: %dx%d", ui.TermCols, ui.TermRows)
	}
	if ui.Window("main") == nil || ui.Window("input") == nil {
		t.Fatal("expected main and input windows after Apply")
	}
}

func TestSaveRoundTripIsStable(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	ui := uicore.New(80, 24)
	ui.AddWindow(&uicore.Window{Name: "main", Kind: uicore.WidgetText, Rect: uicore.Rect{Rows: 23, Cols: 80}, Visible: true, Streams: []string{"main"}, Data: uicore.NewTextContent(100)})

	require.NoError(t, store.Save("roundtrip", 80, 24, ui.Windows()))
	first, err := store.Load("roundtrip")
	require.NoError(t, err)

	require.NoError(t, store.Save("roundtrip", 80, 24, ui.Windows()))
	second, err := store.Load("roundtrip")
	require.NoError(t, err)

	require.Equal(t, first, second, "saving the same window set twice should produce identical layouts")
}
