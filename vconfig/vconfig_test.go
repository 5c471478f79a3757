package vconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDocumentMissingFileYieldsDefaults(t *testing.T) {
	dir := t.TempDir()
	doc, err := loadDocument(filepath.Join(dir, "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if doc.UI.Theme != "" {
		t.Fatalf("expected zero-value document, got %+v", doc)
	}
}

func TestLoadDocumentRejectsUnknownField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	writeFile(t, path, "colors:\n  foo: red\nnonsense_field: true\n")

	if _, err := loadDocument(path); err == nil {
		t.Fatal("expected schema validation error for unknown field")
	}
}

func TestLoadDocumentParsesValidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "good.yaml")
	writeFile(t, path, "ui:\n  theme: solarized\n  scrollback_lines: 2000\nconnection:\n  game: prime\n")

	doc, err := loadDocument(path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.UI.Theme != "solarized" || doc.UI.ScrollbackLines != 2000 {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if doc.Connection.Game != "prime" {
		t.Fatalf("unexpected connection: %+v", doc.Connection)
	}
}

func TestMergeScopeTrackingCommonOnly(t *testing.T) {
	common := &Document{}
	common.UI.Theme = "dark"
	s := merge(common, nil)

	if s.Theme.Value != "dark" || s.Theme.Scope != ScopeCommon {
		t.Fatalf("Theme = %+v, want dark/common", s.Theme)
	}
	if s.ScrollbackLines.Scope != ScopeDefault {
		t.Fatalf("ScrollbackLines scope = %v, want default (absent in both)", s.ScrollbackLines.Scope)
	}
}

func TestMergeCharacterOverridesCommon(t *testing.T) {
	common := &Document{}
	common.UI.Theme = "dark"
	overlay := &Document{}
	overlay.UI.Theme = "light"

	s := merge(common, overlay)
	if s.Theme.Value != "light" || s.Theme.Scope != ScopeCharacter {
		t.Fatalf("Theme = %+v, want light/character", s.Theme)
	}
}

func TestMergeAbsentInBothYieldsDefaultScope(t *testing.T) {
	s := merge(&Document{}, &Document{})
	if s.ScrollbackLines.Scope != ScopeDefault || s.ScrollbackLines.Value != defaultScrollback {
		t.Fatalf("ScrollbackLines = %+v, want default/%d", s.ScrollbackLines, defaultScrollback)
	}
}

func TestMergeColorsByKeyScope(t *testing.T) {
	common := &Document{Colors: map[string]string{"health": "red", "mana": "blue"}}
	overlay := &Document{Colors: map[string]string{"health": "crimson"}}

	s := merge(common, overlay)
	if s.Colors["health"].Value != "crimson" || s.Colors["health"].Scope != ScopeCharacter {
		t.Fatalf("health color = %+v, want crimson/character", s.Colors["health"])
	}
	if s.Colors["mana"].Value != "blue" || s.Colors["mana"].Scope != ScopeCommon {
		t.Fatalf("mana color = %+v, want blue/common", s.Colors["mana"])
	}
}
