package layout

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMigrateDirNonexistentSource(t *testing.T) {
	_, err := MigrateDir("/nonexistent/source/dir", t.TempDir(), true)
	if err == nil {
		t.Fatal("expected an error for a nonexistent source directory")
	}
}

func TestMigrateDirSourceIsFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.yaml")
	if err := os.WriteFile(file, []byte("windows: []"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := MigrateDir(file, t.TempDir(), true); err == nil {
		t.Fatal("expected an error when src is a file")
	}
}

func TestMigrateDirSkipsCurrentFormat(t *testing.T) {
	src := t.TempDir()
	content := "name: everyday\nterm_cols: 80\nterm_rows: 24\nschema: 2\nwindows: []\n"
	if err := os.WriteFile(filepath.Join(src, "layout.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := MigrateDir(src, t.TempDir(), true)
	if err != nil {
		t.Fatal(err)
	}
	if result.Skipped != 1 || len(result.Converted) != 0 {
		t.Fatalf("result = %+v, want 1 skipped", result)
	}
}

func TestMigrateDirConvertsLegacyFile(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	content := `name: everyday_80x24
windows:
  - name: mindstate
    kind: lefthand
    row: 0
    col: 0
    rows: 5
    cols: 20
    visible: true
`
	if err := os.WriteFile(filepath.Join(src, "everyday_80x24.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := MigrateDir(src, out, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Converted) != 1 {
		t.Fatalf("Converted = %+v, want 1 file", result.Converted)
	}
	ws := result.WindowsByFile["everyday_80x24.yaml"]
	if len(ws) != 1 {
		t.Fatalf("windows = %+v, want 1", ws)
	}
	if ws[0].Name != "mindState" {
		t.Fatalf("Name = %q, want canonicalized mindState", ws[0].Name)
	}
	if ws[0].Kind != "hand" {
		t.Fatalf("Kind = %q, want hand", ws[0].Kind)
	}

	if _, err := os.Stat(filepath.Join(out, "everyday_80x24.yaml")); err != nil {
		t.Fatalf("expected converted file to be written: %v", err)
	}
}

func TestMigrateDirDryRunWritesNothing(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	content := "windows:\n  - name: main\n    kind: text\n    visible: true\n"
	if err := os.WriteFile(filepath.Join(src, "old.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := MigrateDir(src, out, true); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(out, "old.yaml")); !os.IsNotExist(err) {
		t.Fatal("dry run should not write any output file")
	}
}

func TestInferSizeFromFilename(t *testing.T) {
	cases := []struct {
		name    string
		w, h    int
		wantOk  bool
	}{
		{"layout_120x40.yaml", 120, 40, true},
		{"custom.yaml", 0, 0, false},
		{"layout_120.yaml", 0, 0, false},
	}
	for _, c := range cases {
		w, h, ok := inferSizeFromFilename(c.name)
		if ok != c.wantOk || w != c.w || h != c.h {
			t.Fatalf("inferSizeFromFilename(%q) = %d, %d, %v; want %d, %d, %v", c.name, w, h, ok, c.w, c.h, c.wantOk)
		}
	}
}
