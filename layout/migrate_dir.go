package layout

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DirResult summarizes a MigrateDir run, mirroring migrate.rs's
// MigrationResult (succeeded/failed/skipped counts plus per-file detail).
type DirResult struct {
	Converted     []string
	Skipped       int
	Errors        map[string]error
	WindowsByFile map[string][]WindowDef
}

var sizeFromName = regexp.MustCompile(`_(\d+)x(\d+)$`)

// MigrateDir converts every non-current-schema layout file in src into the
// current schema and writes the result into out, one file per input
// (skipped in dry-run mode). Grounded directly on migrate.rs's
// run_migration: walk src, skip files already in the current format,
// convert the rest, collect per-file successes/failures rather than
// aborting the whole batch on the first bad file.
func MigrateDir(src, out string, dryRun bool) (*DirResult, error) {
	info, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("layout: source directory does not exist: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("layout: source path is not a directory: %s", src)
	}
	if !dryRun {
		if err := os.MkdirAll(out, 0o755); err != nil {
			return nil, fmt.Errorf("layout: creating output directory: %w", err)
		}
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return nil, fmt.Errorf("layout: reading source directory: %w", err)
	}

	result := &DirResult{Errors: map[string]error{}, WindowsByFile: map[string][]WindowDef{}}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".yaml" {
			continue
		}
		path := filepath.Join(src, e.Name())

		data, err := os.ReadFile(path)
		if err != nil {
			result.Errors[e.Name()] = err
			continue
		}
		if isCurrentLayout(data) {
			result.Skipped++
			continue
		}

		var l Layout
		if err := yaml.Unmarshal(data, &l); err != nil {
			result.Errors[e.Name()] = fmt.Errorf("parsing: %w", err)
			continue
		}
		if l.TermCols == 0 || l.TermRows == 0 {
			if w, h, ok := inferSizeFromFilename(e.Name()); ok {
				if l.TermCols == 0 {
					l.TermCols = w
				}
				if l.TermRows == 0 {
					l.TermRows = h
				}
			}
		}
		Migrate(&l)

		if !dryRun {
			encoded, err := yaml.Marshal(l)
			if err != nil {
				result.Errors[e.Name()] = fmt.Errorf("serializing: %w", err)
				continue
			}
			if err := os.WriteFile(filepath.Join(out, e.Name()), encoded, 0o644); err != nil {
				result.Errors[e.Name()] = fmt.Errorf("writing: %w", err)
				continue
			}
		}

		result.Converted = append(result.Converted, e.Name())
		result.WindowsByFile[e.Name()] = l.Windows
	}
	return result, nil
}

// isCurrentLayout mirrors migrate.rs's is_current_layout: a current-schema
// file declares its schema explicitly, so a cheap string search avoids a
// full parse for the common "nothing to do" case.
func isCurrentLayout(data []byte) bool {
	return strings.Contains(string(data), "schema:")
}

func inferSizeFromFilename(name string) (w, h int, ok bool) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	m := sizeFromName.FindStringSubmatch(stem)
	if m == nil {
		return 0, 0, false
	}
	wi, err1 := strconv.Atoi(m[1])
	hi, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return wi, hi, true
}
