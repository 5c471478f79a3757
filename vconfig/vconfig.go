// Package vconfig implements the merged common+character settings tree
// (spec §3 Config, §8 "Merge(common, character-overlay) scope tracking"):
// colors, highlights, keybinds, UI options, connection info, and character
// identity, each field tagged with the file it came from.
//
// Grounded on the teacher's config.Dir() XDG/APPDATA resolution pattern
// and the pack's ekain-fr-h2 YAML-settings shape; schema validation
// follows asynkron-GoAgent's gojsonschema.Validate usage.
package vconfig

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/drake/vellum/config"
	"github.com/drake/vellum/highlight"
	"github.com/drake/vellum/keybind"
)

// Scope names the file a setting was resolved from.
type Scope string

const (
	ScopeCommon    Scope = "common"
	ScopeCharacter Scope = "character"
	ScopeDefault   Scope = "default"
)

// Document is the on-disk shape of either the common settings file or a
// character overlay; both files share this schema, matching the spec's
// "global + per-character merged settings" model.
type Document struct {
	Colors    map[string]string    `yaml:"colors,omitempty"`
	Highlights []highlight.Pattern `yaml:"highlights,omitempty"`
	Keybinds  []keybind.Bind       `yaml:"keybinds,omitempty"`

	UI struct {
		Theme           string `yaml:"theme,omitempty"`
		ScrollbackLines int    `yaml:"scrollback_lines,omitempty"`
		TTSEnabled      bool   `yaml:"tts_enabled,omitempty"`
	} `yaml:"ui,omitempty"`

	Connection struct {
		Direct bool   `yaml:"direct,omitempty"`
		Game   string `yaml:"game,omitempty"`
		Host   string `yaml:"host,omitempty"`
		Port   int    `yaml:"port,omitempty"`
	} `yaml:"connection,omitempty"`

	Character struct {
		Name string `yaml:"name,omitempty"`
	} `yaml:"character,omitempty"`
}

// Settings is the immutable, merged result: every leaf paired with the
// scope it was resolved from, per spec §8's round-trip invariant.
type Settings struct {
	Colors     map[string]ScopedValue[string]
	Highlights ScopedValue[[]highlight.Pattern]
	Keybinds   ScopedValue[[]keybind.Bind]

	Theme           ScopedValue[string]
	ScrollbackLines ScopedValue[int]
	TTSEnabled      ScopedValue[bool]

	Direct ScopedValue[bool]
	Game   ScopedValue[string]
	Host   ScopedValue[string]
	Port   ScopedValue[int]

	CharacterName ScopedValue[string]
}

// ScopedValue pairs a resolved value with the scope it came from.
type ScopedValue[T any] struct {
	Value T
	Scope Scope
}

const (
	defaultScrollback = 5000
	defaultTheme      = "default"
)

// Load reads the common settings file and, if character is non-empty, its
// overlay, validates each against the generated schema, and merges them
// with character taking precedence over common taking precedence over
// built-in defaults.
func Load(character string) (*Settings, error) {
	loadDotEnv()

	common, err := loadDocument(config.CommonFile())
	if err != nil {
		return nil, fmt.Errorf("vconfig: loading common settings: %w", err)
	}

	var overlay *Document
	if character != "" {
		overlay, err = loadDocument(config.CharacterFile(character))
		if err != nil {
			return nil, fmt.Errorf("vconfig: loading character settings for %q: %w", character, err)
		}
	}

	return merge(common, overlay), nil
}

// loadDotEnv optionally seeds VELLUM_ACCOUNT/VELLUM_PASSWORD from a .env
// file in the config directory, ahead of CLI flags (spec §6 resolution
// order: CLI -> config -> interactive prompt).
func loadDotEnv() {
	_ = godotenv.Load(config.Dir() + "/.env")
}

// loadDocument reads and schema-validates one YAML file. A missing file
// yields an empty (all-default) Document rather than an error.
func loadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Document{}, nil
		}
		return nil, err
	}

	var generic map[string]any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := validateAgainstSchema(generic); err != nil {
		return nil, fmt.Errorf("%s failed schema validation: %w", path, err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &doc, nil
}

func validateAgainstSchema(doc map[string]any) error {
	loader, err := schemaLoader()
	if err != nil {
		return fmt.Errorf("loading schema: %w", err)
	}
	jsonable, err := toJSONable(doc)
	if err != nil {
		return err
	}
	result, err := gojsonschema.Validate(loader, gojsonschema.NewGoLoader(jsonable))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%d issue(s): %v", len(msgs), msgs)
}

// toJSONable round-trips a YAML-decoded map[string]any through JSON so
// gojsonschema (which expects JSON-shaped data: string keys, no
// map[any]any) can walk it directly.
func toJSONable(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("re-encoding document for schema check: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func merge(common, overlay *Document) *Settings {
	s := &Settings{
		Colors:          map[string]ScopedValue[string]{},
		Theme:           ScopedValue[string]{Value: defaultTheme, Scope: ScopeDefault},
		ScrollbackLines: ScopedValue[int]{Value: defaultScrollback, Scope: ScopeDefault},
	}

	applyDocument(s, common, ScopeCommon)
	if overlay != nil {
		applyDocument(s, overlay, ScopeCharacter)
	}
	return s
}

func applyDocument(s *Settings, doc *Document, scope Scope) {
	if doc == nil {
		return
	}
	for k, v := range doc.Colors {
		s.Colors[k] = ScopedValue[string]{Value: v, Scope: scope}
	}
	if len(doc.Highlights) > 0 {
		s.Highlights = ScopedValue[[]highlight.Pattern]{Value: doc.Highlights, Scope: scope}
	}
	if len(doc.Keybinds) > 0 {
		s.Keybinds = ScopedValue[[]keybind.Bind]{Value: doc.Keybinds, Scope: scope}
	}
	if doc.UI.Theme != "" {
		s.Theme = ScopedValue[string]{Value: doc.UI.Theme, Scope: scope}
	}
	if doc.UI.ScrollbackLines != 0 {
		s.ScrollbackLines = ScopedValue[int]{Value: doc.UI.ScrollbackLines, Scope: scope}
	}
	if doc.UI.TTSEnabled {
		s.TTSEnabled = ScopedValue[bool]{Value: true, Scope: scope}
	}
	if doc.Connection.Direct {
		s.Direct = ScopedValue[bool]{Value: true, Scope: scope}
	}
	if doc.Connection.Game != "" {
		s.Game = ScopedValue[string]{Value: doc.Connection.Game, Scope: scope}
	}
	if doc.Connection.Host != "" {
		s.Host = ScopedValue[string]{Value: doc.Connection.Host, Scope: scope}
	}
	if doc.Connection.Port != 0 {
		s.Port = ScopedValue[int]{Value: doc.Connection.Port, Scope: scope}
	}
	if doc.Character.Name != "" {
		s.CharacterName = ScopedValue[string]{Value: doc.Character.Name, Scope: scope}
	}
}
