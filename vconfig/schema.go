package vconfig

import (
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// documentSchema describes the shape common.yaml / characters/<name>.yaml
// must satisfy before the typed merge runs, catching malformed documents
// structurally rather than leaving each field to fail independently.
const documentSchema = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "colors": {"type": "object", "additionalProperties": {"type": "string"}},
    "highlights": {"type": "array"},
    "keybinds": {"type": "array"},
    "ui": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "theme": {"type": "string"},
        "scrollback_lines": {"type": "integer", "minimum": 0},
        "tts_enabled": {"type": "boolean"}
      }
    },
    "connection": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "direct": {"type": "boolean"},
        "game": {"type": "string"},
        "host": {"type": "string"},
        "port": {"type": "integer", "minimum": 0, "maximum": 65535}
      }
    },
    "character": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "name": {"type": "string"}
      }
    }
  }
}`

var (
	schemaLoaderOnce sync.Once
	loadedSchema     gojsonschema.JSONLoader
)

func schemaLoader() (gojsonschema.JSONLoader, error) {
	schemaLoaderOnce.Do(func() {
		loadedSchema = gojsonschema.NewStringLoader(documentSchema)
	})
	return loadedSchema, nil
}
