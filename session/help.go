package session

import (
	_ "embed"

	"github.com/charmbracelet/glamour"
)

//go:embed help.md
var helpMarkdown string

// renderHelp renders the embedded dot-command/keybind reference for the
// terminal, falling back to the raw Markdown if the renderer can't be
// built (e.g. an unsupported terminal profile), grounded on
// asynkron-GoAgent's rebuildRenderer/renderCurrent pair.
func renderHelp(wrapWidth int) string {
	if wrapWidth < 10 {
		wrapWidth = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return helpMarkdown
	}
	rendered, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return rendered
}
