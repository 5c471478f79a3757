// Package palette resolves the hex color strings carried by styled segments
// and highlight patterns against a renderer-chosen color space.
//
// Per the design notes, colors live as hex strings everywhere in the core;
// only a frontend's renderer ever needs a concrete RGB or 256-slot value,
// and it asks this package to do that translation at the boundary.
package palette

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a resolved hex color, e.g. "#ff0000". The empty string means
// "unset" (inherit from the enclosing context).
type Color string

// Parse validates and normalizes a hex color string to lowercase "#rrggbb".
// An empty input is valid and represents "unset".
func Parse(s string) (Color, error) {
	if s == "" {
		return "", nil
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return "", fmt.Errorf("palette: invalid color %q: %w", s, err)
	}
	return Color(c.Hex()), nil
}

// MustParse is Parse but panics on error; used for compiled-in defaults.
func MustParse(s string) Color {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// RGB decomposes the color into its 0-255 channel values.
func (c Color) RGB() (r, g, b uint8) {
	if c == "" {
		return 0, 0, 0
	}
	cf, err := colorful.Hex(string(c))
	if err != nil {
		return 0, 0, 0
	}
	r8, g8, b8 := cf.RGB255()
	return r8, g8, b8
}

// Nearest256 approximates the color to the closest slot in the standard
// 256-color terminal palette, for renderers that cannot do direct RGB.
func (c Color) Nearest256() uint8 {
	if c == "" {
		return 0
	}
	target, err := colorful.Hex(string(c))
	if err != nil {
		return 0
	}
	best := uint8(0)
	bestDist := -1.0
	for i := 0; i < 256; i++ {
		r, g, b := ansi256(i)
		cand := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
		d := target.DistanceLab(cand)
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = uint8(i)
		}
	}
	return best
}

// ansi256 returns the RGB for a standard 256-color palette index.
func ansi256(i int) (r, g, b int) {
	switch {
	case i < 16:
		base := []int{0, 128, 0, 128, 0, 128, 0, 192, 128, 255, 0, 255, 0, 255, 0, 255}
		_ = base
		// Low 16: approximate with the classic CGA-ish table, good enough
		// for nearest-match purposes (exact values vary by terminal anyway).
		vals := [16][3]int{
			{0, 0, 0}, {128, 0, 0}, {0, 128, 0}, {128, 128, 0},
			{0, 0, 128}, {128, 0, 128}, {0, 128, 128}, {192, 192, 192},
			{128, 128, 128}, {255, 0, 0}, {0, 255, 0}, {255, 255, 0},
			{0, 0, 255}, {255, 0, 255}, {0, 255, 255}, {255, 255, 255},
		}
		return vals[i][0], vals[i][1], vals[i][2]
	case i < 232:
		i -= 16
		levels := []int{0, 95, 135, 175, 215, 255}
		r = levels[(i/36)%6]
		g = levels[(i/6)%6]
		b = levels[i%6]
		return r, g, b
	default:
		v := 8 + (i-232)*10
		return v, v, v
	}
}

// String implements Stringer for log/debug output.
func (c Color) String() string { return string(c) }

// Hex parses a raw string as found in an unvalidated config file,
// tolerating a leading '#' being optional.
func Hex(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if s != "" && !strings.HasPrefix(s, "#") {
		if _, err := strconv.ParseUint(s, 16, 32); err == nil {
			s = "#" + s
		}
	}
	return Parse(s)
}
