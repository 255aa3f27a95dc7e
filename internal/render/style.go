// Package render turns assembled hunks into the final human-readable
// diff text, using a configurable style table (spec.md §4.F, §6).
package render

import (
	"github.com/fatih/color"
)

// Color is a named terminal color or an 8-bit color256 index. The zero
// value means "no color override" (null in config).
type Color struct {
	Name     string
	Color256 *int
	set      bool
}

// NewNamedColor constructs a Color from a color name. The renderer
// recognizes red, green, yellow, blue, magenta, cyan, white and black;
// any other name (including "bright" variants) renders as white
// foreground or black background.
func NewNamedColor(name string) Color { return Color{Name: name, set: true} }

// NewColor256 constructs a Color from an 8-bit color index.
func NewColor256(n int) Color { return Color{Color256: &n, set: true} }

// IsSet reports whether the color overrides the terminal default.
func (c Color) IsSet() bool { return c.set }

func (c Color) attributes(fg bool) []color.Attribute {
	if !c.set {
		return nil
	}
	if c.Color256 != nil {
		// fatih/color has no direct 256-color attribute constant; a
		// color256 index is mapped to one of the eight basic named
		// attributes via namedAttributeFor256.
		return []color.Attribute{namedAttributeFor256(*c.Color256, fg)}
	}
	return []color.Attribute{namedAttribute(c.Name, fg)}
}

func namedAttribute(name string, fg bool) color.Attribute {
	table := map[string]struct{ fg, bg color.Attribute }{
		"black":   {color.FgBlack, color.BgBlack},
		"red":     {color.FgRed, color.BgRed},
		"green":   {color.FgGreen, color.BgGreen},
		"yellow":  {color.FgYellow, color.BgYellow},
		"blue":    {color.FgBlue, color.BgBlue},
		"magenta": {color.FgMagenta, color.BgMagenta},
		"cyan":    {color.FgCyan, color.BgCyan},
		"white":   {color.FgWhite, color.BgWhite},
	}
	entry, ok := table[name]
	if !ok {
		if fg {
			return color.FgWhite
		}
		return color.BgBlack
	}
	if fg {
		return entry.fg
	}
	return entry.bg
}

// namedAttributeFor256 maps a 256-color index n to basic ANSI color
// n mod 8 (black, red, green, yellow, blue, magenta, cyan, white), since
// fatih/color targets the 16/8-color attribute set rather than true
// 256-color escapes. This is not a nearest-color match for indices 16
// and above.
func namedAttributeFor256(n int, fg bool) color.Attribute {
	names := []string{"black", "red", "green", "yellow", "blue", "magenta", "cyan", "white"}
	return namedAttribute(names[n%len(names)], fg)
}

// StyleEntry is the per-category (addition/deletion) style, mirroring the
// config schema's style entry keys exactly (spec.md §6).
type StyleEntry struct {
	Highlight            Color
	RegularForeground    Color
	EmphasizedForeground Color
	Bold                 bool
	Underline            bool
	Prefix               string
}

// StyleTable holds the two categories a unified-mode render needs.
type StyleTable struct {
	Addition StyleEntry
	Deletion StyleEntry
}

// DefaultStyleTable returns the same style values as the embedded default
// configuration (the default_config.json5 that `dump_default_config`
// prints), for callers that build a Mode without loading a config.
func DefaultStyleTable() StyleTable {
	return StyleTable{
		Addition: StyleEntry{
			RegularForeground:    NewNamedColor("green"),
			EmphasizedForeground: NewNamedColor("green"),
			Bold:                 true,
			Prefix:               "+",
		},
		Deletion: StyleEntry{
			RegularForeground:    NewNamedColor("red"),
			EmphasizedForeground: NewNamedColor("red"),
			Bold:                 true,
			Prefix:               "-",
		},
	}
}

// Mode is a named render mode. "unified" is the built-in base mode;
// custom modes declare Type: "unified" and override individual style
// entries (config schema's formatting.custom.<name>).
type Mode struct {
	Name   string
	Type   string
	Styles StyleTable
}

// UnifiedMode returns the built-in unified display mode with the default
// style table.
func UnifiedMode() Mode {
	return Mode{Name: "unified", Type: "unified", Styles: DefaultStyleTable()}
}
