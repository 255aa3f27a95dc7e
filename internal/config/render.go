package config

import (
	"fmt"

	"github.com/odvcencio/diffsitter/internal/dserrors"
	"github.com/odvcencio/diffsitter/internal/render"
)

// Mode resolves a render mode by name against this config: "unified" (or
// "") is always available; any other name must be a formatting.custom
// entry, which inherits unified's style and overrides only the
// categories it sets (spec.md §6).
func (c Config) Mode(name string) (render.Mode, error) {
	if name == "" || name == "unified" {
		return render.Mode{Name: "unified", Type: "unified", Styles: c.Formatting.Unified.styleTable()}, nil
	}

	custom, ok := c.Formatting.Custom[name]
	if !ok {
		return render.Mode{}, &dserrors.ConfigError{Err: fmt.Errorf("no formatting.custom entry named %q", name)}
	}

	styles := c.Formatting.Unified
	if custom.Addition != nil {
		styles.Addition = *custom.Addition
	}
	if custom.Deletion != nil {
		styles.Deletion = *custom.Deletion
	}
	return render.Mode{Name: name, Type: custom.Type, Styles: styles.styleTable()}, nil
}

func (u UnifiedStyles) styleTable() render.StyleTable {
	return render.StyleTable{
		Addition: u.Addition.renderEntry(),
		Deletion: u.Deletion.renderEntry(),
	}
}

func (e StyleEntry) renderEntry() render.StyleEntry {
	return render.StyleEntry{
		Highlight:            e.Highlight.renderColor(),
		RegularForeground:    e.RegularForeground.renderColor(),
		EmphasizedForeground: e.EmphasizedForeground.renderColor(),
		Bold:                 e.Bold,
		Underline:            e.Underline,
		Prefix:               e.Prefix,
	}
}

func (c *Color) renderColor() render.Color {
	if c == nil {
		return render.Color{}
	}
	if c.Color256 != nil {
		return render.NewColor256(*c.Color256)
	}
	return render.NewNamedColor(c.Name)
}
