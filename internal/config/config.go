// Package config loads the JSON5 configuration file (spec.md §6),
// merging user overrides over the embedded defaults, and rejects unknown
// keys as a ConfigError. The defaults-struct-overlaid-by-file shape
// mirrors the teacher pack's own config loaders (dekarrin-tunaq's TOML
// config), with JSON5 in place of TOML per spec.md §6.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/titanous/json5"

	"github.com/odvcencio/diffsitter/internal/dserrors"
)

// Color is a style entry's color: a named color, an 8-bit color256
// index, or unset (null).
type Color struct {
	Name     string
	Color256 *int
}

// UnmarshalJSON accepts either a JSON string (named color) or an object
// of the form {"color256": n}, matching spec.md §6's "Colors: string
// name or { color256: n }".
func (c *Color) UnmarshalJSON(data []byte) error {
	var name string
	if err := json5.Unmarshal(data, &name); err == nil {
		c.Name = name
		return nil
	}

	var obj struct {
		Color256 *int `json:"color256"`
	}
	if err := json5.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("color: %w", err)
	}
	c.Color256 = obj.Color256
	return nil
}

// StyleEntry mirrors the config schema's style entry keys exactly.
type StyleEntry struct {
	Highlight            *Color `json:"highlight,omitempty"`
	RegularForeground    *Color `json:"regular-foreground,omitempty"`
	EmphasizedForeground *Color `json:"emphasized-foreground,omitempty"`
	Bold                 bool   `json:"bold,omitempty"`
	Underline            bool   `json:"underline,omitempty"`
	Prefix               string `json:"prefix,omitempty"`
}

// UnifiedStyles is formatting.unified: one style entry per category.
type UnifiedStyles struct {
	Addition StyleEntry `json:"addition"`
	Deletion StyleEntry `json:"deletion"`
}

// CustomMode is one entry of formatting.custom.<name>: a named mode
// inheriting from "unified" with per-category overrides.
type CustomMode struct {
	Type     string      `json:"type"`
	Addition *StyleEntry `json:"addition,omitempty"`
	Deletion *StyleEntry `json:"deletion,omitempty"`
}

// Formatting is the formatting.* config section.
type Formatting struct {
	Unified UnifiedStyles         `json:"unified"`
	Custom  map[string]CustomMode `json:"custom,omitempty"`
}

// Grammar is the grammar.* config section.
type Grammar struct {
	FileAssociations map[string]string `json:"file-associations,omitempty"`
	DylibOverrides   map[string]string `json:"dylib-overrides,omitempty"`
}

// InputProcessing is the input-processing.* config section.
type InputProcessing struct {
	SplitGraphemes  bool     `json:"split-graphemes"`
	StripWhitespace bool     `json:"strip-whitespace"`
	ExcludeKinds    []string `json:"exclude-kinds,omitempty"`
	IncludeKinds    []string `json:"include-kinds,omitempty"`
}

// Config is the full parsed, defaults-merged configuration.
type Config struct {
	Grammar         Grammar         `json:"grammar"`
	InputProcessing InputProcessing `json:"input-processing"`
	Formatting      Formatting      `json:"formatting"`
	FallbackCmd     string          `json:"fallback-cmd,omitempty"`
}

// Default returns the built-in default configuration. Its values match
// the embedded default_config.json5 that the CLI's dump_default_config
// subcommand prints.
func Default() Config {
	return Config{
		InputProcessing: InputProcessing{
			StripWhitespace: true,
			SplitGraphemes:  false,
		},
		Formatting: Formatting{
			Unified: UnifiedStyles{
				Addition: StyleEntry{
					RegularForeground:    &Color{Name: "green"},
					EmphasizedForeground: &Color{Name: "green"},
					Bold:                 true,
					Prefix:               "+",
				},
				Deletion: StyleEntry{
					RegularForeground:    &Color{Name: "red"},
					EmphasizedForeground: &Color{Name: "red"},
					Bold:                 true,
					Prefix:               "-",
				},
			},
		},
	}
}

// rootKeys, grammarKeys, and the rest describe the recognized schema at
// each struct-shaped nesting level, so Load can reject unknown keys per
// spec.md §6 ("unknown keys are errors") without a reflection-heavy
// strict-decode library. Unlike a single scope->keys table walked
// generically, validation below only descends into sub-scopes that are
// themselves schema objects; maps whose keys are user data (file
// extensions, dylib names, custom mode names, a color256 index) are
// never key-validated against this schema.
var (
	rootKeys            = []string{"grammar", "input-processing", "formatting", "fallback-cmd"}
	grammarKeys         = []string{"file-associations", "dylib-overrides"}
	inputProcessingKeys = []string{"split-graphemes", "strip-whitespace", "exclude-kinds", "include-kinds"}
	formattingKeys      = []string{"unified", "custom"}
	unifiedKeys         = []string{"addition", "deletion"}
	styleEntryKeys      = []string{"highlight", "regular-foreground", "emphasized-foreground", "bold", "underline", "prefix"}
	customModeKeys      = []string{"type", "addition", "deletion"}
	colorKeys           = []string{"color256"}
)

// Load resolves the config path per spec.md §6's search order, reads and
// parses it as JSON5, validates its schema, and returns the result
// merged over Default(). If no config file is found anywhere in the
// search order, Default() is returned unmodified.
func Load(flagPath string) (Config, error) {
	path, err := resolvePath(flagPath)
	if err != nil {
		return Config{}, err
	}
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &dserrors.ConfigError{Path: path, Err: err}
	}

	var raw map[string]any
	if err := json5.Unmarshal(data, &raw); err != nil {
		return Config{}, &dserrors.ConfigError{Path: path, Err: err}
	}
	if err := validateKeys(raw); err != nil {
		return Config{}, &dserrors.ConfigError{Path: path, Err: err}
	}

	cfg := Default()
	if err := json5.Unmarshal(data, &cfg); err != nil {
		return Config{}, &dserrors.ConfigError{Path: path, Err: err}
	}

	return mergeDefaults(cfg), nil
}

// resolvePath implements spec.md §6's search order: --config flag, then
// DIFFSITTER_CONFIG, then the XDG (or platform-equivalent) default path.
// Returns "" when none of those locations has a file, which is not an
// error: Default() is used.
func resolvePath(flagPath string) (string, error) {
	if flagPath != "" {
		if _, err := os.Stat(flagPath); err != nil {
			return "", &dserrors.ConfigError{Path: flagPath, Err: err}
		}
		return flagPath, nil
	}
	if envPath := os.Getenv("DIFFSITTER_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", &dserrors.ConfigError{Path: envPath, Err: err}
		}
		return envPath, nil
	}

	def := defaultConfigPath()
	if _, err := os.Stat(def); err != nil {
		return "", nil
	}
	return def, nil
}

func defaultConfigPath() string {
	if runtime.GOOS == "windows" {
		base := os.Getenv("APPDATA")
		if base == "" {
			base = os.Getenv("USERPROFILE")
		}
		return filepath.Join(base, "diffsitter", "config.json5")
	}
	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" {
		home, _ := os.UserHomeDir()
		xdg = filepath.Join(home, ".config")
	}
	return filepath.Join(xdg, "diffsitter", "config.json5")
}

// validateKeys walks raw following the Config struct's own shape rather
// than recursing into every nested map generically: only sub-scopes that
// are themselves schema objects (grammar, formatting.unified, a style
// entry, a custom mode, a color) are key-validated. Value-maps whose
// keys are user data — file-associations/dylib-overrides entries,
// formatting.custom's mode names, a color256 index — are never checked
// against a key whitelist.
func validateKeys(raw map[string]any) error {
	if err := validateAllowed("<root>", raw, rootKeys); err != nil {
		return err
	}
	if v, ok := raw["grammar"]; ok {
		if err := validateObjectKeys("grammar", v, grammarKeys); err != nil {
			return err
		}
	}
	if v, ok := raw["input-processing"]; ok {
		if err := validateObjectKeys("input-processing", v, inputProcessingKeys); err != nil {
			return err
		}
	}
	if v, ok := raw["formatting"]; ok {
		if err := validateFormatting(v); err != nil {
			return err
		}
	}
	return nil
}

func validateFormatting(v any) error {
	m, err := asObject("formatting", v)
	if err != nil {
		return err
	}
	if err := validateAllowed("formatting", m, formattingKeys); err != nil {
		return err
	}
	if u, ok := m["unified"]; ok {
		if err := validateUnified(u); err != nil {
			return err
		}
	}
	if c, ok := m["custom"]; ok {
		if err := validateCustomModes(c); err != nil {
			return err
		}
	}
	return nil
}

func validateUnified(v any) error {
	m, err := asObject("formatting.unified", v)
	if err != nil {
		return err
	}
	if err := validateAllowed("formatting.unified", m, unifiedKeys); err != nil {
		return err
	}
	if a, ok := m["addition"]; ok {
		if err := validateStyleEntry("formatting.unified.addition", a); err != nil {
			return err
		}
	}
	if d, ok := m["deletion"]; ok {
		if err := validateStyleEntry("formatting.unified.deletion", d); err != nil {
			return err
		}
	}
	return nil
}

// validateCustomModes validates formatting.custom: its keys are
// user-chosen mode names (not schema keys), so only each value is
// checked, as a custom-mode object.
func validateCustomModes(v any) error {
	m, err := asObject("formatting.custom", v)
	if err != nil {
		return err
	}
	for name, modeVal := range m {
		if err := validateCustomMode("formatting.custom."+name, modeVal); err != nil {
			return err
		}
	}
	return nil
}

func validateCustomMode(scope string, v any) error {
	m, err := asObject(scope, v)
	if err != nil {
		return err
	}
	if err := validateAllowed(scope, m, customModeKeys); err != nil {
		return err
	}
	if a, ok := m["addition"]; ok {
		if err := validateStyleEntry(scope+".addition", a); err != nil {
			return err
		}
	}
	if d, ok := m["deletion"]; ok {
		if err := validateStyleEntry(scope+".deletion", d); err != nil {
			return err
		}
	}
	return nil
}

func validateStyleEntry(scope string, v any) error {
	m, err := asObject(scope, v)
	if err != nil {
		return err
	}
	if err := validateAllowed(scope, m, styleEntryKeys); err != nil {
		return err
	}
	for _, key := range []string{"highlight", "regular-foreground", "emphasized-foreground"} {
		c, ok := m[key]
		if !ok {
			continue
		}
		if err := validateColor(scope+"."+key, c); err != nil {
			return err
		}
	}
	return nil
}

// validateColor accepts either a JSON string (named color) or an object
// of the form {"color256": n}; the color256 key is schema, but its
// integer value is user data and is not itself descended into.
func validateColor(scope string, v any) error {
	switch val := v.(type) {
	case string, nil:
		return nil
	case map[string]any:
		return validateAllowed(scope, val, colorKeys)
	default:
		return fmt.Errorf("%s: expected a color name or an object with color256 (at %q)", scope, scope)
	}
}

func validateObjectKeys(scope string, v any, allowed []string) error {
	m, err := asObject(scope, v)
	if err != nil {
		return err
	}
	return validateAllowed(scope, m, allowed)
}

func asObject(scope string, v any) (map[string]any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%q must be an object", scope)
	}
	return m, nil
}

func validateAllowed(scope string, m map[string]any, allowed []string) error {
	allowedSet := make(map[string]bool, len(allowed))
	for _, k := range allowed {
		allowedSet[k] = true
	}
	for k := range m {
		if !allowedSet[k] {
			return fmt.Errorf("unknown config key %q (at %q)", k, scope)
		}
	}
	return nil
}

// mergeDefaults fills the unified style entries' color and prefix fields
// left unset by the user's config with the defaults (Bold and Underline
// are left as decoded), so a user overriding
// only formatting.unified.addition.prefix does not lose the default
// color entirely.
func mergeDefaults(cfg Config) Config {
	def := Default()

	cfg.Formatting.Unified.Addition = mergeStyleEntry(cfg.Formatting.Unified.Addition, def.Formatting.Unified.Addition)
	cfg.Formatting.Unified.Deletion = mergeStyleEntry(cfg.Formatting.Unified.Deletion, def.Formatting.Unified.Deletion)

	if cfg.Grammar.FileAssociations == nil {
		cfg.Grammar.FileAssociations = map[string]string{}
	}
	if cfg.Grammar.DylibOverrides == nil {
		cfg.Grammar.DylibOverrides = map[string]string{}
	}

	return cfg
}

func mergeStyleEntry(user, def StyleEntry) StyleEntry {
	if user.Highlight == nil {
		user.Highlight = def.Highlight
	}
	if user.RegularForeground == nil {
		user.RegularForeground = def.RegularForeground
	}
	if user.EmphasizedForeground == nil {
		user.EmphasizedForeground = def.EmphasizedForeground
	}
	if user.Prefix == "" {
		user.Prefix = def.Prefix
	}
	return user
}
