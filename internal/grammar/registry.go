// Package grammar resolves a language name to a tree-sitter grammar
// handle, either from a compile-time static table or by late-bound shared
// library loading, and maps file extensions to language names.
package grammar

import (
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/css"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/hcl"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/ocaml"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/tsx"
	"github.com/smacker/go-tree-sitter/typescript"

	"github.com/odvcencio/diffsitter/internal/dserrors"
)

// staticTable is the compile-time mapping from language name to grammar
// constructor. Chosen at build time, never at runtime, per spec.md §4.A.
var staticTable = map[string]func() *sitter.Language{
	"rust":       rust.GetLanguage,
	"c":          c.GetLanguage,
	"cpp":        cpp.GetLanguage,
	"go":         golang.GetLanguage,
	"python":     python.GetLanguage,
	"ruby":       ruby.GetLanguage,
	"typescript": typescript.GetLanguage,
	"tsx":        tsx.GetLanguage,
	"bash":       bash.GetLanguage,
	"css":        css.GetLanguage,
	"java":       java.GetLanguage,
	"ocaml":      ocaml.GetLanguage,
	"php":        php.GetLanguage,
	"hcl":        hcl.GetLanguage,
	"c#":         csharp.GetLanguage,
}

// defaultFileAssociations maps a file extension (without the leading dot)
// to a language name, per spec.md §4.A's default coverage.
var defaultFileAssociations = map[string]string{
	"rs":   "rust",
	"c":    "c",
	"h":    "c",
	"cc":   "cpp",
	"cpp":  "cpp",
	"cxx":  "cpp",
	"hpp":  "cpp",
	"go":   "go",
	"py":   "python",
	"rb":   "ruby",
	"ts":   "typescript",
	"tsx":  "tsx",
	"sh":   "bash",
	"bash": "bash",
	"css":  "css",
	"java": "java",
	"ml":   "ocaml",
	"mli":  "ocaml",
	"php":  "php",
	"tf":   "hcl",
	"hcl":  "hcl",
	"cs":   "c#",
}

// Mode selects how the provider resolves a language name to a handle.
// The caller picks it at runtime when constructing a Provider (the
// diffsitter CLI uses ModeDynamic when --dynamic is given); it is not
// fixed by the build configuration. Shared-library loading itself is
// only compiled into cgo builds.
type Mode uint8

const (
	// ModeStatic resolves only languages in the compile-time table.
	ModeStatic Mode = iota
	// ModeDynamic additionally resolves languages by searching the
	// platform library path for a shared object.
	ModeDynamic
)

// Provider resolves language names to tree-sitter grammar handles. It is
// safe for concurrent use: handle construction for a given language name
// happens at most once, guarded by a per-name sync.Once, matching the
// "shared mutable state" model of spec.md §5.
type Provider struct {
	mode Mode

	mu      sync.Mutex
	once    map[string]*sync.Once
	cache   map[string]*sitter.Language
	cacheOK map[string]error

	// FileAssociations maps extension -> language name. Populated by the
	// caller from config defaults merged with user overrides.
	FileAssociations map[string]string

	// DylibOverrides maps a language name to a filename, relative path,
	// or absolute path to search for instead of the default
	// libtree-sitter-{name}.{so|dylib|dll} naming convention. Only
	// consulted in ModeDynamic.
	DylibOverrides map[string]string
}

// NewProvider constructs a Provider in the given mode with default file
// associations. Callers may overlay config-provided associations after
// construction.
func NewProvider(mode Mode) *Provider {
	assoc := make(map[string]string, len(defaultFileAssociations))
	for k, v := range defaultFileAssociations {
		assoc[k] = v
	}
	return &Provider{
		mode:             mode,
		once:             make(map[string]*sync.Once),
		cache:            make(map[string]*sitter.Language),
		cacheOK:          make(map[string]error),
		FileAssociations: assoc,
		DylibOverrides:   make(map[string]string),
	}
}

// LanguageForExtension looks up the language name registered for a file
// extension (without the leading dot).
func (p *Provider) LanguageForExtension(ext string) (string, bool) {
	name, ok := p.FileAssociations[ext]
	return name, ok
}

// ParserFor resolves a language name to a grammar handle. In ModeStatic,
// only staticTable entries resolve; in ModeDynamic, staticTable is
// consulted first and a shared-library search follows on a miss.
func (p *Provider) ParserFor(name string) (*sitter.Language, error) {
	p.mu.Lock()
	once, ok := p.once[name]
	if !ok {
		once = &sync.Once{}
		p.once[name] = once
	}
	p.mu.Unlock()

	once.Do(func() {
		lang, err := p.resolve(name)
		p.mu.Lock()
		p.cache[name] = lang
		p.cacheOK[name] = err
		p.mu.Unlock()
	})

	p.mu.Lock()
	lang, err := p.cache[name], p.cacheOK[name]
	p.mu.Unlock()
	return lang, err
}

func (p *Provider) resolve(name string) (*sitter.Language, error) {
	if ctor, ok := staticTable[name]; ok {
		return ctor(), nil
	}
	if p.mode != ModeDynamic {
		return nil, &dserrors.NoGrammar{Reason: "no static grammar registered for " + name}
	}
	return loadDynamic(name, p.DylibOverrides[name])
}
