// Package engine orchestrates the full diff pipeline: resolve a grammar,
// parse both files, extract leaves, diff the token sequences, assemble
// hunks, and render the result. Parsing and extraction for the two sides
// run on worker goroutines since they touch no shared mutable state; the
// diff, assembly, and render stages that follow are strictly sequential
// (spec.md §5).
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/odvcencio/diffsitter/internal/diffcore"
	"github.com/odvcencio/diffsitter/internal/dserrors"
	"github.com/odvcencio/diffsitter/internal/extract"
	"github.com/odvcencio/diffsitter/internal/grammar"
	"github.com/odvcencio/diffsitter/internal/hunk"
	"github.com/odvcencio/diffsitter/internal/parser"
	"github.com/odvcencio/diffsitter/internal/render"
	"github.com/odvcencio/diffsitter/internal/token"
)

// Options configures one diff run, derived from the merged config plus
// any CLI flag overrides.
type Options struct {
	Extract extract.Options
	Mode    render.Mode
	Styled  bool

	// LanguageOverride, if non-empty, skips extension-based detection.
	LanguageOverride string

	// FallbackCmd is invoked as "cmd OLD NEW" when no grammar resolves
	// for the file pair, per spec.md §6/§7.
	FallbackCmd string
}

// Result is the outcome of a single diff run.
type Result struct {
	Hunks []hunk.Hunk
	// FellBack is true when no grammar matched and FallbackCmd ran
	// instead of the tree-sitter pipeline.
	FellBack bool
}

// Run executes the full pipeline for the file pair (pathA, pathB) and
// writes the rendered diff to out.
func Run(ctx context.Context, provider *grammar.Provider, pathA, pathB string, opts Options, out io.Writer) (Result, error) {
	bytesA, err := os.ReadFile(pathA)
	if err != nil {
		return Result{}, &dserrors.IoError{Path: pathA, Err: err}
	}
	bytesB, err := os.ReadFile(pathB)
	if err != nil {
		return Result{}, &dserrors.IoError{Path: pathB, Err: err}
	}

	lang, resolveErr := resolveGrammar(provider, pathA, pathB, opts.LanguageOverride)
	if resolveErr != nil {
		if opts.FallbackCmd == "" {
			return Result{}, resolveErr
		}
		if err := runFallback(opts.FallbackCmd, pathA, pathB, out); err != nil {
			return Result{}, err
		}
		return Result{FellBack: true}, nil
	}

	seqA, seqB, err := parseAndExtractBoth(ctx, lang, bytesA, bytesB, opts.Extract)
	if err != nil {
		var parseFailed *dserrors.ParseFailed
		if errors.As(err, &parseFailed) && opts.FallbackCmd != "" {
			if err := runFallback(opts.FallbackCmd, pathA, pathB, out); err != nil {
				return Result{}, err
			}
			return Result{FellBack: true}, nil
		}
		return Result{}, err
	}

	if !seqA.Monotonic() || !seqB.Monotonic() {
		return Result{}, &dserrors.InternalError{Invariant: "token byte ranges must be non-overlapping and non-decreasing"}
	}

	script := diffcore.Diff(seqA, seqB)
	hunks := hunk.Assemble(script)

	r := render.New(opts.Mode, opts.Styled)
	if err := r.Render(out, hunks); err != nil {
		return Result{}, fmt.Errorf("render: %w", err)
	}

	return Result{Hunks: hunks}, nil
}

// resolveGrammar picks a language from the override or either path's
// extension, then resolves it to a grammar handle through provider.
func resolveGrammar(provider *grammar.Provider, pathA, pathB, override string) (*sitter.Language, error) {
	name := override
	if name == "" {
		var ok bool
		name, ok = languageForPaths(provider, pathA, pathB)
		if !ok {
			return nil, &dserrors.NoGrammar{Reason: fmt.Sprintf("no language association for %q or %q", pathA, pathB)}
		}
	}
	return provider.ParserFor(name)
}

func languageForPaths(provider *grammar.Provider, paths ...string) (string, bool) {
	for _, p := range paths {
		ext := strings.TrimPrefix(filepath.Ext(p), ".")
		if name, ok := provider.LanguageForExtension(ext); ok {
			return name, true
		}
	}
	return "", false
}

// parseAndExtractBoth runs the parse+extract pipeline for both documents
// concurrently: they share no mutable state and only read their own
// input buffer, matching spec.md §5's concurrency allowance.
func parseAndExtractBoth(ctx context.Context, lang *sitter.Language, bytesA, bytesB []byte, extractOpts extract.Options) (token.Sequence, token.Sequence, error) {
	type outcome struct {
		seq token.Sequence
		err error
	}

	results := make([]outcome, 2)
	var wg sync.WaitGroup
	wg.Add(2)

	run := func(i int, source []byte, doc token.Document) {
		defer wg.Done()
		tree, err := parser.Parse(ctx, source, lang)
		if err != nil {
			results[i] = outcome{err: err}
			return
		}
		defer tree.Close()
		results[i] = outcome{seq: extract.Extract(tree.Root(), tree.Source, doc, extractOpts)}
	}

	go run(0, bytesA, token.DocumentA)
	go run(1, bytesB, token.DocumentB)
	wg.Wait()

	if results[0].err != nil {
		return nil, nil, results[0].err
	}
	if results[1].err != nil {
		return nil, nil, results[1].err
	}
	return results[0].seq, results[1].seq, nil
}

// runFallback shells out to an external diff tool when no grammar
// resolved for the file pair, per spec.md §6's fallback-cmd setting.
func runFallback(cmdName, pathA, pathB string, out io.Writer) error {
	cmd := exec.Command(cmdName, pathA, pathB)
	cmd.Stdout = out
	cmd.Stderr = out
	// Exit status from a real diff tool (1 = differences found) is not
	// itself an error for our purposes; only a failure to start the
	// command is.
	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return nil
		}
		return fmt.Errorf("fallback-cmd %q: %w", cmdName, err)
	}
	return nil
}
