package engine

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/odvcencio/diffsitter/internal/extract"
	"github.com/odvcencio/diffsitter/internal/grammar"
	"github.com/odvcencio/diffsitter/internal/render"
)

func writeTemp(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestRunProducesHunksForChangedGoFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeTemp(t, dir, "a.go", "package main\n\nfunc main() {\n\tprintln(\"old\")\n}\n")
	b := writeTemp(t, dir, "b.go", "package main\n\nfunc main() {\n\tprintln(\"new\")\n}\n")

	provider := grammar.NewProvider(grammar.ModeStatic)
	var out bytes.Buffer

	res, err := Run(context.Background(), provider, a, b, Options{
		Extract: extract.Options{StripWhitespace: true},
		Mode:    render.UnifiedMode(),
		Styled:  false,
	}, &out)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Hunks) == 0 {
		t.Fatal("expected at least one hunk for changed string literal")
	}
	if out.Len() == 0 {
		t.Fatal("expected rendered output")
	}
}

func TestRunNoGrammarWithoutFallback(t *testing.T) {
	dir := t.TempDir()
	a := writeTemp(t, dir, "a.unknownext", "hello\n")
	b := writeTemp(t, dir, "b.unknownext", "world\n")

	provider := grammar.NewProvider(grammar.ModeStatic)
	var out bytes.Buffer

	_, err := Run(context.Background(), provider, a, b, Options{Mode: render.UnifiedMode()}, &out)
	if err == nil {
		t.Fatal("expected an error when no grammar resolves and no fallback is configured")
	}
}

func TestRunFallsBackToExternalCmd(t *testing.T) {
	dir := t.TempDir()
	a := writeTemp(t, dir, "a.unknownext", "hello\n")
	b := writeTemp(t, dir, "b.unknownext", "world\n")

	provider := grammar.NewProvider(grammar.ModeStatic)
	var out bytes.Buffer

	res, err := Run(context.Background(), provider, a, b, Options{
		Mode:        render.UnifiedMode(),
		FallbackCmd: "diff",
	}, &out)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.FellBack {
		t.Fatal("expected FellBack to be true")
	}
}

func TestRunFallsBackOnParseFailure(t *testing.T) {
	dir := t.TempDir()
	a := writeTemp(t, dir, "a.go", "package main\n\nfunc main() {}\n")
	b := writeTemp(t, dir, "b.go", "package main\n\nfunc main() {}\n")

	provider := grammar.NewProvider(grammar.ModeStatic)
	var out bytes.Buffer

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Run(ctx, provider, a, b, Options{
		Mode:        render.UnifiedMode(),
		FallbackCmd: "diff",
	}, &out)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.FellBack {
		t.Fatal("expected a ParseFailed result to fall back to the external diff, per spec.md §7")
	}
}

func TestRunIdenticalFilesProduceNoHunks(t *testing.T) {
	dir := t.TempDir()
	contents := "package main\n\nfunc main() {}\n"
	a := writeTemp(t, dir, "a.go", contents)
	b := writeTemp(t, dir, "b.go", contents)

	provider := grammar.NewProvider(grammar.ModeStatic)
	var out bytes.Buffer

	res, err := Run(context.Background(), provider, a, b, Options{
		Extract: extract.Options{StripWhitespace: true},
		Mode:    render.UnifiedMode(),
	}, &out)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Hunks) != 0 {
		t.Errorf("expected no hunks for identical files, got %d", len(res.Hunks))
	}
}
