// Command git-diffsitter adapts git's external diff driver argument
// convention to diffsitter's engine, for use via `git config diff.external
// git-diffsitter` or a `GIT_EXTERNAL_DIFF=git-diffsitter git diff` run.
// Git invokes an external diff driver as:
//
//	<path> <old-file> <old-hex> <old-mode> <new-file> <new-hex> <new-mode>
//
// old-file/new-file are the two blobs git has already checked out to
// temporary paths; only those two positions matter here.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/odvcencio/diffsitter/internal/config"
	"github.com/odvcencio/diffsitter/internal/engine"
	"github.com/odvcencio/diffsitter/internal/extract"
	"github.com/odvcencio/diffsitter/internal/grammar"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 7 {
		fmt.Fprintln(os.Stderr, "git-diffsitter: expected git's external diff driver argument convention (7 args), got", len(args))
		return 1
	}
	oldPath, newPath := args[1], args[4]

	cfg, err := config.Load(os.Getenv("DIFFSITTER_CONFIG"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "git-diffsitter:", err)
		return 1
	}

	provider := grammar.NewProvider(grammar.ModeStatic)
	for ext, name := range cfg.Grammar.FileAssociations {
		provider.FileAssociations[ext] = name
	}

	mode, err := cfg.Mode("unified")
	if err != nil {
		fmt.Fprintln(os.Stderr, "git-diffsitter:", err)
		return 1
	}

	opts := engine.Options{
		Extract: extract.Options{
			StripWhitespace: cfg.InputProcessing.StripWhitespace,
			SplitGraphemes:  cfg.InputProcessing.SplitGraphemes,
		},
		Mode:        mode,
		Styled:      isatty.IsTerminal(os.Stdout.Fd()),
		FallbackCmd: cfg.FallbackCmd,
	}

	if _, err := engine.Run(context.Background(), provider, oldPath, newPath, opts, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "git-diffsitter:", err)
		return 1
	}
	return 0
}
