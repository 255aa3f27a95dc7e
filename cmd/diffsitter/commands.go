package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/odvcencio/diffsitter/internal/config"
	"github.com/odvcencio/diffsitter/internal/engine"
	"github.com/odvcencio/diffsitter/internal/extract"
	"github.com/odvcencio/diffsitter/internal/grammar"
	"github.com/odvcencio/diffsitter/internal/logging"
)

var (
	flagConfigPath string
	flagMode       string
	flagLanguage   string
	flagNoColor    bool
	flagDynamic    bool
	flagVerbose    bool

	log *logging.Logger

	rootCmd = &cobra.Command{
		Use:   "diffsitter OLD NEW",
		Short: "Structural diff of two source files via tree-sitter",
		Long: `diffsitter parses two files with tree-sitter, diffs their leaf
tokens instead of their lines, and renders the result with
token-level emphasis on what actually changed.`,
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE:         runDiff,
	}

	dumpDefaultConfigCmd = &cobra.Command{
		Use:   "dump_default_config",
		Short: "Print the embedded default configuration and exit",
		RunE:  runDumpDefaultConfig,
	}

	genCompletionCmd = &cobra.Command{
		Use:       "gen-completion {bash|zsh|fish|powershell}",
		Short:     "Print a shell completion script to standard output",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE:      runGenCompletion,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "path to a JSON5 config file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging on stderr")

	rootCmd.Flags().StringVar(&flagMode, "mode", "unified", "render mode: 'unified' or a formatting.custom name")
	rootCmd.Flags().StringVar(&flagLanguage, "language", "", "force a language name instead of detecting it from the file extensions")
	rootCmd.Flags().BoolVar(&flagNoColor, "no-color", false, "disable styled output even on a terminal")
	rootCmd.Flags().BoolVar(&flagDynamic, "dynamic", false, "resolve unregistered grammars by searching for a shared library at runtime")

	rootCmd.AddCommand(dumpDefaultConfigCmd)
	rootCmd.AddCommand(genCompletionCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	log = logging.Default()
	if flagVerbose {
		log.SetLevel(slog.LevelDebug)
	}

	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return err
	}

	mode, err := cfg.Mode(flagMode)
	if err != nil {
		return err
	}

	grammarMode := grammar.ModeStatic
	if flagDynamic {
		grammarMode = grammar.ModeDynamic
	}
	provider := grammar.NewProvider(grammarMode)
	for ext, name := range cfg.Grammar.FileAssociations {
		provider.FileAssociations[ext] = name
	}
	provider.DylibOverrides = cfg.Grammar.DylibOverrides

	styled := !flagNoColor && isatty.IsTerminal(os.Stdout.Fd())

	opts := engine.Options{
		Extract: extract.Options{
			IncludeKinds:    toSet(cfg.InputProcessing.IncludeKinds),
			ExcludeKinds:    toSet(cfg.InputProcessing.ExcludeKinds),
			StripWhitespace: cfg.InputProcessing.StripWhitespace,
			SplitGraphemes:  cfg.InputProcessing.SplitGraphemes,
		},
		Mode:             mode,
		Styled:           styled,
		LanguageOverride: flagLanguage,
		FallbackCmd:      cfg.FallbackCmd,
	}

	pathA, pathB := args[0], args[1]
	log.Debug("starting diff run", "old", pathA, "new", pathB, "mode", flagMode)

	res, err := engine.Run(context.Background(), provider, pathA, pathB, opts, os.Stdout)
	if err != nil {
		return err
	}
	if res.FellBack {
		log.Debug("no grammar matched, used fallback-cmd", "cmd", cfg.FallbackCmd)
	}
	return nil
}

func runDumpDefaultConfig(cmd *cobra.Command, args []string) error {
	_, err := fmt.Fprintln(cmd.OutOrStdout(), defaultConfigJSON5)
	return err
}

func runGenCompletion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	switch args[0] {
	case "bash":
		return rootCmd.GenBashCompletion(out)
	case "zsh":
		return rootCmd.GenZshCompletion(out)
	case "fish":
		return rootCmd.GenFishCompletion(out, true)
	case "powershell":
		return rootCmd.GenPowerShellCompletionWithDesc(out)
	default:
		return fmt.Errorf("unsupported shell %q", args[0])
	}
}

func toSet(names []string) map[string]bool {
	if len(names) == 0 {
		return nil
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
