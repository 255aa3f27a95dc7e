// Command diffsitter diffs two source files by their tree-sitter parse
// trees instead of by line, per spec.md.
package main

import (
	_ "embed"
	"fmt"
	"os"
)

//go:embed default_config.json5
var defaultConfigJSON5 string

func main() {
	os.Exit(run())
}

// run returns the process exit status: 0 on success regardless of
// whether differences were found, non-zero on any fatal error
// (spec.md §6).
func run() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "diffsitter:", err)
		return 1
	}
	return 0
}
