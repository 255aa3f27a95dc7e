//go:build !cgo

package grammar

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/odvcencio/diffsitter/internal/dserrors"
)

// loadDynamic is unavailable without cgo: dynamic grammar loading requires
// dlopen/dlsym, which this build has no C toolchain to call into.
func loadDynamic(name, _ string) (*sitter.Language, error) {
	return nil, &dserrors.DynamicLoadFailed{Language: name, Reason: "dynamic grammar loading requires a cgo-enabled build"}
}
