//go:build cgo

package grammar

/*
#cgo linux LDFLAGS: -ldl
#cgo freebsd LDFLAGS: -ldl
#cgo netbsd LDFLAGS: -ldl
#cgo openbsd LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdlib.h>

typedef const void* (*ts_dynlang_fn)(void);

static void* tsDynOpen(const char* path) {
	dlerror();
	return dlopen(path, RTLD_NOW | RTLD_LOCAL);
}

static void* tsDynSymbol(void* handle, const char* name) {
	dlerror();
	return dlsym(handle, name);
}

static const char* tsDynError(void) {
	return dlerror();
}

static const void* tsDynCall(void* symbol) {
	ts_dynlang_fn fn = (ts_dynlang_fn)symbol;
	return fn();
}
*/
import "C"

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"unsafe"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/odvcencio/diffsitter/internal/dserrors"
)

// dylibExt is the platform shared-library suffix searched when no override
// is configured.
func dylibExt() string {
	switch runtime.GOOS {
	case "darwin":
		return "dylib"
	case "windows":
		return "dll"
	default:
		return "so"
	}
}

// searchPaths returns the directories searched for a grammar shared
// library, in order: the platform's library path (LD_LIBRARY_PATH on
// Linux/BSD, DYLD_LIBRARY_PATH on Darwin) followed by the working
// directory as a last resort.
func searchPaths() []string {
	var envVar string
	if runtime.GOOS == "darwin" {
		envVar = "DYLD_LIBRARY_PATH"
	} else {
		envVar = "LD_LIBRARY_PATH"
	}
	var dirs []string
	if v := os.Getenv(envVar); v != "" {
		dirs = append(dirs, filepath.SplitList(v)...)
	}
	dirs = append(dirs, ".")
	return dirs
}

// loadDynamic resolves a language by dlopen-ing libtree-sitter-{name}.ext
// (or override, if non-empty) and calling its tree_sitter_{name}
// constructor symbol. This mirrors the teacher's own C-parity loader
// (formerly parity_c_loader_cgo.go): same dlopen/dlsym/dlerror shape,
// productionized with search-path resolution instead of a pinned-commit
// build pipeline.
func loadDynamic(name, override string) (*sitter.Language, error) {
	candidates := candidatePaths(name, override)

	var lastErr string
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			lastErr = err.Error()
			continue
		}
		lang, err := loadSharedLanguage(path, "tree_sitter_"+safeSymbolName(name))
		if err != nil {
			lastErr = err.Error()
			continue
		}
		return lang, nil
	}
	if lastErr == "" {
		lastErr = "no candidate library found"
	}
	return nil, &dserrors.DynamicLoadFailed{Language: name, Reason: lastErr}
}

func candidatePaths(name, override string) []string {
	if override != "" {
		if filepath.IsAbs(override) {
			return []string{override}
		}
		var out []string
		for _, dir := range searchPaths() {
			out = append(out, filepath.Join(dir, override))
		}
		return out
	}

	filename := fmt.Sprintf("libtree-sitter-%s.%s", name, dylibExt())
	var out []string
	for _, dir := range searchPaths() {
		out = append(out, filepath.Join(dir, filename))
	}
	return out
}

func loadSharedLanguage(path, symbol string) (*sitter.Language, error) {
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	handle := C.tsDynOpen(cPath)
	if handle == nil {
		return nil, fmt.Errorf("dlopen %s: %s", path, dynDLError())
	}

	cSym := C.CString(symbol)
	defer C.free(unsafe.Pointer(cSym))

	sym := C.tsDynSymbol(handle, cSym)
	if sym == nil {
		return nil, fmt.Errorf("dlsym %s: %s", symbol, dynDLError())
	}

	langPtr := C.tsDynCall(sym)
	if langPtr == nil {
		return nil, fmt.Errorf("%s returned nil TSLanguage", symbol)
	}

	lang := sitter.NewLanguage(unsafe.Pointer(langPtr))
	if lang == nil {
		return nil, fmt.Errorf("NewLanguage(%s) returned nil", symbol)
	}
	return lang, nil
}

func dynDLError() string {
	if err := C.tsDynError(); err != nil {
		return C.GoString(err)
	}
	return "unknown dynamic loader error"
}

func safeSymbolName(name string) string {
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '_':
			out = append(out, c)
		case c >= 'A' && c <= 'Z':
			out = append(out, c-'A'+'a')
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
