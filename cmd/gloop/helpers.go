// Shared helpers for gloop CLI commands.
package main

import (
	"fmt"
	"os"

	"github.com/isdood/gloop/internal/compile"
	"github.com/isdood/gloop/internal/index"
	"github.com/isdood/gloop/pkg/types"
)

// attachIndex resolves the data directory, creates a SQLite store, and
// attaches it. The caller must defer store.Detach().
func attachIndex() (*index.Store, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	cfg := types.Config{
		Backend: defaultBackend,
		DataDir: dataDir,
		Strict:  configStrict,
	}

	store := index.NewStore()
	if err := store.Attach(cfg); err != nil {
		return nil, fmt.Errorf("attach index: %w", err)
	}
	return store, nil
}

// newCompiler builds a Compiler from the compile selection flags shared by
// the compile, run, and watch commands. strictFlag wins over config.yaml.
func newCompiler(strictFlag bool, filter, sequence string, overlays []string) *compile.Compiler {
	return &compile.Compiler{
		Strict:   strictFlag || configStrict,
		Filter:   filter,
		Sequence: sequence,
		Overlays: overlays,
	}
}

// printDiagnostics writes warning and info diagnostics to stderr so stdout
// stays pipeable. Error diagnostics only occur in non-strict compiles, where
// the offending entries were already dropped; they print too.
func printDiagnostics(diags []types.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d.String())
	}
}
