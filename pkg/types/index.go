package types

import "errors"

// Index lifecycle and lookup errors.
var (
	ErrDetached        = errors.New("index is detached")
	ErrAlreadyAttached = errors.New("index is already attached")
	ErrNotFound        = errors.New("compilation not found")
)

// ListFilter narrows ListCompilations results. Zero values mean "no
// restriction"; Limit <= 0 means no limit.
type ListFilter struct {
	Root  string
	Limit int
}

// SaveResult reports the outcome of SaveCompilation. When the latest saved
// compilation for the same root already carries the same content hash, the
// save is skipped and Saved is false; CompilationID then refers to the
// existing record.
type SaveResult struct {
	CompilationID string
	Saved         bool
}

// Index defines the interface for the compilation history store. Callers
// attach to a backend, record and query compilations, and detach when done.
type Index interface {
	// Attach connects the index to the backend described by config. Creates
	// the DataDir if it does not exist. Returns ErrAlreadyAttached if called
	// while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, all other operations return ErrDetached.
	Detach() error

	// SaveCompilation records a compilation with its commands and
	// diagnostics. Saves are deduplicated by (root, content hash) against
	// the latest record for the root.
	SaveCompilation(comp *Compilation) (SaveResult, error)

	// GetCompilation retrieves a compilation by ID, commands and diagnostics
	// included. Returns ErrNotFound if no such compilation exists.
	GetCompilation(id string) (*Compilation, error)

	// ListCompilations returns compilations matching the filter, newest
	// first. Commands and diagnostics are loaded for each result.
	ListCompilations(filter ListFilter) ([]*Compilation, error)

	// LatestCompilation returns the most recent compilation for the given
	// root. Returns ErrNotFound if the root has never been compiled.
	LatestCompilation(root string) (*Compilation, error)

	// DeleteCompilation removes a compilation and its commands and
	// diagnostics. Returns ErrNotFound if no such compilation exists.
	DeleteCompilation(id string) error

	// Prune keeps the newest keep compilations per root and deletes the
	// rest. Returns the number of compilations deleted.
	Prune(keep int) (int, error)
}
