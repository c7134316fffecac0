package types

import (
	"errors"
	"time"
)

// Compilation errors.
var (
	ErrDuplicateSequence    = errors.New("duplicate sequence number")
	ErrTooDeep              = errors.New("directory tree exceeds maximum depth")
	ErrEmptyCommand         = errors.New("command has no argv")
	ErrInvalidSequenceRange = errors.New("invalid sequence range")
)

// Command is one compiled command line. A command corresponds to one
// sequenced entry directly under the compile root; nested entries concatenate
// their tokens depth-first in sequence order.
type Command struct {
	CommandID     string   `json:"command_id"`     // UUID v7, assigned when the compilation is built
	CompilationID string   `json:"compilation_id"` //
	Position      int      `json:"position"`       // 1-based position within the program
	SeqPath       string   `json:"seq_path"`       // sequence number of the top-level entry, e.g. "2"
	Argv          []string `json:"argv"`           //
	Shell         string   `json:"shell"`          // POSIX-quoted rendering of Argv
	Source        string   `json:"source"`         // top-level entry path relative to the compile root
}

// Compilation is the result of compiling one directory tree: an ordered
// program of commands plus every diagnostic raised along the way.
type Compilation struct {
	CompilationID string       `json:"compilation_id"` // UUID v7
	Root          string       `json:"root"`           // absolute path of the compiled tree
	ContentHash   string       `json:"content_hash"`   // sha256 over the ordered entry names
	Strict        bool         `json:"strict"`         //
	CreatedAt     time.Time    `json:"created_at"`     // UTC
	Commands      []Command    `json:"commands"`       //
	Diagnostics   []Diagnostic `json:"diagnostics,omitempty"`
}
