// Package manifest renders compilations as versioned JSON or YAML documents
// for piping into other tools.
package manifest

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/isdood/gloop/pkg/types"
)

// Supported output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Version identifies the manifest document layout.
const Version = 1

// Document is the exported form of one compilation.
type Document struct {
	Version     int                `json:"version" yaml:"version"`
	Compilation string             `json:"compilation" yaml:"compilation"`
	Root        string             `json:"root" yaml:"root"`
	ContentHash string             `json:"content_hash" yaml:"content_hash"`
	CreatedAt   time.Time          `json:"created_at" yaml:"created_at"`
	Commands    []Command          `json:"commands" yaml:"commands"`
	Diagnostics []types.Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// Command is the exported form of one compiled command.
type Command struct {
	Position int      `json:"position" yaml:"position"`
	SeqPath  string   `json:"seq_path" yaml:"seq_path"`
	Argv     []string `json:"argv" yaml:"argv"`
	Shell    string   `json:"shell" yaml:"shell"`
	Source   string   `json:"source" yaml:"source"`
}

// New builds a Document from a compilation.
func New(comp *types.Compilation) Document {
	doc := Document{
		Version:     Version,
		Compilation: comp.CompilationID,
		Root:        comp.Root,
		ContentHash: comp.ContentHash,
		CreatedAt:   comp.CreatedAt,
		Diagnostics: comp.Diagnostics,
	}
	for _, c := range comp.Commands {
		doc.Commands = append(doc.Commands, Command{
			Position: c.Position,
			SeqPath:  c.SeqPath,
			Argv:     c.Argv,
			Shell:    c.Shell,
			Source:   c.Source,
		})
	}
	return doc
}

// Write renders the compilation to w in the given format.
func Write(w io.Writer, comp *types.Compilation, format string) error {
	doc := New(comp)
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown manifest format %q", format)
	}
}
