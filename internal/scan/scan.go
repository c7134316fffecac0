// Package scan reads a directory tree into the ordered entry nodes the
// compiler consumes. Children are sorted by (sequence, name); dotfiles are
// skipped silently; entries without a sequence prefix are inert; symlinks are
// not followed.
package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/isdood/gloop/internal/lexer"
	"github.com/isdood/gloop/pkg/types"
)

// MaxDepth is the deepest nesting Scan will descend before returning
// types.ErrTooDeep.
const MaxDepth = 32

// Node is one sequenced entry in the scanned tree. Files have no children.
type Node struct {
	Entry    types.Entry
	Children []*Node
}

// Tree is the scanned form of a compile root. Nodes holds the sequenced
// entries directly under the root; Diagnostics holds every notice raised
// while scanning, paths rewritten relative to the root. Entries whose names
// failed to lex are excluded from Nodes, with their error diagnostics kept.
type Tree struct {
	Root        string // absolute path
	Nodes       []*Node
	Diagnostics []types.Diagnostic
}

// EntryPaths returns the root-relative paths of all sequenced entries in
// traversal order. This is the compilation's identity: two scans with equal
// EntryPaths compile to the same program.
func (t *Tree) EntryPaths() []string {
	var paths []string
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			paths = append(paths, n.Entry.RelPath)
			walk(n.Children)
		}
	}
	walk(t.Nodes)
	return paths
}

// Scan reads the tree rooted at root. Returns an error when the root cannot
// be read or the tree nests deeper than MaxDepth; name-level problems are
// diagnostics on the returned tree instead.
func Scan(root string) (*Tree, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", abs)
	}

	tree := &Tree{Root: abs}
	nodes, err := scanDir(abs, "", 0, tree)
	if err != nil {
		return nil, err
	}
	tree.Nodes = nodes
	return tree, nil
}

// scanDir reads one directory level. rel is the directory's path relative to
// the root ("" for the root itself).
func scanDir(dir, rel string, depth int, tree *Tree) ([]*Node, error) {
	if depth > MaxDepth {
		return nil, fmt.Errorf("%s: %w", rel, types.ErrTooDeep)
	}

	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var nodes []*Node
	for _, de := range dirents {
		name := de.Name()
		if name[0] == '.' {
			continue
		}
		relPath := filepath.Join(rel, name)

		if de.Type()&fs.ModeSymlink != 0 {
			tree.Diagnostics = append(tree.Diagnostics, types.Diagnostic{
				Severity: types.SeverityInfo,
				Path:     relPath,
				Message:  "symlink not followed",
			})
			continue
		}

		entry, diags := lexer.Lex(name, de.IsDir())
		entry.RelPath = relPath
		for i := range diags {
			diags[i].Path = relPath
		}
		tree.Diagnostics = append(tree.Diagnostics, diags...)

		if entry.Inert || types.HasErrors(diags) {
			continue
		}

		node := &Node{Entry: entry}
		if de.IsDir() {
			children, err := scanDir(filepath.Join(dir, name), relPath, depth+1, tree)
			if err != nil {
				return nil, err
			}
			node.Children = children
		}
		nodes = append(nodes, node)
	}

	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Entry.Seq != nodes[j].Entry.Seq {
			return nodes[i].Entry.Seq < nodes[j].Entry.Seq
		}
		return nodes[i].Entry.Name < nodes[j].Entry.Name
	})
	return nodes, nil
}
