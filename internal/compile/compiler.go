// Package compile assembles scanned trees into programs: ordered command
// lines with stable identity, conflict handling, overlay merging, and
// POSIX-safe rendering.
package compile

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/isdood/gloop/internal/scan"
	"github.com/isdood/gloop/pkg/types"
)

// Compiler holds the options for one compile. The zero value compiles
// non-strict with no selection and no overlays.
type Compiler struct {
	Strict   bool     // error diagnostics and duplicate sequences fail the compile
	Filter   string   // glob; keep only commands with a matching argv token
	Sequence string   // "N..M" range over top-level sequences, either side optional
	Overlays []string // overlay roots merged over the base, left to right
}

// Compile scans root, applies overlays, and assembles the program.
func (c *Compiler) Compile(ctx context.Context, root string) (*types.Compilation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seqLo, seqHi, err := parseSequenceRange(c.Sequence)
	if err != nil {
		return nil, err
	}
	if c.Filter != "" {
		if _, err := path.Match(c.Filter, "probe"); err != nil {
			return nil, fmt.Errorf("invalid filter %q: %w", c.Filter, err)
		}
	}

	tree, err := scan.Scan(root)
	if err != nil {
		return nil, err
	}
	for _, overlayRoot := range c.Overlays {
		overlay, err := scan.Scan(overlayRoot)
		if err != nil {
			return nil, fmt.Errorf("overlay %s: %w", overlayRoot, err)
		}
		tree.Nodes = mergeNodes(tree.Nodes, overlay.Nodes)
		tree.Diagnostics = append(tree.Diagnostics, overlay.Diagnostics...)
	}

	diags := tree.Diagnostics
	diags = append(diags, checkDuplicates(tree.Nodes)...)

	comp := &types.Compilation{
		CompilationID: newID(),
		Root:          tree.Root,
		ContentHash:   contentHash(tree),
		Strict:        c.Strict,
		CreatedAt:     time.Now().UTC(),
		Diagnostics:   diags,
	}

	if c.Strict {
		for _, d := range diags {
			if d.Severity == types.SeverityError {
				return nil, fmt.Errorf("%s: %s", d.Path, d.Message)
			}
			if d.Severity == types.SeverityWarning && strings.HasPrefix(d.Message, "duplicate sequence") {
				return nil, fmt.Errorf("%s: %w", d.Path, types.ErrDuplicateSequence)
			}
		}
	}

	position := 0
	for _, node := range tree.Nodes {
		if node.Entry.Seq < seqLo || node.Entry.Seq > seqHi {
			continue
		}
		argv := collectArgv(node)
		if c.Filter != "" && !matchesFilter(c.Filter, argv) {
			continue
		}
		position++
		comp.Commands = append(comp.Commands, types.Command{
			CommandID:     newID(),
			CompilationID: comp.CompilationID,
			Position:      position,
			SeqPath:       strconv.Itoa(node.Entry.Seq),
			Argv:          argv,
			Shell:         ShellLine(argv),
			Source:        node.Entry.RelPath,
		})
	}

	if len(comp.Commands) == 0 {
		comp.Diagnostics = append(comp.Diagnostics, types.Diagnostic{
			Severity: types.SeverityInfo,
			Message:  "program is empty",
		})
	}
	return comp, nil
}

// collectArgv concatenates the node's tokens with those of its descendants,
// depth-first in scan order.
func collectArgv(node *scan.Node) []string {
	argv := node.Entry.Argv()
	for _, child := range node.Children {
		argv = append(argv, collectArgv(child)...)
	}
	return argv
}

// checkDuplicates walks the tree and flags siblings sharing a sequence
// number. The colliding entries stay in lexicographic name order; strict
// compiles turn these warnings into failures.
func checkDuplicates(nodes []*scan.Node) []types.Diagnostic {
	var diags []types.Diagnostic
	bySeq := make(map[int][]string)
	for _, n := range nodes {
		bySeq[n.Entry.Seq] = append(bySeq[n.Entry.Seq], n.Entry.Name)
	}
	for _, n := range nodes {
		names := bySeq[n.Entry.Seq]
		if len(names) > 1 && n.Entry.Name == names[0] {
			diags = append(diags, types.Diagnostic{
				Severity: types.SeverityWarning,
				Path:     n.Entry.RelPath,
				Message: fmt.Sprintf("duplicate sequence %d shared by %s; name order is the tiebreak",
					n.Entry.Seq, strings.Join(names, ", ")),
			})
		}
		diags = append(diags, checkDuplicates(n.Children)...)
	}
	return diags
}

// matchesFilter reports whether any argv token matches the glob pattern.
// The pattern is validated before compilation starts.
func matchesFilter(pattern string, argv []string) bool {
	for _, tok := range argv {
		if ok, _ := path.Match(pattern, tok); ok {
			return true
		}
	}
	return false
}

// parseSequenceRange parses "N..M" with either side optional, or a single
// "N". An empty spec means no restriction.
func parseSequenceRange(spec string) (lo, hi int, err error) {
	lo, hi = 0, int(^uint(0)>>1)
	if spec == "" {
		return lo, hi, nil
	}

	atoi := func(s string) (int, error) {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %q", types.ErrInvalidSequenceRange, spec)
		}
		return n, nil
	}

	before, after, found := strings.Cut(spec, "..")
	if !found {
		n, err := atoi(spec)
		if err != nil {
			return 0, 0, err
		}
		return n, n, nil
	}
	if before == "" && after == "" {
		return 0, 0, fmt.Errorf("%w: %q", types.ErrInvalidSequenceRange, spec)
	}
	if before != "" {
		if lo, err = atoi(before); err != nil {
			return 0, 0, err
		}
	}
	if after != "" {
		if hi, err = atoi(after); err != nil {
			return 0, 0, err
		}
	}
	if lo > hi {
		return 0, 0, fmt.Errorf("%w: %q", types.ErrInvalidSequenceRange, spec)
	}
	return lo, hi, nil
}

// contentHash hashes the ordered entry paths of the (merged) tree. File
// contents are never read: names are the program.
func contentHash(tree *scan.Tree) string {
	h := sha256.New()
	for _, p := range tree.EntryPaths() {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// newID generates a UUID v7 with a v4 fallback.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
