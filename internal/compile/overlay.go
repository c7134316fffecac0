package compile

import (
	"sort"

	"github.com/isdood/gloop/internal/scan"
)

// mergeNodes merges an overlay level into a base level. Entries match on
// their sequence number; when both sides of a match are directories their
// children merge recursively, otherwise the overlay entry replaces the base
// entry wholesale. Unmatched overlay entries are inserted. The result is
// re-sorted by (sequence, name).
//
// Duplicate sequences within a level make the match ambiguous; the first
// base entry with the sequence is the one replaced, which matches the
// lexicographic tiebreak order the scanner already applied.
func mergeNodes(base, overlay []*scan.Node) []*scan.Node {
	merged := make([]*scan.Node, len(base))
	copy(merged, base)

	for _, over := range overlay {
		idx := -1
		for i, b := range merged {
			if b.Entry.Seq == over.Entry.Seq {
				idx = i
				break
			}
		}
		switch {
		case idx < 0:
			merged = append(merged, over)
		case merged[idx].Entry.IsDir && over.Entry.IsDir:
			merged[idx] = &scan.Node{
				Entry:    over.Entry,
				Children: mergeNodes(merged[idx].Children, over.Children),
			}
		default:
			merged[idx] = over
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Entry.Seq != merged[j].Entry.Seq {
			return merged[i].Entry.Seq < merged[j].Entry.Seq
		}
		return merged[i].Entry.Name < merged[j].Entry.Name
	})
	return merged
}
