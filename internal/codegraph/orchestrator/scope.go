package orchestrator

import (
	"github.com/viant/codegraph/internal/codegraph/ir"
	"github.com/viant/codegraph/internal/codegraph/symbolgraph"
)

// ScopeExpander grows a ChangeSet's file set along reverse dependency
// edges so files whose analysis result depends on a changed file are
// re-analyzed too, §4.16 "A scope expander grows the set along reverse
// dependency edges (from the Symbol-Graph)".
type ScopeExpander struct {
	Graph *symbolgraph.Graph
	// FileOf maps a symbol id to the file path that declares it, since
	// the Symbol-Graph's reverse indices are keyed by ir.NodeID, not path.
	FileOf func(id ir.NodeID) string
}

// Expand returns every file path reachable by walking CalledBy,
// ImportedBy, TypeUsers, ReadsBy, and WritesBy backwards from the symbols
// declared in changedFiles, up to maxDepth hops. maxDepth <= 0 means
// "only the changed files themselves" (no expansion).
func (e *ScopeExpander) Expand(changedFiles []string, maxDepth int) []string {
	seen := map[string]bool{}
	for _, f := range changedFiles {
		seen[f] = true
	}
	if maxDepth <= 0 || e.Graph == nil {
		return toSlice(seen)
	}

	frontier := e.symbolsIn(changedFiles)
	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		var next []ir.NodeID
		for _, sym := range frontier {
			for _, dependents := range [][]ir.NodeID{
				e.Graph.CalledBy[sym],
				e.Graph.ImportedBy[sym],
				e.Graph.TypeUsers[sym],
				e.Graph.ReadsBy[sym],
				e.Graph.WritesBy[sym],
			} {
				for _, dep := range dependents {
					if e.FileOf == nil {
						continue
					}
					path := e.FileOf(dep)
					if path != "" && !seen[path] {
						seen[path] = true
						next = append(next, dep)
					}
				}
			}
		}
		frontier = next
	}
	return toSlice(seen)
}

func (e *ScopeExpander) symbolsIn(files []string) []ir.NodeID {
	if e.FileOf == nil || e.Graph == nil {
		return nil
	}
	fileSet := map[string]bool{}
	for _, f := range files {
		fileSet[f] = true
	}
	var out []ir.NodeID
	for id := range e.Graph.Symbols {
		if fileSet[e.FileOf(id)] {
			out = append(out, id)
		}
	}
	return out
}

func toSlice(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
