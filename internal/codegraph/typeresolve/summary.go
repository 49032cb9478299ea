package typeresolve

import "github.com/viant/codegraph/internal/codegraph/ir"

// Config exposes the tunables named as Open Questions / load-bearing
// constants in §9: MaxUnionSize defaults to 8, preserved from the source
// but made configurable per the spec's instruction.
type Config struct {
	MaxUnionSize int
	// External resolves return types for callees outside the indexed
	// repository (stdlib/third-party Go packages) via compiled export data,
	// instead of those calls widening straight to Unknown. Optional: nil
	// means every external callee resolves to Unknown, as before.
	External *ExternalResolver
}

// DefaultConfig preserves the source's max_union_size of 8 (§9).
func DefaultConfig() Config { return Config{MaxUnionSize: 8} }

// ExternalCallee is a call to a function this process never parsed itself
// (standard library or third-party), identified by Go import path and
// function name.
type ExternalCallee struct {
	PkgPath  string
	FuncName string
}

// FunctionInfo is the minimal per-function input the summary builder needs:
// an explicit annotation if present, whether it is a known-builtin dunder
// or a test function, and the set of return-expression inferred types from
// walking its body.
type FunctionInfo struct {
	ID               ir.NodeID
	ExplicitAnnotation *Expr
	IsDunderUnit       bool // e.g. __init__-style constructors that return unit
	IsTestFunction     bool
	BodyReturnTypes    []Expr
	Callees            []ir.NodeID // call-graph edges out of this function
	// ExternalCallees are call-graph edges this process cannot resolve
	// locally (out-of-repository functions); joined via Config.External
	// when set, else they contribute nothing (not even Unknown — an
	// unresolvable external call shouldn't force widening by itself).
	ExternalCallees []ExternalCallee
}

// Summary is the resolved return-type summary for one function, §4.7.
type Summary struct {
	FunctionID ir.NodeID
	Type       Expr
	Source     string // which priority rule produced Type: "annotation" | "builtin" | "test" | "join" | "unknown"
}

// BuildSummaries resolves return-type summaries for every function in fns,
// honoring the priority order of §4.7: (1) explicit annotation, (2)
// dunder/known-builtin rule, (3) test-function heuristic, (4) all-returns
// join, (5) unknown. Functions are grouped into call-graph SCCs and solved
// bottom-up; within an SCC a fixpoint iteration converges monotonically
// because Union only ever grows (or widens to Any at MaxUnionSize).
func BuildSummaries(cfg Config, fns []FunctionInfo) map[ir.NodeID]Summary {
	byID := make(map[ir.NodeID]*FunctionInfo, len(fns))
	for i := range fns {
		byID[fns[i].ID] = &fns[i]
	}

	sccs := stronglyConnectedComponents(fns)
	summaries := make(map[ir.NodeID]Summary, len(fns))

	for _, scc := range sccs {
		for i := 0; i < len(scc)+1; i++ { // +1 guarantees at least one full pass after any join changes
			changed := false
			for _, id := range scc {
				fn := byID[id]
				next := resolveOne(cfg, fn, summaries)
				if prev, ok := summaries[id]; !ok || prev.Type.String() != next.Type.String() || prev.Source != next.Source {
					summaries[id] = next
					changed = true
				}
			}
			if !changed {
				break
			}
		}
	}
	return summaries
}

func resolveOne(cfg Config, fn *FunctionInfo, known map[ir.NodeID]Summary) Summary {
	if fn.ExplicitAnnotation != nil {
		return Summary{FunctionID: fn.ID, Type: *fn.ExplicitAnnotation, Source: "annotation"}
	}
	if fn.IsDunderUnit {
		return Summary{FunctionID: fn.ID, Type: Con("unit"), Source: "builtin"}
	}
	if fn.IsTestFunction {
		return Summary{FunctionID: fn.ID, Type: Con("unit"), Source: "test"}
	}
	if len(fn.BodyReturnTypes) == 0 && len(fn.Callees) == 0 && len(fn.ExternalCallees) == 0 {
		return Summary{FunctionID: fn.ID, Type: Unknown, Source: "unknown"}
	}

	joined := Expr{}
	first := true
	join := func(t Expr) {
		if first {
			joined = t
			first = false
			return
		}
		joined = Union(joined, t)
	}
	for _, t := range fn.BodyReturnTypes {
		join(t)
	}
	for _, callee := range fn.Callees {
		// A callee whose summary carries no information contributes nothing,
		// as with unresolved external callees, so an SCC member visited before
		// its partner cannot seed the join with Unknown.
		if s, ok := known[callee]; ok && s.Source != "unknown" {
			join(s.Type)
		}
	}
	if cfg.External != nil {
		for _, ext := range fn.ExternalCallees {
			if t, err := cfg.External.ResolveFunctionType(ext.PkgPath, ext.FuncName); err == nil {
				join(t)
			}
		}
	}
	if first {
		return Summary{FunctionID: fn.ID, Type: Unknown, Source: "unknown"}
	}
	if unionSize(joined) > cfg.MaxUnionSize {
		return Summary{FunctionID: fn.ID, Type: Unknown, Source: "join"}
	}
	return Summary{FunctionID: fn.ID, Type: joined, Source: "join"}
}

func unionSize(e Expr) int {
	if e.Name != "Union" {
		return 1
	}
	return len(e.Args)
}

// stronglyConnectedComponents runs Tarjan's algorithm over the call graph
// implied by FunctionInfo.Callees, returning SCCs in reverse-topological
// (bottom-up) order so that, when solving a later SCC, every callee SCC is
// already resolved.
func stronglyConnectedComponents(fns []FunctionInfo) [][]ir.NodeID {
	index := map[ir.NodeID]int{}
	lowlink := map[ir.NodeID]int{}
	onStack := map[ir.NodeID]bool{}
	var stack []ir.NodeID
	counter := 0
	var sccs [][]ir.NodeID

	byID := make(map[ir.NodeID]*FunctionInfo, len(fns))
	for i := range fns {
		byID[fns[i].ID] = &fns[i]
	}

	var strongconnect func(v ir.NodeID)
	strongconnect = func(v ir.NodeID) {
		index[v] = counter
		lowlink[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true

		fn, ok := byID[v]
		if ok {
			for _, w := range fn.Callees {
				if _, seen := byID[w]; !seen {
					continue // external callee, not part of this SCC computation
				}
				if _, visited := index[w]; !visited {
					strongconnect(w)
					if lowlink[w] < lowlink[v] {
						lowlink[v] = lowlink[w]
					}
				} else if onStack[w] {
					if index[w] < lowlink[v] {
						lowlink[v] = index[w]
					}
				}
			}
		}

		if lowlink[v] == index[v] {
			var scc []ir.NodeID
			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, fn := range fns {
		if _, visited := index[fn.ID]; !visited {
			strongconnect(fn.ID)
		}
	}
	// Tarjan naturally yields SCCs in reverse-topological order already.
	return sccs
}
