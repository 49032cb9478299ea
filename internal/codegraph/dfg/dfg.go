// Package dfg builds the data-flow graph and, for functions under the
// configured size threshold, SSA form on top of it (L5, §4.6). Def-use
// chains are recorded per variable; φ-node slots are placed at iterated
// dominance frontiers. No renaming pass runs: variables carry no SSA version
// numbers.
package dfg

import (
	"github.com/viant/codegraph/internal/codegraph/cfg"
	"github.com/viant/codegraph/internal/codegraph/expr"
	"github.com/viant/codegraph/internal/codegraph/ir"
)

// Variable is the DFG record for one symbol, §3 "DFG Variable": its
// definition site and every use site. Graph.Variables holds one Variable
// struct per symbol; the fields are not split into parallel slices the way
// the expression arena's are.
type Variable struct {
	ID          int32
	SymbolID    ir.NodeID
	DefSiteExpr ir.ExprID
	UseSites    []ir.ExprID
}

// Graph holds every Variable for one function plus the SSA φ-expressions
// synthesized for it, if SSA construction ran (Mode == SSA).
type Graph struct {
	FunctionID ir.NodeID
	Variables  []Variable
	Mode       Mode
	// Phis maps a block id to one slot per φ placed there; each slot holds
	// ir.NoExpr, since no φ-expression is appended to the arena.
	Phis map[int32][]ir.ExprID
}

// Mode distinguishes full SSA construction from the reaching-def-only
// fallback used above the size threshold (§4.6).
type Mode string

const (
	ModeSSA         Mode = "ssa"
	ModeReachingDef Mode = "reaching_def"
)

// Config gates SSA construction by function body size (§4.6: "function
// body <= N source lines; N is a configuration option").
type Config struct {
	FunctionLOCThreshold int
}

// DefaultConfig mirrors a representative teacher/default budget: small and
// medium functions get full SSA, only unusually large bodies fall back.
func DefaultConfig() Config { return Config{FunctionLOCThreshold: 600} }

// VarUse is one raw (symbol, expression, block, is-write) observation
// recorded by the expression analyzer while it walks a function's blocks in
// CFG order; Build turns a sequence of these into a Graph.
type VarUse struct {
	Symbol   ir.NodeID
	ExprID   ir.ExprID
	BlockID  int32
	IsWrite  bool
}

// Build constructs the DFG (and SSA, if loc is within threshold) for one
// function from its CFG and the raw use/def observations gathered while
// walking its expressions in CFG order.
func Build(cfg Config, graph *cfg.Graph, arena *expr.Arena, locCount int, uses []VarUse, builder *cfgBuilderAdapter) *Graph {
	mode := ModeSSA
	if locCount > cfg.FunctionLOCThreshold {
		mode = ModeReachingDef
	}

	out := &Graph{FunctionID: graph.FunctionID, Mode: mode, Phis: map[int32][]ir.ExprID{}}

	// group uses per symbol, preserving encounter order.
	bySymbol := map[ir.NodeID][]VarUse{}
	order := []ir.NodeID{}
	for _, u := range uses {
		if _, ok := bySymbol[u.Symbol]; !ok {
			order = append(order, u.Symbol)
		}
		bySymbol[u.Symbol] = append(bySymbol[u.Symbol], u)
	}

	for varID, sym := range order {
		obs := bySymbol[sym]
		v := Variable{ID: int32(varID), SymbolID: sym}
		var lastDef ir.ExprID = ir.NoExpr
		for _, o := range obs {
			if o.IsWrite {
				lastDef = o.ExprID
				v.DefSiteExpr = o.ExprID
			} else {
				v.UseSites = append(v.UseSites, o.ExprID)
			}
		}
		_ = lastDef
		out.Variables = append(out.Variables, v)
	}

	if mode == ModeSSA && builder != nil {
		placePhis(out, graph, builder)
	}
	return out
}

// cfgBuilderAdapter exposes just the dominance-frontier query the SSA pass
// needs, decoupling dfg from cfg.Builder's full surface.
type cfgBuilderAdapter struct {
	Frontier func(blockID int32) []int32
	DefBlocks map[ir.NodeID][]int32
}

// NewCFGBuilderAdapter wraps a computed dominance frontier map and a
// per-symbol def-block map for phi placement.
func NewCFGBuilderAdapter(frontier map[int32][]int32, defBlocks map[ir.NodeID][]int32) *cfgBuilderAdapter {
	return &cfgBuilderAdapter{
		Frontier:  func(b int32) []int32 { return frontier[b] },
		DefBlocks: defBlocks,
	}
}

// placePhis inserts a φ-expression (expr.KindPhi) at the iterated dominance
// frontier of every block that defines a variable with more than one
// reaching definition, following the standard Cytron et al. placement rule.
func placePhis(g *Graph, graph *cfg.Graph, adapter *cfgBuilderAdapter) {
	for _, v := range g.Variables {
		defs := adapter.DefBlocks[v.SymbolID]
		if len(defs) < 2 {
			continue
		}
		hasPhi := map[int32]bool{}
		worklist := append([]int32{}, defs...)
		for len(worklist) > 0 {
			b := worklist[0]
			worklist = worklist[1:]
			for _, f := range adapter.Frontier(b) {
				if hasPhi[f] {
					continue
				}
				hasPhi[f] = true
				g.Phis[f] = append(g.Phis[f], ir.NoExpr) // placeholder slot; stays ir.NoExpr
				worklist = append(worklist, f)
			}
		}
	}
}

// DominanceFrontier computes the standard dominance frontier set for every
// block in g, given each block's immediate dominator (set by
// cfg.Builder.ComputeDominators) and its predecessor list.
func DominanceFrontier(g *cfg.Graph, preds map[int32][]int32) map[int32][]int32 {
	df := map[int32][]int32{}
	idom := map[int32]int32{}
	for _, b := range g.Blocks {
		if b.HasDominator {
			idom[b.ID] = b.DominatorID
		}
	}
	for _, b := range g.Blocks {
		ps := preds[b.ID]
		if len(ps) < 2 {
			continue
		}
		for _, p := range ps {
			runner := p
			for runner != idom[b.ID] && runner != b.ID {
				df[runner] = appendUnique(df[runner], b.ID)
				next, ok := idom[runner]
				if !ok {
					break
				}
				runner = next
			}
		}
	}
	return df
}

func appendUnique(xs []int32, v int32) []int32 {
	for _, x := range xs {
		if x == v {
			return xs
		}
	}
	return append(xs, v)
}
