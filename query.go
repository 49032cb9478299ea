package codegraph

import (
	"time"

	"github.com/viant/codegraph/internal/codegraph/ir"
	"github.com/viant/codegraph/internal/codegraph/symbolgraph"
)

// QueryMode is execute_flow's mode ∈ {realtime, pr, full}, §6.
type QueryMode string

const (
	ModeRealtime QueryMode = "realtime"
	ModePR       QueryMode = "pr"
	ModeFull     QueryMode = "full"
)

// StopReason is the terminal condition of an execute_flow call, §5.
type StopReason string

const (
	StopComplete   StopReason = "Complete"
	StopNoMatch    StopReason = "NoMatch"
	StopMaxDepth   StopReason = "MaxDepth"
	StopMaxPaths   StopReason = "MaxPaths"
	StopTimeout    StopReason = "Timeout"
	StopCancelled  StopReason = "Cancelled"
	StopError      StopReason = "Error"
)

// Opts is execute_flow's budget, §5: "every analysis exposes a (max_depth,
// max_paths, timeout_ms) budget".
type Opts struct {
	MaxDepth  int
	MaxPaths  int
	TimeoutMS int64
}

// step is one `Var(name) >> Call(name)` hop in a Plan, carrying whatever
// constraints were chained onto it before the next step was appended.
type step struct {
	name       string
	via        map[ir.EdgeKind]bool
	excluding  map[ir.NodeID]bool
	where      func(symbolgraph.Symbol) bool
}

// Plan is the query built by chaining Var/Call factory calls, §6. It is
// immutable from the caller's perspective: every chain method returns a new
// Plan so `a := Var("x"); b := a.Call("y")` never mutates a after b is
// built, matching the fluent-builder idiom the teacher uses for its own
// inspector/graph traversal options.
type Plan struct {
	steps      []step
	limitPaths int
}

// Var starts a plan naming its first free variable.
func Var(name string) Plan {
	return Plan{steps: []step{{name: name}}}
}

// Call chains the next hop onto p, the `>>` operator of §6's
// `Var(name) >> Call(name)` notation.
func (p Plan) Call(name string) Plan {
	next := p.clone()
	next.steps = append(next.steps, step{name: name})
	return next
}

// Via restricts the edge kinds the most recently added hop may traverse.
func (p Plan) Via(kinds ...ir.EdgeKind) Plan {
	next := p.clone()
	last := next.lastStep()
	last.via = make(map[ir.EdgeKind]bool, len(kinds))
	for _, k := range kinds {
		last.via[k] = true
	}
	next.steps[len(next.steps)-1] = last
	return next
}

// Excluding removes the given symbol IDs from consideration at the most
// recently added hop.
func (p Plan) Excluding(ids ...ir.NodeID) Plan {
	next := p.clone()
	last := next.lastStep()
	last.excluding = make(map[ir.NodeID]bool, len(ids))
	for _, id := range ids {
		last.excluding[id] = true
	}
	next.steps[len(next.steps)-1] = last
	return next
}

// Where attaches an arbitrary predicate over the candidate Symbol at the
// most recently added hop.
func (p Plan) Where(pred func(symbolgraph.Symbol) bool) Plan {
	next := p.clone()
	last := next.lastStep()
	last.where = pred
	next.steps[len(next.steps)-1] = last
	return next
}

// LimitPaths bounds the number of paths execute_flow returns.
func (p Plan) LimitPaths(n int) Plan {
	next := p.clone()
	next.limitPaths = n
	return next
}

func (p Plan) clone() Plan {
	steps := make([]step, len(p.steps))
	copy(steps, p.steps)
	return Plan{steps: steps, limitPaths: p.limitPaths}
}

func (p Plan) lastStep() step {
	return p.steps[len(p.steps)-1]
}

// Path is one matched chain of symbols in a PathResult.
type Path struct {
	SymbolIDs []ir.NodeID
}

// PathResult is §6's `PathResult { paths[], stop_reason, diagnostics[],
// elapsed_ms }`.
type PathResult struct {
	Paths      []Path
	StopReason StopReason
	Diagnostics []string
	ElapsedMS  int64
}

// ExecuteFlow implements §6's Query API: `execute_flow(plan, mode, opts) →
// PathResult`. graph is the Symbol-Graph the plan walks — callers build it
// once per snapshot via symbolgraph.Build and reuse it across queries,
// since §4.10 sizes the Symbol-Graph specifically to stay resident for
// repeated interactive queries rather than be rebuilt per call.
func ExecuteFlow(graph *symbolgraph.Graph, plan Plan, mode QueryMode, opts Opts) PathResult {
	start := time.Now()
	result := PathResult{}

	if len(plan.steps) == 0 {
		result.StopReason = StopNoMatch
		result.ElapsedMS = elapsedMS(start)
		return result
	}

	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = len(plan.steps)
	}
	deadline := time.Time{}
	if opts.TimeoutMS > 0 {
		deadline = start.Add(time.Duration(opts.TimeoutMS) * time.Millisecond)
	}

	roots := candidatesByName(graph, plan.steps[0].name, plan.steps[0])

	var paths []Path
	var timedOut, hitMaxDepth, hitMaxPaths bool

	for _, root := range roots {
		if !deadline.IsZero() && time.Now().After(deadline) {
			timedOut = true
			break
		}
		walkPlan(graph, plan.steps, 1, []ir.NodeID{root}, maxDepth, deadline, func(path []ir.NodeID) bool {
			p := make([]ir.NodeID, len(path))
			copy(p, path)
			paths = append(paths, Path{SymbolIDs: p})
			if opts.MaxPaths > 0 && len(paths) >= opts.MaxPaths {
				hitMaxPaths = true
				return false
			}
			if plan.limitPaths > 0 && len(paths) >= plan.limitPaths {
				hitMaxPaths = true
				return false
			}
			return true
		}, &hitMaxDepth, &timedOut)
		if hitMaxPaths || timedOut {
			break
		}
	}

	result.Paths = paths
	result.ElapsedMS = elapsedMS(start)

	switch {
	case timedOut:
		result.StopReason = StopTimeout
	case hitMaxPaths:
		result.StopReason = StopMaxPaths
	case hitMaxDepth:
		result.StopReason = StopMaxDepth
	case len(paths) == 0:
		result.StopReason = StopNoMatch
	default:
		result.StopReason = StopComplete
	}
	return result
}

// walkPlan performs depth-first expansion of steps[depth:] from the partial
// path built so far, calling emit for every fully matched path. emit
// returns false to request early stop (max_paths reached).
func walkPlan(graph *symbolgraph.Graph, steps []step, depth int, path []ir.NodeID, maxDepth int, deadline time.Time, emit func([]ir.NodeID) bool, hitMaxDepth, timedOut *bool) bool {
	if depth == len(steps) {
		return emit(path)
	}
	if depth >= maxDepth {
		*hitMaxDepth = true
		return true
	}
	if !deadline.IsZero() && time.Now().After(deadline) {
		*timedOut = true
		return false
	}

	cur := path[len(path)-1]
	next := steps[depth]
	for _, candidate := range graph.Outgoing[cur] {
		rel := relationByID(graph, candidate)
		if rel == nil {
			continue
		}
		if next.via != nil && !next.via[rel.Kind] {
			continue
		}
		if !matchesStep(graph, rel.TargetID, next) {
			continue
		}
		extended := make([]ir.NodeID, len(path)+1)
		copy(extended, path)
		extended[len(path)] = rel.TargetID
		if !walkPlan(graph, steps, depth+1, extended, maxDepth, deadline, emit, hitMaxDepth, timedOut) {
			return false
		}
	}
	return true
}

func relationByID(graph *symbolgraph.Graph, id ir.EdgeID) *symbolgraph.Relation {
	for i := range graph.Relations {
		if graph.Relations[i].ID == id {
			return &graph.Relations[i]
		}
	}
	return nil
}

func matchesStep(graph *symbolgraph.Graph, id ir.NodeID, s step) bool {
	if s.excluding != nil && s.excluding[id] {
		return false
	}
	sym, ok := graph.Symbols[id]
	if !ok {
		return false
	}
	if sym.Name != s.name && sym.FQN != s.name {
		return false
	}
	if s.where != nil && !s.where(*sym) {
		return false
	}
	return true
}

// candidatesByName finds every symbol whose Name or FQN equals name,
// honoring the step's own where/excluding constraints — §6's Var(name)
// binds by name, not by a pre-known NodeID.
func candidatesByName(graph *symbolgraph.Graph, name string, s step) []ir.NodeID {
	var out []ir.NodeID
	for id, sym := range graph.Symbols {
		if sym.Name != name && sym.FQN != name {
			continue
		}
		if !matchesStep(graph, id, s) {
			continue
		}
		out = append(out, id)
	}
	return out
}

func elapsedMS(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
