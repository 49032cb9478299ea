package cfg

import "github.com/viant/codegraph/internal/codegraph/ir"

// Builder incrementally constructs one function's CFG and mirrors every
// edge into the owning ir.Document so downstream consumers can traverse
// either representation.
type Builder struct {
	doc   *ir.Document
	graph *Graph
	succ  map[int32][]int32
	pred  map[int32][]int32
}

// NewBuilder starts a CFG build for functionID, seeding the mandatory single
// Entry block (§3: "a function has exactly one Entry and at least one
// Exit").
func NewBuilder(doc *ir.Document, functionID ir.NodeID) *Builder {
	g := &Graph{FunctionID: functionID}
	entry := Block{ID: 0, Kind: BlockEntry, FunctionID: functionID, Reachable: true}
	g.Blocks = append(g.Blocks, entry)
	g.EntryID = 0
	return &Builder{doc: doc, graph: g, succ: map[int32][]int32{}, pred: map[int32][]int32{}}
}

// AddBlock appends a new block of the given kind covering the given
// statement range and returns its id.
func (b *Builder) AddBlock(kind BlockKind, stmtRange StatementRange) int32 {
	id := int32(len(b.graph.Blocks))
	blk := Block{ID: id, Kind: kind, StatementRange: stmtRange, FunctionID: b.graph.FunctionID}
	if kind == BlockExit {
		b.graph.ExitIDs = append(b.graph.ExitIDs, id)
	}
	b.graph.Blocks = append(b.graph.Blocks, blk)
	return id
}

// CFG blocks are addressed by (functionID, blockID) in the analyses above
// this package, so no ir.Node is minted per block here; the structural layer
// may choose to
// mint CFGBlock nodes separately when it needs to address a block via edges
// to non-CFG nodes (e.g. THROWS to an exception type).

// Link records a successor edge of the given kind between two blocks, both
// in this builder's graph and, for kinds the data model tracks as IR edges,
// in the owning document via the supplied node ids for the two blocks.
func (b *Builder) Link(kind ir.EdgeKind, fromBlock, toBlock int32, fromNode, toNode ir.NodeID, attrs map[string]any) {
	b.succ[fromBlock] = append(b.succ[fromBlock], toBlock)
	b.pred[toBlock] = append(b.pred[toBlock], fromBlock)
	b.doc.AddEdge(ir.Edge{Kind: kind, SourceID: fromNode, TargetID: toNode, Attrs: attrs})
}

// Finish marks reachability from Entry and returns the completed graph. A
// function with no explicit return falls through to a single synthetic
// Exit block covering no statements.
func (b *Builder) Finish() *Graph {
	if len(b.graph.ExitIDs) == 0 {
		// AddBlock records an Exit block's id in ExitIDs itself.
		b.AddBlock(BlockExit, StatementRange{})
	}
	b.markReachability()
	return b.graph
}

func (b *Builder) markReachability() {
	visited := make(map[int32]bool)
	queue := []int32{b.graph.EntryID}
	visited[b.graph.EntryID] = true
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range b.succ[cur] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	for i := range b.graph.Blocks {
		b.graph.Blocks[i].Reachable = visited[b.graph.Blocks[i].ID]
	}
}

// Successors returns the successor block ids of from.
func (b *Builder) Successors(from int32) []int32 { return b.succ[from] }

// Predecessors returns the predecessor block ids of to.
func (b *Builder) Predecessors(to int32) []int32 { return b.pred[to] }

// ComputeDominators runs the standard iterative dominator algorithm
// (Cooper, Harvey, Kennedy) over g using the builder's predecessor map, and
// stores each block's immediate dominator on the block itself. Reverse
// postorder over the CFG converges in at most O(E) iterations for typical
// (reducible) function bodies.
func (b *Builder) ComputeDominators() {
	order := b.reversePostorder()
	indexOf := make(map[int32]int, len(order))
	for i, id := range order {
		indexOf[id] = i
	}

	idom := make(map[int32]int32)
	idom[b.graph.EntryID] = b.graph.EntryID
	changed := true
	for changed {
		changed = false
		for _, node := range order {
			if node == b.graph.EntryID {
				continue
			}
			var newIdom int32 = -1
			first := true
			for _, p := range b.pred[node] {
				if _, ok := idom[p]; !ok {
					continue
				}
				if first {
					newIdom = p
					first = false
					continue
				}
				newIdom = intersect(idom, indexOf, newIdom, p)
			}
			if first {
				continue
			}
			if prev, ok := idom[node]; !ok || prev != newIdom {
				idom[node] = newIdom
				changed = true
			}
		}
	}
	for i, blk := range b.graph.Blocks {
		if d, ok := idom[blk.ID]; ok && d != blk.ID {
			b.graph.Blocks[i].DominatorID = d
			b.graph.Blocks[i].HasDominator = true
		}
	}
}

func intersect(idom map[int32]int32, indexOf map[int32]int, a, b int32) int32 {
	for a != b {
		for indexOf[a] > indexOf[b] {
			a = idom[a]
		}
		for indexOf[b] > indexOf[a] {
			b = idom[b]
		}
	}
	return a
}

func (b *Builder) reversePostorder() []int32 {
	visited := make(map[int32]bool)
	var post []int32
	var visit func(n int32)
	visit = func(n int32) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, s := range b.succ[n] {
			visit(s)
		}
		post = append(post, n)
	}
	visit(b.graph.EntryID)
	// reverse
	out := make([]int32, len(post))
	for i, n := range post {
		out[len(post)-1-i] = n
	}
	return out
}

// Graph exposes the in-progress graph for read access (blocks, entry id).
func (b *Builder) Graph() *Graph { return b.graph }
