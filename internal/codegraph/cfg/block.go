// Package cfg builds the basic-block and control-flow graph layers (L2/L3,
// §4.4) on top of the structural IR: a file-wide statement index, per-
// function basic blocks, and CFG edges including exception handlers.
package cfg

import "github.com/viant/codegraph/internal/codegraph/ir"

// BlockKind enumerates CFG block kinds, §3.
type BlockKind string

const (
	BlockEntry   BlockKind = "Entry"
	BlockBody    BlockKind = "Body"
	BlockBranch  BlockKind = "Branch"
	BlockLoop    BlockKind = "Loop"
	BlockHandler BlockKind = "Handler"
	BlockExit    BlockKind = "Exit"
)

// StatementRange is the [start, end) statement index range a block covers.
type StatementRange struct {
	Start int
	End   int
}

// Block is a CFG basic block, §3. DominatorID is set once the dominator
// tree is computed (needed for φ-placement in the DFG/SSA layer, §4.6).
type Block struct {
	ID             int32
	Kind           BlockKind
	StatementRange StatementRange
	FunctionID     ir.NodeID
	DominatorID    int32
	HasDominator   bool
	Reachable      bool
}

// Graph is one function's CFG: its blocks plus the edges recorded into the
// owning ir.Document (CFG_NEXT/CFG_BRANCH/CFG_LOOP/CFG_HANDLER, §3).
type Graph struct {
	FunctionID ir.NodeID
	Blocks     []Block
	EntryID    int32
	ExitIDs    []int32
}

// BlockByID returns the block with the given id, or false if out of range.
func (g *Graph) BlockByID(id int32) (Block, bool) {
	if id < 0 || int(id) >= len(g.Blocks) {
		return Block{}, false
	}
	return g.Blocks[id], true
}
