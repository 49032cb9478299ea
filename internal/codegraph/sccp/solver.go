package sccp

// VarID identifies an SSA variable; BlockID identifies a CFG block. Both are
// opaque to this package — the caller (the analysis orchestrator) maps them
// back to ir.NodeID/cfg.Block as needed.
type VarID int32
type BlockID int32

// OpKind enumerates the instruction shapes the solver understands. Anything
// else the caller classifies as OpOther is conservatively Bottom.
type OpKind int

const (
	OpConst OpKind = iota
	OpCopy
	OpBinary
	OpPhi
	OpBranch
	OpOther
)

// Instr is one SSA instruction in a block: optionally defines Def from
// applying Op to Uses (interpretation of Uses depends on Op — e.g. for
// OpBinary the caller supplies an Eval closure). Branch is non-nil only for
// OpBranch and decides which successor(s) are live given the guard's value.
type Instr struct {
	Def     VarID
	HasDef  bool
	Op      OpKind
	Uses    []VarID
	Literal any // for OpConst
	Eval    func(args []any) (any, BottomReason)
	Branch  *BranchInfo
}

// BranchInfo names a guard variable and its true/false successor blocks.
type BranchInfo struct {
	Guard            VarID
	TrueBlock, FalseBlock BlockID
}

// Block is one CFG block: its instructions in order and its successor list
// for non-branch (fallthrough/unconditional) control flow.
type Block struct {
	ID     BlockID
	Instrs []Instr
	Next   []BlockID // used when the block has no Branch instruction
}

// Program is the whole-function input to the solver.
type Program struct {
	Entry  BlockID
	Blocks map[BlockID]*Block
}

// Result is the solver's fixpoint output: the lattice value of every
// variable and the reachability of every block.
type Result struct {
	Values      map[VarID]Value
	Reachable   map[BlockID]bool
	PrunedEdges []PrunedEdge
	// Iterations counts worklist pops, i.e. how many times a block was
	// (re-)processed before the fixpoint converged. Exposed so a caller can
	// report it as a solver health metric; it has no effect on Result's
	// other fields.
	Iterations int
}

// PrunedEdge records a branch edge the solver proved Unreachable, feeding
// the diagnostics of §8 S2 ("diagnostics list must contain one
// unreachable_code warning").
type PrunedEdge struct {
	FromBlock BlockID
	ToBlock   BlockID
}

// Solve runs the worklist fixpoint of §4.8 to convergence: block
// reachability and variable values are two coupled monotone lattices,
// propagated together so a block proven Unreachable forces every variable
// it alone defines to Unreachable, and branch guards proven constant prune
// the non-taken successor.
func Solve(p Program) Result {
	values := map[VarID]Value{}
	reachable := map[BlockID]bool{p.Entry: true}
	var pruned []PrunedEdge
	prunedSeen := map[[2]BlockID]bool{}

	blockWork := []BlockID{p.Entry}
	seenBlock := map[BlockID]bool{p.Entry: true}

	get := func(v VarID) Value {
		if val, ok := values[v]; ok {
			return val
		}
		return TopValue()
	}

	iterations := 0
	for len(blockWork) > 0 {
		iterations++
		b := blockWork[0]
		blockWork = blockWork[1:]
		seenBlock[b] = false
		blk, ok := p.Blocks[b]
		if !ok || !reachable[b] {
			continue
		}

		enqueueBlock := func(next BlockID) {
			if !reachable[next] {
				reachable[next] = true
			}
			if !seenBlock[next] {
				seenBlock[next] = true
				blockWork = append(blockWork, next)
			}
		}

		for _, instr := range blk.Instrs {
			var next Value
			switch instr.Op {
			case OpConst:
				next = Const(instr.Literal)
			case OpCopy:
				next = get(instr.Uses[0])
			case OpPhi:
				next = TopValue()
				for _, u := range instr.Uses {
					next = Meet(next, get(u))
				}
			case OpBinary:
				args := make([]any, len(instr.Uses))
				allConst := true
				for i, u := range instr.Uses {
					uv := get(u)
					if uv.State != ConstantState {
						allConst = false
					}
					args[i] = uv.Raw
				}
				if !allConst || instr.Eval == nil {
					next = BottomValue()
				} else {
					result, reason := instr.Eval(args)
					if MustBottom(reason) {
						next = BottomValue()
					} else {
						next = Const(result)
					}
				}
			default:
				next = BottomValue()
			}

			if instr.HasDef {
				prev := get(instr.Def)
				merged := Meet(prev, next)
				if !merged.Equal(prev) {
					values[instr.Def] = merged
				} else if _, ok := values[instr.Def]; !ok {
					values[instr.Def] = next
				}
			}

			if instr.Branch != nil {
				guard := get(instr.Branch.Guard)
				switch {
				case guard.State == ConstantState && guard.Raw == true:
					enqueueBlock(instr.Branch.TrueBlock)
					markPruned(&pruned, prunedSeen, b, instr.Branch.FalseBlock)
				case guard.State == ConstantState && guard.Raw == false:
					enqueueBlock(instr.Branch.FalseBlock)
					markPruned(&pruned, prunedSeen, b, instr.Branch.TrueBlock)
				default:
					enqueueBlock(instr.Branch.TrueBlock)
					enqueueBlock(instr.Branch.FalseBlock)
				}
			}
		}
		for _, n := range blk.Next {
			enqueueBlock(n)
		}
	}

	// Any block never proven reachable is Unreachable, and its defs follow.
	for id, blk := range p.Blocks {
		if reachable[id] {
			continue
		}
		reachable[id] = false
		if blk == nil {
			continue
		}
		for _, instr := range blk.Instrs {
			if _, ok := values[instr.Def]; instr.HasDef && !ok {
				values[instr.Def] = UnreachableValue()
			}
		}
	}

	return Result{Values: values, Reachable: reachable, PrunedEdges: pruned, Iterations: iterations}
}

func markPruned(pruned *[]PrunedEdge, seen map[[2]BlockID]bool, from, to BlockID) {
	key := [2]BlockID{from, to}
	if seen[key] {
		return
	}
	seen[key] = true
	*pruned = append(*pruned, PrunedEdge{FromBlock: from, ToBlock: to})
}
