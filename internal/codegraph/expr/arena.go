// Package expr implements the Expression IR (L4, §3 "Expression"): a
// structure-of-arrays arena of typed expressions referenced by integer
// index. Callers populate it through Append; this package contains no AST
// analyzer.
package expr

import "github.com/viant/codegraph/internal/codegraph/ir"

// Kind enumerates expression kinds.
type Kind string

const (
	KindCall       Kind = "CALL"
	KindNameLoad   Kind = "NAME_LOAD"
	KindNameStore  Kind = "NAME_STORE"
	KindAssign     Kind = "ASSIGN"
	KindCompare    Kind = "COMPARE"
	KindBinop      Kind = "BINOP"
	KindLiteral    Kind = "LITERAL"
	KindAttr       Kind = "ATTR"
	KindSubscript  Kind = "SUBSCRIPT"
	KindPhi        Kind = "PHI"
)

// Arena is the structure-of-arrays expression store of §3. An expression is
// identified by its index into kinds/spans/... An absent literal or callee
// symbol is represented by ir.StringID(0) (the interner's empty sentinel).
type Arena struct {
	Kinds          []Kind
	Spans          []ir.Span
	LiteralIDs     []ir.StringID
	OperandOffsets []int32
	OperandCounts  []int32
	Operands       []ir.ExprID

	// BlockID/FunctionID record the enclosing CFG block and function node
	// for each expression, taken from Append's blockID/functionID arguments.
	BlockID    []int32
	FunctionID []ir.NodeID

	// CalleeName/CalleeSymbol are populated only for KindCall expressions;
	// CalleeSymbol is set when the language resolver could bind the call
	// syntactically to a concrete node (§4.5).
	CalleeName   []ir.StringID
	CalleeSymbol []ir.NodeID
	HasCallee    []bool
}

// New returns an empty expression arena.
func New() *Arena { return &Arena{} }

// Append adds an expression with the given operands and returns its id.
func (a *Arena) Append(kind Kind, span ir.Span, literal ir.StringID, operands []ir.ExprID, blockID int32, functionID ir.NodeID) ir.ExprID {
	id := ir.ExprID(len(a.Kinds))
	a.Kinds = append(a.Kinds, kind)
	a.Spans = append(a.Spans, span)
	a.LiteralIDs = append(a.LiteralIDs, literal)
	a.OperandOffsets = append(a.OperandOffsets, int32(len(a.Operands)))
	a.OperandCounts = append(a.OperandCounts, int32(len(operands)))
	a.Operands = append(a.Operands, operands...)
	a.BlockID = append(a.BlockID, blockID)
	a.FunctionID = append(a.FunctionID, functionID)
	a.CalleeName = append(a.CalleeName, 0)
	a.CalleeSymbol = append(a.CalleeSymbol, 0)
	a.HasCallee = append(a.HasCallee, false)
	return id
}

// SetCallee records the syntactic callee name and, optionally, a resolved
// symbol node id for a CALL expression.
func (a *Arena) SetCallee(id ir.ExprID, name ir.StringID, symbol ir.NodeID, resolved bool) {
	a.CalleeName[id] = name
	if resolved {
		a.CalleeSymbol[id] = symbol
		a.HasCallee[id] = true
	}
}

// OperandsOf returns the operand expression ids of id.
func (a *Arena) OperandsOf(id ir.ExprID) []ir.ExprID {
	off := a.OperandOffsets[id]
	n := a.OperandCounts[id]
	return a.Operands[off : off+n]
}

// Len returns the number of expressions stored.
func (a *Arena) Len() int { return len(a.Kinds) }
