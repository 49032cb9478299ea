package expr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/codegraph/internal/codegraph/expr"
	"github.com/viant/codegraph/internal/codegraph/ir"
)

func TestAppendAssignsSequentialIDs(t *testing.T) {
	a := expr.New()
	id1 := a.Append(expr.KindLiteral, ir.Span{}, ir.StringID(1), nil, 0, 0)
	id2 := a.Append(expr.KindNameLoad, ir.Span{}, ir.StringID(2), nil, 0, 0)

	assert.Equal(t, ir.ExprID(0), id1)
	assert.Equal(t, ir.ExprID(1), id2)
	assert.Equal(t, 2, a.Len())
}

func TestOperandsOfReturnsCorrectSlice(t *testing.T) {
	a := expr.New()
	lhs := a.Append(expr.KindNameLoad, ir.Span{}, 1, nil, 0, 0)
	rhs := a.Append(expr.KindLiteral, ir.Span{}, 2, nil, 0, 0)
	binop := a.Append(expr.KindBinop, ir.Span{}, 0, []ir.ExprID{lhs, rhs}, 0, 0)

	ops := a.OperandsOf(binop)
	require.Len(t, ops, 2)
	assert.Equal(t, lhs, ops[0])
	assert.Equal(t, rhs, ops[1])
}

func TestOperandsOfIsolatedAcrossMultipleAppends(t *testing.T) {
	a := expr.New()
	x := a.Append(expr.KindNameLoad, ir.Span{}, 1, nil, 0, 0)
	y := a.Append(expr.KindNameLoad, ir.Span{}, 2, nil, 0, 0)
	call1 := a.Append(expr.KindCall, ir.Span{}, 0, []ir.ExprID{x}, 0, 0)
	call2 := a.Append(expr.KindCall, ir.Span{}, 0, []ir.ExprID{y}, 0, 0)

	assert.Equal(t, []ir.ExprID{x}, a.OperandsOf(call1))
	assert.Equal(t, []ir.ExprID{y}, a.OperandsOf(call2))
}

func TestSetCalleeRecordsResolvedSymbol(t *testing.T) {
	a := expr.New()
	call := a.Append(expr.KindCall, ir.Span{}, 0, nil, 0, 0)

	a.SetCallee(call, ir.StringID(5), ir.NodeID(3), true)

	assert.Equal(t, ir.StringID(5), a.CalleeName[call])
	assert.Equal(t, ir.NodeID(3), a.CalleeSymbol[call])
	assert.True(t, a.HasCallee[call])
}

func TestSetCalleeUnresolvedLeavesSymbolUnset(t *testing.T) {
	a := expr.New()
	call := a.Append(expr.KindCall, ir.Span{}, 0, nil, 0, 0)

	a.SetCallee(call, ir.StringID(5), ir.NodeID(3), false)

	assert.Equal(t, ir.StringID(5), a.CalleeName[call])
	assert.False(t, a.HasCallee[call])
	assert.Equal(t, ir.NodeID(0), a.CalleeSymbol[call])
}
