package sccp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/codegraph/internal/codegraph/sccp"
)

func TestMeetTopYieldsOtherOperand(t *testing.T) {
	assert.True(t, sccp.Const(5).Equal(sccp.Meet(sccp.TopValue(), sccp.Const(5))))
	assert.True(t, sccp.Const(5).Equal(sccp.Meet(sccp.Const(5), sccp.TopValue())))
}

func TestMeetMatchingConstantsStayConstant(t *testing.T) {
	got := sccp.Meet(sccp.Const(5), sccp.Const(5))
	assert.True(t, sccp.Const(5).Equal(got))
}

func TestMeetConflictingConstantsYieldsBottom(t *testing.T) {
	got := sccp.Meet(sccp.Const(5), sccp.Const(6))
	assert.Equal(t, sccp.Bottom, got.State)
}

func TestMeetBottomDominates(t *testing.T) {
	assert.Equal(t, sccp.Bottom, sccp.Meet(sccp.BottomValue(), sccp.Const(5)).State)
	assert.Equal(t, sccp.Bottom, sccp.Meet(sccp.Const(5), sccp.BottomValue()).State)
}

func TestMeetUnreachableYieldsOtherOperand(t *testing.T) {
	assert.True(t, sccp.Const(5).Equal(sccp.Meet(sccp.UnreachableValue(), sccp.Const(5))))
	assert.True(t, sccp.Const(5).Equal(sccp.Meet(sccp.Const(5), sccp.UnreachableValue())))
}

func TestValueEqualIgnoresRawForNonConstantStates(t *testing.T) {
	assert.True(t, sccp.TopValue().Equal(sccp.TopValue()))
	assert.False(t, sccp.TopValue().Equal(sccp.BottomValue()))
}

func TestMustBottomReportsReasonPresence(t *testing.T) {
	assert.False(t, sccp.MustBottom(sccp.NoBottomReason))
	assert.True(t, sccp.MustBottom(sccp.ReasonNaNOrInfinity))
	assert.True(t, sccp.MustBottom(sccp.ReasonImpureCall))
}

func TestValueStringFormatsEachState(t *testing.T) {
	assert.Equal(t, "Top", sccp.TopValue().String())
	assert.Equal(t, "Bottom", sccp.BottomValue().String())
	assert.Equal(t, "Unreachable", sccp.UnreachableValue().String())
	assert.Equal(t, "Constant(5)", sccp.Const(5).String())
}
