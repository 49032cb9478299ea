package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/codegraph/internal/codegraph/ir"
)

func TestInternerAssignsStableIDsForRepeatedStrings(t *testing.T) {
	in := ir.NewInterner()
	id1 := in.Intern("foo")
	id2 := in.Intern("bar")
	id3 := in.Intern("foo")

	assert.Equal(t, id1, id3)
	assert.NotEqual(t, id1, id2)
}

func TestInternerLookupRoundTrips(t *testing.T) {
	in := ir.NewInterner()
	id := in.Intern("hello")
	assert.Equal(t, "hello", in.Lookup(id))
}

func TestInternerLookupOutOfRangeReturnsEmpty(t *testing.T) {
	in := ir.NewInterner()
	assert.Equal(t, "", in.Lookup(ir.StringID(999)))
}

func TestInternerEmptyStringIsReservedZero(t *testing.T) {
	in := ir.NewInterner()
	assert.Equal(t, ir.StringID(0), in.Intern(""))
	assert.Equal(t, 1, in.Len())
}
