package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/codegraph/internal/codegraph/ir"
)

func TestSpanValidRejectsNegativeOrInvertedBytes(t *testing.T) {
	assert.True(t, ir.Span{StartByte: 0, EndByte: 10, StartLine: 1, EndLine: 1}.Valid(20))
	assert.False(t, ir.Span{StartByte: -1, EndByte: 10}.Valid(20))
	assert.False(t, ir.Span{StartByte: 10, EndByte: 5}.Valid(20))
	assert.False(t, ir.Span{StartByte: 0, EndByte: 30}.Valid(20))
}

func TestSpanValidRejectsInvertedLines(t *testing.T) {
	assert.False(t, ir.Span{StartByte: 0, EndByte: 1, StartLine: 5, EndLine: 1}.Valid(10))
}

func TestSpanContainsRequiresSameFileAndSubrange(t *testing.T) {
	outer := ir.Span{FileID: 1, StartByte: 0, EndByte: 100}
	inner := ir.Span{FileID: 1, StartByte: 10, EndByte: 20}
	other := ir.Span{FileID: 2, StartByte: 10, EndByte: 20}

	assert.True(t, outer.Contains(inner))
	assert.False(t, outer.Contains(other))
	assert.False(t, inner.Contains(outer))
}
