package parser_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/codegraph/internal/codegraph/ir"
	"github.com/viant/codegraph/internal/codegraph/parser"
)

func TestParseValidGoSource(t *testing.T) {
	adapter := parser.New(parser.Go)
	src := []byte("package main\n\nfunc Foo() int {\n\treturn 1\n}\n")

	tree, err := adapter.Parse(context.Background(), src)
	require.NoError(t, err)
	defer tree.Close()

	assert.False(t, tree.HasErrors())
	assert.Equal(t, "go", tree.Lang)
	assert.Equal(t, "source_file", tree.Root.Type())
}

func TestParseRecoversPartialTreeOnSyntaxError(t *testing.T) {
	adapter := parser.New(parser.Go)
	src := []byte("package main\n\nfunc Foo( {\n") // deliberately malformed

	tree, err := adapter.Parse(context.Background(), src)
	require.NoError(t, err)
	defer tree.Close()

	assert.True(t, tree.HasErrors())
	assert.NotNil(t, tree.Root) // still usable despite the error
}

func TestNodeSpanIsByteExact(t *testing.T) {
	adapter := parser.New(parser.Go)
	src := []byte("package main\n\nfunc Foo() {}\n")

	tree, err := adapter.Parse(context.Background(), src)
	require.NoError(t, err)
	defer tree.Close()

	fn := parser.FirstChildOfType(tree.Root, "function_declaration")
	require.NotNil(t, fn)

	span := parser.NodeSpan(ir.FileID(1), fn)
	assert.Equal(t, "func Foo() {}", string(src[span.StartByte:span.EndByte]))
	assert.True(t, span.Valid(len(src)))
}

func TestIncrementalParseReparsesEditedSource(t *testing.T) {
	adapter := parser.New(parser.Go)
	src1 := []byte("package main\n\nfunc Foo() int { return 1 }\n")

	tree1, err := adapter.Parse(context.Background(), src1)
	require.NoError(t, err)
	defer tree1.Close()

	src2 := []byte("package main\n\nfunc Foo() int { return 2 }\n")
	tree2, err := adapter.IncrementalParse(context.Background(), tree1, src2)
	require.NoError(t, err)
	defer tree2.Close()

	assert.False(t, tree2.HasErrors())
	assert.Equal(t, "source_file", tree2.Root.Type())
}
