package lang_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/codegraph/internal/codegraph/ir"
	"github.com/viant/codegraph/internal/codegraph/lang"
)

func TestStableIDIsDeterministic(t *testing.T) {
	a, err := lang.StableID("a.go", ir.KindFunction, "pkg.Foo", "block(call,return)")
	require.NoError(t, err)
	b, err := lang.StableID("a.go", ir.KindFunction, "pkg.Foo", "block(call,return)")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEmpty(t, a)
}

func TestStableIDChangesOnRenameDespiteSameBodyStructure(t *testing.T) {
	before, err := lang.StableID("old.go", ir.KindFunction, "pkg.Old", "block(call,return)")
	require.NoError(t, err)
	after, err := lang.StableID("new.go", ir.KindFunction, "pkg.New", "block(call,return)")
	require.NoError(t, err)

	// StableID is not rename-stable by itself (file_path/fqn are part of the
	// hash); rename stability is a property of the caller's matching logic
	// across builds, not of a single StableID call in isolation.
	assert.NotEqual(t, before, after)
}

func TestStableIDChangesWithBodyStructure(t *testing.T) {
	a, _ := lang.StableID("a.go", ir.KindFunction, "pkg.Foo", "block(call)")
	b, _ := lang.StableID("a.go", ir.KindFunction, "pkg.Foo", "block(call,return)")

	assert.NotEqual(t, a, b)
}

func TestContentHashDiffersOnBodyChange(t *testing.T) {
	a, err := lang.ContentHash([]byte("func Foo() {}"))
	require.NoError(t, err)
	b, err := lang.ContentHash([]byte("func Bar() {}"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestContentHashIsDeterministic(t *testing.T) {
	a, _ := lang.ContentHash([]byte("same"))
	b, _ := lang.ContentHash([]byte("same"))
	assert.Equal(t, a, b)
}
