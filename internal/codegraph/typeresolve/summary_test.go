package typeresolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/codegraph/internal/codegraph/ir"
	"github.com/viant/codegraph/internal/codegraph/typeresolve"
)

func TestBuildSummariesHonorsExplicitAnnotation(t *testing.T) {
	intType := typeresolve.Con("Int")
	fns := []typeresolve.FunctionInfo{
		{ID: 1, ExplicitAnnotation: &intType},
	}

	out := typeresolve.BuildSummaries(typeresolve.DefaultConfig(), fns)

	require.Contains(t, out, ir.NodeID(1))
	assert.Equal(t, "annotation", out[1].Source)
	assert.True(t, intType.Equal(out[1].Type))
}

func TestBuildSummariesHonorsDunderAndTestRules(t *testing.T) {
	fns := []typeresolve.FunctionInfo{
		{ID: 1, IsDunderUnit: true},
		{ID: 2, IsTestFunction: true},
	}

	out := typeresolve.BuildSummaries(typeresolve.DefaultConfig(), fns)

	assert.Equal(t, "builtin", out[1].Source)
	assert.Equal(t, "test", out[2].Source)
}

func TestBuildSummariesReturnsUnknownForNoInformation(t *testing.T) {
	fns := []typeresolve.FunctionInfo{{ID: 1}}

	out := typeresolve.BuildSummaries(typeresolve.DefaultConfig(), fns)

	assert.Equal(t, "unknown", out[1].Source)
}

func TestBuildSummariesJoinsBodyReturnTypes(t *testing.T) {
	fns := []typeresolve.FunctionInfo{
		{ID: 1, BodyReturnTypes: []typeresolve.Expr{typeresolve.Con("Int"), typeresolve.Con("Str")}},
	}

	out := typeresolve.BuildSummaries(typeresolve.DefaultConfig(), fns)

	assert.Equal(t, "join", out[1].Source)
	assert.Equal(t, "Union", out[1].Type.Name)
}

func TestBuildSummariesWidensToUnknownPastMaxUnionSize(t *testing.T) {
	types := make([]typeresolve.Expr, 0, 10)
	for i := 0; i < 10; i++ {
		types = append(types, typeresolve.Con(string(rune('A'+i))))
	}
	fns := []typeresolve.FunctionInfo{{ID: 1, BodyReturnTypes: types}}

	out := typeresolve.BuildSummaries(typeresolve.Config{MaxUnionSize: 8}, fns)

	// widening happens inside the join rule: Source stays "join", Type is Unknown
	assert.Equal(t, "join", out[1].Source)
	assert.True(t, typeresolve.Unknown.Equal(out[1].Type))
}

func TestBuildSummariesResolvesMutualRecursionViaSCC(t *testing.T) {
	fns := []typeresolve.FunctionInfo{
		{ID: 1, BodyReturnTypes: []typeresolve.Expr{typeresolve.Con("Int")}, Callees: []ir.NodeID{2}},
		{ID: 2, Callees: []ir.NodeID{1}},
	}

	out := typeresolve.BuildSummaries(typeresolve.DefaultConfig(), fns)

	require.Contains(t, out, ir.NodeID(2))
	assert.True(t, typeresolve.Con("Int").Equal(out[2].Type))
}
