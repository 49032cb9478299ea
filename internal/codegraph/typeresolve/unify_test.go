package typeresolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/codegraph/internal/codegraph/typeresolve"
)

func TestUnifyBindsVariableToConcreteType(t *testing.T) {
	sub, err := typeresolve.Unify(typeresolve.Var("T"), typeresolve.Con("Int"))
	require.NoError(t, err)
	assert.True(t, typeresolve.Con("Int").Equal(sub.Apply(typeresolve.Var("T"))))
}

func TestUnifyRecursesIntoConstructorArgs(t *testing.T) {
	left := typeresolve.Con("List", typeresolve.Var("T"))
	right := typeresolve.Con("List", typeresolve.Con("Int"))

	sub, err := typeresolve.Unify(left, right)
	require.NoError(t, err)
	assert.True(t, typeresolve.Con("Int").Equal(sub.Apply(typeresolve.Var("T"))))
}

func TestUnifyFailsOnConstructorMismatch(t *testing.T) {
	_, err := typeresolve.Unify(typeresolve.Con("Int"), typeresolve.Con("Str"))
	require.Error(t, err)
	var uerr *typeresolve.UnificationError
	assert.ErrorAs(t, err, &uerr)
}

func TestUnifyFailsOccursCheck(t *testing.T) {
	t1 := typeresolve.Var("T")
	t2 := typeresolve.Con("List", typeresolve.Var("T"))

	_, err := typeresolve.Unify(t1, t2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "occurs check")
}

func TestSubstitutionApplyResolvesChainedBindings(t *testing.T) {
	sub := typeresolve.Substitution{
		"T1": typeresolve.Var("T2"),
		"T2": typeresolve.Con("Int"),
	}
	resolved := sub.Apply(typeresolve.Var("T1"))
	assert.True(t, typeresolve.Con("Int").Equal(resolved))
}

func TestMeetAgreesOnSharedType(t *testing.T) {
	got := typeresolve.Meet(typeresolve.Con("Int"), typeresolve.Con("Int"))
	assert.True(t, typeresolve.Con("Int").Equal(got))
}

func TestMeetWidensOnDisagreement(t *testing.T) {
	got := typeresolve.Meet(typeresolve.Con("Int"), typeresolve.Con("Str"))
	assert.Equal(t, "Union", got.Name)
}

func TestMeetPrefersNonEmptySide(t *testing.T) {
	assert.True(t, typeresolve.Con("Int").Equal(typeresolve.Meet(typeresolve.Expr{}, typeresolve.Con("Int"))))
	assert.True(t, typeresolve.Con("Int").Equal(typeresolve.Meet(typeresolve.Con("Int"), typeresolve.Expr{})))
}

func TestUnionDeduplicatesEqualMembers(t *testing.T) {
	u := typeresolve.Union(typeresolve.Con("Int"), typeresolve.Con("Int"))
	assert.True(t, typeresolve.Con("Int").Equal(u))
}

func TestUnionGrowsWithNewMembers(t *testing.T) {
	u := typeresolve.Union(typeresolve.Con("Int"), typeresolve.Con("Str"))
	u = typeresolve.Union(u, typeresolve.Con("Bool"))
	assert.Equal(t, "Union", u.Name)
	assert.Len(t, u.Args, 3)
}
