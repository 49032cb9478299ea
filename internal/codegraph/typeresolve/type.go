// Package typeresolve implements the bidirectional type inference engine,
// Robinson unification over generic constraints, and per-function
// return-type summaries of §4.7. It has no pack-library analogue narrow
// enough to reuse (see SPEC_FULL.md §11); it is hand-written, grounded on
// the teacher's inspector/graph.Type shape for the term representation.
package typeresolve

import "fmt"

// Expr is a type expression: a named constructor applied to argument type
// expressions, e.g. List(Int) is Expr{Name: "List", Args: []Expr{{Name: "Int"}}}.
// A type variable is an Expr with IsVar set and no Args.
type Expr struct {
	Name string
	Args []Expr
	IsVar bool
}

// Var constructs a type variable.
func Var(name string) Expr { return Expr{Name: name, IsVar: true} }

// Con constructs a concrete (possibly parametric) type.
func Con(name string, args ...Expr) Expr { return Expr{Name: name, Args: args} }

// Unknown is the top type used when inference cannot determine anything
// more precise (§4.7 priority rule 5, and widening targets).
var Unknown = Con("Any")

func (e Expr) String() string {
	if e.IsVar {
		return "'" + e.Name
	}
	if len(e.Args) == 0 {
		return e.Name
	}
	s := e.Name + "["
	for i, a := range e.Args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + "]"
}

// Equal reports structural equality of two type expressions.
func (e Expr) Equal(o Expr) bool {
	if e.IsVar != o.IsVar || e.Name != o.Name || len(e.Args) != len(o.Args) {
		return false
	}
	for i := range e.Args {
		if !e.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

// UnificationError reports a unification failure, §9 "exceptions as
// control flow ... modeled as result variants".
type UnificationError struct {
	Left, Right Expr
	Reason      string
}

func (u *UnificationError) Error() string {
	return fmt.Sprintf("cannot unify %s with %s: %s", u.Left, u.Right, u.Reason)
}
