package typeresolve

// Substitution maps type-variable names to the type expression they stand
// for. Substitutions compose left-to-right: Apply always walks to a fixed
// point so chained bindings (T1 -> T2, T2 -> Int) resolve fully.
type Substitution map[string]Expr

// Apply resolves e through sub to a fixed point.
func (sub Substitution) Apply(e Expr) Expr {
	if e.IsVar {
		if bound, ok := sub[e.Name]; ok {
			return sub.Apply(bound)
		}
		return e
	}
	if len(e.Args) == 0 {
		return e
	}
	args := make([]Expr, len(e.Args))
	for i, a := range e.Args {
		args[i] = sub.Apply(a)
	}
	return Expr{Name: e.Name, Args: args}
}

// Unify returns the most general substitution making t1 and t2 structurally
// equal, or a *UnificationError. An occurs check forbids infinite types
// (T = F[T]), per §4.7/§8 property 7.
func Unify(t1, t2 Expr) (Substitution, error) {
	return unify(t1, t2, Substitution{})
}

func unify(t1, t2 Expr, sub Substitution) (Substitution, error) {
	t1 = sub.Apply(t1)
	t2 = sub.Apply(t2)

	if t1.Equal(t2) {
		return sub, nil
	}
	if t1.IsVar {
		return bind(t1.Name, t2, sub)
	}
	if t2.IsVar {
		return bind(t2.Name, t1, sub)
	}
	if t1.Name != t2.Name || len(t1.Args) != len(t2.Args) {
		return nil, &UnificationError{Left: t1, Right: t2, Reason: "constructor mismatch"}
	}
	cur := sub
	for i := range t1.Args {
		var err error
		cur, err = unify(t1.Args[i], t2.Args[i], cur)
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

func bind(name string, t Expr, sub Substitution) (Substitution, error) {
	if t.IsVar && t.Name == name {
		return sub, nil
	}
	if occurs(name, t, sub) {
		return nil, &UnificationError{Left: Var(name), Right: t, Reason: "occurs check failed"}
	}
	next := make(Substitution, len(sub)+1)
	for k, v := range sub {
		next[k] = v
	}
	next[name] = t
	return next, nil
}

// occurs implements the occurs check: name must not appear free anywhere in
// t, which would otherwise produce an infinite type T = F[T].
func occurs(name string, t Expr, sub Substitution) bool {
	t = sub.Apply(t)
	if t.IsVar {
		return t.Name == name
	}
	for _, a := range t.Args {
		if occurs(name, a, sub) {
			return true
		}
	}
	return false
}

// Meet combines a top-down expected type with a bottom-up inferred type
// (§4.7 "bidirectional" engine). Agreement returns the shared type;
// disagreement widens to a safe upper bound rather than guessing.
func Meet(expected, inferred Expr) Expr {
	if expected.Name == "" {
		return inferred
	}
	if inferred.Name == "" {
		return expected
	}
	if sub, err := Unify(expected, inferred); err == nil {
		return sub.Apply(expected)
	}
	return Union(expected, inferred)
}

// Union builds (or extends) a union type from two disagreeing branches,
// used both by Meet and by return-type-summary joining.
func Union(a, b Expr) Expr {
	if a.Name == "Union" {
		for _, m := range a.Args {
			if m.Equal(b) {
				return a
			}
		}
		return Con("Union", append(append([]Expr{}, a.Args...), b)...)
	}
	if a.Equal(b) {
		return a
	}
	return Con("Union", a, b)
}
