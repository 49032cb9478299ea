// Package taint implements the interprocedural taint solver of §4.9: rule
// atoms loaded from a rule file, a walk over per-function site lists that
// follows call edges up to a k-CFA context depth, and guard-based confidence
// reduction. MatchClause.specificity classifies a clause as exact, wildcard
// or fallback, but no execution plan is compiled from the rule set and the
// solver does not read atoms: it works on Sites the caller has already
// classified. The specificity tiers borrow the stratified evaluation idea
// from google/mangle's Datalog engine (see SPEC_FULL.md §11) without
// vendoring a general Datalog runtime, since the rule language here is the
// narrower one specified in §6.
package taint

import "fmt"

// AtomKind is one of the five taint-rule roles of §4.9/§6.
type AtomKind string

const (
	KindSource      AtomKind = "source"
	KindSink        AtomKind = "sink"
	KindSanitizer   AtomKind = "sanitizer"
	KindPropagator  AtomKind = "propagator"
	KindPassthrough AtomKind = "passthrough"
)

// Specificity is the tier MatchClause.specificity assigns a clause: exact,
// wildcard or fallback catch-all (§4.9's three tiers). Nothing in this
// package orders or executes clauses by it.
type Specificity int

const (
	SpecificityExact Specificity = iota
	SpecificityWildcard
	SpecificityFallback
)

// SanitizerScope enumerates where a sanitizer clears taint, §4.9.
type SanitizerScope string

const (
	ScopeReturn SanitizerScope = "return"
	ScopeBase   SanitizerScope = "base"
	ScopeAll    SanitizerScope = "all"
	ScopeGuard  SanitizerScope = "guard"
)

// Severity mirrors the rule-file field of §6; sinks default to "medium"
// when absent.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Priority is the rule-file atom_priority field, §6.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// MatchClause is one clause of an atom's match list, §6. Exactly the
// mutual-exclusion rules named in §6 are enforced by Atom.Validate:
// base_type/base_type_pattern are mutually exclusive, as are
// call/call_pattern, and at least one of
// base_type|base_type_pattern|call|call_pattern|read|write must be set.
type MatchClause struct {
	BaseType        string
	BaseTypePattern string
	Call            string
	CallPattern     string
	Read            bool
	Write           bool
	Args            []int
	Kwargs          []string
	FromArgs        []int
	To              string
	Scope           string
	Constraints     map[string]string
}

func (c MatchClause) specificity() Specificity {
	switch {
	case c.BaseTypePattern != "" || c.CallPattern != "":
		return SpecificityWildcard
	case c.BaseType != "" || c.Call != "":
		return SpecificityExact
	default:
		return SpecificityFallback
	}
}

// Atom is one taint rule declaration, §6.
type Atom struct {
	ID          string
	Kind        AtomKind
	Match       []MatchClause
	CWE         []string
	OWASP       string
	Frameworks  []string
	Severity    Severity
	Tags        []string
	Description string
	Scope       SanitizerScope
	Priority    Priority
}

// Validate enforces the strict rule-file validation of §6.
func (a Atom) Validate() error {
	if len(a.Match) == 0 {
		return ruleErr("atom %q: match list must not be empty", a.ID)
	}
	for _, c := range a.Match {
		if c.BaseType != "" && c.BaseTypePattern != "" {
			return ruleErr("atom %q: base_type and base_type_pattern are mutually exclusive", a.ID)
		}
		if c.Call != "" && c.CallPattern != "" {
			return ruleErr("atom %q: call and call_pattern are mutually exclusive", a.ID)
		}
		if c.BaseType == "" && c.BaseTypePattern == "" && c.Call == "" && c.CallPattern == "" && !c.Read && !c.Write {
			return ruleErr("atom %q: clause must specify at least one of base_type|base_type_pattern|call|call_pattern|read|write", a.ID)
		}
	}
	if a.Kind == KindSink && a.Severity == "" {
		a.Severity = SeverityMedium // sinks default to medium (§6); caller should persist this back.
	}
	return nil
}

func ruleErr(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}
