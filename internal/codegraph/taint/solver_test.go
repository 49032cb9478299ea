package taint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/codegraph/internal/codegraph/taint"
)

func TestSolveSourceToSinkProducesViolation(t *testing.T) {
	g := &taint.Graph{
		Sites: []taint.Site{
			{Key: "v1", Kind: taint.SiteSource, SourceLabel: "user_input"},
			{Key: "v1", Kind: taint.SiteSink, SinkRuleID: "sql_injection"},
		},
	}
	violations := taint.Solve(taint.DefaultRealtimeConfig(), g, nil)

	require.Len(t, violations, 1)
	assert.Equal(t, "sql_injection", violations[0].SinkRuleID)
	assert.Equal(t, []taint.Label{"user_input"}, violations[0].SourceLabels)
	assert.Equal(t, 1.0, violations[0].Confidence)
}

func TestSolveWithStatsCountsSiteVisits(t *testing.T) {
	g := &taint.Graph{
		Sites: []taint.Site{
			{Key: "v1", Kind: taint.SiteSource, SourceLabel: "user_input"},
			{Key: "v1", Kind: taint.SiteSink, SinkRuleID: "sql_injection"},
		},
	}
	violations, visits := taint.SolveWithStats(taint.DefaultRealtimeConfig(), g, nil)

	require.Len(t, violations, 1)
	assert.Equal(t, 2, visits)
}

func TestSolveUntaintedSinkProducesNoViolation(t *testing.T) {
	g := &taint.Graph{
		Sites: []taint.Site{
			{Key: "v1", Kind: taint.SiteSink, SinkRuleID: "sql_injection"},
		},
	}
	violations := taint.Solve(taint.DefaultRealtimeConfig(), g, nil)
	assert.Empty(t, violations)
}

func TestSolveSanitizerScopeAllClearsFromKeysAndTarget(t *testing.T) {
	g := &taint.Graph{
		Sites: []taint.Site{
			{Key: "src", Kind: taint.SiteSource, SourceLabel: "user_input"},
			{Key: "dst", Kind: taint.SitePropagator, FromKeys: []any{"src"}},
			{Key: "dst", Kind: taint.SiteSanitizer, FromKeys: []any{"src"}, SanitizerScope: taint.ScopeAll},
			{Key: "dst", Kind: taint.SiteSink, SinkRuleID: "rule"},
			{Key: "src", Kind: taint.SiteSink, SinkRuleID: "rule2"},
		},
	}
	violations := taint.Solve(taint.DefaultRealtimeConfig(), g, nil)
	assert.Empty(t, violations)
}

func TestSolveSanitizerScopeReturnClearsOnlyKey(t *testing.T) {
	g := &taint.Graph{
		Sites: []taint.Site{
			{Key: "src", Kind: taint.SiteSource, SourceLabel: "user_input"},
			{Key: "dst", Kind: taint.SitePropagator, FromKeys: []any{"src"}},
			{Key: "dst", Kind: taint.SiteSanitizer, FromKeys: []any{"src"}, SanitizerScope: taint.ScopeReturn},
			{Key: "dst", Kind: taint.SiteSink, SinkRuleID: "rule"},
			{Key: "src", Kind: taint.SiteSink, SinkRuleID: "rule2"},
		},
	}
	violations := taint.Solve(taint.DefaultRealtimeConfig(), g, nil)

	require.Len(t, violations, 1)
	assert.Equal(t, "rule2", violations[0].SinkRuleID)
}

func TestSolvePropagatorMergesFromKeysIntoToKey(t *testing.T) {
	g := &taint.Graph{
		Sites: []taint.Site{
			{Key: "a", Kind: taint.SiteSource, SourceLabel: "L1"},
			{Key: "b", Kind: taint.SiteSource, SourceLabel: "L2"},
			{Key: "c", Kind: taint.SitePropagator, FromKeys: []any{"a", "b"}, ToKey: "c"},
			{Key: "c", Kind: taint.SiteSink, SinkRuleID: "rule"},
		},
	}
	violations := taint.Solve(taint.DefaultRealtimeConfig(), g, nil)

	require.Len(t, violations, 1)
	assert.ElementsMatch(t, []taint.Label{"L1", "L2"}, violations[0].SourceLabels)
}

func TestSolvePassthroughAlwaysTargetsKey(t *testing.T) {
	g := &taint.Graph{
		Sites: []taint.Site{
			{Key: "a", Kind: taint.SiteSource, SourceLabel: "L1"},
			// ToKey set but SitePassthrough ignores it, writing back to Key.
			{Key: "a", Kind: taint.SitePassthrough, FromKeys: []any{"a"}, ToKey: "ignored"},
			{Key: "a", Kind: taint.SiteSink, SinkRuleID: "rule"},
			{Key: "ignored", Kind: taint.SiteSink, SinkRuleID: "rule2"},
		},
	}
	violations := taint.Solve(taint.DefaultRealtimeConfig(), g, nil)

	require.Len(t, violations, 1)
	assert.Equal(t, "rule", violations[0].SinkRuleID)
}

func TestSolveDefaultSiteKindPropagatesLikePropagator(t *testing.T) {
	g := &taint.Graph{
		Sites: []taint.Site{
			{Key: "a", Kind: taint.SiteSource, SourceLabel: "L1"},
			{Key: "b", Kind: taint.SiteDefault, FromKeys: []any{"a"}, ToKey: "b"},
			{Key: "b", Kind: taint.SiteSink, SinkRuleID: "rule"},
		},
	}
	violations := taint.Solve(taint.DefaultRealtimeConfig(), g, nil)
	require.Len(t, violations, 1)
}

func TestSolveConfidenceUsesRuleConfidenceAndGuardMultiplier(t *testing.T) {
	cfg := taint.Config{
		ContextDepth:      0,
		WideningThreshold: 64,
		RuleConfidence:    map[string]float64{"rule": 0.9},
	}
	g := &taint.Graph{
		Sites: []taint.Site{
			{Key: "v", Kind: taint.SiteSource, SourceLabel: "L1"},
			{Key: "v", Kind: taint.SiteSink, SinkRuleID: "rule"},
		},
	}
	guards := &taint.Detector{Match: func(useKey any) []taint.GuardKind {
		return []taint.GuardKind{taint.GuardRegex, taint.GuardLength}
	}}
	violations := taint.Solve(cfg, g, guards)

	require.Len(t, violations, 1)
	// 0.9 base * (0.5 regex * 0.8 length)
	assert.InDelta(t, 0.9*0.5*0.8, violations[0].Confidence, 1e-9)
}

func TestSolveNilDetectorAppliesNoGuardReduction(t *testing.T) {
	g := &taint.Graph{
		Sites: []taint.Site{
			{Key: "v", Kind: taint.SiteSource, SourceLabel: "L1"},
			{Key: "v", Kind: taint.SiteSink, SinkRuleID: "rule"},
		},
	}
	violations := taint.Solve(taint.DefaultRealtimeConfig(), g, nil)

	require.Len(t, violations, 1)
	assert.Equal(t, 1.0, violations[0].Confidence)
}

func TestSolveRecursesIntoCalleeGraphWithinContextDepth(t *testing.T) {
	callee := &taint.Graph{
		Sites: []taint.Site{
			{Key: "arg", Kind: taint.SiteSource, SourceLabel: "L1"},
			{Key: "arg", Kind: taint.SiteSink, SinkRuleID: "rule"},
		},
	}
	caller := &taint.Graph{
		Calls: map[any]*taint.Graph{"call1": callee},
	}
	cfg := taint.Config{ContextDepth: 1, WideningThreshold: 64, RuleConfidence: map[string]float64{}}
	violations := taint.Solve(cfg, caller, nil)

	require.Len(t, violations, 1)
	assert.Equal(t, "rule", violations[0].SinkRuleID)
}

func TestSolveDoesNotRecurseBeyondContextDepth(t *testing.T) {
	callee := &taint.Graph{
		Sites: []taint.Site{
			{Key: "arg", Kind: taint.SiteSource, SourceLabel: "L1"},
			{Key: "arg", Kind: taint.SiteSink, SinkRuleID: "rule"},
		},
	}
	caller := &taint.Graph{
		Calls: map[any]*taint.Graph{"call1": callee},
	}
	cfg := taint.Config{ContextDepth: 0, WideningThreshold: 64, RuleConfidence: map[string]float64{}}
	violations := taint.Solve(cfg, caller, nil)

	assert.Empty(t, violations)
}

func TestSolveWideningStopsExpandingPastThreshold(t *testing.T) {
	// Two distinct call-site keys at the same call string depth (depth 0,
	// empty callString) share the same contextKey ("0:x") because the key
	// values are non-string/int, so sprintKey falls back to "x" for both of
	// them. With WideningThreshold=1, the first call is walked (count goes
	// to 1, not > 1), the second is widened away (count 2 > 1).
	type calleeKey struct{ n int }

	calleeA := &taint.Graph{Sites: []taint.Site{
		{Key: "a", Kind: taint.SiteSource, SourceLabel: "L1"},
		{Key: "a", Kind: taint.SiteSink, SinkRuleID: "ruleA"},
	}}
	calleeB := &taint.Graph{Sites: []taint.Site{
		{Key: "b", Kind: taint.SiteSource, SourceLabel: "L1"},
		{Key: "b", Kind: taint.SiteSink, SinkRuleID: "ruleB"},
	}}

	caller := &taint.Graph{
		Calls: map[any]*taint.Graph{
			calleeKey{1}: calleeA,
			calleeKey{2}: calleeB,
		},
	}
	cfg := taint.Config{ContextDepth: 1, WideningThreshold: 1, RuleConfidence: map[string]float64{}}
	violations := taint.Solve(cfg, caller, nil)

	// Exactly one of the two callees gets walked (map iteration order is
	// randomized, so assert on count rather than which rule fired).
	assert.Len(t, violations, 1)
}

func TestSolveNilGraphIsNoop(t *testing.T) {
	violations := taint.Solve(taint.DefaultRealtimeConfig(), nil, nil)
	assert.Empty(t, violations)
}

func TestStateUnionReportsChanged(t *testing.T) {
	a := taint.State{"L1": true}
	merged, changed := a.Union(taint.State{"L1": true, "L2": true})

	assert.True(t, changed)
	assert.True(t, merged.Tainted())
	assert.True(t, merged["L2"])
}

func TestStateUnionNoChangeWhenSubset(t *testing.T) {
	a := taint.State{"L1": true, "L2": true}
	_, changed := a.Union(taint.State{"L1": true})
	assert.False(t, changed)
}

func TestCombinedMultiplierMultipliesKnownGuards(t *testing.T) {
	m := taint.CombinedMultiplier([]taint.GuardKind{taint.GuardAllowlist, taint.GuardEscape})
	assert.InDelta(t, 0.3*0.2, m, 1e-9)
}

func TestCombinedMultiplierUnknownGuardDefaultsToOne(t *testing.T) {
	m := taint.CombinedMultiplier([]taint.GuardKind{taint.GuardKind("unknown")})
	assert.Equal(t, 1.0, m)
}

func TestCombinedMultiplierEmptyGuardsIsOne(t *testing.T) {
	assert.Equal(t, 1.0, taint.CombinedMultiplier(nil))
}

func TestDetectorGuardsForNilDetectorReturnsNil(t *testing.T) {
	var d *taint.Detector
	assert.Nil(t, d.GuardsFor("x"))
}

func TestDetectorGuardsForUsesMatchFunc(t *testing.T) {
	d := &taint.Detector{Match: func(useKey any) []taint.GuardKind {
		return []taint.GuardKind{taint.GuardTypeCheck}
	}}
	assert.Equal(t, []taint.GuardKind{taint.GuardTypeCheck}, d.GuardsFor("x"))
}
