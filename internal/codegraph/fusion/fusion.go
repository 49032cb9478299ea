// Package fusion implements the intent-weighted query planner of §4.15:
// per-index ranked lists are normalized, weighted by intent, adjusted by
// fixed correlation rules, and combined with a priority score for final
// ranking.
package fusion

import (
	"sort"

	"github.com/viant/codegraph/internal/codegraph/index"
)

// Source names one of the five indices a chunk's score can come from.
type Source string

const (
	SourceLexical Source = "lexical"
	SourceVector  Source = "vector"
	SourceSymbol  Source = "symbol"
	SourceFuzzy   Source = "fuzzy"
	SourceDomain  Source = "domain"
	SourceGraph   Source = "graph" // Symbol-Graph proximity signal, not a writer source
)

// Weights is the per-intent weight vector, §4.15
// "{lexical, vector, symbol, fuzzy, domain}".
type Weights struct {
	Lexical float64
	Vector  float64
	Symbol  float64
	Fuzzy   float64
	Domain  float64
}

// CorrelationConfig exposes the §4.15 correlation-adjustment constants as
// configuration, per the Open Question decision recorded in SPEC_FULL.md
// §13 (preserve the spec's constants, but let deployments retune them
// without a code change).
type CorrelationConfig struct {
	// LexicalSymbolBonus is added when lexical >= LexicalSymbolThreshold
	// and symbol >= LexicalSymbolThreshold.
	LexicalSymbolBonus     float64
	LexicalSymbolThreshold float64
	// SymbolGraphBonus is added when symbol >= SymbolGraphThreshold and
	// graph >= SymbolGraphThreshold.
	SymbolGraphBonus     float64
	SymbolGraphThreshold float64
	// DriftPenaltyFactor multiplies the fused score when vector is high
	// but lexical and symbol are both low (semantic-drift penalty).
	DriftPenaltyFactor    float64
	DriftVectorThreshold  float64
	DriftOtherThreshold   float64
	// LexicalGapPenalty is subtracted when vector is high and lexical is
	// low (the "vector found it, keywords didn't" case).
	LexicalGapPenalty     float64
	LexicalGapVectorFloor float64
	LexicalGapLexCeiling  float64
}

// DefaultCorrelationConfig preserves the spec's exact constants: +0.15 for
// lexical+symbol agreement, +0.10 for symbol+graph agreement, x0.6 drift
// penalty, -0.05 lexical gap penalty.
func DefaultCorrelationConfig() CorrelationConfig {
	return CorrelationConfig{
		LexicalSymbolBonus:     0.15,
		LexicalSymbolThreshold: 0.7,
		SymbolGraphBonus:       0.10,
		SymbolGraphThreshold:   0.7,
		DriftPenaltyFactor:     0.6,
		DriftVectorThreshold:   0.85,
		DriftOtherThreshold:    0.2,
		LexicalGapPenalty:      0.05,
		LexicalGapVectorFloor:  0.7,
		LexicalGapLexCeiling:   0.3,
	}
}

// PriorityWeights is the §4.15 priority-score formula's coefficients:
// 0.6*fused + 0.25*repomap_importance + 0.15*symbol_score.
type PriorityWeights struct {
	Fused             float64
	RepomapImportance float64
	SymbolScore       float64
}

// DefaultPriorityWeights matches the spec's fixed coefficients.
func DefaultPriorityWeights() PriorityWeights {
	return PriorityWeights{Fused: 0.6, RepomapImportance: 0.25, SymbolScore: 0.15}
}

// SourceScores is one chunk's normalized [0,1] score per source, keyed by
// Source; a missing entry means that index produced no hit.
type SourceScores map[Source]float64

// ChunkSignal aggregates every index's hit for one chunk plus the extra
// ranking inputs the priority formula needs.
type ChunkSignal struct {
	ChunkID           string
	Scores            SourceScores
	RepomapImportance float64
	SymbolScore       float64
}

// Result is one ranked chunk in the final response.
type Result struct {
	ChunkID       string
	FusedScore    float64
	PriorityScore float64
	Sources       []Source
}

// Planner combines normalized per-source scores using an intent's weight
// vector, the correlation adjustments, and the priority formula.
type Planner struct {
	Correlation CorrelationConfig
	Priority    PriorityWeights
}

// NewPlanner builds a Planner with the spec's default constants.
func NewPlanner() *Planner {
	return &Planner{Correlation: DefaultCorrelationConfig(), Priority: DefaultPriorityWeights()}
}

// Fuse computes FusedScore and PriorityScore for every signal under
// weights, sorted by priority descending (§4.15 "Results are sorted by
// priority descending").
func (p *Planner) Fuse(signals []ChunkSignal, weights Weights) []Result {
	out := make([]Result, 0, len(signals))
	for _, sig := range signals {
		fused := p.fusedScore(sig.Scores, weights)
		priority := clamp01(
			p.Priority.Fused*fused +
				p.Priority.RepomapImportance*sig.RepomapImportance +
				p.Priority.SymbolScore*sig.SymbolScore,
		)
		out = append(out, Result{
			ChunkID:       sig.ChunkID,
			FusedScore:    fused,
			PriorityScore: priority,
			Sources:       activeSources(sig.Scores),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PriorityScore > out[j].PriorityScore })
	return out
}

func (p *Planner) fusedScore(scores SourceScores, weights Weights) float64 {
	lexical := scores[SourceLexical]
	vector := scores[SourceVector]
	symbol := scores[SourceSymbol]
	fuzzy := scores[SourceFuzzy]
	domain := scores[SourceDomain]
	graph := scores[SourceGraph]

	fused := weights.Lexical*lexical + weights.Vector*vector + weights.Symbol*symbol +
		weights.Fuzzy*fuzzy + weights.Domain*domain

	c := p.Correlation
	if lexical >= c.LexicalSymbolThreshold && symbol >= c.LexicalSymbolThreshold {
		fused += c.LexicalSymbolBonus
	}
	if symbol >= c.SymbolGraphThreshold && graph >= c.SymbolGraphThreshold {
		fused += c.SymbolGraphBonus
	}
	if vector >= c.DriftVectorThreshold && lexical < c.DriftOtherThreshold && symbol < c.DriftOtherThreshold {
		fused *= c.DriftPenaltyFactor
	}
	if vector >= c.LexicalGapVectorFloor && lexical < c.LexicalGapLexCeiling {
		fused -= c.LexicalGapPenalty
	}

	return clamp01(fused)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func activeSources(scores SourceScores) []Source {
	out := make([]Source, 0, len(scores))
	for src := range scores {
		out = append(out, src)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MergeScoredChunks converts one writer's ranked results into SourceScores
// entries keyed by chunk id, for assembling ChunkSignal from multiple
// index.ScoredChunk lists before calling Fuse.
func MergeScoredChunks(bySource map[Source][]index.ScoredChunk) []ChunkSignal {
	byChunk := map[string]*ChunkSignal{}
	var order []string
	for source, chunks := range bySource {
		for _, c := range chunks {
			sig, ok := byChunk[c.ChunkID]
			if !ok {
				sig = &ChunkSignal{ChunkID: c.ChunkID, Scores: SourceScores{}}
				byChunk[c.ChunkID] = sig
				order = append(order, c.ChunkID)
			}
			sig.Scores[source] = c.Score
		}
	}
	out := make([]ChunkSignal, 0, len(order))
	for _, id := range order {
		out = append(out, *byChunk[id])
	}
	return out
}
