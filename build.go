// Package codegraph is the root-level entry point exposing the three
// external interfaces of §6: Build, Query, and Index. Everything under
// internal/codegraph/ is an implementation detail the engine's callers (the
// reasoning/agent layer, CLI front-ends, and other out-of-scope collaborators
// named in §1) never import directly.
package codegraph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/viant/codegraph/internal/codegraph/diagnostics"
	"github.com/viant/codegraph/internal/codegraph/ir"
	"github.com/viant/codegraph/internal/codegraph/lang"
	"github.com/viant/codegraph/internal/codegraph/lang/golang"
	"github.com/viant/codegraph/internal/codegraph/lang/java"
	"github.com/viant/codegraph/internal/codegraph/lang/jsx"
	"github.com/viant/codegraph/internal/codegraph/parser"
	"github.com/viant/codegraph/internal/codegraph/provenance"
)

// SemanticTier is the Build API's depth selector, §6 — distinct from the
// orchestrator's Fast/Balanced/Deep/Bootstrap/Repair Mode (§4.16): Mode
// picks how much of an incremental run to redo, SemanticTier picks how much
// semantic analysis a single build performs.
type SemanticTier string

const (
	TierEditor      SemanticTier = "editor"
	TierRefactoring SemanticTier = "refactoring"
	TierAnalysis    SemanticTier = "analysis"
)

// LayerFlags are the boolean layer toggles §6 names for the Build API.
type LayerFlags struct {
	CFG              bool
	DFG              bool
	SSA              bool
	BFG              bool
	Expressions      bool
	GenericInference bool
	HeapAnalysis     bool
	TaintAnalysis    bool
	Occurrences      bool
	LSPEnrichment    bool
	CrossFile        bool
	RetrievalIndex   bool
	Diagnostics      bool
	Packages         bool
}

// BuildConfig is the Build API's input configuration, §6.
type BuildConfig struct {
	Tier                    SemanticTier
	Layers                  LayerFlags
	DFGFunctionLOCThreshold int
	MaxUnionSize            int
	ComplexityThreshold     int
	RiskThreshold           int
}

// DefaultBuildConfig mirrors the Analysis tier with every layer on and the
// spec's default thresholds (§4.6's 600 LOC SSA gate, §4.7's max_union_size
// 8), matching internal/codegraph/config.DefaultThresholds so the two
// threshold surfaces never drift.
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		Tier: TierAnalysis,
		Layers: LayerFlags{
			CFG: true, DFG: true, SSA: true, BFG: true, Expressions: true,
			GenericInference: true, HeapAnalysis: true, TaintAnalysis: true,
			Occurrences: true, LSPEnrichment: true, CrossFile: true,
			RetrievalIndex: true, Diagnostics: true, Packages: true,
		},
		DFGFunctionLOCThreshold: 600,
		MaxUnionSize:            8,
		ComplexityThreshold:     10,
		RiskThreshold:           7,
	}
}

// FileInput is one file handed to Build, §6 "files: [(path, bytes)]".
type FileInput struct {
	Path    string
	Content []byte
}

// Diagnostic records a per-file failure that does not abort the overall
// build, §7 "parsing and analysis errors on a single file are caught,
// recorded in the resulting document's diagnostics list".
type Diagnostic struct {
	Path     string
	Message  string
	Severity diagnostics.Severity
}

// BuildStats summarizes one Build call.
type BuildStats struct {
	FilesSucceeded int
	FilesFailed    int
	Elapsed        time.Duration
}

// BuildResult is §6's `BuildResult { ir_documents, provenance, stats }`.
type BuildResult struct {
	IRDocuments map[string]*ir.Document
	Provenance  provenance.Provenance
	Stats       BuildStats
	Diagnostics []Diagnostic
}

// FormatDiagnostics renders r.Diagnostics as one colorized line per entry
// when out is a terminal, plain text otherwise (SPEC_FULL.md §10
// "Colorized diagnostics").
func (r BuildResult) FormatDiagnostics(out *os.File) string {
	diags := make([]diagnostics.Diagnostic, len(r.Diagnostics))
	for i, d := range r.Diagnostics {
		diags[i] = diagnostics.Diagnostic{Path: d.Path, Message: d.Message, Severity: d.Severity}
	}
	return diagnostics.Format(out, diags)
}

// registry maps file extensions to the lang.Plugin that handles them. A
// package-level var rather than a constructor parameter, since the set of
// supported languages is fixed by what's compiled in, not configurable per
// call — new languages are added by registering a new lang.Plugin here.
var registry = buildRegistry()

func buildRegistry() map[string]lang.Plugin {
	plugins := []lang.Plugin{golang.New(), java.New(), jsx.New()}
	reg := make(map[string]lang.Plugin)
	for _, p := range plugins {
		for _, ext := range p.Extensions() {
			reg[ext] = p
		}
	}
	return reg
}

// Build implements §6's Build API: `build(files, config) → BuildResult`.
// now is injected (rather than time.Now()) so callers get a deterministic
// BuildTimestamp in tests; production callers pass time.Now().
func Build(files []FileInput, cfg BuildConfig, repoID, snapshotID string, now time.Time) BuildResult {
	result := BuildResult{IRDocuments: make(map[string]*ir.Document, len(files))}

	digests := make([]provenance.FileDigest, 0, len(files))
	for _, f := range files {
		digests = append(digests, provenance.HashFile(f.Path, f.Content))

		plugin, ok := registry[filepath.Ext(f.Path)]
		if !ok {
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				Path: f.Path, Message: fmt.Sprintf("no language plugin registered for extension %q", filepath.Ext(f.Path)),
				Severity: diagnostics.SeverityWarn,
			})
			result.Stats.FilesFailed++
			continue
		}

		doc, err := buildOne(plugin, f, repoID, snapshotID)
		if err != nil {
			result.Diagnostics = append(result.Diagnostics, Diagnostic{Path: f.Path, Message: err.Error(), Severity: diagnostics.SeverityError})
			result.Stats.FilesFailed++
			continue
		}
		doc.EnforceTotalOrdering()
		result.IRDocuments[f.Path] = doc
		result.Stats.FilesSucceeded++
	}

	inputFP := provenance.InputFingerprint(digests)
	configFP, _ := provenance.ConfigFingerprint(provenance.BuildConfigFingerprintInput{
		EnabledLayers: enabledLayerNames(cfg.Layers),
		Thresholds: map[string]any{
			"dfg_function_loc_threshold": cfg.DFGFunctionLOCThreshold,
			"max_union_size":             cfg.MaxUnionSize,
			"complexity_threshold":       cfg.ComplexityThreshold,
			"risk_threshold":             cfg.RiskThreshold,
		},
		Tier:  string(cfg.Tier),
		Flags: map[string]bool{},
	})

	result.Provenance = provenance.Provenance{
		InputFingerprint:  inputFP,
		ConfigFingerprint: configFP,
		BuilderVersion:    "codegraph/1",
		BuildTimestamp:    now,
		NodeSortKey:       provenance.NodeSortKeyDescription,
		EdgeSortKey:       provenance.EdgeSortKeyDescription,
	}

	return result
}

func buildOne(plugin lang.Plugin, f FileInput, repoID, snapshotID string) (*ir.Document, error) {
	adapter := parser.New(plugin.Grammar())
	tree, err := adapter.Parse(context.Background(), f.Content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.Path, err)
	}
	defer tree.Close()

	doc := ir.NewDocument(repoID, snapshotID, "v1")
	if _, err := plugin.Generate(doc, f.Path, f.Content, tree); err != nil {
		return nil, fmt.Errorf("generate IR for %s: %w", f.Path, err)
	}
	return doc, nil
}

func enabledLayerNames(l LayerFlags) []string {
	var names []string
	add := func(name string, on bool) {
		if on {
			names = append(names, name)
		}
	}
	add("cfg", l.CFG)
	add("dfg", l.DFG)
	add("ssa", l.SSA)
	add("bfg", l.BFG)
	add("expressions", l.Expressions)
	add("generic_inference", l.GenericInference)
	add("heap_analysis", l.HeapAnalysis)
	add("taint_analysis", l.TaintAnalysis)
	add("occurrences", l.Occurrences)
	add("lsp_enrichment", l.LSPEnrichment)
	add("cross_file", l.CrossFile)
	add("retrieval_index", l.RetrievalIndex)
	add("diagnostics", l.Diagnostics)
	add("packages", l.Packages)
	return names
}
