package orchestrator

import (
	"time"

	"github.com/viant/codegraph/internal/codegraph/config"
)

// Mode is one of the five pipeline depths §4.16 names.
type Mode string

const (
	ModeFast      Mode = "fast"
	ModeBalanced  Mode = "balanced"
	ModeDeep      Mode = "deep"
	ModeBootstrap Mode = "bootstrap"
	ModeRepair    Mode = "repair"
)

// Layers is the declared subset of layers a Mode enables, §4.16 "Each mode
// enables a declared subset of layers (e.g. Fast = L1+L2 only; Deep = all
// layers + PDG + taint full mode)".
type Layers struct {
	L1Structural bool
	L2Imports    bool
	L3CFG        bool
	L4DFG        bool
	L5Types      bool
	PDG          bool
	TaintFull    bool
}

// LayersFor returns the fixed layer set a Mode enables.
func LayersFor(m Mode) Layers {
	switch m {
	case ModeFast:
		return Layers{L1Structural: true, L2Imports: true}
	case ModeBalanced:
		return Layers{L1Structural: true, L2Imports: true, L3CFG: true, L4DFG: true}
	case ModeDeep, ModeBootstrap, ModeRepair:
		return Layers{
			L1Structural: true, L2Imports: true, L3CFG: true, L4DFG: true,
			L5Types: true, PDG: true, TaintFull: true,
		}
	default:
		return Layers{L1Structural: true, L2Imports: true}
	}
}

// Signals are the inputs the mode manager's auto-selection rule consumes,
// §4.16 "auto-selecting based on signals".
type Signals struct {
	// HasPriorSnapshot is false on a repository's very first build.
	HasPriorSnapshot bool
	// ChangedFileCount is the size of the (scope-expanded) ChangeSet.
	ChangedFileCount int
	// BalancedThreshold is the changed-file count at/above which a
	// Balanced run is triggered even on a warm repository.
	BalancedThreshold int
	// IdleSince is how long it has been since the last Balanced run.
	// SelectMode compares it with MaxIdle as given, so zero never triggers
	// Balanced; ModeManager.Decide passes MaxIdle itself when no Balanced
	// run has been recorded since the first snapshot.
	IdleSince time.Duration
	// MaxIdle is the idle duration that forces a Balanced run even with
	// few changes, so staleness cannot accumulate indefinitely.
	MaxIdle time.Duration
	// Corrupted marks a prior snapshot as unusable, forcing Repair
	// regardless of the other signals.
	Corrupted bool
}

// SelectMode implements §4.16's exact ordering: no prior snapshot →
// Bootstrap; changes >= threshold → Balanced; idle duration since last
// Balanced → Balanced; else Fast. A corrupted prior snapshot takes
// precedence over all of these and forces Repair.
func SelectMode(s Signals) Mode {
	if s.Corrupted {
		return ModeRepair
	}
	if !s.HasPriorSnapshot {
		return ModeBootstrap
	}
	if s.BalancedThreshold > 0 && s.ChangedFileCount >= s.BalancedThreshold {
		return ModeBalanced
	}
	if s.MaxIdle > 0 && s.IdleSince >= s.MaxIdle {
		return ModeBalanced
	}
	return ModeFast
}

// TierFor maps a selected Mode onto the config package's Tier enum so
// BuildConfig.Tier stays the single source of truth for downstream layer
// gating even when a run was auto-selected rather than configured.
func TierFor(m Mode) config.Tier {
	switch m {
	case ModeFast:
		return config.TierFast
	case ModeBalanced:
		return config.TierBalanced
	case ModeDeep:
		return config.TierDeep
	case ModeBootstrap:
		return config.TierBootstrap
	case ModeRepair:
		return config.TierRepair
	default:
		return config.TierFast
	}
}

// ModeManager holds the rolling state SelectMode needs across runs (the time
// Decide last chose Balanced, Deep or Bootstrap) and exposes it as a single
// Decide call.
type ModeManager struct {
	BalancedThreshold int
	MaxIdle           time.Duration

	lastBalanced time.Time
	hasSnapshot  bool
}

// NewModeManager builds a manager with the given thresholds.
func NewModeManager(balancedThreshold int, maxIdle time.Duration) *ModeManager {
	return &ModeManager{BalancedThreshold: balancedThreshold, MaxIdle: maxIdle}
}

// Decide selects the Mode for this run given the current ChangeSet size and
// whether the prior snapshot is known corrupted, using "now" as the
// reference clock (injected rather than time.Now so callers stay
// deterministic in tests).
func (m *ModeManager) Decide(now time.Time, changedFileCount int, corrupted bool) Mode {
	idle := time.Duration(0)
	if !m.lastBalanced.IsZero() {
		idle = now.Sub(m.lastBalanced)
	} else if m.hasSnapshot {
		idle = m.MaxIdle // never ran Balanced since bootstrap: treat as maximally idle
	}

	mode := SelectMode(Signals{
		HasPriorSnapshot:  m.hasSnapshot,
		ChangedFileCount:  changedFileCount,
		BalancedThreshold: m.BalancedThreshold,
		IdleSince:         idle,
		MaxIdle:           m.MaxIdle,
		Corrupted:         corrupted,
	})

	m.hasSnapshot = true
	if mode == ModeBalanced || mode == ModeDeep || mode == ModeBootstrap {
		m.lastBalanced = now
	}
	return mode
}
