package orchestrator

import (
	"context"
	"fmt"
	"time"
)

// Snapshot metadata needed to decide the next run's Mode, §4.16's "snapshot
// management" responsibility.
type Snapshot struct {
	RepoID        string
	Exists        bool
	Corrupted     bool
	LastBalanced  time.Time
	TakenAt       time.Time
}

// SnapshotStore persists and retrieves the latest Snapshot per repository.
// A gorm-backed implementation lives alongside the orchestrator (module 16
// in DESIGN.md); this interface is what Run depends on so tests can use an
// in-memory fake.
type SnapshotStore interface {
	Load(ctx context.Context, repoID string) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}

// Run is one incremental-orchestrator pass: detect changes, expand scope,
// select a mode, and hand the caller the resulting work plan. It does not
// itself run the build pipeline (L1-L5, indexing) — Plan.Files is the input
// those stages consume — but it owns everything upstream of that: change
// detection, scope expansion, and mode selection, plus the cancellation
// token every downstream stage should poll.
type Run struct {
	RepoID        string
	Detector      *GitStatusDetector
	Scope         *ScopeExpander
	Store         SnapshotStore
	Manager       *ModeManager
	MaxScopeDepth int
}

// Plan is the result of one orchestrator pass.
type Plan struct {
	Mode    Mode
	Layers  Layers
	Changes ChangeSet
	Files   []string
	Cancel  *CancelToken
}

// Execute runs one orchestrator pass: detect, expand, decide, and return a
// Plan plus a CancelToken derived from ctx for downstream stages to poll via
// StageBoundary. "now" is injected so mode decisions stay deterministic in
// tests. Execute never writes snapshot state — call Commit once the build
// pipeline the Plan feeds has actually finished, so a cancelled or failed
// run leaves the prior snapshot untouched (§4.16 "no partial state is
// committed").
func (r *Run) Execute(ctx context.Context, now time.Time) (Plan, error) {
	snap, err := r.Store.Load(ctx, r.RepoID)
	if err != nil {
		return Plan{}, fmt.Errorf("orchestrator: load snapshot: %w", err)
	}

	changes, err := r.Detector.Detect(ctx)
	if err != nil {
		return Plan{}, fmt.Errorf("orchestrator: detect changes: %w", err)
	}

	files := changes.Files()
	if r.Scope != nil {
		files = r.Scope.Expand(files, r.MaxScopeDepth)
	}

	mode := r.Manager.Decide(now, len(files), snap.Corrupted)

	return Plan{
		Mode:    mode,
		Layers:  LayersFor(mode),
		Changes: changes,
		Files:   files,
		Cancel:  NewCancelToken(ctx),
	}, nil
}

// Commit persists the snapshot metadata for a Plan that ran to completion.
// Callers must not call this if the Plan's CancelToken fired or the build
// pipeline returned an error; doing so would record a snapshot for analysis
// results that were never fully written.
func (r *Run) Commit(ctx context.Context, now time.Time, plan Plan) error {
	prior, err := r.Store.Load(ctx, r.RepoID)
	if err != nil {
		return fmt.Errorf("orchestrator: load snapshot: %w", err)
	}

	next := Snapshot{
		RepoID:       r.RepoID,
		Exists:       true,
		Corrupted:    false,
		TakenAt:      now,
		LastBalanced: prior.LastBalanced,
	}
	if plan.Mode == ModeBalanced || plan.Mode == ModeDeep || plan.Mode == ModeBootstrap {
		next.LastBalanced = now
	}
	if err := r.Store.Save(ctx, next); err != nil {
		return fmt.Errorf("orchestrator: save snapshot: %w", err)
	}
	return nil
}
