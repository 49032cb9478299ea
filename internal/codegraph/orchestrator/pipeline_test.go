package orchestrator_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/codegraph/internal/codegraph/orchestrator"
)

type memSnapshotStore struct {
	snapshots map[string]orchestrator.Snapshot
}

func newMemSnapshotStore() *memSnapshotStore {
	return &memSnapshotStore{snapshots: map[string]orchestrator.Snapshot{}}
}

func (s *memSnapshotStore) Load(ctx context.Context, repoID string) (orchestrator.Snapshot, error) {
	return s.snapshots[repoID], nil
}

func (s *memSnapshotStore) Save(ctx context.Context, snap orchestrator.Snapshot) error {
	s.snapshots[snap.RepoID] = snap
	return nil
}

func TestRunExecuteBootstrapsOnFirstPass(t *testing.T) {
	store := newMemSnapshotStore()
	detector := &orchestrator.GitStatusDetector{
		RepoRoot: "/repo",
		Run: func(ctx context.Context, repoRoot string, args ...string) ([]byte, error) {
			return []byte("A  a.go\n"), nil
		},
	}
	run := &orchestrator.Run{
		RepoID:   "repo1",
		Detector: detector,
		Store:    store,
		Manager:  orchestrator.NewModeManager(10, time.Hour),
	}

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	plan, err := run.Execute(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, orchestrator.ModeBootstrap, plan.Mode)
	assert.Equal(t, []string{"a.go"}, plan.Files)

	// No snapshot is written until Commit is called.
	snap, err := store.Load(context.Background(), "repo1")
	require.NoError(t, err)
	assert.False(t, snap.Exists)
}

func TestRunCommitPersistsSnapshot(t *testing.T) {
	store := newMemSnapshotStore()
	detector := &orchestrator.GitStatusDetector{
		RepoRoot: "/repo",
		Run: func(ctx context.Context, repoRoot string, args ...string) ([]byte, error) {
			return []byte(""), nil
		},
	}
	run := &orchestrator.Run{
		RepoID:   "repo1",
		Detector: detector,
		Store:    store,
		Manager:  orchestrator.NewModeManager(10, time.Hour),
	}

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	plan, err := run.Execute(context.Background(), now)
	require.NoError(t, err)

	require.NoError(t, run.Commit(context.Background(), now, plan))

	snap, err := store.Load(context.Background(), "repo1")
	require.NoError(t, err)
	assert.True(t, snap.Exists)
	assert.Equal(t, now, snap.LastBalanced) // Bootstrap counts as a balanced-equivalent run
}

func TestRunExecuteCancelTokenIsIndependentPerPlan(t *testing.T) {
	store := newMemSnapshotStore()
	detector := &orchestrator.GitStatusDetector{
		RepoRoot: "/repo",
		Run: func(ctx context.Context, repoRoot string, args ...string) ([]byte, error) {
			return []byte(""), nil
		},
	}
	run := &orchestrator.Run{
		RepoID:   "repo1",
		Detector: detector,
		Store:    store,
		Manager:  orchestrator.NewModeManager(10, time.Hour),
	}

	plan, err := run.Execute(context.Background(), time.Now())
	require.NoError(t, err)
	require.NotNil(t, plan.Cancel)
	assert.False(t, plan.Cancel.Cancelled())

	plan.Cancel.Cancel(nil)
	assert.True(t, plan.Cancel.Cancelled())
}
