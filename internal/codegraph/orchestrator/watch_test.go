package orchestrator_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/viant/codegraph/internal/codegraph/orchestrator"
)

func TestFileWatcherSignalsAfterDebouncedWrite(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"), []byte("package a"), 0o644))

	w := orchestrator.NewFileWatcher(root)
	w.Debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals, err := w.Watch(ctx)
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond) // let the watcher finish registering directories
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"), []byte("package a // changed"), 0o644))

	select {
	case <-signals:
	case <-time.After(5 * time.Second):
		t.Fatal("expected a debounced signal after the file write")
	}
}

func TestFileWatcherClosesChannelOnContextCancel(t *testing.T) {
	root := t.TempDir()

	w := orchestrator.NewFileWatcher(root)
	ctx, cancel := context.WithCancel(context.Background())

	signals, err := w.Watch(ctx)
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-signals:
		require.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("expected the signal channel to close after context cancellation")
	}
}

func TestFileWatcherSkipsConfiguredDirectories(t *testing.T) {
	root := t.TempDir()
	skipped := filepath.Join(root, "vendor")
	require.NoError(t, os.Mkdir(skipped, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(skipped, "v.go"), []byte("package v"), 0o644))

	w := orchestrator.NewFileWatcher(root)
	w.Debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals, err := w.Watch(ctx)
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(skipped, "v.go"), []byte("package v // changed"), 0o644))

	select {
	case <-signals:
		t.Fatal("did not expect a signal for a change inside a skipped directory")
	case <-time.After(300 * time.Millisecond):
		// no signal observed within the window, as expected
	}
}
