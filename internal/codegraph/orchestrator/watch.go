package orchestrator

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultWatchSkipDirs are directories a live-watch feed never recurses
// into, grounded on vjache-cie's cmd/cie/watch.go watchSkipDirs table: churn
// under these paths is either not source (vendor, node_modules, build
// output) or is itself a byproduct of the engine's own incremental runs.
var defaultWatchSkipDirs = map[string]bool{
	".git": true, "node_modules": true, "vendor": true,
	"dist": true, "build": true, "bin": true,
}

// FileWatcher drives the Incremental Orchestrator's optional live-watch
// feed (SPEC_FULL.md §11 "File watching"): instead of a caller polling
// GitStatusDetector on a timer, a FileWatcher pushes a signal the moment
// the working tree settles after a burst of edits, so Run.Execute only
// re-detects when something actually changed.
type FileWatcher struct {
	RepoRoot string
	// Debounce coalesces a burst of filesystem events (e.g. an editor's
	// save-as-rename-then-write) into a single signal. Defaults to 2s,
	// the same window vjache-cie's watcher uses.
	Debounce time.Duration
	// SkipDirs overrides defaultWatchSkipDirs when non-nil.
	SkipDirs map[string]bool
}

// NewFileWatcher builds a FileWatcher with the default debounce and
// skip-dir set.
func NewFileWatcher(repoRoot string) *FileWatcher {
	return &FileWatcher{RepoRoot: repoRoot, Debounce: 2 * time.Second}
}

// Watch recursively registers RepoRoot's directories with fsnotify and
// returns a channel that receives one signal per settled burst of changes.
// The channel is closed and the underlying watcher released when ctx is
// cancelled. The returned channel is buffered by 1 and sends are
// non-blocking, so a slow or absent consumer never stalls the watch loop —
// a dropped signal just means the next debounced burst (or the consumer's
// own next poll) catches the same change.
func (w *FileWatcher) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	skip := w.SkipDirs
	if skip == nil {
		skip = defaultWatchSkipDirs
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = 2 * time.Second
	}

	_ = filepath.WalkDir(w.RepoRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // a single unreadable subtree shouldn't abort the whole watch setup
		}
		if !d.IsDir() {
			return nil
		}
		base := filepath.Base(path)
		if skip[base] || (strings.HasPrefix(base, ".") && base != "." && base != filepath.Base(w.RepoRoot)) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})

	out := make(chan struct{}, 1)
	go w.loop(ctx, watcher, debounce, out)
	return out, nil
}

func (w *FileWatcher) loop(ctx context.Context, watcher *fsnotify.Watcher, debounce time.Duration, out chan<- struct{}) {
	defer watcher.Close()
	defer close(out)

	var timer *time.Timer
	var timerCh <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-watcher.Events:
			if !ok {
				return
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		case _, ok := <-watcher.Errors:
			if !ok {
				return
			}
		case <-timerCh:
			timerCh = nil
			select {
			case out <- struct{}{}:
			default: // a signal is already pending; the consumer hasn't drained it yet
			}
		}
	}
}
