// Package progress renders operator-facing progress for long index/
// compaction runs (SPEC_FULL.md §11 "Progress/operator feedback"), grounded
// on vjache-cie's cmd/cie/index.go progress-callback/bar-per-phase shape,
// adapted from a CLI's direct progressbar.ProgressBar ownership into a
// Reporter interface the multi-index write path depends on, so the common
// case — a headless caller, since CLIs are a non-goal of this engine — gets
// a real no-op instead of a bar fighting for a terminal that isn't there.
package progress

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// Reporter tracks one bounded unit of work. Every index writer's batch loop
// (internal/codegraph/index) calls Start once per batch, Add once per file
// processed, and Finish when the batch ends (success or failure).
type Reporter interface {
	Start(total int, description string)
	Add(n int)
	Finish()
}

// Noop discards every call; the default for headless callers.
var Noop Reporter = noopReporter{}

type noopReporter struct{}

func (noopReporter) Start(int, string) {}
func (noopReporter) Add(int)           {}
func (noopReporter) Finish()           {}

// terminalReporter wraps a schollz/progressbar/v3 bar.
type terminalReporter struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

// NewReporter returns a terminal-rendered Reporter when out is a terminal
// (detected via mattn/go-isatty), or Noop otherwise. Passing nil behaves
// like passing a non-terminal out.
func NewReporter(out *os.File) Reporter {
	if out == nil || !isatty.IsTerminal(out.Fd()) {
		return Noop
	}
	return &terminalReporter{out: out}
}

func (r *terminalReporter) Start(total int, description string) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(r.out),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *terminalReporter) Add(n int) {
	if r.bar == nil {
		return
	}
	_ = r.bar.Add(n)
}

func (r *terminalReporter) Finish() {
	if r.bar == nil {
		return
	}
	_ = r.bar.Finish()
}
