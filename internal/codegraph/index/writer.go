// Package index implements the multi-index write path of §4.13: decoupled
// per-index writers (lexical, vector, symbol, fuzzy, domain) behind a
// common batch API, backed by database/sql over mattn/go-sqlite3.
package index

import (
	"context"
	"time"

	cgerrors "github.com/viant/codegraph/internal/codegraph/errors"
	"github.com/viant/codegraph/internal/codegraph/metrics"
	"github.com/viant/codegraph/internal/codegraph/progress"
)

// File is one unit of work for a writer: its path and the bytes to index.
type File struct {
	Path    string
	Content []byte
}

// Failure pairs a failed file with its classified error.
type Failure struct {
	Path  string
	Error error
	Class cgerrors.Classification
}

// BatchResult is the writer batch API's return shape, §4.13.
type BatchResult struct {
	SuccessCount int
	Skipped      int // files not indexed because this writer's backing store is unavailable
	Failed       []Failure
	Duration     time.Duration
}

// Writer is the common interface every index writer implements (§4.13
// "Each writer declares a batch API").
type Writer interface {
	Name() string
	IndexFiles(ctx context.Context, files []File) (BatchResult, error)
}

// runBatch is the shared per-file retry/classify loop every writer uses:
// TRANSIENT failures are retried with exponential backoff, PERMANENT
// failures are reported and skip that file, INFRASTRUCTURE failures abort
// the whole batch (§4.13, §7).
func runBatch(ctx context.Context, files []File, indexOne func(context.Context, File) error, maxRetries int, reporter progress.Reporter, writerName string, mx *metrics.Registry) (BatchResult, error) {
	start := time.Now()
	result := BatchResult{}

	if reporter == nil {
		reporter = progress.Noop
	}
	reporter.Start(len(files), "indexing")
	defer reporter.Finish()

	for _, f := range files {
		var lastErr error
		attempt := 0
		for {
			attempt++
			err := indexOne(ctx, f)
			if err == nil {
				result.SuccessCount++
				lastErr = nil
				break
			}
			lastErr = err
			class := cgerrors.ClassifyStorage(err)
			if class == cgerrors.Infrastructure {
				result.Duration = time.Since(start)
				mx.ObserveWriterBatch(writerName, result.SuccessCount, result.Skipped, failuresByClass(result.Failed), result.Duration)
				return result, cgerrors.Wrap(cgerrors.Internal, err, "infrastructure failure, aborting batch")
			}
			if class == cgerrors.Transient && attempt <= maxRetries {
				backoff(attempt)
				continue
			}
			result.Failed = append(result.Failed, Failure{Path: f.Path, Error: err, Class: class})
			break
		}
		_ = lastErr
		reporter.Add(1)
	}

	result.Duration = time.Since(start)
	mx.ObserveWriterBatch(writerName, result.SuccessCount, result.Skipped, failuresByClass(result.Failed), result.Duration)
	return result, nil
}

func failuresByClass(failed []Failure) map[string]int {
	if len(failed) == 0 {
		return nil
	}
	counts := map[string]int{}
	for _, f := range failed {
		counts[string(f.Class)]++
	}
	return counts
}

// backoff implements a simple exponential backoff; callers needing a real
// clock injection for tests should prefer calling indexOne directly.
func backoff(attempt int) {
	d := time.Duration(1<<uint(attempt)) * 10 * time.Millisecond
	if d > time.Second {
		d = time.Second
	}
	time.Sleep(d)
}
