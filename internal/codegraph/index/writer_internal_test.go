package index

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cgerrors "github.com/viant/codegraph/internal/codegraph/errors"
	"github.com/viant/codegraph/internal/codegraph/metrics"
)

func TestRunBatchAllSuccessReportsEveryFile(t *testing.T) {
	files := []File{{Path: "a.go"}, {Path: "b.go"}}
	result, err := runBatch(context.Background(), files, func(ctx context.Context, f File) error {
		return nil
	}, 3, nil, "test", nil)

	require.NoError(t, err)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Empty(t, result.Failed)
}

func TestRunBatchPermanentFailureIsReportedNotRetried(t *testing.T) {
	attempts := 0
	files := []File{{Path: "a.go"}}
	result, err := runBatch(context.Background(), files, func(ctx context.Context, f File) error {
		attempts++
		return cgerrors.New(cgerrors.InvalidArgument, "bad file", nil)
	}, 3, nil, "test", nil)

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, cgerrors.Permanent, result.Failed[0].Class)
}

func TestRunBatchTransientFailureRetriesUpToMaxThenFails(t *testing.T) {
	attempts := 0
	files := []File{{Path: "a.go"}}
	result, err := runBatch(context.Background(), files, func(ctx context.Context, f File) error {
		attempts++
		return cgerrors.New(cgerrors.Timeout, "retry me", nil)
	}, 2, nil, "test", nil)

	require.NoError(t, err)
	assert.Equal(t, 3, attempts) // initial + 2 retries
	require.Len(t, result.Failed, 1)
	assert.Equal(t, cgerrors.Transient, result.Failed[0].Class)
}

func TestRunBatchTransientFailureEventuallySucceeds(t *testing.T) {
	attempts := 0
	files := []File{{Path: "a.go"}}
	result, err := runBatch(context.Background(), files, func(ctx context.Context, f File) error {
		attempts++
		if attempts < 2 {
			return cgerrors.New(cgerrors.RateLimited, "slow down", nil)
		}
		return nil
	}, 3, nil, "test", nil)

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Empty(t, result.Failed)
}

func TestRunBatchInfrastructureFailureAbortsWholeBatch(t *testing.T) {
	files := []File{{Path: "a.go"}, {Path: "b.go"}}
	result, err := runBatch(context.Background(), files, func(ctx context.Context, f File) error {
		return cgerrors.New(cgerrors.Internal, "disk gone", nil)
	}, 3, nil, "test", nil)

	require.Error(t, err)
	assert.Equal(t, 0, result.SuccessCount)
}

func TestRunBatchNonClassifiedErrorDefaultsToPermanent(t *testing.T) {
	files := []File{{Path: "a.go"}}
	result, err := runBatch(context.Background(), files, func(ctx context.Context, f File) error {
		return errors.New("plain error")
	}, 3, nil, "test", nil)

	require.NoError(t, err)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, cgerrors.Permanent, result.Failed[0].Class)
}

type fakeReporter struct {
	started     int
	total       int
	added       int
	finishCalls int
}

func (f *fakeReporter) Start(total int, description string) { f.started++; f.total = total }
func (f *fakeReporter) Add(n int)                            { f.added += n }
func (f *fakeReporter) Finish()                              { f.finishCalls++ }

func TestRunBatchRecordsWriterThroughputMetrics(t *testing.T) {
	mx := metrics.New()
	files := []File{{Path: "a.go"}, {Path: "b.go"}}
	_, err := runBatch(context.Background(), files, func(ctx context.Context, f File) error {
		if f.Path == "b.go" {
			return cgerrors.New(cgerrors.InvalidArgument, "bad file", nil)
		}
		return nil
	}, 3, nil, "lexical", mx)

	require.NoError(t, err)
	n, err := testutil.GatherAndCount(mx, "codegraph_writer_files_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n) // one "success" series, one "failed" series
}

func TestRunBatchReportsProgressPerFileAndFinishesOnce(t *testing.T) {
	files := []File{{Path: "a.go"}, {Path: "b.go"}, {Path: "c.go"}}
	reporter := &fakeReporter{}
	_, err := runBatch(context.Background(), files, func(ctx context.Context, f File) error {
		return nil
	}, 3, reporter, "test", nil)

	require.NoError(t, err)
	assert.Equal(t, 1, reporter.started)
	assert.Equal(t, 3, reporter.total)
	assert.Equal(t, 3, reporter.added)
	assert.Equal(t, 1, reporter.finishCalls)
}
