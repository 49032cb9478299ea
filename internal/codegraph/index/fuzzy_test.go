package index_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/codegraph/internal/codegraph/index"
)

func TestFuzzyWriterIndexesAndSearchesApproximateMatches(t *testing.T) {
	db, err := index.Open(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, index.Migrate(db))

	w := &index.FuzzyWriter{
		DB: db, RepoID: "repo-1", SnapshotID: "snap-1",
		Terms: func(f index.File) []string { return []string{"HandleRequest", "parseConfig"} },
	}
	_, err = w.IndexFiles(context.Background(), []index.File{{Path: "a.go"}})
	require.NoError(t, err)

	hits, err := w.Search(context.Background(), "handlerequst", 10)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "a.go", hits[0].ChunkID)
}

func TestFuzzyWriterNilTermsFuncIsNoop(t *testing.T) {
	db, err := index.Open(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, index.Migrate(db))

	w := &index.FuzzyWriter{DB: db, RepoID: "repo-1", SnapshotID: "snap-1"}
	result, err := w.IndexFiles(context.Background(), []index.File{{Path: "a.go"}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)
}

func TestFuzzyWriterSearchRespectsLimit(t *testing.T) {
	db, err := index.Open(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, index.Migrate(db))

	w := &index.FuzzyWriter{
		DB: db, RepoID: "repo-1", SnapshotID: "snap-1",
		Terms: func(f index.File) []string { return []string{"alpha", "alphabet", "alphanumeric"} },
	}
	_, err = w.IndexFiles(context.Background(), []index.File{{Path: "a.go"}})
	require.NoError(t, err)

	hits, err := w.Search(context.Background(), "alpha", 1)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}
