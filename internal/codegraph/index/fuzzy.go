package index

import (
	"context"
	"database/sql"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/viant/codegraph/internal/codegraph/metrics"
	"github.com/viant/codegraph/internal/codegraph/progress"
)

// FuzzyWriter indexes identifier-like terms for approximate lookup, §4.13
// "fuzzy". Search ranks terms with sahilm/fuzzy's subsequence scoring; no
// Levenshtein distance or threshold k is computed.
type FuzzyWriter struct {
	DB         *sql.DB
	RepoID     string
	SnapshotID string
	Terms      func(f File) []string // identifiers/tokens worth fuzzy-matching
	// Progress reports batch progress to an operator-facing terminal;
	// nil means no-op (the common headless case).
	Progress progress.Reporter
	// Metrics reports batch throughput/failure counts; nil means no-op.
	Metrics *metrics.Registry
}

func (w *FuzzyWriter) Name() string { return "fuzzy" }

func (w *FuzzyWriter) IndexFiles(ctx context.Context, files []File) (BatchResult, error) {
	return runBatch(ctx, files, func(ctx context.Context, f File) error {
		if w.Terms == nil {
			return nil
		}
		for _, term := range w.Terms(f) {
			if _, err := execWithRetry(w.DB,
				`INSERT INTO fuzzy_terms (repo_id, snapshot_id, term, chunk_id, tombstoned)
				 VALUES (?, ?, ?, ?, 0)
				 ON CONFLICT(repo_id, snapshot_id, term, chunk_id) DO UPDATE SET tombstoned = 0`,
				w.RepoID, w.SnapshotID, term, f.Path); err != nil {
				return err
			}
		}
		return nil
	}, 3, w.Progress, "fuzzy", w.Metrics)
}

// Search loads every indexed term for the snapshot and ranks them against
// query using sahilm/fuzzy's Smith-Waterman-derived scoring, then maps
// back to chunk ids. This is O(terms) per query: every term of the
// snapshot is scored, with no pre-filtering by other indices' hits.
func (w *FuzzyWriter) Search(ctx context.Context, query string, limit int) ([]ScoredChunk, error) {
	rows, err := w.DB.QueryContext(ctx,
		`SELECT term, chunk_id FROM fuzzy_terms WHERE repo_id = ? AND snapshot_id = ? AND tombstoned = 0`,
		w.RepoID, w.SnapshotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var terms []string
	chunkByTerm := map[string]string{}
	for rows.Next() {
		var term, chunkID string
		if err := rows.Scan(&term, &chunkID); err != nil {
			return nil, err
		}
		terms = append(terms, term)
		chunkByTerm[term] = chunkID
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	matches := fuzzy.Find(strings.ToLower(query), lowerAll(terms))
	var out []ScoredChunk
	for i, m := range matches {
		if limit > 0 && i >= limit {
			break
		}
		out = append(out, ScoredChunk{
			ChunkID: chunkByTerm[terms[m.Index]],
			Score:   normalizeFuzzyScore(m.Score),
		})
	}
	return out, nil
}

func lowerAll(terms []string) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = strings.ToLower(t)
	}
	return out
}

// normalizeFuzzyScore maps sahilm/fuzzy's unbounded score onto [0,1] via a
// saturating curve; fuzzy's score grows with match quality and length, so a
// fixed ceiling avoids one long identifier dominating fusion scoring.
func normalizeFuzzyScore(score int) float64 {
	const ceiling = 50
	if score >= ceiling {
		return 1.0
	}
	if score <= 0 {
		return 0
	}
	return float64(score) / float64(ceiling)
}
