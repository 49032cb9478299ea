package index

import (
	"context"
	"database/sql"
	"strings"
	"unicode"

	"github.com/viant/codegraph/internal/codegraph/metrics"
	"github.com/viant/codegraph/internal/codegraph/progress"
)

// LexicalWriter builds an inverted index over tokenized file content,
// §4.13 "lexical (inverted index)".
type LexicalWriter struct {
	DB         *sql.DB
	RepoID     string
	SnapshotID string
	Tokenize   func(content []byte) map[string]int // term -> frequency; defaults to tokenize.
	// Progress reports batch progress to an operator-facing terminal;
	// nil means no-op (the common headless case).
	Progress progress.Reporter
	// Metrics reports batch throughput/failure counts; nil means no-op.
	Metrics *metrics.Registry
}

func (w *LexicalWriter) Name() string { return "lexical" }

// IndexFiles implements Writer.
func (w *LexicalWriter) IndexFiles(ctx context.Context, files []File) (BatchResult, error) {
	tokenize := w.Tokenize
	if tokenize == nil {
		tokenize = tokenizeWords
	}
	return runBatch(ctx, files, func(ctx context.Context, f File) error {
		terms := tokenize(f.Content)
		for term, freq := range terms {
			if _, err := execWithRetry(w.DB,
				`INSERT INTO lexical_postings (repo_id, snapshot_id, term, chunk_id, term_freq, tombstoned)
				 VALUES (?, ?, ?, ?, ?, 0)
				 ON CONFLICT(repo_id, snapshot_id, term, chunk_id)
				 DO UPDATE SET term_freq = excluded.term_freq, tombstoned = 0`,
				w.RepoID, w.SnapshotID, term, f.Path, freq); err != nil {
				return err
			}
		}
		return nil
	}, 3, w.Progress, "lexical", w.Metrics)
}

// Search returns chunk ids ranked by term frequency for a single-term query
// (multi-term queries are the Fusion layer's job, not this writer's).
func (w *LexicalWriter) Search(ctx context.Context, term string, limit int) ([]ScoredChunk, error) {
	rows, err := w.DB.QueryContext(ctx,
		`SELECT chunk_id, term_freq FROM lexical_postings
		 WHERE repo_id = ? AND snapshot_id = ? AND term = ? AND tombstoned = 0
		 ORDER BY term_freq DESC LIMIT ?`,
		w.RepoID, w.SnapshotID, strings.ToLower(term), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ScoredChunk
	for rows.Next() {
		var chunkID string
		var freq int
		if err := rows.Scan(&chunkID, &freq); err != nil {
			return nil, err
		}
		out = append(out, ScoredChunk{ChunkID: chunkID, Score: normalizeFreq(freq)})
	}
	return out, rows.Err()
}

// ScoredChunk is one index's ranked hit, §4.15 "(chunk_id, score, source)".
type ScoredChunk struct {
	ChunkID string
	Score   float64
	Source  string
}

func normalizeFreq(freq int) float64 {
	// simple saturating normalization to [0,1]; 10+ occurrences saturate.
	if freq >= 10 {
		return 1.0
	}
	return float64(freq) / 10.0
}

func tokenizeWords(content []byte) map[string]int {
	terms := map[string]int{}
	var cur strings.Builder
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		terms[strings.ToLower(cur.String())]++
		cur.Reset()
	}
	for _, r := range string(content) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			cur.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return terms
}
