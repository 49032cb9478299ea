package index

import (
	"context"
	"database/sql"

	"github.com/viant/codegraph/internal/codegraph/metrics"
	"github.com/viant/codegraph/internal/codegraph/progress"
)

// SymbolEntry is one row the SymbolWriter persists: a projected symbol
// bound to a retrieval chunk.
type SymbolEntry struct {
	SymbolID string
	FQN      string
	Kind     string
	ChunkID  string
}

// SymbolWriter persists the Symbol-Graph projection for lookup during
// fusion scoring, §4.13 "symbol (Symbol-Graph index)".
type SymbolWriter struct {
	DB         *sql.DB
	RepoID     string
	SnapshotID string
	// Entries supplies the symbols discovered for each file; indexing a
	// file with no entries is a no-op success, not a failure.
	Entries func(f File) []SymbolEntry
	// Progress reports batch progress to an operator-facing terminal;
	// nil means no-op (the common headless case).
	Progress progress.Reporter
	// Metrics reports batch throughput/failure counts; nil means no-op.
	Metrics *metrics.Registry
}

func (w *SymbolWriter) Name() string { return "symbol" }

func (w *SymbolWriter) IndexFiles(ctx context.Context, files []File) (BatchResult, error) {
	return runBatch(ctx, files, func(ctx context.Context, f File) error {
		if w.Entries == nil {
			return nil
		}
		for _, e := range w.Entries(f) {
			if _, err := execWithRetry(w.DB,
				`INSERT INTO symbol_index (repo_id, snapshot_id, symbol_id, fqn, kind, chunk_id, tombstoned)
				 VALUES (?, ?, ?, ?, ?, ?, 0)
				 ON CONFLICT(repo_id, snapshot_id, symbol_id)
				 DO UPDATE SET fqn = excluded.fqn, kind = excluded.kind, chunk_id = excluded.chunk_id, tombstoned = 0`,
				w.RepoID, w.SnapshotID, e.SymbolID, e.FQN, e.Kind, e.ChunkID); err != nil {
				return err
			}
		}
		return nil
	}, 3, w.Progress, "symbol", w.Metrics)
}

// SearchByFQN returns the chunk bound to a symbol's fully qualified name, if
// indexed.
func (w *SymbolWriter) SearchByFQN(ctx context.Context, fqn string) (string, bool, error) {
	row := w.DB.QueryRowContext(ctx,
		`SELECT chunk_id FROM symbol_index WHERE repo_id = ? AND snapshot_id = ? AND fqn = ? AND tombstoned = 0 LIMIT 1`,
		w.RepoID, w.SnapshotID, fqn)
	var chunkID string
	if err := row.Scan(&chunkID); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, err
	}
	return chunkID, true, nil
}
