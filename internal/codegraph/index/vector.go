package index

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"

	"github.com/viant/codegraph/internal/codegraph/metrics"
	"github.com/viant/codegraph/internal/codegraph/progress"
)

// migrateVectorTable creates the vec0 virtual table backing the vector
// index, §4.13 "vector (content or code embeddings keyed by chunk id)", and
// its plain vec_chunk_meta table. When the binary was built without the
// sqlite_vec+cgo tag pair the vec0 module doesn't exist, so only the (then
// always empty) vec_chunk_meta table is created rather than failing the
// whole Migrate call — VectorWriter then degrades to a no-op, and the delta
// compactor can still sweep vec_chunk_meta.
func migrateVectorTable(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS vec_chunk_meta (
			repo_id TEXT NOT NULL,
			snapshot_id TEXT NOT NULL,
			chunk_id TEXT NOT NULL,
			rowid INTEGER NOT NULL,
			tombstoned INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (repo_id, snapshot_id, chunk_id)
		)`,
	}
	if vectorTableAvailable {
		stmts = append(stmts, fmt.Sprintf(`CREATE VIRTUAL TABLE IF NOT EXISTS vec_chunks USING vec0(
			embedding float[%d]
		)`, DefaultEmbeddingDims))
	}
	for _, s := range stmts {
		if _, err := execWithRetry(db, s); err != nil {
			return fmt.Errorf("migrate vector table: %w", err)
		}
	}
	return nil
}

// VectorTableAvailable reports whether the binary was built with the
// sqlite_vec+cgo tag pair, so callers and tests can branch on it without
// reaching into the unexported build-tagged constant.
func VectorTableAvailable() bool { return vectorTableAvailable }

// DefaultEmbeddingDims is the vector width vec_chunks is created with.
// Changing it requires a fresh index file, since vec0 tables are fixed-width.
const DefaultEmbeddingDims = 256

// VectorEntry is one chunk's embedding, keyed for later cosine search.
type VectorEntry struct {
	ChunkID   string
	Embedding []float32
}

// VectorWriter persists content/code embeddings into a vec0 virtual table
// and serves cosine-distance nearest-neighbor search, §4.13/§4.15.
type VectorWriter struct {
	DB         *sql.DB
	RepoID     string
	SnapshotID string
	Embeddings func(f File) []VectorEntry
	// Progress reports batch progress to an operator-facing terminal;
	// nil means no-op (the common headless case).
	Progress progress.Reporter
	// Metrics reports batch throughput/failure counts; nil means no-op.
	Metrics *metrics.Registry
}

func (w *VectorWriter) Name() string { return "vector" }

func (w *VectorWriter) IndexFiles(ctx context.Context, files []File) (BatchResult, error) {
	if !vectorTableAvailable {
		result := BatchResult{}
		for range files {
			result.Skipped++
		}
		return result, nil
	}
	return runBatch(ctx, files, func(ctx context.Context, f File) error {
		if w.Embeddings == nil {
			return nil
		}
		for _, e := range w.Embeddings(f) {
			if len(e.Embedding) != DefaultEmbeddingDims {
				return fmt.Errorf("vector writer: chunk %s has %d dims, want %d", e.ChunkID, len(e.Embedding), DefaultEmbeddingDims)
			}
			if err := w.upsert(e); err != nil {
				return err
			}
		}
		return nil
	}, 3, w.Progress, "vector", w.Metrics)
}

func (w *VectorWriter) upsert(e VectorEntry) error {
	blob := encodeFloat32SliceToBlob(e.Embedding)

	var existingRowID sql.NullInt64
	row := w.DB.QueryRow(
		`SELECT rowid FROM vec_chunk_meta WHERE repo_id = ? AND snapshot_id = ? AND chunk_id = ?`,
		w.RepoID, w.SnapshotID, e.ChunkID)
	if err := row.Scan(&existingRowID); err != nil && err != sql.ErrNoRows {
		return err
	}

	if existingRowID.Valid {
		if _, err := execWithRetry(w.DB,
			`UPDATE vec_chunks SET embedding = ? WHERE rowid = ?`, blob, existingRowID.Int64); err != nil {
			return err
		}
		_, err := execWithRetry(w.DB,
			`UPDATE vec_chunk_meta SET tombstoned = 0 WHERE repo_id = ? AND snapshot_id = ? AND chunk_id = ?`,
			w.RepoID, w.SnapshotID, e.ChunkID)
		return err
	}

	res, err := execWithRetry(w.DB, `INSERT INTO vec_chunks(embedding) VALUES (?)`, blob)
	if err != nil {
		return err
	}
	rowID, err := res.LastInsertId()
	if err != nil {
		return err
	}
	_, err = execWithRetry(w.DB,
		`INSERT INTO vec_chunk_meta (repo_id, snapshot_id, chunk_id, rowid, tombstoned) VALUES (?, ?, ?, ?, 0)`,
		w.RepoID, w.SnapshotID, e.ChunkID, rowID)
	return err
}

// Search ranks chunks by ascending cosine distance to query (so Score is
// 1-distance, consistent with the other writers' "higher is better").
func (w *VectorWriter) Search(ctx context.Context, query []float32, limit int) ([]ScoredChunk, error) {
	if !vectorTableAvailable {
		return nil, nil
	}
	if len(query) != DefaultEmbeddingDims {
		return nil, fmt.Errorf("vector search: query has %d dims, want %d", len(query), DefaultEmbeddingDims)
	}
	blob := encodeFloat32SliceToBlob(query)
	rows, err := w.DB.QueryContext(ctx, `
		SELECT m.chunk_id, v.distance
		FROM vec_chunks v
		JOIN vec_chunk_meta m ON m.rowid = v.rowid
		WHERE v.embedding MATCH ? AND k = ?
		  AND m.repo_id = ? AND m.snapshot_id = ? AND m.tombstoned = 0
		ORDER BY v.distance ASC
	`, blob, limit, w.RepoID, w.SnapshotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ScoredChunk
	for rows.Next() {
		var chunkID string
		var distance float64
		if err := rows.Scan(&chunkID, &distance); err != nil {
			return nil, err
		}
		out = append(out, ScoredChunk{ChunkID: chunkID, Score: 1.0 - distance, Source: "vector"})
	}
	return out, rows.Err()
}

// encodeFloat32SliceToBlob little-endian-encodes an embedding the way
// sqlite-vec's vec0 module expects.
func encodeFloat32SliceToBlob(v []float32) []byte {
	buf := &bytes.Buffer{}
	buf.Grow(len(v) * 4)
	if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
		return nil
	}
	return buf.Bytes()
}
