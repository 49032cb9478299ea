package index

import (
	"context"
	"database/sql"

	"github.com/viant/codegraph/internal/codegraph/metrics"
	"github.com/viant/codegraph/internal/codegraph/progress"
)

// DomainRule is one rule-based tagging rule: if Match returns true for a
// file, Tag is attached to every chunk ChunkIDs returns for it.
type DomainRule struct {
	Tag   string
	Match func(f File) bool
}

// DomainWriter applies rule-based tags (e.g. "test", "generated",
// "migration", "security_sensitive") to chunks, §4.13 "domain (rule-based
// tags)".
type DomainWriter struct {
	DB         *sql.DB
	RepoID     string
	SnapshotID string
	Rules      []DomainRule
	ChunkIDs   func(f File) []string
	// Progress reports batch progress to an operator-facing terminal;
	// nil means no-op (the common headless case).
	Progress progress.Reporter
	// Metrics reports batch throughput/failure counts; nil means no-op.
	Metrics *metrics.Registry
}

func (w *DomainWriter) Name() string { return "domain" }

func (w *DomainWriter) IndexFiles(ctx context.Context, files []File) (BatchResult, error) {
	return runBatch(ctx, files, func(ctx context.Context, f File) error {
		if w.ChunkIDs == nil {
			return nil
		}
		chunkIDs := w.ChunkIDs(f)
		for _, rule := range w.Rules {
			if !rule.Match(f) {
				continue
			}
			for _, chunkID := range chunkIDs {
				if _, err := execWithRetry(w.DB,
					`INSERT INTO domain_tags (repo_id, snapshot_id, chunk_id, tag, tombstoned)
					 VALUES (?, ?, ?, ?, 0)
					 ON CONFLICT(repo_id, snapshot_id, chunk_id, tag) DO UPDATE SET tombstoned = 0`,
					w.RepoID, w.SnapshotID, chunkID, rule.Tag); err != nil {
					return err
				}
			}
		}
		return nil
	}, 3, w.Progress, "domain", w.Metrics)
}

// TagsFor returns every tag attached to chunkID.
func (w *DomainWriter) TagsFor(ctx context.Context, chunkID string) ([]string, error) {
	rows, err := w.DB.QueryContext(ctx,
		`SELECT tag FROM domain_tags WHERE repo_id = ? AND snapshot_id = ? AND chunk_id = ? AND tombstoned = 0`,
		w.RepoID, w.SnapshotID, chunkID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}
