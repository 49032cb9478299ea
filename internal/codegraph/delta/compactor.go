package delta

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Scope identifies one (repo, snapshot) compaction unit. Scheduler tracks
// repositories by a single string id, so callers compose repo and snapshot
// into one Scope key with NewScope and split it back with Scope.Split.
type Scope string

// NewScope composes a repo/snapshot pair into the key Scheduler.RepoIDs
// should report.
func NewScope(repoID, snapshotID string) Scope {
	return Scope(repoID + "\x00" + snapshotID)
}

// Split recovers the repo and snapshot ids from a Scope.
func (s Scope) Split() (repoID, snapshotID string) {
	parts := strings.SplitN(string(s), "\x00", 2)
	if len(parts) != 2 {
		return string(s), ""
	}
	return parts[0], parts[1]
}

// tombstonedTable names one of the multi-index write path's tables and the
// repo/snapshot columns every row carries (§4.13). The delta layer treats
// every writer's table as an always-queried union of base and delta rows:
// a single-writer, WAL-mode SQLite file already serializes upserts, so
// "delta" and "base" are the same physical rows distinguished only by the
// tombstoned flag — compaction's job is reclaiming space, not merging
// separate files.
type tombstonedTable struct {
	Name       string
	RepoCol    string
	SnapCol    string
	Tombstoned string
}

// Tables lists every table Compactor sweeps, mirroring index.Migrate's
// schema.
var Tables = []tombstonedTable{
	{Name: "lexical_postings", RepoCol: "repo_id", SnapCol: "snapshot_id", Tombstoned: "tombstoned"},
	{Name: "symbol_index", RepoCol: "repo_id", SnapCol: "snapshot_id", Tombstoned: "tombstoned"},
	{Name: "fuzzy_terms", RepoCol: "repo_id", SnapCol: "snapshot_id", Tombstoned: "tombstoned"},
	{Name: "domain_tags", RepoCol: "repo_id", SnapCol: "snapshot_id", Tombstoned: "tombstoned"},
	{Name: "vec_chunk_meta", RepoCol: "repo_id", SnapCol: "snapshot_id", Tombstoned: "tombstoned"},
}

// Compactor deletes tombstoned rows, §4.14. There is no separate delta
// generation to merge into base (see tombstonedTable). Every sweep runs inside one transaction so a crash
// mid-compaction leaves the tables exactly as they were (no partial
// deletes observed by readers) and a retried Compact call is a no-op on
// rows already removed.
type Compactor struct {
	DB *sql.DB
}

// CompactionResult reports how much a Compact call reclaimed per table.
type CompactionResult struct {
	RowsDeleted map[string]int64
}

// Compact atomically deletes every tombstoned row for scope across Tables.
// Idempotent: a second call with nothing left to delete succeeds with a
// zero result.
func (c *Compactor) Compact(ctx context.Context, scope Scope) (CompactionResult, error) {
	repoID, snapshotID := scope.Split()
	result := CompactionResult{RowsDeleted: map[string]int64{}}

	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("compact: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op once committed

	for _, t := range Tables {
		query := fmt.Sprintf(
			`DELETE FROM %s WHERE %s = ? AND %s = ? AND %s = 1`,
			t.Name, t.RepoCol, t.SnapCol, t.Tombstoned,
		)
		res, err := tx.ExecContext(ctx, query, repoID, snapshotID)
		if err != nil {
			return CompactionResult{}, fmt.Errorf("compact: delete %s: %w", t.Name, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return CompactionResult{}, fmt.Errorf("compact: rows affected %s: %w", t.Name, err)
		}
		result.RowsDeleted[t.Name] = n
	}

	if err := tx.Commit(); err != nil {
		return CompactionResult{}, fmt.Errorf("compact: commit: %w", err)
	}
	return result, nil
}

// CompactFn adapts Compactor.Compact to the plain string signature
// Scheduler expects.
func CompactFn(c *Compactor) func(ctx context.Context, scopeKey string) error {
	return func(ctx context.Context, scopeKey string) error {
		_, err := c.Compact(ctx, Scope(scopeKey))
		return err
	}
}

// Stats implements StatsFn against the multi-index tables: DeltaRowCount is
// the total tombstoned-row count across Tables, since those are the rows a
// compaction sweep would reclaim. scopeKey must be a string produced by
// Scope (Scheduler deals only in opaque repo id strings).
func Stats(db *sql.DB) StatsFn {
	return func(ctx context.Context, scopeKey string) (RepoStats, error) {
		repoID, snapshotID := Scope(scopeKey).Split()
		stats := RepoStats{RepoID: scopeKey}
		for _, t := range Tables {
			query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = ? AND %s = ? AND %s = 1`,
				t.Name, t.RepoCol, t.SnapCol, t.Tombstoned)
			var n int
			if err := db.QueryRowContext(ctx, query, repoID, snapshotID).Scan(&n); err != nil {
				return RepoStats{}, fmt.Errorf("delta stats: %s: %w", t.Name, err)
			}
			stats.DeltaRowCount += n
		}
		return stats, nil
	}
}
