package index

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Open returns a sqlite connection at path with the pragmas the write path
// needs: WAL mode for concurrent readers during a writer's transaction
// (§5 "per-process write queue ... readers are lock-free").
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open index store: %w", err)
	}
	db.SetMaxOpenConns(1) // single-writer per index file, §5.
	return db, nil
}

// execWithRetry retries a write on "database is locked", mirroring the
// teacher pack's sqlite-under-cgo convention rather than relying on
// _busy_timeout alone, since WAL writers can still collide under load.
func execWithRetry(db *sql.DB, query string, args ...any) (sql.Result, error) {
	const maxRetries = 5
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		res, err := db.Exec(query, args...)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if strings.Contains(err.Error(), "locked") || strings.Contains(err.Error(), "busy") {
			time.Sleep(time.Duration(50*(i+1)) * time.Millisecond)
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("execWithRetry: database still locked after %d retries: %w", maxRetries, lastErr)
}

// Migrate creates every table the multi-index write path needs. Tables are
// created IF NOT EXISTS so repeated Migrate calls (e.g. at every process
// start) are idempotent.
func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS lexical_postings (
			repo_id TEXT NOT NULL,
			snapshot_id TEXT NOT NULL,
			term TEXT NOT NULL,
			chunk_id TEXT NOT NULL,
			term_freq INTEGER NOT NULL,
			tombstoned INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (repo_id, snapshot_id, term, chunk_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_lexical_term ON lexical_postings(repo_id, snapshot_id, term)`,
		`CREATE TABLE IF NOT EXISTS symbol_index (
			repo_id TEXT NOT NULL,
			snapshot_id TEXT NOT NULL,
			symbol_id TEXT NOT NULL,
			fqn TEXT NOT NULL,
			kind TEXT NOT NULL,
			chunk_id TEXT NOT NULL,
			tombstoned INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (repo_id, snapshot_id, symbol_id)
		)`,
		`CREATE TABLE IF NOT EXISTS fuzzy_terms (
			repo_id TEXT NOT NULL,
			snapshot_id TEXT NOT NULL,
			term TEXT NOT NULL,
			chunk_id TEXT NOT NULL,
			tombstoned INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (repo_id, snapshot_id, term, chunk_id)
		)`,
		`CREATE TABLE IF NOT EXISTS domain_tags (
			repo_id TEXT NOT NULL,
			snapshot_id TEXT NOT NULL,
			chunk_id TEXT NOT NULL,
			tag TEXT NOT NULL,
			tombstoned INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (repo_id, snapshot_id, chunk_id, tag)
		)`,
		`CREATE TABLE IF NOT EXISTS idempotency (
			repo_id TEXT NOT NULL,
			snapshot_id TEXT NOT NULL,
			file_path TEXT NOT NULL,
			head_sha TEXT NOT NULL,
			indexed_at TIMESTAMP NOT NULL,
			PRIMARY KEY (repo_id, snapshot_id, file_path, head_sha)
		)`,
	}
	for _, s := range stmts {
		if _, err := execWithRetry(db, s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return migrateVectorTable(db)
}
