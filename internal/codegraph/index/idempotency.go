package index

import (
	"context"
	"sync"
	"time"
)

// IdempotencyKey is the §4.13 idempotency store key:
// (repo_id, snapshot_id, file_path, head_sha).
type IdempotencyKey struct {
	RepoID     string
	SnapshotID string
	FilePath   string
	HeadSHA    string
}

// IdempotencyStore keeps IdempotencyKey -> indexed_at with a TTL (default
// 24h, §4.13). It partitions an incoming file list into needs_indexing and
// already_indexed in a single pass (PartitionFiles).
type IdempotencyStore struct {
	mu  sync.Mutex
	ttl time.Duration
	at  map[IdempotencyKey]time.Time
	now func() time.Time
}

// DefaultTTL is the §4.13 default idempotency window.
const DefaultTTL = 24 * time.Hour

// NewIdempotencyStore returns a store with the given TTL. A zero ttl uses
// DefaultTTL.
func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &IdempotencyStore{ttl: ttl, at: map[IdempotencyKey]time.Time{}, now: time.Now}
}

// MarkIndexed records key as indexed at the current time, per §8 property
// 10 ("the second index attempt within TTL is a no-op").
func (s *IdempotencyStore) MarkIndexed(ctx context.Context, key IdempotencyKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.at[key] = s.now()
}

// IsIndexed reports whether key was marked indexed within the TTL window.
func (s *IdempotencyStore) IsIndexed(ctx context.Context, key IdempotencyKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.at[key]
	if !ok {
		return false
	}
	if s.now().Sub(at) > s.ttl {
		delete(s.at, key)
		return false
	}
	return true
}

// PartitionFiles splits candidates into needsIndexing and alreadyIndexed in
// a single pass, §4.13 "partitions the incoming file list ... in a single
// pass".
func (s *IdempotencyStore) PartitionFiles(ctx context.Context, repoID, snapshotID, headSHA string, paths []string) (needsIndexing, alreadyIndexed []string) {
	for _, p := range paths {
		key := IdempotencyKey{RepoID: repoID, SnapshotID: snapshotID, FilePath: p, HeadSHA: headSHA}
		if s.IsIndexed(ctx, key) {
			alreadyIndexed = append(alreadyIndexed, p)
		} else {
			needsIndexing = append(needsIndexing, p)
		}
	}
	return needsIndexing, alreadyIndexed
}
