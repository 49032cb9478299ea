package cache

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
)

// Key constructs the two cache-key shapes named in §4.12: IR caches use
// file_path:content_hash:snapshot_id, analysis caches use
// sha256(canonical-JSON(spec)) — the latter is produced by the caller
// (typically a SHA256 hex digest of a marshaled spec) and passed in
// as-is, since this package has no opinion on spec shape.
func Key(filePath, contentHash, snapshotID string) string {
	return filePath + ":" + contentHash + ":" + snapshotID
}

// L2 is the shared, cross-instance tier: a TTL-bounded store. The
// in-process implementation here is a faithful single-process stand-in for
// a real shared tier (e.g. a remote cache); it satisfies the same
// interface so callers needn't branch on deployment shape.
type L2 interface {
	Get(ctx context.Context, key string) (any, bool)
	Set(ctx context.Context, key string, value any, ttl time.Duration)
	Delete(ctx context.Context, key string)
	DeletePrefix(ctx context.Context, prefix string)
	Clear(ctx context.Context)
}

type l2Entry struct {
	value   any
	expires time.Time
}

// InProcessL2 is the default L2 implementation used outside a multi-process
// deployment.
type InProcessL2 struct {
	store *LRU // reuses LRU's eviction bookkeeping; TTL is checked on Get.
	ttls  map[string]time.Time
}

// NewInProcessL2 returns an L2 tier whose entries expire by TTL. maxsize
// bounds it with LRU eviction; 0 leaves it unbounded.
func NewInProcessL2(maxsize int) *InProcessL2 {
	return &InProcessL2{store: NewLRU(maxsize), ttls: map[string]time.Time{}}
}

func (l *InProcessL2) Get(_ context.Context, key string) (any, bool) {
	v, ok := l.store.Get(key)
	if !ok {
		return nil, false
	}
	entry := v.(l2Entry)
	if !entry.expires.IsZero() && time.Now().After(entry.expires) {
		l.store.Delete(key)
		return nil, false
	}
	return entry.value, true
}

func (l *InProcessL2) Set(_ context.Context, key string, value any, ttl time.Duration) {
	var expires time.Time
	if ttl != 0 {
		expires = time.Now().Add(ttl)
	}
	l.store.Set(key, l2Entry{value: value, expires: expires})
}

func (l *InProcessL2) Delete(_ context.Context, key string) { l.store.Delete(key) }
func (l *InProcessL2) DeletePrefix(_ context.Context, prefix string) { l.store.DeletePrefix(prefix) }
func (l *InProcessL2) Clear(_ context.Context) { l.store.Clear() }

// Loader is L3: the real computation backing a cache miss.
type Loader func(ctx context.Context, key string) (any, error)

// Tier composes L1 -> L2 -> L3 with the lookup/write/single-flight contract
// of §4.12: reads are non-blocking across tiers except for the one loader
// invocation per key that concurrent misses share.
type Tier struct {
	l1      *LRU
	l2      L2
	l2TTL   time.Duration
	loader  Loader
	group   singleflight.Group
}

// NewTier wires the three tiers together. l2TTL is the TTL applied whenever
// a value is hoisted into L2.
func NewTier(l1Size int, l2 L2, l2TTL time.Duration, loader Loader) *Tier {
	l1 := NewLRU(l1Size)
	l1.Tier = "l1"
	return &Tier{l1: l1, l2: l2, l2TTL: l2TTL, loader: loader}
}

// SetMetrics wires a hit/miss recorder into L1 and, for the in-process L2
// implementation, L2 as well, so a deployment can report per-tier hit
// ratios (§4.12) without this package depending on how they're exported.
func (t *Tier) SetMetrics(m HitMissRecorder) {
	t.l1.Metrics = m
	if l2, ok := t.l2.(*InProcessL2); ok {
		l2.store.Metrics = m
		l2.store.Tier = "l2"
	}
}

// Get implements the L1 -> L2 -> L3 lookup path, hoisting hits into every
// warmer tier and guaranteeing at most one in-flight L3 load per key
// (§4.12 "Concurrency contract").
func (t *Tier) Get(ctx context.Context, key string) (any, error) {
	if v, ok := t.l1.Get(key); ok {
		return v, nil
	}
	if t.l2 != nil {
		if v, ok := t.l2.Get(ctx, key); ok {
			t.l1.Set(key, v)
			return v, nil
		}
	}

	v, err, _ := t.group.Do(key, func() (any, error) {
		return t.loader(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	t.l1.Set(key, v)
	if t.l2 != nil {
		t.l2.Set(ctx, key, v, t.l2TTL)
	}
	return v, nil
}

// Invalidate removes key from every warmer tier (L1, L2); L3 is never
// mutated by the cache (§4.12 "L3 never [written]").
func (t *Tier) Invalidate(ctx context.Context, key string) {
	t.l1.Delete(key)
	if t.l2 != nil {
		t.l2.Delete(ctx, key)
	}
}

// InvalidatePrefix removes every key with the given prefix from L1 and L2.
func (t *Tier) InvalidatePrefix(ctx context.Context, prefix string) {
	t.l1.DeletePrefix(prefix)
	if t.l2 != nil {
		t.l2.DeletePrefix(ctx, prefix)
	}
}

// Clear empties L1 and L2 entirely (§4.12 "whole-namespace clear").
func (t *Tier) Clear(ctx context.Context) {
	t.l1.Clear()
	if t.l2 != nil {
		t.l2.Clear(ctx)
	}
}
