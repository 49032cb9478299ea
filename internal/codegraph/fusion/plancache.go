package fusion

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/viant/codegraph/internal/codegraph/cache"
)

// PlanCacheEntry is a cached query result, keyed by a plan's canonical key.
type PlanCacheEntry struct {
	Results []Result
	Arm     string
}

// PlanCache memoizes Fuse results per (intent, plan, preset version),
// SPEC_FULL.md §12 "query-plan result caching": repeated identical plans
// (common in IDE-driven incremental re-query) skip re-fusing entirely.
// Built on the same LRU the three-tier cache uses rather than a bespoke
// map, keeping eviction behavior consistent across the codebase.
type PlanCache struct {
	lru *cache.LRU
}

// NewPlanCache returns a PlanCache capped at maxEntries.
func NewPlanCache(maxEntries int) *PlanCache {
	return &PlanCache{lru: cache.NewLRU(maxEntries)}
}

// PlanKey computes a deterministic cache key for a query plan: intent,
// preset version/arm, and the plan's own description string (e.g. a
// serialized `Var(name) >> Call(name)` chain from §6's query API).
func PlanKey(intent string, presetVersion int, arm string, planDescription string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%d\x00%s\x00%s", intent, presetVersion, arm, planDescription)
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns a cached entry, if present.
func (c *PlanCache) Get(key string) (PlanCacheEntry, bool) {
	v, ok := c.lru.Get(key)
	if !ok {
		return PlanCacheEntry{}, false
	}
	return v.(PlanCacheEntry), true
}

// Put stores entry at key, evicting the least-recently-used plan if full.
func (c *PlanCache) Put(key string, entry PlanCacheEntry) {
	c.lru.Set(key, entry)
}

// Invalidate drops every cached plan whose key starts with prefix and
// returns how many were dropped. Keys built by PlanKey are hex digests with
// no snapshot component, so a snapshot prefix only matches keys the caller
// composed with that prefix itself.
func (c *PlanCache) Invalidate(prefix string) int {
	return c.lru.DeletePrefix(prefix)
}
