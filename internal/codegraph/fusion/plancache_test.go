package fusion_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/codegraph/internal/codegraph/fusion"
)

func TestPlanKeyIsDeterministic(t *testing.T) {
	a := fusion.PlanKey("search", 3, "stable", "Var(x) >> Call(y)")
	b := fusion.PlanKey("search", 3, "stable", "Var(x) >> Call(y)")
	assert.Equal(t, a, b)
}

func TestPlanKeyDiffersOnAnyField(t *testing.T) {
	base := fusion.PlanKey("search", 3, "stable", "plan")
	assert.NotEqual(t, base, fusion.PlanKey("other", 3, "stable", "plan"))
	assert.NotEqual(t, base, fusion.PlanKey("search", 4, "stable", "plan"))
	assert.NotEqual(t, base, fusion.PlanKey("search", 3, "treatment", "plan"))
	assert.NotEqual(t, base, fusion.PlanKey("search", 3, "stable", "other-plan"))
}

func TestPlanCacheGetMissingReturnsFalse(t *testing.T) {
	c := fusion.NewPlanCache(4)
	_, ok := c.Get("missing")
	assert.False(t, ok)
}

func TestPlanCachePutThenGetRoundTrips(t *testing.T) {
	c := fusion.NewPlanCache(4)
	entry := fusion.PlanCacheEntry{
		Results: []fusion.Result{{ChunkID: "n1", FusedScore: 0.5}},
		Arm:     "stable",
	}
	c.Put("k1", entry)

	got, ok := c.Get("k1")
	assert.True(t, ok)
	assert.Equal(t, entry, got)
}

func TestPlanCacheInvalidatePrefixRemovesMatchingKeys(t *testing.T) {
	c := fusion.NewPlanCache(8)
	c.Put("snap1:a", fusion.PlanCacheEntry{Arm: "stable"})
	c.Put("snap1:b", fusion.PlanCacheEntry{Arm: "stable"})
	c.Put("snap2:a", fusion.PlanCacheEntry{Arm: "stable"})

	n := c.Invalidate("snap1:")

	assert.Equal(t, 2, n)
	_, ok := c.Get("snap2:a")
	assert.True(t, ok)
	_, ok = c.Get("snap1:a")
	assert.False(t, ok)
}

func TestPlanCacheEvictsLeastRecentlyUsedBeyondCapacity(t *testing.T) {
	c := fusion.NewPlanCache(2)
	c.Put("a", fusion.PlanCacheEntry{Arm: "a"})
	c.Put("b", fusion.PlanCacheEntry{Arm: "b"})
	c.Put("c", fusion.PlanCacheEntry{Arm: "c"})

	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}
