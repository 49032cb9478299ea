package cache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/codegraph/internal/codegraph/cache"
)

type fakeRetirable struct{ retired bool }

func (f *fakeRetirable) Retire() { f.retired = true }

func TestArenaGCTracksUpToBudget(t *testing.T) {
	gc := cache.NewArenaGC(2)
	a := &fakeRetirable{}
	b := &fakeRetirable{}
	gc.Track("a", a)
	gc.Track("b", b)

	assert.Equal(t, 2, gc.Len())
	assert.False(t, a.retired)
	assert.False(t, b.retired)
}

func TestArenaGCRetiresOldestBeyondBudget(t *testing.T) {
	gc := cache.NewArenaGC(2)
	a := &fakeRetirable{}
	b := &fakeRetirable{}
	c := &fakeRetirable{}
	gc.Track("a", a)
	gc.Track("b", b)
	gc.Track("c", c)

	assert.True(t, a.retired)
	assert.False(t, b.retired)
	assert.False(t, c.retired)
	assert.Equal(t, 2, gc.Len())
}

func TestArenaGCReleaseRetiresAndUntracksExplicitly(t *testing.T) {
	gc := cache.NewArenaGC(5)
	a := &fakeRetirable{}
	gc.Track("a", a)

	gc.Release("a")

	assert.True(t, a.retired)
	assert.Equal(t, 0, gc.Len())
}

func TestArenaGCUnboundedWhenBudgetZero(t *testing.T) {
	gc := cache.NewArenaGC(0)
	for i := 0; i < 10; i++ {
		gc.Track(string(rune('a'+i)), &fakeRetirable{})
	}
	assert.Equal(t, 10, gc.Len())
}
