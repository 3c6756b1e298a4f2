package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestLRUCacheEviction(t *testing.T) {
	c := NewLRUCache[string](3, time.Hour)

	c.Set("key1", "value1")
	c.Set("key2", "value2")
	c.Set("key3", "value3")
	c.Set("key4", "value4")

	_, found := c.Get("key1")
	assert.False(t, found, "key1 should have been evicted")
	for _, k := range []string{"key2", "key3", "key4"} {
		_, found := c.Get(k)
		assert.True(t, found, k)
	}
	assert.Equal(t, 3, c.Size())
}

func TestLRUCacheRecencyProtectsEntry(t *testing.T) {
	c := NewLRUCache[int](2, time.Hour)

	c.Set("a", 1)
	c.Set("b", 2)
	_, _ = c.Get("a")
	c.Set("c", 3)

	_, found := c.Get("b")
	assert.False(t, found)
	v, found := c.Get("a")
	require.True(t, found)
	assert.Equal(t, 1, v)
}

func TestLRUCacheTTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](100, time.Minute).WithClock(clock.Now)

	c.Set("key1", "value1")
	_, found := c.Get("key1")
	assert.True(t, found)

	clock.Advance(2 * time.Minute)
	_, found = c.Get("key1")
	assert.False(t, found)
	assert.Equal(t, 0, c.Size())
}

func TestLRUCacheCleanExpired(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](100, time.Minute).WithClock(clock.Now)

	c.Set("key1", "value1")
	c.Set("key2", "value2")
	clock.Advance(2 * time.Minute)
	c.Set("key3", "value3")

	assert.Equal(t, 2, c.CleanExpired())
	assert.Equal(t, 1, c.Size())
}

func TestLRUCacheStats(t *testing.T) {
	c := NewLRUCache[string](10, time.Hour)
	c.Set("k", "v")

	c.Get("k")
	c.Get("k")
	c.Get("missing")

	s := c.Stats()
	assert.EqualValues(t, 2, s.Hits)
	assert.EqualValues(t, 1, s.Misses)
	assert.Equal(t, 1, s.Size)
}

func TestManagerSweep(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](10, time.Second).WithClock(clock.Now)
	c.Set("a", "1")
	c.Set("b", "2")

	m := NewManager(nil)
	m.Register(c)
	clock.Advance(time.Minute)

	assert.Equal(t, 2, m.Sweep())
}

func TestManagerStartStop(t *testing.T) {
	m := NewManager(nil)
	m.Start(context.Background(), time.Millisecond)
	m.Stop()
	m.Stop()
}

func BenchmarkLRUCache(b *testing.B) {
	c := NewLRUCache[string](1000, time.Hour)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if i%10 == 0 {
			c.Set("bench-key", "value")
		} else {
			c.Get("bench-key")
		}
	}
}
