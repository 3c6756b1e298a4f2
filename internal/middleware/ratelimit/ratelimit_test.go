package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type manualClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestLimiter_FixedWindow(t *testing.T) {
	clock := &manualClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	rl := NewLimiter(Config{RequestsPerMinute: 3}).WithClock(clock.Now)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("1.2.3.4"))
	}
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"), "clients are limited independently")

	// Steady traffic does not extend the window.
	clock.Advance(30 * time.Second)
	assert.False(t, rl.Allow("1.2.3.4"))
	clock.Advance(30 * time.Second)
	assert.True(t, rl.Allow("1.2.3.4"))

	m := rl.GetMetrics()
	assert.EqualValues(t, 2, m.TotalHits)
	assert.EqualValues(t, 2, m.ClientCount)
}

func TestLimiter_CleanupStaleEntries(t *testing.T) {
	clock := &manualClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	rl := NewLimiter(Config{RequestsPerMinute: 1}).WithClock(clock.Now)
	defer rl.Stop()

	rl.Allow("a")
	clock.Advance(5 * time.Minute)
	rl.Allow("b")
	clock.Advance(6 * time.Minute)

	assert.Equal(t, 1, rl.cleanupStaleEntries())
	assert.EqualValues(t, 1, rl.GetMetrics().ClientCount)
}

func TestLimiter_MiddlewareOnlyLimitsConfiguredMethods(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 1, Methods: []string{http.MethodPost}})
	defer rl.Stop()
	rl.Stop() // idempotent

	h := rl.Middleware(func(*http.Request) string { return "ip" }, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }))

	serve := func(method string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(method, "/", nil))
		return rr
	}

	assert.Equal(t, http.StatusOK, serve(http.MethodPost).Code)
	rr := serve(http.MethodPost)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusOK, serve(http.MethodGet).Code)
}
