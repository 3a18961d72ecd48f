package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/fieldsync/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(t *testing.T, cfg *Config) (*Limiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewLimiter(cfg)
	l.now = clock.Now
	t.Cleanup(l.Stop)
	return l, clock
}

func TestLimiter_Allow(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
	})

	for i := 0; i < 10; i++ {
		allowed, info := l.Allow("127.0.0.1", "/api/jobs", "GET")
		require.True(t, allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
	}

	allowed, info := l.Allow("127.0.0.1", "/api/jobs", "GET")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Greater(t, info.RetryAfter, time.Duration(0))
	assert.InDelta(t, float64(6*time.Second), float64(info.RetryAfter), float64(time.Millisecond))
}

func TestLimiter_Refill(t *testing.T) {
	l, clock := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  60,
		DefaultWindow: time.Minute,
	})

	for i := 0; i < 60; i++ {
		l.Allow("10.0.0.1", "/", "POST")
	}
	allowed, _ := l.Allow("10.0.0.1", "/", "POST")
	require.False(t, allowed)

	clock.Advance(time.Second)
	allowed, _ = l.Allow("10.0.0.1", "/", "POST")
	assert.True(t, allowed, "one token refills per second")

	allowed, _ = l.Allow("10.0.0.1", "/", "POST")
	assert.False(t, allowed)
}

func TestLimiter_WhitelistAndBlacklist(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"10.0.0.1": true},
		Blacklist:     map[string]bool{"10.0.0.2": true},
	})

	for i := 0; i < 5; i++ {
		allowed, _ := l.Allow("10.0.0.1", "/api/jobs", "GET")
		assert.True(t, allowed)
	}

	allowed, info := l.Allow("10.0.0.2", "/health", "GET")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Limit)
}

func TestLimiter_Disabled(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: false})

	for i := 0; i < 100; i++ {
		allowed, _ := l.Allow("127.0.0.1", "/api/diagnose", "POST")
		require.True(t, allowed)
	}
	assert.Equal(t, 0, l.Len())
}

func TestLimiter_EndpointSpecific(t *testing.T) {
	rc := config.RateLimitConfig{
		Enabled:        true,
		DefaultLimit:   100,
		DefaultWindow:  time.Minute,
		DiagnoseLimit:  60,
		DiagnoseWindow: time.Minute,
		DiagnoseBurst:  3,
	}
	l, _ := newTestLimiter(t, NewConfig(rc))

	for i := 0; i < 3; i++ {
		allowed, info := l.Allow("127.0.0.1", "/api/diagnose", "POST")
		require.True(t, allowed)
		assert.Equal(t, 60, info.Limit)
	}
	allowed, _ := l.Allow("127.0.0.1", "/api/diagnose", "POST")
	assert.False(t, allowed, "diagnose burst exhausted")

	allowed, info := l.Allow("127.0.0.1", "/api/jobs", "GET")
	assert.True(t, allowed, "other endpoints use their own bucket")
	assert.Equal(t, 100, info.Limit)

	for i := 0; i < 500; i++ {
		allowed, _ := l.Allow("127.0.0.1", "/health", "GET")
		require.True(t, allowed)
		allowed, _ = l.Allow("127.0.0.1", "/metrics", "GET")
		require.True(t, allowed)
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  50,
		DefaultWindow: time.Hour,
	})

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("127.0.0.1", "/api/jobs", "GET"); ok {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, allowedCount)
}

func TestLimiter_Cleanup(t *testing.T) {
	l, clock := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
		IdleTimeout:   time.Hour,
	})

	for i := 0; i < 5; i++ {
		l.Allow(fmt.Sprintf("10.0.0.%d", i), "/api/jobs", "GET")
	}
	require.Equal(t, 5, l.Len())

	clock.Advance(30 * time.Minute)
	l.Allow("10.0.0.0", "/api/jobs", "GET")

	clock.Advance(45 * time.Minute)
	l.cleanupBuckets()
	assert.Equal(t, 1, l.Len(), "only the recently used bucket survives")
}

func TestNewLimiter_NilConfig(t *testing.T) {
	l := NewLimiter(nil)
	defer l.Stop()

	allowed, info := l.Allow("127.0.0.1", "/api/jobs", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)

	l.Stop()
}

func TestNewConfig(t *testing.T) {
	rc := config.RateLimitConfig{
		Enabled:         true,
		DefaultLimit:    5,
		DefaultWindow:   time.Second,
		CleanupInterval: time.Minute,
		Whitelist:       []string{"10.0.0.1, 10.0.0.2", " "},
		Blacklist:       []string{"10.0.0.9"},
	}
	cfg := NewConfig(rc)

	assert.True(t, cfg.Enabled)
	assert.Equal(t, map[string]bool{"10.0.0.1": true, "10.0.0.2": true}, cfg.Whitelist)
	assert.Equal(t, map[string]bool{"10.0.0.9": true}, cfg.Blacklist)
	assert.Equal(t, DefaultIdleTimeout, cfg.IdleTimeout)

	assert.False(t, NewConfig(config.RateLimitConfig{Enabled: false}).Enabled)
}

func TestMatchEndpoint(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/api/diagnose", Method: "POST", Limit: 60},
		{Path: "/api/jobs/", Method: "GET", Limit: 30},
		{Path: "/", Method: "GET", Limit: 0},
	}

	tests := []struct {
		name      string
		path      string
		method    string
		wantLimit int
		wantNil   bool
	}{
		{"exact", "/api/diagnose", "POST", 60, false},
		{"method mismatch", "/api/diagnose", "GET", 0, true},
		{"prefix", "/api/jobs/42", "GET", 30, false},
		{"root exact", "/", "GET", 0, false},
		{"root is not a prefix", "/api/other", "GET", 0, true},
		{"health unlimited", "/health", "GET", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantLimit, got.Limit)
		})
	}
}
