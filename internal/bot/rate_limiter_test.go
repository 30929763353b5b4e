package bot

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	rl := NewRateLimiter()
	for i := range rateLimitMaxCommands {
		require.True(t, rl.Allow("user-1"), "request %d should be allowed", i+1)
	}
	assert.False(t, rl.Allow("user-1"), "request beyond limit should be denied")
}

func TestRateLimiterIsolatesUsers(t *testing.T) {
	rl := NewRateLimiter()
	for range rateLimitMaxCommands {
		rl.Allow("user-1")
	}
	assert.False(t, rl.Allow("user-1"))
	assert.True(t, rl.Allow("user-2"), "different user should not be affected")
}

func TestRateLimiterResetsAfterWindow(t *testing.T) {
	rl := NewRateLimiter()
	clock := time.Date(2026, 1, 10, 18, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	for range rateLimitMaxCommands {
		require.True(t, rl.Allow("user-1"))
	}
	assert.False(t, rl.Allow("user-1"))

	clock = clock.Add(rateLimitWindow + time.Second)
	assert.True(t, rl.Allow("user-1"), "should allow after old entries expire")
}

func TestRateLimiterPrune(t *testing.T) {
	rl := NewRateLimiter()
	clock := time.Date(2026, 1, 10, 18, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	rl.Allow("user-1")
	clock = clock.Add(rateLimitWindow / 2)
	rl.Allow("user-2")
	clock = clock.Add(rateLimitWindow/2 + time.Second)

	rl.Prune()
	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.requests, "user-1")
	assert.Contains(t, rl.requests, "user-2")
}

func TestRateLimiterConcurrentAccess(t *testing.T) {
	rl := NewRateLimiter()
	var wg sync.WaitGroup
	allowed := make([]int, 10)

	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			userID := fmt.Sprintf("user-%d", i)
			for range rateLimitMaxCommands + 2 {
				if rl.Allow(userID) {
					allowed[i]++
				}
			}
		}()
	}
	wg.Wait()

	for i, count := range allowed {
		assert.Equal(t, rateLimitMaxCommands, count, "user-%d should have exactly %d allowed requests", i, rateLimitMaxCommands)
	}
}
