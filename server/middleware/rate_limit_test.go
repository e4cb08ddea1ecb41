package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowEnforcesBurst(t *testing.T) {
	rl := NewRateLimiter(1, 2, time.Minute)
	defer rl.Close()

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"), "third request exceeds the burst")

	assert.True(t, rl.Allow("b"), "keys are throttled independently")
}

func TestSweepDropsIdleEntries(t *testing.T) {
	rl := NewRateLimiter(1, 1, 10*time.Millisecond)
	defer rl.Close()

	rl.Allow("idle")
	rl.mu.Lock()
	rl.limits["idle"].lastSeen = time.Now().Add(-time.Minute)
	rl.mu.Unlock()

	rl.sweep()

	rl.mu.Lock()
	_, ok := rl.limits["idle"]
	rl.mu.Unlock()
	assert.False(t, ok)
}
