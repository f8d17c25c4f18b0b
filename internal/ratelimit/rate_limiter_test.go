// rate_limiter_test.go - Token bucket behavior

package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWaitDoesNotBlockWithinCapacity(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	start := time.Now()
	for i := 0; i < 3; i++ {
		rl.Wait()
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
	assert.Equal(t, 0, rl.tokens)
}

func TestWaitBlocksUntilRefill(t *testing.T) {
	rl := NewRateLimiter(1, 150*time.Millisecond)
	rl.Wait()

	start := time.Now()
	rl.Wait()
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestRefillCapsAtMaxTokens(t *testing.T) {
	rl := NewRateLimiter(2, 10*time.Millisecond)
	rl.Wait()
	rl.Wait()

	time.Sleep(100 * time.Millisecond)

	rl.mu.Lock()
	rl.refill()
	tokens := rl.tokens
	rl.mu.Unlock()

	assert.Equal(t, 2, tokens)
}
