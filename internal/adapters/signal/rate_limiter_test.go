package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterBlocksOverLimit(t *testing.T) {
	rl := NewMessageRateLimiter(3, 100*time.Millisecond)

	for i := range 3 {
		assert.True(t, rl.Allow("sid"), "frame %d should pass", i)
	}
	assert.False(t, rl.Allow("sid"))
}

func TestRateLimiterRecoversAfterWindow(t *testing.T) {
	rl := NewMessageRateLimiter(1, 30*time.Millisecond)

	assert.True(t, rl.Allow("sid"))
	assert.False(t, rl.Allow("sid"))

	time.Sleep(50 * time.Millisecond)
	assert.True(t, rl.Allow("sid"))
}

func TestRateLimiterIsolatesSessions(t *testing.T) {
	rl := NewMessageRateLimiter(1, time.Minute)

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))
	assert.False(t, rl.Allow("a"))
}

func TestRateLimiterForget(t *testing.T) {
	rl := NewMessageRateLimiter(1, time.Minute)

	assert.True(t, rl.Allow("sid"))
	rl.Forget("sid")
	assert.True(t, rl.Allow("sid"))
}
