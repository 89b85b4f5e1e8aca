package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDecayLimiterSpacing(t *testing.T) {
	limiter := NewDecayLimiter(50 * time.Millisecond)

	assert.True(t, limiter.TryAcquire())
	assert.False(t, limiter.TryAcquire(), "second acquire inside the interval must fail")

	time.Sleep(60 * time.Millisecond)
	assert.True(t, limiter.TryAcquire(), "slot frees after the interval elapses")
}

func TestDecayLimiterDisabled(t *testing.T) {
	limiter := NewDecayLimiter(0)
	for i := 0; i < 10; i++ {
		assert.True(t, limiter.TryAcquire())
	}
}

func TestDecayLimiterInterval(t *testing.T) {
	assert.Equal(t, time.Second, NewDecayLimiter(time.Second).Interval())
}

func TestMemoryLockStore(t *testing.T) {
	locks := NewMemoryLockStore()

	assert.True(t, locks.TryAcquire("details:440"))
	assert.False(t, locks.TryAcquire("details:440"), "held lock cannot be re-acquired")
	assert.True(t, locks.TryAcquire("news:440"), "locks are scoped by the full key")

	locks.Release("details:440")
	assert.True(t, locks.TryAcquire("details:440"))

	// Releasing an unheld lock is harmless.
	locks.Release("workshop:1")
}
