package jobs

import (
	"sync"
	"time"
)

// Limiter is the single shared counter spacing out externally visible Steam
// calls across every job of the family. It is the only cross-worker
// synchronization point besides the lock store.
type Limiter interface {
	// TryAcquire reserves the next execution slot. When the limiter is
	// exhausted it returns false; the caller releases the job back to the
	// queue with a backoff instead of waiting.
	TryAcquire() bool
	// Interval is the configured decay interval, used as the requeue backoff.
	Interval() time.Duration
}

type decayLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

// NewDecayLimiter enforces a minimum spacing between executions. A
// non-positive interval disables limiting.
func NewDecayLimiter(interval time.Duration) Limiter {
	return &decayLimiter{interval: interval}
}

func (l *decayLimiter) TryAcquire() bool {
	if l.interval <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Before(l.next) {
		return false
	}
	l.next = now.Add(l.interval)
	return true
}

func (l *decayLimiter) Interval() time.Duration {
	return l.interval
}
