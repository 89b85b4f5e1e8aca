package jobs

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue() *Queue {
	return NewQueue(NewMemoryLockStore(), NewDecayLimiter(0))
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestDispatchUnregisteredKind(t *testing.T) {
	q := newTestQueue()
	err := q.Dispatch(Job{Kind: KindDetails, Appid: 440})
	require.Error(t, err)
}

func TestDuplicateDispatchIsSilentlyDropped(t *testing.T) {
	q := newTestQueue()
	var runs atomic.Int32
	q.Register(KindDetails, func(ctx context.Context, job Job) error {
		runs.Add(1)
		return nil
	})

	// Both dispatches land before any worker runs: the second is a no-op.
	require.NoError(t, q.Dispatch(Job{Kind: KindDetails, Appid: 440}))
	require.NoError(t, q.Dispatch(Job{Kind: KindDetails, Appid: 440}))

	q.Start(2)
	defer q.Stop()

	waitFor(t, time.Second, func() bool { return runs.Load() == 1 })
	time.Sleep(50 * time.Millisecond)
	assert.EqualValues(t, 1, runs.Load())
}

func TestUniquenessIsScopedPerKind(t *testing.T) {
	q := newTestQueue()
	var runs atomic.Int32
	handler := func(ctx context.Context, job Job) error {
		runs.Add(1)
		return nil
	}
	q.Register(KindDetails, handler)
	q.Register(KindNews, handler)

	require.NoError(t, q.Dispatch(Job{Kind: KindDetails, Appid: 440}))
	require.NoError(t, q.Dispatch(Job{Kind: KindNews, Appid: 440}))

	q.Start(2)
	defer q.Stop()

	waitFor(t, time.Second, func() bool { return runs.Load() == 2 })
}

func TestLockReleasedAfterSuccess(t *testing.T) {
	q := newTestQueue()
	var runs atomic.Int32
	q.Register(KindDetails, func(ctx context.Context, job Job) error {
		runs.Add(1)
		return nil
	})
	q.Start(1)
	defer q.Stop()

	require.NoError(t, q.Dispatch(Job{Kind: KindDetails, Appid: 440}))
	waitFor(t, time.Second, func() bool { return runs.Load() == 1 })

	require.NoError(t, q.Dispatch(Job{Kind: KindDetails, Appid: 440}))
	waitFor(t, time.Second, func() bool { return runs.Load() == 2 })
}

func TestRetryThenSuccess(t *testing.T) {
	q := newTestQueue()
	q.SetRetryPolicy(3, 10*time.Millisecond)

	var attempts atomic.Int32
	q.Register(KindDetails, func(ctx context.Context, job Job) error {
		if attempts.Add(1) < 3 {
			return errors.New("transient")
		}
		return nil
	})
	q.Start(1)
	defer q.Stop()

	var mu sync.Mutex
	var states []State
	q.OnEvent(func(ev Event) {
		mu.Lock()
		states = append(states, ev.State)
		mu.Unlock()
	})

	require.NoError(t, q.Dispatch(Job{Kind: KindDetails, Appid: 440}))
	waitFor(t, 2*time.Second, func() bool { return attempts.Load() == 3 })

	waitFor(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, s := range states {
			if s == StateSucceeded {
				return true
			}
		}
		return false
	})

	mu.Lock()
	defer mu.Unlock()
	retries := 0
	for _, s := range states {
		if s == StateRetryPending {
			retries++
		}
		assert.NotEqual(t, StateDead, s)
	}
	assert.Equal(t, 2, retries)
}

func TestExhaustedRetriesMarkJobDead(t *testing.T) {
	q := newTestQueue()
	q.SetRetryPolicy(2, 10*time.Millisecond)

	var attempts atomic.Int32
	q.Register(KindDetails, func(ctx context.Context, job Job) error {
		attempts.Add(1)
		return errors.New("permanent")
	})
	q.Start(1)
	defer q.Stop()

	var dead atomic.Bool
	q.OnEvent(func(ev Event) {
		if ev.State == StateDead {
			dead.Store(true)
		}
	})

	require.NoError(t, q.Dispatch(Job{Kind: KindDetails, Appid: 440}))
	waitFor(t, 2*time.Second, func() bool { return dead.Load() })
	assert.EqualValues(t, 2, attempts.Load())

	// The lock is freed again once the job dies.
	var reruns atomic.Int32
	q.Register(KindDetails, func(ctx context.Context, job Job) error {
		reruns.Add(1)
		return nil
	})
	require.NoError(t, q.Dispatch(Job{Kind: KindDetails, Appid: 440}))
	waitFor(t, time.Second, func() bool { return reruns.Load() == 1 })
}

func TestPanicInHandlerCountsAsFailure(t *testing.T) {
	q := newTestQueue()
	q.SetRetryPolicy(1, time.Millisecond)

	q.Register(KindDetails, func(ctx context.Context, job Job) error {
		panic("boom")
	})
	q.Start(1)
	defer q.Stop()

	var deadErr atomic.Value
	q.OnEvent(func(ev Event) {
		if ev.State == StateDead {
			deadErr.Store(ev.Error)
		}
	})

	require.NoError(t, q.Dispatch(Job{Kind: KindDetails, Appid: 440}))
	waitFor(t, time.Second, func() bool { return deadErr.Load() != nil })
	assert.Contains(t, deadErr.Load().(string), "panic")
}

func TestLimiterSpacesExecutions(t *testing.T) {
	q := NewQueue(NewMemoryLockStore(), NewDecayLimiter(40*time.Millisecond))

	var mu sync.Mutex
	var runTimes []time.Time
	q.Register(KindDetails, func(ctx context.Context, job Job) error {
		mu.Lock()
		runTimes = append(runTimes, time.Now())
		mu.Unlock()
		return nil
	})
	q.Start(4)
	defer q.Stop()

	for appid := uint(1); appid <= 3; appid++ {
		require.NoError(t, q.Dispatch(Job{Kind: KindDetails, Appid: appid}))
	}

	waitFor(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(runTimes) == 3
	})

	mu.Lock()
	defer mu.Unlock()
	elapsed := runTimes[2].Sub(runTimes[0])
	assert.GreaterOrEqual(t, elapsed, 60*time.Millisecond, "three runs need at least two full decay intervals")
}

func TestCursorJobsDoNotCollide(t *testing.T) {
	q := newTestQueue()
	var runs atomic.Int32
	q.Register(KindWorkshop, func(ctx context.Context, job Job) error {
		runs.Add(1)
		return nil
	})

	require.NoError(t, q.Dispatch(Job{Kind: KindWorkshop, Appid: 440, Cursor: "*"}))
	require.NoError(t, q.Dispatch(Job{Kind: KindWorkshop, Appid: 440, Cursor: "AoJ4"}))

	q.Start(2)
	defer q.Stop()

	waitFor(t, time.Second, func() bool { return runs.Load() == 2 })
}

func TestDeferredJobsDoNotLeakGoroutines(t *testing.T) {
	// One-hour decay: the first job claims the only slot, every other job is
	// released back on a pending timer that never fires during the test.
	q := NewQueue(NewMemoryLockStore(), NewDecayLimiter(time.Hour))
	q.Register(KindDetails, func(ctx context.Context, job Job) error {
		return nil
	})
	q.Start(2)

	baseline := runtime.NumGoroutine()

	const backlog = 200
	for appid := uint(1); appid <= backlog; appid++ {
		require.NoError(t, q.Dispatch(Job{Kind: KindDetails, Appid: appid}))
	}
	waitFor(t, 2*time.Second, func() bool { return len(q.tasks) == 0 })

	// A goroutine per deferral would put us hundreds over baseline here.
	assert.Less(t, runtime.NumGoroutine(), baseline+20)

	q.timersMu.Lock()
	pending := len(q.timers)
	q.timersMu.Unlock()
	assert.GreaterOrEqual(t, pending, backlog-1)

	// Stop cancels the pending timers and frees their uniqueness locks.
	q.Stop()
	assert.True(t, q.locks.TryAcquire(Job{Kind: KindDetails, Appid: 2}.uniqueKey()))

	q.timersMu.Lock()
	assert.Empty(t, q.timers)
	q.timersMu.Unlock()
}
