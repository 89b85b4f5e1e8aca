package jobs

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// Kind identifies a job family. Uniqueness is scoped per kind: a details job
// and a news job for the same appid do not block each other.
type Kind string

const (
	KindDetails  Kind = "details"
	KindNews     Kind = "news"
	KindWorkshop Kind = "workshop"
)

// Job is the queue payload.
type Job struct {
	Kind   Kind   `json:"kind"`
	Appid  uint   `json:"appid"`
	Cursor string `json:"cursor,omitempty"` // workshop pagination only
}

func (j Job) uniqueKey() string {
	// Paginated jobs carry a cursor; each page is its own unit of work, so a
	// follow-up page dispatched from inside the running handler is not
	// swallowed by the lock of the page that dispatched it.
	if j.Cursor != "" {
		return fmt.Sprintf("%s:%d:%s", j.Kind, j.Appid, j.Cursor)
	}
	return fmt.Sprintf("%s:%d", j.Kind, j.Appid)
}

// State is the lifecycle of a job instance.
type State string

const (
	StatePending      State = "PENDING"
	StateInFlight     State = "IN_FLIGHT"
	StateSucceeded    State = "SUCCEEDED"
	StateRetryPending State = "RETRY_PENDING"
	StateDead         State = "DEAD"
)

// Event reports a state transition, mainly for the progress feed.
type Event struct {
	Job     Job    `json:"job"`
	State   State  `json:"state"`
	Attempt int    `json:"attempt"`
	Error   string `json:"error,omitempty"`
}

// Handler runs one job attempt. Any returned error marks the attempt failed
// for retry accounting; it never crashes a worker.
type Handler func(ctx context.Context, job Job) error

// Dispatcher is what producers (importer, API, workshop follow-ups) see.
type Dispatcher interface {
	Dispatch(job Job) error
}

const (
	defaultMaxAttempts  = 3
	defaultRetryBackoff = 30 * time.Second
	queueCapacity       = 100000
)

// Queue is an in-process work queue with per-(kind, appid) uniqueness, a
// shared rate limiter, and fixed-backoff retries. Workers never block on the
// limiter: an exhausted slot releases the job back with a delay equal to the
// decay interval.
type Queue struct {
	locks   LockStore
	limiter Limiter

	maxAttempts  int
	retryBackoff time.Duration

	handlersMu sync.RWMutex
	handlers   map[Kind]Handler

	tasks chan *task

	onEventMu sync.RWMutex
	onEvent   func(Event)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	timersMu sync.Mutex
	timers   map[*time.Timer]*task
}

type task struct {
	job     Job
	attempt int
}

func NewQueue(locks LockStore, limiter Limiter) *Queue {
	ctx, cancel := context.WithCancel(context.Background())
	return &Queue{
		locks:        locks,
		limiter:      limiter,
		maxAttempts:  defaultMaxAttempts,
		retryBackoff: defaultRetryBackoff,
		handlers:     make(map[Kind]Handler),
		tasks:        make(chan *task, queueCapacity),
		timers:       make(map[*time.Timer]*task),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// SetRetryPolicy overrides the attempt cap and fixed backoff. Call before
// Start.
func (q *Queue) SetRetryPolicy(maxAttempts int, backoff time.Duration) {
	if maxAttempts > 0 {
		q.maxAttempts = maxAttempts
	}
	q.retryBackoff = backoff
}

// Register binds a handler to a job kind. Dispatching an unregistered kind
// is a dispatch error.
func (q *Queue) Register(kind Kind, handler Handler) {
	q.handlersMu.Lock()
	defer q.handlersMu.Unlock()
	q.handlers[kind] = handler
}

// OnEvent installs a listener for state transitions.
func (q *Queue) OnEvent(fn func(Event)) {
	q.onEventMu.Lock()
	defer q.onEventMu.Unlock()
	q.onEvent = fn
}

func (q *Queue) emit(ev Event) {
	q.onEventMu.RLock()
	fn := q.onEvent
	q.onEventMu.RUnlock()
	if fn != nil {
		fn(ev)
	}
}

// Dispatch enqueues a job. While the same (kind, appid) is already queued or
// executing, the call is a silent no-op.
func (q *Queue) Dispatch(job Job) error {
	q.handlersMu.RLock()
	_, known := q.handlers[job.Kind]
	q.handlersMu.RUnlock()
	if !known {
		return fmt.Errorf("no handler registered for job kind %q", job.Kind)
	}

	if !q.locks.TryAcquire(job.uniqueKey()) {
		// Duplicate in flight; dropped by design of the uniqueness contract.
		return nil
	}

	t := &task{job: job}
	select {
	case q.tasks <- t:
		q.emit(Event{Job: job, State: StatePending})
		return nil
	default:
		q.locks.Release(job.uniqueKey())
		return fmt.Errorf("queue is full, dropping %s job for appid %d", job.Kind, job.Appid)
	}
}

// Start launches the worker pool.
func (q *Queue) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	log.Printf("[queue] started %d workers", workers)
}

// Stop drains nothing: in-flight attempts finish, queued tasks stay behind.
// Pending requeue timers are cancelled and their locks released.
func (q *Queue) Stop() {
	q.cancel()
	q.wg.Wait()

	q.timersMu.Lock()
	for timer, t := range q.timers {
		if timer.Stop() {
			q.locks.Release(t.job.uniqueKey())
		}
		delete(q.timers, timer)
	}
	q.timersMu.Unlock()
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case t := <-q.tasks:
			q.process(t)
		}
	}
}

func (q *Queue) process(t *task) {
	if !q.limiter.TryAcquire() {
		// Limiter exhausted: release the job back with a backoff equal to
		// the decay interval. The worker is immediately free again.
		q.requeueAfter(t, q.limiter.Interval())
		return
	}

	t.attempt++
	q.emit(Event{Job: t.job, State: StateInFlight, Attempt: t.attempt})

	err := q.runHandler(t.job)
	if err == nil {
		q.locks.Release(t.job.uniqueKey())
		q.emit(Event{Job: t.job, State: StateSucceeded, Attempt: t.attempt})
		return
	}

	if t.attempt >= q.maxAttempts {
		q.locks.Release(t.job.uniqueKey())
		q.emit(Event{Job: t.job, State: StateDead, Attempt: t.attempt, Error: err.Error()})
		log.Printf("[queue] %s job for appid %d failed permanently after %d attempts: %v",
			t.job.Kind, t.job.Appid, t.attempt, err)
		return
	}

	q.emit(Event{Job: t.job, State: StateRetryPending, Attempt: t.attempt, Error: err.Error()})
	log.Printf("[queue] %s job for appid %d failed (attempt %d/%d), retrying in %s: %v",
		t.job.Kind, t.job.Appid, t.attempt, q.maxAttempts, q.retryBackoff, err)
	q.requeueAfter(t, q.retryBackoff)
}

func (q *Queue) runHandler(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s handler: %v", job.Kind, r)
		}
	}()

	q.handlersMu.RLock()
	handler := q.handlers[job.Kind]
	q.handlersMu.RUnlock()

	return handler(q.ctx, job)
}

// requeueAfter puts the task back on the channel after a delay. Pending
// timers sit in q.timers so Stop can cancel them; deferrals are frequent
// under limiter pressure and must not cost a goroutine apiece.
func (q *Queue) requeueAfter(t *task, delay time.Duration) {
	q.timersMu.Lock()
	defer q.timersMu.Unlock()

	if q.ctx.Err() != nil {
		q.locks.Release(t.job.uniqueKey())
		return
	}

	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		q.timersMu.Lock()
		delete(q.timers, timer)
		q.timersMu.Unlock()

		select {
		case q.tasks <- t:
		case <-q.ctx.Done():
			q.locks.Release(t.job.uniqueKey())
		}
	})
	q.timers[timer] = t
}
