package jobs

import "sync"

// LockStore is the shared uniqueness-lock table keyed by (kind, appid). A
// lock is held from dispatch until the job completes or dies, so a second
// dispatch of the same pair is dropped instead of queued twice. Deployments
// with several worker processes back this with a shared store; the in-memory
// implementation covers a single process.
type LockStore interface {
	// TryAcquire takes the lock if free and reports whether it did.
	TryAcquire(key string) bool
	// Release frees the lock. Releasing a free lock is a no-op.
	Release(key string)
}

type memoryLockStore struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewMemoryLockStore() LockStore {
	return &memoryLockStore{held: make(map[string]struct{})}
}

func (s *memoryLockStore) TryAcquire(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.held[key]; taken {
		return false
	}
	s.held[key] = struct{}{}
	return true
}

func (s *memoryLockStore) Release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.held, key)
}
