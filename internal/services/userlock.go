package services

import (
	"hash/fnv"
	"sync"
)

// UserLocks serializes wellness-state mutations per user: a user has at most
// one in-flight event-processor invocation. Locks are striped so memory stays
// bounded regardless of user count; two users sharing a stripe merely contend,
// they never corrupt each other's state. The (user, day) uniqueness index
// remains the storage-level backstop for retry storms across processes.
type UserLocks struct {
	stripes []sync.Mutex
}

// NewUserLocks creates a lock set with n stripes (n <= 0 defaults to 256).
func NewUserLocks(n int) *UserLocks {
	if n <= 0 {
		n = 256
	}
	return &UserLocks{stripes: make([]sync.Mutex, n)}
}

// Lock acquires the stripe for userID and returns its unlock function.
func (l *UserLocks) Lock(userID string) func() {
	h := fnv.New32a()
	h.Write([]byte(userID))
	m := &l.stripes[int(h.Sum32())%len(l.stripes)]
	m.Lock()
	return m.Unlock
}
