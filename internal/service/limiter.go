package service

import "sync"

// DefaultMaxLoginAttempts is how many failed logins a client may make before
// it is locked out.
const DefaultMaxLoginAttempts = 5

// AttemptLimiter counts failed login attempts per client key. Counts live in
// memory only and are lost on restart.
type AttemptLimiter struct {
	mu     sync.Mutex
	max    int
	counts map[string]int
}

// NewAttemptLimiter creates a limiter allowing max failed attempts per key.
func NewAttemptLimiter(max int) *AttemptLimiter {
	if max <= 0 {
		max = DefaultMaxLoginAttempts
	}
	return &AttemptLimiter{max: max, counts: make(map[string]int)}
}

// Reserve takes one attempt for key before credentials are checked. It
// reports false, taking nothing, once key has used all of its attempts. The
// check and the increment happen under one lock so concurrent logins from the
// same client cannot overrun the cap.
func (l *AttemptLimiter) Reserve(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.counts[key] >= l.max {
		return false
	}
	l.counts[key]++
	return true
}

// Release hands back a reserved attempt that did not end in a credential
// failure, such as a storage error.
func (l *AttemptLimiter) Release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.counts[key] <= 1 {
		delete(l.counts, key)
		return
	}
	l.counts[key]--
}

// Reset clears the count for key.
func (l *AttemptLimiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.counts, key)
}

// Remaining returns how many attempts key has left.
func (l *AttemptLimiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.max - l.counts[key]
}

// Max returns the attempt cap.
func (l *AttemptLimiter) Max() int {
	return l.max
}
