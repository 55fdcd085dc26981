package services

import (
	"context"
	"sync"
)

// ScopeLocker serializes bulk recalculations per scope. TryLock must not
// block: if the scope is already held, it reports false immediately.
type ScopeLocker interface {
	// TryLock attempts to acquire the lock for a scope label. On success
	// it returns a release function and true.
	TryLock(ctx context.Context, scope string) (release func(), acquired bool, err error)
}

// InProcessScopeLocker is the single-process ScopeLocker used in local mode
// and tests.
type InProcessScopeLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewInProcessScopeLocker creates an empty locker.
func NewInProcessScopeLocker() *InProcessScopeLocker {
	return &InProcessScopeLocker{held: make(map[string]bool)}
}

// TryLock implements ScopeLocker.
func (l *InProcessScopeLocker) TryLock(_ context.Context, scope string) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held[scope] {
		return nil, false, nil
	}
	l.held[scope] = true

	var once sync.Once
	release := func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, scope)
			l.mu.Unlock()
		})
	}
	return release, true, nil
}
