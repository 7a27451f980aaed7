// Package cache provides the build-time caches and the advisory lock that keep
// concurrent static-generation workers from rescanning the notes directory.
package cache

import (
	"sync"
	"time"
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock is the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// Memory is an in-process cache holding a single value for a fixed TTL.
type Memory[T any] struct {
	ttl   time.Duration
	clock Clock

	mu     sync.Mutex
	value  T
	stored time.Time
	ok     bool
}

// NewMemory creates an empty in-process cache.
func NewMemory[T any](ttl time.Duration, clock Clock) *Memory[T] {
	if clock == nil {
		clock = SystemClock
	}
	return &Memory[T]{ttl: ttl, clock: clock}
}

// Get returns the cached value if it was stored less than ttl ago.
func (m *Memory[T]) Get() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	if !m.ok {
		return zero, false
	}
	if m.clock.Now().Sub(m.stored) >= m.ttl {
		m.value, m.ok = zero, false
		return zero, false
	}
	return m.value, true
}

// Put replaces the cached value.
func (m *Memory[T]) Put(v T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = v
	m.stored = m.clock.Now()
	m.ok = true
}

// Invalidate drops the cached value.
func (m *Memory[T]) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	m.value, m.ok = zero, false
}
