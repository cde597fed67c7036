// Package reactive provides a process-wide value that notifies subscribers on change.
package reactive

import (
	"sync"
)

// Value holds a T that many readers observe and one owner mutates.
type Value[T any] struct {
	mu      sync.RWMutex
	value   T
	nextID  int
	version uint64
	subs    map[int]func(T)
}

// NewValue creates a Value holding initial.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{
		value: initial,
		subs:  make(map[int]func(T)),
	}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.value
}

// Set replaces the value and notifies all subscribers.
// Subscribers run synchronously on the calling goroutine, outside the lock.
func (v *Value[T]) Set(val T) {
	v.Store(val)()
}

// Store replaces the value and returns a function that notifies the
// subscribers. Owners that guard the value with their own lock call Store
// while holding it and notify after releasing it, so subscribers may call
// back into the owner. The notification is dropped if the value was replaced
// again before it ran; the later replacement notifies instead.
func (v *Value[T]) Store(val T) (notify func()) {
	v.mu.Lock()
	v.value = val
	v.version++
	version := v.version
	v.mu.Unlock()

	return func() {
		v.mu.RLock()
		if v.version != version {
			v.mu.RUnlock()
			return
		}
		subs := make([]func(T), 0, len(v.subs))
		for _, fn := range v.subs {
			subs = append(subs, fn)
		}
		v.mu.RUnlock()

		for _, fn := range subs {
			fn(val)
		}
	}
}

// Subscribe registers fn to be called on every Set.
// The returned function removes the subscription and is safe to call more than once.
func (v *Value[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	v.mu.Lock()
	defer v.mu.Unlock()

	id := v.nextID
	v.nextID++
	v.subs[id] = fn

	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		delete(v.subs, id)
	}
}

// Subscribers returns the number of active subscriptions.
func (v *Value[T]) Subscribers() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.subs)
}

// Close removes all subscriptions.
func (v *Value[T]) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.subs = make(map[int]func(T))
}
