// Package observable provides a value holder that pushes every change to its
// subscribers.
package observable

import (
	"slices"
	"sync"
	"sync/atomic"
)

// Subject holds the latest value of T and delivers each new value to every
// subscriber in emission order. A new subscriber immediately receives the
// current value.
//
// Subscriber callbacks run synchronously on the emitting goroutine. They may
// read Value and unsubscribe, but must not call Update, Next or Subscribe on
// the same Subject.
type Subject[T any] struct {
	emitMu sync.Mutex // serialises emission and replay to new subscribers

	mu    sync.RWMutex
	value T

	subMu  sync.Mutex
	nextID int
	subs   []*subscriber[T]
}

type subscriber[T any] struct {
	id     int
	fn     func(T)
	closed atomic.Bool
}

func NewSubject[T any](initial T) *Subject[T] {
	return &Subject[T]{value: initial}
}

func (s *Subject[T]) Value() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Next replaces the value and emits it.
func (s *Subject[T]) Next(v T) {
	s.Update(func(T) T { return v })
}

// Update computes the next value from the current one and emits it. fn runs
// under the emission lock, so concurrent updates are applied and delivered in
// the same order.
func (s *Subject[T]) Update(fn func(T) T) T {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	s.value = fn(s.value)
	v := s.value
	s.mu.Unlock()

	for _, sub := range s.snapshot() {
		if !sub.closed.Load() {
			sub.fn(v)
		}
	}
	return v
}

// Subscribe registers fn and returns a function that removes it. Calling the
// returned function more than once is harmless, and it may be called from
// inside fn.
func (s *Subject[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.subMu.Lock()
	sub := &subscriber[T]{id: s.nextID, fn: fn}
	s.nextID++
	s.subs = append(s.subs, sub)
	s.subMu.Unlock()

	fn(s.Value())

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(sub) })
	}
}

func (s *Subject[T]) snapshot() []*subscriber[T] {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return slices.Clone(s.subs)
}

func (s *Subject[T]) remove(sub *subscriber[T]) {
	sub.closed.Store(true)

	s.subMu.Lock()
	defer s.subMu.Unlock()

	for i, x := range s.subs {
		if x.id == sub.id {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}

// Subscribers reports how many callbacks are registered.
func (s *Subject[T]) Subscribers() int {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return len(s.subs)
}
