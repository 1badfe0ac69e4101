// Package repository keeps viewer sessions in memory.
package repository

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/okian/runboard/pkg/metrics"
)

// Store holds values keyed by session id.
type Store[T any] interface {
	// Put stores v under id. It returns the value evicted to make room, if
	// any.
	Put(ctx context.Context, id string, v T) (evicted T, ok bool, err error)

	// Get returns the value for id and marks it recently used.
	// Returns ErrNotFound if id is unknown.
	Get(ctx context.Context, id string) (T, error)

	// Delete removes id and returns its value.
	Delete(ctx context.Context, id string) (T, bool)

	// Count returns the number of stored sessions.
	Count(ctx context.Context) int
}

// SessionStore is a bounded LRU Store.
type SessionStore[T any] struct {
	// mu serializes writers so the eviction callback can tell a size
	// eviction from a Delete.
	mu       sync.Mutex
	cache    *lru.Cache[string, T]
	onEvict  func(id string, v T)
	removing bool

	lastValue T
	evicted   bool
}

// NewSessionStore creates an empty store.
func NewSessionStore[T any](opts ...Option[T]) *SessionStore[T] {
	o := options[T]{maxEntries: defaultMaxEntries}
	for _, opt := range opts {
		opt(&o)
	}
	s := &SessionStore[T]{onEvict: o.onEvict}
	cache, err := lru.NewWithEvict[string, T](o.maxEntries, s.evict)
	if err != nil {
		panic(fmt.Sprintf("repository: session cache: %v", err))
	}
	s.cache = cache
	return s
}

// evict runs inside Add and Remove while s.mu is held.
func (s *SessionStore[T]) evict(id string, v T) {
	if s.removing {
		return
	}
	s.lastValue, s.evicted = v, true
	metrics.RecordSessionEvicted()
	if s.onEvict != nil {
		s.onEvict(id, v)
	}
}

// Put stores v under id, replacing any previous value.
func (s *SessionStore[T]) Put(_ context.Context, id string, v T) (T, bool, error) {
	var zero T
	if id == "" {
		return zero, false, ErrEmptyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.evicted = false
	s.cache.Add(id, v)
	evicted, ok := s.lastValue, s.evicted
	s.lastValue, s.evicted = zero, false

	metrics.UpdateSessionCount(s.cache.Len())
	if !ok {
		return zero, false, nil
	}
	return evicted, true, nil
}

// Get returns the value for id.
func (s *SessionStore[T]) Get(_ context.Context, id string) (T, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return v, nil
}

// Delete removes id.
func (s *SessionStore[T]) Delete(_ context.Context, id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.cache.Peek(id)
	if !ok {
		var zero T
		return zero, false
	}
	s.removing = true
	s.cache.Remove(id)
	s.removing = false

	metrics.UpdateSessionCount(s.cache.Len())
	return v, true
}

// Count returns the number of stored sessions.
func (s *SessionStore[T]) Count(_ context.Context) int {
	return s.cache.Len()
}

// Range calls fn for every session from most to least recently used until
// fn returns false. Recency is not updated.
func (s *SessionStore[T]) Range(fn func(id string, v T) bool) {
	keys := s.cache.Keys()
	for i := len(keys) - 1; i >= 0; i-- {
		v, ok := s.cache.Peek(keys[i])
		if !ok {
			continue
		}
		if !fn(keys[i], v) {
			return
		}
	}
}
