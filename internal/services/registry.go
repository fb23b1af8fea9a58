package services

import (
	"sync"
	"time"
)

// Registry is an in-memory map of short-lived per-profile state. Entries idle
// for longer than ttl are dropped on the next write.
type Registry[T any] struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	items map[string]*regEntry[T]
}

type regEntry[T any] struct {
	val  T
	seen time.Time
}

func NewRegistry[T any](ttl time.Duration) *Registry[T] {
	return &Registry[T]{ttl: ttl, now: time.Now, items: map[string]*regEntry[T]{}}
}

func (r *Registry[T]) Get(key string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[key]
	if !ok || r.expired(e) {
		var zero T
		if ok {
			delete(r.items, key)
		}
		return zero, false
	}
	e.seen = r.now()
	return e.val, true
}

func (r *Registry[T]) Put(key string, v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweep()
	r.items[key] = &regEntry[T]{val: v, seen: r.now()}
}

// GetOrCreate returns the live entry for key, building one with mk if needed.
func (r *Registry[T]) GetOrCreate(key string, mk func() T) T {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.items[key]; ok && !r.expired(e) {
		e.seen = r.now()
		return e.val
	}
	r.sweep()
	v := mk()
	r.items[key] = &regEntry[T]{val: v, seen: r.now()}
	return v
}

func (r *Registry[T]) Delete(key string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[key]
	if !ok {
		var zero T
		return zero, false
	}
	delete(r.items, key)
	return e.val, true
}

func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

func (r *Registry[T]) expired(e *regEntry[T]) bool {
	return r.ttl > 0 && r.now().Sub(e.seen) > r.ttl
}

func (r *Registry[T]) sweep() {
	for k, e := range r.items {
		if r.expired(e) {
			delete(r.items, k)
		}
	}
}
