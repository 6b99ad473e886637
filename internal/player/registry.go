// Package player tracks which players are connected right now.
package player

import (
	"sort"
	"sync"
)

// Registry maps player IDs to their live connection state. An ID can be
// held by one connection at a time.
type Registry[T any] struct {
	mu      sync.RWMutex
	players map[string]T
}

func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		players: make(map[string]T),
	}
}

// Claim registers v under id. It returns false if id is already held.
func (r *Registry[T]) Claim(id string, v T) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.players[id]; taken {
		return false
	}
	r.players[id] = v
	return true
}

func (r *Registry[T]) Release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.players, id)
}

func (r *Registry[T]) Get(id string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.players[id]
	return v, ok
}

func (r *Registry[T]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}

// Each calls fn for every connected player. fn runs on a snapshot and may
// call back into the registry.
func (r *Registry[T]) Each(fn func(id string, v T)) {
	r.mu.RLock()
	snapshot := make(map[string]T, len(r.players))
	for id, v := range r.players {
		snapshot[id] = v
	}
	r.mu.RUnlock()
	for id, v := range snapshot {
		fn(id, v)
	}
}

// IDs returns the connected player IDs in sorted order.
func (r *Registry[T]) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.players))
	for id := range r.players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
