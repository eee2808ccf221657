// Package hub implements a key based multicast callback registry.
// Callbacks registered under the same key are invoked synchronously,
// in registration order, every time the key is published.
package hub

import "sync"

// Hub maps a closed set of keys to ordered lists of callbacks.
// The zero value is ready to use.
type Hub[K comparable] struct {
	mu   sync.RWMutex
	subs map[K][]func()
}

// New returns an empty Hub.
func New[K comparable]() *Hub[K] {
	return &Hub[K]{}
}

// Subscribe appends fn to the callback list of key. The same callback
// may be registered more than once, in which case it fires once per
// registration. Subscribe returns the hub so calls can be chained.
func (h *Hub[K]) Subscribe(key K, fn func()) *Hub[K] {
	if fn == nil {
		return h
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs == nil {
		h.subs = make(map[K][]func())
	}
	h.subs[key] = append(h.subs[key], fn)

	return h
}

// Unsubscribe discards every callback registered under key.
func (h *Hub[K]) Unsubscribe(key K) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.subs, key)
}

// Publish invokes the callbacks registered under key. Publishing a key
// without subscribers is a no-op. The callback list is captured before
// the first callback runs, so callbacks may safely (un)subscribe; those
// changes apply from the next Publish.
func (h *Hub[K]) Publish(key K) *Hub[K] {
	h.mu.RLock()
	fns := h.subs[key]
	h.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
	return h
}

// Len returns the number of callbacks registered under key.
func (h *Hub[K]) Len(key K) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subs[key])
}
