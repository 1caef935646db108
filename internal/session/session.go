// Package session provides an injectable broadcaster for session-lifecycle
// transitions (login, logout, user switch). Components that cache per-user
// data subscribe to a Bus passed in at construction, so a session change can
// be simulated deterministically in tests instead of flowing through a
// process-global event.
package session

import "sync"

// Bus fans a session-change signal out to registered listeners.
// The zero value is not usable; call NewBus.
type Bus struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]func()
}

// NewBus creates an empty broadcaster.
func NewBus() *Bus {
	return &Bus{listeners: make(map[int]func())}
}

// Subscribe registers fn to run on every announcement and returns a function
// that removes the registration.
func (b *Bus) Subscribe(fn func()) (cancel func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
}

// Announce synchronously invokes every registered listener. Listeners run
// outside the bus lock, so they may subscribe or unsubscribe freely.
func (b *Bus) Announce() {
	b.mu.Lock()
	fns := make([]func(), 0, len(b.listeners))
	for _, fn := range b.listeners {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
