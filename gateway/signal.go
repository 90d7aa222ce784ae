package gateway

import "sync"

// Broadcaster fans a payload-less signal out to subscribers. Publish does not wait for them.
type Broadcaster struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[int]func()
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{listeners: make(map[int]func())}
}

// Subscribe registers fn and returns a function removing it again.
func (b *Broadcaster) Subscribe(fn func()) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

func (b *Broadcaster) Publish() {
	b.mu.RLock()
	listeners := make([]func(), 0, len(b.listeners))
	for _, fn := range b.listeners {
		listeners = append(listeners, fn)
	}
	b.mu.RUnlock()

	for _, fn := range listeners {
		go fn()
	}
}
