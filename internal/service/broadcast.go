package service

import (
	"sync"

	"github.com/google/uuid"
)

// Broadcaster fans out a no-payload "data changed" signal to subscribers.
// Each subscriber gets a buffered channel; an undrained subscriber coalesces
// signals instead of blocking the publisher.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[string]chan struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[string]chan struct{})}
}

// Subscribe registers a listener and returns its id and signal channel.
func (b *Broadcaster) Subscribe() (string, <-chan struct{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := uuid.NewString()
	ch := make(chan struct{}, 1)
	b.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a listener. Safe to call with an unknown id.
func (b *Broadcaster) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, id)
}

// Publish signals every subscriber without blocking.
func (b *Broadcaster) Publish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
