// Package live fans the current registry snapshot out to subscribers so
// read-only views mirror the dataset without polling. The admission
// pipeline only publishes here; it never depends on the push transport.
package live

import (
	"sync"

	"rutregistro/internal/model"
)

// Hub broadcasts registry snapshots to registered subscribers.
// The zero value is not usable; construct with NewHub.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan []model.Record
	last   []model.Record
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan []model.Record)}
}

// Subscribe registers an observer and returns its channel plus a
// cancellation handle. The last published snapshot, if any, is delivered
// immediately so new subscribers do not start from an empty view.
func (h *Hub) Subscribe() (<-chan []model.Record, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++

	// Buffer of one: a slow subscriber holds at most the latest snapshot.
	ch := make(chan []model.Record, 1)
	h.subs[id] = ch
	if h.last != nil {
		ch <- h.last
	}

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if c, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// Publish replaces the current snapshot and delivers it to every
// subscriber. A subscriber that has not drained its previous snapshot is
// skipped after the stale one is dropped; only the latest view matters.
func (h *Hub) Publish(snapshot []model.Record) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = snapshot
	for _, ch := range h.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snapshot:
		default:
		}
	}
}
