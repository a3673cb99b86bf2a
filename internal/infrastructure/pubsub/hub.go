package pubsub

import (
	"context"
	"sync"

	"github.com/harbinger-games/harbinger/internal/domain/matchmaking"
	"github.com/harbinger-games/harbinger/internal/shared/logger"
)

const subscriberBuffer = 8

// Hub fans match events out to the players connected to this instance.
type Hub struct {
	mu     sync.RWMutex
	nextID uint64
	closed bool
	subs   map[string]map[uint64]chan matchmaking.MatchFormedEvent
	logger logger.Interface
}

func NewHub(logger logger.Interface) *Hub {
	return &Hub{
		subs:   make(map[string]map[uint64]chan matchmaking.MatchFormedEvent),
		logger: logger,
	}
}

// Subscribe registers a listener for events that include playerID. The returned
// function removes it and closes the channel. After Close the channel comes back closed.
func (h *Hub) Subscribe(playerID string) (<-chan matchmaking.MatchFormedEvent, func()) {
	ch := make(chan matchmaking.MatchFormedEvent, subscriberBuffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	h.nextID++
	id := h.nextID
	if h.subs[playerID] == nil {
		h.subs[playerID] = make(map[uint64]chan matchmaking.MatchFormedEvent)
	}
	h.subs[playerID][id] = ch
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[playerID][id]; !ok {
			return
		}
		delete(h.subs[playerID], id)
		if len(h.subs[playerID]) == 0 {
			delete(h.subs, playerID)
		}
		close(ch)
	}
}

// Close ends every open stream. Later subscriptions receive an already closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for playerID, m := range h.subs {
		for _, ch := range m {
			close(ch)
		}
		delete(h.subs, playerID)
	}
	h.logger.Infow("match event hub closed")
}

// Deliver hands the event to every listener of its players. Slow listeners lose the event.
func (h *Hub) Deliver(event matchmaking.MatchFormedEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, playerID := range event.Players {
		for _, ch := range h.subs[playerID] {
			select {
			case ch <- event:
			default:
				h.logger.Warnw("dropping match event for slow listener",
					"player_id", playerID,
					"match_id", event.MatchID,
				)
			}
		}
	}
}

// PublishMatchFormed delivers locally. Used as the publisher when Redis is disabled.
func (h *Hub) PublishMatchFormed(_ context.Context, event matchmaking.MatchFormedEvent) error {
	h.Deliver(event)
	return nil
}

func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, m := range h.subs {
		n += len(m)
	}
	return n
}
