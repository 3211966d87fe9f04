package web

import (
	"sync"

	"github.com/ellavondegurechaff/gogift/gifthouse/database/models"
)

const subscriberBuffer = 16

// Event is what the SSE stream carries to auction watchers.
type Event struct {
	Type      string          `json:"type"`
	AuctionID string          `json:"auctionId"`
	Round     int             `json:"round,omitempty"`
	Winners   []models.Winner `json:"winners,omitempty"`
}

// Hub fans engine events out to SSE subscribers. It implements
// engine.Sink; publishing never blocks, a subscriber that cannot keep up
// loses events rather than stalling the engine.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan Event]struct{})}
}

// Subscribe registers a watcher for one auction. The returned cancel
// func must be called when the client disconnects.
func (h *Hub) Subscribe(auctionID string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	if h.subs[auctionID] == nil {
		h.subs[auctionID] = make(map[chan Event]struct{})
	}
	h.subs[auctionID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[auctionID]; ok {
			if _, live := set[ch]; live {
				delete(set, ch)
				close(ch)
				if len(set) == 0 {
					delete(h.subs, auctionID)
				}
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

func (h *Hub) publish(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs[e.AuctionID] {
		select {
		case ch <- e:
		default:
		}
	}
}

func (h *Hub) RoundEnd(auctionID string, round int, winners []models.Winner) {
	h.publish(Event{Type: "roundEnd", AuctionID: auctionID, Round: round, Winners: winners})
}

func (h *Hub) AuctionEnd(auctionID string) {
	h.publish(Event{Type: "auctionEnd", AuctionID: auctionID})
}
