package realtime

import (
	"sync"

	"github.com/joonwoo/stockfolio/backend/internal/stock"
	"github.com/joonwoo/stockfolio/backend/pkg/logger"
)

// Hub fans resolved quotes out to connected websocket clients, each
// filtered by its own subscription set.
// ⭐ SSOT: 웹소켓 클라이언트 관리는 이 허브에서만
type Hub struct {
	logger *logger.Logger

	mu      sync.RWMutex
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *stock.Quote

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHub creates a hub. Run must be started before clients attach.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		logger:     log,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *stock.Quote, 64),
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Run processes client lifecycle and broadcast events until Stop.
func (h *Hub) Run() {
	defer close(h.doneCh)

	for {
		select {
		case <-h.stopCh:
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.WithField("clients", h.ClientCount()).Debug("Websocket client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.WithField("clients", h.ClientCount()).Debug("Websocket client disconnected")

		case quote := <-h.broadcast:
			h.dispatch(quote)
		}
	}
}

// Stop shuts the hub down and disconnects every client.
func (h *Hub) Stop() {
	close(h.stopCh)
	<-h.doneCh
}

// Broadcast queues a quote for delivery to subscribed clients. Drops
// the update when the hub is saturated rather than blocking the
// poller.
func (h *Hub) Broadcast(quote *stock.Quote) {
	select {
	case h.broadcast <- quote:
	default:
		h.logger.WithField("symbol", quote.Symbol).Warn("Broadcast queue full, dropping quote update")
	}
}

// ClientCount returns the number of attached clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) dispatch(quote *stock.Quote) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if !client.subscribedTo(quote.Symbol) {
			continue
		}
		select {
		case client.send <- quote:
		default:
			// 느린 클라이언트는 이번 업데이트를 건너뛴다
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}
