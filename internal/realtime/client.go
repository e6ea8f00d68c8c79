package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/joonwoo/stockfolio/backend/internal/stock"
	"github.com/joonwoo/stockfolio/backend/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second

	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 별도 오리진 정책 없음: 리버스 프록시 뒤에서 동작한다
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one websocket connection with its subscription set.
type Client struct {
	hub    *Hub
	poller *Poller
	conn   *websocket.Conn
	logger *logger.Logger

	send chan *stock.Quote

	mu      sync.RWMutex
	symbols map[string]bool
}

// clientMessage is the inbound control frame: subscribe or
// unsubscribe for a list of symbols.
type clientMessage struct {
	Action  string   `json:"action"` // "subscribe" | "unsubscribe"
	Symbols []string `json:"symbols"`
}

// ServeWS upgrades an HTTP request to a websocket session. Initial
// subscriptions may be passed as ?symbols=AAPL,005930.
func ServeWS(hub *Hub, poller *Poller, log *logger.Logger, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	client := &Client{
		hub:     hub,
		poller:  poller,
		conn:    conn,
		logger:  log,
		send:    make(chan *stock.Quote, 32),
		symbols: make(map[string]bool),
	}

	// 요청 컨텍스트는 핸들러 복귀와 함께 취소되므로 사용하지 않는다
	if raw := r.URL.Query().Get("symbols"); raw != "" {
		client.subscribe(context.Background(), strings.Split(raw, ","))
	}

	hub.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) subscribedTo(symbol string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.symbols[symbol]
}

func (c *Client) subscribe(ctx context.Context, symbols []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || c.symbols[s] {
			continue
		}
		c.symbols[s] = true
		c.poller.Subscribe(ctx, s)
	}
}

func (c *Client) unsubscribe(symbols []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if !c.symbols[s] {
			continue
		}
		delete(c.symbols, s)
		c.poller.Unsubscribe(s)
	}
}

// readPump consumes control frames until the connection drops.
func (c *Client) readPump() {
	defer func() {
		c.releaseAll()
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.WithError(err).Debug("Websocket read failed")
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.WithError(err).Debug("Ignoring malformed websocket message")
			continue
		}

		switch msg.Action {
		case "subscribe":
			c.subscribe(context.Background(), msg.Symbols)
		case "unsubscribe":
			c.unsubscribe(msg.Symbols)
		}
	}
}

// writePump pushes quote updates and keepalive pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case quote, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(quote); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) releaseAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for s := range c.symbols {
		c.poller.Unsubscribe(s)
		delete(c.symbols, s)
	}
}
