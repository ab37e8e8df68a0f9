package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 32
)

type subscriber struct {
	send   chan []byte
	admin  bool
	userID uint
}

// wants reports whether the subscriber should receive e
func (s *subscriber) wants(e Event) bool {
	return s.admin || (e.UserID != 0 && e.UserID == s.userID)
}

// Hub relays events from Redis to WebSocket subscribers.
// Admin sockets get every event; user sockets get only their own.
type Hub struct {
	rdb      *redis.Client
	upgrader websocket.Upgrader
	ready    chan struct{}
	once     sync.Once

	mu   sync.RWMutex
	subs map[*subscriber]struct{}
}

// NewHub returns a hub reading from rdb. With no allowedOrigins only same-origin
// browsers may connect; "*" admits any origin. Clients sending no Origin are always admitted.
func NewHub(rdb *redis.Client, allowedOrigins []string) *Hub {
	h := &Hub{
		rdb:   rdb,
		ready: make(chan struct{}),
		subs:  make(map[*subscriber]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	if len(allowedOrigins) > 0 {
		allowed := make(map[string]struct{}, len(allowedOrigins))
		for _, o := range allowedOrigins {
			allowed[strings.TrimRight(o, "/")] = struct{}{}
		}
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true // Not a browser
			}
			_, wildcard := allowed["*"]
			_, ok := allowed[origin]
			return wildcard || ok
		}
	}
	return h
}

// Ready is closed once the Redis subscription is confirmed
func (h *Hub) Ready() <-chan struct{} {
	return h.ready
}

// Count returns the number of connected sockets
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Run subscribes to Channel and dispatches until ctx is done
func (h *Hub) Run(ctx context.Context) error {
	pubsub := h.rdb.Subscribe(ctx, Channel)
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}
	h.once.Do(func() { close(h.ready) })
	logrus.WithField("channel", Channel).Info("Event hub subscribed")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return nil
		case msg, ok := <-ch:
			if !ok {
				h.closeAll()
				return nil
			}
			h.dispatch([]byte(msg.Payload))
		}
	}
}

func (h *Hub) dispatch(payload []byte) {
	var e Event
	if err := json.Unmarshal(payload, &e); err != nil {
		logrus.WithField("error", err.Error()).Warn("Dropping malformed event")
		return
	}
	var slow []*subscriber
	h.mu.RLock()
	for s := range h.subs {
		if !s.wants(e) {
			continue
		}
		select {
		case s.send <- payload:
		default:
			slow = append(slow, s)
		}
	}
	h.mu.RUnlock()
	for _, s := range slow {
		logrus.WithField("user_id", s.userID).Warn("Dropping slow websocket subscriber")
		h.remove(s)
	}
}

func (h *Hub) add(s *subscriber) {
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
}

// remove unregisters s and closes its send channel, which stops its writer
func (h *Hub) remove(s *subscriber) {
	h.mu.Lock()
	if _, ok := h.subs[s]; ok {
		delete(h.subs, s)
		close(s.send)
	}
	h.mu.Unlock()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	for s := range h.subs {
		delete(h.subs, s)
		close(s.send)
	}
	h.mu.Unlock()
}

// ServeWS upgrades the request and streams events to it
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, admin bool, userID uint) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	s := &subscriber{send: make(chan []byte, sendBuffer), admin: admin, userID: userID}
	h.add(s)
	go h.writeLoop(conn, s)
	go h.readLoop(conn, s)
	return nil
}

// readLoop only watches for close and pong frames
func (h *Hub) readLoop(conn *websocket.Conn, s *subscriber) {
	defer h.remove(s)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(conn *websocket.Conn, s *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()
	for {
		select {
		case msg, ok := <-s.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
