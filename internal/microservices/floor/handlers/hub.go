package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"restaurant-floor/internal/common/logger"
	"restaurant-floor/internal/domain"
)

const writeWait = 10 * time.Second

// frameWriter is the write half of a websocket connection.
type frameWriter interface {
	SetWriteDeadline(t time.Time) error
	WriteJSON(v any) error
	Close() error
}

// client is one connected device. Each client has its own writer goroutine
// and a one-slot buffer, so a slow device only ever delays itself.
type client struct {
	out  frameWriter
	user domain.User
	send chan domain.Document
	quit chan struct{}
	once sync.Once
}

func newClient(out frameWriter, u domain.User) *client {
	return &client{out: out, user: u, send: make(chan domain.Document, 1), quit: make(chan struct{})}
}

// push replaces any snapshot the client has not written yet with doc.
func (c *client) push(doc domain.Document) {
	for {
		select {
		case c.send <- doc:
			return
		default:
		}
		select {
		case <-c.send:
		default:
		}
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.quit)
		_ = c.out.Close()
	})
}

// Hub pushes every applied snapshot to connected staff devices.
type Hub struct {
	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
	done       chan struct{}
	mu         sync.Mutex
	log        *logger.Logger
	upgrader   websocket.Upgrader
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		log:        log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Run fans snapshots from docs out to clients until ctx ends.
func (h *Hub) Run(ctx context.Context, docs <-chan domain.Document) {
	var last *domain.Document
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for c := range h.clients {
				c.close()
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()
			if last != nil {
				c.push(*last)
			}

		case c := <-h.unregister:
			h.mu.Lock()
			delete(h.clients, c)
			h.mu.Unlock()
			c.close()

		case doc, ok := <-docs:
			if !ok {
				docs = nil
				continue
			}
			doc = redact(doc)
			last = &doc
			h.mu.Lock()
			for c := range h.clients {
				c.push(doc)
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("ws_upgrade_failed", map[string]any{"reason": err.Error()})
		return
	}
	c := newClient(conn, u)
	if !h.join(c) {
		_ = conn.Close()
		return
	}
	h.log.Debug("ws_connected", map[string]any{"user_id": u.ID})
	go h.write(c)
	go h.drain(c, conn)
}

// join registers c; it reports false once the hub has stopped.
func (h *Hub) join(c *client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// write delivers snapshots to one client until it fails or is closed.
func (h *Hub) write(c *client) {
	for {
		select {
		case <-c.quit:
			return
		case doc := <-c.send:
			_ = c.out.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.out.WriteJSON(doc); err != nil {
				h.log.Debug("ws_write_failed", map[string]any{"user_id": c.user.ID, "reason": err.Error()})
				h.leave(c)
				return
			}
		}
	}
}

// drain discards client frames and notices when the client goes away.
func (h *Hub) drain(c *client, conn *websocket.Conn) {
	defer h.leave(c)
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

func redact(doc domain.Document) domain.Document {
	doc.Users = append([]domain.User(nil), doc.Users...)
	for i := range doc.Users {
		doc.Users[i].PasswordHash = ""
	}
	return doc
}
