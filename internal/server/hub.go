package server

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// subscriberQueueSize bounds each client's pending-frame queue. leaflet
// only ever broadcasts one distinct message ("reload"), so a queue
// depth beyond a couple of frames buys nothing: if a client is behind
// by more than this, dropping its stale backlog and letting it catch up
// on the next tick is strictly better than growing the queue.
const subscriberQueueSize = 4

// subscriber is one connected WebSocket, with its own outbound queue and
// writer goroutine. This is the one-producer-many-consumers shape spec.md
// requires: the hub's broadcast loop is the single writer into each
// subscriber's queue, and a slow reader only ever drops its own stale
// frames — it can never stall delivery to any other subscriber.
type subscriber struct {
	conn  *websocket.Conn
	queue chan []byte
}

// Hub manages WebSocket connections and fans a broadcast out to every
// connected client's own queue. It is the central coordination point for
// live reload notifications.
type Hub struct {
	mu         sync.Mutex
	clients    map[*subscriber]bool
	broadcast  chan []byte
	register   chan *subscriber
	unregister chan *subscriber
	done       chan struct{}
}

// NewHub creates a new Hub ready to manage WebSocket connections.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*subscriber]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *subscriber),
		unregister: make(chan *subscriber),
		done:       make(chan struct{}),
	}
}

// Run starts the hub event loop. It processes register, unregister, and
// broadcast events until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case sub := <-h.register:
			h.mu.Lock()
			h.clients[sub] = true
			h.mu.Unlock()

		case sub := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[sub]; ok {
				delete(h.clients, sub)
				close(sub.queue)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			for sub := range h.clients {
				enqueue(sub.queue, msg)
			}
			h.mu.Unlock()

		case <-h.done:
			h.mu.Lock()
			for sub := range h.clients {
				if sub.conn != nil {
					sub.conn.Close()
				}
				close(sub.queue)
			}
			h.clients = nil
			h.mu.Unlock()
			return
		}
	}
}

// enqueue delivers msg to a subscriber's queue without blocking. When the
// queue is already full, the oldest pending frame is dropped to make room
// — the subscriber trades staleness for never stalling the broadcaster.
func enqueue(queue chan []byte, msg []byte) {
	for {
		select {
		case queue <- msg:
			return
		default:
			select {
			case <-queue:
			default:
			}
		}
	}
}

// Stop shuts down the hub event loop and closes all client connections.
func (h *Hub) Stop() {
	close(h.done)
}

// Broadcast sends a message to all connected WebSocket clients.
func (h *Hub) Broadcast(msg []byte) {
	select {
	case h.broadcast <- msg:
	default:
		// Drop message if the hub's own intake is backed up.
	}
}

// HandleWS upgrades an HTTP connection to a WebSocket, registers a
// subscriber with the hub, and starts that subscriber's dedicated writer
// goroutine. The connection is unregistered when the client disconnects.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	sub := &subscriber{conn: conn, queue: make(chan []byte, subscriberQueueSize)}
	h.register <- sub

	go h.writeLoop(sub)

	// Read loop: wait for the client to disconnect. leaflet's clients
	// never send messages, so any received frame or error just signals
	// the connection is going away.
	go func() {
		defer func() {
			h.unregister <- sub
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

// writeLoop drains one subscriber's queue and writes frames to its own
// connection, independent of every other subscriber's write speed.
func (h *Hub) writeLoop(sub *subscriber) {
	for msg := range sub.queue {
		if err := sub.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			// Close the connection so the read loop unblocks and drives
			// the one unregister call that removes this subscriber and
			// closes its queue.
			sub.conn.Close()
			return
		}
	}
}

// ClientCount returns the current number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// upgrader configures the WebSocket upgrade parameters.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development.
	},
}
