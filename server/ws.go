package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/theoremus-urban-solutions/trains-in-motion/tracker"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// writeWait bounds every client write. A client that cannot drain its
// socket within it is evicted; the broadcast must never block the
// aggregation cycle indefinitely.
const writeWait = 5 * time.Second

// hub tracks connected map clients and fans published snapshots out to them.
type hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func newHub() *hub {
	return &hub{clients: make(map[*websocket.Conn]struct{})}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}

	// Seed the new client with the latest snapshot so the map fills
	// immediately instead of waiting for the next cycle.
	var seed []byte
	if snap, ok := s.store.Current(); ok {
		if seed, err = json.Marshal(snapshotPayload(snap)); err != nil {
			log.Printf("ws marshal error: %v", err)
			seed = nil
		}
	}
	s.hub.add(conn, seed)
	go s.hub.readPump(conn)
}

// add registers a client and writes its seed message. The seed goes out
// under the same lock that serializes broadcast writes: gorilla conns
// allow only one writer at a time.
func (h *hub) add(c *websocket.Conn, seed []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	if seed == nil {
		return
	}
	_ = c.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.WriteMessage(websocket.TextMessage, seed); err != nil {
		_ = c.Close()
		delete(h.clients, c)
	}
}

func (h *hub) remove(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

func (h *hub) broadcast(snap *tracker.Snapshot) {
	data, err := json.Marshal(snapshotPayload(snap))
	if err != nil {
		log.Printf("ws marshal error: %v", err)
		return
	}
	h.mu.Lock()
	for c := range h.clients {
		_ = c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
			_ = c.Close()
			delete(h.clients, c)
		}
	}
	h.mu.Unlock()
}

func (h *hub) close() {
	h.mu.Lock()
	for c := range h.clients {
		_ = c.Close()
	}
	h.clients = make(map[*websocket.Conn]struct{})
	h.mu.Unlock()
}

// readPump drains client messages so pings are answered; clients only
// listen, they never send anything we act on.
func (h *hub) readPump(c *websocket.Conn) {
	defer func() {
		h.remove(c)
		_ = c.Close()
	}()
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}

func snapshotPayload(snap *tracker.Snapshot) trainsResponse {
	return trainsResponse{
		Trains:      snap.Trains,
		LastUpdated: snap.GeneratedAt.UTC().Format(time.RFC3339),
		Feeds:       snap.Feeds,
	}
}
