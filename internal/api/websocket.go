package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// MaxWSConnectionsTotal bounds the hub's total connection count.
	MaxWSConnectionsTotal = 500

	// MaxWSConnectionsPerIP bounds connections from a single source IP.
	MaxWSConnectionsPerIP = 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		if IsAllowedOrigin(origin, allowedOriginsOverride) {
			return true
		}

		log.Printf("WebSocket connection rejected from origin: %s", origin)
		RecordConnectionRejected("origin")
		return false
	},
}

// allowedOriginsOverride lets SetAllowedOrigins extend the fixed
// IsAllowedOrigin allowlist with deployment-specific origins (e.g. from
// hostconfig.ServerConfig.AllowedOrigins) without this package importing
// the host's configuration package.
var allowedOriginsOverride []string

// SetAllowedOrigins records extra origins the WebSocket upgrader accepts,
// on top of the built-in localhost allowlist. The CORS middleware takes
// its own list from RouterConfig.CORSOrigins.
func SetAllowedOrigins(origins []string) {
	allowedOriginsOverride = origins
}

type wsClient struct {
	conn *websocket.Conn
	ip   string
}

// WebSocketHub fans a stream of snapshot broadcasts out to every
// connected client, enforcing total and per-IP connection limits.
type WebSocketHub struct {
	clients    map[*websocket.Conn]*wsClient
	broadcast  chan []byte
	register   chan *wsClient
	unregister chan *websocket.Conn
	mu         sync.RWMutex

	wsLimiter *WebSocketRateLimiter
}

func NewWebSocketHub() *WebSocketHub {
	return &WebSocketHub{
		clients:    make(map[*websocket.Conn]*wsClient),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *wsClient),
		unregister: make(chan *websocket.Conn),
		wsLimiter:  NewWebSocketRateLimiter(MaxWSConnectionsPerIP),
	}
}

// Run drives the hub's single event loop. Must be started from exactly
// one goroutine, never from a constructor, so tests can build a hub
// without it starting background work.
func (h *WebSocketHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.conn] = client
			h.mu.Unlock()

			count := len(h.clients)
			log.Printf("client connected from %s (%d total)", client.ip, count)
			UpdateWSConnections(count)

		case conn := <-h.unregister:
			h.mu.Lock()
			if client, ok := h.clients[conn]; ok {
				h.wsLimiter.Release(client.ip)
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()

			count := len(h.clients)
			log.Printf("client disconnected (%d remaining)", count)
			UpdateWSConnections(count)

		case message := <-h.broadcast:
			h.mu.RLock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					h.mu.RUnlock()
					h.mu.Lock()
					if client, ok := h.clients[conn]; ok {
						h.wsLimiter.Release(client.ip)
						delete(h.clients, conn)
					}
					h.mu.Unlock()
					h.mu.RLock()
				}
			}
			h.mu.RUnlock()
			IncrementWSMessages()
		}
	}
}

// Broadcast marshals data under event and queues it for every connected
// client. A full broadcast channel drops the message rather than
// blocking the caller.
func (h *WebSocketHub) Broadcast(event string, data interface{}) {
	msg := map[string]interface{}{
		"event": event,
		"data":  data,
	}

	jsonBytes, err := json.Marshal(msg)
	if err != nil {
		return
	}

	select {
	case h.broadcast <- jsonBytes:
	default:
	}
}

func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// StartBroadcastLoop broadcasts one "engine:snapshot" event per tick
// interval for whatever engine is currently held, skipping entirely
// while no client is connected or no game has been loaded. Reading
// through the holder rather than a fixed engine means a /config swap
// takes effect on the broadcast loop without restarting it.
func (h *WebSocketHub) StartBroadcastLoop(engine *EngineHolder, tickInterval time.Duration) {
	ticker := time.NewTicker(tickInterval)

	go func() {
		for range ticker.C {
			if h.ClientCount() == 0 {
				continue
			}
			current := engine.Get()
			if current == nil {
				continue
			}
			h.Broadcast("engine:snapshot", current.LatestSnapshot())
		}
	}()
}

// HandleWebSocket upgrades the request and registers the connection,
// enforcing the total and per-IP connection limits first.
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	h.mu.RLock()
	totalConnections := len(h.clients)
	h.mu.RUnlock()

	if totalConnections >= MaxWSConnectionsTotal {
		log.Printf("WebSocket connection rejected: total limit reached (%d)", totalConnections)
		RecordConnectionRejected("ws_limit")
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}

	if !h.wsLimiter.Allow(ip) {
		log.Printf("WebSocket connection rejected from %s: per-IP limit reached", ip)
		RecordConnectionRejected("ws_limit")
		http.Error(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		h.wsLimiter.Release(ip)
		return
	}

	client := &wsClient{conn: conn, ip: ip}
	h.register <- client

	go func() {
		defer func() {
			h.unregister <- conn
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
			// The engine's state is read-only over this protocol; incoming
			// messages are drained but otherwise ignored.
		}
	}()
}
