package api

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// Server combines the HTTP router with the WebSocket hub for real-time
// snapshot streaming.
type Server struct {
	engine       *EngineHolder
	router       *chi.Mux
	wsHub        *WebSocketHub
	rateLimiter  *IPRateLimiter
	tickInterval time.Duration
}

// NewServer builds a server around engine (nil is allowed; the first
// game can then arrive over POST /config) with default production
// configuration.
//
// Background workers do NOT start until Start() is called, so a test can
// construct a Server and use Router() directly without goroutines or
// network listeners running.
func NewServer(engine EngineInterface, tickInterval time.Duration) *Server {
	return NewServerWithOptions(engine, tickInterval, DefaultRateLimitConfig, nil)
}

// NewServerWithOptions is NewServer with an explicit rate limit policy and
// CORS/WebSocket origin allowlist, for a host that loads these from its own
// configuration (e.g. hostconfig.Config) instead of accepting the package
// defaults.
func NewServerWithOptions(engine EngineInterface, tickInterval time.Duration, rateLimit RateLimitConfig, allowedOrigins []string) *Server {
	holder := NewEngineHolder(engine)

	s := &Server{
		engine:       holder,
		wsHub:        NewWebSocketHub(),
		tickInterval: tickInterval,
	}

	s.rateLimiter = NewIPRateLimiter(rateLimit)
	if allowedOrigins != nil {
		SetAllowedOrigins(allowedOrigins)
	}

	s.router = NewRouter(RouterConfig{
		Engine:      holder,
		RateLimiter: s.rateLimiter,
		CORSOrigins: allowedOrigins,
	})

	s.setupWebSocketRoutes()

	return s
}

// setupWebSocketRoutes adds routes needing the wsHub instance, which
// can't be part of the generic NewRouter factory.
func (s *Server) setupWebSocketRoutes() {
	s.router.Get("/ws", s.handleWS)
}

// Start begins serving HTTP and starts the WebSocket hub's goroutines.
// This is the only method that starts background work or opens a
// listener; call it exactly once.
func (s *Server) Start(addr string) error {
	go s.wsHub.Run()
	s.wsHub.StartBroadcastLoop(s.engine, s.tickInterval)

	log.Printf("engine host starting on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

// Router returns the HTTP handler, for use with httptest.NewServer
// instead of Start().
func (s *Server) Router() http.Handler {
	return s.router
}

// Engine returns the server's engine holder, so a driving loop outside
// this package can call Step/PublishSnapshot on whatever game is
// currently loaded.
func (s *Server) Engine() *EngineHolder {
	return s.engine
}

// Stop ends the rate limiter's cleanup goroutine. The WebSocket hub has
// no stop method yet; its connections close when the process exits.
func (s *Server) Stop() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	s.wsHub.HandleWebSocket(w, r)
}
