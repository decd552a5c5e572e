package api

import (
	"net/http"
	"sync"

	"forgeengine/internal/sim"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// EngineInterface defines the subset of *sim.GameState the API layer
// depends on, so tests can substitute a fake without a real running
// game. Keep this minimal: only what handlers and the broadcast loop
// actually call.
type EngineInterface interface {
	Step()
	PublishSnapshot()
	LatestSnapshot() *sim.GameSnapshot
	Frame() uint32
}

var _ EngineInterface = (*sim.GameState)(nil)

// EngineHolder lets /config atomically replace the running game without
// restarting the host process or its router. A nil held engine means no
// game has been loaded yet.
type EngineHolder struct {
	mu     sync.RWMutex
	engine EngineInterface
}

// NewEngineHolder wraps an already-built engine, or none (pass nil) if
// the host expects its first game to arrive over /config.
func NewEngineHolder(engine EngineInterface) *EngineHolder {
	return &EngineHolder{engine: engine}
}

func (h *EngineHolder) Get() EngineInterface {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.engine
}

func (h *EngineHolder) Set(engine EngineInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.engine = engine
}

// routerHandlers holds the dependencies route handlers close over.
type routerHandlers struct {
	engine *EngineHolder
}

// RouterConfig carries everything NewRouter needs to build the host's
// HTTP surface.
type RouterConfig struct {
	// Engine holds the running game; required.
	Engine *EngineHolder

	// RateLimiter is an optional pre-configured rate limiter. If nil, one
	// is built from RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is only used when RateLimiter is nil.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins overrides the default CORS allowlist.
	CORSOrigins []string

	// DisableLogging turns off the request logger middleware, useful for
	// benchmarks.
	DisableLogging bool
}

// NewRouter builds the host's HTTP router. It is PURE: it starts no
// goroutines and opens no listeners, so it is safe to use directly with
// httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	h := &routerHandlers{engine: cfg.Engine}

	r.Post("/config", h.handleLoadConfig)
	r.Post("/tick", h.handleTick)
	r.Get("/state", h.handleGetState)
	r.Get("/healthz", h.handleHealthz)

	return r
}
