package api

import (
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics use only bounded-cardinality labels: no per-character or
// per-script IDs, since those are attacker- or config-author-controlled
// and would let a malicious config blob explode the metric cardinality.
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "engine_tick_duration_seconds",
		Help:    "Time spent in one simulation tick",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
	})

	characterCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "engine_character_count",
		Help: "Current number of characters in the roster",
	})

	spawnCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "engine_spawn_count",
		Help: "Current number of live spawn instances",
	})

	eventJournalTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_event_journal_total",
		Help: "Total events recorded to the event journal",
	})

	eventJournalDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_event_journal_dropped_total",
		Help: "Events dropped by the journal's rate limiter or full buffer",
	})

	vmBudgetExhausted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_vm_budget_exhausted_total",
		Help: "Script runs terminated for exceeding the instruction budget",
	})

	resourceExhausted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_resource_exhausted_total",
		Help: "Resource requests dropped because a pool was at capacity",
	}, []string{"what"}) // bounded: "spawns", "status_effects"

	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_rejected_total",
		Help: "Connections rejected by rate limiter or origin check",
	}, []string{"reason"}) // bounded: "rate_limit", "origin", "ws_limit"

	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"}) // endpoint is the route pattern, not the full URL

	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections_active",
		Help: "Currently active WebSocket connections",
	})

	wsMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websocket_messages_total",
		Help: "Total WebSocket messages sent",
	})
)

// ObservabilityConfig configures the debug server.
type ObservabilityConfig struct {
	Enabled       bool
	ListenAddr    string // must be 127.0.0.1:6060 in production
	BasicAuthUser string
	BasicAuthPass string
}

// DefaultObservabilityConfig binds to localhost only.
func DefaultObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		Enabled:    true,
		ListenAddr: "127.0.0.1:6060",
	}
}

// StartDebugServer starts the pprof/metrics/health server. It must bind to
// localhost only: pprof's profile and trace endpoints let any caller who
// can reach them force expensive CPU work, so this is never safe to
// expose on a public interface.
func StartDebugServer(cfg ObservabilityConfig) error {
	if !cfg.Enabled {
		log.Println("debug server disabled")
		return nil
	}

	if cfg.ListenAddr != "127.0.0.1:6060" && cfg.ListenAddr != "localhost:6060" {
		if os.Getenv("ALLOW_DEBUG_EXTERNAL") != "true" {
			log.Println("debug server forced to localhost for security")
			cfg.ListenAddr = "127.0.0.1:6060"
		}
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	var handler http.Handler = mux
	if cfg.BasicAuthUser != "" {
		handler = basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass, mux)
	}

	go func() {
		log.Printf("debug server starting on %s", cfg.ListenAddr)
		if err := http.ListenAndServe(cfg.ListenAddr, handler); err != nil {
			log.Printf("debug server error: %v", err)
		}
	}()

	return nil
}

func basicAuthMiddleware(user, pass string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || u != user || p != pass {
			w.Header().Set("WWW-Authenticate", `Basic realm="debug"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RecordTick records one tick's wall-clock duration.
func RecordTick(duration time.Duration) {
	tickDuration.Observe(duration.Seconds())
}

// UpdateCharacterCount updates the character-roster gauge.
func UpdateCharacterCount(count int) {
	characterCount.Set(float64(count))
}

// UpdateSpawnCount updates the live-spawn gauge.
func UpdateSpawnCount(count int) {
	spawnCount.Set(float64(count))
}

// RecordJournalStats mirrors the event journal's running totals into the
// dropped/total counters. Since prometheus counters only increase, the
// caller must pass cumulative totals, not deltas; the helper does so by
// tracking the previous values it last saw.
var lastJournalTotal, lastJournalDropped uint64

func RecordJournalStats(total, dropped uint64) {
	if total > lastJournalTotal {
		eventJournalTotal.Add(float64(total - lastJournalTotal))
		lastJournalTotal = total
	}
	if dropped > lastJournalDropped {
		eventJournalDropped.Add(float64(dropped - lastJournalDropped))
		lastJournalDropped = dropped
	}
}

// RecordVMBudgetExhausted increments the instruction-budget-exhaustion
// counter.
func RecordVMBudgetExhausted() {
	vmBudgetExhausted.Inc()
}

// RecordResourceExhausted increments the resource-exhaustion counter for
// what, which must be one of "spawns" or "status_effects".
func RecordResourceExhausted(what string) {
	resourceExhausted.WithLabelValues(what).Inc()
}

// RecordConnectionRejected increments the connection-rejection counter.
// reason must be one of "rate_limit", "origin", "ws_limit".
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// RecordRequest records one HTTP request's latency and outcome.
func RecordRequest(method, endpoint string, status int, duration time.Duration) {
	requestLatency.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	requestTotal.WithLabelValues(method, endpoint, http.StatusText(status)).Inc()
}

// UpdateWSConnections updates the active-WebSocket-connection gauge.
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

// IncrementWSMessages increments the WebSocket message counter.
func IncrementWSMessages() {
	wsMessagesTotal.Inc()
}
