// Command enginehost is the reference host for the simulation engine: a
// thin, swappable shell containing no simulation logic, only wiring. It
// loads its own settings, optionally loads a starting configuration blob,
// serves the HTTP/WebSocket API, and drives the tick loop on a wall-clock
// ticker — the only place in this module permitted to depend on real
// time, since the simulation core itself is fully deterministic.
package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"forgeengine/internal/api"
	"forgeengine/internal/hostconfig"
	"forgeengine/internal/sim"
	"forgeengine/internal/simconfig"
)

func main() {
	log.Println("================================")
	log.Println(" FORGEENGINE HOST")
	log.Println("================================")

	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded (%v); reading configuration from the environment directly", err)
	}

	cfg := hostconfig.Load()
	log.Printf("config: port=%d tick_rate=%d config_path=%s", cfg.Server.Port, cfg.Sim.TickRate, cfg.Sim.ConfigPath)

	var engine api.EngineInterface
	if blob, err := simconfig.Load(cfg.Sim.ConfigPath); err != nil {
		log.Printf("no starting config loaded (%v); waiting for POST /config", err)
	} else if game, err := sim.NewGame(blob); err != nil {
		log.Printf("starting config at %s was rejected (%v); waiting for POST /config", cfg.Sim.ConfigPath, err)
	} else {
		engine = game
		log.Printf("loaded starting config from %s", cfg.Sim.ConfigPath)
	}

	debugCfg := api.DefaultObservabilityConfig()
	if os.Getenv("DISABLE_DEBUG_SERVER") != "true" {
		if err := api.StartDebugServer(debugCfg); err != nil {
			log.Printf("debug server disabled: %v", err)
		}
	}

	tickInterval := time.Second / time.Duration(cfg.Sim.TickRate)
	rateLimit := api.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
		CleanupInterval:   5 * time.Minute,
	}
	server := api.NewServerWithOptions(engine, tickInterval, rateLimit, cfg.Server.AllowedOrigins)

	addr := ":" + strconv.Itoa(cfg.Server.Port)
	go func() {
		log.Printf("engine host listening on http://localhost%s", addr)
		if err := server.Start(addr); err != nil {
			log.Fatalf("server failed: %v", err)
		}
	}()

	stop := make(chan struct{})
	go driveTickLoop(server, tickInterval, stop)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	log.Println("ready; press Ctrl+C to stop")
	<-quit

	log.Println("shutting down...")
	close(stop)
	server.Stop()
	log.Println("goodbye")
}

// driveTickLoop advances whatever game is currently loaded once per
// tickInterval and publishes a snapshot for the API and WebSocket hub to
// read. It does nothing while no game is loaded, so a host can start up
// before its first POST /config arrives.
func driveTickLoop(server *api.Server, tickInterval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			engine := server.Engine().Get()
			if engine == nil {
				continue
			}
			start := time.Now()
			engine.Step()
			engine.PublishSnapshot()
			api.RecordTick(time.Since(start))
		}
	}
}
