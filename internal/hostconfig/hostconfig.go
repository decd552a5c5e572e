// Package hostconfig holds the reference host binary's own settings:
// listen port, tick rate, and the path to the simulation configuration
// blob. This is distinct from internal/simconfig, which parses and
// validates the blob describing the game itself — hostconfig's values
// are defaulted, never validated against game semantics.
package hostconfig

import (
	"os"
	"strconv"
	"strings"
)

// ServerConfig holds cmd/enginehost's HTTP/WebSocket listener settings.
type ServerConfig struct {
	Port           int
	AllowedOrigins []string
}

// DefaultServer returns the host's default listener configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:           8080,
		AllowedOrigins: []string{"*"},
	}
}

// ServerFromEnv layers environment variable overrides onto DefaultServer.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("ENGINEHOST_PORT", 0); p > 0 {
		cfg.Port = p
	}
	if origins := os.Getenv("ENGINEHOST_ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = strings.Split(origins, ",")
	}

	return cfg
}

// SimConfig holds the reference host's driving-loop settings: how fast
// it steps the simulation and where it loads the game's own
// configuration blob from.
type SimConfig struct {
	TickRate   int
	ConfigPath string
}

// DefaultSim returns the host's default simulation-driving configuration.
func DefaultSim() SimConfig {
	return SimConfig{
		TickRate:   60,
		ConfigPath: "config.yaml",
	}
}

// SimFromEnv layers environment variable overrides onto DefaultSim.
func SimFromEnv() SimConfig {
	cfg := DefaultSim()

	if tr := getEnvInt("ENGINEHOST_TICK_RATE", 0); tr > 0 {
		cfg.TickRate = tr
	}
	if path := os.Getenv("ENGINEHOST_CONFIG_PATH"); path != "" {
		cfg.ConfigPath = path
	}

	return cfg
}

// RateLimitConfig holds the host's own request rate limiting, distinct
// from internal/sim.EventJournal's script-failure rate limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// DefaultRateLimit returns the host's default request rate limit.
func DefaultRateLimit() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 50,
		Burst:             20,
	}
}

// RateLimitFromEnv layers environment variable overrides onto
// DefaultRateLimit.
func RateLimitFromEnv() RateLimitConfig {
	cfg := DefaultRateLimit()

	if rps := getEnvFloat("ENGINEHOST_RATE_LIMIT_RPS", -1); rps >= 0 {
		cfg.RequestsPerSecond = rps
	}
	if b := getEnvInt("ENGINEHOST_RATE_LIMIT_BURST", 0); b > 0 {
		cfg.Burst = b
	}

	return cfg
}

// Config is the complete host configuration.
type Config struct {
	Server    ServerConfig
	Sim       SimConfig
	RateLimit RateLimitConfig
}

// Load returns the complete host configuration with environment
// overrides applied.
func Load() Config {
	return Config{
		Server:    ServerFromEnv(),
		Sim:       SimFromEnv(),
		RateLimit: RateLimitFromEnv(),
	}
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
