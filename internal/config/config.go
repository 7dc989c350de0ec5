// Package config provides client configuration for the chat widget.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Session id scopes. Memory mirrors browser sessionStorage (a fresh id per
// run); persistent keeps the session id next to the user id.
const (
	SessionScopeMemory     = "memory"
	SessionScopePersistent = "persistent"
)

// DefaultHost is the safe fallback when the configured backend host is not on
// the allow-list.
const DefaultHost = "localhost"

// Config holds all client configuration.
type Config struct {
	APIProtocol     string
	WSProtocol      string
	BackendHost     string
	BackendPort     string
	APITimeout      time.Duration
	TypingDebounce  time.Duration
	SecurityHeaders bool
	StateDBPath     string
	SessionScope    string
}

// Load reads configuration from environment variables. The backend host is
// validated against ALLOWED_HOSTS; a host outside the allow-list is replaced
// with the safe default rather than rejected.
func Load() (*Config, error) {
	allowed := splitHosts(getEnv("ALLOWED_HOSTS", DefaultHost))

	cfg := &Config{
		APIProtocol:     getEnv("API_PROTOCOL", "http"),
		WSProtocol:      getEnv("WS_PROTOCOL", "ws"),
		BackendHost:     validateHost(getEnv("BACKEND_HOST", DefaultHost), allowed),
		BackendPort:     getEnv("BACKEND_PORT", "5001"),
		APITimeout:      time.Duration(getEnvInt("API_TIMEOUT_MS", 30000)) * time.Millisecond,
		TypingDebounce:  time.Duration(getEnvInt("TYPING_DEBOUNCE_MS", 1000)) * time.Millisecond,
		SecurityHeaders: getEnvBool("SECURITY_HEADERS_ENABLED", false),
		StateDBPath:     getEnv("STATE_DB_PATH", "./data/floatchat.db"),
		SessionScope:    getEnv("SESSION_SCOPE", SessionScopeMemory),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.BackendHost == "" {
		return fmt.Errorf("BACKEND_HOST cannot be empty")
	}
	if c.BackendPort == "" {
		return fmt.Errorf("BACKEND_PORT cannot be empty")
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("API_TIMEOUT_MS must be > 0")
	}
	if c.TypingDebounce <= 0 {
		return fmt.Errorf("TYPING_DEBOUNCE_MS must be > 0")
	}
	if c.StateDBPath == "" {
		return fmt.Errorf("STATE_DB_PATH cannot be empty")
	}
	switch c.SessionScope {
	case SessionScopeMemory, SessionScopePersistent:
	default:
		return fmt.Errorf("SESSION_SCOPE must be %q or %q", SessionScopeMemory, SessionScopePersistent)
	}
	return nil
}

// APIBase returns the base URL for REST calls.
func (c *Config) APIBase() string {
	return c.APIProtocol + "://" + c.BackendHost + ":" + c.BackendPort
}

// WSURL returns the websocket endpoint URL.
func (c *Config) WSURL() string {
	return c.WSProtocol + "://" + c.BackendHost + ":" + c.BackendPort + "/ws/chat"
}

// IsDevelopment returns true if the client points at a local backend.
func (c *Config) IsDevelopment() bool {
	return c.BackendHost == "localhost" || c.BackendHost == "127.0.0.1"
}

// validateHost checks the configured host against the allow-list and falls
// back to the safe default on mismatch. Connecting to an arbitrary backend is
// never an option, so this degrades instead of failing.
func validateHost(host string, allowed []string) string {
	if host == "" {
		return DefaultHost
	}
	for _, a := range allowed {
		if a == host {
			return host
		}
	}
	slog.Warn("Configured backend host not in allow-list, using default",
		"host", host, "default", DefaultHost)
	return DefaultHost
}

func splitHosts(raw string) []string {
	parts := strings.Split(raw, ",")
	hosts := make([]string, 0, len(parts))
	for _, p := range parts {
		if h := strings.TrimSpace(p); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}
