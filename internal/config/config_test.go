package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with defaults: %v", err)
	}

	if cfg.BackendHost != "localhost" {
		t.Errorf("Expected default host localhost, got %q", cfg.BackendHost)
	}
	if cfg.APITimeout != 30*time.Second {
		t.Errorf("Expected default timeout 30s, got %v", cfg.APITimeout)
	}
	if cfg.SessionScope != SessionScopeMemory {
		t.Errorf("Expected default session scope memory, got %q", cfg.SessionScope)
	}
	if cfg.SecurityHeaders {
		t.Error("Expected security headers disabled by default")
	}
}

func TestLoadHostOnAllowList(t *testing.T) {
	t.Setenv("BACKEND_HOST", "chat.example.com")
	t.Setenv("ALLOWED_HOSTS", "localhost, chat.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BackendHost != "chat.example.com" {
		t.Errorf("Expected allow-listed host to pass through, got %q", cfg.BackendHost)
	}
}

func TestLoadHostNotOnAllowListFallsBack(t *testing.T) {
	t.Setenv("BACKEND_HOST", "evil.example.com")
	t.Setenv("ALLOWED_HOSTS", "localhost,chat.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BackendHost != DefaultHost {
		t.Errorf("Expected fallback to %q, got %q", DefaultHost, cfg.BackendHost)
	}
}

func TestLoadRejectsUnknownSessionScope(t *testing.T) {
	t.Setenv("SESSION_SCOPE", "cloud")

	if _, err := Load(); err == nil {
		t.Fatal("Expected error for unknown SESSION_SCOPE")
	}
}

func TestURLBuilders(t *testing.T) {
	cfg := &Config{
		APIProtocol: "https",
		WSProtocol:  "wss",
		BackendHost: "chat.example.com",
		BackendPort: "5001",
	}

	if got := cfg.APIBase(); got != "https://chat.example.com:5001" {
		t.Errorf("APIBase = %q", got)
	}
	if got := cfg.WSURL(); got != "wss://chat.example.com:5001/ws/chat" {
		t.Errorf("WSURL = %q", got)
	}
}

func TestGetEnvIntBadValueFallsBack(t *testing.T) {
	t.Setenv("API_TIMEOUT_MS", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APITimeout != 30*time.Second {
		t.Errorf("Expected fallback timeout 30s, got %v", cfg.APITimeout)
	}
}
