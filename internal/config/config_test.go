package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("VITE_API_BASE_URL", "")
	t.Setenv("ORIGIN", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AppName != "xolak-cli" {
		t.Fatalf("unexpected app name %q", cfg.AppName)
	}
	if cfg.RequestTimeout != 0 {
		t.Fatalf("expected no request timeout by default, got %v", cfg.RequestTimeout)
	}
	if cfg.HistoryTTL != 30*24*time.Hour {
		t.Fatalf("unexpected history ttl %v", cfg.HistoryTTL)
	}
	if _, ok := cfg.Hostname(); ok {
		t.Fatalf("expected no host context without origin")
	}
}

func TestLoadLegacyViteBaseURL(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("VITE_API_BASE_URL", "https://api.example.com/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.BaseURLOverride(); got != "https://api.example.com/" {
		t.Fatalf("unexpected override %q", got)
	}
}

func TestLoadOriginHostname(t *testing.T) {
	t.Setenv("ORIGIN", "http://127.0.0.1:5173/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	host, ok := cfg.Hostname()
	if !ok || host != "127.0.0.1" {
		t.Fatalf("expected hostname 127.0.0.1, got %q ok=%v", host, ok)
	}
	if cfg.Origin != "http://127.0.0.1:5173" {
		t.Fatalf("expected trailing slash trimmed from origin, got %q", cfg.Origin)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"bad origin":       {"ORIGIN", "not a url"},
		"negative ttl":     {"HISTORY_TTL_SECONDS", "-5"},
		"negative timeout": {"REQUEST_TIMEOUT_SECONDS", "-1"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", kv[0], kv[1])
			}
		})
	}
}
