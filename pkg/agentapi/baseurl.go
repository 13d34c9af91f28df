package agentapi

import (
	"net"
	"strings"
)

// LocalDevBaseURL is the backend address used when the client runs against a
// loopback origin and nothing else was configured.
const LocalDevBaseURL = "http://localhost:8080"

// ConfigProvider supplies the inputs for base URL resolution. Implementations
// read the environment, a config file, or fixed values in tests.
type ConfigProvider interface {
	// BaseURLOverride returns an explicitly configured base URL or "".
	BaseURLOverride() string
	// Hostname returns the host the client is being served from, if known.
	Hostname() (string, bool)
}

// StaticConfig is a ConfigProvider with fixed values. An empty Host means no
// host context.
type StaticConfig struct {
	Override string
	Host     string
}

func (s StaticConfig) BaseURLOverride() string { return s.Override }

func (s StaticConfig) Hostname() (string, bool) { return s.Host, s.Host != "" }

// ResolveBaseURL picks the backend base URL. It never fails: the override wins,
// then a loopback host maps to LocalDevBaseURL, otherwise "" selects
// same-origin relative paths. The result never ends in a slash.
func ResolveBaseURL(p ConfigProvider) string {
	if p == nil {
		return ""
	}
	if override := strings.TrimSpace(p.BaseURLOverride()); override != "" {
		return strings.TrimRight(override, "/")
	}
	if host, ok := p.Hostname(); ok && isLoopbackHost(host) {
		return LocalDevBaseURL
	}
	return ""
}

func isLoopbackHost(host string) bool {
	host = strings.ToLower(strings.Trim(strings.TrimSpace(host), "[]"))
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
