// Package gateway is a Go client for the LinkShort gateway: the HTTP entry
// point that fronts authentication and URL shortening.
package gateway

import (
	"strings"
	"time"
)

// DefaultBaseURL is the gateway origin plus its /gateway prefix.
const DefaultBaseURL = "https://localhost:8888/gateway"

// Config holds all configuration for the gateway client.
type Config struct {
	// BaseURL is prepended to every request path.
	BaseURL string

	// Timeout is an optional per-request deadline. Zero leaves requests
	// bounded only by the caller's context.
	Timeout time.Duration

	// InsecureSkipTLS disables certificate verification, for gateways
	// running on a self-signed localhost certificate.
	InsecureSkipTLS bool

	// UserAgent is sent on every request when set.
	UserAgent string
}

// DefaultConfig returns a Config pointing at the local development gateway.
func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: "linkshort",
	}
}

// WithBaseURL returns a copy of the config with the specified base URL.
func (c Config) WithBaseURL(baseURL string) Config {
	c.BaseURL = strings.TrimRight(baseURL, "/")
	return c
}

// WithTimeout returns a copy of the config with the specified timeout.
func (c Config) WithTimeout(timeout time.Duration) Config {
	c.Timeout = timeout
	return c
}
