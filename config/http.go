package config

import (
	"fmt"
	"strings"
)

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Port is the port the HTTP server listens on.
	Port int `env:"PORT" envDefault:"3000"`

	// BaseURL is the externally reachable base URL of the web service.
	// Used to build verification links and the OAuth redirect URL.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:3000"`

	// CookieDomain is the domain for session cookies.
	// Leave empty to use the request domain.
	CookieDomain string `env:"COOKIE_DOMAIN" envDefault:""`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	if h.Port <= 0 || h.Port > 65535 {
		h.Port = 3000
	}
	h.BaseURL = strings.TrimSuffix(h.BaseURL, "/")
}

// Addr returns the listen address for the HTTP server.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf(":%d", h.Port)
}

// RedirectURL returns the absolute OAuth redirect endpoint. It must match
// a redirect URI registered with the identity provider.
func (h HTTPConfig) RedirectURL() string {
	return h.BaseURL + "/redirect"
}
