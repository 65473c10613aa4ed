package config

import "time"

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: Azure AD / identity provider configuration
//   - bot.go: Discord bot configuration
//   - http.go: HTTP server configuration
//   - session.go: Session store configuration
type AppConfig struct {
	// TokenPassphrase is the passphrase the verification-token key is
	// derived from. When empty a random key is generated at startup,
	// which means tokens do not survive restarts and cannot be shared
	// between processes.
	TokenPassphrase string `env:"TOKEN_PASSPHRASE"`

	// TokenWindow is how long an issued verification token stays valid.
	TokenWindow time.Duration `env:"TOKEN_WINDOW" envDefault:"15m"`

	// Azure AD configuration
	Azure AzureConfig `envPrefix:"AAD_"`

	// Discord bot configuration
	Bot BotConfig

	// HTTP server configuration
	HTTP HTTPConfig

	// Session store configuration
	Session SessionConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Session.Sanitize()

	if c.TokenWindow <= 0 {
		c.TokenWindow = 15 * time.Minute
	}
}
