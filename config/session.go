package config

import (
	"fmt"
	"strings"
	"time"
)

// StoreMode represents the backing store for verification sessions.
type StoreMode string

const (
	// StoreModeMemory keeps sessions in process memory. Suitable for a
	// single-process deployment; sessions are lost on restart.
	StoreModeMemory StoreMode = "memory"
	// StoreModeRedis keeps sessions in Redis. Required when more than one
	// web process must share sessions.
	StoreModeRedis StoreMode = "redis"
)

// UnmarshalText implements encoding.TextUnmarshaler for StoreMode.
func (s *StoreMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "memory", "redis":
		*s = StoreMode(v)
		return nil
	default:
		return fmt.Errorf("invalid StoreMode: %q (valid options: memory, redis)", v)
	}
}

// RedisConfig contains Redis connection configuration for the session store.
type RedisConfig struct {
	Addr     string `env:"ADDR"     envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
}

// SessionConfig groups session-store configuration.
type SessionConfig struct {
	// Store selects the session backing store.
	Store StoreMode `env:"SESSION_STORE" envDefault:"memory"`

	// TTL is how long a web session stays valid. The verification token
	// carries its own, independent expiry.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"1h"`

	// Redis configuration (used when Store=redis).
	Redis RedisConfig `envPrefix:"REDIS_"`
}

// Sanitize applies guardrails to session configuration values.
func (s *SessionConfig) Sanitize() {
	if s.TTL <= 0 {
		s.TTL = time.Hour
	}
}
