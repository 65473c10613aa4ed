package ports

// Package ports defines interfaces (hexagonal ports) for the verification
// flow. Implementations live in internal/adapters; orchestration in
// internal/service.

import (
	"context"
	"errors"

	"github.com/guildgate/guildgate/internal/domain/verify"
)

// ErrSessionNotFound is returned by session stores when no record exists
// for an ID (or the record has expired).
var ErrSessionNotFound = errors.New("session not found")

// AuthRequest carries everything needed to send a user to the identity
// provider: the authorization URL plus the state and nonce to bind to the
// user's session for verification on return.
type AuthRequest struct {
	URL   string
	State string
	Nonce string
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// AuthProvider initiates and completes an OAuth2 authorization-code flow
// against the identity provider. The rest of the system treats the
// exchange as an opaque succeeded/failed boundary.
type AuthProvider interface {
	// Begin produces the provider authorization URL with fresh state and nonce.
	Begin(ctx context.Context) (AuthRequest, error)

	// Exchange redeems the authorization code. A nil error means the user
	// holds a valid account in the allowed tenant.
	Exchange(ctx context.Context, in ExchangeInput) error
}

// SessionStore persists and retrieves verification sessions.
type SessionStore interface {
	Save(ctx context.Context, sess verify.Session) error
	Get(ctx context.Context, id string) (verify.Session, error)
	Delete(ctx context.Context, id string) error
}
