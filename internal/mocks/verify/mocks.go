package verify

// Package verify contains simple hand-written test doubles for the
// verification ports. These are lightweight and suitable for unit tests
// without codegen.

import (
	"context"
	"fmt"

	"github.com/guildgate/guildgate/internal/ports"
)

// Compile-time conformance to ports.
var _ ports.AuthProvider = (*MockAuthProvider)(nil)

// MockAuthProvider simulates the identity provider with deterministic
// state/nonce handling. Override BeginFunc/ExchangeFunc for custom
// behavior.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context) (ports.AuthRequest, error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) error

	// AuthURL is returned from Begin when BeginFunc is unset.
	AuthURL string

	// Exchanges records every Exchange call when ExchangeFunc is unset.
	Exchanges []ports.ExchangeInput

	callCount int
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{AuthURL: "https://mock-idp/authorize"}
}

func (m *MockAuthProvider) Begin(ctx context.Context) (ports.AuthRequest, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}

	m.callCount++
	return ports.AuthRequest{
		URL:   m.AuthURL,
		State: fmt.Sprintf("state-%d", m.callCount),
		Nonce: fmt.Sprintf("nonce-%d", m.callCount),
	}, nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) error {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}
	m.Exchanges = append(m.Exchanges, in)
	return nil
}
