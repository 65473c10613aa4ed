package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/guildgate/guildgate/internal/crypto"
	"github.com/guildgate/guildgate/internal/domain/verify"
	"github.com/guildgate/guildgate/internal/events"
	"github.com/guildgate/guildgate/internal/ports"
)

// Redemption failure modes, in the order they are checked. Cipher failures
// are deliberately collapsed into ErrInvalidToken so callers cannot tell
// tampering from a wrong key from garbage (no decryption oracle).
var (
	ErrMissingToken     = errors.New("missing token")
	ErrInvalidToken     = errors.New("invalid token")
	ErrMalformedMessage = errors.New("invalid decrypted message")
	ErrExpiredToken     = errors.New("expired token")
)

// Exchange-phase failure modes.
var (
	ErrNoSession     = errors.New("no verification session")
	ErrStateMismatch = errors.New("state mismatch")
)

// VerificationServiceOptions groups dependencies for VerificationService.
type VerificationServiceOptions struct {
	// Key is the shared symmetric key tokens are encrypted under. The
	// issuing and validating sides must hold the same key value.
	Key *crypto.Key

	// Window is how long an issued token stays valid.
	Window time.Duration

	// BaseURL is the externally reachable base URL of the web service.
	BaseURL string

	// SessionTTL bounds how long a redeemed message stays bound to a
	// browser session awaiting the identity-provider exchange.
	SessionTTL time.Duration

	Sessions ports.SessionStore
	Provider ports.AuthProvider
	Events   *events.Channel
	Logger   *slog.Logger
}

// VerificationService implements the verification-token protocol: issuing
// tokens on the bot side and driving redemption through the identity
// provider exchange on the web side.
type VerificationService struct {
	key        *crypto.Key
	window     time.Duration
	baseURL    string
	sessionTTL time.Duration
	sessions   ports.SessionStore
	provider   ports.AuthProvider
	events     *events.Channel
	logger     *slog.Logger

	now func() time.Time
}

// NewVerificationService constructs a new VerificationService.
func NewVerificationService(opts VerificationServiceOptions) *VerificationService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &VerificationService{
		key:        opts.Key,
		window:     opts.Window,
		baseURL:    opts.BaseURL,
		sessionTTL: opts.SessionTTL,
		sessions:   opts.Sessions,
		provider:   opts.Provider,
		events:     opts.Events,
		logger:     logger,
		now:        time.Now,
	}
}

// IssueToken builds a verification message for the given user and guild
// with the configured validity window and encrypts it into an opaque,
// URL-safe token string.
func (s *VerificationService) IssueToken(userID, guildID string) (string, error) {
	if userID == "" || guildID == "" {
		return "", errors.New("user ID and guild ID are required")
	}

	msg := verify.NewMessage(userID, guildID, s.window)
	token, err := crypto.Encrypt(msg, s.key)
	if err != nil {
		return "", fmt.Errorf("encrypt message: %w", err)
	}
	return token, nil
}

// VerifyURL returns the redemption link for a token.
func (s *VerificationService) VerifyURL(token string) string {
	return s.baseURL + "/start?m=" + url.QueryEscape(token)
}

// Redeem validates a presented token, strictly in order: presence,
// authenticity (decryption), shape, expiry. It fails closed at the first
// failure; cryptographic validation always precedes structural and
// semantic validation so no attacker-chosen plaintext is trusted before
// authentication succeeds.
func (s *VerificationService) Redeem(token string) (verify.Message, error) {
	if token == "" {
		return verify.Message{}, ErrMissingToken
	}

	var raw json.RawMessage
	if err := crypto.Decrypt(token, s.key, &raw); err != nil {
		return verify.Message{}, ErrInvalidToken
	}

	msg, err := verify.ParseMessage(raw)
	if err != nil {
		return verify.Message{}, ErrMalformedMessage
	}

	if msg.Expired(s.now()) {
		return verify.Message{}, ErrExpiredToken
	}

	return msg, nil
}

// StartSession binds an accepted message to a fresh server-side session for
// the duration of the identity-provider exchange. The same token cannot be
// re-derived into a second session: each call issues an independent session
// and the message travels only inside it from here on.
func (s *VerificationService) StartSession(ctx context.Context, msg verify.Message) (verify.Session, error) {
	sess := verify.Session{
		ID:        uuid.NewString(),
		Message:   msg,
		ExpiresAt: s.now().Add(s.sessionTTL),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return verify.Session{}, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}

// BeginExchange produces the identity-provider authorization URL for a
// session-bound message, recording the state and nonce on the session for
// verification when the provider redirects back.
func (s *VerificationService) BeginExchange(ctx context.Context, sessionID string) (string, error) {
	sess, err := s.getSession(ctx, sessionID)
	if err != nil {
		return "", err
	}

	req, err := s.provider.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin auth flow: %w", err)
	}

	sess.State = req.State
	sess.Nonce = req.Nonce
	if err := s.sessions.Save(ctx, sess); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}

	return req.URL, nil
}

// CompleteExchange drives the code-for-token exchange for the message bound
// to sessionID. On success the session is destroyed (the message is read
// once), the verification event is emitted exactly once, and the completed
// message is returned. A missing or expired session yields ErrNoSession; a
// state parameter that does not match the one recorded at BeginExchange
// yields ErrStateMismatch.
func (s *VerificationService) CompleteExchange(ctx context.Context, sessionID, code, state string) (verify.Message, error) {
	sess, err := s.getSession(ctx, sessionID)
	if err != nil {
		return verify.Message{}, err
	}

	if sess.State == "" || sess.State != state {
		return verify.Message{}, ErrStateMismatch
	}

	in := ports.ExchangeInput{Code: code, State: sess.State, Nonce: sess.Nonce}
	if err := s.provider.Exchange(ctx, in); err != nil {
		return verify.Message{}, fmt.Errorf("exchange authorization code: %w", err)
	}

	// Read-once: the bound message must not be redeemable a second time.
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		s.logger.WarnContext(ctx, "delete session after exchange failed",
			"session_id", sessionID, "error", err)
	}

	msg := sess.Message
	s.events.Emit(ctx, msg.Discord.UserID, msg.Discord.GuildID)
	return msg, nil
}

// DestroySession removes a session, ignoring absent records.
func (s *VerificationService) DestroySession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *VerificationService) getSession(ctx context.Context, sessionID string) (verify.Session, error) {
	if sessionID == "" {
		return verify.Session{}, ErrNoSession
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ports.ErrSessionNotFound) {
			return verify.Session{}, ErrNoSession
		}
		return verify.Session{}, fmt.Errorf("get session: %w", err)
	}

	if s.now().After(sess.ExpiresAt) {
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			s.logger.WarnContext(ctx, "delete expired session failed",
				"session_id", sessionID, "error", deleteErr)
		}
		return verify.Session{}, ErrNoSession
	}

	return sess, nil
}
