package httpx

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"

	"github.com/guildgate/guildgate/internal/domain/verify"
	"github.com/guildgate/guildgate/internal/service"
)

const sessionCookieName = "session_id"

// VerifierService defines the interface for verification flow operations.
type VerifierService interface {
	Redeem(token string) (verify.Message, error)
	StartSession(ctx context.Context, msg verify.Message) (verify.Session, error)
	BeginExchange(ctx context.Context, sessionID string) (string, error)
	CompleteExchange(ctx context.Context, sessionID, code, state string) (verify.Message, error)
	DestroySession(ctx context.Context, sessionID string) error
}

// VerifyHandlers provides HTTP handlers for the token redemption flow.
type VerifyHandlers struct {
	Svc          VerifierService
	OrgName      string
	CookieDomain string
	Logger       *slog.Logger
}

func (h *VerifyHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Start handles the redemption link from the bot's /verify reply.
// GET /start?m=<token>.
//
// The token is validated strictly in order (authenticity, shape, expiry);
// cipher failures and malformed input collapse into generic responses so
// the endpoint cannot be used as a decryption oracle. Expiry gets its own
// message because it is expected, not adversarial.
func (h *VerifyHandlers) Start(w http.ResponseWriter, r *http.Request) {
	msg, err := h.Svc.Redeem(r.URL.Query().Get("m"))
	if err != nil {
		h.logger().WarnContext(r.Context(), "token redemption rejected", "error", err)
		switch {
		case errors.Is(err, service.ErrExpiredToken):
			writePlainError(w, http.StatusBadRequest, "expired message")
		case errors.Is(err, service.ErrMalformedMessage):
			writePlainError(w, http.StatusBadRequest, "invalid decrypted message")
		default:
			writePlainError(w, http.StatusBadRequest, "invalid message")
		}
		return
	}

	sess, err := h.Svc.StartSession(r.Context(), msg)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "start verification session failed", "error", err)
		writePlainError(w, http.StatusInternalServerError, "could not start verification")
		return
	}

	h.setSessionCookie(w, r, sess)
	http.Redirect(w, r, "/verify", http.StatusFound)
}

// Verify sends a session-bound user to the identity provider.
// GET /verify.
func (h *VerifyHandlers) Verify(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(r)
	if sessionID == "" {
		writePlainError(w, http.StatusBadRequest, "invalid session")
		return
	}

	authURL, err := h.Svc.BeginExchange(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, service.ErrNoSession) {
			h.dropSession(w, r, sessionID)
			writePlainError(w, http.StatusBadRequest, "invalid session")
			return
		}
		h.logger().ErrorContext(r.Context(), "begin exchange failed", "error", err)
		writePlainError(w, http.StatusInternalServerError, "could not start login")
		return
	}

	http.Redirect(w, r, authURL, http.StatusFound)
}

// Redirect handles the identity provider's callback.
// GET /redirect?code=...&state=... or ?error=...&error_description=...
func (h *VerifyHandlers) Redirect(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	code := query.Get("code")
	if code == "" {
		desc := query.Get("error_description")
		if desc == "" {
			desc = "Unknown error"
		}
		errCode := query.Get("error")
		if errCode == "" {
			errCode = "?"
		}
		writePlainError(w, http.StatusBadRequest,
			fmt.Sprintf("No authorization code returned. Error: %s (%s)", desc, errCode))
		return
	}

	sessionID := h.sessionID(r)
	msg, err := h.Svc.CompleteExchange(r.Context(), sessionID, code, query.Get("state"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoSession):
			// Callback with nothing bound to the session: destroy it.
			h.dropSession(w, r, sessionID)
			writePlainError(w, http.StatusBadRequest, "invalid session")
		case errors.Is(err, service.ErrStateMismatch):
			h.logger().WarnContext(r.Context(), "callback state mismatch")
			writePlainError(w, http.StatusBadRequest, "invalid state")
		default:
			h.logger().ErrorContext(r.Context(), "identity provider exchange failed", "error", err)
			writePlainError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	h.logger().InfoContext(r.Context(), "verification completed",
		"user_id", msg.Discord.UserID, "guild_id", msg.Discord.GuildID)
	http.Redirect(w, r, "/success", http.StatusFound)
}

var successTemplate = template.Must(template.New("success").Parse(`<!DOCTYPE html>
<html>
<head><title>Verified</title></head>
<body>
<h1>Verification complete</h1>
<p>Your {{.OrgName}} account is verified. You can close this tab and return to Discord.</p>
</body>
</html>
`))

// Success renders the post-verification view.
// GET /success.
func (h *VerifyHandlers) Success(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct{ OrgName string }{OrgName: h.OrgName}
	if err := successTemplate.Execute(w, data); err != nil {
		h.logger().ErrorContext(r.Context(), "render success view failed", "error", err)
	}
}

func (h *VerifyHandlers) sessionID(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (h *VerifyHandlers) setSessionCookie(w http.ResponseWriter, r *http.Request, sess verify.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.ID,
		Path:     "/",
		Domain:   h.CookieDomain,
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// dropSession removes any server-side record for an invalid session and
// expires the browser cookie.
func (h *VerifyHandlers) dropSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	if err := h.Svc.DestroySession(r.Context(), sessionID); err != nil {
		h.logger().WarnContext(r.Context(), "destroy session failed",
			"session_id", sessionID, "error", err)
	}
	h.clearSessionCookie(w, r)
}

func (h *VerifyHandlers) clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func writePlainError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, msg)
}
