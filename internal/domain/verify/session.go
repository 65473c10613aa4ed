package verify

import "time"

// Session is the short-lived server-side record that binds a redeemed
// verification message to a browser for the duration of the identity
// provider exchange. It is read once at callback time and then destroyed
// (or left to expire with its TTL).
type Session struct {
	// ID is an opaque session identifier carried in a cookie.
	ID string `json:"id"`

	// Message is the redeemed verification message bound to this session.
	Message Message `json:"message"`

	// State and Nonce protect the OAuth2 authorization-code flow; both are
	// generated when the user is sent to the identity provider and checked
	// on return.
	State string `json:"state"`
	Nonce string `json:"nonce"`

	ExpiresAt time.Time `json:"expires_at"`
}
