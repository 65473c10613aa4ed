package verify

// Package verify contains domain-level types for the verification-token
// protocol. It is pure and free of framework/adapter concerns.

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrMalformed is returned when decrypted JSON does not have the shape of
// a verification message.
var ErrMalformed = errors.New("malformed verification message")

// Discord identifies the requesting user within a guild.
type Discord struct {
	UserID  string `json:"userId"`
	GuildID string `json:"guildId"`
}

// Message is the plaintext payload of a verification token. It binds a
// Discord (user, guild) pair to an absolute deadline. Messages are built at
// command-issue time, serialized into a token, and deserialized exactly
// once at redemption; they are never persisted or mutated.
type Message struct {
	// ExpiryTs is the deadline as a Unix timestamp in seconds.
	ExpiryTs int64   `json:"expiryTs"`
	Discord  Discord `json:"discord"`
}

// NewMessage builds a message for the given user and guild that expires
// after window.
func NewMessage(userID, guildID string, window time.Duration) Message {
	return Message{
		ExpiryTs: time.Now().Add(window).Unix(),
		Discord: Discord{
			UserID:  userID,
			GuildID: guildID,
		},
	}
}

// wireMessage mirrors Message with pointer fields so that absent or
// wrongly-typed JSON values are detectable instead of defaulting.
type wireMessage struct {
	ExpiryTs *json.Number `json:"expiryTs"`
	Discord  *struct {
		UserID  *string `json:"userId"`
		GuildID *string `json:"guildId"`
	} `json:"discord"`
}

// ParseMessage validates that raw JSON has the exact shape of a
// verification message and returns the typed value. Any other JSON value,
// including an empty object or one with wrongly-typed fields, yields
// ErrMalformed. Successful decryption alone never qualifies a payload;
// it must also pass this parse.
func ParseMessage(raw []byte) (Message, error) {
	var wire wireMessage
	if err := json.Unmarshal(raw, &wire); err != nil {
		return Message{}, ErrMalformed
	}
	if wire.ExpiryTs == nil || wire.Discord == nil {
		return Message{}, ErrMalformed
	}
	if wire.Discord.UserID == nil || wire.Discord.GuildID == nil {
		return Message{}, ErrMalformed
	}

	expiry, err := wire.ExpiryTs.Float64()
	if err != nil {
		return Message{}, ErrMalformed
	}

	return Message{
		ExpiryTs: int64(expiry),
		Discord: Discord{
			UserID:  *wire.Discord.UserID,
			GuildID: *wire.Discord.GuildID,
		},
	}, nil
}

// Expired reports whether the message deadline has passed at the given
// instant. The deadline is inclusive: a message expiring exactly now is
// already expired.
func (m Message) Expired(now time.Time) bool {
	return now.Unix() >= m.ExpiryTs
}
