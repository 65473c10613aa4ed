package crypto

// Package crypto implements the verification-token cipher: NaCl secretbox
// authenticated encryption of small JSON payloads, transported as URL-safe
// base64 strings of the form nonce||ciphertext.

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	// KeySize is the secretbox key length in bytes.
	KeySize = 32
	// nonceSize is the secretbox nonce length in bytes.
	nonceSize = 24
)

// kdfInfo domain-separates keys derived for verification tokens from any
// other key derived from the same passphrase.
const kdfInfo = "guildgate verification token key"

// ErrDecrypt is returned for any failure while decrypting a token: bad
// encoding, truncated input, authentication failure, or invalid payload.
// Callers must not expose which of these occurred.
var ErrDecrypt = errors.New("could not decrypt message")

// Key is a fixed-length symmetric key for the token cipher.
type Key [KeySize]byte

// GenerateKey produces a uniformly random key from a cryptographically
// secure source. Tokens encrypted under a generated key cannot be decrypted
// by other processes or after a restart.
func GenerateKey() (*Key, error) {
	var key Key
	if _, err := io.ReadFull(rand.Reader, key[:]); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return &key, nil
}

// KeyFromPassphrase deterministically derives a key from a passphrase using
// HKDF-SHA256. The same passphrase always yields the same key, so separate
// processes sharing a passphrase can validate each other's tokens.
func KeyFromPassphrase(passphrase string) (*Key, error) {
	var key Key
	r := hkdf.New(sha256.New, []byte(passphrase), nil, []byte(kdfInfo))
	if _, err := io.ReadFull(r, key[:]); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return &key, nil
}

// Encrypt serializes payload to JSON and encrypts it under key with a fresh
// random nonce. The result is base64 (URL-safe, unpadded) over
// nonce||ciphertext, so two encryptions of the same payload never produce
// the same token.
func Encrypt(payload any, key *Key) (string, error) {
	plaintext, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	// Seal appends the ciphertext to the nonce, yielding nonce||ciphertext.
	sealed := secretbox.Seal(nonce[:], plaintext, &nonce, (*[KeySize]byte)(key))
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt decodes token, splits off the leading nonce, authenticates and
// decrypts the remainder under key, and unmarshals the plaintext JSON into
// out. Every failure mode returns an error wrapping ErrDecrypt and leaves
// out untouched; no partial plaintext is ever produced.
func Decrypt(token string, key *Key, out any) error {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return fmt.Errorf("%w: invalid encoding", ErrDecrypt)
	}
	if len(raw) < nonceSize {
		return fmt.Errorf("%w: input too short", ErrDecrypt)
	}

	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])

	plaintext, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, (*[KeySize]byte)(key))
	if !ok {
		return fmt.Errorf("%w: authentication failed", ErrDecrypt)
	}

	if err := json.Unmarshal(plaintext, out); err != nil {
		return fmt.Errorf("%w: invalid payload", ErrDecrypt)
	}
	return nil
}
