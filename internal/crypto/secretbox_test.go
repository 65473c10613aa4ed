package crypto

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	payload := map[string]any{
		"expiryTs": float64(123),
		"discord":  map[string]any{"userId": "1", "guildId": "2"},
	}

	token, err := Encrypt(payload, key)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, Decrypt(token, key, &got))
	assert.Equal(t, payload, got)
}

func TestEncrypt_URLSafe(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	// Enough iterations that a padding or non-URL-safe character would show up.
	for range 50 {
		token, err := Encrypt("plaintext message", key)
		require.NoError(t, err)
		assert.Equal(t, token, url.QueryEscape(token), "token must need no percent-encoding")
	}
}

func TestEncrypt_NonceFreshness(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	a, err := Encrypt("same payload", key)
	require.NoError(t, err)
	b, err := Encrypt("same payload", key)
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "tokens must not be deterministic")
}

func TestDecrypt_WrongKey(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	wrongKey := *key
	wrongKey[0]++

	token, err := Encrypt("plaintext", key)
	require.NoError(t, err)

	var out string
	err = Decrypt(token, &wrongKey, &out)
	require.ErrorIs(t, err, ErrDecrypt)
	assert.Empty(t, out, "no partial output on failure")
}

func TestDecrypt_Tampered(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	token, err := Encrypt("plaintext", key)
	require.NoError(t, err)

	// Flip the last character of the encoded token.
	last := token[len(token)-1]
	altered := byte('A')
	if last == altered {
		altered = 'B'
	}
	tampered := token[:len(token)-1] + string(altered)

	var out string
	err = Decrypt(tampered, key, &out)
	require.ErrorIs(t, err, ErrDecrypt)
}

func TestDecrypt_Garbage(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	var out any
	for _, token := range []string{
		"",
		"x",
		"not base64!!",
		"c2hvcnQ", // valid base64, shorter than a nonce
		"AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	} {
		err := Decrypt(token, key, &out)
		assert.ErrorIs(t, err, ErrDecrypt, "token %q", token)
	}
}

func TestDecrypt_TruncatedAndExtended(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	token, err := Encrypt("plaintext", key)
	require.NoError(t, err)

	var out string
	require.ErrorIs(t, Decrypt(token[:len(token)-4], key, &out), ErrDecrypt)
	require.ErrorIs(t, Decrypt(token+"AAAA", key, &out), ErrDecrypt)
}

func TestKeyFromPassphrase_Deterministic(t *testing.T) {
	key1, err := KeyFromPassphrase("foobar")
	require.NoError(t, err)
	key2, err := KeyFromPassphrase("foobar")
	require.NoError(t, err)
	assert.Equal(t, key1, key2)

	other, err := KeyFromPassphrase("foobaz")
	require.NoError(t, err)
	assert.NotEqual(t, key1, other)
}

func TestKeyFromPassphrase_CrossProcessRoundTrip(t *testing.T) {
	// Two keys derived independently from the same passphrase must be able
	// to validate each other's tokens.
	issuerKey, err := KeyFromPassphrase("shared secret")
	require.NoError(t, err)
	validatorKey, err := KeyFromPassphrase("shared secret")
	require.NoError(t, err)

	token, err := Encrypt("hello world", issuerKey)
	require.NoError(t, err)

	var out string
	require.NoError(t, Decrypt(token, validatorKey, &out))
	assert.Equal(t, "hello world", out)
}

func TestGenerateKey_Unique(t *testing.T) {
	a, err := GenerateKey()
	require.NoError(t, err)
	b, err := GenerateKey()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecrypt_RawJSONTarget(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	token, err := Encrypt(map[string]string{"k": "v"}, key)
	require.NoError(t, err)

	var raw json.RawMessage
	require.NoError(t, Decrypt(token, key, &raw))
	assert.JSONEq(t, `{"k":"v"}`, string(raw))
}
