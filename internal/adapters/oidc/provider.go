package oidc

// Package oidc implements the identity-provider boundary against Azure AD
// using the OAuth2 authorization-code flow.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/guildgate/guildgate/internal/ports"
)

// Provider implements ports.AuthProvider against an Azure AD tenant.
type Provider struct {
	config     *oauth2.Config
	httpClient *http.Client

	oidcProvider *gooidc.Provider
	verifier     *gooidc.IDTokenVerifier
}

var _ ports.AuthProvider = (*Provider)(nil)

// ProviderConfig holds configuration for the Azure AD provider.
type ProviderConfig struct {
	// ClientID and ClientSecret identify the registered Azure AD application.
	ClientID     string
	ClientSecret string

	// Authority is the tenant-scoped issuer URL, e.g.
	// https://login.microsoftonline.com/{tenant-id}/v2.0. Discovery runs
	// against it, which pins verification to the allowed tenant.
	Authority string

	// RedirectURL must match a redirect URI registered with the application.
	RedirectURL string

	// Scope is the space-separated scope string.
	Scope string

	HTTPClient *http.Client // Optional, defaults to a 30s-timeout client
}

// NewProvider creates a new Azure AD provider. It performs a single OIDC
// discovery fetch against the tenant authority.
func NewProvider(ctx context.Context, config ProviderConfig) (*Provider, error) {
	if config.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if config.ClientSecret == "" {
		return nil, errors.New("client secret is required")
	}
	if config.Authority == "" {
		return nil, errors.New("authority is required")
	}
	if config.RedirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	op, err := gooidc.NewProvider(ctx, strings.TrimSuffix(config.Authority, "/"))
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}

	scopes := strings.Fields(config.Scope)
	if len(scopes) == 0 {
		scopes = []string{gooidc.ScopeOpenID}
	}

	return &Provider{
		httpClient:   httpClient,
		oidcProvider: op,
		verifier:     op.Verifier(&gooidc.Config{ClientID: config.ClientID}),
		config: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Scopes:       scopes,
			Endpoint:     op.Endpoint(),
		},
	}, nil
}

// Begin produces the Azure AD authorization URL with fresh state and nonce.
func (p *Provider) Begin(_ context.Context) (ports.AuthRequest, error) {
	state, err := generateRandomString(32)
	if err != nil {
		return ports.AuthRequest{}, fmt.Errorf("generate state: %w", err)
	}
	nonce, err := generateRandomString(32)
	if err != nil {
		return ports.AuthRequest{}, fmt.Errorf("generate nonce: %w", err)
	}

	authURL := p.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("nonce", nonce),
		oauth2.SetAuthURLParam("response_type", "code"),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)

	return ports.AuthRequest{URL: authURL, State: state, Nonce: nonce}, nil
}

// Exchange redeems the authorization code against the tenant and verifies
// the resulting ID token (issuer, audience and nonce). A nil return means
// the user authenticated against the allowed tenant; no identity details
// are surfaced beyond that.
func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) error {
	if in.Code == "" {
		return errors.New("authorization code is required")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	token, err := p.config.Exchange(ctx, in.Code)
	if err != nil {
		return fmt.Errorf("exchange code for token: %w", err)
	}

	rawID, ok := token.Extra("id_token").(string)
	if !ok || rawID == "" {
		return errors.New("missing id_token in token response")
	}

	idToken, err := p.verifier.Verify(ctx, rawID)
	if err != nil {
		return fmt.Errorf("verify id_token: %w", err)
	}

	if in.Nonce != "" {
		var claims struct {
			Nonce string `json:"nonce"`
		}
		if claimsErr := idToken.Claims(&claims); claimsErr != nil {
			return fmt.Errorf("parse id_token claims: %w", claimsErr)
		}
		if claims.Nonce != in.Nonce {
			return errors.New("invalid nonce")
		}
	}

	return nil
}

// generateRandomString generates a cryptographically secure URL-safe random
// string of exactly length characters.
func generateRandomString(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	nBytes := (length*3 + 3) / 4
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	for len(s) < length {
		extra := make([]byte, 1)
		if _, err := rand.Read(extra); err != nil {
			return "", err
		}
		s += base64.RawURLEncoding.EncodeToString(extra)
	}
	return s[:length], nil
}
