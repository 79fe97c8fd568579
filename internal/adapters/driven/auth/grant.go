package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/cswcalc/internal/core/domain"
)

// Grant is the identity provider as seen by the token provider: one call
// to refresh silently, two to run the device authorization grant.
type Grant interface {
	// DeviceAuth starts a device grant and returns the user code.
	DeviceAuth(ctx context.Context) (*oauth2.DeviceAuthResponse, error)

	// DeviceAccessToken polls until the user approves, declines, or the
	// code expires.
	DeviceAccessToken(ctx context.Context, da *oauth2.DeviceAuthResponse) (*oauth2.Token, error)

	// Refresh redeems a refresh token.
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// OAuthGrant implements Grant for a public client on the Microsoft
// identity platform v2.0 endpoints.
type OAuthGrant struct {
	config     *oauth2.Config
	httpClient *http.Client
}

// NewOAuthGrant creates a grant for clientID in tenantID. authorityHost is
// e.g. https://login.microsoftonline.com.
func NewOAuthGrant(authorityHost, tenantID, clientID string, scopes []string) *OAuthGrant {
	base := strings.TrimRight(authorityHost, "/") + "/" + tenantID + "/oauth2/v2.0"
	return &OAuthGrant{
		config: &oauth2.Config{
			ClientID: clientID,
			Scopes:   scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:       base + "/authorize",
				DeviceAuthURL: base + "/devicecode",
				TokenURL:      base + "/token",
				AuthStyle:     oauth2.AuthStyleInParams,
			},
		},
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *OAuthGrant) context(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)
}

// DeviceAuth starts the device grant.
func (g *OAuthGrant) DeviceAuth(ctx context.Context) (*oauth2.DeviceAuthResponse, error) {
	return g.config.DeviceAuth(g.context(ctx))
}

// DeviceAccessToken polls the token endpoint at the interval the provider
// asked for.
func (g *OAuthGrant) DeviceAccessToken(ctx context.Context, da *oauth2.DeviceAuthResponse) (*oauth2.Token, error) {
	return g.config.DeviceAccessToken(g.context(ctx), da)
}

// Refresh redeems refreshToken for a new access token.
func (g *OAuthGrant) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	src := g.config.TokenSource(g.context(ctx), &oauth2.Token{RefreshToken: refreshToken})
	return src.Token()
}

// authError maps an identity provider failure to the domain error, keeping
// the provider's description.
func authError(err error) error {
	var authErr *domain.AuthenticationError
	if errors.As(err, &authErr) {
		return err
	}
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		desc := re.ErrorDescription
		if desc == "" {
			desc = re.ErrorCode
		}
		return &domain.AuthenticationError{Description: desc, Err: err}
	}
	return &domain.AuthenticationError{Err: err}
}

// credentialFrom converts an oauth2 token. Refresh material is dropped
// unless it may be persisted.
func credentialFrom(tok *oauth2.Token, keepRefresh bool) *domain.Credential {
	cred := &domain.Credential{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		Expiry:      tok.Expiry,
	}
	if keepRefresh {
		cred.RefreshToken = tok.RefreshToken
	}
	return cred
}

// accountFrom reads the signed-in user from the id_token when one was
// returned. The token is not verified; it is only used as a display name.
func accountFrom(tok *oauth2.Token, tenantID string) *domain.Account {
	account := &domain.Account{TenantID: tenantID}
	raw, _ := tok.Extra("id_token").(string)
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return account
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return account
	}
	var claims struct {
		PreferredUsername string `json:"preferred_username"`
		TenantID          string `json:"tid"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return account
	}
	account.Username = claims.PreferredUsername
	if claims.TenantID != "" {
		account.TenantID = claims.TenantID
	}
	return account
}
