package token

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pysugar/surfvault/internal/store"
	"github.com/pysugar/surfvault/internal/store/models"
	"golang.org/x/oauth2"
)

// DefaultTokenURL is the secure-token exchange used by the remote service.
const DefaultTokenURL = "https://securetoken.googleapis.com/v1/token"

// OAuthSettings locates the refresh-token exchange.
type OAuthSettings struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	// APIKey is appended to the token URL as ?key= when set.
	APIKey string
}

// OAuthConfig builds the oauth2 config for the refresh-token grant.
func OAuthConfig(s OAuthSettings) *oauth2.Config {
	tokenURL := s.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	if s.APIKey != "" {
		if u, err := url.Parse(tokenURL); err == nil {
			q := u.Query()
			q.Set("key", s.APIKey)
			u.RawQuery = q.Encode()
			tokenURL = u.String()
		}
	}
	return &oauth2.Config{
		ClientID:     s.ClientID,
		ClientSecret: s.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// OAuth2Refresher refreshes bearer tokens with the refresh-token grant.
type OAuth2Refresher struct {
	config *oauth2.Config
	// client is used for the exchange when set, so proxy settings apply.
	client *http.Client
}

// NewOAuth2Refresher creates a refresher. client may be nil.
func NewOAuth2Refresher(cfg *oauth2.Config, client *http.Client) *OAuth2Refresher {
	return &OAuth2Refresher{config: cfg, client: client}
}

// Refresh performs one exchange. The id_token extra is preferred over the
// access token when the endpoint returns both.
func (r *OAuth2Refresher) Refresh(ctx context.Context, acc models.Account) (store.TokenUpdate, error) {
	if acc.RefreshToken == "" {
		return store.TokenUpdate{}, fmt.Errorf("account %s has no refresh token", acc.Email)
	}
	if r.client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, r.client)
	}

	ts := r.config.TokenSource(ctx, &oauth2.Token{RefreshToken: acc.RefreshToken})
	newToken, err := ts.Token()
	if err != nil {
		return store.TokenUpdate{}, err
	}

	bearer := newToken.AccessToken
	if idToken, ok := newToken.Extra("id_token").(string); ok && strings.TrimSpace(idToken) != "" {
		bearer = idToken
	}
	return store.TokenUpdate{
		Token:        bearer,
		RefreshToken: newToken.RefreshToken,
		ExpiresAt:    newToken.Expiry,
	}, nil
}
