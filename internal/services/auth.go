package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/roomsync/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// TokenSource returns the token source described by creds.
//
// Client credentials take precedence over a static access token. It returns [shared.ErrMissingCredentials]
// when neither is configured.
func TokenSource(ctx context.Context, creds shared.CredentialsConfig) (oauth2.TokenSource, error) {
	if creds.HasClientCredentials() {
		cfg := clientcredentials.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			TokenURL:     creds.TokenURL,
		}
		return cfg.TokenSource(ctx), nil
	}
	if creds.AccessToken != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: creds.AccessToken, TokenType: "Bearer"}), nil
	}
	return nil, fmt.Errorf("%w: set credentials.access_token or client credentials", shared.ErrMissingCredentials)
}

// NewAuthenticatedClient returns an [http.Client] that authorizes every request with ts.
// A nil token source yields [http.DefaultClient].
func NewAuthenticatedClient(ctx context.Context, ts oauth2.TokenSource) *http.Client {
	if ts == nil {
		return http.DefaultClient
	}
	return oauth2.NewClient(ctx, ts)
}
