// Package auth builds per-request Mirror sessions from stored credentials.
// It replaces ambient credential lookups: a session is constructed at the
// request boundary and handed down to the services that need it.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/ideanotion/glasstodo/internal/adapter/mirror"
	"github.com/ideanotion/glasstodo/internal/config"
	"github.com/ideanotion/glasstodo/internal/domain"
)

type credentialStore interface {
	GetByUserToken(ctx context.Context, userToken string) (*domain.StoredCredential, error)
}

// Sessions constructs authorized timeline clients, one per user token.
type Sessions struct {
	creds  credentialStore
	oauth  *oauth2.Config
	mirror config.MirrorConfig
	log    *slog.Logger
}

// NewSessions creates a session factory.
func NewSessions(creds credentialStore, oauthCfg config.OAuthConfig, mirrorCfg config.MirrorConfig, logger *slog.Logger) *Sessions {
	return &Sessions{
		creds: creds,
		oauth: &oauth2.Config{
			ClientID:     oauthCfg.ClientID,
			ClientSecret: oauthCfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  oauthCfg.AuthURL,
				TokenURL: oauthCfg.TokenURL,
			},
		},
		mirror: mirrorCfg,
		log:    logger.With("component", "sessions"),
	}
}

// ForToken resolves the stored credential for a user token and returns a
// timeline client authorized as that user. The underlying token source
// refreshes expired access tokens transparently; refreshed tokens are not
// written back (the authorization flow owns the credential rows).
func (s *Sessions) ForToken(ctx context.Context, userToken string) (domain.TimelineService, error) {
	cred, err := s.creds.GetByUserToken(ctx, userToken)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("session for %s: %w", userToken, domain.ErrUnauthorized)
		}
		return nil, fmt.Errorf("session for %s: %w", userToken, err)
	}

	token := &oauth2.Token{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		TokenType:    cred.TokenType,
		Expiry:       cred.Expiry,
	}

	// The oauth2 transport wraps this base client, so the Mirror request
	// timeout has to be carried on it.
	base := &http.Client{Timeout: s.mirror.Timeout}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	httpClient := oauth2.NewClient(ctx, s.oauth.TokenSource(ctx, token))

	return mirror.NewClient(s.mirror.BaseURL, httpClient, s.log), nil
}

// ValidateToken reports whether a bearer token belongs to a known user.
// Used by the transport auth middleware; the token IS the user identity.
func (s *Sessions) ValidateToken(ctx context.Context, token string) (string, error) {
	if _, err := s.creds.GetByUserToken(ctx, token); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrUnauthorized
		}
		return "", fmt.Errorf("validate token: %w", err)
	}
	return token, nil
}
