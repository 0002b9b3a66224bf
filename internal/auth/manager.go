// Package auth manages the OAuth credential used for moderation calls:
// building the consent URL, exchanging the callback code, and refreshing the
// persisted token before expiry. The token document is the only durable
// credential store.
package auth

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	yt "google.golang.org/api/youtube/v3"

	"github.com/tubesweep/tubesweep/internal/models"
)

// AuthorizationRequiredError signals that no token is stored yet. It carries
// the consent URL the operator must visit.
type AuthorizationRequiredError struct {
	AuthURL string
}

func (e *AuthorizationRequiredError) Error() string {
	return fmt.Sprintf("authorization required, visit %s", e.AuthURL)
}

// TokenStore abstracts the persisted token document.
type TokenStore interface {
	Load() (*oauth2.Token, error)
	Save(token *oauth2.Token) error
}

type Manager struct {
	tokens      TokenStore
	redirectURL string
}

func NewManager(tokens TokenStore, redirectURL string) *Manager {
	return &Manager{tokens: tokens, redirectURL: redirectURL}
}

func (m *Manager) oauthConfig(settings models.Settings) (*oauth2.Config, error) {
	if !settings.HasOAuthClient() {
		return nil, fmt.Errorf("oauth client id/secret not configured")
	}
	return &oauth2.Config{
		ClientID:     settings.ClientID,
		ClientSecret: settings.ClientSecret,
		RedirectURL:  m.redirectURL,
		Scopes:       []string{yt.YoutubeForceSslScope},
		Endpoint:     google.Endpoint,
	}, nil
}

// AuthCodeURL returns the consent URL for the configured OAuth client.
func (m *Manager) AuthCodeURL(settings models.Settings, state string) (string, error) {
	cfg, err := m.oauthConfig(settings)
	if err != nil {
		return "", err
	}
	return cfg.AuthCodeURL(state, oauth2.AccessTypeOffline), nil
}

// Exchange trades the callback authorization code for a token and persists it.
func (m *Manager) Exchange(ctx context.Context, settings models.Settings, code string) error {
	cfg, err := m.oauthConfig(settings)
	if err != nil {
		return err
	}
	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	if err := m.tokens.Save(token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	return nil
}

// TokenSource returns a source backed by the persisted token. Refreshed
// tokens are written back so the next process start picks them up. When no
// token is stored the error carries the consent URL.
func (m *Manager) TokenSource(ctx context.Context, settings models.Settings) (oauth2.TokenSource, error) {
	cfg, err := m.oauthConfig(settings)
	if err != nil {
		return nil, err
	}
	token, err := m.tokens.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load token: %w", err)
	}
	if token == nil {
		return nil, &AuthorizationRequiredError{AuthURL: cfg.AuthCodeURL("state", oauth2.AccessTypeOffline)}
	}
	return &persistingTokenSource{
		src:   cfg.TokenSource(ctx, token),
		store: m.tokens,
		last:  token.AccessToken,
	}, nil
}

// persistingTokenSource saves the token whenever the wrapped source rotates
// the access token.
type persistingTokenSource struct {
	mu    sync.Mutex
	src   oauth2.TokenSource
	store TokenStore
	last  string
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if token.AccessToken != s.last {
		if err := s.store.Save(token); err != nil {
			return nil, fmt.Errorf("failed to persist refreshed token: %w", err)
		}
		s.last = token.AccessToken
	}
	return token, nil
}
