package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ideanotion/glasstodo/internal/config"
	"github.com/ideanotion/glasstodo/internal/domain"
)

type credentialStoreMock struct {
	GetByUserTokenFunc func(ctx context.Context, userToken string) (*domain.StoredCredential, error)
}

func (m *credentialStoreMock) GetByUserToken(ctx context.Context, userToken string) (*domain.StoredCredential, error) {
	return m.GetByUserTokenFunc(ctx, userToken)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSessions_ForToken_AuthorizedClient(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer access-1" {
			t.Errorf("Authorization = %q, want %q", got, "Bearer access-1")
		}
		io.WriteString(w, `{"items":[]}`)
	}))
	defer srv.Close()

	creds := &credentialStoreMock{
		GetByUserTokenFunc: func(ctx context.Context, userToken string) (*domain.StoredCredential, error) {
			if userToken != "user-1" {
				t.Errorf("userToken = %q, want user-1", userToken)
			}
			return &domain.StoredCredential{
				UserToken:    "user-1",
				AccessToken:  "access-1",
				RefreshToken: "refresh-1",
				TokenType:    "Bearer",
				Expiry:       time.Now().Add(time.Hour),
			}, nil
		},
	}

	sessions := NewSessions(creds, config.OAuthConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		TokenURL:     srv.URL + "/token",
	}, config.MirrorConfig{
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
	}, newTestLogger())

	tl, err := sessions.ForToken(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := tl.ListTimeline(context.Background(), 10); err != nil {
		t.Fatalf("list through session: %v", err)
	}
}

func TestSessions_ForToken_UnknownUser(t *testing.T) {
	t.Parallel()

	creds := &credentialStoreMock{
		GetByUserTokenFunc: func(ctx context.Context, userToken string) (*domain.StoredCredential, error) {
			return nil, domain.ErrNotFound
		},
	}
	sessions := NewSessions(creds, config.OAuthConfig{}, config.MirrorConfig{}, newTestLogger())

	_, err := sessions.ForToken(context.Background(), "who")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("error = %v, want ErrUnauthorized", err)
	}
}

func TestSessions_ForToken_StoreFailure(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	creds := &credentialStoreMock{
		GetByUserTokenFunc: func(ctx context.Context, userToken string) (*domain.StoredCredential, error) {
			return nil, cause
		},
	}
	sessions := NewSessions(creds, config.OAuthConfig{}, config.MirrorConfig{}, newTestLogger())

	_, err := sessions.ForToken(context.Background(), "user-1")
	if !errors.Is(err, cause) {
		t.Fatalf("error = %v, want wrapped store failure", err)
	}
	if errors.Is(err, domain.ErrUnauthorized) {
		t.Error("transient store failure must not map to ErrUnauthorized")
	}
}

func TestSessions_ValidateToken(t *testing.T) {
	t.Parallel()

	creds := &credentialStoreMock{
		GetByUserTokenFunc: func(ctx context.Context, userToken string) (*domain.StoredCredential, error) {
			if userToken == "known" {
				return &domain.StoredCredential{UserToken: "known"}, nil
			}
			return nil, domain.ErrNotFound
		},
	}
	sessions := NewSessions(creds, config.OAuthConfig{}, config.MirrorConfig{}, newTestLogger())

	got, err := sessions.ValidateToken(context.Background(), "known")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "known" {
		t.Errorf("token = %q, want known", got)
	}

	_, err = sessions.ValidateToken(context.Background(), "unknown")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("error = %v, want ErrUnauthorized", err)
	}
}
