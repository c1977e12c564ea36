package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zitadel/oidc/v3/pkg/oidc"

	"github.com/aryan0dhankhar/solkant/internal/domain"
)

func TestNewGoogleProvider_NotConfigured(t *testing.T) {
	_, err := NewGoogleProvider(context.Background(), GoogleConfig{BaseURL: "http://localhost:8080"}, nil)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestGoogleConfig_RedirectURI(t *testing.T) {
	cfg := GoogleConfig{BaseURL: "https://solkant.fr/"}
	assert.Equal(t, "https://solkant.fr/api/auth/callback/google", cfg.RedirectURI())
}

func TestProfileFromClaims(t *testing.T) {
	claims := &oidc.IDTokenClaims{}
	claims.Subject = "google-sub-1"
	claims.Email = "claire@example.com"
	claims.EmailVerified = true
	claims.Name = "Claire"
	claims.Picture = "https://example.com/c.png"

	p := ProfileFromClaims(claims)
	assert.Equal(t, domain.ProviderGoogle, p.Provider)
	assert.Equal(t, "google-sub-1", p.Subject)
	assert.Equal(t, "claire@example.com", p.Email)
	assert.True(t, p.EmailVerified)
	assert.Equal(t, "Claire", p.Name)
	assert.Equal(t, "https://example.com/c.png", p.Picture)
}

func TestCookieKeys_Deterministic(t *testing.T) {
	h1, c1 := cookieKeys("secret")
	h2, c2 := cookieKeys("secret")
	assert.Equal(t, h1, h2)
	assert.Equal(t, c1, c2)
	assert.NotEqual(t, h1, c1)
	assert.Len(t, c1, 32)
}
