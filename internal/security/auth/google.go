package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/zitadel/oidc/v3/pkg/client/rp"
	httphelper "github.com/zitadel/oidc/v3/pkg/http"
	"github.com/zitadel/oidc/v3/pkg/oidc"

	"github.com/aryan0dhankhar/solkant/internal/domain"
)

const GoogleIssuer = "https://accounts.google.com"

// GoogleConfig configures the Google sign-in flow.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	Issuer       string
	BaseURL      string // public origin, used to build the redirect URI
	CookieSecret string // state and PKCE cookies are keyed from it
}

// Configured reports whether the client credentials are present.
func (c GoogleConfig) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// RedirectURI is the callback registered with Google.
func (c GoogleConfig) RedirectURI() string {
	return strings.TrimRight(c.BaseURL, "/") + "/api/auth/callback/google"
}

// ProfileCallback receives the verified profile of a successful sign-in.
type ProfileCallback func(w http.ResponseWriter, r *http.Request, profile domain.OAuthProfile)

// GoogleProvider runs the OIDC authorization code flow against Google
// by wrapping a zitadel/oidc RelyingParty.
type GoogleProvider struct {
	rp     rp.RelyingParty
	logger *slog.Logger
}

// NewGoogleProvider discovers the issuer and builds the relying party.
// Missing credentials yield domain.ErrConfiguration.
func NewGoogleProvider(ctx context.Context, cfg GoogleConfig, logger *slog.Logger) (*GoogleProvider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Configured() {
		return nil, fmt.Errorf("%w: google client id and secret are required", domain.ErrConfiguration)
	}
	if cfg.Issuer == "" {
		cfg.Issuer = GoogleIssuer
	}

	hashKey, cryptoKey := cookieKeys(cfg.CookieSecret)
	cookieOpts := []httphelper.CookieHandlerOpt{httphelper.WithSameSite(http.SameSiteLaxMode)}
	if !strings.HasPrefix(cfg.BaseURL, "https://") {
		cookieOpts = append(cookieOpts, httphelper.WithUnsecure())
	}
	cookieHandler := httphelper.NewCookieHandler(hashKey, cryptoKey, cookieOpts...)

	options := []rp.Option{
		rp.WithCookieHandler(cookieHandler),
		rp.WithPKCE(cookieHandler),
		rp.WithVerifierOpts(rp.WithIssuedAtMaxAge(time.Minute)),
		rp.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, errorType, errorDesc, state string) {
			code := ErrorOAuthCallback
			if errorType == "access_denied" {
				code = ErrorAccessDenied
			}
			logger.Warn("google sign-in rejected",
				slog.String("error_type", errorType),
				slog.String("description", errorDesc),
			)
			http.Redirect(w, r, LoginURL(code), http.StatusFound)
		}),
		rp.WithUnauthorizedHandler(func(w http.ResponseWriter, r *http.Request, desc, state string) {
			logger.Warn("google callback failed", slog.String("description", desc))
			http.Redirect(w, r, LoginURL(ErrorOAuthCallback), http.StatusFound)
		}),
	}

	relyingParty, err := rp.NewRelyingPartyOIDC(ctx, cfg.Issuer, cfg.ClientID, cfg.ClientSecret,
		cfg.RedirectURI(), []string{oidc.ScopeOpenID, oidc.ScopeEmail, oidc.ScopeProfile}, options...)
	if err != nil {
		return nil, fmt.Errorf("%w: create google relying party: %v", domain.ErrConfiguration, err)
	}

	logger.Info("google sign-in enabled", slog.String("redirect_uri", cfg.RedirectURI()))
	return &GoogleProvider{rp: relyingParty, logger: logger}, nil
}

// Name returns the provider id used in tokens and account links.
func (g *GoogleProvider) Name() string { return domain.ProviderGoogle }

// AuthHandler redirects to Google with a fresh state and PKCE challenge.
func (g *GoogleProvider) AuthHandler() http.Handler {
	return rp.AuthURLHandler(func() string {
		state, err := GenerateNonce()
		if err != nil {
			g.logger.Error("failed to generate oauth state", slog.String("error", err.Error()))
		}
		return state
	}, g.rp)
}

// CallbackHandler exchanges the code and hands the verified profile to fn.
func (g *GoogleProvider) CallbackHandler(fn ProfileCallback) http.Handler {
	return rp.CodeExchangeHandler(func(w http.ResponseWriter, r *http.Request, tokens *oidc.Tokens[*oidc.IDTokenClaims], state string, _ rp.RelyingParty) {
		fn(w, r, ProfileFromClaims(tokens.IDTokenClaims))
	}, g.rp)
}

// ProfileFromClaims maps ID token claims onto an OAuthProfile.
func ProfileFromClaims(claims *oidc.IDTokenClaims) domain.OAuthProfile {
	if claims == nil {
		return domain.OAuthProfile{Provider: domain.ProviderGoogle}
	}
	return domain.OAuthProfile{
		Provider:      domain.ProviderGoogle,
		Subject:       claims.Subject,
		Email:         claims.Email,
		EmailVerified: bool(claims.EmailVerified),
		Name:          claims.Name,
		Picture:       claims.Picture,
	}
}

// cookieKeys derives the state cookie hash and encryption keys from the session secret.
func cookieKeys(secret string) (hashKey, cryptoKey []byte) {
	h := sha256.Sum256([]byte("solkant-oauth-hash:" + secret))
	c := sha256.Sum256([]byte("solkant-oauth-crypto:" + secret))
	return h[:], c[:]
}

// GenerateNonce returns a random URL-safe string.
func GenerateNonce() (string, error) {
	b := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
