package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aryan0dhankhar/solkant/internal/domain"
	"github.com/aryan0dhankhar/solkant/internal/observability/metrics"
	"github.com/aryan0dhankhar/solkant/internal/security/audit"
	"github.com/aryan0dhankhar/solkant/internal/security/auth"
	"github.com/aryan0dhankhar/solkant/internal/security/middleware"
	"github.com/aryan0dhankhar/solkant/internal/service"
	"github.com/aryan0dhankhar/solkant/internal/validation"
)

// DashboardPath is where successful sign-ins land.
const DashboardPath = "/dashboard"

// OAuthProvider runs a provider's redirect flow. auth.GoogleProvider
// implements it.
type OAuthProvider interface {
	Name() string
	AuthHandler() http.Handler
	CallbackHandler(fn auth.ProfileCallback) http.Handler
}

// AuthHandler serves the sign-in, sign-out and session endpoints
type AuthHandler struct {
	authService   *service.AuthService
	issuer        *auth.TokenIssuer
	google        OAuthProvider
	validator     *validation.Validator
	audit         *audit.Logger
	secureCookies bool
	errs          errorWriter
	logger        *slog.Logger
}

// AuthConfig carries the dependencies of AuthHandler. Google is nil when the
// provider is not configured.
type AuthConfig struct {
	AuthService   *service.AuthService
	Issuer        *auth.TokenIssuer
	Google        OAuthProvider
	Validator     *validation.Validator
	Audit         *audit.Logger
	SecureCookies bool
	Development   bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(cfg AuthConfig, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Audit == nil {
		cfg.Audit = audit.NewLogger(logger)
	}

	return &AuthHandler{
		authService:   cfg.AuthService,
		issuer:        cfg.Issuer,
		google:        cfg.Google,
		validator:     cfg.Validator,
		audit:         cfg.Audit,
		secureCookies: cfg.SecureCookies,
		errs:          errorWriter{logger: logger, development: cfg.Development},
		logger:        logger,
	}
}

// CredentialsRequest is the JSON form of a credentials sign-in
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is the body of GET /api/auth/session. It is empty when
// the request is anonymous.
type SessionResponse struct {
	User    *domain.SessionUser `json:"user,omitempty"`
	Expires string              `json:"expires,omitempty"`
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Content-Type"), "application/json") ||
		strings.Contains(r.Header.Get("Accept"), "application/json")
}

// CredentialsCallback handles POST /api/auth/callback/credentials with a
// form or JSON body.
func (h *AuthHandler) CredentialsCallback(w http.ResponseWriter, r *http.Request) {
	jsonReq := wantsJSON(r)

	var req CredentialsRequest
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		raw, err := readBody(r)
		if err == nil {
			err = decodeJSON(raw, &req)
		}
		if err != nil {
			h.logger.Warn("failed to decode credentials request", slog.String("error", err.Error()))
		}
	} else if err := r.ParseForm(); err == nil {
		req.Email = r.PostFormValue("email")
		req.Password = r.PostFormValue("password")
	}

	identity, err := h.authService.Authorize(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		code := auth.CodeFor(err)
		h.failSignIn(w, r, domain.ProviderCredentials, code, err, jsonReq)
		return
	}

	claims, ok := h.startSession(w, r, identity, domain.ProviderCredentials)
	if !ok {
		h.failSignIn(w, r, domain.ProviderCredentials, auth.ErrorCallback, errors.New("session issue failed"), jsonReq)
		return
	}
	if jsonReq {
		session := auth.Session(claims)
		writeJSON(w, http.StatusOK, SessionResponse{User: &session.User, Expires: claims.ExpiresAt.Time.UTC().Format(timeLayout)})
		return
	}
	http.Redirect(w, r, DashboardPath, http.StatusSeeOther)
}

// GoogleSignIn handles GET /api/auth/signin/google
func (h *AuthHandler) GoogleSignIn(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		h.logger.Warn("google sign-in requested but not configured")
		http.Redirect(w, r, auth.LoginURL(auth.ErrorConfiguration), http.StatusSeeOther)
		return
	}
	h.google.AuthHandler().ServeHTTP(w, r)
}

// GoogleCallback handles GET /api/auth/callback/google
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		http.Redirect(w, r, auth.LoginURL(auth.ErrorConfiguration), http.StatusSeeOther)
		return
	}
	h.google.CallbackHandler(h.completeOAuth).ServeHTTP(w, r)
}

func (h *AuthHandler) completeOAuth(w http.ResponseWriter, r *http.Request, profile domain.OAuthProfile) {
	identity, err := h.authService.SignInWithOAuth(r.Context(), profile)
	if err != nil {
		h.failSignIn(w, r, profile.Provider, auth.CodeFor(err), err, false)
		return
	}
	if _, ok := h.startSession(w, r, identity, profile.Provider); !ok {
		h.failSignIn(w, r, profile.Provider, auth.ErrorCallback, errors.New("session issue failed"), false)
		return
	}
	http.Redirect(w, r, DashboardPath, http.StatusSeeOther)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, identity domain.Identity, provider string) (*auth.Claims, bool) {
	token, claims, err := h.issuer.Issue(identity, provider)
	if err != nil {
		h.logger.Error("failed to issue session token",
			slog.String("user_id", identity.ID),
			slog.String("error", err.Error()),
		)
		return nil, false
	}
	auth.SetSessionCookie(w, token, claims.ExpiresAt.Time, h.secureCookies)

	metrics.ObserveSignIn(provider, "success")
	h.audit.LogSignIn(r.Context(), identity.ID, provider, "success", "")
	h.logger.Info("session started",
		slog.String("user_id", identity.ID),
		slog.String("provider", provider),
	)
	return claims, true
}

func (h *AuthHandler) failSignIn(w http.ResponseWriter, r *http.Request, provider string, code auth.ErrorCode, err error, jsonReq bool) {
	metrics.ObserveSignIn(provider, string(code))
	h.audit.LogSignIn(r.Context(), "", provider, "failed", string(code))
	h.logger.Info("sign-in failed",
		slog.String("provider", provider),
		slog.String("code", string(code)),
		slog.String("error", err.Error()),
	)
	if jsonReq {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: string(code)})
		return
	}
	http.Redirect(w, r, auth.LoginURL(code), http.StatusSeeOther)
}

// SignOut handles POST /api/auth/signout
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if s := middleware.SessionFromContext(r.Context()); s != nil {
		h.audit.LogSignOut(r.Context(), s.User.ID)
	}
	auth.ClearSessionCookie(w, h.secureCookies)
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]string{"url": "/login"})
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Session handles GET /api/auth/session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	s := middleware.SessionFromContext(r.Context())
	if s == nil {
		writeJSON(w, http.StatusOK, SessionResponse{})
		return
	}
	resp := SessionResponse{User: &s.User}
	if c := middleware.ClaimsFromContext(r.Context()); c != nil && c.ExpiresAt != nil {
		resp.Expires = c.ExpiresAt.Time.UTC().Format(timeLayout)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ProviderInfo describes an enabled sign-in provider
type ProviderInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	SigninURL   string `json:"signinUrl"`
	CallbackURL string `json:"callbackUrl"`
}

// Providers handles GET /api/auth/providers
func (h *AuthHandler) Providers(w http.ResponseWriter, r *http.Request) {
	providers := map[string]ProviderInfo{
		domain.ProviderCredentials: {
			ID:          domain.ProviderCredentials,
			Name:        "Credentials",
			Type:        "credentials",
			SigninURL:   "/login",
			CallbackURL: "/api/auth/callback/credentials",
		},
	}
	if h.google != nil {
		providers[domain.ProviderGoogle] = ProviderInfo{
			ID:          domain.ProviderGoogle,
			Name:        "Google",
			Type:        "oauth",
			SigninURL:   "/api/auth/signin/google",
			CallbackURL: "/api/auth/callback/google",
		}
	}
	writeJSON(w, http.StatusOK, providers)
}

// RegisterResponse is returned after a successful registration
type RegisterResponse struct {
	User     domain.Identity `json:"user"`
	Business BusinessSummary `json:"business"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(r)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	var req service.RegisterInput
	if err := h.validator.Decode(validation.Register, raw, &req); err != nil {
		h.errs.write(w, r, err)
		return
	}

	identity, business, err := h.authService.Register(r.Context(), req)
	switch {
	case errors.Is(err, domain.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: "Cet email est déjà utilisé", FieldErrors: map[string]string{"email": "Cet email est déjà utilisé"}})
		return
	case errors.Is(err, domain.ErrWeakPassword):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Données invalides", FieldErrors: map[string]string{"password": "Au moins 8 caractères"}})
		return
	case errors.Is(err, domain.ErrCredentialsRequired):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Email et mot de passe requis"})
		return
	case err != nil:
		h.errs.write(w, r, err)
		return
	}

	if _, ok := h.startSession(w, r, identity, domain.ProviderCredentials); !ok {
		h.errs.write(w, r, errors.New("session issue failed"))
		return
	}
	writeJSON(w, http.StatusCreated, RegisterResponse{User: identity, Business: summarizeBusiness(business)})
}
