package handler

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aryan0dhankhar/solkant/internal/observability/metrics"
	"github.com/aryan0dhankhar/solkant/internal/security/audit"
	"github.com/aryan0dhankhar/solkant/internal/security/auth"
	"github.com/aryan0dhankhar/solkant/internal/security/middleware"
	"github.com/aryan0dhankhar/solkant/internal/security/ratelimit"
)

// Handlers groups the endpoint handlers mounted by NewRouter
type Handlers struct {
	Auth      *AuthHandler
	Login     *LoginHandler
	Dashboard *DashboardHandler
	Clients   *ClientHandler
	Catalog   *CatalogHandler
	Quotes    *QuoteHandler
	Health    *HealthHandler
}

// RouterConfig carries the cross-cutting pieces of the middleware chain
type RouterConfig struct {
	Issuer        *auth.TokenIssuer
	SecureCookies bool
	LoginLimiter  ratelimit.Limiter // nil disables login throttling
	Audit         *audit.Logger
}

// NewRouter mounts every route. Dashboard routes are guarded and answer
// anonymous requests with a redirect to /login.
func NewRouter(h Handlers, cfg RouterConfig, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	if cfg.Audit == nil {
		cfg.Audit = audit.NewLogger(log)
	}

	guarded := func(fn http.HandlerFunc) http.Handler {
		return middleware.Chain(fn,
			middleware.RequireSession(cfg.Audit, log),
			middleware.AuditMiddleware(cfg.Audit),
			middleware.ValidateJSONContentType(log),
		)
	}
	limited := func(route string, fn http.HandlerFunc) http.Handler {
		if cfg.LoginLimiter == nil {
			return fn
		}
		return middleware.RateLimitMiddleware(cfg.LoginLimiter, route, log)(fn)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, DashboardPath, http.StatusSeeOther)
	})
	mux.Handle("GET /login", h.Login)

	mux.Handle("POST /api/auth/callback/credentials", limited("credentials", h.Auth.CredentialsCallback))
	mux.HandleFunc("GET /api/auth/signin/google", h.Auth.GoogleSignIn)
	mux.HandleFunc("GET /api/auth/callback/google", h.Auth.GoogleCallback)
	mux.HandleFunc("POST /api/auth/signout", h.Auth.SignOut)
	mux.HandleFunc("GET /api/auth/session", h.Auth.Session)
	mux.HandleFunc("GET /api/auth/providers", h.Auth.Providers)
	mux.Handle("POST /api/auth/register", limited("register",
		middleware.ValidateJSONContentType(log)(http.HandlerFunc(h.Auth.Register)).ServeHTTP))

	mux.Handle("GET /dashboard", guarded(h.Dashboard.ServeHTTP))

	mux.Handle("GET /dashboard/clients", guarded(h.Clients.List))
	mux.Handle("POST /dashboard/clients", guarded(h.Clients.Create))
	mux.Handle("GET /dashboard/clients/{id}", guarded(h.Clients.Get))
	mux.Handle("PUT /dashboard/clients/{id}", guarded(h.Clients.Update))
	mux.Handle("DELETE /dashboard/clients/{id}", guarded(h.Clients.Delete))

	mux.Handle("GET /dashboard/services", guarded(h.Catalog.List))
	mux.Handle("POST /dashboard/services", guarded(h.Catalog.Create))
	mux.Handle("GET /dashboard/services/{id}", guarded(h.Catalog.Get))
	mux.Handle("PUT /dashboard/services/{id}", guarded(h.Catalog.Update))
	mux.Handle("DELETE /dashboard/services/{id}", guarded(h.Catalog.Delete))

	mux.Handle("GET /dashboard/devis", guarded(h.Quotes.List))
	mux.Handle("POST /dashboard/devis", guarded(h.Quotes.Create))
	mux.Handle("GET /dashboard/devis/{id}", guarded(h.Quotes.Get))
	mux.Handle("PUT /dashboard/devis/{id}/status", guarded(h.Quotes.UpdateStatus))
	mux.Handle("DELETE /dashboard/devis/{id}", guarded(h.Quotes.Delete))

	mux.HandleFunc("GET /healthz", h.Health.Health)
	mux.HandleFunc("GET /readyz", h.Health.Ready)
	mux.Handle("GET "+metrics.ScrapePath, promhttp.Handler())

	return middleware.Chain(metrics.HTTPMetricsMiddleware(mux),
		middleware.RequestID(log),
		middleware.RejectPathTraversal(log),
		middleware.LimitBody(maxBodyBytes),
		middleware.SessionMiddleware(cfg.Issuer, cfg.SecureCookies, log),
	)
}
