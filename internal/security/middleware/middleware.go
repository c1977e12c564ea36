package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aryan0dhankhar/solkant/internal/domain"
	"github.com/aryan0dhankhar/solkant/internal/observability/metrics"
	"github.com/aryan0dhankhar/solkant/internal/security/audit"
	"github.com/aryan0dhankhar/solkant/internal/security/auth"
	"github.com/aryan0dhankhar/solkant/internal/security/ratelimit"
)

type sessionContextKey struct{}
type claimsContextKey struct{}

// WithSession stores a materialized session in ctx.
func WithSession(ctx context.Context, session *domain.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

// SessionFromContext returns the request session, or nil when anonymous.
func SessionFromContext(ctx context.Context) *domain.Session {
	if s, ok := ctx.Value(sessionContextKey{}).(*domain.Session); ok {
		return s
	}
	return nil
}

// ClaimsFromContext returns the verified token claims, or nil.
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	if c, ok := ctx.Value(claimsContextKey{}).(*auth.Claims); ok {
		return c
	}
	return nil
}

// SessionMiddleware verifies the session token of every request and puts the
// session in the context. Invalid tokens leave the request anonymous and the
// stale cookie is cleared. Tokens older than the update age are re-issued.
func SessionMiddleware(issuer *auth.TokenIssuer, secureCookies bool, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.TokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := issuer.Verify(token)
			if err != nil {
				log.Debug("session token rejected",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				if _, cerr := r.Cookie(auth.SessionCookieName); cerr == nil {
					auth.ClearSessionCookie(w, secureCookies)
				}
				next.ServeHTTP(w, r)
				return
			}

			if issuer.NeedsRefresh(claims) {
				refreshed, fresh, err := issuer.Refresh(claims)
				if err != nil {
					log.Warn("session refresh failed",
						slog.String("user_id", claims.ID),
						slog.String("error", err.Error()),
					)
				} else {
					auth.SetSessionCookie(w, refreshed, fresh.ExpiresAt.Time, secureCookies)
					claims = fresh
				}
			}

			ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
			ctx = WithSession(ctx, auth.Session(claims))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession guards protected routes. Anonymous requests are answered with
// a 303 to the login page and never reach next.
func RequireSession(auditLog *audit.Logger, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s := SessionFromContext(r.Context()); s == nil || s.User.ID == "" {
				log.Info("unauthenticated request redirected",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				auditLog.LogDenied(r.Context(), "", "", "no session for "+r.URL.Path)
				http.Redirect(w, r, auth.LoginURL(""), http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitMiddleware throttles requests per client IP. route labels the
// rejection metric.
func RateLimitMiddleware(limiter ratelimit.Limiter, route string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			d := limiter.Allow(r.Context(), route+":"+ip)
			if !d.Allowed {
				metrics.ObserveRateLimited(route)
				log.Warn("rate limit exceeded",
					slog.String("route", route),
					slog.String("client_ip", ip),
				)
				secs := int(d.RetryAfter.Round(time.Second).Seconds())
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				writeError(w, http.StatusTooManyRequests, "Trop de tentatives, réessayez plus tard")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AuditMiddleware records every mutating dashboard request with the acting user.
func AuditMiddleware(auditLog *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			userID := ""
			if s := SessionFromContext(r.Context()); s != nil {
				userID = s.User.ID
			}
			auditLog.LogAction(r.Context(), "", userID, strings.ToLower(r.Method), "http", r.URL.Path, "initiated", "")
			next.ServeHTTP(w, r)
		})
	}
}

// RequestID attaches a request id to the context and response headers and
// logs the completed request.
func RequestID(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get("X-Request-ID")
			if reqID == "" || len(reqID) > 64 {
				reqID = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", reqID)

			ctx := audit.WithRequestID(r.Context(), reqID)
			start := time.Now()

			next.ServeHTTP(w, r.WithContext(ctx))

			log.Info("request completed",
				slog.String("request_id", reqID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Duration("duration_ms", time.Since(start)),
			)
		})
	}
}

// ClientIP returns the first X-Forwarded-For hop, falling back to RemoteAddr.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Chain applies middlewares so the first one is outermost.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
