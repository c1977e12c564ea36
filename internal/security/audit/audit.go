package audit

import (
	"context"
	"log/slog"
	"time"
)

type requestIDKey struct{}

// WithRequestID stores the request id picked up by audit records.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request id stored in ctx, if any.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// Logger writes audit records for security-relevant actions
type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{logger: logger.With(slog.String("log_type", "audit"))}
}

func (al *Logger) LogAction(ctx context.Context, businessID, userID, action, resource, resourceID, status, details string) {
	al.logger.Info("audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.String("business_id", businessID),
		slog.String("user_id", userID),
		slog.String("status", status),
		slog.String("details", details),
		slog.String("request_id", RequestID(ctx)),
		slog.Time("timestamp", time.Now()),
	)
}

// LogSignIn records a sign-in attempt. userID is empty for failures.
func (al *Logger) LogSignIn(ctx context.Context, userID, provider, status, details string) {
	al.LogAction(ctx, "", userID, "signin", "session", provider, status, details)
}

func (al *Logger) LogSignOut(ctx context.Context, userID string) {
	al.LogAction(ctx, "", userID, "signout", "session", "", "success", "")
}

func (al *Logger) LogBusinessProvisioning(ctx context.Context, businessID, userID, source, status, details string) {
	al.LogAction(ctx, businessID, userID, "provision", "business", businessID, status, source+" "+details)
}

func (al *Logger) LogDeletion(ctx context.Context, businessID, userID, resource, resourceID string) {
	al.LogAction(ctx, businessID, userID, "delete", resource, resourceID, "success", "")
}

func (al *Logger) LogDenied(ctx context.Context, businessID, userID, reason string) {
	al.LogAction(ctx, businessID, userID, "access_denied", "api", "", "denied", reason)
}
