package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aryan0dhankhar/solkant/internal/domain"
	"github.com/aryan0dhankhar/solkant/internal/observability/metrics"
	"github.com/aryan0dhankhar/solkant/pkg/cache"
)

// TenantResolver maps a session to the business id that scopes its data.
// Only positive lookups are cached, so a business created after a miss is
// seen on the next request.
type TenantResolver struct {
	businesses domain.BusinessRepository
	cache      *cache.Cache[string]
	logger     *slog.Logger
}

func NewTenantResolver(businesses domain.BusinessRepository, c *cache.Cache[string], logger *slog.Logger) *TenantResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &TenantResolver{businesses: businesses, cache: c, logger: logger}
}

// Resolve returns the business id of the session user. A user without a
// business yields domain.ErrNoTenant.
func (r *TenantResolver) Resolve(ctx context.Context, session *domain.Session) (string, error) {
	if session == nil || session.User.ID == "" {
		return "", domain.ErrSessionRequired
	}
	userID := session.User.ID

	if r.cache != nil {
		if businessID, ok := r.cache.Get(userID); ok {
			metrics.ObserveTenantResolution("hit")
			return businessID, nil
		}
	}

	business, err := r.businesses.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.ObserveTenantResolution("none")
			r.logger.Warn("session user has no business", slog.String("user_id", userID))
			return "", domain.ErrNoTenant
		}
		metrics.ObserveTenantResolution("error")
		return "", fmt.Errorf("resolve tenant: %w", err)
	}

	metrics.ObserveTenantResolution("miss")
	if r.cache != nil {
		r.cache.Set(userID, business.ID)
	}
	return business.ID, nil
}

// Business loads the full business record of the session user.
func (r *TenantResolver) Business(ctx context.Context, session *domain.Session) (*domain.Business, error) {
	businessID, err := r.Resolve(ctx, session)
	if err != nil {
		return nil, err
	}
	business, err := r.businesses.GetByID(ctx, businessID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			if r.cache != nil {
				r.cache.Delete(session.User.ID)
			}
			return nil, domain.ErrNoTenant
		}
		return nil, fmt.Errorf("load business: %w", err)
	}
	return business, nil
}
