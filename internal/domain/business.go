package domain

import (
	"context"
	"time"
)

// DefaultBusinessNameFallback is used when the owner has no display name.
const DefaultBusinessNameFallback = "beauté"

// Business is the tenant. It owns every client, service and quote.
type Business struct {
	ID        string // UUID
	UserID    string // Owner, unique across businesses
	Name      string
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultBusinessName derives the name given to an automatically created business.
func DefaultBusinessName(ownerName string) string {
	if ownerName == "" {
		ownerName = DefaultBusinessNameFallback
	}
	return "Institut de " + ownerName
}

// BusinessRepository defines data access for businesses.
// Create returns ErrDuplicate when the owner already has a business.
type BusinessRepository interface {
	Create(ctx context.Context, business *Business) error
	GetByUserID(ctx context.Context, userID string) (*Business, error)
	GetByID(ctx context.Context, id string) (*Business, error)
}
