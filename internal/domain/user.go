package domain

import (
	"context"
	"time"
)

// User represents an account holder
type User struct {
	ID            string // UUID
	Email         string // Unique, matched exactly as stored
	PasswordHash  string // Bcrypt hash, empty for OAuth-only accounts
	Name          string
	Image         string
	EmailVerified *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasPassword reports whether the user can sign in with credentials.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// Identity is the projection of a User handed to the session layer.
// It never carries the password hash.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Image string `json:"image,omitempty"`
}

// Identity returns the public projection of the user.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email, Name: u.Name, Image: u.Image}
}

// Account links a User to an identity at a third-party provider
type Account struct {
	ID                string
	UserID            string
	Provider          string // e.g. "google"
	ProviderAccountID string // subject asserted by the provider
	CreatedAt         time.Time
}

// OAuthProfile is what a provider asserts about the signed-in user
type OAuthProfile struct {
	Provider      string
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// UserRepository defines data access for users
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	ListWithoutBusiness(ctx context.Context) ([]*User, error)
}

// AccountRepository defines data access for provider accounts
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	GetByProvider(ctx context.Context, provider, providerAccountID string) (*Account, error)
}
