package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/solkant/internal/domain"
	"github.com/aryan0dhankhar/solkant/internal/domain/mocks"
	"github.com/aryan0dhankhar/solkant/internal/security/audit"
	"github.com/aryan0dhankhar/solkant/pkg/cache"
)

type fixture struct {
	users       *mocks.MockUserRepository
	accounts    *mocks.MockAccountRepository
	businesses  *mocks.MockBusinessRepository
	clients     *mocks.MockClientRepository
	services    *mocks.MockServiceRepository
	quotes      *mocks.MockQuoteRepository
	provisioner *TenantProvisioner
	auth        *AuthService
	resolver    *TenantResolver
	flags       map[string]bool
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := quietLogger()
	f := &fixture{
		users:      mocks.NewMockUserRepository(),
		accounts:   mocks.NewMockAccountRepository(),
		businesses: mocks.NewMockBusinessRepository(),
		clients:    mocks.NewMockClientRepository(),
		services:   mocks.NewMockServiceRepository(),
		quotes:     mocks.NewMockQuoteRepository(),
		flags:      map[string]bool{},
	}
	f.users.Businesses = f.businesses
	auditLog := audit.NewLogger(log)
	f.provisioner = NewTenantProvisioner(f.businesses, f.users, auditLog, log)
	f.auth = NewAuthService(f.users, f.accounts, f.provisioner, log).
		WithFlags(func(name string) bool { return f.flags[name] })
	f.resolver = NewTenantResolver(f.businesses, cache.New[string](16, time.Minute), log)
	return f
}

func (f *fixture) addPasswordUser(t *testing.T, email, password, name string) *domain.User {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	u := &domain.User{Email: email, PasswordHash: hash, Name: name}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) addOAuthUser(t *testing.T, email, subject, name string) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, Name: name}
	require.NoError(t, f.users.Create(context.Background(), u))
	require.NoError(t, f.accounts.Create(context.Background(), &domain.Account{
		UserID: u.ID, Provider: domain.ProviderGoogle, ProviderAccountID: subject,
	}))
	return u
}

func (f *fixture) addBusiness(t *testing.T, userID string) *domain.Business {
	t.Helper()
	b := &domain.Business{UserID: userID, Name: "Institut"}
	require.NoError(t, f.businesses.Create(context.Background(), b))
	return b
}

func sessionFor(userID string) *domain.Session {
	return &domain.Session{User: domain.SessionUser{ID: userID}}
}

func strPtr(s string) *string { return &s }
