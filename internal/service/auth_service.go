package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/bcrypt"

	"github.com/aryan0dhankhar/solkant/internal/domain"
	"github.com/aryan0dhankhar/solkant/internal/featureflags"
	"github.com/aryan0dhankhar/solkant/internal/observability/tracing"
)

// FlagDangerousEmailLinking lets an OAuth identity attach to an existing user
// with the same email.
const FlagDangerousEmailLinking = featureflags.DangerousEmailLinking

const minPasswordLength = 8

// AuthService verifies credentials and links provider identities to users
type AuthService struct {
	users       domain.UserRepository
	accounts    domain.AccountRepository
	provisioner *TenantProvisioner
	flags       func(name string) bool
	logger      *slog.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	users domain.UserRepository,
	accounts domain.AccountRepository,
	provisioner *TenantProvisioner,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthService{
		users:       users,
		accounts:    accounts,
		provisioner: provisioner,
		flags:       featureflags.Enabled,
		logger:      logger,
	}
}

// WithFlags overrides the feature flag lookup.
func (s *AuthService) WithFlags(flags func(name string) bool) *AuthService {
	s.flags = flags
	return s
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// burnCompare spends the same bcrypt work as a real comparison so unknown
// emails and password-less users answer in the same time as a wrong password.
func burnCompare(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("solkant-timing-equalizer"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

// Authorize checks an email/password pair. Unknown email, OAuth-only user and
// wrong password all return ErrInvalidCredentials.
func (s *AuthService) Authorize(ctx context.Context, email, password string) (domain.Identity, error) {
	ctx, span := tracing.Tracer().Start(ctx, "auth.Authorize")
	defer span.End()

	if email == "" || password == "" {
		return domain.Identity{}, domain.ErrCredentialsRequired
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			burnCompare(password)
			s.logger.Info("credentials sign-in failed", slog.String("reason", "unknown_email"))
			return domain.Identity{}, domain.ErrInvalidCredentials
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "user lookup failed")
		return domain.Identity{}, fmt.Errorf("lookup user: %w", err)
	}

	if !user.HasPassword() {
		burnCompare(password)
		s.logger.Info("credentials sign-in failed",
			slog.String("reason", "no_password"),
			slog.String("user_id", user.ID),
		)
		return domain.Identity{}, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("credentials sign-in failed",
			slog.String("reason", "wrong_password"),
			slog.String("user_id", user.ID),
		)
		return domain.Identity{}, domain.ErrInvalidCredentials
	}

	span.SetAttributes(attribute.String("user.id", user.ID))
	s.logger.Info("user signed in",
		slog.String("user_id", user.ID),
		slog.String("provider", domain.ProviderCredentials),
	)
	return user.Identity(), nil
}

// RegisterInput is the registration payload
type RegisterInput struct {
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	Name         *string `json:"name"`
	BusinessName *string `json:"businessName"`
}

// Register creates a credentials user together with its business.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (domain.Identity, *domain.Business, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return domain.Identity{}, nil, domain.ErrCredentialsRequired
	}
	if len(in.Password) < minPasswordLength {
		return domain.Identity{}, nil, domain.ErrWeakPassword
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domain.Identity{}, nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.Identity{}, nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return domain.Identity{}, nil, errors.New("failed to register user")
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(deref(in.Name)),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return domain.Identity{}, nil, domain.ErrEmailTaken
		}
		s.logger.Error("failed to create user", slog.String("error", err.Error()))
		return domain.Identity{}, nil, fmt.Errorf("create user: %w", err)
	}

	businessName := strings.TrimSpace(deref(in.BusinessName))
	if businessName == "" {
		businessName = domain.DefaultBusinessName(user.Name)
	}
	business, err := s.provisioner.Provision(ctx, user.Identity(), businessName, SourceRegister)
	if err != nil {
		return domain.Identity{}, nil, fmt.Errorf("create business: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("business_id", business.ID),
	)
	return user.Identity(), business, nil
}

// LinkOAuthIdentity resolves a provider profile to a user, creating the user
// and account link on first sign-in.
func (s *AuthService) LinkOAuthIdentity(ctx context.Context, profile domain.OAuthProfile) (*domain.User, error) {
	if profile.Subject == "" {
		return nil, fmt.Errorf("%w: provider returned no subject", domain.ErrOAuthCreateAccount)
	}

	account, err := s.accounts.GetByProvider(ctx, profile.Provider, profile.Subject)
	switch {
	case err == nil:
		user, err := s.users.GetByID(ctx, account.UserID)
		if err != nil {
			return nil, fmt.Errorf("load linked user: %w", err)
		}
		return user, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	if profile.Email == "" {
		return nil, fmt.Errorf("%w: provider returned no email", domain.ErrOAuthCreateAccount)
	}

	existing, err := s.users.GetByEmail(ctx, profile.Email)
	switch {
	case err == nil:
		if !s.flags(FlagDangerousEmailLinking) {
			s.logger.Warn("oauth identity not linked",
				slog.String("provider", profile.Provider),
				slog.String("user_id", existing.ID),
			)
			return nil, domain.ErrOAuthAccountNotLinked
		}
		if err := s.link(ctx, existing.ID, profile); err != nil {
			return nil, err
		}
		return existing, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	user := &domain.User{
		Email: profile.Email,
		Name:  profile.Name,
		Image: profile.Picture,
	}
	if profile.EmailVerified {
		now := time.Now()
		user.EmailVerified = &now
	}
	if err := s.users.Create(ctx, user); err != nil {
		s.logger.Error("failed to create oauth user",
			slog.String("provider", profile.Provider),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %v", domain.ErrOAuthCreateAccount, err)
	}
	if err := s.link(ctx, user.ID, profile); err != nil {
		return nil, err
	}

	s.logger.Info("oauth user created",
		slog.String("user_id", user.ID),
		slog.String("provider", profile.Provider),
	)
	return user, nil
}

func (s *AuthService) link(ctx context.Context, userID string, profile domain.OAuthProfile) error {
	err := s.accounts.Create(ctx, &domain.Account{
		UserID:            userID,
		Provider:          profile.Provider,
		ProviderAccountID: profile.Subject,
	})
	if err != nil && !errors.Is(err, domain.ErrDuplicate) {
		return fmt.Errorf("%w: link account: %v", domain.ErrOAuthCreateAccount, err)
	}
	return nil
}

// SignInWithOAuth links the profile and makes sure the user has a business.
// Business creation is best effort and never blocks the sign-in.
func (s *AuthService) SignInWithOAuth(ctx context.Context, profile domain.OAuthProfile) (domain.Identity, error) {
	user, err := s.LinkOAuthIdentity(ctx, profile)
	if err != nil {
		return domain.Identity{}, err
	}
	identity := user.Identity()
	s.provisioner.EnsureBusiness(ctx, identity, profile.Provider)
	return identity, nil
}

// SetPassword replaces the password of the user owning email. It also gives
// an OAuth-only user a way to sign in with credentials.
func (s *AuthService) SetPassword(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.ErrCredentialsRequired
	}
	if len(password) < minPasswordLength {
		return domain.ErrWeakPassword
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.logger.Info("password updated", slog.String("user_id", user.ID))
	return nil
}

// HashPassword returns the bcrypt hash stored for credentials users.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
