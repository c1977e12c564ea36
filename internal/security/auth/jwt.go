package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aryan0dhankhar/solkant/internal/domain"
)

const (
	DefaultIssuer    = "solkant"
	DefaultMaxAge    = 30 * 24 * time.Hour
	DefaultUpdateAge = 24 * time.Hour
)

// Claims carried by a session token. ID is set once at sign-in and copied
// unchanged on every refresh, Provider is empty for credentials sign-ins.
type Claims struct {
	ID       string `json:"id"`
	Provider string `json:"provider,omitempty"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Picture  string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies stateless HS256 session tokens.
// It is immutable after construction.
type TokenIssuer struct {
	secret    []byte
	issuer    string
	maxAge    time.Duration
	updateAge time.Duration
	now       func() time.Time
}

// NewTokenIssuer builds an issuer. Zero durations fall back to the defaults.
func NewTokenIssuer(secret string, maxAge, updateAge time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: session secret is empty", domain.ErrConfiguration)
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	if updateAge <= 0 {
		updateAge = DefaultUpdateAge
	}
	return &TokenIssuer{
		secret:    []byte(secret),
		issuer:    DefaultIssuer,
		maxAge:    maxAge,
		updateAge: updateAge,
		now:       time.Now,
	}, nil
}

// MaxAge is the lifetime of a freshly issued token.
func (ti *TokenIssuer) MaxAge() time.Duration { return ti.maxAge }

// Issue mints a token for a signed-in identity.
func (ti *TokenIssuer) Issue(identity domain.Identity, provider string) (string, *Claims, error) {
	if identity.ID == "" {
		return "", nil, fmt.Errorf("user id required")
	}
	if provider == domain.ProviderCredentials {
		provider = ""
	}
	claims := &Claims{
		ID:       identity.ID,
		Provider: provider,
		Email:    identity.Email,
		Name:     identity.Name,
		Picture:  identity.Image,
	}
	token, err := ti.sign(claims)
	if err != nil {
		return "", nil, err
	}
	return token, claims, nil
}

func (ti *TokenIssuer) sign(claims *Claims) (string, error) {
	now := ti.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.ID,
		Issuer:    ti.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ti.maxAge)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ti.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token. It has no side effects.
func (ti *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, domain.ErrSessionRequired
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ti.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(ti.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ti.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSessionRequired, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, fmt.Errorf("%w: invalid token claims", domain.ErrSessionRequired)
	}
	return claims, nil
}

// NeedsRefresh reports whether the token is older than the update age.
func (ti *TokenIssuer) NeedsRefresh(claims *Claims) bool {
	if claims == nil || claims.IssuedAt == nil {
		return false
	}
	return ti.now().Sub(claims.IssuedAt.Time) >= ti.updateAge
}

// Refresh re-signs the claims with a new expiry. Identity claims are copied as is.
func (ti *TokenIssuer) Refresh(claims *Claims) (string, *Claims, error) {
	if claims == nil || claims.ID == "" {
		return "", nil, errors.New("cannot refresh empty claims")
	}
	next := &Claims{
		ID:       claims.ID,
		Provider: claims.Provider,
		Email:    claims.Email,
		Name:     claims.Name,
		Picture:  claims.Picture,
	}
	token, err := ti.sign(next)
	if err != nil {
		return "", nil, err
	}
	return token, next, nil
}

// Session materializes the session view of verified claims.
func Session(claims *Claims) *domain.Session {
	return &domain.Session{
		User: domain.SessionUser{
			ID:    claims.ID,
			Email: claims.Email,
			Name:  claims.Name,
			Image: claims.Picture,
		},
		Provider: claims.Provider,
	}
}

// ExtractToken returns the token of a "Bearer <token>" header
func ExtractToken(authHeader string) (string, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", fmt.Errorf("invalid authorization header")
	}
	return parts[1], nil
}
