package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/solkant/internal/domain"
)

const testSecret = "test-secret-that-is-at-least-32-chars!"

func newIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	ti, err := NewTokenIssuer(testSecret, time.Hour, 10*time.Minute)
	require.NoError(t, err)
	return ti
}

func TestNewTokenIssuer_RequiresSecret(t *testing.T) {
	_, err := NewTokenIssuer("", 0, 0)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestNewTokenIssuer_Defaults(t *testing.T) {
	ti, err := NewTokenIssuer(testSecret, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxAge, ti.MaxAge())
	assert.Equal(t, DefaultUpdateAge, ti.updateAge)
}

func TestIssueAndVerify_Google(t *testing.T) {
	ti := newIssuer(t)
	identity := domain.Identity{ID: "u3", Email: "claire@example.com", Name: "Claire"}

	token, _, err := ti.Issue(identity, domain.ProviderGoogle)
	require.NoError(t, err)

	claims, err := ti.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u3", claims.ID)
	assert.Equal(t, "u3", claims.Subject)
	assert.Equal(t, domain.ProviderGoogle, claims.Provider)
	assert.Equal(t, DefaultIssuer, claims.Issuer)

	session := Session(claims)
	assert.Equal(t, "u3", session.User.ID)
	assert.Equal(t, "Claire", session.User.Name)
	assert.Equal(t, domain.ProviderGoogle, session.Provider)
}

func TestIssue_CredentialsHasNoProvider(t *testing.T) {
	ti := newIssuer(t)
	token, claims, err := ti.Issue(domain.Identity{ID: "u1", Email: "a@b.c"}, domain.ProviderCredentials)
	require.NoError(t, err)
	assert.Empty(t, claims.Provider)

	verified, err := ti.Verify(token)
	require.NoError(t, err)
	assert.Empty(t, verified.Provider)
}

func TestIssue_RequiresUserID(t *testing.T) {
	_, _, err := newIssuer(t).Issue(domain.Identity{Email: "a@b.c"}, "")
	assert.Error(t, err)
}

func TestVerify_Rejections(t *testing.T) {
	ti := newIssuer(t)
	token, _, err := ti.Issue(domain.Identity{ID: "u1"}, "")
	require.NoError(t, err)

	other, err := NewTokenIssuer("another-secret-that-is-long-enough!!", time.Hour, 0)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		ti    *TokenIssuer
	}{
		{"empty", "", ti},
		{"garbage", "not.a.token", ti},
		{"wrong secret", token, other},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.ti.Verify(tt.token)
			assert.ErrorIs(t, err, domain.ErrSessionRequired)
		})
	}
}

func TestVerify_Expired(t *testing.T) {
	ti := newIssuer(t)
	issuedAt := time.Now().Add(-2 * time.Hour)
	ti.now = func() time.Time { return issuedAt }
	token, _, err := ti.Issue(domain.Identity{ID: "u1"}, "")
	require.NoError(t, err)

	ti.now = time.Now
	_, err = ti.Verify(token)
	assert.ErrorIs(t, err, domain.ErrSessionRequired)
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	ti := newIssuer(t)
	claims := &Claims{ID: "u1", RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    DefaultIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ti.Verify(token)
	assert.ErrorIs(t, err, domain.ErrSessionRequired)
}

func TestRefresh_KeepsIdentityClaims(t *testing.T) {
	ti := newIssuer(t)
	start := time.Now().Add(-30 * time.Minute)
	ti.now = func() time.Time { return start }
	_, claims, err := ti.Issue(domain.Identity{ID: "u3", Email: "c@example.com"}, domain.ProviderGoogle)
	require.NoError(t, err)

	ti.now = time.Now
	require.True(t, ti.NeedsRefresh(claims))

	token, next, err := ti.Refresh(claims)
	require.NoError(t, err)
	assert.Equal(t, "u3", next.ID)
	assert.Equal(t, domain.ProviderGoogle, next.Provider)
	assert.True(t, next.ExpiresAt.After(claims.ExpiresAt.Time))
	assert.False(t, ti.NeedsRefresh(next))

	verified, err := ti.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u3", verified.ID)
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, TokenFromRequest(r))

	r.Header.Set("Authorization", "Bearer abc")
	assert.Equal(t, "abc", TokenFromRequest(r))

	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "fromcookie"})
	assert.Equal(t, "fromcookie", TokenFromRequest(r))
}

func TestSessionCookie_SetAndClear(t *testing.T) {
	rec := httptest.NewRecorder()
	SetSessionCookie(rec, "tok", time.Now().Add(time.Hour), true)
	ClearSessionCookie(rec, true)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	assert.Equal(t, "tok", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, -1, cookies[1].MaxAge)
}
