package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/solkant/internal/domain"
)

func TestAuthorize_Success(t *testing.T) {
	f := newFixture(t)
	u := f.addPasswordUser(t, "alice@example.com", "CorrectPass1!", "Alice")

	identity, err := f.auth.Authorize(context.Background(), "alice@example.com", "CorrectPass1!")
	require.NoError(t, err)
	assert.Equal(t, domain.Identity{ID: u.ID, Email: "alice@example.com", Name: "Alice"}, identity)
}

// u1 signs in with the wrong password.
func TestAuthorize_WrongPassword(t *testing.T) {
	f := newFixture(t)
	f.addPasswordUser(t, "u1@example.com", "CorrectPass1!", "")

	_, err := f.auth.Authorize(context.Background(), "u1@example.com", "WrongPass")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

// u2 only ever signed in with Google and has no password hash.
func TestAuthorize_OAuthOnlyUser(t *testing.T) {
	f := newFixture(t)
	f.addOAuthUser(t, "u2@example.com", "google-u2", "U2")

	for _, pw := range []string{"anything", "", "CorrectPass1!"} {
		_, err := f.auth.Authorize(context.Background(), "u2@example.com", pw)
		if pw == "" {
			assert.ErrorIs(t, err, domain.ErrCredentialsRequired)
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	}
}

func TestAuthorize_UnknownEmailIndistinguishable(t *testing.T) {
	f := newFixture(t)
	f.addPasswordUser(t, "known@example.com", "CorrectPass1!", "")

	_, unknownErr := f.auth.Authorize(context.Background(), "nobody@example.com", "CorrectPass1!")
	_, wrongErr := f.auth.Authorize(context.Background(), "known@example.com", "WrongPass")

	require.Error(t, unknownErr)
	assert.Equal(t, wrongErr, unknownErr)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestAuthorize_EmailMatchedExactly(t *testing.T) {
	f := newFixture(t)
	f.addPasswordUser(t, "Alice@example.com", "CorrectPass1!", "")

	_, err := f.auth.Authorize(context.Background(), "alice@example.com", "CorrectPass1!")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthorize_RepositoryFailure(t *testing.T) {
	f := newFixture(t)
	f.users.GetErr = errors.New("connection reset")

	_, err := f.auth.Authorize(context.Background(), "a@example.com", "pw")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestRegister_CreatesUserAndBusiness(t *testing.T) {
	f := newFixture(t)

	identity, business, err := f.auth.Register(context.Background(), RegisterInput{
		Email:    "claire@example.com",
		Password: "Password123",
		Name:     strPtr("Claire"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, identity.ID)
	assert.Equal(t, "Institut de Claire", business.Name)
	assert.Equal(t, identity.ID, business.UserID)

	signedIn, err := f.auth.Authorize(context.Background(), "claire@example.com", "Password123")
	require.NoError(t, err)
	assert.Equal(t, identity.ID, signedIn.ID)
}

func TestRegister_ExplicitBusinessName(t *testing.T) {
	f := newFixture(t)
	_, business, err := f.auth.Register(context.Background(), RegisterInput{
		Email:        "a@example.com",
		Password:     "Password123",
		BusinessName: strPtr("Beauté Divine"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Beauté Divine", business.Name)
}

func TestRegister_Errors(t *testing.T) {
	f := newFixture(t)
	f.addPasswordUser(t, "taken@example.com", "Password123", "")

	_, _, err := f.auth.Register(context.Background(), RegisterInput{Email: "taken@example.com", Password: "Password123"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	_, _, err = f.auth.Register(context.Background(), RegisterInput{Email: "new@example.com", Password: "short"})
	assert.ErrorIs(t, err, domain.ErrWeakPassword)

	_, _, err = f.auth.Register(context.Background(), RegisterInput{Email: "", Password: "Password123"})
	assert.ErrorIs(t, err, domain.ErrCredentialsRequired)
}

func TestLinkOAuthIdentity_NewUser(t *testing.T) {
	f := newFixture(t)
	profile := domain.OAuthProfile{
		Provider: domain.ProviderGoogle, Subject: "g-1", Email: "new@example.com",
		EmailVerified: true, Name: "New", Picture: "https://img/x.png",
	}

	user, err := f.auth.LinkOAuthIdentity(context.Background(), profile)
	require.NoError(t, err)
	assert.False(t, user.HasPassword())
	assert.NotNil(t, user.EmailVerified)
	assert.Equal(t, "https://img/x.png", user.Image)

	again, err := f.auth.LinkOAuthIdentity(context.Background(), profile)
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
}

func TestLinkOAuthIdentity_EmailBelongsToOtherUser(t *testing.T) {
	f := newFixture(t)
	existing := f.addPasswordUser(t, "shared@example.com", "Password123", "")
	profile := domain.OAuthProfile{Provider: domain.ProviderGoogle, Subject: "g-2", Email: "shared@example.com"}

	_, err := f.auth.LinkOAuthIdentity(context.Background(), profile)
	assert.ErrorIs(t, err, domain.ErrOAuthAccountNotLinked)

	f.flags[FlagDangerousEmailLinking] = true
	user, err := f.auth.LinkOAuthIdentity(context.Background(), profile)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, user.ID)

	acc, err := f.accounts.GetByProvider(context.Background(), domain.ProviderGoogle, "g-2")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, acc.UserID)
}

func TestLinkOAuthIdentity_CreateFailure(t *testing.T) {
	f := newFixture(t)
	f.users.CreateErr = errors.New("db down")

	_, err := f.auth.LinkOAuthIdentity(context.Background(), domain.OAuthProfile{
		Provider: domain.ProviderGoogle, Subject: "g-3", Email: "x@example.com",
	})
	assert.ErrorIs(t, err, domain.ErrOAuthCreateAccount)
}

func TestLinkOAuthIdentity_MissingSubject(t *testing.T) {
	f := newFixture(t)
	_, err := f.auth.LinkOAuthIdentity(context.Background(), domain.OAuthProfile{Provider: domain.ProviderGoogle})
	assert.ErrorIs(t, err, domain.ErrOAuthCreateAccount)
}

// u3 is a new Google user named Claire.
func TestSignInWithOAuth_FirstSignInCreatesBusiness(t *testing.T) {
	f := newFixture(t)

	identity, err := f.auth.SignInWithOAuth(context.Background(), domain.OAuthProfile{
		Provider: domain.ProviderGoogle, Subject: "g-u3", Email: "u3@example.com", Name: "Claire",
	})
	require.NoError(t, err)

	b, err := f.businesses.GetByUserID(context.Background(), identity.ID)
	require.NoError(t, err)
	assert.Equal(t, "Institut de Claire", b.Name)
	assert.Equal(t, identity.ID, b.UserID)
	assert.Equal(t, "u3@example.com", b.Email)
	assert.Equal(t, 1, f.businesses.Count(identity.ID))
}

func TestSetPassword_ReplacesHash(t *testing.T) {
	f := newFixture(t)
	f.addPasswordUser(t, "alice@example.com", "OldPassword1", "Alice")
	ctx := context.Background()

	require.NoError(t, f.auth.SetPassword(ctx, " alice@example.com ", "NewPassword2"))

	_, err := f.auth.Authorize(ctx, "alice@example.com", "OldPassword1")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = f.auth.Authorize(ctx, "alice@example.com", "NewPassword2")
	assert.NoError(t, err)
}

func TestSetPassword_OAuthOnlyUserGainsCredentials(t *testing.T) {
	f := newFixture(t)
	u := f.addOAuthUser(t, "u2@example.com", "google-u2", "U2")
	ctx := context.Background()

	require.NoError(t, f.auth.SetPassword(ctx, "u2@example.com", "Password123"))

	identity, err := f.auth.Authorize(ctx, "u2@example.com", "Password123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, identity.ID)
}

func TestSetPassword_Errors(t *testing.T) {
	f := newFixture(t)
	f.addPasswordUser(t, "alice@example.com", "OldPassword1", "Alice")
	ctx := context.Background()

	assert.ErrorIs(t, f.auth.SetPassword(ctx, "", "Password123"), domain.ErrCredentialsRequired)
	assert.ErrorIs(t, f.auth.SetPassword(ctx, "alice@example.com", "short"), domain.ErrWeakPassword)
	assert.ErrorIs(t, f.auth.SetPassword(ctx, "nobody@example.com", "Password123"), domain.ErrNotFound)
}

func TestRegister_BusinessFailureKeepsUserForBackfill(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.businesses.CreateErr = errors.New("disk full")

	_, _, err := f.auth.Register(ctx, RegisterInput{Email: "nina@example.com", Password: "Password123", Name: strPtr("Nina")})
	require.Error(t, err)

	identity, err := f.auth.Authorize(ctx, "nina@example.com", "Password123")
	require.NoError(t, err, "the user row is kept and can sign in")
	_, _, err = f.auth.Register(ctx, RegisterInput{Email: "nina@example.com", Password: "Password123"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	f.businesses.CreateErr = nil
	report, err := f.provisioner.Backfill(ctx)
	require.NoError(t, err)
	assert.Equal(t, BackfillReport{Scanned: 1, Created: 1}, report)

	biz, err := f.businesses.GetByUserID(ctx, identity.ID)
	require.NoError(t, err)
	assert.Equal(t, "Institut de Nina", biz.Name)
}
