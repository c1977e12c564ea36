package repository

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/solkant/internal/domain"
	"github.com/aryan0dhankhar/solkant/internal/migrations"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping postgres repository tests")
	}
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	runner, err := migrations.New(db, quietLogger())
	require.NoError(t, err)
	require.NoError(t, runner.Up(context.Background()))
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func createOwner(t *testing.T, ctx context.Context, users *PostgresUserRepository, businesses *PostgresBusinessRepository) (*domain.User, *domain.Business) {
	t.Helper()
	u := &domain.User{Email: uuid.NewString() + "@example.com", Name: "Owner"}
	require.NoError(t, users.Create(ctx, u))
	b := &domain.Business{UserID: u.ID, Name: domain.DefaultBusinessName(u.Name), Email: u.Email}
	require.NoError(t, businesses.Create(ctx, b))
	return u, b
}

func TestBusinessRepository_OnePerUser(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	users := NewPostgresUserRepository(db, quietLogger())
	businesses := NewPostgresBusinessRepository(db, quietLogger())

	u, b := createOwner(t, ctx, users, businesses)

	err := businesses.Create(ctx, &domain.Business{UserID: u.ID, Name: "second"})
	require.ErrorIs(t, err, domain.ErrDuplicate)

	got, err := businesses.GetByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	users := NewPostgresUserRepository(db, quietLogger())

	email := uuid.NewString() + "@example.com"
	require.NoError(t, users.Create(ctx, &domain.User{Email: email}))
	err := users.Create(ctx, &domain.User{Email: email})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = users.GetByEmail(ctx, "missing-"+email)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClientRepository_CrossTenantIsNotFound(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	users := NewPostgresUserRepository(db, quietLogger())
	businesses := NewPostgresBusinessRepository(db, quietLogger())
	clients := NewPostgresClientRepository(db, quietLogger())

	_, a := createOwner(t, ctx, users, businesses)
	_, b := createOwner(t, ctx, users, businesses)

	c := &domain.Client{BusinessID: b.ID, FirstName: "Léa", LastName: "Martin"}
	require.NoError(t, clients.Create(ctx, c))

	_, err := clients.GetByID(ctx, a.ID, c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	c.BusinessID = a.ID
	c.FirstName = "Hijack"
	assert.ErrorIs(t, clients.Update(ctx, c), domain.ErrNotFound)
	assert.ErrorIs(t, clients.Delete(ctx, a.ID, c.ID), domain.ErrNotFound)

	got, err := clients.GetByID(ctx, b.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Léa", got.FirstName)
}

func TestQuoteRepository_CreateAndLoadItems(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	users := NewPostgresUserRepository(db, quietLogger())
	businesses := NewPostgresBusinessRepository(db, quietLogger())
	clients := NewPostgresClientRepository(db, quietLogger())
	quotes := NewPostgresQuoteRepository(db, quietLogger())

	_, b := createOwner(t, ctx, users, businesses)
	c := &domain.Client{BusinessID: b.ID, FirstName: "Léa", LastName: "Martin"}
	require.NoError(t, clients.Create(ctx, c))

	q := &domain.Quote{
		BusinessID: b.ID,
		ClientID:   c.ID,
		Number:     "DEV-2026-0001",
		Status:     domain.QuoteDraft,
		Items: []domain.QuoteItem{
			{Description: "Soin visage", Quantity: 2, UnitPrice: 45},
		},
	}
	q.ComputeTotal()
	require.NoError(t, quotes.Create(ctx, q))

	got, err := quotes.GetByID(ctx, b.ID, q.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 90.0, got.Total)

	n, err := quotes.CountForYear(ctx, b.ID, got.CreatedAt.Year())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestClientRepository_MalformedIDAndReferencedDelete(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	users := NewPostgresUserRepository(db, quietLogger())
	businesses := NewPostgresBusinessRepository(db, quietLogger())
	clients := NewPostgresClientRepository(db, quietLogger())
	quotes := NewPostgresQuoteRepository(db, quietLogger())

	_, b := createOwner(t, ctx, users, businesses)

	_, err := clients.GetByID(ctx, b.ID, "abc")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, clients.Delete(ctx, b.ID, "abc"), domain.ErrNotFound)

	c := &domain.Client{BusinessID: b.ID, FirstName: "Léa", LastName: "Martin"}
	require.NoError(t, clients.Create(ctx, c))
	q := &domain.Quote{
		BusinessID: b.ID,
		ClientID:   c.ID,
		Number:     "DEV-2026-0001",
		Status:     domain.QuoteDraft,
		Items:      []domain.QuoteItem{{Description: "Soin", Quantity: 1, UnitPrice: 30}},
	}
	q.ComputeTotal()
	require.NoError(t, quotes.Create(ctx, q))

	assert.ErrorIs(t, clients.Delete(ctx, b.ID, c.ID), domain.ErrInUse)
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	users := NewPostgresUserRepository(db, quietLogger())

	u := &domain.User{Email: uuid.NewString() + "@example.com"}
	require.NoError(t, users.Create(ctx, u))
	require.NoError(t, users.UpdatePassword(ctx, u.ID, "$2a$10$hash"))

	got, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$hash", got.PasswordHash)

	assert.ErrorIs(t, users.UpdatePassword(ctx, uuid.NewString(), "x"), domain.ErrNotFound)
}
