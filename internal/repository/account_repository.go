package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/aryan0dhankhar/solkant/internal/domain"
)

// PostgresAccountRepository stores provider account links
type PostgresAccountRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewPostgresAccountRepository(db *sql.DB, logger *slog.Logger) *PostgresAccountRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresAccountRepository{db: db, logger: logger}
}

// Create links a provider identity to a user
func (r *PostgresAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (user_id, provider, provider_account_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, account.UserID, account.Provider, account.ProviderAccountID).
		Scan(&account.ID, &account.CreatedAt)
	if err != nil {
		r.logger.Error("failed to create account",
			slog.String("provider", account.Provider),
			slog.String("user_id", account.UserID),
			slog.String("error", err.Error()),
		)
		return mapError("create account", err)
	}
	return nil
}

// GetByProvider finds the link for a provider subject
func (r *PostgresAccountRepository) GetByProvider(ctx context.Context, provider, providerAccountID string) (*domain.Account, error) {
	a := &domain.Account{}
	query := `
		SELECT id, user_id, provider, provider_account_id, created_at
		FROM accounts
		WHERE provider = $1 AND provider_account_id = $2
	`
	err := r.db.QueryRowContext(ctx, query, provider, providerAccountID).
		Scan(&a.ID, &a.UserID, &a.Provider, &a.ProviderAccountID, &a.CreatedAt)
	if err != nil {
		return nil, mapError("get account", err)
	}
	return a, nil
}
