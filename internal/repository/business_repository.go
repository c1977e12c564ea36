package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/aryan0dhankhar/solkant/internal/domain"
)

// PostgresBusinessRepository implements domain.BusinessRepository using PostgreSQL.
// The businesses.user_id unique index makes Create safe under concurrent sign-ins.
type PostgresBusinessRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresBusinessRepository creates a new business repository
func NewPostgresBusinessRepository(db *sql.DB, logger *slog.Logger) *PostgresBusinessRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresBusinessRepository{db: db, logger: logger}
}

const businessColumns = `id, user_id, name, email, phone, address, created_at, updated_at`

func scanBusiness(row rowScanner) (*domain.Business, error) {
	var (
		b                     domain.Business
		email, phone, address sql.NullString
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.Name, &email, &phone, &address, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.Email = email.String
	b.Phone = phone.String
	b.Address = address.String
	return &b, nil
}

// Create inserts a business. An owner that already has one yields domain.ErrDuplicate.
func (r *PostgresBusinessRepository) Create(ctx context.Context, business *domain.Business) error {
	query := `
		INSERT INTO businesses (user_id, name, email, phone, address)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		business.UserID,
		business.Name,
		nullString(business.Email),
		nullString(business.Phone),
		nullString(business.Address),
	).Scan(&business.ID, &business.CreatedAt, &business.UpdatedAt)
	if err != nil {
		return mapError("create business", err)
	}
	return nil
}

// GetByUserID retrieves the business owned by a user
func (r *PostgresBusinessRepository) GetByUserID(ctx context.Context, userID string) (*domain.Business, error) {
	query := `SELECT ` + businessColumns + ` FROM businesses WHERE user_id = $1`
	b, err := scanBusiness(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, mapError("get business by user", err)
	}
	return b, nil
}

// GetByID retrieves a business by ID
func (r *PostgresBusinessRepository) GetByID(ctx context.Context, id string) (*domain.Business, error) {
	query := `SELECT ` + businessColumns + ` FROM businesses WHERE id = $1`
	b, err := scanBusiness(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError("get business", err)
	}
	return b, nil
}
