package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/aryan0dhankhar/solkant/internal/domain"
)

// PostgresClientRepository is tenant-scoped: every statement filters on the
// record id and business_id together.
type PostgresClientRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewPostgresClientRepository(db *sql.DB, logger *slog.Logger) *PostgresClientRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresClientRepository{db: db, logger: logger}
}

const clientColumns = `id, business_id, first_name, last_name, email, phone, address, notes, created_at, updated_at`

func scanClient(row rowScanner) (*domain.Client, error) {
	c := &domain.Client{}
	err := row.Scan(&c.ID, &c.BusinessID, &c.FirstName, &c.LastName,
		&c.Email, &c.Phone, &c.Address, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *PostgresClientRepository) Create(ctx context.Context, c *domain.Client) error {
	query := `
		INSERT INTO clients (business_id, first_name, last_name, email, phone, address, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		c.BusinessID, c.FirstName, c.LastName, c.Email, c.Phone, c.Address, c.Notes,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		r.logger.Error("failed to create client",
			slog.String("business_id", c.BusinessID),
			slog.String("error", err.Error()),
		)
		return mapError("create client", err)
	}
	return nil
}

func (r *PostgresClientRepository) GetByID(ctx context.Context, businessID, id string) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1 AND business_id = $2`
	c, err := scanClient(r.db.QueryRowContext(ctx, query, id, businessID))
	if err != nil {
		return nil, mapError("get client", err)
	}
	return c, nil
}

func (r *PostgresClientRepository) List(ctx context.Context, businessID string) ([]*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE business_id = $1 ORDER BY last_name, first_name`
	rows, err := r.db.QueryContext(ctx, query, businessID)
	if err != nil {
		return nil, mapError("list clients", err)
	}
	defer rows.Close()

	var out []*domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, mapError("scan client", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresClientRepository) Update(ctx context.Context, c *domain.Client) error {
	query := `
		UPDATE clients
		SET first_name = $1, last_name = $2, email = $3, phone = $4, address = $5, notes = $6, updated_at = NOW()
		WHERE id = $7 AND business_id = $8
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		c.FirstName, c.LastName, c.Email, c.Phone, c.Address, c.Notes, c.ID, c.BusinessID,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return mapError("update client", err)
	}
	return nil
}

func (r *PostgresClientRepository) Delete(ctx context.Context, businessID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1 AND business_id = $2`, id, businessID)
	if err != nil {
		return mapError("delete client", err)
	}
	return requireAffected(res)
}
