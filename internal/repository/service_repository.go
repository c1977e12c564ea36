package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/aryan0dhankhar/solkant/internal/domain"
)

// PostgresServiceRepository stores the tenant-scoped service catalog
type PostgresServiceRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewPostgresServiceRepository(db *sql.DB, logger *slog.Logger) *PostgresServiceRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresServiceRepository{db: db, logger: logger}
}

const serviceColumns = `id, business_id, name, description, price, duration, category, is_active, created_at, updated_at`

func scanService(row rowScanner) (*domain.Service, error) {
	var (
		s        domain.Service
		duration sql.NullInt64
	)
	err := row.Scan(&s.ID, &s.BusinessID, &s.Name, &s.Description, &s.Price,
		&duration, &s.Category, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if duration.Valid {
		d := int(duration.Int64)
		s.Duration = &d
	}
	return &s, nil
}

func (r *PostgresServiceRepository) Create(ctx context.Context, s *domain.Service) error {
	query := `
		INSERT INTO services (business_id, name, description, price, duration, category, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		s.BusinessID, s.Name, s.Description, s.Price, s.Duration, s.Category, s.IsActive,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		r.logger.Error("failed to create service",
			slog.String("business_id", s.BusinessID),
			slog.String("error", err.Error()),
		)
		return mapError("create service", err)
	}
	return nil
}

func (r *PostgresServiceRepository) GetByID(ctx context.Context, businessID, id string) (*domain.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = $1 AND business_id = $2`
	s, err := scanService(r.db.QueryRowContext(ctx, query, id, businessID))
	if err != nil {
		return nil, mapError("get service", err)
	}
	return s, nil
}

func (r *PostgresServiceRepository) List(ctx context.Context, businessID string, activeOnly bool) ([]*domain.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE business_id = $1 AND ($2 = false OR is_active) ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query, businessID, activeOnly)
	if err != nil {
		return nil, mapError("list services", err)
	}
	defer rows.Close()

	var out []*domain.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, mapError("scan service", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresServiceRepository) Update(ctx context.Context, s *domain.Service) error {
	query := `
		UPDATE services
		SET name = $1, description = $2, price = $3, duration = $4, category = $5, is_active = $6, updated_at = NOW()
		WHERE id = $7 AND business_id = $8
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		s.Name, s.Description, s.Price, s.Duration, s.Category, s.IsActive, s.ID, s.BusinessID,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return mapError("update service", err)
	}
	return nil
}

func (r *PostgresServiceRepository) Delete(ctx context.Context, businessID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM services WHERE id = $1 AND business_id = $2`, id, businessID)
	if err != nil {
		return mapError("delete service", err)
	}
	return requireAffected(res)
}
