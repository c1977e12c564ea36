package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/aryan0dhankhar/solkant/internal/domain"
)

// PostgresQuoteRepository stores quotes and their lines
type PostgresQuoteRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewPostgresQuoteRepository(db *sql.DB, logger *slog.Logger) *PostgresQuoteRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresQuoteRepository{db: db, logger: logger}
}

const quoteColumns = `id, business_id, client_id, number, status, valid_until, notes, total, created_at, updated_at`

func scanQuote(row rowScanner) (*domain.Quote, error) {
	var (
		q          domain.Quote
		validUntil sql.NullTime
	)
	err := row.Scan(&q.ID, &q.BusinessID, &q.ClientID, &q.Number, &q.Status,
		&validUntil, &q.Notes, &q.Total, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if validUntil.Valid {
		t := validUntil.Time
		q.ValidUntil = &t
	}
	return &q, nil
}

// Create inserts the quote and its items in one transaction.
// A number already used by the business yields domain.ErrDuplicate.
func (r *PostgresQuoteRepository) Create(ctx context.Context, q *domain.Quote) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin quote tx: %w", err)
	}
	defer tx.Rollback() // no-op after Commit

	query := `
		INSERT INTO quotes (business_id, client_id, number, status, valid_until, notes, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRowContext(ctx, query,
		q.BusinessID, q.ClientID, q.Number, q.Status, q.ValidUntil, q.Notes, q.Total,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return mapError("create quote", err)
	}

	itemQuery := `
		INSERT INTO quote_items (quote_id, service_id, description, quantity, unit_price, position)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	for i := range q.Items {
		item := &q.Items[i]
		err := tx.QueryRowContext(ctx, itemQuery,
			q.ID, item.ServiceID, item.Description, item.Quantity, item.UnitPrice, i,
		).Scan(&item.ID)
		if err != nil {
			return mapError("create quote item", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit quote: %w", err)
	}
	r.logger.Debug("quote created",
		slog.String("business_id", q.BusinessID),
		slog.String("number", q.Number),
	)
	return nil
}

// GetByID loads a quote with its items, filtered by business
func (r *PostgresQuoteRepository) GetByID(ctx context.Context, businessID, id string) (*domain.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE id = $1 AND business_id = $2`
	q, err := scanQuote(r.db.QueryRowContext(ctx, query, id, businessID))
	if err != nil {
		return nil, mapError("get quote", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, service_id, description, quantity, unit_price
		FROM quote_items
		WHERE quote_id = $1
		ORDER BY position
	`, q.ID)
	if err != nil {
		return nil, mapError("list quote items", err)
	}
	defer rows.Close()

	q.Items = []domain.QuoteItem{}
	for rows.Next() {
		var item domain.QuoteItem
		if err := rows.Scan(&item.ID, &item.ServiceID, &item.Description, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, mapError("scan quote item", err)
		}
		q.Items = append(q.Items, item)
	}
	return q, rows.Err()
}

// List returns the business quotes without items, newest number first
func (r *PostgresQuoteRepository) List(ctx context.Context, businessID string) ([]*domain.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE business_id = $1 ORDER BY number DESC`
	rows, err := r.db.QueryContext(ctx, query, businessID)
	if err != nil {
		return nil, mapError("list quotes", err)
	}
	defer rows.Close()

	var out []*domain.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, mapError("scan quote", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *PostgresQuoteRepository) UpdateStatus(ctx context.Context, businessID, id string, status domain.QuoteStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE quotes SET status = $1, updated_at = NOW() WHERE id = $2 AND business_id = $3`,
		status, id, businessID,
	)
	if err != nil {
		return mapError("update quote status", err)
	}
	return requireAffected(res)
}

// Delete removes a quote; items go with it through ON DELETE CASCADE
func (r *PostgresQuoteRepository) Delete(ctx context.Context, businessID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM quotes WHERE id = $1 AND business_id = $2`, id, businessID)
	if err != nil {
		return mapError("delete quote", err)
	}
	return requireAffected(res)
}

// CountForYear counts the quotes a business created during a calendar year
func (r *PostgresQuoteRepository) CountForYear(ctx context.Context, businessID string, year int) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM quotes WHERE business_id = $1 AND EXTRACT(YEAR FROM created_at) = $2`,
		businessID, year,
	).Scan(&n)
	if err != nil {
		return 0, mapError("count quotes", err)
	}
	return n, nil
}
