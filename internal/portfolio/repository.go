package portfolio

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrHoldingNotFound is returned when an update or delete targets an
// id the user does not own.
var ErrHoldingNotFound = errors.New("holding not found")

// Repository handles holdings persistence
// ⭐ SSOT: 보유 종목 저장/조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new holdings repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns a user's holdings in insertion order.
func (r *Repository) List(ctx context.Context, userID string) ([]Item, error) {
	query := `
		SELECT id, symbol, name, market, currency, avg_price, quantity, created_at, updated_at
		FROM portfolio.holdings
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		var item Item
		err := rows.Scan(&item.ID, &item.Symbol, &item.Name, &item.Market, &item.Currency,
			&item.AvgPrice, &item.Quantity, &item.CreatedAt, &item.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holdings: %w", err)
	}
	return items, nil
}

// Add inserts a new holding and returns it with the assigned id.
func (r *Repository) Add(ctx context.Context, userID string, item Item) (*Item, error) {
	item.ID = uuid.New().String()

	query := `
		INSERT INTO portfolio.holdings (
			id, user_id, symbol, name, market, currency, avg_price, quantity, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		item.ID, userID, item.Symbol, item.Name, item.Market, item.Currency, item.AvgPrice, item.Quantity,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert holding: %w", err)
	}
	return &item, nil
}

// Update changes a holding's average price and quantity.
func (r *Repository) Update(ctx context.Context, userID, id string, avgPrice float64, quantity int64) (*Item, error) {
	query := `
		UPDATE portfolio.holdings
		SET avg_price = $1, quantity = $2, updated_at = NOW()
		WHERE user_id = $3 AND id = $4
		RETURNING id, symbol, name, market, currency, avg_price, quantity, created_at, updated_at
	`

	var item Item
	err := r.pool.QueryRow(ctx, query, avgPrice, quantity, userID, id).Scan(
		&item.ID, &item.Symbol, &item.Name, &item.Market, &item.Currency,
		&item.AvgPrice, &item.Quantity, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrHoldingNotFound
		}
		return nil, fmt.Errorf("failed to update holding: %w", err)
	}
	return &item, nil
}

// Delete removes one holding.
func (r *Repository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM portfolio.holdings WHERE user_id = $1 AND id = $2", userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrHoldingNotFound
	}
	return nil
}

// Replace swaps a user's entire portfolio in one transaction. Used by
// the CSV import so a bad file never leaves a half-written portfolio.
func (r *Repository) Replace(ctx context.Context, userID string, items []Item) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, "DELETE FROM portfolio.holdings WHERE user_id = $1", userID)
	if err != nil {
		return fmt.Errorf("failed to clear holdings: %w", err)
	}

	query := `
		INSERT INTO portfolio.holdings (
			id, user_id, symbol, name, market, currency, avg_price, quantity, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`

	for _, item := range items {
		id := item.ID
		if id == "" {
			id = uuid.New().String()
		}
		_, err := tx.Exec(ctx, query,
			id, userID, item.Symbol, item.Name, item.Market, item.Currency, item.AvgPrice, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("failed to insert holding %s: %w", item.Symbol, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
