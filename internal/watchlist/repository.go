package watchlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joonwoo/stockfolio/backend/internal/stock"
)

// maxEntries caps a single user's watchlist.
const maxEntries = 50

var (
	ErrWatchlistFull = errors.New("watchlist is full")
	ErrAlreadyExists = errors.New("symbol already on watchlist")
	ErrEntryNotFound = errors.New("watchlist entry not found")
)

// Entry is one watched symbol.
type Entry struct {
	Symbol   string         `json:"symbol"`
	Name     string         `json:"name"`
	Market   stock.Market   `json:"market"`
	Currency stock.Currency `json:"currency"`
	AddedAt  time.Time      `json:"addedAt"`
}

// Repository handles watchlist persistence
// ⭐ SSOT: 관심 종목 저장/조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns a user's watched symbols in the order they were added.
func (r *Repository) List(ctx context.Context, userID string) ([]Entry, error) {
	query := `
		SELECT symbol, name, market, currency, added_at
		FROM portfolio.watchlist
		WHERE user_id = $1
		ORDER BY added_at
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Symbol, &e.Name, &e.Market, &e.Currency, &e.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan watchlist entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating watchlist: %w", err)
	}
	return entries, nil
}

// Add appends a symbol, enforcing the per-user cap and uniqueness.
func (r *Repository) Add(ctx context.Context, userID string, entry Entry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var count int
	err = tx.QueryRow(ctx, "SELECT COUNT(*) FROM portfolio.watchlist WHERE user_id = $1", userID).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to count watchlist: %w", err)
	}
	if count >= maxEntries {
		return ErrWatchlistFull
	}

	query := `
		INSERT INTO portfolio.watchlist (user_id, symbol, name, market, currency, added_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id, symbol) DO NOTHING
	`
	tag, err := tx.Exec(ctx, query, userID, entry.Symbol, entry.Name, entry.Market, entry.Currency)
	if err != nil {
		return fmt.Errorf("failed to insert watchlist entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyExists
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Remove deletes one watched symbol.
func (r *Repository) Remove(ctx context.Context, userID, symbol string) error {
	tag, err := r.pool.Exec(ctx,
		"DELETE FROM portfolio.watchlist WHERE user_id = $1 AND symbol = $2", userID, symbol)
	if err != nil {
		return fmt.Errorf("failed to delete watchlist entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}
