package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joonwoo/stockfolio/backend/pkg/config"
)

// DB wraps the pgxpool.Pool and provides additional functionality
// ⭐ SSOT: DB 연결은 이 패키지에서만 생성
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a new database connection pool
// ⭐ SSOT: 유일하게 pgxpool.New()를 호출하는 함수
//
// 보유 종목과 관심 종목 두 테이블만 다루는 서비스라 풀 기본값도
// 작게 잡는다 (config 참조).
func New(cfg *config.Config) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// schemaDDL creates the portfolio schema idempotently. The column set
// matches internal/portfolio and internal/watchlist repositories.
var schemaDDL = []string{
	`CREATE SCHEMA IF NOT EXISTS portfolio`,
	`CREATE TABLE IF NOT EXISTS portfolio.holdings (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		symbol     TEXT NOT NULL,
		name       TEXT NOT NULL,
		market     TEXT NOT NULL,
		currency   TEXT NOT NULL,
		avg_price  DOUBLE PRECISION NOT NULL,
		quantity   BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS holdings_user_idx ON portfolio.holdings (user_id)`,
	`CREATE TABLE IF NOT EXISTS portfolio.watchlist (
		user_id  TEXT NOT NULL,
		symbol   TEXT NOT NULL,
		name     TEXT NOT NULL,
		market   TEXT NOT NULL,
		currency TEXT NOT NULL,
		added_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (user_id, symbol)
	)`,
}

// EnsureSchema creates the holdings and watchlist tables when missing.
// Safe to run on every startup.
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, ddl := range schemaDDL {
		if _, err := db.Pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// Close closes the database connection pool
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// Ping checks if the database is accessible
func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}
