package storage

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/gamevault/server/internal/logger"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	maxConns        = 20
	minConns        = 2
	maxConnLifetime = time.Hour
	connectTimeout  = 10 * time.Second
)

// wraps the Postgres connection pool
type Client struct {
	pool *pgxpool.Pool
}

// connects to Postgres and verifies the connection
func NewClient(ctx context.Context, connString string) (*Client, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}

	cfg.MaxConns = maxConns
	cfg.MinConns = minConns
	cfg.MaxConnLifetime = maxConnLifetime

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("connected to postgres", "max_conns", maxConns)

	return &Client{pool: pool}, nil
}

// returns the underlying pool for repositories
func (c *Client) Pool() *pgxpool.Pool {
	return c.pool
}

// checks the database is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

func (c *Client) Close() {
	c.pool.Close()
}
