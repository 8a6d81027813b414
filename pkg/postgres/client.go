// Package postgres opens the lib/pq connection pool behind the run ledger.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/term-indexer/pkg/config"
	_ "github.com/lib/pq"
)

const pingTimeout = 5 * time.Second

// Client owns the pooled *sql.DB.
type Client struct {
	DB     *sql.DB
	logger *slog.Logger
}

// Open builds the pool and pings the server once. An unreachable server is an
// error and leaves nothing open.
func Open(ctx context.Context, cfg config.PostgresConfig) (*Client, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres at %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	logger := slog.Default().With("component", "postgres", "database", cfg.Database)
	logger.Info("connected to run ledger database", "host", cfg.Host, "port", cfg.Port)
	return &Client{DB: db, logger: logger}, nil
}

func (c *Client) Close() error {
	c.logger.Debug("closing connection pool")
	return c.DB.Close()
}
