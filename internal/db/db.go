// Package db provides database connection handling for the emergency API.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // postgres driver
)

const (
	// DefaultMaxOpenConns caps concurrent connections to Postgres.
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the idle connection pool size.
	DefaultMaxIdleConns = 5
	// DefaultConnMaxLifetime bounds connection reuse so load balancer
	// failovers are picked up.
	DefaultConnMaxLifetime = 30 * time.Minute

	pingTimeout = 5 * time.Second
)

// Open opens a Postgres connection pool and verifies it with a ping.
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	conn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	conn.SetMaxOpenConns(DefaultMaxOpenConns)
	conn.SetMaxIdleConns(DefaultMaxIdleConns)
	conn.SetConnMaxLifetime(DefaultConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return conn, nil
}
