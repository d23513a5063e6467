package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log"
	"sort"
	"time"

	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Client holds the shared connection pool to the relational store.
type Client struct {
	DB *sql.DB
}

// NewClient opens a bounded connection pool against Postgres. Connection
// establishment timeout is carried in the DSN (connect_timeout).
func NewClient(dsn string) (*Client, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed opening connection to postgres: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(20)
	db.SetConnMaxIdleTime(60 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed pinging postgres: %w", err)
	}

	log.Println("✅ Database connected")

	return &Client{DB: db}, nil
}

// Migrate applies the embedded SQL migrations in lexical order. Each file
// must be idempotent (CREATE TABLE IF NOT EXISTS etc.).
func (c *Client) Migrate(ctx context.Context) error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("failed reading migrations: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		payload, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("failed reading migration %s: %w", name, err)
		}
		if _, err := c.DB.ExecContext(ctx, string(payload)); err != nil {
			return fmt.Errorf("migration %s failed: %w", name, err)
		}
		log.Printf("✅ Migration %s applied", name)
	}

	return nil
}

// Ping checks if the store is reachable.
func (c *Client) Ping(ctx context.Context) error {
	var now time.Time
	return c.DB.QueryRowContext(ctx, "SELECT NOW()").Scan(&now)
}

// Close drains and closes the connection pool.
func (c *Client) Close() error {
	return c.DB.Close()
}
