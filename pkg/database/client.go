package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Client manages a relational connection pool.
type Client struct {
	db     *sql.DB
	driver string
}

// NewClient opens and pings the database.
func NewClient(opts ...ClientOption) (*Client, error) {
	cfg := &ClientConfig{
		Driver:          DriverSQLite,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		PingTimeout:     5 * time.Second,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.DSN == "" {
		return nil, fmt.Errorf("dsn is required")
	}

	var sqlDriver, dsn string
	switch cfg.Driver {
	case DriverSQLite:
		sqlDriver, dsn = "sqlite", sqliteDSN(cfg.DSN)
		if err := ensureDir(cfg.DSN); err != nil {
			return nil, err
		}
		// one writer keeps sqlite away from SQLITE_BUSY under concurrent requests
		cfg.MaxOpenConns = 1
		cfg.MaxIdleConns = 1
	case DriverPostgres:
		sqlDriver, dsn = "pgx", cfg.DSN
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s open: %w", cfg.Driver, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s ping: %w", cfg.Driver, err)
	}

	return &Client{db: db, driver: cfg.Driver}, nil
}

// DB returns *sql.DB for direct use.
func (c *Client) DB() *sql.DB {
	return c.db
}

// Driver returns the configured driver name.
func (c *Client) Driver() string {
	return c.driver
}

// Health performs health check.
func (c *Client) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close closes connection pool.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// InitSchema runs idempotent DDL statements in order.
func (c *Client) InitSchema(ctx context.Context, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// Rebind rewrites '?' placeholders to '$1, $2, ...' for postgres.
// Queries must not contain literal question marks.
func (c *Client) Rebind(query string) string {
	if c.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Schema returns the DDL for users and watchlist rows in the client's dialect.
func (c *Client) Schema() []string {
	id := "INTEGER PRIMARY KEY AUTOINCREMENT"
	ts := "TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP"
	if c.driver == DriverPostgres {
		id = "BIGSERIAL PRIMARY KEY"
		ts = "TIMESTAMPTZ NOT NULL DEFAULT now()"
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            ` + id + `,
			username      VARCHAR(80) NOT NULL UNIQUE,
			password_hash VARCHAR(128) NOT NULL,
			created_at    ` + ts + `
		)`,
		`CREATE TABLE IF NOT EXISTS watchlist (
			id         ` + id + `,
			user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			ticker     VARCHAR(20) NOT NULL,
			created_at ` + ts + `,
			UNIQUE (user_id, ticker)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_watchlist_user ON watchlist(user_id)`,
	}
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") || path == ":memory:" {
		return path
	}
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}

func ensureDir(path string) error {
	if strings.HasPrefix(path, "file:") || path == ":memory:" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}
	return nil
}
