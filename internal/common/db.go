package common

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/lib/pq"
)

// PoolConfig sizes the database/sql connection pool.
type PoolConfig struct {
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

var DefaultPool = PoolConfig{
	MaxOpenConns: 25,
	MaxIdleConns: 25,
	MaxIdleTime:  15 * time.Minute,
}

// DSN builds a postgres connection string from its parts.
func DSN(host, port, user, password, name string) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, password),
		Host:     fmt.Sprintf("%s:%s", host, port),
		Path:     name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// NewDB opens a pooled handle and pings it within ctx. The handle is closed
// again when the ping fails.
func NewDB(ctx context.Context, dsn string, pool PoolConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxIdleTime(pool.MaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}
