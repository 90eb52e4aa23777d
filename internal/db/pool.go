package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Pool wraps *sql.DB with logging and connection settings. All statement
// execution goes through transactions begun here; the pool itself only
// carries the handle.
type Pool struct {
	db     *sql.DB
	driver string
	logger *zap.SugaredLogger
}

// NewPool opens and pings a database for the given connection URL.
// A ping failure is a fatal precondition: no batch can run without a
// working connection.
func NewPool(rawURL string, logger *zap.SugaredLogger) (*Pool, error) {
	driver, dsn, err := Resolve(rawURL)
	if err != nil {
		return nil, err
	}

	handle, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	handle.SetMaxOpenConns(1)
	handle.SetConnMaxIdleTime(5 * time.Minute)

	if err := handle.Ping(); err != nil {
		handle.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Debugw("database connection established", "driver", driver)
	return &Pool{db: handle, driver: driver, logger: logger}, nil
}

// Driver returns the resolved driver name.
func (p *Pool) Driver() string {
	return p.driver
}

// BeginTx starts a transaction.
func (p *Pool) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return tx, nil
}

// Ping verifies the connection is alive.
func (p *Pool) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Stats exposes the underlying pool statistics.
func (p *Pool) Stats() sql.DBStats {
	return p.db.Stats()
}

// Close releases the handle.
func (p *Pool) Close() error {
	return p.db.Close()
}
