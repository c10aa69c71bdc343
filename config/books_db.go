package config

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // cgo-free sqlite driver
)

// OpenBooksDB opens a configured *sqlx.DB for the book catalog. The driver
// is either "postgres" or "sqlite"; SQLite is the development default, the
// same store code runs against both.
func OpenBooksDB(ctx context.Context, driver string, dsn string) (*sqlx.DB, error) {
	const defaultMaxOpenConnections = 10
	const defaultMaxIdleConnections = 5
	const defaultMaxConnLifetime = time.Hour
	const defaultMaxConnIdleTime = time.Minute * 5

	switch driver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported books db driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening books database: %w", err)
	}

	if driver == "sqlite" {
		// SQLite serializes writers; a larger pool only causes lock errors.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(defaultMaxOpenConnections)
		db.SetMaxIdleConns(defaultMaxIdleConnections)
		db.SetConnMaxLifetime(defaultMaxConnLifetime)
		db.SetConnMaxIdleTime(defaultMaxConnIdleTime)
	}

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging books database: %w", pingErr)
	}

	return db, nil
}
