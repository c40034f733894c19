package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/01moynul/taptosell-cart/internal/config"
	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
)

// OpenDB creates the read/write connection pool and verifies it with a ping.
func OpenDB(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn, err := normalizeDSN(cfg.DSN)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open mysql")
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping mysql")
	}
	return db, nil
}

// normalizeDSN forces the driver options the stores rely on: DATETIME
// columns scan into time.Time and timestamps are read back as UTC.
func normalizeDSN(dsn string) (string, error) {
	mc, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", errors.Wrap(err, "parse mysql dsn")
	}
	mc.ParseTime = true
	mc.Loc = time.UTC
	return mc.FormatDSN(), nil
}

// isDuplicateKey reports a MySQL unique/primary key violation (error 1062).
func isDuplicateKey(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == 1062
}

// isOutOfRange reports a value the column cannot hold: error 1264 for an
// overflowing integer, 3819 for a failed CHECK constraint.
func isOutOfRange(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && (myErr.Number == 1264 || myErr.Number == 3819)
}
