package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// sqlitePragmas are applied to every pooled SQLite connection.
var sqlitePragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"foreign_keys(1)",
	"synchronous(NORMAL)",
}

// Open opens a connection pool for the named driver and verifies it with a ping.
func Open(driver, dsn string) (*sql.DB, Dialect, error) {
	dialect, err := LookupDialect(driver)
	if err != nil {
		return nil, Dialect{}, err
	}

	switch dialect.Name {
	case SQLite.Name:
		dsn = sqliteDSN(dsn)
	case MySQL.Name:
		dsn, err = mysqlDSN(dsn)
		if err != nil {
			return nil, Dialect{}, err
		}
	}

	db, err := sql.Open(dialect.DriverName, dsn)
	if err != nil {
		return nil, Dialect{}, fmt.Errorf("opening database: %w", err)
	}

	if dialect.Name != SQLite.Name {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, Dialect{}, fmt.Errorf("pinging database: %w", err)
	}

	return db, dialect, nil
}

// sqliteDSN turns a file path into a DSN that carries the pragmas and makes
// every transaction take the write lock up front.
func sqliteDSN(path string) string {
	q := url.Values{}
	for _, p := range sqlitePragmas {
		q.Add("_pragma", p)
	}
	q.Set("_txlock", "immediate")
	return "file:" + path + "?" + q.Encode()
}

// mysqlDSN makes sure DATETIME columns scan into time.Time.
func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parsing mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}
