package repository

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"regexp"
	"time"
)

//go:embed schema/*.sql
var schemaFS embed.FS

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DB wraps *sql.DB with the driver name so queries written with postgres
// placeholders also run on sqlite.
type DB struct {
	*sql.DB
	driver string
}

func Open(driver, dsn string) (*DB, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// sqlite serialises writers; one connection also keeps :memory: alive.
		db.SetMaxOpenConns(1)
	}
	return &DB{DB: db, driver: driver}, nil
}

func (d *DB) Driver() string { return d.driver }

func (d *DB) Migrate(ctx context.Context) error {
	schema, err := schemaFS.ReadFile("schema/" + d.driver + ".sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	if _, err := d.ExecContext(ctx, string(schema)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

var placeholder = regexp.MustCompile(`\$(\d+)`)

// q adapts a query written with $n placeholders to the driver.
func (d *DB) q(query string) string {
	if d.driver == DriverSQLite {
		return placeholder.ReplaceAllString(query, "?$1")
	}
	return query
}

func toUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func fromUnix(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(n, 0).UTC()
}
