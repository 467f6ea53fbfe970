package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// DBTX is the query surface shared by *sql.DB and *sql.Tx.
// Queries runs against either, so every operation works inside a
// transaction without a separate code path.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Tx is an in-progress transaction. Satisfied by *sql.Tx.
type Tx interface {
	DBTX
	Commit() error
	Rollback() error
}

// Beginner starts a new database transaction. Satisfied by *DB.
type Beginner interface {
	Begin(ctx context.Context) (Tx, error)
}

// DB wraps a sql.DB together with the dialect selected at startup.
// Built once in main and passed explicitly to whatever needs it.
type DB struct {
	sqlDB   *sql.DB
	dialect Dialect
}

// Open connects to the configured backend. driver is "postgres" or "mysql";
// the dialect is fixed here and never consulted again by business code.
func Open(driver, dsn string) (*DB, error) {
	dialect, err := DialectByName(driver)
	if err != nil {
		return nil, err
	}
	sqlDB, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	return &DB{sqlDB: sqlDB, dialect: dialect}, nil
}

func (d *DB) Ping(ctx context.Context) error {
	return d.sqlDB.PingContext(ctx)
}

func (d *DB) Close() error {
	return d.sqlDB.Close()
}

// Queries returns a query set bound to the connection pool.
func (d *DB) Queries() *Queries {
	return New(d.sqlDB, d.dialect)
}

// Dialect exposes the active dialect, mainly so services can build
// transaction-scoped query sets via store.New.
func (d *DB) Dialect() Dialect {
	return d.dialect
}

// Begin starts a transaction. The returned Tx satisfies DBTX, so
// store.New(tx, dialect) yields transaction-scoped queries.
func (d *DB) Begin(ctx context.Context) (Tx, error) {
	return d.sqlDB.BeginTx(ctx, nil)
}
