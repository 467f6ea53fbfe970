package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Dialect translates the canonical query form to a specific backend.
// All SQL in this package is written against the canonical `?`
// placeholder syntax; a dialect rewrites placeholders positionally and
// knows how to surface the generated key for an insert.
type Dialect interface {
	// Name reports the configuration name of the backend.
	Name() string

	// Rebind rewrites canonical `?` placeholders for this backend.
	// Queries never contain a literal question mark, so a plain
	// positional scan is sufficient.
	Rebind(query string) string

	// Insert executes an insert statement and returns the generated
	// primary key, appending a returning-clause equivalent when the
	// backend does not report it natively.
	Insert(ctx context.Context, db DBTX, query string, args ...any) (int64, error)

	driverName() string
}

// DialectByName resolves a configured driver name to its dialect.
func DialectByName(name string) (Dialect, error) {
	switch name {
	case "postgres":
		return postgresDialect{}, nil
	case "mysql":
		return mysqlDialect{}, nil
	}
	return nil, fmt.Errorf("unsupported db driver %q (expected postgres or mysql)", name)
}

// --- Postgres ---

type postgresDialect struct{}

func (postgresDialect) Name() string       { return "postgres" }
func (postgresDialect) driverName() string { return "pgx" }

func (postgresDialect) Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (d postgresDialect) Insert(ctx context.Context, db DBTX, query string, args ...any) (int64, error) {
	var id int64
	err := db.QueryRowContext(ctx, d.Rebind(query+" RETURNING id"), args...).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// --- MySQL ---

type mysqlDialect struct{}

func (mysqlDialect) Name() string       { return "mysql" }
func (mysqlDialect) driverName() string { return "mysql" }

func (mysqlDialect) Rebind(query string) string { return query }

func (mysqlDialect) Insert(ctx context.Context, db DBTX, query string, args ...any) (int64, error) {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
