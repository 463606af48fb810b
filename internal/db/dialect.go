package db

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect describes the differences between the supported relational stores.
type Dialect struct {
	// Name is the value accepted by the -driver flag.
	Name string
	// DriverName is the name registered with database/sql.
	DriverName string
	// LockClause is appended to SELECTs that must lock the rows they read
	// for the rest of the transaction. Empty when the store serializes
	// writers some other way.
	LockClause string
	// ReturningID is true when inserts report the new id through
	// "RETURNING id" instead of sql.Result.LastInsertId.
	ReturningID bool

	numbered bool
	schema   string
}

// Supported dialects.
var (
	SQLite = Dialect{
		Name:       "sqlite",
		DriverName: "sqlite",
		schema:     sqliteSchema,
	}
	MySQL = Dialect{
		Name:       "mysql",
		DriverName: "mysql",
		LockClause: "FOR UPDATE",
		schema:     mysqlSchema,
	}
	Postgres = Dialect{
		Name:        "postgres",
		DriverName:  "pgx",
		LockClause:  "FOR UPDATE",
		ReturningID: true,
		numbered:    true,
		schema:      postgresSchema,
	}
)

// LookupDialect returns the dialect with the given name.
func LookupDialect(name string) (Dialect, error) {
	switch name {
	case SQLite.Name:
		return SQLite, nil
	case MySQL.Name:
		return MySQL, nil
	case Postgres.Name:
		return Postgres, nil
	}
	return Dialect{}, fmt.Errorf("unsupported database driver %q", name)
}

// Rebind rewrites '?' placeholders into the dialect's native form.
// Queries must not contain literal question marks.
func (d Dialect) Rebind(query string) string {
	if !d.numbered {
		return query
	}

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

// Placeholders returns n comma-separated '?' placeholders for an IN list.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
