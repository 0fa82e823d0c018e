package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// DB is a connection pool that knows which SQL dialect it speaks.
type DB struct {
	*sql.DB
	Dialect Dialect
}

func Connect(ctx context.Context, driver, dsn string) (*DB, error) {
	dialect := Dialect(driver)
	if dialect != Postgres && dialect != SQLite {
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	// sqlite пишет только из одного соединения, иначе SQLITE_BUSY
	if dialect == SQLite {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	return &DB{DB: conn, Dialect: dialect}, nil
}

// Rebind rewrites ? placeholders into $1, $2... for PostgreSQL.
// Queries must not contain literal question marks.
func (d *DB) Rebind(query string) string {
	if d.Dialect != Postgres {
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

// Migrate creates the schema if it does not exist yet.
func (d *DB) Migrate(ctx context.Context) error {
	stmts := postgresSchema
	if d.Dialect == SQLite {
		stmts = sqliteSchema
	}
	for _, s := range stmts {
		if _, err := d.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// DeleteSession removes every record of the session in one transaction.
func (d *DB) DeleteSession(ctx context.Context, sessionID string) error {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	// 1) журнал
	if _, err := tx.ExecContext(ctx, d.Rebind(`DELETE FROM journal_entries WHERE session_id = ?`), sessionID); err != nil {
		return fmt.Errorf("delete journal_entries: %w", err)
	}

	// 2) настройки и триал
	if _, err := tx.ExecContext(ctx, d.Rebind(`DELETE FROM prefs WHERE session_id = ?`), sessionID); err != nil {
		return fmt.Errorf("delete prefs: %w", err)
	}

	// 3) analytics_events
	if _, err := tx.ExecContext(ctx, d.Rebind(`DELETE FROM analytics_events WHERE session_id = ?`), sessionID); err != nil {
		return fmt.Errorf("delete analytics_events: %w", err)
	}

	return tx.Commit()
}
