package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	pg := &DB{Dialect: Postgres}
	assert.Equal(t, "SELECT 1 WHERE a = $1 AND b = $2", pg.Rebind("SELECT 1 WHERE a = ? AND b = ?"))

	lite := &DB{Dialect: SQLite}
	assert.Equal(t, "a = ?", lite.Rebind("a = ?"))
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	_, err := Connect(context.Background(), "mysql", "x")
	assert.Error(t, err)
}

func TestMigrateAndDeleteSession(t *testing.T) {
	ctx := context.Background()
	d, err := Connect(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	defer d.Close()

	require.NoError(t, d.Migrate(ctx))
	// повторная миграция ничего не ломает
	require.NoError(t, d.Migrate(ctx))

	for _, s := range []string{"s1", "s2"} {
		_, err := d.ExecContext(ctx, `INSERT INTO journal_entries
			(id, session_id, created_at, input_text, lens, mode, output)
			VALUES (?, ?, 1, 'x', 'Курс', 'lite', '{}')`, "e-"+s, s)
		require.NoError(t, err)
		_, err = d.ExecContext(ctx, `INSERT INTO prefs (session_id, app_mode, updated_at) VALUES (?, 'push', 1)`, s)
		require.NoError(t, err)
		_, err = d.ExecContext(ctx, `INSERT INTO analytics_events
			(event_name, event_time, session_id, platform, app_version, properties)
			VALUES ('app_opened', '2026-01-01T00:00:00Z', ?, 'web', '', '{}')`, s)
		require.NoError(t, err)
	}

	require.NoError(t, d.DeleteSession(ctx, "s1"))

	for _, table := range []string{"journal_entries", "prefs", "analytics_events"} {
		var n int
		require.NoError(t, d.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table+` WHERE session_id = 's1'`).Scan(&n))
		assert.Zero(t, n, table)
		require.NoError(t, d.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table+` WHERE session_id = 's2'`).Scan(&n))
		assert.Equal(t, 1, n, table)
	}
}
